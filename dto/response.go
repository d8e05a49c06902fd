package dto

// StepDescriptor describes one workflow step: its position, title and the
// record fields it owns.
type StepDescriptor struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Fields []string `json:"fields,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SessionResponse is the workflow state exposed to the host UI.
type SessionResponse struct {
	SessionID   string             `json:"session_id"`
	Mode        string             `json:"mode"`
	State       string             `json:"state"`
	Step        StepDescriptor     `json:"step"`
	TotalSteps  int                `json:"total_steps"`
	Record      *ApplicationRecord `json:"record,omitempty"`
	FieldErrors map[string]string  `json:"field_errors,omitempty"`
	CanAdvance  bool               `json:"can_advance"`
	CanRetreat  bool               `json:"can_retreat"`
	Warning     string             `json:"warning,omitempty"`
	Error       string             `json:"hydration_error,omitempty"`
}

// UploadResponse reports the outcome of one exhibit batch upload.
type UploadResponse struct {
	Exhibit    string            `json:"exhibit"`
	Accepted   []*DocumentRecord `json:"accepted"`
	Rejected   []string          `json:"rejected,omitempty"`
	Superseded bool              `json:"superseded,omitempty"`
}

// SubmissionResponse is returned by the create-mode payment step.
type SubmissionResponse struct {
	UserID    string `json:"user_id"`
	CaseID    string `json:"case_id"`
	PaymentID string `json:"payment_id"`
}
