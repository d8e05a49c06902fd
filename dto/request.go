package dto

import "errors"

// Workflow operating modes.
const (
	ModeCreate = "create"
	ModeEdit   = "edit"
	ModeView   = "view"
)

var (
	ErrInvalidMode    = errors.New("mode must be one of create, edit, view")
	ErrCaseIDRequired = errors.New("case_id is required for edit and view modes")
)

// StartSessionRequest opens a new workflow session.
type StartSessionRequest struct {
	Mode      string `json:"mode" binding:"required"`
	CaseID    string `json:"case_id"`
	UserEmail string `json:"user_email"`
}

// Validate performs basic validation on the request
func (r *StartSessionRequest) Validate() error {
	switch r.Mode {
	case ModeCreate, ModeEdit, ModeView:
	default:
		return ErrInvalidMode
	}
	if r.Mode != ModeCreate && r.CaseID == "" {
		return ErrCaseIDRequired
	}
	return nil
}

// FieldUpdateRequest writes one field of the active record.
type FieldUpdateRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}
