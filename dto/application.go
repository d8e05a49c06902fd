package dto

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/case-intake/utils"
)

// Field keys shared by the record, the validation rule sets and the API.
const (
	FieldFullName      = "full_name"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldDateOfBirth   = "date_of_birth"
	FieldAge           = "age"
	FieldAddress       = "address"
	FieldDepositAmount = "deposit_amount"
	FieldMonthlyIncome = "monthly_income"
	FieldInterestRate  = "interest_rate"
	FieldTermMonths    = "term_months"
	FieldVerified      = "verified"
)

// DateLayout is the wire format for date fields.
const DateLayout = "2006-01-02"

// ApplicationRecord is the single mutable record for one in-progress case.
// DateOfBirth and Age are kept mutually derivable: writing either through the
// form store recomputes the other.
type ApplicationRecord struct {
	CaseID   string `json:"case_id,omitempty"`
	ClientID string `json:"client_id,omitempty"`

	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Age         int       `json:"age"`
	Address     string    `json:"address"`

	DepositAmount decimal.Decimal `json:"deposit_amount"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	TermMonths    int             `json:"term_months"`

	Status   string `json:"status"`
	Verified bool   `json:"verified"`

	Documents map[string][]*DocumentRecord `json:"documents"`
}

// NewApplicationRecord returns the full-field default template: every field
// present with a defined, empty value.
func NewApplicationRecord() *ApplicationRecord {
	return &ApplicationRecord{
		Documents: make(map[string][]*DocumentRecord),
	}
}

// CaseData is the remote case payload.
type CaseData struct {
	CaseID        string `json:"case_id"`
	ClientID      string `json:"client_id"`
	Status        string `json:"status"`
	DepositAmount string `json:"deposit_amount"`
	MonthlyIncome string `json:"monthly_income"`
	InterestRate  string `json:"interest_rate"`
	TermMonths    int    `json:"term_months"`
	Verified      bool   `json:"verified"`

	Documents []RemoteDocument `json:"documents"`
}

// RemoteDocument is document metadata as stored by the case repository. The
// binary stays remote; hydrated records carry metadata only.
type RemoteDocument struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	OriginalName string `json:"original_name"`
	MIMEType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	Exhibit      string `json:"exhibit"`
	UploadedAt   string `json:"uploaded_at"`
}

// ApplicantData is the remote applicant payload.
type ApplicantData struct {
	ClientID    string `json:"client_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth"`
}

// MergeCase overlays non-empty case fields onto the record. Fields the payload
// omits keep their template value.
func (r *ApplicationRecord) MergeCase(c *CaseData) {
	if c == nil {
		return
	}
	r.CaseID = c.CaseID
	r.ClientID = c.ClientID
	if c.Status != "" {
		r.Status = c.Status
	}
	if d, err := decimal.NewFromString(c.DepositAmount); err == nil {
		r.DepositAmount = d
	}
	if d, err := decimal.NewFromString(c.MonthlyIncome); err == nil {
		r.MonthlyIncome = d
	}
	if d, err := decimal.NewFromString(c.InterestRate); err == nil {
		r.InterestRate = d
	}
	if c.TermMonths > 0 {
		r.TermMonths = c.TermMonths
	}
	r.Verified = c.Verified

	for _, rd := range c.Documents {
		uploaded, _ := time.Parse(time.RFC3339, rd.UploadedAt)
		r.Documents[rd.Exhibit] = append(r.Documents[rd.Exhibit], &DocumentRecord{
			ID:           rd.ID,
			DisplayName:  rd.DisplayName,
			OriginalName: rd.OriginalName,
			MIMEType:     rd.MIMEType,
			Size:         rd.Size,
			Exhibit:      rd.Exhibit,
			UploadedAt:   uploaded,
		})
	}
}

// MergeApplicant overlays non-empty applicant fields onto the record and
// recomputes the derived age.
func (r *ApplicationRecord) MergeApplicant(a *ApplicantData, now time.Time) {
	if a == nil {
		return
	}
	if a.FullName != "" {
		r.FullName = a.FullName
	}
	if a.Email != "" {
		r.Email = a.Email
	}
	if a.Phone != "" {
		r.Phone = a.Phone
	}
	if a.Address != "" {
		r.Address = a.Address
	}
	if dob, err := time.Parse(DateLayout, a.DateOfBirth); err == nil {
		r.DateOfBirth = dob
		r.Age = utils.AgeFromDOB(dob, now)
	}
}

// FieldValue returns the string form of a field for rule evaluation. Unset
// values (zero dates, zero amounts) come back empty so required rules can
// catch them.
func (r *ApplicationRecord) FieldValue(name string) string {
	switch name {
	case FieldFullName:
		return r.FullName
	case FieldEmail:
		return r.Email
	case FieldPhone:
		return r.Phone
	case FieldDateOfBirth:
		if r.DateOfBirth.IsZero() {
			return ""
		}
		return r.DateOfBirth.Format(DateLayout)
	case FieldAge:
		if r.Age == 0 {
			return ""
		}
		return strconv.Itoa(r.Age)
	case FieldAddress:
		return r.Address
	case FieldDepositAmount:
		if r.DepositAmount.IsZero() {
			return ""
		}
		return r.DepositAmount.String()
	case FieldMonthlyIncome:
		if r.MonthlyIncome.IsZero() {
			return ""
		}
		return r.MonthlyIncome.String()
	case FieldInterestRate:
		if r.InterestRate.IsZero() {
			return ""
		}
		return r.InterestRate.String()
	case FieldTermMonths:
		if r.TermMonths == 0 {
			return ""
		}
		return strconv.Itoa(r.TermMonths)
	case FieldVerified:
		if !r.Verified {
			return ""
		}
		return "true"
	}
	return ""
}

// Clone returns a snapshot safe to hand outside the form store. Document
// slices are copied; the records themselves are shared (their payloads are
// immutable once ingested).
func (r *ApplicationRecord) Clone() *ApplicationRecord {
	cp := *r
	cp.Documents = make(map[string][]*DocumentRecord, len(r.Documents))
	for k, docs := range r.Documents {
		cp.Documents[k] = append([]*DocumentRecord(nil), docs...)
	}
	return &cp
}
