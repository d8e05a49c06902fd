package service

import (
	"regexp"

	"github.com/Aashish23092/case-intake/dto"
)

// Status labels the record carries as it moves through the workflow.
const (
	StatusPersonalInfo   = "personal_info"
	StatusDepositDetails = "deposit_details"
	StatusDocuments      = "documents"
	StatusReview         = "review"
	StatusPaymentPending = "payment_pending"
	StatusSubmitted      = "submitted"
	StatusSaved          = "saved"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,14}$`)
)

// Step titles.
const (
	stepPersonal  = "Personal Information"
	stepFinancial = "Deposit Details"
	stepDocuments = "Supporting Documents"
	stepReview    = "Review & Verification"
	stepPayment   = "Payment"
)

// stepStatus maps a step title to the status label the record takes when that
// step becomes active.
var stepStatus = map[string]string{
	stepPersonal:  StatusPersonalInfo,
	stepFinancial: StatusDepositDetails,
	stepDocuments: StatusDocuments,
	stepReview:    StatusReview,
	stepPayment:   StatusPaymentPending,
}

// stepFields lists each step's fields in display order, which doubles as the
// order used to pick the first failing field's message.
var stepFields = map[string][]string{
	stepPersonal: {
		dto.FieldFullName, dto.FieldEmail, dto.FieldPhone,
		dto.FieldDateOfBirth, dto.FieldAge, dto.FieldAddress,
	},
	stepFinancial: {
		dto.FieldDepositAmount, dto.FieldMonthlyIncome,
		dto.FieldInterestRate, dto.FieldTermMonths,
	},
	stepDocuments: {},
	stepReview:    {dto.FieldVerified},
	stepPayment:   {},
}

// stepRules holds the constant per-step rule sets.
var stepRules = map[string]RuleSet{
	stepPersonal: {
		dto.FieldFullName: {
			Required: true, MinLen: 2, MaxLen: 100,
			Message: "Full name is required",
		},
		dto.FieldEmail: {
			Required: true, Pattern: emailPattern,
			Message: "A valid email address is required",
		},
		dto.FieldPhone: {
			Required: true, Pattern: phonePattern,
			Message: "A valid phone number is required",
		},
		dto.FieldDateOfBirth: {
			Required: true, NotFuture: true,
			Message: "Date of birth must be a past date",
		},
		dto.FieldAge: {
			Required: true, Min: floatPtr(18), Max: floatPtr(120),
			Message: "Applicant must be at least 18 years old",
		},
		dto.FieldAddress: {
			MaxLen:  200,
			Message: "Address must not exceed 200 characters",
		},
	},
	stepFinancial: {
		dto.FieldDepositAmount: {
			Required: true, Min: floatPtr(100), Max: floatPtr(10000000),
			Message: "Deposit amount must be between 100 and 10,000,000",
		},
		dto.FieldMonthlyIncome: {
			Min:     floatPtr(0),
			Message: "Monthly income must not be negative",
		},
		dto.FieldInterestRate: {
			Required: true, Min: floatPtr(0.1), Max: floatPtr(25),
			Message: "Interest rate must be between 0.1 and 25",
		},
		dto.FieldTermMonths: {
			Required: true, Min: floatPtr(6), Max: floatPtr(120),
			Message: "Term must be between 6 and 120 months",
		},
	},
	stepDocuments: {},
	stepReview: {
		dto.FieldVerified: {
			Required: true,
			Message:  "Please confirm the application details before continuing",
		},
	},
	stepPayment: {},
}

// RulesForStep returns the constant rule set owned by a step title.
func RulesForStep(title string) RuleSet {
	return stepRules[title]
}

// Exhibit is one category of supporting documents and the descriptions of
// what belongs in it.
type Exhibit struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Required []string `json:"required"`
}

// Exhibits is the fixed taxonomy of document categories.
var Exhibits = []Exhibit{
	{Key: "exhibit_a", Label: "Exhibit A", Required: []string{"Government-issued photo ID"}},
	{Key: "exhibit_b", Label: "Exhibit B", Required: []string{"Proof of current address", "Recent utility bill"}},
	{Key: "exhibit_c", Label: "Exhibit C", Required: []string{"Income statement", "Bank statement (last 3 months)"}},
	{Key: "exhibit_d", Label: "Exhibit D", Required: []string{"Signed deposit agreement"}},
}

// ExhibitByKey looks up an exhibit in the taxonomy.
func ExhibitByKey(key string) (Exhibit, bool) {
	for _, ex := range Exhibits {
		if ex.Key == key {
			return ex, true
		}
	}
	return Exhibit{}, false
}

// TerminalAction is what the last step of a mode does.
type TerminalAction int

const (
	TerminalSubmit TerminalAction = iota // persist via create + payment
	TerminalSave                         // persist via update
	TerminalNone                         // read-only exit
)

// ModePolicy captures everything that varies by operating mode, so the rest
// of the workflow never branches on a mode string.
type ModePolicy struct {
	Mode              string
	StepTitles        []string
	ValidateOnAdvance bool
	DocumentsRequired bool
	CheckEmailUnique  bool
	Hydrate           bool
	Terminal          TerminalAction
}

// PolicyFor returns the policy value for a mode.
func PolicyFor(mode string) (ModePolicy, error) {
	switch mode {
	case dto.ModeCreate:
		return ModePolicy{
			Mode:              dto.ModeCreate,
			StepTitles:        []string{stepPersonal, stepFinancial, stepDocuments, stepReview, stepPayment},
			ValidateOnAdvance: true,
			DocumentsRequired: true,
			CheckEmailUnique:  true,
			Terminal:          TerminalSubmit,
		}, nil
	case dto.ModeEdit:
		return ModePolicy{
			Mode:              dto.ModeEdit,
			StepTitles:        []string{stepPersonal, stepFinancial, stepDocuments, stepReview},
			ValidateOnAdvance: true,
			Hydrate:           true,
			Terminal:          TerminalSave,
		}, nil
	case dto.ModeView:
		return ModePolicy{
			Mode:       dto.ModeView,
			StepTitles: []string{stepPersonal, stepFinancial, stepDocuments},
			Hydrate:    true,
			Terminal:   TerminalNone,
		}, nil
	}
	return ModePolicy{}, dto.ErrInvalidMode
}

// Steps materializes the mode's ordered step descriptors.
func (p ModePolicy) Steps() []dto.StepDescriptor {
	steps := make([]dto.StepDescriptor, len(p.StepTitles))
	for i, title := range p.StepTitles {
		steps[i] = dto.StepDescriptor{
			Number: i + 1,
			Title:  title,
			Fields: stepFields[title],
		}
	}
	return steps
}
