package service

import (
	"context"

	"github.com/Aashish23092/case-intake/dto"
)

// CaseRepository is the remote store for cases and applicants. Implementations
// must return client.ErrCaseNotFound / client.ErrApplicantNotFound for missing
// records so hydration failures can be told apart from outages.
type CaseRepository interface {
	FetchCase(ctx context.Context, caseID string) (*dto.CaseData, error)
	FetchApplicant(ctx context.Context, clientID string) (*dto.ApplicantData, error)
	CreateApplication(ctx context.Context, record *dto.ApplicationRecord) (*dto.SubmissionResponse, error)
	UpdateApplication(ctx context.Context, caseID string, record *dto.ApplicationRecord) (*dto.ApplicationRecord, error)
}

// EmailChecker reports whether an email already belongs to an account. Only
// consulted when creating a new application.
type EmailChecker interface {
	Exists(ctx context.Context, email string) (bool, error)
}

// Notifier surfaces success/warning/error messages to the host UI. Calls must
// never block the workflow.
type Notifier interface {
	Notify(kind, message string)
}
