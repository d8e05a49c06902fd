package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/Aashish23092/case-intake/dto"
)

// Session states.
const (
	StateHydrating       = "hydrating"
	StateHydrationFailed = "hydration_failed"
	StateActive          = "active"
	StateComplete        = "complete"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionNotReady   = errors.New("session is not accepting transitions")
	ErrReadOnlySession   = errors.New("session is read-only")
	ErrValidationFailed  = errors.New("step validation failed")
	ErrSaveNotAllowed    = errors.New("save is only available in edit mode")
	ErrPaymentNotAllowed = errors.New("payment is only available at the final step of a new application")
	ErrUnknownExhibit    = errors.New("unknown exhibit")
	ErrNoRetryNeeded     = errors.New("session does not need a hydration retry")
)

// WorkflowSession is one in-progress walk through the intake steps. The step
// index is 1-based; transition rules come from the session's ModePolicy.
type WorkflowSession struct {
	ID        string
	Policy    ModePolicy
	CaseID    string
	UserEmail string

	// transMu serializes validate-then-commit transitions (advance, retreat,
	// save, payment) so a step's rule set cannot be skipped by a concurrent
	// call racing the validation window.
	transMu sync.Mutex

	mu           sync.Mutex
	state        string
	stepIndex    int
	hydrationErr error
	fieldErrors  map[string]string
	warning      string

	store      *FormDataStore
	slotGen    map[string]int
	slotCancel map[string]context.CancelFunc
}

// WorkflowService owns the sessions and sequences their steps.
type WorkflowService struct {
	repo     CaseRepository
	emails   EmailChecker
	notifier Notifier
	pipeline *DocumentIngestionPipeline

	mu       sync.RWMutex
	sessions map[string]*WorkflowSession
}

func NewWorkflowService(repo CaseRepository, emails EmailChecker, notifier Notifier, pipeline *DocumentIngestionPipeline) *WorkflowService {
	return &WorkflowService{
		repo:     repo,
		emails:   emails,
		notifier: notifier,
		pipeline: pipeline,
		sessions: make(map[string]*WorkflowSession),
	}
}

// StartSession opens a workflow session for one of the operating modes.
// create starts from the default template; edit and view hydrate the record
// from the case repository first and refuse transitions until that resolves.
func (w *WorkflowService) StartSession(ctx context.Context, mode, caseID, userEmail string) (*dto.SessionResponse, error) {
	policy, err := PolicyFor(mode)
	if err != nil {
		return nil, err
	}
	if policy.Hydrate && caseID == "" {
		return nil, dto.ErrCaseIDRequired
	}

	session := &WorkflowSession{
		ID:          uuid.NewString(),
		Policy:      policy,
		CaseID:      caseID,
		UserEmail:   userEmail,
		state:       StateActive,
		stepIndex:   1,
		fieldErrors: make(map[string]string),
		store:       NewFormDataStore(),
		slotGen:     make(map[string]int),
		slotCancel:  make(map[string]context.CancelFunc),
	}

	if policy.Hydrate {
		session.state = StateHydrating
		w.hydrate(ctx, session)
	} else {
		session.store.SetStatus(stepStatus[policy.StepTitles[0]])
	}

	w.mu.Lock()
	w.sessions[session.ID] = session
	w.mu.Unlock()

	log.Printf("Started %s session %s (case %q)", mode, session.ID, caseID)
	return w.buildResponse(session), nil
}

// hydrate loads case data, then the applicant it points at, and merges both
// over the default template. Any failure leaves the session in the
// hydration-failed state with the error retained; the record is never
// silently replaced with defaults.
func (w *WorkflowService) hydrate(ctx context.Context, s *WorkflowSession) {
	caseData, err := w.repo.FetchCase(ctx, s.CaseID)
	if err != nil {
		w.failHydration(s, fmt.Errorf("failed to load case %s: %w", s.CaseID, err))
		return
	}

	applicant, err := w.repo.FetchApplicant(ctx, caseData.ClientID)
	if err != nil {
		w.failHydration(s, fmt.Errorf("failed to load applicant %s: %w", caseData.ClientID, err))
		return
	}

	s.store.Hydrate(caseData, applicant)

	s.mu.Lock()
	s.state = StateActive
	s.hydrationErr = nil
	s.mu.Unlock()

	if s.Policy.Terminal != TerminalNone {
		s.store.SetStatus(stepStatus[s.Policy.StepTitles[0]])
	}
}

func (w *WorkflowService) failHydration(s *WorkflowSession, err error) {
	log.Printf("Hydration failed for session %s: %v", s.ID, err)
	s.mu.Lock()
	s.state = StateHydrationFailed
	s.hydrationErr = err
	s.mu.Unlock()
	w.notifier.Notify("error", err.Error())
}

// RetryHydration re-runs a failed hydration.
func (w *WorkflowService) RetryHydration(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	s, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state != StateHydrationFailed {
		s.mu.Unlock()
		return nil, ErrNoRetryNeeded
	}
	s.state = StateHydrating
	s.mu.Unlock()

	w.hydrate(ctx, s)
	return w.buildResponse(s), nil
}

// GetState returns the session's current workflow state.
func (w *WorkflowService) GetState(sessionID string) (*dto.SessionResponse, error) {
	s, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}
	return w.buildResponse(s), nil
}

// SetField writes one record field through the form store.
func (w *WorkflowService) SetField(sessionID, field, value string) (*dto.SessionResponse, error) {
	s, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := w.requireEditable(s); err != nil {
		return nil, err
	}

	if err := s.store.SetField(field, value); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.fieldErrors, field)
	s.mu.Unlock()

	return w.buildResponse(s), nil
}

// Advance moves the session to the next step. In view mode it always
// succeeds and touches nothing; otherwise the active step's rule set gates
// the transition. In edit mode, advancing from the final step persists the
// record instead of moving past it.
func (w *WorkflowService) Advance(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	s, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}

	s.transMu.Lock()
	defer s.transMu.Unlock()

	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return nil, ErrSessionNotReady
	}
	n := len(s.Policy.StepTitles)

	if !s.Policy.ValidateOnAdvance {
		// Read-only walk-through: nothing to validate, nothing to mutate.
		if s.stepIndex < n {
			s.stepIndex++
		} else {
			s.state = StateComplete
		}
		s.mu.Unlock()
		return w.buildResponse(s), nil
	}

	title := s.Policy.StepTitles[s.stepIndex-1]
	s.mu.Unlock()

	record := s.store.Snapshot()
	errs := ValidateRecord(record, RulesForStep(title))

	if title == stepDocuments && s.Policy.DocumentsRequired {
		for _, ex := range Exhibits {
			if len(record.Documents[ex.Key]) == 0 {
				errs[ex.Key] = fmt.Sprintf("%s requires at least one document", ex.Label)
			}
		}
	}

	if len(errs) == 0 && title == stepPersonal && s.Policy.CheckEmailUnique && record.Email != s.UserEmail {
		exists, err := w.emails.Exists(ctx, record.Email)
		if err != nil {
			return nil, fmt.Errorf("email check failed: %w", err)
		}
		if exists {
			errs[dto.FieldEmail] = "An account with this email already exists"
		}
	}

	if len(errs) > 0 {
		warning := FirstError(errs, stepFields[title])
		s.mu.Lock()
		s.fieldErrors = errs
		s.warning = warning
		s.mu.Unlock()
		w.notifier.Notify("warning", warning)
		return w.buildResponse(s), ErrValidationFailed
	}

	s.mu.Lock()
	s.fieldErrors = make(map[string]string)
	s.warning = ""
	atEnd := s.stepIndex == n
	if !atEnd {
		s.stepIndex++
		s.store.SetStatus(stepStatus[s.Policy.StepTitles[s.stepIndex-1]])
	}
	s.mu.Unlock()

	if atEnd && s.Policy.Terminal == TerminalSave {
		return w.save(ctx, s)
	}
	return w.buildResponse(s), nil
}

// Retreat moves back one step, floor 1. No validation runs; the status label
// resets to the step being returned to.
func (w *WorkflowService) Retreat(sessionID string) (*dto.SessionResponse, error) {
	s, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}

	s.transMu.Lock()
	defer s.transMu.Unlock()

	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return nil, ErrSessionNotReady
	}
	if s.stepIndex > 1 {
		s.stepIndex--
		if s.Policy.Terminal != TerminalNone {
			s.store.SetStatus(stepStatus[s.Policy.StepTitles[s.stepIndex-1]])
		}
	}
	s.fieldErrors = make(map[string]string)
	s.warning = ""
	s.mu.Unlock()

	return w.buildResponse(s), nil
}

// Save persists the record through the repository's update operation. Edit
// mode only. On failure the record stays in memory for a retry.
func (w *WorkflowService) Save(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	s, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}
	if s.Policy.Terminal != TerminalSave {
		return nil, ErrSaveNotAllowed
	}

	s.transMu.Lock()
	defer s.transMu.Unlock()
	return w.save(ctx, s)
}

// save runs the persistence half of Save. Callers hold s.transMu.
func (w *WorkflowService) save(ctx context.Context, s *WorkflowSession) (*dto.SessionResponse, error) {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return nil, ErrSessionNotReady
	}
	s.mu.Unlock()

	record := s.store.Snapshot()
	if _, err := w.repo.UpdateApplication(ctx, s.CaseID, record); err != nil {
		w.notifier.Notify("error", "Saving the application failed, please retry")
		return nil, fmt.Errorf("failed to update case %s: %w", s.CaseID, err)
	}

	s.store.SetStatus(StatusSaved)
	w.notifier.Notify("success", "Application saved")
	return w.buildResponse(s), nil
}

// SubmitPayment runs the create-mode terminal action: persist the finished
// record and settle payment. Only valid at the final step. On failure nothing
// is considered submitted and the session stays retryable.
func (w *WorkflowService) SubmitPayment(ctx context.Context, sessionID string) (*dto.SubmissionResponse, error) {
	s, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}
	if s.Policy.Terminal != TerminalSubmit {
		return nil, ErrPaymentNotAllowed
	}

	s.transMu.Lock()
	defer s.transMu.Unlock()

	s.mu.Lock()
	if s.state != StateActive || s.stepIndex != len(s.Policy.StepTitles) {
		s.mu.Unlock()
		return nil, ErrPaymentNotAllowed
	}
	s.mu.Unlock()

	record := s.store.Snapshot()
	resp, err := w.repo.CreateApplication(ctx, record)
	if err != nil {
		w.notifier.Notify("error", "Payment failed, the application was not submitted")
		return nil, fmt.Errorf("failed to submit application: %w", err)
	}

	s.store.SetStatus(StatusSubmitted)
	s.mu.Lock()
	s.state = StateComplete
	s.mu.Unlock()

	w.notifier.Notify("success", "Application submitted")
	log.Printf("Session %s submitted as case %s", s.ID, resp.CaseID)
	return resp, nil
}

// UploadDocuments ingests a batch of files for one exhibit slot. A batch
// submitted while a previous one for the same slot is still running cancels
// the older batch; only the newest batch's result is ever committed.
func (w *WorkflowService) UploadDocuments(sessionID, exhibitKey string, files []RawFile) (*dto.UploadResponse, error) {
	s, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := w.requireEditable(s); err != nil {
		return nil, err
	}
	exhibit, ok := ExhibitByKey(exhibitKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExhibit, exhibitKey)
	}

	s.mu.Lock()
	if cancel := s.slotCancel[exhibitKey]; cancel != nil {
		cancel()
	}
	batchCtx, cancel := context.WithCancel(context.Background())
	s.slotCancel[exhibitKey] = cancel
	s.slotGen[exhibitKey]++
	gen := s.slotGen[exhibitKey]
	s.mu.Unlock()

	progress := func(stage string) {
		w.notifier.Notify("info", "image compression "+stage)
	}

	result, err := w.pipeline.IngestBatch(batchCtx, exhibit, files, progress)
	if err != nil {
		// Cancelled by a newer batch for the same slot.
		return &dto.UploadResponse{Exhibit: exhibitKey, Superseded: true}, nil
	}

	s.mu.Lock()
	if s.slotGen[exhibitKey] != gen {
		s.mu.Unlock()
		result.ReleaseAll()
		return &dto.UploadResponse{Exhibit: exhibitKey, Superseded: true}, nil
	}
	s.store.ReplaceDocuments(exhibitKey, result.Accepted)
	delete(s.slotCancel, exhibitKey)
	s.mu.Unlock()
	cancel()

	if len(result.Accepted) > 0 {
		w.notifier.Notify("success", fmt.Sprintf("%d document(s) attached to %s", len(result.Accepted), exhibit.Label))
	}

	return &dto.UploadResponse{
		Exhibit:  exhibitKey,
		Accepted: result.Accepted,
		Rejected: result.Rejected,
	}, nil
}

// RemoveDocument removes a single document and releases its preview handle.
func (w *WorkflowService) RemoveDocument(sessionID, exhibitKey, docID string) (*dto.SessionResponse, error) {
	s, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := w.requireEditable(s); err != nil {
		return nil, err
	}

	if !s.store.RemoveDocument(exhibitKey, docID) {
		return nil, fmt.Errorf("document %s not found in %s", docID, exhibitKey)
	}
	return w.buildResponse(s), nil
}

// DiscardSession drops a session and releases every preview handle its record
// still holds.
func (w *WorkflowService) DiscardSession(sessionID string) error {
	w.mu.Lock()
	s, ok := w.sessions[sessionID]
	delete(w.sessions, sessionID)
	w.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	for _, cancel := range s.slotCancel {
		cancel()
	}
	s.mu.Unlock()

	s.store.ReleaseAll()
	log.Printf("Discarded session %s", sessionID)
	return nil
}

func (w *WorkflowService) session(id string) (*WorkflowSession, error) {
	w.mu.RLock()
	s, ok := w.sessions[id]
	w.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (w *WorkflowService) requireEditable(s *WorkflowSession) error {
	if s.Policy.Mode == dto.ModeView {
		return ErrReadOnlySession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return ErrSessionNotReady
	}
	return nil
}

func (w *WorkflowService) buildResponse(s *WorkflowSession) *dto.SessionResponse {
	s.mu.Lock()
	state := s.state
	idx := s.stepIndex
	warning := s.warning
	fieldErrs := make(map[string]string, len(s.fieldErrors))
	for k, v := range s.fieldErrors {
		fieldErrs[k] = v
	}
	var hydrationMsg string
	if s.hydrationErr != nil {
		hydrationMsg = s.hydrationErr.Error()
	}
	s.mu.Unlock()

	resp := &dto.SessionResponse{
		SessionID:   s.ID,
		Mode:        s.Policy.Mode,
		State:       state,
		TotalSteps:  len(s.Policy.StepTitles),
		FieldErrors: fieldErrs,
		Warning:     warning,
		Error:       hydrationMsg,
		CanRetreat:  state == StateActive && idx > 1,
	}

	steps := s.Policy.Steps()
	resp.Step = steps[idx-1]

	if state == StateActive || state == StateComplete {
		record := s.store.Snapshot()
		resp.Record = record
		resp.CanAdvance = state == StateActive && w.canAdvance(s, record, idx)
	}
	return resp
}

// canAdvance mirrors the gating Advance applies, without side effects.
func (w *WorkflowService) canAdvance(s *WorkflowSession, record *dto.ApplicationRecord, idx int) bool {
	n := len(s.Policy.StepTitles)
	if !s.Policy.ValidateOnAdvance {
		return true
	}
	if idx == n && s.Policy.Terminal == TerminalSubmit {
		return false // payment step acts through SubmitPayment
	}

	title := s.Policy.StepTitles[idx-1]
	if !IsFormValid(record, RulesForStep(title)) {
		return false
	}
	if title == stepDocuments && s.Policy.DocumentsRequired {
		for _, ex := range Exhibits {
			if len(record.Documents[ex.Key]) == 0 {
				return false
			}
		}
	}
	return true
}
