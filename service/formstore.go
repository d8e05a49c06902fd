package service

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/case-intake/dto"
	"github.com/Aashish23092/case-intake/utils"
)

var ErrUnknownField = errors.New("unknown field")

// FormDataStore owns the single mutable ApplicationRecord for a session.
// Every read goes through Snapshot and every write through a setter, so the
// record consumed by validation, rendering and persistence is always the same
// object.
type FormDataStore struct {
	mu     sync.RWMutex
	record *dto.ApplicationRecord
}

// NewFormDataStore starts from the full-field default template.
func NewFormDataStore() *FormDataStore {
	return &FormDataStore{record: dto.NewApplicationRecord()}
}

// Snapshot returns a copy safe to hand to steps and handlers.
func (s *FormDataStore) Snapshot() *dto.ApplicationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.Clone()
}

// Hydrate merges remote case and applicant payloads over a fresh template,
// replacing the working record.
func (s *FormDataStore) Hydrate(caseData *dto.CaseData, applicant *dto.ApplicantData) {
	record := dto.NewApplicationRecord()
	record.MergeCase(caseData)
	record.MergeApplicant(applicant, time.Now())

	s.mu.Lock()
	s.record = record
	s.mu.Unlock()
}

// SetField writes one field by its wire name. Date of birth and age stay
// mutually derivable: writing either recomputes the other.
func (s *FormDataStore) SetField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.record
	switch name {
	case dto.FieldFullName:
		r.FullName = value
	case dto.FieldEmail:
		r.Email = value
	case dto.FieldPhone:
		r.Phone = value
	case dto.FieldAddress:
		r.Address = value
	case dto.FieldDateOfBirth:
		if value == "" {
			r.DateOfBirth = time.Time{}
			r.Age = 0
			return nil
		}
		dob, err := time.Parse(dto.DateLayout, value)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", value, err)
		}
		r.DateOfBirth = dob
		r.Age = utils.AgeFromDOB(dob, time.Now())
	case dto.FieldAge:
		age, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid age %q: %w", value, err)
		}
		r.Age = age
		r.DateOfBirth = utils.DOBFromAge(age, time.Now())
	case dto.FieldDepositAmount, dto.FieldMonthlyIncome, dto.FieldInterestRate:
		d := decimal.Zero
		if value != "" {
			parsed, err := decimal.NewFromString(value)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", value, err)
			}
			d = parsed
		}
		switch name {
		case dto.FieldDepositAmount:
			r.DepositAmount = d
		case dto.FieldMonthlyIncome:
			r.MonthlyIncome = d
		case dto.FieldInterestRate:
			r.InterestRate = d
		}
	case dto.FieldTermMonths:
		if value == "" {
			r.TermMonths = 0
			return nil
		}
		months, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid term %q: %w", value, err)
		}
		r.TermMonths = months
	case dto.FieldVerified:
		r.Verified = value == "true"
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

// SetStatus writes the workflow status label.
func (s *FormDataStore) SetStatus(status string) {
	s.mu.Lock()
	s.record.Status = status
	s.mu.Unlock()
}

// ReplaceDocuments swaps an exhibit slot's records for a completed batch.
// Every replaced record's preview handle is released before the new batch
// takes the slot.
func (s *FormDataStore) ReplaceDocuments(exhibit string, docs []*dto.DocumentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, old := range s.record.Documents[exhibit] {
		old.ReleasePreview()
	}
	s.record.Documents[exhibit] = docs
}

// RemoveDocument removes one record from its slot and releases its preview
// handle. Returns false when the record is not in the slot.
func (s *FormDataStore) RemoveDocument(exhibit, docID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.record.Documents[exhibit]
	for i, doc := range docs {
		if doc.ID == docID {
			doc.ReleasePreview()
			s.record.Documents[exhibit] = append(docs[:i:i], docs[i+1:]...)
			return true
		}
	}
	return false
}

// ReleaseAll releases every preview handle the record still holds. Called when
// a session is discarded.
func (s *FormDataStore) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, docs := range s.record.Documents {
		for _, doc := range docs {
			doc.ReleasePreview()
		}
	}
}
