package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOverDefaults(t *testing.T) {
	record := NewApplicationRecord()
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	record.MergeCase(&CaseData{
		CaseID:        "case-1",
		ClientID:      "client-1",
		Status:        "documents",
		DepositAmount: "2500.50",
		TermMonths:    24,
	})
	record.MergeApplicant(&ApplicantData{
		ClientID:    "client-1",
		FullName:    "Ada Lovelace",
		DateOfBirth: "1990-12-10",
	}, now)

	assert.Equal(t, "case-1", record.CaseID)
	assert.Equal(t, "documents", record.Status)
	assert.Equal(t, "2500.5", record.DepositAmount.String())
	assert.Equal(t, 24, record.TermMonths)
	assert.Equal(t, "Ada Lovelace", record.FullName)
	assert.Equal(t, 35, record.Age, "age is derived from the merged date of birth")

	// Fields absent from both payloads keep their defined empty value.
	assert.Equal(t, "", record.Email)
	assert.Equal(t, "", record.Phone)
	assert.True(t, record.MonthlyIncome.IsZero())
	assert.NotNil(t, record.Documents)
}

func TestMergeCaseDocumentsLandInSlots(t *testing.T) {
	record := NewApplicationRecord()
	record.MergeCase(&CaseData{
		CaseID: "case-2",
		Documents: []RemoteDocument{
			{ID: "d1", Exhibit: "exhibit_a", DisplayName: "Exhibit A - id.pdf"},
			{ID: "d2", Exhibit: "exhibit_a", DisplayName: "Exhibit A - back.pdf"},
			{ID: "d3", Exhibit: "exhibit_c", DisplayName: "Exhibit C - payslip.pdf"},
		},
	})

	assert.Len(t, record.Documents["exhibit_a"], 2)
	assert.Len(t, record.Documents["exhibit_c"], 1)
}

func TestFieldValueEmptyForUnsetValues(t *testing.T) {
	record := NewApplicationRecord()

	assert.Equal(t, "", record.FieldValue(FieldDateOfBirth))
	assert.Equal(t, "", record.FieldValue(FieldDepositAmount))
	assert.Equal(t, "", record.FieldValue(FieldAge))
	assert.Equal(t, "", record.FieldValue(FieldVerified))

	record.DateOfBirth = time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC)
	record.Verified = true
	assert.Equal(t, "1990-12-10", record.FieldValue(FieldDateOfBirth))
	assert.Equal(t, "true", record.FieldValue(FieldVerified))
}

func TestCloneCopiesDocumentSlices(t *testing.T) {
	record := NewApplicationRecord()
	record.Documents["exhibit_a"] = []*DocumentRecord{{ID: "d1"}}

	cp := record.Clone()
	require.Len(t, cp.Documents["exhibit_a"], 1)

	cp.Documents["exhibit_a"] = append(cp.Documents["exhibit_a"], &DocumentRecord{ID: "d2"})
	assert.Len(t, record.Documents["exhibit_a"], 1, "clone mutations must not leak back")
}
