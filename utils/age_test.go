package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAgeFromDOB(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 30, AgeFromDOB(time.Date(1996, 8, 28, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 29, AgeFromDOB(time.Date(1996, 8, 29, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 30, AgeFromDOB(time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 0, AgeFromDOB(time.Time{}, now))
	assert.Equal(t, 0, AgeFromDOB(now.AddDate(1, 0, 0), now))
}

func TestDOBFromAgeRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	for _, age := range []int{0, 18, 42, 99} {
		dob := DOBFromAge(age, now)
		assert.Equal(t, age, AgeFromDOB(dob, now), "age %d should round-trip", age)
	}
}
