package utils

import "time"

// AgeFromDOB returns the number of whole years between dob and now.
func AgeFromDOB(dob time.Time, now time.Time) int {
	if dob.IsZero() || dob.After(now) {
		return 0
	}

	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}

// DOBFromAge derives a date of birth from a stated age. The exact birthday is
// unknown, so the result is pinned to today's month and day in the matching
// year, which keeps AgeFromDOB(DOBFromAge(a)) == a.
func DOBFromAge(age int, now time.Time) time.Time {
	if age < 0 {
		age = 0
	}
	return time.Date(now.Year()-age, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
