package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidExperience is returned when an experience value is not a finite number.
var ErrInvalidExperience = errors.New("experience must be a finite number")

// ParseExperienceYears parses a user-entered experience value.
// Surrounding whitespace is ignored; NaN and infinities are rejected.
func ParseExperienceYears(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, ErrInvalidExperience
	}
	if err := ValidateExperienceYears(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ValidateExperienceYears reports whether v can be stored on a Member.
func ValidateExperienceYears(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidExperience
	}
	return nil
}
