package fieldcompare

import (
	"fmt"
	"math"
	"strings"
	"time"

	"ekyc.io/application/utils"
)

// ExactResult is the outcome of an exact or date comparison.
type ExactResult struct {
	Match    bool
	Score    float64
	DaysDiff *int
}

// CompareExact trims and upper-cases both values before comparing. Two missing
// values agree.
func CompareExact(extracted, declared *string) ExactResult {
	if extracted == nil && declared == nil {
		return ExactResult{Match: true, Score: 1}
	}
	if extracted == nil || declared == nil {
		return ExactResult{}
	}
	if strings.ToUpper(strings.TrimSpace(*extracted)) == strings.ToUpper(strings.TrimSpace(*declared)) {
		return ExactResult{Match: true, Score: 1}
	}
	return ExactResult{}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"02-01-2006",
	"02/01/2006",
	"02.01.2006",
	"20060102",
}

// ParseDate accepts ISO, day-first and compact dates.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CompareDates allows a difference of up to toleranceDays, decaying the score
// linearly as 1 - d/(tolerance+1).
func CompareDates(extracted, declared *string, toleranceDays int) ExactResult {
	if extracted == nil && declared == nil {
		zero := 0
		return ExactResult{Match: true, Score: 1, DaysDiff: &zero}
	}
	if extracted == nil || declared == nil {
		return ExactResult{}
	}
	a, okA := ParseDate(*extracted)
	b, okB := ParseDate(*declared)
	if !okA || !okB {
		return ExactResult{}
	}
	days := int(math.Round(math.Abs(a.Sub(b).Hours()) / 24))
	switch {
	case days == 0:
		return ExactResult{Match: true, Score: 1, DaysDiff: &days}
	case days <= toleranceDays:
		return ExactResult{Match: true, Score: utils.Round(1-float64(days)/float64(toleranceDays+1), 4), DaysDiff: &days}
	default:
		return ExactResult{DaysDiff: &days}
	}
}

const (
	GenderMale   = "Male"
	GenderFemale = "Female"

	genderDigitPosition = 3
)

// NormalizeGender maps the spellings seen on forms and documents to Male or
// Female. Anything else is returned trimmed.
func NormalizeGender(raw string) string {
	v := strings.TrimSpace(raw)
	switch strings.ToLower(v) {
	case "m", "male", "ذكر":
		return GenderMale
	case "f", "female", "أنثى", "انثى", "انثي":
		return GenderFemale
	}
	return v
}

// ExpectedGender reads the fourth digit of a national identifier: 0 is female
// and 1 is male. Any other character makes the identifier invalid.
func ExpectedGender(idNumber string) (string, error) {
	id := strings.TrimSpace(idNumber)
	if len(id) <= genderDigitPosition {
		return "", fmt.Errorf("identifier %q is too short to carry a gender digit", id)
	}
	switch id[genderDigitPosition] {
	case '0':
		return GenderFemale, nil
	case '1':
		return GenderMale, nil
	}
	return "", fmt.Errorf("invalid identifier: 4th digit %q must be 0 or 1", string(id[genderDigitPosition]))
}

// GenderResult adds the fraud cross-check to a gender comparison.
type GenderResult struct {
	ExactResult
	Expected      *string
	FraudDetected bool
	FraudReason   *string
}

func genderFraud(reason string, expected *string) GenderResult {
	return GenderResult{Expected: expected, FraudDetected: true, FraudReason: &reason}
}

// CompareGender compares passports case-insensitively. For national IDs the
// identifier's gender digit must agree with both the extracted and the declared
// value, otherwise fraud is flagged whatever the plain comparison says.
func CompareGender(extracted, declared *string, idNumber *string, idType IDType) GenderResult {
	var ext, decl *string
	if extracted != nil {
		v := NormalizeGender(*extracted)
		ext = &v
	}
	if declared != nil {
		v := NormalizeGender(*declared)
		decl = &v
	}
	if idType == IDTypePassport || idNumber == nil {
		return GenderResult{ExactResult: CompareExact(ext, decl)}
	}

	expected, err := ExpectedGender(*idNumber)
	if err != nil {
		return genderFraud(err.Error(), nil)
	}
	if ext != nil && *ext != expected {
		return genderFraud(fmt.Sprintf("extracted gender %q does not match the identifier (expected %q)", *ext, expected), &expected)
	}
	if decl != nil && *decl != expected {
		return genderFraud(fmt.Sprintf("declared gender %q does not match the identifier (expected %q)", *decl, expected), &expected)
	}
	// both agree with the identifier, or the missing one is implied by it
	return GenderResult{ExactResult: ExactResult{Match: true, Score: 1}, Expected: &expected}
}
