package fieldcompare

import (
	"context"
	"testing"

	"ekyc.io/application/placematch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransliterator struct {
	out string
}

func (s stubTransliterator) ToLatin(context.Context, string) (string, error) {
	return s.out, nil
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	places, err := placematch.DefaultGazetteer()
	require.NoError(t, err)
	return NewEngine(nil, places, stubTransliterator{out: "Fatima Ali"})
}

func declaredID() Fields {
	return Fields{
		IDNumber:     str("02000005039"),
		NameArabic:   str("فاطمة علي"),
		DateOfBirth:  str("1990-05-17"),
		Gender:       str("female"),
		PlaceOfBirth: str("عدن - كريتر"),
		IssuanceDate: str("2020-01-01"),
		ExpiryDate:   str("2030-01-01"),
	}
}

func extractedID() Fields {
	return Fields{
		IDNumber:     str("02000005039"),
		NameArabic:   str("فاطمه علي"),
		DateOfBirth:  str("17/05/1990"),
		Gender:       str("أنثى"),
		PlaceOfBirth: str("عدن، كريتر"),
		IssuanceDate: str("01.01.2020"),
		ExpiryDate:   str("20300101"),
	}
}

func TestCompareFieldsApprovesMatchingNationalID(t *testing.T) {
	report := newEngine(t).CompareFields(context.Background(), declaredID(), extractedID(), 1)

	assert.Equal(t, IDTypeNationalID, report.IDType)
	assert.Equal(t, OverallApproved, report.OverallDecision)
	assert.Equal(t, Summary{Total: 7, Passed: 7}, report.Summary)
	assert.InDelta(t, 1.0, report.OverallScore, 1e-9)
	assert.Nil(t, report.Field(FieldPassportNumber), "passport number is skipped for national IDs")
	assert.Nil(t, report.Field(FieldNameEnglish), "english name is optional on national IDs")
	assert.Equal(t, []string{"all fields meet defined thresholds", "weighted matching score: 100.00%"}, report.Recommendations)

	gender := report.Field(FieldGender)
	require.NotNil(t, gender)
	require.NotNil(t, gender.ExpectedGender)
	assert.Equal(t, GenderFemale, *gender.ExpectedGender)
}

func TestCompareFieldsOutcomes(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(declared, extracted *Fields)
		field        string
		wantDecision Decision
		wantOverall  OverallDecision
	}{
		{
			name:         "birth date one day apart is reviewed",
			mutate:       func(_, e *Fields) { e.DateOfBirth = str("1990-05-18") },
			field:        FieldDateOfBirth,
			wantDecision: DecisionManualReview,
			wantOverall:  OverallManualReview,
		},
		{
			name:         "declared gender contradicts identifier",
			mutate:       func(d, e *Fields) { d.Gender = str("male"); e.Gender = nil },
			field:        FieldGender,
			wantDecision: DecisionReject,
			wantOverall:  OverallRejected,
		},
		{
			name:         "id number mismatch",
			mutate:       func(_, e *Fields) { e.IDNumber = str("02000005038") },
			field:        FieldIDNumber,
			wantDecision: DecisionReject,
			wantOverall:  OverallRejected,
		},
		{
			name:         "arabic name far off",
			mutate:       func(_, e *Fields) { e.NameArabic = str("خالد حسن") },
			field:        FieldNameArabic,
			wantDecision: DecisionReject,
			wantOverall:  OverallRejected,
		},
		{
			name:         "expiry date mismatch is reviewed",
			mutate:       func(_, e *Fields) { e.ExpiryDate = str("2031-01-01") },
			field:        FieldExpiryDate,
			wantDecision: DecisionManualReview,
			wantOverall:  OverallManualReview,
		},
		{
			name:         "place in another governorate never rejects",
			mutate:       func(_, e *Fields) { e.PlaceOfBirth = str("تعز") },
			field:        FieldPlaceOfBirth,
			wantDecision: DecisionManualReview,
			wantOverall:  OverallManualReview,
		},
		{
			name:         "numeric place is reviewed",
			mutate:       func(d, _ *Fields) { d.PlaceOfBirth = str("77123456") },
			field:        FieldPlaceOfBirth,
			wantDecision: DecisionManualReview,
			wantOverall:  OverallManualReview,
		},
		{
			name:         "birth date missing everywhere",
			mutate:       func(d, e *Fields) { d.DateOfBirth = nil; e.DateOfBirth = nil },
			field:        FieldDateOfBirth,
			wantDecision: DecisionReject,
			wantOverall:  OverallRejected,
		},
		{
			name:         "english name compared through transliteration",
			mutate:       func(d, _ *Fields) { d.NameEnglish = str("Fatima Ali") },
			field:        FieldNameEnglish,
			wantDecision: DecisionPass,
			wantOverall:  OverallApproved,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			declared, extracted := declaredID(), extractedID()
			tt.mutate(&declared, &extracted)

			report := newEngine(t).CompareFields(context.Background(), declared, extracted, 1)
			field := report.Field(tt.field)
			require.NotNil(t, field)
			assert.Equal(t, tt.wantDecision, field.Decision)
			assert.Equal(t, tt.wantOverall, report.OverallDecision)
		})
	}
}

func TestCompareFieldsGenderFraud(t *testing.T) {
	declared := declaredID()
	declared.Gender = str("male")

	report := newEngine(t).CompareFields(context.Background(), declared, extractedID(), 1)
	gender := report.Field(FieldGender)
	require.NotNil(t, gender)
	assert.True(t, gender.FraudDetected)
	assert.Equal(t, OverallRejected, report.OverallDecision)
	assert.Contains(t, report.Recommendations, "high-severity fields failed: gender")
	assert.Contains(t, report.Recommendations, "fraud alert: gender")
}

func TestCompareFieldsBirthDateTolerance(t *testing.T) {
	extracted := extractedID()
	extracted.DateOfBirth = str("1990-05-18")

	report := newEngine(t).CompareFields(context.Background(), declaredID(), extracted, 1)
	dob := report.Field(FieldDateOfBirth)
	require.NotNil(t, dob)
	assert.True(t, dob.Match)
	assert.Greater(t, dob.Score, 0.0)
	assert.Less(t, dob.Score, 1.0)
	assert.Contains(t, report.Recommendations, "high-severity borderline: date_of_birth")
}

func TestCompareFieldsPassport(t *testing.T) {
	declared := Fields{
		PassportNumber: str("A1234567"),
		NameArabic:     str("فاطمة علي"),
		DateOfBirth:    str("1990-05-17"),
		Gender:         str("male"),
	}
	extracted := Fields{
		IDNumber:       str("02000005039"),
		PassportNumber: str("a1234567"),
		NameArabic:     str("فاطمة علي"),
		NameEnglish:    str("FATIMA ALI"),
		DateOfBirth:    str("1990-05-17"),
		Gender:         str("M"),
		ExpiryDate:     str("2030-01-01"),
	}

	report := newEngine(t).CompareFields(context.Background(), declared, extracted, 1)
	assert.Equal(t, IDTypePassport, report.IDType)
	assert.Nil(t, report.Field(FieldIDNumber))
	assert.Nil(t, report.Field(FieldNameEnglish), "undeclared medium field read from the document is skipped")
	assert.Nil(t, report.Field(FieldExpiryDate), "undeclared medium field read from the document is skipped")

	issuance := report.Field(FieldIssuanceDate)
	require.NotNil(t, issuance, "a field absent from both sides is still decided")
	assert.Equal(t, DecisionManualReview, issuance.Decision)
	place := report.Field(FieldPlaceOfBirth)
	require.NotNil(t, place)
	assert.Equal(t, DecisionManualReview, place.Decision)

	assert.Equal(t, OverallManualReview, report.OverallDecision)
	assert.Equal(t, Summary{Total: 6, Passed: 4, Review: 2}, report.Summary)
}

func TestCompareFieldsBlankOnBothSidesIsReviewed(t *testing.T) {
	declared, extracted := declaredID(), extractedID()
	for _, f := range []*Fields{&declared, &extracted} {
		f.PlaceOfBirth, f.IssuanceDate, f.ExpiryDate = nil, nil, nil
	}

	report := newEngine(t).CompareFields(context.Background(), declared, extracted, 1)

	for _, name := range []string{FieldPlaceOfBirth, FieldIssuanceDate, FieldExpiryDate} {
		field := report.Field(name)
		require.NotNil(t, field, name)
		assert.Equal(t, DecisionManualReview, field.Decision, name)
		assert.Contains(t, field.Reason, "missing from both sources", name)
	}
	assert.Nil(t, report.Field(FieldNameEnglish), "english name stays optional on national IDs")
	assert.Equal(t, OverallManualReview, report.OverallDecision)
	assert.Equal(t, Summary{Total: 7, Passed: 4, Review: 3}, report.Summary)
	assert.Contains(t, report.Recommendations, "medium-severity mismatches: issuance_date, expiry_date")
	assert.Contains(t, report.Recommendations, "low-severity mismatches: place_of_birth")
}

func TestCompareFieldsSkipsUndeclaredFieldReadFromDocument(t *testing.T) {
	declared := declaredID()
	declared.ExpiryDate = nil

	report := newEngine(t).CompareFields(context.Background(), declared, extractedID(), 1)
	assert.Nil(t, report.Field(FieldExpiryDate))
	assert.Equal(t, OverallApproved, report.OverallDecision)
}

func TestCompareFieldsScalesNamesByConfidence(t *testing.T) {
	report := newEngine(t).CompareFields(context.Background(), declaredID(), extractedID(), 0.8)
	name := report.Field(FieldNameArabic)
	require.NotNil(t, name)
	assert.InDelta(t, 0.8, name.Score, 1e-9)
	assert.Equal(t, DecisionManualReview, name.Decision)
}

func TestCompareFieldsWithoutGazetteer(t *testing.T) {
	report := NewEngine(nil, nil, nil).CompareFields(context.Background(), declaredID(), extractedID(), 1)
	place := report.Field(FieldPlaceOfBirth)
	require.NotNil(t, place)
	assert.Equal(t, DecisionManualReview, place.Decision)
}

func TestDisabledFieldsAreSkipped(t *testing.T) {
	fields := DefaultFields()
	for i := range fields {
		if fields[i].Name == FieldPlaceOfBirth {
			fields[i].Enabled = false
		}
	}
	report := NewEngine(fields, nil, nil).CompareFields(context.Background(), declaredID(), extractedID(), 1)
	assert.Nil(t, report.Field(FieldPlaceOfBirth))
	assert.Equal(t, OverallApproved, report.OverallDecision)
}

func TestDecideTokenFieldsNeverReject(t *testing.T) {
	cfg := FieldConfig{Name: "place", Severity: SeverityHigh, MatchingType: MatchToken, PassThreshold: 0.7, ManualThreshold: 0.4}
	decision, _ := decide(cfg, FieldResult{Score: 0})
	assert.Equal(t, DecisionManualReview, decision)
}

func TestWeightedScore(t *testing.T) {
	results := []FieldResult{
		{Severity: SeverityHigh, Score: 1},
		{Severity: SeverityHigh, Score: 1},
		{Severity: SeverityMedium, Score: 0.5},
		{Severity: SeverityLow, Score: 0},
	}
	assert.InDelta(t, 0.75, WeightedScore(results), 1e-9)
	assert.InDelta(t, 0.3, WeightedScore([]FieldResult{{Severity: SeverityHigh, Score: 0.5}}), 1e-9, "absent severities add nothing")
	assert.InDelta(t, 0.9, WeightedScore([]FieldResult{{Severity: SeverityHigh, Score: 1}, {Severity: SeverityMedium, Score: 1}}), 1e-9)
	assert.Zero(t, WeightedScore(nil))
}
