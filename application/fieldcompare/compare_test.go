package fieldcompare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string {
	return &s
}

func TestCompareExact(t *testing.T) {
	tests := []struct {
		name      string
		extracted *string
		declared  *string
		wantMatch bool
		wantScore float64
	}{
		{name: "both missing agree", wantMatch: true, wantScore: 1},
		{name: "declared missing", extracted: str("123"), wantMatch: false, wantScore: 0},
		{name: "extracted missing", declared: str("123"), wantMatch: false, wantScore: 0},
		{name: "case and whitespace ignored", extracted: str(" ab12 "), declared: str("AB12"), wantMatch: true, wantScore: 1},
		{name: "different values", extracted: str("AB12"), declared: str("AB13"), wantMatch: false, wantScore: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareExact(tt.extracted, tt.declared)
			assert.Equal(t, tt.wantMatch, got.Match)
			assert.Equal(t, tt.wantScore, got.Score)
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"1990-05-17", "1990/05/17", "1990.05.17", "17-05-1990", "17/05/1990", "17.05.1990", "19900517", " 1990-05-17 "} {
		got, ok := ParseDate(raw)
		require.True(t, ok, raw)
		assert.True(t, want.Equal(got), raw)
	}
	_, ok := ParseDate("May 17 1990")
	assert.False(t, ok)
}

func TestCompareDates(t *testing.T) {
	tests := []struct {
		name      string
		extracted *string
		declared  *string
		tolerance int
		wantMatch bool
		wantScore float64
	}{
		{name: "equal across formats", extracted: str("17/05/1990"), declared: str("1990-05-17"), tolerance: 1, wantMatch: true, wantScore: 1},
		{name: "one day inside tolerance", extracted: str("1990-05-18"), declared: str("1990-05-17"), tolerance: 1, wantMatch: true, wantScore: 0.5},
		{name: "two days inside wider tolerance", extracted: str("1990-05-19"), declared: str("1990-05-17"), tolerance: 3, wantMatch: true, wantScore: 0.5},
		{name: "beyond tolerance", extracted: str("1990-05-20"), declared: str("1990-05-17"), tolerance: 1, wantMatch: false, wantScore: 0},
		{name: "exact only", extracted: str("1990-05-18"), declared: str("1990-05-17"), tolerance: 0, wantMatch: false, wantScore: 0},
		{name: "unparseable", extracted: str("17 May"), declared: str("1990-05-17"), tolerance: 1, wantMatch: false, wantScore: 0},
		{name: "one side missing", declared: str("1990-05-17"), tolerance: 1, wantMatch: false, wantScore: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareDates(tt.extracted, tt.declared, tt.tolerance)
			assert.Equal(t, tt.wantMatch, got.Match)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
		})
	}

	beyond := CompareDates(str("1990-05-20"), str("1990-05-17"), 1)
	require.NotNil(t, beyond.DaysDiff)
	assert.Equal(t, 3, *beyond.DaysDiff)

	partial := CompareDates(str("1990-05-18"), str("1990-05-17"), 1)
	assert.Greater(t, partial.Score, 0.0)
	assert.Less(t, partial.Score, 1.0)
}

func TestExpectedGender(t *testing.T) {
	gender, err := ExpectedGender("02000005039")
	require.NoError(t, err)
	assert.Equal(t, GenderFemale, gender)

	gender, err = ExpectedGender("02010005039")
	require.NoError(t, err)
	assert.Equal(t, GenderMale, gender)

	_, err = ExpectedGender("02050005039")
	assert.ErrorContains(t, err, "invalid identifier")

	_, err = ExpectedGender("020")
	assert.Error(t, err)
}

func TestCompareGender(t *testing.T) {
	tests := []struct {
		name      string
		extracted *string
		declared  *string
		id        *string
		idType    IDType
		wantFraud bool
		wantScore float64
	}{
		{name: "declared male on a female identifier", extracted: str("Female"), declared: str("male"), id: str("02000005039"), idType: IDTypeNationalID, wantFraud: true},
		{name: "extracted disagrees with identifier", extracted: str("ذكر"), declared: str("female"), id: str("02000005039"), idType: IDTypeNationalID, wantFraud: true},
		{name: "all agree across scripts", extracted: str("أنثى"), declared: str("female"), id: str("02000005039"), idType: IDTypeNationalID, wantScore: 1},
		{name: "missing extraction implied by identifier", declared: str("M"), id: str("02010005039"), idType: IDTypeNationalID, wantScore: 1},
		{name: "invalid gender digit", extracted: str("Male"), declared: str("Male"), id: str("02090005039"), idType: IDTypeNationalID, wantFraud: true},
		{name: "passport ignores digit", extracted: str("M"), declared: str("male"), id: str("02090005039"), idType: IDTypePassport, wantScore: 1},
		{name: "passport mismatch", extracted: str("F"), declared: str("male"), idType: IDTypePassport, wantScore: 0},
		{name: "no identifier", extracted: str("male"), declared: str("Male"), idType: IDTypeNationalID, wantScore: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareGender(tt.extracted, tt.declared, tt.id, tt.idType)
			assert.Equal(t, tt.wantFraud, got.FraudDetected)
			assert.Equal(t, tt.wantScore, got.Score)
			if tt.wantFraud {
				require.NotNil(t, got.FraudReason)
				assert.NotEmpty(t, *got.FraudReason)
			}
		})
	}
}

func TestNormalizeGender(t *testing.T) {
	assert.Equal(t, GenderMale, NormalizeGender(" MALE "))
	assert.Equal(t, GenderFemale, NormalizeGender("انثى"))
	assert.Equal(t, "x", NormalizeGender("x"))
}
