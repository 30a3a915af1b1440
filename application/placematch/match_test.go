package placematch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string {
	return &s
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"عدن", "كريتر"}, Tokens("عدن / عدن ، كريتر"))
	assert.Equal(t, []string{"امانه العاصمه", "معين"}, Tokens("أمانة العاصمة – معين"))
	assert.Empty(t, Tokens(" - , "))
}

func TestIsGarbage(t *testing.T) {
	assert.True(t, IsGarbage("01234567"))
	assert.True(t, IsGarbage("١٢٣٤ عدن"))
	assert.True(t, IsGarbage("   "))
	assert.False(t, IsGarbage("عدن 2"))
}

func TestClassify(t *testing.T) {
	g, err := DefaultGazetteer()
	require.NoError(t, err)

	assert.Equal(t, Token{Text: "صنعاء", Kind: KindGovernorate, Governorate: "صنعاء"}, g.Classify("امانه العاصمه"))
	assert.Equal(t, KindGovernorate, g.Classify("aden").Kind, "english names resolve")
	assert.Equal(t, Token{Text: "كريتر", Kind: KindDistrict, Governorate: "عدن"}, g.Classify("كريتر"))
	assert.Equal(t, KindGovernorate, g.Classify("الحديده").Kind, "governorate wins over a district of the same name")
	assert.Equal(t, KindUnknown, g.Classify("القاهره الجديده").Kind)
}

func TestCompare(t *testing.T) {
	g, err := DefaultGazetteer()
	require.NoError(t, err)

	tests := []struct {
		name        string
		declared    *string
		extracted   *string
		confidence  float64
		wantScore   float64
		needsReview bool
	}{
		{name: "governorate and district", declared: ptr("صنعاء - بني الحارث"), extracted: ptr("صنعاء، بني الحارث"), confidence: 1, wantScore: 1},
		{name: "governorate variant only", declared: ptr("صنعاء"), extracted: ptr("أمانة العاصمة - معين"), confidence: 0.5, wantScore: 0.3},
		{name: "english declared", declared: ptr("Aden"), extracted: ptr("عدن"), confidence: 1, wantScore: 0.6},
		{name: "different places score zero", declared: ptr("تعز"), extracted: ptr("عدن"), confidence: 1, wantScore: 0},
		{name: "nothing extracted", declared: ptr("تعز"), extracted: nil, confidence: 1, wantScore: 0},
		{name: "blank declared accepts extraction", declared: ptr("  "), extracted: ptr("عدن - كريتر"), confidence: 0.7, wantScore: 1},
		{name: "numeric declared", declared: ptr("01234567"), extracted: ptr("عدن"), confidence: 1, needsReview: true},
		{name: "numeric extraction", declared: ptr("عدن"), extracted: ptr("9988776"), confidence: 1, needsReview: true},
		{name: "no data", confidence: 1, needsReview: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := g.Compare(tt.declared, tt.extracted, tt.confidence)
			assert.Equal(t, tt.needsReview, res.NeedsReview)
			assert.InDelta(t, tt.wantScore, res.Score, 1e-9)
			assert.NotEmpty(t, res.Reason)
		})
	}
}

func TestCompareReportsPlaces(t *testing.T) {
	g, err := DefaultGazetteer()
	require.NoError(t, err)

	res := g.Compare(nil, ptr("عدن - كريتر"), 1)
	require.NotNil(t, res.Extracted.Governorate)
	require.NotNil(t, res.Extracted.District)
	assert.Equal(t, "عدن", *res.Extracted.Governorate)
	assert.Equal(t, "كريتر", *res.Extracted.District)
	assert.Equal(t, "عدن / كريتر", res.Extracted.Describe())
	assert.Equal(t, "unknown", Place{}.Describe())
}

func TestParseGazetteer(t *testing.T) {
	_, err := ParseGazetteer([]byte("governorates: ["))
	assert.Error(t, err)

	_, err = ParseGazetteer([]byte("governorates: []"))
	assert.Error(t, err)

	g, err := ParseGazetteer([]byte(`
governorates:
  - name: "A"
    districts: ["X"]
  - name: "B"
    districts: ["X", "Y"]
`))
	require.NoError(t, err)
	assert.Equal(t, "A", g.Classify("x").Governorate, "first owner keeps a shared district")
	assert.Equal(t, "B", g.Classify("y").Governorate)
}
