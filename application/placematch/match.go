package placematch

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"ekyc.io/application/namematch"
	"ekyc.io/application/utils"
)

const (
	RegionWeight    = 0.6
	SubRegionWeight = 0.4

	maxDigitShare = 0.5
)

var separators = regexp.MustCompile(`[-–—/،,]`)

// Place is the governorate and district read from one side of the comparison.
type Place struct {
	Governorate *string `json:"governorate"`
	District    *string `json:"district"`
}

// Result never carries a rejection: low scores go to manual review.
type Result struct {
	Score      float64 `json:"score"`
	BaseScore  float64 `json:"base_score"`
	Confidence float64 `json:"confidence"`
	// NeedsReview is set when the input cannot be scored at all.
	NeedsReview bool    `json:"needs_review"`
	Reason      string  `json:"reason"`
	Declared    Place   `json:"declared"`
	Extracted   Place   `json:"extracted"`
	Tokens      []Token `json:"tokens,omitempty"`
}

// Tokens splits raw text on place separators, normalises each part and drops
// duplicates while keeping order.
func Tokens(text string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, part := range separators.Split(text, -1) {
		token := namematch.Normalize(part)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	return out
}

// IsGarbage reports values that are mostly digits, such as an ID number read
// into the wrong field.
func IsGarbage(text string) bool {
	digits, total := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 {
		return true
	}
	return float64(digits)/float64(total) > maxDigitShare
}

func (g *Gazetteer) classifyAll(text string) []Token {
	tokens := []Token{}
	for _, t := range Tokens(text) {
		tokens = append(tokens, g.Classify(t))
	}
	return tokens
}

func placeOf(tokens []Token) Place {
	p := Place{}
	for _, t := range tokens {
		text := t.Text
		switch {
		case t.Kind == KindGovernorate && p.Governorate == nil:
			p.Governorate = &text
		case t.Kind == KindDistrict && p.District == nil:
			p.District = &text
		}
	}
	return p
}

func overlap(a, b []Token, kind Kind) bool {
	wanted := map[string]bool{}
	for _, t := range a {
		if t.Kind == kind {
			wanted[t.Text] = true
		}
	}
	for _, t := range b {
		if t.Kind == kind && wanted[t.Text] {
			return true
		}
	}
	return false
}

// Compare scores a declared place of birth against the extracted one as
// 0.6 for a shared governorate plus 0.4 for a shared district, scaled by the
// extraction confidence.
func (g *Gazetteer) Compare(declared, extracted *string, confidence float64) Result {
	confidence = utils.Clamp01(confidence)
	decl := utils.StringOrNil(declared)
	ext := utils.StringOrNil(extracted)

	if decl == nil {
		if ext == nil {
			return Result{NeedsReview: true, Reason: "no place of birth data available"}
		}
		if IsGarbage(*ext) {
			return Result{NeedsReview: true, Confidence: confidence, Reason: "extracted place of birth is not a place name"}
		}
		tokens := g.classifyAll(*ext)
		return Result{
			Score:      1,
			BaseScore:  1,
			Confidence: confidence,
			Reason:     "no declared value, extracted place accepted",
			Extracted:  placeOf(tokens),
			Tokens:     tokens,
		}
	}
	if IsGarbage(*decl) || (ext != nil && IsGarbage(*ext)) {
		return Result{NeedsReview: true, Confidence: confidence, Reason: "place of birth appears to be numeric data"}
	}

	declTokens := g.classifyAll(*decl)
	extTokens := []Token{}
	if ext != nil {
		extTokens = g.classifyAll(*ext)
	}
	base := 0.0
	if overlap(declTokens, extTokens, KindGovernorate) {
		base += RegionWeight
	}
	if overlap(declTokens, extTokens, KindDistrict) {
		base += SubRegionWeight
	}
	score := utils.Round(base*confidence, 4)
	return Result{
		Score:      score,
		BaseScore:  base,
		Confidence: confidence,
		Reason:     fmt.Sprintf("governorate/district overlap %.2f at confidence %.2f", base, confidence),
		Declared:   placeOf(declTokens),
		Extracted:  placeOf(extTokens),
		Tokens:     append(declTokens, extTokens...),
	}
}

// Describe renders a place for logs and reasons.
func (p Place) Describe() string {
	parts := []string{}
	if p.Governorate != nil {
		parts = append(parts, *p.Governorate)
	}
	if p.District != nil {
		parts = append(parts, *p.District)
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, " / ")
}
