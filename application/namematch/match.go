package namematch

import (
	"context"
	"sort"
	"strings"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/utils"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/rotisserie/eris"
)

const (
	CharacterWeight = 0.7
	TokenWeight     = 0.3
)

// Transliterator renders Arabic names in Latin script.
type Transliterator interface {
	ToLatin(ctx context.Context, arabic string) (string, error)
}

// Match is the outcome of comparing a declared name with an extracted one.
type Match struct {
	Declared   string  `json:"declared"`
	Extracted  string  `json:"extracted"`
	Similarity float64 `json:"similarity"`
	Confidence float64 `json:"confidence"`
	Score      float64 `json:"score"`
}

func sequenceRatio(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	return difflib.NewMatcher(a, b).Ratio()
}

func characters(s string) []string {
	return strings.Split(s, "")
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// CharacterSimilarity is the sequence matcher ratio over characters. Token order
// is ignored by also comparing the sorted token forms and keeping the better ratio.
func CharacterSimilarity(a, b string) float64 {
	direct := sequenceRatio(characters(a), characters(b))
	sorted := sequenceRatio(characters(sortedTokens(a)), characters(sortedTokens(b)))
	return max(direct, sorted)
}

// TokenOverlap is the Jaccard index of the two token sets.
func TokenOverlap(a, b string) float64 {
	left := map[string]struct{}{}
	for _, t := range strings.Fields(a) {
		left[t] = struct{}{}
	}
	right := map[string]struct{}{}
	for _, t := range strings.Fields(b) {
		right[t] = struct{}{}
	}
	if len(left) == 0 && len(right) == 0 {
		return 0
	}
	shared := 0
	for t := range left {
		if _, ok := right[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(left)+len(right)-shared)
}

// Similarity normalises both names and blends character similarity with token
// overlap. An empty name on either side scores 0.
func Similarity(declared, extracted string) float64 {
	a, b := Normalize(declared), Normalize(extracted)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return utils.Round(CharacterWeight*CharacterSimilarity(a, b)+TokenWeight*TokenOverlap(a, b), 4)
}

// Compare scores a name pair and scales it by the extraction confidence.
func Compare(declared, extracted string, confidence float64) Match {
	similarity := Similarity(declared, extracted)
	confidence = utils.Clamp01(confidence)
	return Match{
		Declared:   Normalize(declared),
		Extracted:  Normalize(extracted),
		Similarity: similarity,
		Confidence: confidence,
		Score:      utils.Round(similarity*confidence, 4),
	}
}

// CompareAcrossScripts transliterates an Arabic extraction before comparing it
// with a Latin declared name.
func CompareAcrossScripts(ctx context.Context, t Transliterator, declaredLatin, extractedArabic string, confidence float64) (Match, error) {
	if t == nil {
		return Match{}, &apperrors.CollaboratorUnavailable{Collaborator: "transliteration"}
	}
	latin, err := t.ToLatin(ctx, extractedArabic)
	if err != nil {
		if apperrors.IsCollaboratorUnavailable(err) || apperrors.IsCheckTimeout(err) {
			return Match{}, err
		}
		return Match{}, &apperrors.CollaboratorUnavailable{Collaborator: "transliteration", Err: eris.Wrap(err, "transliterate name")}
	}
	return Compare(declaredLatin, latin, confidence), nil
}
