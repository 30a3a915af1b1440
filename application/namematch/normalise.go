package namematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tatweel = 'ـ'

// letter forms that OCR and users spell interchangeably
var arabicFolds = map[rune]rune{
	'أ': 'ا',
	'إ': 'ا',
	'آ': 'ا',
	'ٱ': 'ا',
	'ة': 'ه',
	'ى': 'ي',
}

// stripMarks decomposes, drops combining marks (harakat, hamza carriers, Latin
// accents) and tatweel, then recomposes. Chains are stateful so one is built per call.
func stripMarks(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.Predicate(func(r rune) bool {
			return unicode.Is(unicode.Mn, r) || r == tatweel
		})),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ContainsArabic reports whether any rune of s is in the Arabic script.
func ContainsArabic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}

// NormalizeArabic folds alef, taa marbouta and alef maqsura variants, strips
// diacritics and tatweel and keeps only letters separated by single spaces.
func NormalizeArabic(s string) string {
	folded := strings.Map(func(r rune) rune {
		if to, ok := arabicFolds[r]; ok {
			return to
		}
		return r
	}, s)
	return keepLetters(stripMarks(folded), false)
}

// NormalizeEnglish lower-cases, removes accents and keeps only letters and spaces.
func NormalizeEnglish(s string) string {
	return keepLetters(stripMarks(s), true)
}

// Normalize picks the Arabic or English rules from the content of s.
func Normalize(s string) string {
	if ContainsArabic(s) {
		return NormalizeArabic(s)
	}
	return NormalizeEnglish(s)
}

func keepLetters(s string, lower bool) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			if lower {
				r = unicode.ToLower(r)
			}
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
