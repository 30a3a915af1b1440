package fieldcompare

import (
	"context"
	"fmt"
	"strings"

	"ekyc.io/application/namematch"
	"ekyc.io/application/placematch"
	"ekyc.io/application/utils"
	"ekyc.io/infrastructure/logger"
)

type Engine struct {
	fields         []FieldConfig
	places         *placematch.Gazetteer
	transliterator namematch.Transliterator
}

// NewEngine uses DefaultFields when fields is empty. A nil gazetteer sends
// place of birth to manual review; a nil transliterator disables cross-script
// name comparison.
func NewEngine(fields []FieldConfig, places *placematch.Gazetteer, transliterator namematch.Transliterator) *Engine {
	if len(fields) == 0 {
		fields = DefaultFields()
	}
	return &Engine{fields: fields, places: places, transliterator: transliterator}
}

func (e *Engine) Fields() []FieldConfig {
	return e.fields
}

// DetectIDType treats a declared passport number as a passport attempt.
func DetectIDType(declared Fields) IDType {
	if declared.Get(FieldPassportNumber) != nil {
		return IDTypePassport
	}
	return IDTypeNationalID
}

func skippedFor(idType IDType) map[string]bool {
	if idType == IDTypePassport {
		return map[string]bool{FieldIDNumber: true}
	}
	return map[string]bool{FieldPassportNumber: true}
}

// optionalFor lists fields skipped whenever the user left them blank, whatever
// the document yielded.
func optionalFor(idType IDType) map[string]bool {
	if idType == IDTypeNationalID {
		return map[string]bool{FieldNameEnglish: true}
	}
	return map[string]bool{}
}

// CompareFields compares every configured field and fuses the field decisions.
// Fields irrelevant to the detected document type are skipped, as are
// non-high-severity fields the user left blank while the document carries a
// value. A field missing from both sides is still decided.
func (e *Engine) CompareFields(ctx context.Context, declared, extracted Fields, confidence float64) Report {
	idType := DetectIDType(declared)
	skip := skippedFor(idType)
	optional := optionalFor(idType)
	idNumber := declared.Get(FieldIDNumber)
	if idNumber == nil {
		idNumber = extracted.Get(FieldIDNumber)
	}

	results := []FieldResult{}
	for _, cfg := range e.fields {
		if !cfg.Enabled || skip[cfg.Name] {
			continue
		}
		decl, ext := declared.Get(cfg.Name), extracted.Get(cfg.Name)
		if decl == nil && (optional[cfg.Name] || (ext != nil && cfg.Severity != SeverityHigh)) {
			continue
		}
		result := e.compareField(ctx, cfg, decl, ext, extracted, confidence, idNumber, idType)
		if result.FraudDetected {
			logger.Warning("field comparison flagged fraud", logger.LoggerOptions{
				Key:  "field",
				Data: result.FieldName,
			}, logger.LoggerOptions{
				Key:  "reason",
				Data: *result.FraudReason,
			})
		}
		results = append(results, result)
	}
	return summarise(idType, results)
}

func (e *Engine) compareField(ctx context.Context, cfg FieldConfig, decl, ext *string, extracted Fields, confidence float64, idNumber *string, idType IDType) FieldResult {
	result := FieldResult{
		FieldName:      cfg.Name,
		Severity:       cfg.Severity,
		MatchingType:   cfg.MatchingType,
		DeclaredValue:  decl,
		ExtractedValue: ext,
	}
	if decl == nil && ext == nil {
		if cfg.Severity == SeverityHigh {
			result.Decision = DecisionReject
			result.Reason = fmt.Sprintf("high severity field %s is missing from both sources", cfg.Name)
		} else {
			result.Decision = DecisionManualReview
			result.Reason = fmt.Sprintf("%s severity field %s is missing from both sources", cfg.Severity, cfg.Name)
		}
		return result
	}

	switch cfg.MatchingType {
	case MatchExact:
		if cfg.Name == FieldGender {
			gender := CompareGender(ext, decl, idNumber, idType)
			result.Match, result.Score = gender.Match, gender.Score
			result.ExpectedGender = gender.Expected
			result.FraudDetected, result.FraudReason = gender.FraudDetected, gender.FraudReason
		} else {
			exact := CompareExact(ext, decl)
			result.Match, result.Score = exact.Match, exact.Score
		}
	case MatchDate:
		date := CompareDates(ext, decl, cfg.ToleranceDays)
		result.Match, result.Score, result.DaysDiff = date.Match, date.Score, date.DaysDiff
	case MatchFuzzy:
		result.Score = e.compareName(ctx, cfg, decl, ext, extracted, confidence)
		result.Match = result.Score >= cfg.PassThreshold
	case MatchToken:
		if e.places == nil {
			result.Decision = DecisionManualReview
			result.Reason = "place gazetteer unavailable"
			return result
		}
		place := e.places.Compare(decl, ext, confidence)
		result.Place = &place
		result.Score = place.Score
		result.Match = place.Score >= cfg.PassThreshold
		if place.NeedsReview {
			result.Decision = DecisionManualReview
			result.Reason = place.Reason
			return result
		}
	}

	result.Decision, result.Reason = decide(cfg, result)
	return result
}

// compareName falls back to transliterating the extracted Arabic name when the
// document carries no Latin name.
func (e *Engine) compareName(ctx context.Context, cfg FieldConfig, decl, ext *string, extracted Fields, confidence float64) float64 {
	if decl != nil && ext != nil {
		return namematch.Compare(*decl, *ext, confidence).Score
	}
	arabic := extracted.Get(FieldNameArabic)
	if cfg.Name != FieldNameEnglish || decl == nil || arabic == nil || e.transliterator == nil {
		return 0
	}
	match, err := namematch.CompareAcrossScripts(ctx, e.transliterator, *decl, *arabic, confidence)
	if err != nil {
		logger.Warning("cross-script name comparison skipped", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return 0
	}
	return match.Score
}

// decide applies, in order: fraud rejects, the pass threshold passes, a high
// severity score under the manual threshold rejects, anything else is reviewed.
// Token fields never reject.
func decide(cfg FieldConfig, r FieldResult) (Decision, string) {
	switch {
	case r.FraudDetected:
		return DecisionReject, *r.FraudReason
	case r.Score >= cfg.PassThreshold:
		return DecisionPass, fmt.Sprintf("score %.2f meets pass threshold %.2f", r.Score, cfg.PassThreshold)
	case cfg.Severity == SeverityHigh && cfg.MatchingType != MatchToken && r.Score < cfg.ManualThreshold:
		return DecisionReject, fmt.Sprintf("high severity score %.2f below threshold %.2f", r.Score, cfg.ManualThreshold)
	}
	return DecisionManualReview, fmt.Sprintf("score %.2f requires manual review", r.Score)
}

// WeightedScore sums the per-severity average scores weighted by
// SeverityWeights. Absent severities contribute nothing.
func WeightedScore(results []FieldResult) float64 {
	sums := map[Severity]float64{}
	counts := map[Severity]int{}
	for _, r := range results {
		sums[r.Severity] += r.Score
		counts[r.Severity]++
	}
	total := 0.0
	for severity, weight := range SeverityWeights {
		if counts[severity] == 0 {
			continue
		}
		total += sums[severity] / float64(counts[severity]) * weight
	}
	return utils.Round(total, 4)
}

func namesWhere(results []FieldResult, keep func(FieldResult) bool) []string {
	names := []string{}
	for _, r := range results {
		if keep(r) {
			names = append(names, r.FieldName)
		}
	}
	return names
}

func summarise(idType IDType, results []FieldResult) Report {
	report := Report{
		IDType:          idType,
		OverallDecision: OverallApproved,
		OverallScore:    WeightedScore(results),
		Fields:          results,
		Summary:         Summary{Total: len(results)},
		Recommendations: []string{},
	}
	for _, r := range results {
		switch r.Decision {
		case DecisionPass:
			report.Summary.Passed++
		case DecisionManualReview:
			report.Summary.Review++
		case DecisionReject:
			report.Summary.Failed++
		}
	}

	highRejected := namesWhere(results, func(r FieldResult) bool {
		return r.Severity == SeverityHigh && r.Decision == DecisionReject
	})
	switch {
	case len(highRejected) > 0:
		report.OverallDecision = OverallRejected
		report.Recommendations = append(report.Recommendations, "high-severity fields failed: "+strings.Join(highRejected, ", "))
		fraud := namesWhere(results, func(r FieldResult) bool { return r.FraudDetected })
		if len(fraud) > 0 {
			report.Recommendations = append(report.Recommendations, "fraud alert: "+strings.Join(fraud, ", "))
		}
	case report.Summary.Review > 0:
		report.OverallDecision = OverallManualReview
		labels := map[Severity]string{
			SeverityHigh:   "high-severity borderline: ",
			SeverityMedium: "medium-severity mismatches: ",
			SeverityLow:    "low-severity mismatches: ",
		}
		for _, severity := range []Severity{SeverityHigh, SeverityMedium, SeverityLow} {
			names := namesWhere(results, func(r FieldResult) bool {
				return r.Severity == severity && r.Decision == DecisionManualReview
			})
			if len(names) > 0 {
				report.Recommendations = append(report.Recommendations, labels[severity]+strings.Join(names, ", "))
			}
		}
	default:
		report.Recommendations = append(report.Recommendations, "all fields meet defined thresholds")
	}
	report.Recommendations = append(report.Recommendations, fmt.Sprintf("weighted matching score: %.2f%%", report.OverallScore*100))
	return report
}
