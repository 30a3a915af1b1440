package policy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/utils"
	"ekyc.io/infrastructure/logger"
)

type Decision string

const (
	Approved     Decision = "approved"
	ManualReview Decision = "manual_review"
	Rejected     Decision = "rejected"
)

const (
	ApprovedAbove   = 90.0
	ManualReviewMin = 50.0

	BypassReason = "EKYC disabled, dynamic checks bypassed"
)

// Scores are raw 0-1 inputs keyed by leaf component. Missing leaves score 0.
type Scores map[Component]float64

// ScoreKeys maps the orchestrator's normalised score names to leaves.
var ScoreKeys = map[string]Component{
	"doc_authenticity": DocumentAuthenticity,
	"doc_quality":      DocumentQuality,
	"ocr_confidence":   OCRConfidence,
	"front_back_match": FrontBackIDMatch,
	"face_match":       FaceMatching,
	"liveness":         PassivePhoto,
	"id_number_match":  IDNumber,
	"name_match":       NameMatching,
	"dob":              DOB,
	"issuance":         IssuanceDate,
	"expiry":           ExpiryDate,
	"gender":           Gender,
}

// ScoresFromKeys converts normalised score names, ignoring unknown keys.
func ScoresFromKeys(named map[string]float64) Scores {
	scores := Scores{}
	for key, v := range named {
		if c, ok := ScoreKeys[key]; ok {
			scores[c] = v
		}
	}
	return scores
}

type ComponentResult struct {
	Component        Component  `json:"name"`
	Parent           *Component `json:"parent,omitempty"`
	Depth            int        `json:"depth"`
	MinPoints        float64    `json:"min_points"`
	MaxPoints        float64    `json:"max_points"`
	Enabled          bool       `json:"enabled"`
	ThresholdPercent float64    `json:"threshold_percent"`
	ScorePercent     float64    `json:"score_percent"`
	PointsObtained   float64    `json:"points_obtained"`
	Passed           bool       `json:"passed"`
}

type Result struct {
	Decision      Decision          `json:"decision"`
	TotalScore    float64           `json:"total_score"`
	MaxScore      float64           `json:"max_score"`
	Components    []ComponentResult `json:"components"`
	Reasons       []string          `json:"reasons"`
	Bypassed      bool              `json:"bypassed"`
	ConfigVersion int64             `json:"config_version"`
}

// Component returns the result for c.
func (r Result) Component(c Component) ComponentResult {
	for _, cr := range r.Components {
		if cr.Component == c {
			return cr
		}
	}
	return ComponentResult{Component: c}
}

// Band maps root points to a decision: above 90 approves, 50 to 90 inclusive
// goes to manual review, below 50 rejects.
func Band(points float64) Decision {
	switch {
	case points > ApprovedAbove:
		return Approved
	case points >= ManualReviewMin:
		return ManualReview
	}
	return Rejected
}

func round2(v float64) float64 {
	return utils.Round(v, 2)
}

// Evaluate scores the tree bottom-up. A leaf earns score·max points and passes
// when its percentage reaches min/max. A category caps the sum of its
// children's points at its own max and passes when that sum reaches its min.
// Disabled components pass with 0 points. Sums, passes and the band use exact
// points; results carry them rounded to two decimals.
func Evaluate(scores Scores, cfg Config) Result {
	var results [componentCount]ComponentResult
	var points [componentCount]float64
	root := cfg.Setting(EKYC)
	bypass := !root.Enabled

	for i := int(componentCount) - 1; i >= 0; i-- {
		c := Component(i)
		s := cfg.Setting(c)
		r := ComponentResult{
			Component:        c,
			Depth:            c.Depth(),
			MinPoints:        s.MinPoints,
			MaxPoints:        s.MaxPoints,
			Enabled:          s.Enabled,
			ThresholdPercent: round2(s.ThresholdPercent()),
		}
		if p, ok := c.Parent(); ok {
			r.Parent = &p
		}
		switch {
		case !s.Enabled || bypass:
			r.Passed = true
		case c.IsLeaf():
			raw := utils.Clamp01(scores[c])
			points[c] = raw * s.MaxPoints
			r.ScorePercent = round2(raw * 100)
			r.Passed = raw*100 >= s.ThresholdPercent()
		default:
			sum := 0.0
			for _, child := range arena[c].children {
				sum += points[child]
			}
			points[c] = math.Min(sum, s.MaxPoints)
			if s.MaxPoints > 0 {
				r.ScorePercent = round2(points[c] / s.MaxPoints * 100)
			}
			r.Passed = points[c] >= s.MinPoints
		}
		r.PointsObtained = round2(points[c])
		results[c] = r
	}

	out := Result{
		TotalScore:    results[EKYC].PointsObtained,
		MaxScore:      root.MaxPoints,
		Components:    results[:],
		Reasons:       []string{},
		Bypassed:      bypass,
		ConfigVersion: cfg.Version,
	}
	if bypass {
		out.Decision = Approved
		out.Reasons = append(out.Reasons, BypassReason)
		logger.Warning("verification policy bypassed", logger.LoggerOptions{
			Key:  "config_version",
			Data: cfg.Version,
		})
		return out
	}
	for _, r := range results {
		if r.Passed {
			continue
		}
		if r.Component.IsLeaf() {
			out.Reasons = append(out.Reasons, fmt.Sprintf("%s: score %.2f%% below threshold %.2f%%", r.Component, r.ScorePercent, r.ThresholdPercent))
		} else {
			out.Reasons = append(out.Reasons, fmt.Sprintf("%s: %.2f points below minimum %.2f", r.Component, r.PointsObtained, r.MinPoints))
		}
	}
	out.Decision = Band(points[EKYC])
	return out
}

// ConfigSource returns the latest stored policy, or a ConfigurationMissing error
// when none has been saved.
type ConfigSource interface {
	LatestConfig(ctx context.Context) (*Config, error)
}

type Engine struct {
	source      ConfigSource
	missingOnce sync.Once
}

func NewEngine(source ConfigSource) *Engine {
	return &Engine{source: source}
}

// LoadConfig reads the latest configuration. Missing rows and unreachable stores
// fall back to DefaultConfig; a missing row is logged once per process.
func (e *Engine) LoadConfig(ctx context.Context) Config {
	if e.source == nil {
		e.logMissing(&apperrors.ConfigurationMissing{Source: "compiled defaults"})
		return DefaultConfig()
	}
	cfg, err := e.source.LatestConfig(ctx)
	if err != nil {
		var missing *apperrors.ConfigurationMissing
		if errors.As(err, &missing) {
			e.logMissing(missing)
		} else {
			logger.Error("could not load verification config, using defaults", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
		return DefaultConfig()
	}
	if cfg == nil {
		e.logMissing(&apperrors.ConfigurationMissing{Source: "config store"})
		return DefaultConfig()
	}
	return *cfg
}

func (e *Engine) logMissing(err *apperrors.ConfigurationMissing) {
	e.missingOnce.Do(func() {
		logger.Warning("verification config missing, compiled defaults apply", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	})
}

// Evaluate reads the configuration fresh and scores against it.
func (e *Engine) Evaluate(ctx context.Context, scores Scores) (Result, Config) {
	cfg := e.LoadConfig(ctx)
	return Evaluate(scores, cfg), cfg
}

// AuditRow is the append-only record written for every attempt.
type AuditRow struct {
	AttemptID     string            `json:"attempt_id"`
	ConfigVersion int64             `json:"config_version"`
	Decision      Decision          `json:"decision"`
	TotalScore    float64           `json:"total_score"`
	MaxScore      float64           `json:"max_score"`
	Bypassed      bool              `json:"bypassed"`
	Components    []ComponentResult `json:"components"`
	Reasons       []string          `json:"reasons"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Audit mirrors the whole tree under attemptID.
func (r Result) Audit(attemptID string, at time.Time) AuditRow {
	components := make([]ComponentResult, len(r.Components))
	copy(components, r.Components)
	return AuditRow{
		AttemptID:     attemptID,
		ConfigVersion: r.ConfigVersion,
		Decision:      r.Decision,
		TotalScore:    r.TotalScore,
		MaxScore:      r.MaxScore,
		Bypassed:      r.Bypassed,
		Components:    components,
		Reasons:       append([]string{}, r.Reasons...),
		CreatedAt:     at.UTC(),
	}
}
