// Package liveness decides whether a selfie was captured from a live subject.
// Every evaluated check must pass for a live verdict.
package liveness

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/signals"
	"ekyc.io/application/utils"
	"ekyc.io/infrastructure/logger"
	"ekyc.io/infrastructure/workerpool"
	"golang.org/x/sync/errgroup"
)

const (
	CheckImageSize  = "image_size"
	CheckMLModel    = "ml_model"
	CheckSameSource = "same_source"

	DisabledReason = "liveness disabled"

	SpoofFromModel  = "model"
	SpoofFromChecks = "checks"
)

// Thresholds are loaded from the liveness section of the service configuration.
type Thresholds struct {
	Enabled    bool    `mapstructure:"enabled" json:"enabled"`
	MinSize    int     `mapstructure:"min_size" json:"min_size"`
	Texture    float64 `mapstructure:"texture" json:"texture"`
	Color      float64 `mapstructure:"color" json:"color"`
	Sharpness  float64 `mapstructure:"sharpness" json:"sharpness"`
	Reflection float64 `mapstructure:"reflection" json:"reflection"`
	// similarity above which the selfie is treated as a crop of the document photo
	SameSource float64 `mapstructure:"same_source_similarity" json:"same_source_similarity"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Enabled:    true,
		MinSize:    100,
		Texture:    0.1,
		Color:      0.3,
		Sharpness:  0.15,
		Reflection: 0.3,
		SameSource: 0.95,
	}
}

// SpoofClassifier is an optional external anti-spoofing model.
type SpoofClassifier interface {
	SpoofProbability(ctx context.Context, img image.Image) (float64, error)
}

// Options carry per-attempt context for an evaluation.
type Options struct {
	// FaceRegion restricts the skin-tone check to the detected face.
	FaceRegion *image.Rectangle
	// SpoofProbability, when set, is used instead of calling the classifier.
	SpoofProbability *float64
	// FaceSimilarity to the document photo, when already known.
	FaceSimilarity *float64
}

type Verdict struct {
	IsLive           bool           `json:"is_live" bson:"isLive"`
	Confidence       float64        `json:"confidence" bson:"confidence"`
	SpoofProbability float64        `json:"spoof_probability" bson:"spoofProbability"`
	SpoofSource      string         `json:"spoof_source,omitempty" bson:"spoofSource,omitempty"`
	Checks           signals.Checks `json:"checks" bson:"checks"`
	FailureReason    *string        `json:"failure_reason" bson:"failureReason"`
	BypassReason     string         `json:"bypass_reason,omitempty" bson:"bypassReason,omitempty"`
}

type Engine struct {
	thresholds Thresholds
	pool       *workerpool.Pool
	classifier SpoofClassifier
}

// NewEngine builds the engine. classifier may be nil.
func NewEngine(thresholds Thresholds, pool *workerpool.Pool, classifier SpoofClassifier) *Engine {
	return &Engine{thresholds: thresholds, pool: pool, classifier: classifier}
}

func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate runs every liveness check on the pool and fuses them. Only an empty
// image is an error; check failures and timeouts are reported in the verdict.
func (e *Engine) Evaluate(ctx context.Context, img image.Image, opts Options) (Verdict, error) {
	if img == nil || img.Bounds().Empty() {
		return Verdict{}, apperrors.NewInputError("selfie", "selfie image is empty")
	}
	if !e.thresholds.Enabled {
		return Disabled(), nil
	}

	th := e.thresholds
	checks := signals.Checks{}
	checks.Add(ImageSize(img, th.MinSize))

	var (
		mu       sync.Mutex
		external *float64
	)
	record := func(check signals.RawCheck) {
		mu.Lock()
		defer mu.Unlock()
		checks.Add(check)
	}
	g, gctx := errgroup.WithContext(ctx)
	run := func(name string, fn func(context.Context) (signals.RawCheck, error)) {
		g.Go(func() error {
			check, err := workerpool.Submit(gctx, e.pool, name, fn)
			if err != nil {
				check = signals.FromError(name, err)
			}
			record(check)
			return nil
		})
	}

	run(signals.CheckTexture, func(context.Context) (signals.RawCheck, error) {
		return signals.LivenessTexture(signals.ToGray(img), th.Texture), nil
	})
	run(signals.CheckColor, func(context.Context) (signals.RawCheck, error) {
		return signals.SkinTone(img, opts.FaceRegion, th.Color), nil
	})
	run(signals.CheckSharpness, func(context.Context) (signals.RawCheck, error) {
		return signals.SharpnessOf(img, th.Sharpness), nil
	})
	run(signals.CheckReflection, func(context.Context) (signals.RawCheck, error) {
		return signals.Reflection(signals.ComputeSpectrum(img), th.Reflection), nil
	})

	switch {
	case opts.SpoofProbability != nil:
		external = utils.GetFloat64Pointer(utils.Clamp01(*opts.SpoofProbability))
		checks.Add(MLModel(*external))
	case e.classifier != nil:
		g.Go(func() error {
			probability, err := workerpool.Submit(gctx, e.pool, CheckMLModel, func(ctx context.Context) (float64, error) {
				return e.classifier.SpoofProbability(ctx, img)
			})
			if err != nil {
				if !apperrors.IsCheckTimeout(err) && !apperrors.IsCollaboratorUnavailable(err) {
					err = &apperrors.CollaboratorUnavailable{Collaborator: "spoof_classifier", Err: err}
				}
				logger.Warning("spoof classifier did not produce a score", logger.LoggerOptions{
					Key:  "error",
					Data: err,
				})
				record(signals.FromError(CheckMLModel, err))
				return nil
			}
			mu.Lock()
			external = utils.GetFloat64Pointer(utils.Clamp01(probability))
			mu.Unlock()
			record(MLModel(probability))
			return nil
		})
	}

	_ = g.Wait()

	verdict := Fuse(checks, external)
	if opts.FaceSimilarity != nil {
		verdict = ApplySameSource(verdict, *opts.FaceSimilarity, th.SameSource)
	}
	return verdict, nil
}

// Disabled is the verdict returned when liveness checking is switched off.
func Disabled() Verdict {
	return Verdict{
		IsLive:       true,
		Confidence:   1,
		Checks:       signals.Checks{},
		BypassReason: DisabledReason,
	}
}

// ImageSize fails selfies whose shorter side is under minSize pixels.
func ImageSize(img image.Image, minSize int) signals.RawCheck {
	bounds := img.Bounds()
	side := min(bounds.Dx(), bounds.Dy())
	score := 1.0
	if minSize > 0 {
		score = float64(side) / float64(minSize)
	}
	return signals.NewCheck(CheckImageSize, score, side >= minSize, float64(minSize))
}

// MLModel converts a spoof probability into a realness check passing at 0.5.
func MLModel(spoofProbability float64) signals.RawCheck {
	realness := 1 - utils.Clamp01(spoofProbability)
	return signals.NewCheck(CheckMLModel, realness, realness >= 0.5, 0.5)
}

// Fuse computes the verdict from a check set. external is the classifier's spoof
// probability when it produced one.
func Fuse(checks signals.Checks, external *float64) Verdict {
	passed, total := checks.Tally()
	confidence := 0.0
	if total > 0 {
		confidence = float64(passed) / float64(total)
	}
	verdict := Verdict{
		IsLive:     checks.AllPassed(),
		Confidence: utils.Round(confidence, 4),
		Checks:     checks,
	}
	if external != nil {
		verdict.SpoofProbability = utils.Round(*external, 4)
		verdict.SpoofSource = SpoofFromModel
	} else {
		verdict.SpoofProbability = utils.Round(1-confidence, 4)
		verdict.SpoofSource = SpoofFromChecks
	}
	if !verdict.IsLive {
		reason := "no liveness checks could be evaluated"
		if failed := checks.Failed(); len(failed) > 0 {
			reason = fmt.Sprintf("failed checks: %s", strings.Join(failed, ", "))
		}
		verdict.FailureReason = &reason
	}
	return verdict
}

// ApplySameSource adds a failing same_source check when the selfie is nearly
// identical to the document photo, then re-fuses the verdict.
func ApplySameSource(verdict Verdict, similarity float64, threshold float64) Verdict {
	if verdict.BypassReason != "" || similarity <= threshold {
		return verdict
	}
	checks := make(signals.Checks, len(verdict.Checks)+1)
	checks.Merge(verdict.Checks)
	check := signals.NewCheck(CheckSameSource, 0, false, threshold)
	check.Reason = "selfie matches the document photo too closely"
	checks.Add(check)

	var external *float64
	if verdict.SpoofSource == SpoofFromModel {
		external = utils.GetFloat64Pointer(verdict.SpoofProbability)
	}
	return Fuse(checks, external)
}
