package authenticity

import (
	"context"
	"fmt"
	"image"
	"strings"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/signals"
	"ekyc.io/application/utils"
	"ekyc.io/infrastructure/logger"
	"ekyc.io/infrastructure/workerpool"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

const DisabledReason = "document validation disabled"

type Engine struct {
	thresholds Thresholds
	pool       *workerpool.Pool
	faces      FaceLocator
}

// NewEngine builds the engine. faces may be nil, in which case face-dependent
// checks are skipped.
func NewEngine(thresholds Thresholds, pool *workerpool.Pool, faces FaceLocator) *Engine {
	return &Engine{thresholds: thresholds, pool: pool, faces: faces}
}

func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// EvaluateDocument evaluates the front and, for national IDs, the optional back.
// The document passes when the front passes and a supplied back passes.
func (e *Engine) EvaluateDocument(ctx context.Context, front image.Image, back image.Image, docType DocumentType) (DocumentResult, error) {
	if front == nil || front.Bounds().Empty() {
		return DocumentResult{}, apperrors.NewInputError("front", "front image is required")
	}
	if !docType.Valid() {
		return DocumentResult{}, apperrors.NewInputError("document_type", fmt.Sprintf("unsupported document type %q", docType))
	}
	if !e.thresholds.Enabled {
		return Bypassed(docType), nil
	}

	frontSide := SideFront
	if docType == YemenPassport {
		frontSide = SidePassport
		if back != nil {
			logger.Warning("passport evaluation uses the data page only; back image ignored")
			back = nil
		}
	}
	if back != nil && back.Bounds().Empty() {
		back = nil
	}

	result := DocumentResult{DocumentType: docType}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.Front = e.EvaluateSide(gctx, front, frontSide)
		return nil
	})
	if back != nil {
		g.Go(func() error {
			evidence := e.EvaluateSide(gctx, back, SideBack)
			result.Back = &evidence
			return nil
		})
	}
	_ = g.Wait()

	result.Passed = result.Front.Passed && (result.Back == nil || result.Back.Passed)
	sides := result.Sides()
	result.Authenticity = AuthenticityScore(sides)
	result.Quality = QualityScore(sides)
	if !result.Passed {
		reasons := []string{}
		for _, side := range sides {
			if side.FailureReason != nil {
				reasons = append(reasons, *side.FailureReason)
			}
		}
		reason := strings.Join(reasons, "; ")
		result.FailureReason = &reason
	}
	return result, nil
}

// Sides lists the evaluated sides, front first.
func (r DocumentResult) Sides() []SideEvidence {
	sides := []SideEvidence{r.Front}
	if r.Back != nil {
		sides = append(sides, *r.Back)
	}
	return sides
}

// Bypassed is the result returned when document validation is switched off.
func Bypassed(docType DocumentType) DocumentResult {
	return DocumentResult{
		DocumentType: docType,
		Passed:       true,
		Front:        SideEvidence{Side: SideFront, Checks: signals.Checks{}, Bundle: signals.Checks{}, Passed: true},
		Authenticity: 1,
		Quality:      1,
		BypassReason: DisabledReason,
	}
}

// AuthenticityScore is the fraction of passed not_screenshot_or_copy sub-checks
// across all sides.
func AuthenticityScore(sides []SideEvidence) float64 {
	passed, total := 0, 0
	for _, side := range sides {
		p, t := side.Bundle.Tally()
		passed += p
		total += t
	}
	if total == 0 {
		return 0
	}
	return utils.Round(float64(passed)/float64(total), 4)
}

// QualityScore averages sharpness, resolution and glare clearance over all sides.
// Anything that could not be measured counts as zero.
func QualityScore(sides []SideEvidence) float64 {
	values := stats.Float64Data{}
	for _, side := range sides {
		values = append(values, side.Bundle[signals.CheckSharpness].Score, side.Checks[CheckResolution].Score)
		clearance := 0.0
		if side.GlareRatio != nil {
			clearance = 1 - *side.GlareRatio
		}
		values = append(values, clearance)
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return utils.Round(utils.Clamp01(mean), 4)
}
