package authenticity

import (
	"context"
	"fmt"
	"image"
	"strings"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/signals"
	"ekyc.io/application/utils"
	"ekyc.io/infrastructure/workerpool"
	"golang.org/x/sync/errgroup"
)

type layout struct {
	boundary   *signals.Boundary
	glareRatio float64
}

// EvaluateSide measures one captured side. Face-dependent checks are skipped when
// the face locator is unavailable; the back of an ID card never needs a face.
func (e *Engine) EvaluateSide(ctx context.Context, img image.Image, side Side) SideEvidence {
	th := e.thresholds
	p := th.profile(side)
	evidence := SideEvidence{Side: side, Checks: signals.Checks{}, Bundle: signals.Checks{}}
	evidence.Checks.Add(signals.Resolution(img, th.MinResolutionPx))

	var (
		faces              []image.Rectangle
		bundle             Bundle
		measured           layout
		faceErr, bundleErr error
		layoutErr          error
	)
	g, gctx := errgroup.WithContext(ctx)
	if p.needsFace {
		g.Go(func() error {
			faces, faceErr = e.detectFaces(gctx, img, side)
			return nil
		})
	}
	g.Go(func() error {
		bundle, bundleErr = workerpool.Submit(gctx, e.pool, fmt.Sprintf("%s:%s", CheckNotScreenshotOrCopy, side),
			func(context.Context) (Bundle, error) {
				return th.NotScreenshotOrCopy(img, side), nil
			})
		return nil
	})
	g.Go(func() error {
		measured, layoutErr = workerpool.Submit(gctx, e.pool, fmt.Sprintf("boundary:%s", side),
			func(context.Context) (layout, error) {
				boundary := signals.DetectBoundary(img, p.aspect, th.MinMarginRatio)
				var roi *image.Rectangle
				if boundary != nil && !boundary.FullFrame {
					rect := image.Rect(boundary.X, boundary.Y, boundary.X+boundary.Width, boundary.Y+boundary.Height).
						Add(img.Bounds().Min)
					roi = &rect
				}
				return layout{boundary: boundary, glareRatio: signals.GlareRatio(img, roi)}, nil
			})
		return nil
	})
	_ = g.Wait()

	if bundleErr != nil {
		evidence.Checks.Add(signals.FromError(CheckNotScreenshotOrCopy, bundleErr))
		evidence.Checks.Add(signals.FromError(CheckClearAndReadable, bundleErr))
	} else {
		evidence.Bundle = bundle.Checks
		passed, total := bundle.Checks.Tally()
		check := signals.NewCheck(CheckNotScreenshotOrCopy, float64(passed)/float64(max(total, 1)), bundle.Passed, 1)
		check.Reason = bundle.Reason
		evidence.Checks.Add(check)

		sharpness := bundle.Checks[signals.CheckSharpness]
		readable := signals.NewCheck(CheckClearAndReadable, sharpness.Score, sharpness.Passed, p.sharpness)
		if !readable.Passed {
			readable.Reason = "blurry or unreadable"
		}
		evidence.Checks.Add(readable)
	}

	if layoutErr != nil {
		evidence.Checks.Add(signals.FromError(CheckFullyVisible, layoutErr))
		evidence.Checks.Add(signals.FromError(CheckNoExtraObjects, layoutErr))
		evidence.Checks.Add(signals.FromError(CheckNotObscured, layoutErr))
	} else {
		evidence.Boundary = measured.boundary
		evidence.GlareRatio = utils.GetFloat64Pointer(utils.Round(measured.glareRatio, 4))
		evidence.Checks.Add(th.fullyVisible(measured.boundary))
		evidence.Checks.Add(th.noExtraObjects(measured.boundary))
		evidence.Checks.Add(notObscured(measured.glareRatio, p.needsFace, faces, faceErr))
	}

	if p.needsFace {
		if faceErr != nil {
			evidence.Checks.Add(signals.FromError(CheckOfficialDocument, faceErr))
			evidence.Checks.Add(signals.FromError(CheckIntegrity, faceErr))
		} else {
			evidence.FacesFound = utils.GetIntPointer(len(faces))
			evidence.Checks.Add(faceCheck(CheckOfficialDocument, faces))
			evidence.Checks.Add(faceCheck(CheckIntegrity, faces))
		}
	}

	evidence.Passed = evidence.Checks.AllPassed()
	if !evidence.Passed {
		reason := fmt.Sprintf("%s failed: %s", side, strings.Join(evidence.Checks.Failed(), ", "))
		evidence.FailureReason = &reason
	}
	return evidence
}

func (e *Engine) detectFaces(ctx context.Context, img image.Image, side Side) ([]image.Rectangle, error) {
	if e.faces == nil {
		return nil, &apperrors.CollaboratorUnavailable{Collaborator: "face_locator"}
	}
	faces, err := workerpool.Submit(ctx, e.pool, fmt.Sprintf("face_detection:%s", side), func(ctx context.Context) ([]image.Rectangle, error) {
		return e.faces.DetectFaces(ctx, img)
	})
	if err != nil && !apperrors.IsCheckTimeout(err) && !apperrors.IsCollaboratorUnavailable(err) {
		err = &apperrors.CollaboratorUnavailable{Collaborator: "face_locator", Err: err}
	}
	return faces, err
}

func faceCheck(name string, faces []image.Rectangle) signals.RawCheck {
	found := len(faces) > 0
	score := 0.0
	if found {
		score = 1
	}
	check := signals.NewCheck(name, score, found, 1)
	if !found {
		check.Reason = "face not detected on document"
	}
	return check
}

// fullyVisible requires enough coverage and either clear margins or a document
// that practically fills the frame.
func (t Thresholds) fullyVisible(boundary *signals.Boundary) signals.RawCheck {
	if boundary == nil {
		check := signals.NewCheck(CheckFullyVisible, 0, false, t.MinCoverageRatio)
		check.Reason = "no document boundary matching the expected aspect ratio"
		return check
	}
	coverageOK := boundary.AreaRatio >= t.MinCoverageRatio
	passed := coverageOK && (boundary.MarginOK || boundary.AreaRatio >= t.FullCoverageRatio)
	check := signals.NewCheck(CheckFullyVisible, boundary.AreaRatio, passed, t.MinCoverageRatio)
	switch {
	case !coverageOK:
		check.Reason = "document cropped or too small in frame"
	case !passed:
		check.Reason = "margins too small"
	}
	return check
}

func (t Thresholds) noExtraObjects(boundary *signals.Boundary) signals.RawCheck {
	if boundary == nil {
		check := signals.NewCheck(CheckNoExtraObjects, 0, false, t.MinCoverageRatio)
		check.Reason = "could not assess document coverage"
		return check
	}
	passed := boundary.AreaRatio >= t.MinCoverageRatio
	check := signals.NewCheck(CheckNoExtraObjects, boundary.AreaRatio, passed, t.MinCoverageRatio)
	if !passed {
		check.Reason = "document does not dominate the frame"
	}
	return check
}

// notObscured needs a visible face (when the side has one) and no glare. When
// the face locator is unavailable the check is skipped.
func notObscured(glareRatio float64, needsFace bool, faces []image.Rectangle, faceErr error) signals.RawCheck {
	if needsFace && faceErr != nil {
		return signals.FromError(CheckNotObscured, faceErr)
	}
	passed := glareRatio <= signals.MaxGlareRatio
	reason := ""
	switch {
	case !passed:
		reason = "glare on document"
	case needsFace && len(faces) == 0:
		passed = false
		reason = "face not visible"
	}
	check := signals.NewCheck(CheckNotObscured, 1-glareRatio, passed, 1-signals.MaxGlareRatio)
	check.Reason = reason
	return check
}
