package authenticity

import (
	"fmt"
	"image"
	"strings"

	"ekyc.io/application/signals"
)

// Bundle is the outcome of the "original vs. reproduction" sub-checks on one side.
type Bundle struct {
	Passed bool
	Checks signals.Checks
	Reason string
}

// NotScreenshotOrCopy runs sharpness, moiré, screen grid, texture, halftone and the
// saturation guard with the thresholds of the given side. Passports also fail on
// borderline moiré together with a medium screen grid.
func (t Thresholds) NotScreenshotOrCopy(img image.Image, side Side) Bundle {
	p := t.profile(side)
	gray := signals.ToGray(img)
	spectrum := signals.ComputeSpectrum(img)

	checks := signals.Checks{}
	checks.Add(signals.Sharpness(gray, p.sharpness))
	moire := signals.Moire(spectrum, p.moire)
	checks.Add(moire)
	grid := signals.ScreenGrid(spectrum, p.screenGridMax)
	checks.Add(grid)
	texture := signals.DocumentTexture(gray, t.TextureMin, t.TextureMax)
	checks.Add(texture)
	checks.Add(signals.Halftone(spectrum, p.halftoneMax))
	checks.Add(signals.SaturationGuard(img, texture, t.HighTexture, t.MinSaturationForHighTexture))

	if side == SidePassport {
		suspicious := t.PassportMoireBorderline.Contains(moire.Score) &&
			t.PassportScreenGridSuspicious.Contains(grid.Score)
		check := signals.NewCheck(CheckScreenCapture, moire.Score, !suspicious, t.PassportMoireBorderline.Max)
		if suspicious {
			check.Reason = "borderline moire with a medium screen grid"
		}
		checks.Add(check)
	}

	bundle := Bundle{Checks: checks, Passed: checks.AllPassed()}
	if !bundle.Passed {
		if c, ok := checks[CheckScreenCapture]; ok && !c.Passed {
			bundle.Reason = "moire and screen grid suggest a screen capture"
		} else {
			bundle.Reason = fmt.Sprintf("failed: %s (screenshot, copy, print or screen suspected)", strings.Join(checks.Failed(), ", "))
		}
	}
	return bundle
}
