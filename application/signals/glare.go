package signals

import (
	"image"
	"math"
)

const (
	CheckGlare      = "glare"
	CheckResolution = "resolution"

	glareLevel = 250.0
	// MaxGlareRatio is the share of near-saturated pixels above which glare fails.
	MaxGlareRatio = 0.15
)

// GlareRatio is the larger of the share of pixels with luma ≥ 250 and the share
// with any channel ≥ 250, measured inside roi when one is given.
func GlareRatio(img image.Image, roi *image.Rectangle) float64 {
	bounds := img.Bounds()
	if roi != nil {
		bounds = roi.Intersect(bounds)
	}
	if bounds.Empty() {
		return 0
	}
	overexposed, saturated := 0, 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b := rgb8(img.At(x, y))
			if math.Round(luma(r, g, b)) >= glareLevel {
				overexposed++
			}
			if math.Max(r, math.Max(g, b)) >= glareLevel {
				saturated++
			}
		}
	}
	total := float64(bounds.Dx() * bounds.Dy())
	return math.Max(float64(overexposed), float64(saturated)) / total
}

// Glare reports the glare ratio as its score; it passes at or below 15%.
func Glare(img image.Image, roi *image.Rectangle) RawCheck {
	ratio := GlareRatio(img, roi)
	return NewCheck(CheckGlare, ratio, ratio <= MaxGlareRatio, MaxGlareRatio)
}

// Resolution passes when the shorter side reaches minSide pixels.
func Resolution(img image.Image, minSide int) RawCheck {
	bounds := img.Bounds()
	side := min(bounds.Dx(), bounds.Dy())
	score := 1.0
	if minSide > 0 {
		score = float64(side) / float64(minSide)
	}
	return NewCheck(CheckResolution, score, side >= minSide, float64(minSide))
}
