package signals

import (
	"image"

	"github.com/montanaflynn/stats"
)

const (
	CheckSharpness = "sharpness"

	// variances are rescaled to this pixel budget so resolution does not bias the score
	canonicalPixelCount = 640 * 480
	sharpnessScale      = 100.0
)

// LaplacianVariance returns the variance of the 4-neighbour Laplacian, normalised
// to a 640×480 pixel budget.
func LaplacianVariance(g *Gray) float64 {
	if g.Empty() {
		return 0
	}
	response := make(stats.Float64Data, 0, g.W*g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			lap := g.At(x-1, y) + g.At(x+1, y) + g.At(x, y-1) + g.At(x, y+1) - 4*g.At(x, y)
			response = append(response, lap)
		}
	}
	variance, err := stats.Variance(response)
	if err != nil {
		return 0
	}
	return variance * (float64(canonicalPixelCount) / float64(g.W*g.H))
}

// SharpnessScore maps a normalised Laplacian variance to [0,1].
func SharpnessScore(variance float64) float64 {
	if variance <= 0 {
		return 0
	}
	return min(1, variance/sharpnessScale)
}

// Sharpness passes when the normalised variance reaches floor×100 or the score reaches floor.
func Sharpness(g *Gray, floor float64) RawCheck {
	variance := LaplacianVariance(g)
	score := SharpnessScore(variance)
	passed := variance >= floor*sharpnessScale || score >= floor
	return NewCheck(CheckSharpness, score, passed, floor)
}

// SharpnessOf is Sharpness for a decoded image.
func SharpnessOf(img image.Image, floor float64) RawCheck {
	return Sharpness(ToGray(img), floor)
}
