package signals

import "math"

const (
	CheckTexture = "texture"

	documentTextureScale = 20.0
	// the largest variance a distribution over codes 0..255 can have
	maxCodeVariance = 128.0 * 128.0
)

// clockwise from the top-left neighbour, (dy, dx)
var lbpOffsets = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}}

// LBPVariance computes 8-neighbour local binary pattern codes (edge padded) and
// returns the variance of their distribution over 0..255.
func LBPVariance(g *Gray) float64 {
	if g.Empty() || g.W < 10 || g.H < 10 {
		return 0
	}
	var hist [256]float64
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			center := math.Round(g.At(x, y))
			code := 0
			for bit, off := range lbpOffsets {
				if math.Round(g.At(x+off[1], y+off[0])) >= center {
					code |= 1 << bit
				}
			}
			hist[code]++
		}
	}
	n := float64(g.W * g.H)
	mean := 0.0
	for code, count := range hist {
		mean += float64(code) * count / n
	}
	variance := 0.0
	for code, count := range hist {
		d := float64(code) - mean
		variance += d * d * count / n
	}
	return variance
}

// DocumentTexture scores variance/20 and passes inside [minScore, maxScore]: too flat
// means a photocopy, a saturated reading is screened by the saturation guard.
func DocumentTexture(g *Gray, minScore, maxScore float64) RawCheck {
	variance := LBPVariance(g)
	score := 0.0
	if variance > 0 {
		score = math.Min(1, variance/documentTextureScale)
	}
	passed := score >= minScore && score <= maxScore
	return NewCheck(CheckTexture, score, passed, minScore)
}

// LivenessTexture normalises the variance against the largest possible code variance.
func LivenessTexture(g *Gray, threshold float64) RawCheck {
	score := clamp(LBPVariance(g) / maxCodeVariance)
	return NewCheck(CheckTexture, score, score > threshold, threshold)
}
