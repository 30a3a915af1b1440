package signals

import (
	"image"
	"image/color"
	"math"

	"github.com/montanaflynn/stats"
)

const (
	CheckColor      = "color"
	CheckSaturation = "saturation"

	minSkinPixels = 100
)

// MeanSaturation is the mean HSV saturation in [0,1]. Grayscale images give 0.
func MeanSaturation(img image.Image) float64 {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 0
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}
	sum := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b := rgb8(img.At(x, y))
			hi := math.Max(r, math.Max(g, b))
			lo := math.Min(r, math.Min(g, b))
			if hi > 0 {
				sum += (hi - lo) / hi
			}
		}
	}
	return sum / float64(bounds.Dx()*bounds.Dy())
}

// SkinToneScore looks for natural skin in YCrCb space (Cr 133-173, Cb 77-127),
// restricted to region when one is given. The score averages skin coverage
// (saturating at 20%) with colour spread inside the skin mask (saturating at 30).
func SkinToneScore(img image.Image, region *image.Rectangle) float64 {
	bounds := img.Bounds()
	if region != nil {
		bounds = region.Intersect(bounds)
	}
	if bounds.Empty() {
		return 0
	}
	var rs, gs, bs stats.Float64Data
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b := rgb8(img.At(x, y))
			_, cb, cr := color.RGBToYCbCr(uint8(r), uint8(g), uint8(b))
			if cr < 133 || cr > 173 || cb < 77 || cb > 127 {
				continue
			}
			rs = append(rs, r)
			gs = append(gs, g)
			bs = append(bs, b)
		}
	}
	if len(rs) <= minSkinPixels {
		return 0
	}
	ratio := float64(len(rs)) / float64(bounds.Dx()*bounds.Dy())
	spread := 0.0
	for _, channel := range []stats.Float64Data{rs, gs, bs} {
		sd, err := stats.StandardDeviationPopulation(channel)
		if err == nil {
			spread += sd / 3
		}
	}
	return (math.Min(1, ratio/0.2) + math.Min(1, spread/30)) / 2
}

func SkinTone(img image.Image, region *image.Rectangle, threshold float64) RawCheck {
	score := SkinToneScore(img, region)
	return NewCheck(CheckColor, score, score > threshold, threshold)
}

// SaturationGuard applies only when texture is high: a printed copy shows strong
// texture with muted colour.
func SaturationGuard(img image.Image, texture RawCheck, highTexture, minSaturation float64) RawCheck {
	saturation := MeanSaturation(img)
	passed := true
	if texture.Score >= highTexture {
		passed = saturation >= minSaturation
	}
	return NewCheck(CheckSaturation, saturation, passed, minSaturation)
}
