package authenticity

import (
	"context"
	"image"
	"image/color"
	"math"
)

func hashNoise(x, y, amp, salt int) int {
	h := uint32(x)*374761393 + uint32(y)*668265263 + uint32(salt)*2246822519
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return int(h%uint32(2*amp+1)) - amp
}

// document renders a beige card with print grain filling most of a dark frame.
func document(w, h int) *image.RGBA {
	card := image.Rect(w*4/100, h*4/100, w-w*4/100, h-h*4/100)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (image.Point{X: x, Y: y}).In(card) {
				o := int(math.Round(-25+50*float64(x-card.Min.X)/float64(card.Dx()))) + hashNoise(x, y, 12, 0)
				img.SetRGBA(x, y, color.RGBA{R: uint8(190 + o), G: uint8(170 + o), B: uint8(140 + o), A: 255})
				continue
			}
			o := hashNoise(x, y, 3, 1)
			img.SetRGBA(x, y, color.RGBA{R: uint8(40 + o), G: uint8(40 + o), B: uint8(46 + o), A: 255})
		}
	}
	return img
}

// screen renders a fine vertical line pattern like a photographed display.
func screen(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 127.5 + 127*math.Sin(2*math.Pi*40*float64(x)/float64(w))
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return img
}

type stubFaces struct {
	faces []image.Rectangle
	err   error
}

func (s stubFaces) DetectFaces(ctx context.Context, img image.Image) ([]image.Rectangle, error) {
	return s.faces, s.err
}

var oneFace = stubFaces{faces: []image.Rectangle{image.Rect(60, 120, 240, 340)}}
