package signals

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Gray is a float luma plane (BT.601 weights, 0-255).
type Gray struct {
	W, H int
	Pix  []float64
}

func rgb8(c color.Color) (r, g, b float64) {
	r16, g16, b16, _ := c.RGBA()
	return float64(r16 >> 8), float64(g16 >> 8), float64(b16 >> 8)
}

func luma(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

// ToGray converts any decoded image to a luma plane.
func ToGray(img image.Image) *Gray {
	bounds := img.Bounds()
	g := &Gray{W: bounds.Dx(), H: bounds.Dy()}
	g.Pix = make([]float64, g.W*g.H)
	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < g.H; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+g.W]
			for x, v := range row {
				g.Pix[y*g.W+x] = float64(v)
			}
		}
		return g
	}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			r, gr, b := rgb8(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			g.Pix[y*g.W+x] = luma(r, gr, b)
		}
	}
	return g
}

// At returns the pixel at (x, y) with edge replication outside the plane.
func (g *Gray) At(x, y int) float64 {
	if x < 0 {
		x = 0
	} else if x >= g.W {
		x = g.W - 1
	}
	if y < 0 {
		y = 0
	} else if y >= g.H {
		y = g.H - 1
	}
	return g.Pix[y*g.W+x]
}

func (g *Gray) Empty() bool {
	return g == nil || g.W == 0 || g.H == 0
}

// resizeGray scales img to w×h with bilinear interpolation and returns the luma plane.
func resizeGray(img image.Image, w, h int) *Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return ToGray(dst)
}

// boxBlur3 applies a 3×3 mean filter.
func boxBlur3(g *Gray) *Gray {
	out := &Gray{W: g.W, H: g.H, Pix: make([]float64, len(g.Pix))}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			sum := 0.0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += g.At(x+dx, y+dy)
				}
			}
			out.Pix[y*g.W+x] = sum / 9
		}
	}
	return out
}
