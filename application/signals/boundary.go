package signals

import (
	"image"
	"math"

	"github.com/montanaflynn/stats"
)

const (
	boundaryWorkingSide = 512
	minEdgeMagnitude    = 20.0
	minComponentShare   = 0.1
	// a component whose extreme-point quadrilateral fills less than this share of
	// its bounding box is a line or an L, not a document outline
	minQuadFill = 0.5
)

// AspectRange bounds the width/height ratio of an expected document.
type AspectRange struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

func (a AspectRange) Contains(ratio float64) bool {
	return ratio >= a.Min && ratio <= a.Max
}

// Boundary describes the detected document outline in source pixel coordinates.
type Boundary struct {
	X           int            `json:"x" bson:"x"`
	Y           int            `json:"y" bson:"y"`
	Width       int            `json:"width" bson:"width"`
	Height      int            `json:"height" bson:"height"`
	Corners     [4]image.Point `json:"corners" bson:"corners"`
	AspectRatio float64        `json:"aspect_ratio" bson:"aspectRatio"`
	AreaRatio   float64        `json:"area_ratio" bson:"areaRatio"`
	MarginW     float64        `json:"margin_ratio_w" bson:"marginW"`
	MarginH     float64        `json:"margin_ratio_h" bson:"marginH"`
	MarginOK    bool           `json:"margin_ok" bson:"marginOK"`
	FullFrame   bool           `json:"full_frame" bson:"fullFrame"`
}

type component struct {
	minX, minY, maxX, maxY int
	// extreme points: top-left, top-right, bottom-right, bottom-left
	tl, tr, br, bl image.Point
}

func (c *component) add(x, y int) {
	p := image.Point{X: x, Y: y}
	if x < c.minX {
		c.minX = x
	}
	if x > c.maxX {
		c.maxX = x
	}
	if y < c.minY {
		c.minY = y
	}
	if y > c.maxY {
		c.maxY = y
	}
	if x+y < c.tl.X+c.tl.Y {
		c.tl = p
	}
	if x+y > c.br.X+c.br.Y {
		c.br = p
	}
	if x-y > c.tr.X-c.tr.Y {
		c.tr = p
	}
	if x-y < c.bl.X-c.bl.Y {
		c.bl = p
	}
}

func (c *component) quadArea() float64 {
	pts := []image.Point{c.tl, c.tr, c.br, c.bl}
	area := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		area += float64(pts[i].X*pts[j].Y - pts[j].X*pts[i].Y)
	}
	return math.Abs(area) / 2
}

// edgeMap returns Sobel edges thresholded at mean + 1σ of the gradient magnitude.
func edgeMap(g *Gray) []bool {
	mag := make(stats.Float64Data, g.W*g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			gx := g.At(x+1, y-1) + 2*g.At(x+1, y) + g.At(x+1, y+1) -
				g.At(x-1, y-1) - 2*g.At(x-1, y) - g.At(x-1, y+1)
			gy := g.At(x-1, y+1) + 2*g.At(x, y+1) + g.At(x+1, y+1) -
				g.At(x-1, y-1) - 2*g.At(x, y-1) - g.At(x+1, y-1)
			mag[y*g.W+x] = math.Hypot(gx, gy)
		}
	}
	mean, _ := stats.Mean(mag)
	sd, _ := stats.StandardDeviationPopulation(mag)
	cut := math.Max(mean+sd, minEdgeMagnitude)
	edges := make([]bool, len(mag))
	for i, m := range mag {
		edges[i] = m > cut
	}
	return edges
}

// components groups edge pixels into 8-connected components.
func components(edges []bool, w, h int) []*component {
	seen := make([]bool, len(edges))
	found := []*component{}
	stack := []int{}
	for start, isEdge := range edges {
		if !isEdge || seen[start] {
			continue
		}
		sx, sy := start%w, start/w
		c := &component{
			minX: sx, maxX: sx, minY: sy, maxY: sy,
			tl: image.Pt(sx, sy), tr: image.Pt(sx, sy), br: image.Pt(sx, sy), bl: image.Pt(sx, sy),
		}
		seen[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			c.add(x, y)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					j := ny*w + nx
					if edges[j] && !seen[j] {
						seen[j] = true
						stack = append(stack, j)
					}
				}
			}
		}
		found = append(found, c)
	}
	return found
}

// DetectBoundary finds the largest four-sided outline whose width/height ratio is
// inside aspect. When none is found the whole frame is used if its own ratio fits.
// Returns nil when neither applies.
func DetectBoundary(img image.Image, aspect AspectRange, minMargin float64) *Boundary {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	scale := math.Min(1, float64(boundaryWorkingSide)/float64(max(w, h)))
	sw := max(1, int(math.Round(float64(w)*scale)))
	sh := max(1, int(math.Round(float64(h)*scale)))
	g := boxBlur3(resizeGray(img, sw, sh))

	frameArea := float64(sw * sh)
	var best *component
	bestArea := 0
	for _, c := range components(edgeMap(g), sw, sh) {
		bw, bh := c.maxX-c.minX+1, c.maxY-c.minY+1
		if bw < 10 || bh < 10 {
			continue
		}
		boxArea := bw * bh
		if float64(boxArea) < frameArea*minComponentShare {
			continue
		}
		if c.quadArea() < float64(boxArea)*minQuadFill {
			continue
		}
		if !aspect.Contains(float64(bw) / float64(bh)) {
			continue
		}
		if boxArea > bestArea {
			best, bestArea = c, boxArea
		}
	}

	var result *Boundary
	if best != nil {
		up := func(p image.Point) image.Point {
			return image.Pt(int(math.Round(float64(p.X)/scale)), int(math.Round(float64(p.Y)/scale)))
		}
		topLeft, bottomRight := up(image.Pt(best.minX, best.minY)), up(image.Pt(best.maxX+1, best.maxY+1))
		result = &Boundary{
			X:       topLeft.X,
			Y:       topLeft.Y,
			Width:   min(bottomRight.X, w) - topLeft.X,
			Height:  min(bottomRight.Y, h) - topLeft.Y,
			Corners: [4]image.Point{up(best.tl), up(best.tr), up(best.br), up(best.bl)},
		}
	} else {
		if !aspect.Contains(float64(w) / float64(h)) {
			return nil
		}
		result = &Boundary{
			Width: w, Height: h, FullFrame: true,
			Corners: [4]image.Point{{0, 0}, {w, 0}, {w, h}, {0, h}},
		}
	}
	result.AspectRatio = float64(result.Width) / float64(max(result.Height, 1))
	result.AreaRatio = float64(result.Width*result.Height) / float64(w*h)
	result.MarginW = float64(min(result.X, w-(result.X+result.Width))) / float64(w)
	result.MarginH = float64(min(result.Y, h-(result.Y+result.Height))) / float64(h)
	result.MarginOK = result.MarginW >= minMargin && result.MarginH >= minMargin
	return result
}
