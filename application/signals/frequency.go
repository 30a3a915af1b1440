package signals

import (
	"image"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	CheckMoire      = "moire"
	CheckReflection = "reflection"
	CheckScreenGrid = "screen_grid"
	CheckHalftone   = "halftone"

	SpectrumSize = 256
)

// Spectrum is the magnitude of the 2-D DFT of a Hann-windowed, resized luma plane.
// Bins are stored unshifted; Radius reports the distance from the centred DC bin.
type Spectrum struct {
	N   int
	Mag []float64
}

func hann2D(n int) []float64 {
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	w := window.Hann(ones)
	out := make([]float64, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out[y*n+x] = w[y] * w[x]
		}
	}
	return out
}

// ComputeSpectrum resizes img to SpectrumSize², applies the window and transforms it.
func ComputeSpectrum(img image.Image) *Spectrum {
	n := SpectrumSize
	g := resizeGray(img, n, n)
	win := hann2D(n)

	data := make([]complex128, n*n)
	for i, v := range g.Pix {
		data[i] = complex(v*win[i], 0)
	}

	fft := fourier.NewCmplxFFT(n)
	src := make([]complex128, n)
	dst := make([]complex128, n)
	for y := 0; y < n; y++ {
		copy(src, data[y*n:(y+1)*n])
		fft.Coefficients(dst, src)
		copy(data[y*n:(y+1)*n], dst)
	}
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			src[y] = data[y*n+x]
		}
		fft.Coefficients(dst, src)
		for y := 0; y < n; y++ {
			data[y*n+x] = dst[y]
		}
	}

	spec := &Spectrum{N: n, Mag: make([]float64, n*n)}
	for i, c := range data {
		spec.Mag[i] = cmplx.Abs(c)
	}
	return spec
}

func signedFrequency(k, n int) int {
	if k < n/2 {
		return k
	}
	return k - n
}

// Radius is the distance of bin i from the centred DC component.
func (s *Spectrum) Radius(i int) float64 {
	fy := signedFrequency(i/s.N, s.N)
	fx := signedFrequency(i%s.N, s.N)
	return math.Hypot(float64(fx), float64(fy))
}

// MoireScore compares log-magnitude energy in the mid ring (20,80) with the wider
// reference ring (5,120). Higher means less moiré.
func MoireScore(s *Spectrum) float64 {
	var valid, mid float64
	for i, m := range s.Mag {
		d := s.Radius(i)
		v := math.Log1p(m)
		if d > 5 && d < 120 {
			valid += v
		}
		if d > 20 && d < 80 {
			mid += v
		}
	}
	if valid <= 0 {
		return 0.5
	}
	return clamp(1 - 1.5*(mid/valid))
}

// Moire passes when the score is above threshold.
func Moire(s *Spectrum, threshold float64) RawCheck {
	score := MoireScore(s)
	return NewCheck(CheckMoire, score, score > threshold, threshold)
}

// ReflectionScore is the selfie variant of the moiré measure: raw magnitude in the
// ring [20,100] over the whole spectrum.
func ReflectionScore(s *Spectrum) float64 {
	var total, mid float64
	for i, m := range s.Mag {
		total += m
		d := s.Radius(i)
		if d >= 20 && d <= 100 {
			mid += m
		}
	}
	if total <= 0 {
		return 0.5
	}
	return clamp(1 - 2*(mid/total))
}

func Reflection(s *Spectrum, threshold float64) RawCheck {
	score := ReflectionScore(s)
	return NewCheck(CheckReflection, score, score > threshold, threshold)
}

// ScreenGridScore measures how far the strongest bin in the ring [25,90] stands
// above the ring mean. A regular LCD grid produces one narrow, very tall peak.
func ScreenGridScore(s *Spectrum) float64 {
	var peak, sum float64
	count := 0
	for i, m := range s.Mag {
		if m <= 0 {
			continue
		}
		d := s.Radius(i)
		if d < 25 || d > 90 {
			continue
		}
		sum += m
		count++
		if m > peak {
			peak = m
		}
	}
	if count < 10 || sum <= 0 {
		return 0
	}
	mean := sum / float64(count)
	return clamp((peak/mean - 1) / 20)
}

func ScreenGrid(s *Spectrum, maxScore float64) RawCheck {
	score := ScreenGridScore(s)
	return NewCheck(CheckScreenGrid, score, score <= maxScore, maxScore)
}

// HalftoneScore is the share of ring [8,100] energy held by its 50 strongest bins.
// Printed dot patterns concentrate energy into few bins.
func HalftoneScore(s *Spectrum) float64 {
	ring := []float64{}
	total := 0.0
	for i, m := range s.Mag {
		d := s.Radius(i)
		if d < 8 || d > 100 || m <= 0 {
			continue
		}
		ring = append(ring, m)
		total += m
	}
	if total <= 0 || len(ring) == 0 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ring)))
	top := 0.0
	for _, m := range ring[:min(50, len(ring))] {
		top += m
	}
	return min(1, top/math.Max(total*0.15, 1e-6)*0.5)
}

func Halftone(s *Spectrum, maxScore float64) RawCheck {
	score := HalftoneScore(s)
	return NewCheck(CheckHalftone, score, score <= maxScore, maxScore)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
