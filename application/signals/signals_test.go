package signals

import (
	"image"
	"image/color"
	"testing"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharpness(t *testing.T) {
	tests := []struct {
		name       string
		img        image.Image
		wantPassed bool
		wantScore  float64
	}{
		{name: "flat image has no detail", img: flatGray(320, 240, 128), wantPassed: false, wantScore: 0},
		{name: "pixel checkerboard saturates", img: checkerboard(320, 240), wantPassed: true, wantScore: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := SharpnessOf(tt.img, 0.3)
			assert.Equal(t, CheckSharpness, check.Name)
			assert.Equal(t, tt.wantPassed, check.Passed)
			assert.InDelta(t, tt.wantScore, check.Score, 1e-9)
		})
	}
}

func TestSharpnessIsDeterministic(t *testing.T) {
	img := noiseGray(200, 150, 7)
	first := SharpnessOf(img, 0.3)
	second := SharpnessOf(img, 0.3)
	assert.Equal(t, first, second)
}

func TestLaplacianVarianceIsResolutionNormalised(t *testing.T) {
	small := LaplacianVariance(ToGray(checkerboard(160, 120)))
	large := LaplacianVariance(ToGray(checkerboard(640, 480)))
	// same pattern, four times the pixels; only the replicated borders differ
	assert.InDelta(t, small, 4*large, small*0.03)
}

func TestMoireIsDeterministicAndBounded(t *testing.T) {
	img := noiseGray(300, 200, 11)
	first := Moire(ComputeSpectrum(img), 0.2)
	second := Moire(ComputeSpectrum(img), 0.2)
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first.Score, 0.0)
	assert.LessOrEqual(t, first.Score, 1.0)

	reflection := ReflectionScore(ComputeSpectrum(img))
	assert.GreaterOrEqual(t, reflection, 0.0)
	assert.LessOrEqual(t, reflection, 1.0)
}

func TestScreenGridFlagsPeriodicPattern(t *testing.T) {
	grid := ScreenGrid(ComputeSpectrum(stripes(SpectrumSize, SpectrumSize, 40)), 0.85)
	natural := ScreenGrid(ComputeSpectrum(noiseGray(SpectrumSize, SpectrumSize, 3)), 0.85)

	assert.GreaterOrEqual(t, grid.Score, 0.9)
	assert.False(t, grid.Passed)
	assert.Less(t, natural.Score, 0.5)
	assert.True(t, natural.Passed)
}

func TestHalftoneFlagsConcentratedEnergy(t *testing.T) {
	printed := Halftone(ComputeSpectrum(stripes(SpectrumSize, SpectrumSize, 30)), 0.35)
	natural := Halftone(ComputeSpectrum(noiseGray(SpectrumSize, SpectrumSize, 5)), 0.35)

	assert.False(t, printed.Passed)
	assert.True(t, natural.Passed)
	assert.Greater(t, printed.Score, natural.Score)
}

func TestTexture(t *testing.T) {
	flat := ToGray(flatGray(100, 100, 90))
	noisy := ToGray(noiseGray(100, 100, 9))

	assert.Zero(t, LBPVariance(flat))
	assert.False(t, DocumentTexture(flat, 0.15, 1).Passed)
	assert.True(t, DocumentTexture(noisy, 0.15, 1).Passed)

	assert.False(t, LivenessTexture(flat, 0.1).Passed)
	live := LivenessTexture(noisy, 0.1)
	assert.True(t, live.Passed)
	assert.LessOrEqual(t, live.Score, 1.0)

	assert.Zero(t, LBPVariance(ToGray(noiseGray(8, 8, 1))), "images under 10px are not scored")
}

func TestGlare(t *testing.T) {
	white := Glare(flatGray(50, 50, 255), nil)
	assert.False(t, white.Passed)
	assert.InDelta(t, 1.0, white.Score, 1e-9)

	dark := Glare(flatGray(50, 50, 20), nil)
	assert.True(t, dark.Passed)
	assert.Zero(t, dark.Score)

	roi := image.Rect(0, 0, 10, 10)
	assert.True(t, Glare(flatGray(50, 50, 30), &roi).Passed)
}

func TestResolution(t *testing.T) {
	check := Resolution(flatGray(80, 50, 0), 100)
	assert.False(t, check.Passed)
	assert.InDelta(t, 0.5, check.Score, 1e-9)
	assert.True(t, Resolution(flatGray(300, 120, 0), 100).Passed)
}

func TestSkinToneAndSaturation(t *testing.T) {
	skin := flatRGBA(60, 60, color.RGBA{R: 224, G: 172, B: 150, A: 255})
	blue := flatRGBA(60, 60, color.RGBA{B: 255, A: 255})

	assert.InDelta(t, 0.5, SkinToneScore(skin, nil), 1e-9)
	assert.Zero(t, SkinToneScore(blue, nil))

	region := image.Rect(0, 0, 5, 5)
	assert.Zero(t, SkinToneScore(skin, &region), "25 pixels are too few to judge")

	assert.Zero(t, MeanSaturation(flatGray(20, 20, 100)))
	assert.InDelta(t, 1.0, MeanSaturation(flatRGBA(20, 20, color.RGBA{R: 255, A: 255})), 1e-9)
}

func TestSaturationGuardOnlyAppliesToHighTexture(t *testing.T) {
	gray := flatGray(20, 20, 100)
	high := RawCheck{Name: CheckTexture, Score: 1}
	low := RawCheck{Name: CheckTexture, Score: 0.3}

	assert.False(t, SaturationGuard(gray, high, 0.95, 0.06).Passed)
	assert.True(t, SaturationGuard(gray, low, 0.95, 0.06).Passed)
}

func TestDetectBoundary(t *testing.T) {
	aspect := AspectRange{Min: 1.4, Max: 1.75}

	t.Run("finds a centred card", func(t *testing.T) {
		img := card(800, 600, image.Rect(150, 142, 650, 458))
		b := DetectBoundary(img, aspect, 0.02)
		require.NotNil(t, b)
		assert.False(t, b.FullFrame)
		assert.InDelta(t, 1.58, b.AspectRatio, 0.08)
		assert.InDelta(t, 0.33, b.AreaRatio, 0.05)
		assert.True(t, b.MarginOK)
	})

	t.Run("falls back to the frame", func(t *testing.T) {
		b := DetectBoundary(flatGray(800, 500, 120), aspect, 0.01)
		require.NotNil(t, b)
		assert.True(t, b.FullFrame)
		assert.Equal(t, 1.0, b.AreaRatio)
		assert.False(t, b.MarginOK)
	})

	t.Run("square frame without outline", func(t *testing.T) {
		assert.Nil(t, DetectBoundary(flatGray(600, 600, 120), aspect, 0.01))
	})
}

func TestChecksTally(t *testing.T) {
	checks := Checks{}
	checks.Add(NewCheck("a", 0.9, true, 0.5))
	checks.Add(NewCheck("b", 0.1, false, 0.5))
	checks.Add(SkippedCheck("c", "face service unavailable"))

	passed, total := checks.Tally()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 2, total)
	assert.False(t, checks.AllPassed())
	assert.Equal(t, []string{"b"}, checks.Failed())
	assert.False(t, Checks{}.AllPassed())
}

func TestFromError(t *testing.T) {
	skipped := FromError(CheckColor, &apperrors.CollaboratorUnavailable{Collaborator: "face_detector"})
	assert.True(t, skipped.Skipped)

	timedOut := FromError(CheckSharpness, &apperrors.CheckTimeout{Check: CheckSharpness, After: time.Second})
	assert.False(t, timedOut.Skipped)
	assert.False(t, timedOut.Passed)
	assert.Zero(t, timedOut.Score)
	assert.Contains(t, timedOut.Reason, "timed out")
}
