// Package authenticity decides whether captured document sides are an original
// physical document rather than a screenshot, photocopy, print or re-capture.
package authenticity

import (
	"context"
	"image"

	"ekyc.io/application/signals"
)

type Side string

const (
	SideFront    Side = "front"
	SideBack     Side = "back"
	SidePassport Side = "passport"
)

type DocumentType string

const (
	YemenNationalID DocumentType = "yemen_national_id"
	YemenPassport   DocumentType = "yemen_passport"
)

func (d DocumentType) Valid() bool {
	return d == YemenNationalID || d == YemenPassport
}

// top-level checks reported per side
const (
	CheckResolution          = "resolution"
	CheckOfficialDocument    = "official_document"
	CheckNotScreenshotOrCopy = "not_screenshot_or_copy"
	CheckClearAndReadable    = "clear_and_readable"
	CheckFullyVisible        = "fully_visible"
	CheckNotObscured         = "not_obscured"
	CheckNoExtraObjects      = "no_extra_objects"
	CheckIntegrity           = "integrity"

	// passport-only bundle rule: borderline moiré together with a medium screen grid
	CheckScreenCapture = "screen_capture"
)

// FaceLocator finds faces printed on a document.
type FaceLocator interface {
	DetectFaces(ctx context.Context, img image.Image) ([]image.Rectangle, error)
}

// Band is an inclusive range of scores.
type Band struct {
	Min float64 `mapstructure:"min" json:"min"`
	Max float64 `mapstructure:"max" json:"max"`
}

func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

type Thresholds struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	MinSharpness         float64 `mapstructure:"min_sharpness" json:"min_sharpness"`
	MinSharpnessPassport float64 `mapstructure:"min_sharpness_passport" json:"min_sharpness_passport"`
	MinResolutionPx      int     `mapstructure:"min_resolution_px" json:"min_resolution_px"`
	MinMarginRatio       float64 `mapstructure:"min_margin_ratio" json:"min_margin_ratio"`
	MinCoverageRatio     float64 `mapstructure:"min_coverage_ratio" json:"min_coverage_ratio"`
	// coverage at which small margins are tolerated
	FullCoverageRatio float64 `mapstructure:"full_coverage_ratio" json:"full_coverage_ratio"`

	AspectID       signals.AspectRange `mapstructure:"aspect_id" json:"aspect_id"`
	AspectIDBack   signals.AspectRange `mapstructure:"aspect_id_back" json:"aspect_id_back"`
	AspectPassport signals.AspectRange `mapstructure:"aspect_passport" json:"aspect_passport"`

	Moire         float64 `mapstructure:"moire" json:"moire"`
	MoireBack     float64 `mapstructure:"moire_back" json:"moire_back"`
	MoirePassport float64 `mapstructure:"moire_passport" json:"moire_passport"`

	ScreenGridMax         float64 `mapstructure:"screen_grid_max" json:"screen_grid_max"`
	ScreenGridMaxBack     float64 `mapstructure:"screen_grid_max_back" json:"screen_grid_max_back"`
	ScreenGridMaxPassport float64 `mapstructure:"screen_grid_max_passport" json:"screen_grid_max_passport"`

	PassportMoireBorderline      Band `mapstructure:"passport_moire_borderline" json:"passport_moire_borderline"`
	PassportScreenGridSuspicious Band `mapstructure:"passport_screen_grid_suspicious" json:"passport_screen_grid_suspicious"`

	TextureMin                  float64 `mapstructure:"texture_min" json:"texture_min"`
	TextureMax                  float64 `mapstructure:"texture_max" json:"texture_max"`
	HighTexture                 float64 `mapstructure:"high_texture" json:"high_texture"`
	MinSaturationForHighTexture float64 `mapstructure:"min_saturation_for_high_texture" json:"min_saturation_for_high_texture"`
	HalftoneMax                 float64 `mapstructure:"halftone_max" json:"halftone_max"`
	HalftoneMaxPassport         float64 `mapstructure:"halftone_max_passport" json:"halftone_max_passport"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Enabled:                      true,
		MinSharpness:                 0.3,
		MinSharpnessPassport:         0.35,
		MinResolutionPx:              400,
		MinMarginRatio:               0.01,
		MinCoverageRatio:             0.35,
		FullCoverageRatio:            0.75,
		AspectID:                     signals.AspectRange{Min: 1.4, Max: 1.75},
		AspectIDBack:                 signals.AspectRange{Min: 1.4, Max: 1.75},
		AspectPassport:               signals.AspectRange{Min: 1.3, Max: 1.6},
		Moire:                        0.2,
		MoireBack:                    0.1,
		MoirePassport:                0.22,
		ScreenGridMax:                0.85,
		ScreenGridMaxBack:            0.95,
		ScreenGridMaxPassport:        0.8,
		PassportMoireBorderline:      Band{Min: 0.22, Max: 0.3},
		PassportScreenGridSuspicious: Band{Min: 0.3, Max: 0.6},
		TextureMin:                   0.15,
		TextureMax:                   1.0,
		HighTexture:                  0.95,
		MinSaturationForHighTexture:  0.06,
		HalftoneMax:                  0.35,
		HalftoneMaxPassport:          0.3,
	}
}

// profile holds the thresholds that differ between sides.
type profile struct {
	side          Side
	aspect        signals.AspectRange
	moire         float64
	screenGridMax float64
	sharpness     float64
	halftoneMax   float64
	needsFace     bool
}

func (t Thresholds) profile(side Side) profile {
	switch side {
	case SideBack:
		return profile{side: side, aspect: t.AspectIDBack, moire: t.MoireBack, screenGridMax: t.ScreenGridMaxBack,
			sharpness: t.MinSharpness, halftoneMax: t.HalftoneMax}
	case SidePassport:
		return profile{side: side, aspect: t.AspectPassport, moire: t.MoirePassport, screenGridMax: t.ScreenGridMaxPassport,
			sharpness: t.MinSharpnessPassport, halftoneMax: t.HalftoneMaxPassport, needsFace: true}
	default:
		return profile{side: SideFront, aspect: t.AspectID, moire: t.Moire, screenGridMax: t.ScreenGridMax,
			sharpness: t.MinSharpness, halftoneMax: t.HalftoneMax, needsFace: true}
	}
}

// SideEvidence is everything measured on one captured side.
type SideEvidence struct {
	Side Side `json:"side" bson:"side"`
	// Checks holds the top-level checks; Bundle the sub-checks behind not_screenshot_or_copy.
	Checks        signals.Checks    `json:"checks" bson:"checks"`
	Bundle        signals.Checks    `json:"not_screenshot_or_copy_checks" bson:"bundle"`
	Boundary      *signals.Boundary `json:"boundary" bson:"boundary"`
	GlareRatio    *float64          `json:"glare_ratio" bson:"glareRatio"`
	FacesFound    *int              `json:"faces_found,omitempty" bson:"facesFound,omitempty"`
	Passed        bool              `json:"passed" bson:"passed"`
	FailureReason *string           `json:"failure_reason" bson:"failureReason"`
}

type DocumentResult struct {
	DocumentType  DocumentType  `json:"document_type" bson:"documentType"`
	Passed        bool          `json:"passed" bson:"passed"`
	Front         SideEvidence  `json:"front" bson:"front"`
	Back          *SideEvidence `json:"back,omitempty" bson:"back,omitempty"`
	Authenticity  float64       `json:"authenticity_score" bson:"authenticity"`
	Quality       float64       `json:"quality_score" bson:"quality"`
	FailureReason *string       `json:"failure_reason" bson:"failureReason"`
	BypassReason  string        `json:"bypass_reason,omitempty" bson:"bypassReason,omitempty"`
}
