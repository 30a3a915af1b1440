package policy

import (
	"fmt"
	"time"

	apperrors "ekyc.io/application/appErrors"
)

// Setting holds the points a component is worth and whether it is scored.
type Setting struct {
	MinPoints float64 `json:"min_points" bson:"minPoints" mapstructure:"min_points"`
	MaxPoints float64 `json:"max_points" bson:"maxPoints" mapstructure:"max_points"`
	Enabled   bool    `json:"enabled" bson:"enabled" mapstructure:"enabled"`
}

// ThresholdPercent is min/max as a percentage, 0 when the component is worth nothing.
func (s Setting) ThresholdPercent() float64 {
	if s.MaxPoints <= 0 {
		return 0
	}
	return s.MinPoints / s.MaxPoints * 100
}

// Config is one stored version of the policy. It is read once per attempt and
// never mutated while an evaluation runs.
type Config struct {
	Version    int64                 `json:"version"`
	Components map[Component]Setting `json:"components"`
	UpdatedBy  string                `json:"updated_by,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	// Default is set when no stored row exists.
	Default bool `json:"default"`
}

var defaultSettings = [componentCount]Setting{
	EKYC:                 {MinPoints: 0, MaxPoints: 100, Enabled: true},
	DocumentVerify:       {MinPoints: 30, MaxPoints: 35, Enabled: true},
	DocumentAuthenticity: {MinPoints: 10, MaxPoints: 10, Enabled: true},
	DocumentQuality:      {MinPoints: 10, MaxPoints: 10, Enabled: true},
	OCRConfidence:        {MinPoints: 9, MaxPoints: 10, Enabled: true},
	FrontBackIDMatch:     {MinPoints: 5, MaxPoints: 5, Enabled: true},
	FaceLiveness:         {MinPoints: 30, MaxPoints: 35, Enabled: true},
	FaceMatching:         {MinPoints: 15, MaxPoints: 20, Enabled: true},
	PassivePhoto:         {MinPoints: 10, MaxPoints: 15, Enabled: true},
	DataMatch:            {MinPoints: 28, MaxPoints: 30, Enabled: true},
	IDNumber:             {MinPoints: 15, MaxPoints: 20, Enabled: true},
	NameMatching:         {MinPoints: 7, MaxPoints: 10, Enabled: true},
	DOB:                  {},
	IssuanceDate:         {},
	ExpiryDate:           {},
	Gender:               {},
	DeviceRisk:           {},
	Compliance:           {},
}

// DefaultConfig is the compiled policy used when nothing is stored.
func DefaultConfig() Config {
	cfg := Config{Components: map[Component]Setting{}, Default: true}
	for _, c := range Components() {
		cfg.Components[c] = defaultSettings[c]
	}
	return cfg
}

// Setting returns the stored setting for c, falling back to the compiled default.
func (c Config) Setting(component Component) Setting {
	if s, ok := c.Components[component]; ok {
		return s
	}
	return defaultSettings[component]
}

// Merge returns a copy of c with the given settings replaced.
func (c Config) Merge(updates map[Component]Setting) Config {
	merged := Config{Version: c.Version, UpdatedBy: c.UpdatedBy, CreatedAt: c.CreatedAt, Components: map[Component]Setting{}}
	for _, comp := range Components() {
		merged.Components[comp] = c.Setting(comp)
	}
	for comp, s := range updates {
		merged.Components[comp] = s
	}
	return merged
}

// Validate rejects negative points, min above max and a child worth more than
// its category.
func (c Config) Validate() error {
	for comp := range c.Components {
		if !comp.Valid() {
			return apperrors.NewInputError("components", fmt.Sprintf("unknown component %d", int(comp)))
		}
	}
	for _, comp := range Components() {
		s := c.Setting(comp)
		if s.MinPoints < 0 || s.MaxPoints < 0 {
			return apperrors.NewInputError(comp.String(), "points cannot be negative")
		}
		if s.MinPoints > s.MaxPoints {
			return apperrors.NewInputError(comp.String(), fmt.Sprintf("min_points %.2f exceeds max_points %.2f", s.MinPoints, s.MaxPoints))
		}
		if parent, ok := comp.Parent(); ok {
			if ps := c.Setting(parent); s.MaxPoints > ps.MaxPoints {
				return apperrors.NewInputError(comp.String(), fmt.Sprintf("max_points %.2f exceeds %s max_points %.2f", s.MaxPoints, parent, ps.MaxPoints))
			}
		}
	}
	return nil
}
