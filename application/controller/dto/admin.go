package dto

import (
	"ekyc.io/application/policy"
)

type ComponentSettingDTO struct {
	MinPoints *float64 `json:"min_points" validate:"required,gte=0"`
	MaxPoints *float64 `json:"max_points" validate:"required,gte=0"`
	Enabled   *bool    `json:"enabled" validate:"required"`
}

// UpdateVerificationConfigDTO replaces the named components; the rest keep
// their current settings.
type UpdateVerificationConfigDTO struct {
	Components map[string]ComponentSettingDTO `json:"components" validate:"required,min=1,dive,keys,component_name,endkeys"`
}

func (u UpdateVerificationConfigDTO) Updates() map[policy.Component]policy.Setting {
	updates := map[policy.Component]policy.Setting{}
	for name, s := range u.Components {
		c, ok := policy.ParseComponent(name)
		if !ok || s.MinPoints == nil || s.MaxPoints == nil || s.Enabled == nil {
			continue
		}
		updates[c] = policy.Setting{MinPoints: *s.MinPoints, MaxPoints: *s.MaxPoints, Enabled: *s.Enabled}
	}
	return updates
}
