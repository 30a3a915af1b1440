// Package signals holds the stateless pixel-analysis functions used by the
// liveness and document authenticity engines. Every function takes decoded
// pixels and returns a score in [0,1] plus a pass flag; none of them keep state
// between calls, so they can run in parallel across images and checks.
package signals

import (
	"sort"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/utils"
)

// RawCheck is the outcome of a single analysis.
type RawCheck struct {
	Name      string   `json:"name" bson:"name"`
	Score     float64  `json:"score" bson:"score"`
	Passed    bool     `json:"passed" bson:"passed"`
	Threshold *float64 `json:"threshold,omitempty" bson:"threshold,omitempty"`
	Skipped   bool     `json:"skipped,omitempty" bson:"skipped,omitempty"`
	Reason    string   `json:"reason,omitempty" bson:"reason,omitempty"`
}

func NewCheck(name string, score float64, passed bool, threshold float64) RawCheck {
	return RawCheck{
		Name:      name,
		Score:     utils.Round(utils.Clamp01(score), 4),
		Passed:    passed,
		Threshold: utils.GetFloat64Pointer(threshold),
	}
}

// SkippedCheck records a check that could not run because a collaborator was missing.
func SkippedCheck(name string, reason string) RawCheck {
	return RawCheck{Name: name, Skipped: true, Reason: reason}
}

// FailedCheck records a check that could not produce a score. It contributes zero.
func FailedCheck(name string, reason string) RawCheck {
	return RawCheck{Name: name, Score: 0, Passed: false, Reason: reason}
}

// FromError turns an error returned by a check into its recorded outcome: an
// unavailable collaborator skips the check, anything else fails it with score 0.
func FromError(name string, err error) RawCheck {
	if apperrors.IsCollaboratorUnavailable(err) {
		return SkippedCheck(name, err.Error())
	}
	return FailedCheck(name, err.Error())
}

// Checks maps check names to their outcome.
type Checks map[string]RawCheck

func (c Checks) Add(check RawCheck) {
	c[check.Name] = check
}

// Tally counts passed and evaluated checks. Skipped checks are not evaluated.
func (c Checks) Tally() (passed int, total int) {
	for _, check := range c {
		if check.Skipped {
			continue
		}
		total++
		if check.Passed {
			passed++
		}
	}
	return passed, total
}

// AllPassed reports whether every evaluated check passed and at least one was evaluated.
func (c Checks) AllPassed() bool {
	passed, total := c.Tally()
	return total > 0 && passed == total
}

// Failed lists the names of evaluated checks that did not pass, sorted.
func (c Checks) Failed() []string {
	names := []string{}
	for name, check := range c {
		if !check.Skipped && !check.Passed {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Merge copies other into c, overwriting entries with the same name.
func (c Checks) Merge(other Checks) {
	for name, check := range other {
		c[name] = check
	}
}
