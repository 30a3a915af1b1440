// Package services holds the collaborators built once by startUp and read by
// the controllers.
package services

import (
	"context"

	"ekyc.io/application/authenticity"
	"ekyc.io/application/fieldcompare"
	"ekyc.io/application/liveness"
	"ekyc.io/application/policy"
	verification_usecases "ekyc.io/application/usecases/verification"
)

// PolicyConfigStore reads and appends versions of the scoring policy.
type PolicyConfigStore interface {
	policy.ConfigSource
	SaveConfig(ctx context.Context, cfg policy.Config, updatedBy string) (*policy.Config, error)
}

var (
	Verifier  *verification_usecases.Verifier
	Recorder  *verification_usecases.Recorder
	Documents *authenticity.Engine
	Liveness  *liveness.Engine
	Fields    *fieldcompare.Engine
	Policy    *policy.Engine
	// PolicyStore is nil when Postgres is not configured.
	PolicyStore PolicyConfigStore
)
