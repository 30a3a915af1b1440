package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/policy"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

const configTable = "verification_configs"

// ConfigStore keeps every saved policy as a new version; reads take the latest.
type ConfigStore struct {
	Pool Pool
}

func (s *ConfigStore) LatestConfig(ctx context.Context) (*policy.Config, error) {
	if s == nil || s.Pool == nil {
		return nil, &apperrors.ConfigurationMissing{Source: configTable}
	}
	var (
		cfg        policy.Config
		components []byte
	)
	err := s.Pool.QueryRow(ctx,
		"SELECT version, components, updated_by, created_at FROM verification_configs ORDER BY version DESC LIMIT 1",
	).Scan(&cfg.Version, &components, &cfg.UpdatedBy, &cfg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.ConfigurationMissing{Source: configTable}
		}
		return nil, eris.Wrap(err, "postgres: read latest config")
	}
	if err := json.Unmarshal(components, &cfg.Components); err != nil {
		return nil, eris.Wrap(err, "postgres: decode config components")
	}
	return &cfg, nil
}

// SaveConfig validates cfg and stores it as a new version.
func (s *ConfigStore) SaveConfig(ctx context.Context, cfg policy.Config, updatedBy string) (*policy.Config, error) {
	if s == nil || s.Pool == nil {
		return nil, &apperrors.CollaboratorUnavailable{Collaborator: "postgres"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	components, err := json.Marshal(cfg.Components)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: encode config components")
	}
	saved := policy.Config{Components: cfg.Components, UpdatedBy: updatedBy}
	err = s.Pool.QueryRow(ctx,
		"INSERT INTO verification_configs (components, updated_by) VALUES ($1, $2) RETURNING version, created_at",
		components, updatedBy,
	).Scan(&saved.Version, &saved.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert config")
	}
	saved.CreatedAt = saved.CreatedAt.UTC()
	return &saved, nil
}

// AuditStore appends one row per verification attempt.
type AuditStore struct {
	Pool Pool
}

func (s *AuditStore) Insert(ctx context.Context, row policy.AuditRow) error {
	if s == nil || s.Pool == nil {
		return &apperrors.CollaboratorUnavailable{Collaborator: "postgres"}
	}
	components, err := json.Marshal(row.Components)
	if err != nil {
		return eris.Wrap(err, "postgres: encode audit components")
	}
	reasons, err := json.Marshal(row.Reasons)
	if err != nil {
		return eris.Wrap(err, "postgres: encode audit reasons")
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO verification_audits
			(attempt_id, config_version, decision, total_score, max_score, bypassed, components, reasons, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (attempt_id) DO NOTHING`,
		row.AttemptID, row.ConfigVersion, string(row.Decision), row.TotalScore, row.MaxScore, row.Bypassed,
		components, reasons, row.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert audit %s", row.AttemptID)
	}
	return nil
}

// FindByAttempt returns nil when no audit row exists for attemptID.
func (s *AuditStore) FindByAttempt(ctx context.Context, attemptID string) (*policy.AuditRow, error) {
	if s == nil || s.Pool == nil {
		return nil, &apperrors.CollaboratorUnavailable{Collaborator: "postgres"}
	}
	var (
		row                 policy.AuditRow
		decision            string
		components, reasons []byte
		createdAt           time.Time
	)
	err := s.Pool.QueryRow(ctx,
		`SELECT attempt_id, config_version, decision, total_score, max_score, bypassed, components, reasons, created_at
		FROM verification_audits WHERE attempt_id = $1`, attemptID,
	).Scan(&row.AttemptID, &row.ConfigVersion, &decision, &row.TotalScore, &row.MaxScore, &row.Bypassed,
		&components, &reasons, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: read audit %s", attemptID)
	}
	row.Decision = policy.Decision(decision)
	row.CreatedAt = createdAt.UTC()
	if err := json.Unmarshal(components, &row.Components); err != nil {
		return nil, eris.Wrap(err, "postgres: decode audit components")
	}
	if err := json.Unmarshal(reasons, &row.Reasons); err != nil {
		return nil, eris.Wrap(err, "postgres: decode audit reasons")
	}
	return &row, nil
}
