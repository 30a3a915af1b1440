package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/policy"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestMigrateAppliesPendingFiles(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec("SELECT pg_advisory_lock").WithArgs(pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT filename FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"filename"}).AddRow("001_verification_configs.sql"))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS verification_audits").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("002_verification_audits.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("SELECT pg_advisory_unlock").WithArgs(pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, Migrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsOnFailedFile(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec("SELECT pg_advisory_lock").WithArgs(pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT filename FROM schema_migrations").WillReturnRows(pgxmock.NewRows([]string{"filename"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS verification_configs").WillReturnError(fmt.Errorf("syntax error"))
	mock.ExpectExec("SELECT pg_advisory_unlock").WithArgs(pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	err := Migrate(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_verification_configs.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestConfig(t *testing.T) {
	mock := newMock(t)
	store := &ConfigStore{Pool: mock}
	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT version, components, updated_by, created_at FROM verification_configs").
		WillReturnRows(pgxmock.NewRows([]string{"version", "components", "updated_by", "created_at"}).
			AddRow(int64(3), []byte(`{"face_matching":{"min_points":12,"max_points":20,"enabled":true}}`), "ops", created))

	cfg, err := store.LatestConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), cfg.Version)
	assert.Equal(t, "ops", cfg.UpdatedBy)
	assert.False(t, cfg.Default)
	assert.Equal(t, 12.0, cfg.Setting(policy.FaceMatching).MinPoints)
	assert.Equal(t, 35.0, cfg.Setting(policy.DocumentVerify).MaxPoints, "unstored components fall back to defaults")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestConfigMissing(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("SELECT version").WillReturnError(pgx.ErrNoRows)

	_, err := (&ConfigStore{Pool: mock}).LatestConfig(context.Background())
	assert.True(t, apperrors.IsConfigurationMissing(err))

	_, err = (&ConfigStore{}).LatestConfig(context.Background())
	assert.True(t, apperrors.IsConfigurationMissing(err))
}

func TestSaveConfig(t *testing.T) {
	mock := newMock(t)
	store := &ConfigStore{Pool: mock}
	created := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO verification_configs").
		WithArgs(pgxmock.AnyArg(), "admin@ekyc").
		WillReturnRows(pgxmock.NewRows([]string{"version", "created_at"}).AddRow(int64(5), created))

	saved, err := store.SaveConfig(context.Background(), policy.DefaultConfig(), "admin@ekyc")
	require.NoError(t, err)
	assert.Equal(t, int64(5), saved.Version)
	assert.Equal(t, created, saved.CreatedAt)
	assert.Equal(t, "admin@ekyc", saved.UpdatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveConfigRejectsInvalid(t *testing.T) {
	mock := newMock(t)
	bad := policy.DefaultConfig().Merge(map[policy.Component]policy.Setting{
		policy.IDNumber: {MinPoints: 30, MaxPoints: 20, Enabled: true},
	})

	_, err := (&ConfigStore{Pool: mock}).SaveConfig(context.Background(), bad, "ops")
	assert.True(t, apperrors.IsInputError(err))
	assert.NoError(t, mock.ExpectationsWereMet(), "nothing is written")
}

func TestAuditInsertAndFind(t *testing.T) {
	mock := newMock(t)
	store := &AuditStore{Pool: mock}
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	row := policy.Evaluate(policy.Scores{}, policy.DefaultConfig()).Audit("attempt-9", at)

	mock.ExpectExec("INSERT INTO verification_audits").
		WithArgs("attempt-9", int64(0), "rejected", 0.0, 100.0, false, pgxmock.AnyArg(), pgxmock.AnyArg(), at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, store.Insert(context.Background(), row))

	mock.ExpectQuery("FROM verification_audits WHERE attempt_id").
		WithArgs("attempt-9").
		WillReturnRows(pgxmock.NewRows([]string{
			"attempt_id", "config_version", "decision", "total_score", "max_score", "bypassed", "components", "reasons", "created_at",
		}).AddRow("attempt-9", int64(0), "rejected", 0.0, 100.0, false,
			[]byte(`[{"name":"ekyc","depth":0,"min_points":0,"max_points":100,"enabled":true,"threshold_percent":0,"score_percent":0,"points_obtained":0,"passed":true}]`),
			[]byte(`["document_verify: 0.00 points below minimum 30.00"]`), at))

	found, err := store.FindByAttempt(context.Background(), "attempt-9")
	require.NoError(t, err)
	assert.Equal(t, policy.Rejected, found.Decision)
	require.Len(t, found.Components, 1)
	assert.Equal(t, policy.EKYC, found.Components[0].Component)
	assert.Equal(t, []string{"document_verify: 0.00 points below minimum 30.00"}, found.Reasons)

	mock.ExpectQuery("FROM verification_audits WHERE attempt_id").WithArgs("nope").WillReturnError(pgx.ErrNoRows)
	found, err = store.FindByAttempt(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}
