package postgres

import (
	"context"
	"time"

	"ekyc.io/infrastructure/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

var Pool *pgxpool.Pool

func connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse url")
	}
	cfg.MinConns = 2
	cfg.MaxConns = 10
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return pool, nil
}

func ConnectPostgres(url string) {
	if url == "" {
		logger.Warning("postgres url missing, compiled policy defaults apply and audits are not stored")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	pool, err := connect(ctx, url)
	if err != nil {
		logger.Warning("an error occured while connecting to postgres", logger.LoggerOptions{Key: "error", Data: err})
		return
	}
	Pool = pool
	logger.Info("connected to postgres successfully")
}

func Close() {
	if Pool != nil {
		Pool.Close()
	}
}
