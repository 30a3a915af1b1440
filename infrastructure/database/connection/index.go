package connection

import (
	"ekyc.io/infrastructure/database/connection/cache"
	"ekyc.io/infrastructure/database/connection/datastore"
	"ekyc.io/infrastructure/database/connection/postgres"
	"ekyc.io/infrastructure/env"
)

func ConnectToDatabase(cfg env.StorageConfig) {
	datastore.ConnectMongo(cfg.MongoURL, cfg.MongoDB)
	cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword)
	postgres.ConnectPostgres(cfg.PostgresURL)
}

func Close() {
	datastore.Disconnect()
	cache.Close()
	postgres.Close()
}
