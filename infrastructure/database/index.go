package database

import (
	"ekyc.io/infrastructure/database/connection"
	"ekyc.io/infrastructure/env"
)

// SetUpDatabase connects every configured store. Stores without a URL stay
// disconnected and their repositories report themselves unavailable.
func SetUpDatabase(cfg env.StorageConfig) {
	connection.ConnectToDatabase(cfg)
}

func CloseDatabase() {
	connection.Close()
}

type BaseModel interface {
	ParseModel() any
}
