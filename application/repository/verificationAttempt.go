package repository

import (
	"sync"

	"ekyc.io/entities"
	"ekyc.io/infrastructure/database/connection/datastore"
	"ekyc.io/infrastructure/database/repository/mongo"
)

var verificationAttemptOnce = sync.Once{}

var verificationAttemptRepository mongo.MongoRepository[entities.VerificationAttempt]

// VerificationAttemptRepo must be called after the datastore has connected.
func VerificationAttemptRepo() *mongo.MongoRepository[entities.VerificationAttempt] {
	verificationAttemptOnce.Do(func() {
		verificationAttemptRepository = mongo.MongoRepository[entities.VerificationAttempt]{Model: datastore.VerificationAttemptModel}
	})
	return &verificationAttemptRepository
}
