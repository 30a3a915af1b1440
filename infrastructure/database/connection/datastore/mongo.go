package datastore

import (
	"context"
	"time"

	"ekyc.io/infrastructure/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	VerificationAttemptModel *mongo.Collection

	client *mongo.Client
)

func ConnectMongo(url string, dbName string) {
	if url == "" {
		logger.Warning("mongo url missing, verification attempts will not be stored")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(url)
	clientOpts.SetMinPoolSize(5)
	clientOpts.SetMaxPoolSize(10)

	c, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Warning("an error occured while starting the database", logger.LoggerOptions{Key: "error", Data: err})
		return
	}
	if err := c.Ping(ctx, nil); err != nil {
		logger.Warning("mongodb is unreachable", logger.LoggerOptions{Key: "error", Data: err})
		return
	}
	client = c

	db := client.Database(dbName)
	setUpIndexes(ctx, db)

	logger.Info("connected to mongodb successfully")
}

// Set up the indexes for the database
func setUpIndexes(ctx context.Context, db *mongo.Database) {
	VerificationAttemptModel = db.Collection("VerificationAttempts")
	_, err := VerificationAttemptModel.Indexes().CreateMany(ctx, []mongo.IndexModel{{
		Keys:    bson.D{{Key: "attemptID", Value: 1}},
		Options: options.Index().SetUnique(true),
	}, {
		Keys:    bson.D{{Key: "decision", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index(),
	}})
	if err != nil {
		logger.Warning("could not create mongodb indexes", logger.LoggerOptions{Key: "error", Data: err})
		return
	}

	logger.Info("mongodb indexes set up successfully")
}

func Disconnect() {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Error("error disconnecting from mongodb", logger.LoggerOptions{Key: "error", Data: err})
	}
}
