package mongo

import (
	"context"
	"errors"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/infrastructure/logger"
	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (repo *MongoRepository[T]) available() error {
	if repo == nil || repo.Model == nil {
		return &apperrors.CollaboratorUnavailable{Collaborator: "mongodb"}
	}
	return nil
}

func (repo *MongoRepository[T]) CreateOne(ctx context.Context, payload T) (*T, error) {
	if err := repo.available(); err != nil {
		return nil, err
	}
	parsed := payload.ParseModel().(*T)
	if _, err := repo.Model.InsertOne(ctx, parsed); err != nil {
		logger.Error("mongo error occured while running CreateOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, eris.Wrap(err, "mongo: insert")
	}
	return parsed, nil
}

// FindOneByFilter returns nil without an error when nothing matches.
func (repo *MongoRepository[T]) FindOneByFilter(ctx context.Context, filter map[string]interface{}, opts ...*options.FindOneOptions) (*T, error) {
	if err := repo.available(); err != nil {
		return nil, err
	}
	var result T
	err := repo.Model.FindOne(ctx, withoutDeleted(filter), opts...).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.Error("mongo error occured while running FindOneByFilter", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, eris.Wrap(err, "mongo: find one")
	}
	return &result, nil
}

func (repo *MongoRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return repo.FindOneByFilter(ctx, map[string]interface{}{"_id": id})
}

func (repo *MongoRepository[T]) FindMany(ctx context.Context, filter map[string]interface{}, opts *FindOptions) (*[]T, error) {
	if err := repo.available(); err != nil {
		return nil, err
	}
	findOpts := options.Find()
	if opts != nil {
		if opts.Projection != nil {
			findOpts.SetProjection(*opts.Projection)
		}
		if opts.Sort != nil {
			findOpts.SetSort(*opts.Sort)
		}
		if opts.Skip != nil {
			findOpts.SetSkip(*opts.Skip)
		}
		if opts.Limit != nil {
			findOpts.SetLimit(*opts.Limit)
		}
	}
	cursor, err := repo.Model.Find(ctx, withoutDeleted(filter), findOpts)
	if err != nil {
		logger.Error("mongo error occured while running FindMany", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, eris.Wrap(err, "mongo: find")
	}
	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, eris.Wrap(err, "mongo: decode cursor")
	}
	return &results, nil
}

func (repo *MongoRepository[T]) CountDocs(ctx context.Context, filter map[string]interface{}) (int64, error) {
	if err := repo.available(); err != nil {
		return 0, err
	}
	count, err := repo.Model.CountDocuments(ctx, withoutDeleted(filter))
	if err != nil {
		return 0, eris.Wrap(err, "mongo: count")
	}
	return count, nil
}

func withoutDeleted(filter map[string]interface{}) bson.M {
	out := bson.M{"deletedAt": nil}
	for k, v := range filter {
		out[k] = v
	}
	return out
}
