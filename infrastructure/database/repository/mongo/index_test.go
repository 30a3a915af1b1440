package mongo

import (
	"context"
	"testing"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

type record struct {
	Name      string     `bson:"name"`
	ID        string     `bson:"_id"`
	CreatedAt time.Time  `bson:"createdAt"`
	DeletedAt *time.Time `bson:"deletedAt"`
}

func (r record) ParseModel() any {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
		if r.ID == "" {
			r.ID = utils.GenerateUULDString()
		}
	}
	return &r
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := MongoRepository[record]{Model: mt.Coll}

		created, err := repo.CreateOne(context.Background(), record{Name: "attempt"})
		require.NoError(mt, err)
		assert.NotEmpty(mt, created.ID)
		assert.False(mt, created.CreatedAt.IsZero())
	})

	mt.Run("find one", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "ekyc.records", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "01J"},
			{Key: "name", Value: "attempt"},
		}))
		repo := MongoRepository[record]{Model: mt.Coll}

		found, err := repo.FindOneByFilter(context.Background(), map[string]interface{}{"name": "attempt"})
		require.NoError(mt, err)
		require.NotNil(mt, found)
		assert.Equal(mt, "01J", found.ID)
	})

	mt.Run("find one without match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ekyc.records", mtest.FirstBatch))
		repo := MongoRepository[record]{Model: mt.Coll}

		found, err := repo.FindByID(context.Background(), "missing")
		require.NoError(mt, err)
		assert.Nil(mt, found)
	})

	mt.Run("find many", func(mt *mtest.T) {
		first := mtest.CreateCursorResponse(1, "ekyc.records", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "a"}}, bson.D{{Key: "_id", Value: "b"}})
		end := mtest.CreateCursorResponse(0, "ekyc.records", mtest.NextBatch)
		mt.AddMockResponses(first, end)
		repo := MongoRepository[record]{Model: mt.Coll}

		limit := int64(10)
		found, err := repo.FindMany(context.Background(), map[string]interface{}{}, &FindOptions{Limit: &limit})
		require.NoError(mt, err)
		assert.Len(mt, *found, 2)
	})
}

func TestMongoRepositoryUnavailable(t *testing.T) {
	repo := MongoRepository[record]{}
	_, err := repo.CreateOne(context.Background(), record{})
	assert.True(t, apperrors.IsCollaboratorUnavailable(err))
	_, err = repo.CountDocs(context.Background(), nil)
	assert.True(t, apperrors.IsCollaboratorUnavailable(err))
}
