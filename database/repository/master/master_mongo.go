package masterRepo

import (
	"context"
	"fmt"
	"time"

	"concierge/config"
	"concierge/database"
	"concierge/database/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMasterRepo implements repository.MasterRepository using MongoDB.
type MongoMasterRepo struct {
	coll *mongo.Collection
}

// NewMongoMasterRepo creates a new master repository backed by MongoDB.
func NewMongoMasterRepo() repository.MasterRepository {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection("masters")
	repo := &MongoMasterRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoMasterRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "telegram_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
