package locationRepo

import (
	"context"
	"fmt"
	"time"

	"concierge/config"
	"concierge/database"
	"concierge/database/repository"
	"concierge/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLocationRepo implements repository.LocationRepository using MongoDB.
type MongoLocationRepo struct {
	coll *mongo.Collection
}

// NewMongoLocationRepo creates the location repository and seeds the default
// locations on first run. Seeding upserts by name, so restarting never
// overwrites an operator's open/closed changes.
func NewMongoLocationRepo() repository.LocationRepository {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection("locations")
	repo := &MongoLocationRepo{coll: coll}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}

	for _, loc := range models.DefaultLocations() {
		_, err := coll.UpdateOne(ctx,
			bson.M{"name": loc.Name},
			bson.M{"$setOnInsert": loc},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			fmt.Printf("failed to seed location %s: %v\n", loc.Name, err)
		}
	}
	return repo
}

// GetAll returns every location.
func (r *MongoLocationRepo) GetAll(ctx context.Context) ([]models.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer cursor.Close(ctx)

	var locations []models.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode locations: %w", err)
	}
	return locations, nil
}
