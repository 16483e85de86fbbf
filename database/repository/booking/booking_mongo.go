// Package bookingRepo holds the canonical booking collection. The partial
// unique index on the active slot tuple is the atomic admission gate: two
// concurrent creates for the same slot cannot both succeed, whatever the
// callers observed beforehand.
package bookingRepo

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

// MongoBookingRepo implements repository.BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new booking repository backed by MongoDB.
func NewMongoBookingRepo() repository.BookingRepository {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// ensureIndexes creates the id index and the partial unique index that
// enforces at most one active booking per (entity, date, start_time).
func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
		{Keys: bson.D{{Key: "entity_id", Value: 1}}},
		{
			Keys: bson.D{
				{Key: "entity_id", Value: 1},
				{Key: "slot_date", Value: 1},
				{Key: "slot_start_time", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": []string{models.StatusPending, models.StatusConfirmed}},
				}),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
