package deviceRepo

import (
	"context"
	"errors"
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

// MongoDeviceRepo implements repository.DeviceRepository using MongoDB.
type MongoDeviceRepo struct {
	coll *mongo.Collection
}

// NewMongoDeviceRepo creates a new device repository backed by MongoDB.
func NewMongoDeviceRepo() repository.DeviceRepository {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection("devices")
	repo := &MongoDeviceRepo{coll: coll}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
	})
	if err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// Create inserts a new device document.
func (r *MongoDeviceRepo) Create(ctx context.Context, device *models.Device) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	device.CreatedAt = time.Now()
	if device.TimeSlots == nil {
		device.TimeSlots = []models.Slot{}
	}

	if _, err := r.coll.InsertOne(ctx, device); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateEntity
		}
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

// GetByID retrieves a device by id.
func (r *MongoDeviceRepo) GetByID(ctx context.Context, id string) (*models.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var device models.Device
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&device)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch device %s: %w", id, err)
	}
	return &device, nil
}

// GetAllActive returns every device that has not been deactivated.
func (r *MongoDeviceRepo) GetAllActive(ctx context.Context) ([]models.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list active devices: %w", err)
	}
	defer cursor.Close(ctx)

	var devices []models.Device
	if err := cursor.All(ctx, &devices); err != nil {
		return nil, fmt.Errorf("failed to decode devices: %w", err)
	}
	return devices, nil
}

// Update replaces the mutable fields of an existing device document.
func (r *MongoDeviceRepo) Update(ctx context.Context, device *models.Device) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": device.ID}, bson.M{"$set": device})
	if err != nil {
		return fmt.Errorf("failed to update device %s: %w", device.ID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
