// File: database/repository/master/masterMongoCrud.go
package masterRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"concierge/database/repository"
	"concierge/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new master document.
func (r *MongoMasterRepo) Create(ctx context.Context, master *models.Master) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	master.CreatedAt = now
	master.UpdatedAt = now
	if master.TimeSlots == nil {
		master.TimeSlots = []models.Slot{}
	}

	if _, err := r.coll.InsertOne(ctx, master); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateEntity
		}
		return fmt.Errorf("failed to create master: %w", err)
	}
	return nil
}

// GetByTelegramID retrieves a master by its principal id.
func (r *MongoMasterRepo) GetByTelegramID(ctx context.Context, telegramID string) (*models.Master, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var master models.Master
	err := r.coll.FindOne(ctx, bson.M{"telegram_id": telegramID}).Decode(&master)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch master %s: %w", telegramID, err)
	}
	return &master, nil
}

// GetAllActive returns every master that has not been deactivated.
func (r *MongoMasterRepo) GetAllActive(ctx context.Context) ([]models.Master, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list active masters: %w", err)
	}
	defer cursor.Close(ctx)

	var masters []models.Master
	if err := cursor.All(ctx, &masters); err != nil {
		return nil, fmt.Errorf("failed to decode masters: %w", err)
	}
	return masters, nil
}

// Update replaces the mutable fields of an existing master document.
func (r *MongoMasterRepo) Update(ctx context.Context, master *models.Master) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	master.UpdatedAt = time.Now()
	filter := bson.M{"telegram_id": master.TelegramID}
	update := bson.M{"$set": master}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update master %s: %w", master.TelegramID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes a master. The document is kept so historical
// bookings can still resolve the name.
func (r *MongoMasterRepo) Deactivate(ctx context.Context, telegramID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"telegram_id": telegramID}, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate master %s: %w", telegramID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddSlots appends published slots to the master's list.
func (r *MongoMasterRepo) AddSlots(ctx context.Context, telegramID string, slots []models.Slot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"time_slots": bson.M{"$each": slots}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"telegram_id": telegramID}, update)
	if err != nil {
		return fmt.Errorf("failed to add slots for master %s: %w", telegramID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveSlot deletes the slot matching the ref from the master's list.
func (r *MongoMasterRepo) RemoveSlot(ctx context.Context, telegramID string, ref models.SlotRef) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$pull": bson.M{"time_slots": bson.M{"date": ref.Date, "start_time": ref.StartTime}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"telegram_id": telegramID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove slot for master %s: %w", telegramID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
