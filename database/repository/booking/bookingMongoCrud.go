// File: database/repository/booking/bookingMongoCrud.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"concierge/database/repository"
	"concierge/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new booking. The partial unique index rejects the insert
// when an active booking already holds the same slot tuple.
func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateActiveBooking
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by id.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// ListByEntity returns the bookings held against one master or device,
// newest first. This is the query-derived per-entity view.
func (r *MongoBookingRepo) ListByEntity(ctx context.Context, entityID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"entity_id": entityID})
}

// ListByClient returns the bookings made by one client, newest first.
func (r *MongoBookingRepo) ListByClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"client_id": clientID})
}

func (r *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// CountActiveByClientAndEntity counts a client's pending and confirmed
// bookings against one entity, used for the per-master cap.
func (r *MongoBookingRepo) CountActiveByClientAndEntity(ctx context.Context, clientID, entityID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"client_id": clientID,
		"entity_id": entityID,
		"status":    bson.M{"$in": []string{models.StatusPending, models.StatusConfirmed}},
	}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return int(count), nil
}

// FindActiveBySlot returns the active booking holding the given slot tuple,
// or ErrNotFound when the slot is free.
func (r *MongoBookingRepo) FindActiveBySlot(ctx context.Context, entityID string, ref models.SlotRef) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"entity_id":       entityID,
		"slot_date":       ref.Date,
		"slot_start_time": ref.StartTime,
		"status":          bson.M{"$in": []string{models.StatusPending, models.StatusConfirmed}},
	}
	var booking models.Booking
	err := r.coll.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active booking: %w", err)
	}
	return &booking, nil
}

// Transition conditionally moves a booking between statuses. The filter on
// the source status makes the transition atomic: a confirm racing a cancel
// cannot both match.
func (r *MongoBookingRepo) Transition(ctx context.Context, id, from, to, reason string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": to, "updated_at": time.Now()}
	if reason != "" {
		switch to {
		case models.StatusDeclined:
			set["decline_reason"] = reason
		case models.StatusCancelled:
			set["cancel_reason"] = reason
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"id": id, "status": from},
		bson.M{"$set": set},
		opts,
	).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to transition booking %s from %s to %s: %w", id, from, to, err)
	}
	return &booking, nil
}
