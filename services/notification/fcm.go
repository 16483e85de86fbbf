package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"concierge/config"
	"concierge/database"
	"concierge/utils"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// pushToken maps a principal id to its FCM device token.
type pushToken struct {
	PrincipalID string    `bson:"principal_id"`
	Token       string    `bson:"token"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// FCMNotifier sends pushes through Firebase Cloud Messaging, resolving
// principal ids to device tokens via the push_tokens collection.
type FCMNotifier struct {
	tokens *mongo.Collection
	logger *zap.Logger
}

// NewFCMNotifier builds the production notifier.
func NewFCMNotifier(logger *zap.Logger) *FCMNotifier {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection("push_tokens")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "principal_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logger.Warn("failed to create push token index", zap.Error(err))
	}

	return &FCMNotifier{tokens: coll, logger: logger}
}

// RegisterToken stores or refreshes the device token for a principal.
func (n *FCMNotifier) RegisterToken(ctx context.Context, principalID, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := n.tokens.UpdateOne(ctx,
		bson.M{"principal_id": principalID},
		bson.M{"$set": pushToken{PrincipalID: principalID, Token: token, UpdatedAt: time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to register push token for %s: %w", principalID, err)
	}
	return nil
}

// Send looks up the principal's token and pushes a message. A principal with
// no registered token is not an error worth surfacing: the send is logged
// and dropped, matching the gateway's fire-and-forget contract.
func (n *FCMNotifier) Send(ctx context.Context, principalID, title, body string, data map[string]string) error {
	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rec pushToken
	err := n.tokens.FindOne(lookupCtx, bson.M{"principal_id": principalID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			n.logger.Info("no push token registered, dropping notification",
				zap.String("principalID", principalID), zap.String("title", title))
			return nil
		}
		return fmt.Errorf("failed to look up push token for %s: %w", principalID, err)
	}

	msg := &messaging.Message{
		Token: rec.Token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message to %s: %w", principalID, err)
	}
	return nil
}
