package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NicoGleichmann/shopWebsite/internal/database"
	"github.com/NicoGleichmann/shopWebsite/internal/domain"
)

type SubscriberRepository interface {
	Create(ctx context.Context, sub *domain.Subscriber) error
	FindByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	// ReplaceToken swaps the pending token of an unverified subscriber,
	// invalidating the previously issued one.
	ReplaceToken(ctx context.Context, email, token string) error
	ConsumeVerificationToken(ctx context.Context, token string) (*domain.Subscriber, error)
	DeleteByEmail(ctx context.Context, email string) error
	ListVerified(ctx context.Context) ([]domain.Subscriber, error)
}

type MongoSubscriberRepository struct {
	col *mongo.Collection
}

func NewSubscriberRepository(db *mongo.Database) *MongoSubscriberRepository {
	return &MongoSubscriberRepository{col: db.Collection(database.SubscribersCollection)}
}

func (r *MongoSubscriberRepository) Create(ctx context.Context, sub *domain.Subscriber) error {
	res, err := r.col.InsertOne(ctx, sub)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		sub.ID = id
	}
	return nil
}

func (r *MongoSubscriberRepository) FindByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSubscriberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find subscriber by email: %w", err)
	}
	return &sub, nil
}

func (r *MongoSubscriberRepository) ReplaceToken(ctx context.Context, email, token string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email, "isVerified": false},
		bson.M{"$set": bson.M{"verificationToken": token}},
	)
	if err != nil {
		return fmt.Errorf("replace subscriber token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}

func (r *MongoSubscriberRepository) ConsumeVerificationToken(ctx context.Context, token string) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"verificationToken": token},
		bson.M{
			"$set":   bson.M{"isVerified": true},
			"$unset": bson.M{"verificationToken": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrVerificationTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consume subscriber token: %w", err)
	}
	return &sub, nil
}

// DeleteByEmail removes a subscriber. Deleting an address that is not
// subscribed is not an error; unsubscribing is idempotent.
func (r *MongoSubscriberRepository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}

func (r *MongoSubscriberRepository) ListVerified(ctx context.Context) ([]domain.Subscriber, error) {
	cur, err := r.col.Find(ctx, bson.M{"isVerified": true})
	if err != nil {
		return nil, fmt.Errorf("list verified subscribers: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var subs []domain.Subscriber
	if err := cur.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode subscribers: %w", err)
	}
	return subs, nil
}
