package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NicoGleichmann/shopWebsite/internal/config"
)

const (
	AccountsCollection    = "users"
	SubscribersCollection = "newslettersubscribers"
	ProductsCollection    = "products"
)

// Open connects to MongoDB and verifies the connection with a ping.
func Open(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the stores rely on: unique identities for
// accounts and subscribers, and unique pending tokens so a token maps to at
// most one record. Token indexes are partial because the field is unset once
// redeemed. Safe to run repeatedly.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	tokenIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "verificationToken", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: "verificationToken", Value: bson.D{{Key: "$exists", Value: true}}}}),
	}

	for _, c := range []string{AccountsCollection, SubscribersCollection} {
		col := db.Collection(c)
		_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			tokenIndex,
		})
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", c, err)
		}
	}

	_, err := db.Collection(ProductsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create indexes on %s: %w", ProductsCollection, err)
	}
	return nil
}
