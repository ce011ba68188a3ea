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

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error)
	// ConsumeVerificationToken atomically finds the account holding the token,
	// marks it verified and clears the token, returning the updated account.
	// ErrVerificationTokenNotFound when no account holds the token.
	ConsumeVerificationToken(ctx context.Context, token string) (*domain.Account, error)
	ReplaceCart(ctx context.Context, id primitive.ObjectID, items []domain.CartItem) error
}

type MongoAccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{col: db.Collection(database.AccountsCollection)}
}

func (r *MongoAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	res, err := r.col.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert account: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		account.ID = id
	}
	return nil
}

func (r *MongoAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &account, nil
}

func (r *MongoAccountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error) {
	var account domain.Account
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return &account, nil
}

// ConsumeVerificationToken is a single findAndModify so that of N concurrent
// redemption attempts for the same token exactly one observes a match; the
// rest see the already-cleared field and fail.
func (r *MongoAccountRepository) ConsumeVerificationToken(ctx context.Context, token string) (*domain.Account, error) {
	var account domain.Account
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"verificationToken": token},
		bson.M{
			"$set":   bson.M{"isVerified": true},
			"$unset": bson.M{"verificationToken": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrVerificationTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consume verification token: %w", err)
	}
	return &account, nil
}

func (r *MongoAccountRepository) ReplaceCart(ctx context.Context, id primitive.ObjectID, items []domain.CartItem) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"cart": items}},
	)
	if err != nil {
		return fmt.Errorf("replace cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}
