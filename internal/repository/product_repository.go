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

type ProductListQuery struct {
	Category string
	Page     PageRequest
}

type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) (PageResult[domain.Product], error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
}

type MongoProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{col: db.Collection(database.ProductsCollection)}
}

func (r *MongoProductRepository) List(ctx context.Context, q ProductListQuery) (PageResult[domain.Product], error) {
	page := normalizePageRequest(q.Page)

	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return PageResult[domain.Product]{}, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64(page.Page-1) * int64(page.PageSize)).
		SetLimit(int64(page.PageSize))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return PageResult[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	items := make([]domain.Product, 0, page.PageSize)
	if err := cur.All(ctx, &items); err != nil {
		return PageResult[domain.Product]{}, fmt.Errorf("decode products: %w", err)
	}

	return PageResult[domain.Product]{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, page.PageSize),
	}, nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return &p, nil
}
