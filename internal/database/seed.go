package database

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NicoGleichmann/shopWebsite/internal/domain"
)

//go:embed seed_products.json
var seedProducts []byte

// SeedProducts upserts the bundled catalog into the products collection,
// keyed by product name so re-running refreshes rather than duplicates.
// Returns the number of products written.
func SeedProducts(ctx context.Context, db *mongo.Database) (int, error) {
	var products []domain.Product
	if err := json.Unmarshal(seedProducts, &products); err != nil {
		return 0, fmt.Errorf("decode seed catalog: %w", err)
	}

	col := db.Collection(ProductsCollection)
	for _, p := range products {
		_, err := col.ReplaceOne(ctx,
			bson.M{"name": p.Name},
			p,
			options.Replace().SetUpsert(true),
		)
		if err != nil {
			return 0, fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
	}
	return len(products), nil
}
