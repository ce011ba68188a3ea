package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product categories as shown in the storefront.
const (
	CategoryAmbient  = "Ambient Lights"
	CategoryNeon     = "Neon Signs"
	CategoryGamer    = "Gamer Setup"
	CategorySmart    = "Smart Home"
	CategoryPortable = "Portable Gadgets"
)

// Stock levels used for scarcity badges.
const (
	StockHigh   = "high"
	StockMedium = "medium"
	StockLow    = "low"
)

// Product is a catalog entry. The catalog is read-only through the API and
// seeded out of band; images are external URLs.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Price         float64            `bson:"price" json:"price"`
	OriginalPrice float64            `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	Rating        float64            `bson:"rating" json:"rating"`
	Reviews       int                `bson:"reviews" json:"reviews"`
	Category      string             `bson:"category" json:"category"`
	Image         string             `bson:"image" json:"image"`
	IsNew         bool               `bson:"isNew,omitempty" json:"isNew,omitempty"`
	IsBestseller  bool               `bson:"isBestseller,omitempty" json:"isBestseller,omitempty"`
	StockLevel    string             `bson:"stockLevel" json:"stockLevel"`
	AffiliateLink string             `bson:"affiliateLink" json:"affiliateLink"`
	Description   string             `bson:"description" json:"description"`
}
