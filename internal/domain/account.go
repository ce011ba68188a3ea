package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account is a registered shop user. Accounts are created unverified with a
// pending verification token; the token is cleared the moment it is redeemed
// and login is refused until then.
type Account struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Email is stored lowercased and trimmed and is unique.
	Email string `bson:"email" json:"email"`

	// PasswordHash is the bcrypt hash of the password. The plaintext is
	// never persisted or logged.
	PasswordHash string `bson:"password" json:"-"`

	IsVerified bool `bson:"isVerified" json:"isVerified"`

	// VerificationToken is the single-use opt-in token. Present only while
	// the account is unverified; unset once redeemed.
	VerificationToken string `bson:"verificationToken,omitempty" json:"-"`

	IsAdmin bool `bson:"isAdmin,omitempty" json:"isAdmin"`

	Cart []CartItem `bson:"cart" json:"cart"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// CartItem is a line reference in the embedded cart. The cart carries no
// invariants beyond basic shape; checkout happens elsewhere.
type CartItem struct {
	ProductID string `bson:"productId" json:"productId"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

// CanBroadcast reports whether this account may send newsletter broadcasts.
func (a *Account) CanBroadcast() bool {
	return a.IsAdmin
}
