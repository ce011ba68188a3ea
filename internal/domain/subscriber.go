package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscriber is a newsletter signup. Structurally an Account minus the
// credentials: same double-opt-in token lifecycle, independent storage. An
// email address may exist as both an Account and a Subscriber.
type Subscriber struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Email string `bson:"email" json:"email"`

	IsVerified bool `bson:"isVerified" json:"isVerified"`

	// VerificationToken is replaced on a repeated signup while unverified;
	// the previous token becomes unredeemable at that point.
	VerificationToken string `bson:"verificationToken,omitempty" json:"-"`

	SubscribedAt time.Time `bson:"subscribedAt" json:"subscribedAt"`
}
