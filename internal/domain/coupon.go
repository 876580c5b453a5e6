package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RewardCouponPrefix     = "GIFT"
	RewardCouponDiscount   = 10
	RewardCouponLifetime   = 30 * 24 * time.Hour
	RewardThresholdMinor   = 20000
	RewardCouponCodeLength = 6
)

// Coupon is a user-scoped percentage discount. Once IsActive is false it is
// never switched back on.
type Coupon struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Code               string             `bson:"code" json:"code"`
	DiscountPercentage float64            `bson:"discountPercentage" json:"discountPercentage"`
	ExpirationDate     time.Time          `bson:"expirationDate" json:"expirationDate"`
	IsActive           bool               `bson:"isActive" json:"isActive"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Coupon) IsExpired(now time.Time) bool {
	return !c.ExpirationDate.After(now)
}
