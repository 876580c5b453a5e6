package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoCouponRepository struct {
	collection *mongo.Collection
}

func NewMongoCouponRepository(db *mongo.Database) CouponRepository {
	return &mongoCouponRepository{collection: db.Collection(couponsCollection)}
}

func (m *mongoCouponRepository) FindActive(ctx context.Context, userID primitive.ObjectID, code string) (*domain.Coupon, error) {
	return m.findOne(ctx, bson.M{"code": code, "userId": userID, "isActive": true})
}

func (m *mongoCouponRepository) FindActiveForUser(ctx context.Context, userID primitive.ObjectID) (*domain.Coupon, error) {
	return m.findOne(ctx, bson.M{"userId": userID, "isActive": true})
}

func (m *mongoCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	now := time.Now()
	coupon.CreatedAt = now
	coupon.UpdatedAt = now

	result, err := m.collection.InsertOne(ctx, coupon)
	if err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		coupon.ID = id
	}
	return nil
}

func (m *mongoCouponRepository) Deactivate(ctx context.Context, userID primitive.ObjectID, code string) (bool, error) {
	filter := bson.M{"code": code, "userId": userID}
	update := bson.M{
		"$set": bson.M{
			"isActive":  false,
			"updatedAt": time.Now(),
		},
	}

	err := m.collection.FindOneAndUpdate(ctx, filter, update).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to deactivate coupon: %w", err)
	}
	return true, nil
}

func (m *mongoCouponRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	n, err := m.collection.CountDocuments(ctx, bson.M{"code": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check coupon code: %w", err)
	}
	return n > 0, nil
}

func (m *mongoCouponRepository) findOne(ctx context.Context, filter bson.M) (*domain.Coupon, error) {
	var coupon domain.Coupon
	err := m.collection.FindOne(ctx, filter).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return &coupon, nil
}
