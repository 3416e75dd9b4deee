package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the booking core depends on. The
// venue_id+start_time index backs the overlap query; the unique code index
// backs promo lookups.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	bookingIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "venue_id", Value: 1},
				{Key: "start_time", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}
	if _, err := m.Collection("bookings").Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	promoIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := m.Collection("promo_codes").Indexes().CreateOne(ctx, promoIndex); err != nil {
		return fmt.Errorf("failed to create promo code index: %w", err)
	}

	venueIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "is_active", Value: 1},
			{Key: "city", Value: 1},
		},
	}
	if _, err := m.Collection("venues").Indexes().CreateOne(ctx, venueIndex); err != nil {
		return fmt.Errorf("failed to create venue index: %w", err)
	}

	return nil
}
