package mongodb

import (
	"context"
	"fmt"
	"time"

	"courtside/internal/apperrors"
	"courtside/internal/models"
	"courtside/internal/repositories/interfaces"
	"courtside/internal/utils"
	"courtside/pkg/cache"
	"courtside/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type venueRepository struct {
	collection *mongo.Collection
	cache      *cache.RedisCache
}

func NewVenueRepository(db *database.MongoDB, cache *cache.RedisCache) interfaces.VenueRepository {
	return &venueRepository{
		collection: db.Collection("venues"),
		cache:      cache,
	}
}

func venueCacheKey(id primitive.ObjectID) string {
	return utils.CacheVenuePrefix + id.Hex()
}

// Basic CRUD operations
func (r *venueRepository) Create(ctx context.Context, venue *models.Venue) error {
	venue.ID = primitive.NewObjectID()
	venue.CreatedAt = time.Now()
	venue.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, venue)
	if err != nil {
		return fmt.Errorf("failed to create venue: %w", err)
	}

	return nil
}

func (r *venueRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Venue, error) {
	var cached models.Venue
	if err := r.cache.Get(ctx, venueCacheKey(id), &cached); err == nil {
		return &cached, nil
	}

	var venue models.Venue
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&venue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("venue")
		}
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}

	_ = r.cache.Set(ctx, venueCacheKey(id), &venue, utils.VenueCacheTTL)

	return &venue, nil
}

func (r *venueRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update venue: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("venue")
	}

	_ = r.cache.Delete(ctx, venueCacheKey(id))

	return nil
}

func (r *venueRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	// Soft delete keeps historical bookings resolvable.
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete venue: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("venue")
	}

	_ = r.cache.Delete(ctx, venueCacheKey(id))

	return nil
}

// Search and filtering
func (r *venueRepository) GetActive(ctx context.Context, params *utils.PaginationParams) ([]*models.Venue, int64, error) {
	return r.findVenuesWithFilter(ctx, bson.M{"is_active": true}, params)
}

func (r *venueRepository) GetByOwner(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Venue, int64, error) {
	return r.findVenuesWithFilter(ctx, bson.M{"owner_id": ownerID}, params)
}

func (r *venueRepository) GetByCity(ctx context.Context, city string, params *utils.PaginationParams) ([]*models.Venue, int64, error) {
	filter := bson.M{
		"is_active": true,
		"city":      bson.M{"$regex": city, "$options": "i"},
	}
	return r.findVenuesWithFilter(ctx, filter, params)
}

// Helper methods
func (r *venueRepository) findVenuesWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Venue, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count venues: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find venues: %w", err)
	}
	defer cursor.Close(ctx)

	var venues []*models.Venue
	for cursor.Next(ctx) {
		var venue models.Venue
		if err := cursor.Decode(&venue); err != nil {
			return nil, 0, fmt.Errorf("failed to decode venue: %w", err)
		}
		venues = append(venues, &venue)
	}

	return venues, total, nil
}
