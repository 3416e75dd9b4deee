package mongodb

import (
	"context"
	"fmt"
	"strings"
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

type promoCodeRepository struct {
	collection *mongo.Collection
	cache      *cache.RedisCache
}

func NewPromoCodeRepository(db *database.MongoDB, cache *cache.RedisCache) interfaces.PromoCodeRepository {
	return &promoCodeRepository{
		collection: db.Collection("promo_codes"),
		cache:      cache,
	}
}

func promoCacheKey(code string) string {
	return utils.CachePromoPrefix + code
}

// Basic CRUD operations
func (r *promoCodeRepository) Create(ctx context.Context, promo *models.PromoCode) error {
	promo.ID = primitive.NewObjectID()
	promo.Code = strings.ToUpper(strings.TrimSpace(promo.Code))
	promo.CreatedAt = time.Now()
	promo.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, promo)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("promo code already exists")
		}
		return fmt.Errorf("failed to create promo code: %w", err)
	}

	return nil
}

func (r *promoCodeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&promo)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("promo code")
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}

	return &promo, nil
}

func (r *promoCodeRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var cached models.PromoCode
	if err := r.cache.Get(ctx, promoCacheKey(code), &cached); err == nil {
		return &cached, nil
	}

	var promo models.PromoCode
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&promo)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("promo code")
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}

	_ = r.cache.Set(ctx, promoCacheKey(code), &promo, utils.PromoCacheTTL)

	return &promo, nil
}

func (r *promoCodeRepository) GetByCodes(ctx context.Context, codes []string) ([]*models.PromoCode, error) {
	normalized := make([]string, 0, len(codes))
	for _, code := range codes {
		normalized = append(normalized, strings.ToUpper(strings.TrimSpace(code)))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"code": bson.M{"$in": normalized}})
	if err != nil {
		return nil, fmt.Errorf("failed to get promo codes: %w", err)
	}
	defer cursor.Close(ctx)

	var promos []*models.PromoCode
	for cursor.Next(ctx) {
		var promo models.PromoCode
		if err := cursor.Decode(&promo); err != nil {
			return nil, fmt.Errorf("failed to decode promo code: %w", err)
		}
		promos = append(promos, &promo)
	}

	return promos, nil
}

func (r *promoCodeRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	var updated models.PromoCode
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.NotFound("promo code")
		}
		return fmt.Errorf("failed to update promo code: %w", err)
	}

	// Invalidate so the next read sees the new values.
	_ = r.cache.Delete(ctx, promoCacheKey(updated.Code))

	return nil
}

func (r *promoCodeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	var deleted models.PromoCode
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.NotFound("promo code")
		}
		return fmt.Errorf("failed to delete promo code: %w", err)
	}

	_ = r.cache.Delete(ctx, promoCacheKey(deleted.Code))

	return nil
}

// Listing
func (r *promoCodeRepository) GetActive(ctx context.Context, params *utils.PaginationParams) ([]*models.PromoCode, int64, error) {
	now := time.Now()
	filter := bson.M{
		"is_active":   true,
		"valid_from":  bson.M{"$lte": now},
		"valid_until": bson.M{"$gte": now},
	}
	return r.findPromosWithFilter(ctx, filter, params)
}

func (r *promoCodeRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.PromoCode, int64, error) {
	return r.findPromosWithFilter(ctx, bson.M{}, params)
}

// IncrementUsage is the out-of-transaction variant of the usage bump. It
// matches only while the cap has headroom, so a concurrent redemption past
// the limit surfaces as a conflict instead of overshooting.
func (r *promoCodeRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	var updated models.PromoCode
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"_id":       id,
			"is_active": true,
			"$or": []bson.M{
				{"usage_limit": 0},
				{"$expr": bson.M{"$lt": []interface{}{"$used_count", "$usage_limit"}}},
			},
		},
		bson.M{
			"$inc": bson.M{"used_count": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.Conflict("promo code usage limit reached")
		}
		return fmt.Errorf("failed to increment promo usage: %w", err)
	}

	_ = r.cache.Delete(ctx, promoCacheKey(updated.Code))

	return nil
}

// Helper methods
func (r *promoCodeRepository) findPromosWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.PromoCode, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count promo codes: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find promo codes: %w", err)
	}
	defer cursor.Close(ctx)

	var promos []*models.PromoCode
	for cursor.Next(ctx) {
		var promo models.PromoCode
		if err := cursor.Decode(&promo); err != nil {
			return nil, 0, fmt.Errorf("failed to decode promo code: %w", err)
		}
		promos = append(promos, &promo)
	}

	return promos, total, nil
}
