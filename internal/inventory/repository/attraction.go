package repository

import (
	"context"
	"errors"
	"fmt"
	inventoryerrors "parkbook/internal/inventory/errors"
	"parkbook/pkg/config"
	mongotx "parkbook/pkg/db/mongo"
	"parkbook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	AttractionsCollectionName = "Attractions"

	attractionPriceField = "price"
)

type AttractionRepository interface {
	Create(ctx context.Context, a *model.Attraction) error
	FindByID(ctx context.Context, id string) (*model.Attraction, error)
	FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Attraction, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Update(ctx context.Context, id string, a *model.Attraction) error
	Delete(ctx context.Context, id string) error
}

type mongoAttractionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAttractionRepository(cfg *config.Config) AttractionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAttractionRepository{
		cfg:        cfg,
		collection: db.Collection(AttractionsCollectionName),
	}
}

func (r *mongoAttractionRepository) Create(ctx context.Context, a *model.Attraction) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	a.CreatedAt = now
	a.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		return fmt.Errorf("failed to create attraction: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAttractionRepository) FindByID(ctx context.Context, id string) (*model.Attraction, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", inventoryerrors.ErrInvalidID, id)
	}

	var a model.Attraction
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", inventoryerrors.ErrAttractionNotFound, id)
		}
		return nil, fmt.Errorf("failed to find attraction: %w", err)
	}
	return &a, nil
}

func (r *mongoAttractionRepository) FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Attraction, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(buildSort(filter.Sort, attractionPriceField)).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter, attractionPriceField), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find attractions: %w", err)
	}
	defer cursor.Close(ctx)

	var attractions []*model.Attraction
	if err = cursor.All(ctx, &attractions); err != nil {
		return nil, fmt.Errorf("failed to decode attractions: %w", err)
	}
	return attractions, nil
}

func (r *mongoAttractionRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter, attractionPriceField))
	if err != nil {
		return 0, fmt.Errorf("failed to count attractions: %w", err)
	}
	return count, nil
}

func (r *mongoAttractionRepository) Update(ctx context.Context, id string, a *model.Attraction) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", inventoryerrors.ErrInvalidID, id)
	}

	a.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"name":        a.Name,
			"location":    a.Location,
			"open_from":   a.OpenFrom,
			"open_until":  a.OpenUntil,
			"capacity":    a.Capacity,
			"price":       a.Price,
			"description": a.Description,
			"updated_at":  a.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update attraction: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", inventoryerrors.ErrAttractionNotFound, id)
	}
	return nil
}

func (r *mongoAttractionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", inventoryerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete attraction: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", inventoryerrors.ErrAttractionNotFound, id)
	}
	return nil
}
