// assets/repository.go
package assets

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiilove/setflow-sub002/models"
	"github.com/kiilove/setflow-sub002/store"
)

// Repository is pure storage access over the assets collection. No
// business validation happens here; store errors propagate to the caller.
type Repository struct {
	store store.Store
}

func NewRepository(st store.Store) *Repository {
	return &Repository{store: st}
}

func (r *Repository) Get(ctx context.Context, id primitive.ObjectID) (*models.Asset, error) {
	var asset models.Asset
	if err := r.store.Get(ctx, CollAssets, id, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// Update applies a partial field update. The store stamps updatedAt.
func (r *Repository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	return r.store.Update(ctx, CollAssets, id, fields)
}

// ListFilter narrows List results. Zero values mean "any".
type ListFilter struct {
	Status   string
	Category string
}

// List returns assets matching the filter, newest first.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.Asset, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	var assets []models.Asset
	err := r.store.Find(ctx, CollAssets, filter, bson.D{{Key: "createdAt", Value: -1}}, &assets)
	if err != nil {
		return nil, err
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	return assets, nil
}
