// assets/service.go
package assets

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiilove/setflow-sub002/models"
	"github.com/kiilove/setflow-sub002/storage"
	"github.com/kiilove/setflow-sub002/store"
)

// Service is the public surface of the lifecycle engine. It holds no
// mutable state; every call is an independent operation whose result is
// its return value.
type Service struct {
	store store.Store
	blobs storage.Storage
	repo  *Repository
}

func NewService(st store.Store, blobs storage.Storage) *Service {
	return &Service{store: st, blobs: blobs, repo: NewRepository(st)}
}

// Repository passthroughs.

func (s *Service) GetAsset(ctx context.Context, id primitive.ObjectID) (*models.Asset, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateAsset(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	return s.repo.Update(ctx, id, fields)
}

func (s *Service) ListAssets(ctx context.Context, f ListFilter) ([]models.Asset, error) {
	return s.repo.List(ctx, f)
}

// CreateAssetResult reports the documents a plain creation produced.
type CreateAssetResult struct {
	AssetID   primitive.ObjectID `json:"assetId"`
	HistoryID primitive.ObjectID `json:"historyId"`
	Asset     *models.Asset      `json:"asset"`
}

// CreateAsset inserts a new unassigned asset and its purchase ledger
// entry in one transaction.
func (s *Service) CreateAsset(ctx context.Context, asset *models.Asset, actor string) (*CreateAssetResult, error) {
	asset.ID = primitive.NewObjectID()
	if asset.Status == "" {
		asset.Status = models.StatusAvailable
	}
	asset.CurrentAssignmentID = nil

	var historyID primitive.ObjectID
	err := s.store.RunTransaction(ctx, func(tx store.Tx) error {
		if err := tx.Insert(CollAssets, asset); err != nil {
			return err
		}
		var err error
		historyID, err = appendHistory(tx, purchaseEntry(asset, actor))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &CreateAssetResult{AssetID: asset.ID, HistoryID: historyID, Asset: asset}, nil
}

func purchaseEntry(asset *models.Asset, actor string) models.AssetHistory {
	details := bson.M{}
	if asset.PurchasePrice > 0 {
		details["purchasePrice"] = asset.PurchasePrice
	}
	if asset.Supplier != "" {
		details["supplier"] = asset.Supplier
	}
	id := asset.ID
	return models.AssetHistory{
		AssetID:             asset.ID,
		AssetName:           asset.Name,
		Type:                models.HistoryTypePurchase,
		Description:         fmt.Sprintf("자산 구매: %s", asset.Name),
		User:                actor,
		Details:             details,
		RelatedDocumentID:   &id,
		RelatedDocumentType: models.RelatedAsset,
	}
}

// DeleteResult reports the outcome of a single-asset deletion.
type DeleteResult struct {
	ID      primitive.ObjectID `json:"id"`
	Success bool               `json:"success"`
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
