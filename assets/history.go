// assets/history.go
package assets

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiilove/setflow-sub002/models"
	"github.com/kiilove/setflow-sub002/store"
)

// appendHistory stages a ledger entry into the enclosing transaction. It
// never writes standalone: an entry only exists if the state change it
// describes committed. The new entry id is returned so callers can
// reference it in results.
func appendHistory(tx store.Tx, h models.AssetHistory) (primitive.ObjectID, error) {
	h.ID = primitive.NewObjectID()
	if h.Date.IsZero() {
		h.Date = time.Now().UTC()
	}
	if err := tx.Insert(CollAssetHistory, &h); err != nil {
		return primitive.NilObjectID, err
	}
	return h.ID, nil
}

// GetAssetHistory returns the full ledger for an asset, newest first.
func (s *Service) GetAssetHistory(ctx context.Context, assetID primitive.ObjectID) ([]models.AssetHistory, error) {
	var entries []models.AssetHistory
	err := s.store.Find(ctx, CollAssetHistory, bson.M{"assetId": assetID}, bson.D{{Key: "date", Value: -1}}, &entries)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.AssetHistory{}
	}
	return entries, nil
}
