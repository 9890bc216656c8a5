// assets/delete.go
package assets

import (
	"context"
	"log"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiilove/setflow-sub002/models"
	"github.com/kiilove/setflow-sub002/store"
)

// Collections whose documents reference an asset by assetId and must be
// removed with it.
var dependentCollections = []string{CollAssetHistory, CollAssignments, CollMaintenance}

// DeleteAsset removes an asset and everything that references it. Blob
// deletion runs first and is best-effort: a storage failure is logged and
// never blocks removing the database records. The document cascade —
// history, assignments, maintenance and the asset itself — then commits
// as one atomic batch, so either every record disappears or none does.
func (s *Service) DeleteAsset(ctx context.Context, id primitive.ObjectID) (*DeleteResult, error) {
	asset, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.deleteAssetBlobs(ctx, asset)

	ops, err := s.cascadeOps(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.BatchWrite(ctx, ops); err != nil {
		return nil, err
	}
	return &DeleteResult{ID: id, Success: true}, nil
}

// DeleteMultipleAssets deletes several assets. The blob phase for all
// assets runs concurrently up front; each asset's database cascade then
// runs independently so one failure does not block the rest. The ids
// actually removed from the database are returned.
func (s *Service) DeleteMultipleAssets(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	assets := make(map[primitive.ObjectID]*models.Asset, len(ids))
	for _, id := range ids {
		asset, err := s.repo.Get(ctx, id)
		if err != nil {
			log.Printf("bulk delete: fetch asset %s: %v", id.Hex(), err)
			continue
		}
		assets[id] = asset
	}

	var wg sync.WaitGroup
	for _, asset := range assets {
		wg.Add(1)
		go func(a *models.Asset) {
			defer wg.Done()
			s.deleteAssetBlobs(ctx, a)
		}(asset)
	}
	wg.Wait()

	deleted := make([]primitive.ObjectID, 0, len(assets))
	for _, id := range ids {
		if _, ok := assets[id]; !ok {
			continue
		}
		ops, err := s.cascadeOps(ctx, id)
		if err != nil {
			log.Printf("bulk delete: collect dependents of %s: %v", id.Hex(), err)
			continue
		}
		if err := s.store.BatchWrite(ctx, ops); err != nil {
			log.Printf("bulk delete: cascade for %s: %v", id.Hex(), err)
			continue
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}

// deleteAssetBlobs removes the asset's image and attachment blobs. Each
// deletion is attempted independently; failures are logged only.
func (s *Service) deleteAssetBlobs(ctx context.Context, asset *models.Asset) {
	if asset.Image != "" {
		if err := s.blobs.DeleteByURL(ctx, asset.Image); err != nil {
			log.Printf("delete image blob for asset %s: %v", asset.ID.Hex(), err)
		}
	}
	for _, att := range asset.Attachments {
		if att.URL == "" {
			continue
		}
		if err := s.blobs.DeleteByURL(ctx, att.URL); err != nil {
			log.Printf("delete attachment blob %s for asset %s: %v", att.ID, asset.ID.Hex(), err)
		}
	}
}

// cascadeOps stages deletes for every dependent document plus the asset
// document itself.
func (s *Service) cascadeOps(ctx context.Context, assetID primitive.ObjectID) ([]store.WriteOp, error) {
	var ops []store.WriteOp
	for _, coll := range dependentCollections {
		var refs []struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := s.store.Find(ctx, coll, bson.M{"assetId": assetID}, nil, &refs); err != nil {
			return nil, err
		}
		for _, ref := range refs {
			ops = append(ops, store.WriteOp{Type: store.OpDelete, Collection: coll, ID: ref.ID})
		}
	}
	ops = append(ops, store.WriteOp{Type: store.OpDelete, Collection: CollAssets, ID: assetID})
	return ops, nil
}
