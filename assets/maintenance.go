// assets/maintenance.go
package assets

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiilove/setflow-sub002/models"
)

// AddMaintenance records a maintenance entry for an asset. The asset
// must exist; the entry participates in cascading deletion.
func (s *Service) AddMaintenance(ctx context.Context, m *models.Maintenance) (*models.Maintenance, error) {
	if _, err := s.repo.Get(ctx, m.AssetID); err != nil {
		return nil, err
	}
	m.ID = primitive.NewObjectID()
	if err := s.store.Insert(ctx, CollMaintenance, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMaintenance returns an asset's maintenance records, newest first.
func (s *Service) ListMaintenance(ctx context.Context, assetID primitive.ObjectID) ([]models.Maintenance, error) {
	var records []models.Maintenance
	err := s.store.Find(ctx, CollMaintenance, bson.M{"assetId": assetID}, bson.D{{Key: "createdAt", Value: -1}}, &records)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Maintenance{}
	}
	return records, nil
}
