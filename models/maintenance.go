// models/maintenance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Maintenance is a repair/service record for an asset. It is referenced
// by assetId and removed together with the asset on deletion.
type Maintenance struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssetID     primitive.ObjectID `bson:"assetId" json:"assetId"`
	Type        string             `bson:"type" json:"type"` // "수리", "점검", "업그레이드"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Date        *time.Time         `bson:"date,omitempty" json:"date,omitempty"`
	Cost        float64            `bson:"cost,omitempty" json:"cost,omitempty"`
	Technician  string             `bson:"technician,omitempty" json:"technician,omitempty"`
	Status      string             `bson:"status,omitempty" json:"status,omitempty"` // "예정", "진행중", "완료"
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
