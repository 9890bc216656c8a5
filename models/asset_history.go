// models/asset_history.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// History entry types, stored as the Korean labels the UI renders.
const (
	HistoryTypePurchase = "구매" // purchase
	HistoryTypeAssign   = "할당" // assign
	HistoryTypeReturn   = "반납" // return
	HistoryTypeDispose  = "폐기" // dispose
)

// Related document types for AssetHistory.RelatedDocumentType.
const (
	RelatedAsset      = "asset"
	RelatedAssignment = "assignment"
)

// AssetHistory is an append-only ledger entry. Entries are never updated
// or deleted except as a cascade of asset deletion; the ledger for an
// asset, ordered by date, reconstructs its full assignment provenance.
type AssetHistory struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssetID   primitive.ObjectID `bson:"assetId" json:"assetId"`
	AssetName string             `bson:"assetName" json:"assetName"`

	Type        string    `bson:"type" json:"type"` // 구매, 할당, 반납, 폐기
	Date        time.Time `bson:"date" json:"date"`
	Description string    `bson:"description" json:"description"`
	User        string    `bson:"user,omitempty" json:"user,omitempty"`
	Details     bson.M    `bson:"details,omitempty" json:"details,omitempty"`

	RelatedDocumentID   *primitive.ObjectID `bson:"relatedDocumentId,omitempty" json:"relatedDocumentId,omitempty"`
	RelatedDocumentType string              `bson:"relatedDocumentType,omitempty" json:"relatedDocumentType,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
