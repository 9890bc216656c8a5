// models/asset.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Asset lifecycle statuses. The console UI is Korean, so the stored
// values are the Korean labels the frontend renders directly.
const (
	StatusAvailable       = "사용가능" // available
	StatusInUse           = "사용중"  // in use (has an active assignment)
	StatusUnderRepair     = "수리중"  // under repair
	StatusPendingDisposal = "폐기예정" // pending disposal
	StatusLost            = "분실"   // lost
	StatusDisposed        = "폐기됨"  // disposed (terminal)
)

// Depreciation describes how an asset loses book value over time.
type Depreciation struct {
	Method            string  `bson:"method,omitempty" json:"method,omitempty"` // "정액법" (straight-line) etc.
	UsefulLifeYears   int     `bson:"usefulLifeYears,omitempty" json:"usefulLifeYears,omitempty"`
	ResidualValueType string  `bson:"residualValueType,omitempty" json:"residualValueType,omitempty"` // "percentage" or "fixed"
	ResidualValue     float64 `bson:"residualValue,omitempty" json:"residualValue,omitempty"`
}

// Attachment is a file attached to an asset. The URL points into blob
// storage; the record itself lives inside the asset document.
type Attachment struct {
	ID   string    `bson:"id" json:"id"`
	Name string    `bson:"name" json:"name"`
	Size int64     `bson:"size" json:"size"`
	Type string    `bson:"type" json:"type"`
	URL  string    `bson:"url" json:"url"`
	Date time.Time `bson:"date" json:"date"`
}

type Asset struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Category     string             `bson:"category" json:"category"`
	SerialNumber string             `bson:"serialNumber,omitempty" json:"serialNumber,omitempty"`
	Model        string             `bson:"model,omitempty" json:"model,omitempty"`
	Manufacturer string             `bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`

	Specifications       map[string]string `bson:"specifications,omitempty" json:"specifications,omitempty"`
	CustomSpecifications map[string]string `bson:"customSpecifications,omitempty" json:"customSpecifications,omitempty"`

	PurchaseDate   *time.Time    `bson:"purchaseDate,omitempty" json:"purchaseDate,omitempty"`
	PurchasePrice  float64       `bson:"purchasePrice,omitempty" json:"purchasePrice,omitempty"`
	CurrentValue   float64       `bson:"currentValue,omitempty" json:"currentValue,omitempty"`
	Supplier       string        `bson:"supplier,omitempty" json:"supplier,omitempty"`
	WarrantyExpiry *time.Time    `bson:"warrantyExpiry,omitempty" json:"warrantyExpiry,omitempty"`
	Depreciation   *Depreciation `bson:"depreciation,omitempty" json:"depreciation,omitempty"`

	Status string `bson:"status" json:"status"`

	// CurrentAssignmentID is set iff exactly one assignment for this
	// asset has status "active". The holder fields below are mirrored
	// from that assignment for list views.
	CurrentAssignmentID *primitive.ObjectID `bson:"currentAssignmentId" json:"currentAssignmentId"`
	AssignedTo          string              `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Department          string              `bson:"department,omitempty" json:"department,omitempty"`
	Location            string              `bson:"location,omitempty" json:"location,omitempty"`
	AssignedDate        *time.Time          `bson:"assignedDate,omitempty" json:"assignedDate,omitempty"`

	Image       string       `bson:"image,omitempty" json:"image,omitempty"`
	Attachments []Attachment `bson:"attachments,omitempty" json:"attachments,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
