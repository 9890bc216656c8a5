// models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AssignmentActive    = "active"
	AssignmentCompleted = "completed"
)

// Assignment is one continuous period during which an asset is held by a
// person/department/location. At most one active assignment exists per
// asset; once completed it is never reopened.
type Assignment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssetID   primitive.ObjectID `bson:"assetId" json:"assetId"`
	AssetName string             `bson:"assetName" json:"assetName"`

	AssignedTo    string `bson:"assignedTo" json:"assignedTo"`
	Department    string `bson:"department,omitempty" json:"department,omitempty"`
	Location      string `bson:"location,omitempty" json:"location,omitempty"`
	ContactNumber string `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	Email         string `bson:"email,omitempty" json:"email,omitempty"`
	Role          string `bson:"role,omitempty" json:"role,omitempty"`
	Notes         string `bson:"notes,omitempty" json:"notes,omitempty"`

	Status      string     `bson:"status" json:"status"` // active, completed
	StartDate   time.Time  `bson:"startDate" json:"startDate"`
	EndDate     *time.Time `bson:"endDate" json:"endDate"`
	ReturnNotes string     `bson:"returnNotes,omitempty" json:"returnNotes,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
