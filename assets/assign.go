// assets/assign.go
package assets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiilove/setflow-sub002/models"
	"github.com/kiilove/setflow-sub002/store"
)

// Return note stamped on assignments closed automatically by disposal.
const disposalReturnNote = "자산 폐기에 따른 자동 반납"

// AssignmentRequest carries the holder information for a new assignment.
type AssignmentRequest struct {
	AssignedTo    string `json:"assignedTo"`
	Department    string `json:"department,omitempty"`
	Location      string `json:"location,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// CreateWithAssignmentResult reports the documents created atomically by
// CreateAssetWithAssignment.
type CreateWithAssignmentResult struct {
	AssetID      primitive.ObjectID `json:"assetId"`
	AssignmentID primitive.ObjectID `json:"assignmentId"`
	Asset        *models.Asset      `json:"asset"`
	Assignment   *models.Assignment `json:"assignment"`
}

// CreateAssetWithAssignment creates an asset that starts its life already
// assigned. Asset and assignment ids are generated up front so the four
// documents (asset, assignment, purchase entry, assign entry) can
// reference each other inside one transaction.
func (s *Service) CreateAssetWithAssignment(ctx context.Context, asset *models.Asset, req AssignmentRequest, actor string) (*CreateWithAssignmentResult, error) {
	asset.ID = primitive.NewObjectID()
	assignmentID := primitive.NewObjectID()
	now := nowUTC()

	asset.Status = models.StatusInUse
	asset.CurrentAssignmentID = &assignmentID
	asset.AssignedTo = req.AssignedTo
	asset.Department = req.Department
	asset.Location = req.Location
	asset.AssignedDate = &now

	assignment := &models.Assignment{
		ID:            assignmentID,
		AssetID:       asset.ID,
		AssetName:     asset.Name,
		AssignedTo:    req.AssignedTo,
		Department:    req.Department,
		Location:      req.Location,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Role:          req.Role,
		Notes:         req.Notes,
		Status:        models.AssignmentActive,
		StartDate:     now,
	}

	err := s.store.RunTransaction(ctx, func(tx store.Tx) error {
		if err := tx.Insert(CollAssets, asset); err != nil {
			return err
		}
		if err := tx.Insert(CollAssignments, assignment); err != nil {
			return err
		}
		if _, err := appendHistory(tx, purchaseEntry(asset, actor)); err != nil {
			return err
		}
		_, err := appendHistory(tx, assignEntry(asset, assignment, actor))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &CreateWithAssignmentResult{
		AssetID:      asset.ID,
		AssignmentID: assignmentID,
		Asset:        asset,
		Assignment:   assignment,
	}, nil
}

// AssignResult reports a completed assign operation.
type AssignResult struct {
	AssetID              primitive.ObjectID  `json:"assetId"`
	NewAssignmentID      primitive.ObjectID  `json:"newAssignmentId"`
	PreviousAssignmentID *primitive.ObjectID `json:"previousAssignmentId,omitempty"`
	Assignment           *models.Assignment  `json:"assignment"`
}

// AssignAsset assigns an asset to a new holder. If the asset currently
// has an active assignment it is closed first and a return-for-
// reassignment ledger entry is written, then the new assignment opens —
// all in one transaction. The asset's stored currentAssignmentId is the
// ground truth for which assignment to close; prevAssignmentID as
// supplied by the caller is not trusted.
func (s *Service) AssignAsset(ctx context.Context, assetID primitive.ObjectID, prevAssignmentID *primitive.ObjectID, req AssignmentRequest, actor string) (*AssignResult, error) {
	newID := primitive.NewObjectID()
	var closedID *primitive.ObjectID
	var assignment *models.Assignment

	err := s.store.RunTransaction(ctx, func(tx store.Tx) error {
		closedID = nil
		var asset models.Asset
		if err := tx.Get(CollAssets, assetID, &asset); err != nil {
			return err
		}
		now := nowUTC()

		if asset.CurrentAssignmentID != nil {
			prev, err := closeAssignment(tx, *asset.CurrentAssignmentID, now, "")
			if err != nil {
				return err
			}
			if prev != nil {
				entry := returnEntry(&asset, prev, actor)
				entry.Description = fmt.Sprintf("재할당을 위한 반납: %s", prev.AssignedTo)
				entry.Details["reassigned"] = true
				entry.Details["newAssignee"] = req.AssignedTo
				if _, err := appendHistory(tx, entry); err != nil {
					return err
				}
				closedID = &prev.ID
			}
		}

		assignment = &models.Assignment{
			ID:            newID,
			AssetID:       assetID,
			AssetName:     asset.Name,
			AssignedTo:    req.AssignedTo,
			Department:    req.Department,
			Location:      req.Location,
			ContactNumber: req.ContactNumber,
			Email:         req.Email,
			Role:          req.Role,
			Notes:         req.Notes,
			Status:        models.AssignmentActive,
			StartDate:     now,
		}
		if err := tx.Insert(CollAssignments, assignment); err != nil {
			return err
		}
		if _, err := appendHistory(tx, assignEntry(&asset, assignment, actor)); err != nil {
			return err
		}

		return tx.Update(CollAssets, assetID, bson.M{
			"status":              models.StatusInUse,
			"currentAssignmentId": newID,
			"assignedTo":          req.AssignedTo,
			"department":          req.Department,
			"location":            req.Location,
			"assignedDate":        now,
		})
	})
	if err != nil {
		return nil, err
	}
	return &AssignResult{
		AssetID:              assetID,
		NewAssignmentID:      newID,
		PreviousAssignmentID: closedID,
		Assignment:           assignment,
	}, nil
}

// ReturnResult reports a completed return operation.
type ReturnResult struct {
	AssetID              primitive.ObjectID  `json:"assetId"`
	PreviousAssignmentID *primitive.ObjectID `json:"previousAssignmentId,omitempty"`
}

// ReturnAsset closes the asset's active assignment and makes the asset
// available again.
func (s *Service) ReturnAsset(ctx context.Context, assetID primitive.ObjectID, prevAssignmentID *primitive.ObjectID, returnNotes, actor string) (*ReturnResult, error) {
	var closedID *primitive.ObjectID

	err := s.store.RunTransaction(ctx, func(tx store.Tx) error {
		closedID = nil
		var asset models.Asset
		if err := tx.Get(CollAssets, assetID, &asset); err != nil {
			return err
		}
		now := nowUTC()

		if asset.CurrentAssignmentID != nil {
			prev, err := closeAssignment(tx, *asset.CurrentAssignmentID, now, returnNotes)
			if err != nil {
				return err
			}
			if prev != nil {
				entry := returnEntry(&asset, prev, actor)
				if returnNotes != "" {
					entry.Details["returnNotes"] = returnNotes
				}
				if _, err := appendHistory(tx, entry); err != nil {
					return err
				}
				closedID = &prev.ID
			}
		}

		return tx.Update(CollAssets, assetID, clearHolderFields(models.StatusAvailable))
	})
	if err != nil {
		return nil, err
	}
	return &ReturnResult{AssetID: assetID, PreviousAssignmentID: closedID}, nil
}

// DisposeResult reports a completed disposal.
type DisposeResult struct {
	AssetID        primitive.ObjectID `json:"assetId"`
	PreviousStatus string             `json:"previousStatus"`
}

// DisposeAsset retires an asset permanently. An active assignment is
// closed as in ReturnAsset with a system-generated note, then the asset
// moves to the terminal disposed status and a dispose ledger entry
// records the prior status and the supplied reason.
func (s *Service) DisposeAsset(ctx context.Context, assetID primitive.ObjectID, reason, actor string) (*DisposeResult, error) {
	var prevStatus string

	err := s.store.RunTransaction(ctx, func(tx store.Tx) error {
		var asset models.Asset
		if err := tx.Get(CollAssets, assetID, &asset); err != nil {
			return err
		}
		now := nowUTC()
		prevStatus = asset.Status

		if asset.CurrentAssignmentID != nil {
			prev, err := closeAssignment(tx, *asset.CurrentAssignmentID, now, disposalReturnNote)
			if err != nil {
				return err
			}
			if prev != nil {
				entry := returnEntry(&asset, prev, actor)
				entry.Details["automatic"] = true
				entry.Details["returnNotes"] = disposalReturnNote
				if _, err := appendHistory(tx, entry); err != nil {
					return err
				}
			}
		}

		assetRef := assetID
		entry := models.AssetHistory{
			AssetID:             assetID,
			AssetName:           asset.Name,
			Type:                models.HistoryTypeDispose,
			Description:         fmt.Sprintf("자산 폐기: %s", asset.Name),
			User:                actor,
			Details:             bson.M{"reason": reason, "previousStatus": prevStatus},
			RelatedDocumentID:   &assetRef,
			RelatedDocumentType: models.RelatedAsset,
		}
		if _, err := appendHistory(tx, entry); err != nil {
			return err
		}

		return tx.Update(CollAssets, assetID, clearHolderFields(models.StatusDisposed))
	})
	if err != nil {
		return nil, err
	}
	return &DisposeResult{AssetID: assetID, PreviousStatus: prevStatus}, nil
}

// closeAssignment marks an assignment completed. A missing assignment is
// tolerated (nil, nil): a stale pointer must not block the transition.
func closeAssignment(tx store.Tx, id primitive.ObjectID, endDate time.Time, returnNotes string) (*models.Assignment, error) {
	var prev models.Assignment
	if err := tx.Get(CollAssignments, id, &prev); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	fields := bson.M{
		"status":  models.AssignmentCompleted,
		"endDate": endDate,
	}
	if returnNotes != "" {
		fields["returnNotes"] = returnNotes
	}
	if err := tx.Update(CollAssignments, id, fields); err != nil {
		return nil, err
	}
	return &prev, nil
}

func assignEntry(asset *models.Asset, assignment *models.Assignment, actor string) models.AssetHistory {
	id := assignment.ID
	return models.AssetHistory{
		AssetID:   asset.ID,
		AssetName: asset.Name,
		Type:      models.HistoryTypeAssign,
		Description: fmt.Sprintf("자산 할당: %s (%s)",
			assignment.AssignedTo, assignment.Department),
		User: actor,
		Details: bson.M{
			"assignedTo": assignment.AssignedTo,
			"department": assignment.Department,
			"location":   assignment.Location,
		},
		RelatedDocumentID:   &id,
		RelatedDocumentType: models.RelatedAssignment,
	}
}

func returnEntry(asset *models.Asset, prev *models.Assignment, actor string) models.AssetHistory {
	id := prev.ID
	return models.AssetHistory{
		AssetID:     asset.ID,
		AssetName:   asset.Name,
		Type:        models.HistoryTypeReturn,
		Description: fmt.Sprintf("자산 반납: %s", prev.AssignedTo),
		User:        actor,
		Details: bson.M{
			"previousHolder":     prev.AssignedTo,
			"previousDepartment": prev.Department,
		},
		RelatedDocumentID:   &id,
		RelatedDocumentType: models.RelatedAssignment,
	}
}

// clearHolderFields builds the asset update that detaches any holder.
func clearHolderFields(status string) bson.M {
	return bson.M{
		"status":              status,
		"currentAssignmentId": nil,
		"assignedTo":          "",
		"department":          "",
		"location":            "",
		"assignedDate":        nil,
	}
}
