// handlers/asset_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiilove/setflow-sub002/assets"
	"github.com/kiilove/setflow-sub002/models"
	"github.com/kiilove/setflow-sub002/utils"
	"github.com/kiilove/setflow-sub002/websocket"
)

// ListAssets returns assets, optionally filtered by status/category.
func ListAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := assets.ListFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
	}

	list, err := assetService.ListAssets(ctx, filter)
	if err != nil {
		respondServiceError(w, err, "assets")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

type CreateAssetRequest struct {
	models.Asset
	// Assignment, when present, creates the asset already assigned: the
	// asset, the assignment and both ledger entries commit atomically.
	Assignment *assets.AssignmentRequest `json:"assignment,omitempty"`
}

func CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.Category == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing required fields: name and category")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actor := actorName(r)

	if req.Assignment != nil {
		if req.Assignment.AssignedTo == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "assignment requires assignedTo")
			return
		}
		result, err := assetService.CreateAssetWithAssignment(ctx, &req.Asset, *req.Assignment, actor)
		if err != nil {
			respondServiceError(w, err, "asset")
			return
		}
		websocket.SendAssetCreated(result.AssetID.Hex(), result.Asset, actor)
		utils.RespondWithJSON(w, http.StatusCreated, result)
		return
	}

	result, err := assetService.CreateAsset(ctx, &req.Asset, actor)
	if err != nil {
		respondServiceError(w, err, "asset")
		return
	}
	websocket.SendAssetCreated(result.AssetID.Hex(), result.Asset, actor)
	utils.RespondWithJSON(w, http.StatusCreated, result)
}

func GetAsset(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetIDFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	asset, err := assetService.GetAsset(ctx, assetID)
	if err != nil {
		respondServiceError(w, err, "asset")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

type UpdateAssetRequest struct {
	Name           string            `json:"name,omitempty"`
	Category       string            `json:"category,omitempty"`
	SerialNumber   string            `json:"serialNumber,omitempty"`
	Model          string            `json:"model,omitempty"`
	Manufacturer   string            `json:"manufacturer,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	Supplier       string            `json:"supplier,omitempty"`
	PurchasePrice  *float64          `json:"purchasePrice,omitempty"`
	CurrentValue   *float64          `json:"currentValue,omitempty"`
	Status         string            `json:"status,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
}

func UpdateAsset(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetIDFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	update := bson.M{}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Category != "" {
		update["category"] = req.Category
	}
	if req.SerialNumber != "" {
		update["serialNumber"] = req.SerialNumber
	}
	if req.Model != "" {
		update["model"] = req.Model
	}
	if req.Manufacturer != "" {
		update["manufacturer"] = req.Manufacturer
	}
	if req.Notes != "" {
		update["notes"] = req.Notes
	}
	if req.Supplier != "" {
		update["supplier"] = req.Supplier
	}
	if req.PurchasePrice != nil {
		update["purchasePrice"] = *req.PurchasePrice
	}
	if req.CurrentValue != nil {
		update["currentValue"] = *req.CurrentValue
	}
	if req.Status != "" {
		update["status"] = req.Status
	}
	if req.Specifications != nil {
		update["specifications"] = req.Specifications
	}
	if len(update) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := assetService.UpdateAsset(ctx, assetID, update); err != nil {
		respondServiceError(w, err, "asset")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "asset updated successfully"})
}

type AssignAssetRequest struct {
	CurrentAssignmentID string                   `json:"currentAssignmentId,omitempty"`
	Assignment          assets.AssignmentRequest `json:"assignment"`
}

func AssignAsset(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetIDFromPath(w, r)
	if !ok {
		return
	}

	var req AssignAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Assignment.AssignedTo == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "assignedTo is required")
		return
	}

	prevID, ok := optionalObjectID(w, req.CurrentAssignmentID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actor := actorName(r)
	result, err := assetService.AssignAsset(ctx, assetID, prevID, req.Assignment, actor)
	if err != nil {
		respondServiceError(w, err, "asset")
		return
	}
	websocket.SendAssetAssigned(assetID.Hex(), result, actor)
	utils.RespondWithJSON(w, http.StatusOK, result)
}

type ReturnAssetRequest struct {
	CurrentAssignmentID string `json:"currentAssignmentId,omitempty"`
	ReturnNotes         string `json:"returnNotes,omitempty"`
}

func ReturnAsset(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetIDFromPath(w, r)
	if !ok {
		return
	}

	var req ReturnAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	prevID, ok := optionalObjectID(w, req.CurrentAssignmentID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actor := actorName(r)
	result, err := assetService.ReturnAsset(ctx, assetID, prevID, req.ReturnNotes, actor)
	if err != nil {
		respondServiceError(w, err, "asset")
		return
	}
	websocket.SendAssetReturned(assetID.Hex(), result, actor)
	utils.RespondWithJSON(w, http.StatusOK, result)
}

type DisposeAssetRequest struct {
	Reason string `json:"reason"`
}

func DisposeAsset(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetIDFromPath(w, r)
	if !ok {
		return
	}

	var req DisposeAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actor := actorName(r)
	result, err := assetService.DisposeAsset(ctx, assetID, req.Reason, actor)
	if err != nil {
		respondServiceError(w, err, "asset")
		return
	}
	websocket.SendAssetDisposed(assetID.Hex(), result, actor)
	utils.RespondWithJSON(w, http.StatusOK, result)
}

func DeleteAsset(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetIDFromPath(w, r)
	if !ok {
		return
	}

	// Blob deletions plus the batched cascade can outlast the default
	// request timeout, so allow a little longer here.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	actor := actorName(r)
	result, err := assetService.DeleteAsset(ctx, assetID)
	if err != nil {
		respondServiceError(w, err, "asset")
		return
	}
	websocket.SendAssetDeleted(assetID.Hex(), actor)
	utils.RespondWithJSON(w, http.StatusOK, result)
}

type BulkDeleteRequest struct {
	AssetIDs []string `json:"assetIds"`
}

func BulkDeleteAssets(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(req.AssetIDs) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "no asset IDs provided")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.AssetIDs))
	for _, idStr := range req.AssetIDs {
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid asset id: "+idStr)
			return
		}
		ids = append(ids, id)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	deleted, err := assetService.DeleteMultipleAssets(ctx, ids)
	if err != nil {
		respondServiceError(w, err, "assets")
		return
	}

	actor := actorName(r)
	deletedHex := make([]string, 0, len(deleted))
	for _, id := range deleted {
		deletedHex = append(deletedHex, id.Hex())
		websocket.SendAssetDeleted(id.Hex(), actor)
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"successfulIds": deletedHex})
}

// GetAssetHistory returns the asset's ledger, newest first.
func GetAssetHistory(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetIDFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	entries, err := assetService.GetAssetHistory(ctx, assetID)
	if err != nil {
		respondServiceError(w, err, "asset history")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, entries)
}

// assetIDFromPath parses the {id} path variable; on failure it writes
// the error response and returns false.
func assetIDFromPath(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "asset id required")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid asset id format")
		return primitive.NilObjectID, false
	}
	return id, true
}

func optionalObjectID(w http.ResponseWriter, idStr string) (*primitive.ObjectID, bool) {
	if idStr == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid assignment id format")
		return nil, false
	}
	return &id, true
}
