// handlers/maintenance_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kiilove/setflow-sub002/models"
	"github.com/kiilove/setflow-sub002/utils"
)

// ListAssetMaintenance returns an asset's maintenance records.
func ListAssetMaintenance(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetIDFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	records, err := assetService.ListMaintenance(ctx, assetID)
	if err != nil {
		respondServiceError(w, err, "maintenance")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, records)
}

// CreateAssetMaintenance records a new maintenance entry for an asset.
func CreateAssetMaintenance(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetIDFromPath(w, r)
	if !ok {
		return
	}

	var record models.Maintenance
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if record.Type == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "maintenance type is required")
		return
	}
	record.AssetID = assetID

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	created, err := assetService.AddMaintenance(ctx, &record)
	if err != nil {
		respondServiceError(w, err, "asset")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, created)
}
