// handlers/upload_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kiilove/setflow-sub002/utils"
)

// Uploads are capped at 20MB.
const maxUploadSize = 20 << 20

// UploadAssetImage replaces the asset's image.
func UploadAssetImage(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetIDFromPath(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	url, err := assetService.SetImage(ctx, assetID, file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		respondServiceError(w, err, "asset")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}

// AddAssetAttachment uploads a file and appends it to the asset's
// attachment list.
func AddAssetAttachment(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetIDFromPath(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	attachment, err := assetService.AddAttachment(ctx, assetID, file, header.Filename, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		respondServiceError(w, err, "asset")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, attachment)
}

// DeleteAssetAttachment removes one attachment and its blob.
func DeleteAssetAttachment(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetIDFromPath(w, r)
	if !ok {
		return
	}

	attachmentID := mux.Vars(r)["attachmentId"]
	if attachmentID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "attachment id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := assetService.RemoveAttachment(ctx, assetID, attachmentID); err != nil {
		respondServiceError(w, err, "attachment")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "attachment removed"})
}
