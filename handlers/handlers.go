// handlers/handlers.go
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/kiilove/setflow-sub002/assets"
	"github.com/kiilove/setflow-sub002/store"
	"github.com/kiilove/setflow-sub002/utils"
)

const usersCollection = "users"

var (
	assetService *assets.Service
	docStore     store.Store
)

// Init wires the handlers to the lifecycle service and its stores.
func Init(svc *assets.Service, st store.Store) {
	assetService = svc
	docStore = st
}

// actorName returns the display name of the authenticated user for
// history ledger entries.
func actorName(r *http.Request) string {
	name, _ := r.Context().Value("userName").(string)
	return name
}

// respondServiceError maps engine errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error, context string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, context+" not found")
	case errors.Is(err, store.ErrTransactionConflict):
		utils.RespondWithError(w, http.StatusConflict, "operation conflicted with a concurrent change, please retry")
	default:
		log.Printf("%s error: %v", context, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database operation failed")
	}
}
