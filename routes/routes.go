package routes

import (
	"github.com/gorilla/mux"

	"github.com/kiilove/setflow-sub002/handlers"
	"github.com/kiilove/setflow-sub002/middleware"
	"github.com/kiilove/setflow-sub002/websocket"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly    = []string{"GET", "OPTIONS"}
	MethodsPostOnly   = []string{"POST", "OPTIONS"}
	MethodsPutOnly    = []string{"PUT", "OPTIONS"}
	MethodsDeleteOnly = []string{"DELETE", "OPTIONS"}
)

// Route grouping constants
const (
	PathAPI    = "/api"
	PathHealth = "/health"
)

func RegisterRoutes(r *mux.Router) {
	// ====================
	// HEALTH CHECK (Public)
	// ====================
	r.HandleFunc(PathHealth, handlers.HealthCheck).Methods(MethodsGetOnly...)

	// ====================
	// AUTHENTICATION (Public)
	// ====================
	r.HandleFunc("/api/auth/login", handlers.Login).Methods(MethodsPostOnly...)

	// ====================
	// REALTIME UPDATES
	// ====================
	r.HandleFunc("/ws", websocket.ServeWS)

	// ====================
	// PROTECTED API ROUTES (Require authentication)
	// ====================
	apiRouter := r.PathPrefix(PathAPI).Subrouter()
	apiRouter.Use(middleware.AuthMiddleware)

	// ====================
	// ASSETS
	// ====================
	apiRouter.HandleFunc("/assets", handlers.ListAssets).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/assets", handlers.CreateAsset).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/assets/bulk-delete", handlers.BulkDeleteAssets).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/assets/{id}", handlers.GetAsset).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/assets/{id}", handlers.UpdateAsset).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/assets/{id}", handlers.DeleteAsset).Methods(MethodsDeleteOnly...)

	// Lifecycle transitions
	apiRouter.HandleFunc("/assets/{id}/assign", handlers.AssignAsset).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/assets/{id}/return", handlers.ReturnAsset).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/assets/{id}/dispose", handlers.DisposeAsset).Methods(MethodsPostOnly...)

	// History ledger
	apiRouter.HandleFunc("/assets/{id}/history", handlers.GetAssetHistory).Methods(MethodsGetOnly...)

	// Maintenance
	apiRouter.HandleFunc("/assets/{id}/maintenance", handlers.ListAssetMaintenance).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/assets/{id}/maintenance", handlers.CreateAssetMaintenance).Methods(MethodsPostOnly...)

	// Media
	apiRouter.HandleFunc("/assets/{id}/image", handlers.UploadAssetImage).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/assets/{id}/attachments", handlers.AddAssetAttachment).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/assets/{id}/attachments/{attachmentId}", handlers.DeleteAssetAttachment).Methods(MethodsDeleteOnly...)
}
