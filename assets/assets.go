// Package assets implements the asset lifecycle engine: CRUD over the
// assets collection, the assignment state machine, the append-only
// history ledger and cascading deletion. Every lifecycle transition runs
// as one atomic multi-document transaction against the document store,
// and every state mutation is paired with exactly one history entry so
// the ledger can always reconstruct an asset's provenance.
package assets

// Collection names owned by the engine.
const (
	CollAssets       = "assets"
	CollAssignments  = "assignments"
	CollAssetHistory = "assetHistory"
	CollMaintenance  = "maintenance"
)
