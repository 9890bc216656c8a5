// websocket/history_updates.go
package websocket

import (
	"encoding/json"
	"log"
	"time"
)

// LifecycleUpdate is a real-time notification about an asset lifecycle
// event, pushed to connected admin consoles.
type LifecycleUpdate struct {
	Type      string      `json:"type"` // ASSET_CREATED, ASSET_ASSIGNED, ASSET_RETURNED, ASSET_DISPOSED, ASSET_DELETED
	AssetID   string      `json:"assetId"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	UserName  string      `json:"userName,omitempty"`
}

// BroadcastLifecycleUpdate sends an update to all connected clients.
func BroadcastLifecycleUpdate(update LifecycleUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Failed to marshal lifecycle update: %v", err)
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for client := range hub.clients {
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(hub.clients, client)
		}
	}
}

// SendAssetCreated broadcasts a new asset creation.
func SendAssetCreated(assetID string, asset interface{}, userName string) {
	BroadcastLifecycleUpdate(LifecycleUpdate{
		Type:      "ASSET_CREATED",
		AssetID:   assetID,
		Data:      asset,
		Timestamp: time.Now(),
		UserName:  userName,
	})
}

// SendAssetAssigned broadcasts an assignment change.
func SendAssetAssigned(assetID string, result interface{}, userName string) {
	BroadcastLifecycleUpdate(LifecycleUpdate{
		Type:      "ASSET_ASSIGNED",
		AssetID:   assetID,
		Data:      result,
		Timestamp: time.Now(),
		UserName:  userName,
	})
}

// SendAssetReturned broadcasts a return.
func SendAssetReturned(assetID string, result interface{}, userName string) {
	BroadcastLifecycleUpdate(LifecycleUpdate{
		Type:      "ASSET_RETURNED",
		AssetID:   assetID,
		Data:      result,
		Timestamp: time.Now(),
		UserName:  userName,
	})
}

// SendAssetDisposed broadcasts a disposal.
func SendAssetDisposed(assetID string, result interface{}, userName string) {
	BroadcastLifecycleUpdate(LifecycleUpdate{
		Type:      "ASSET_DISPOSED",
		AssetID:   assetID,
		Data:      result,
		Timestamp: time.Now(),
		UserName:  userName,
	})
}

// SendAssetDeleted broadcasts a deletion.
func SendAssetDeleted(assetID string, userName string) {
	BroadcastLifecycleUpdate(LifecycleUpdate{
		Type:      "ASSET_DELETED",
		AssetID:   assetID,
		Timestamp: time.Now(),
		UserName:  userName,
	})
}
