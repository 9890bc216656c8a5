// assets/media.go
package assets

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiilove/setflow-sub002/models"
	"github.com/kiilove/setflow-sub002/store"
)

// blobKey builds a collision-resistant object key under the asset's
// folder, keeping the original extension.
func blobKey(assetID primitive.ObjectID, filename string) string {
	return fmt.Sprintf("assets/%s/%s%s", assetID.Hex(), uuid.NewString(), path.Ext(filename))
}

// SetImage uploads a new image blob and points the asset at it. The
// previous image blob, if any, is deleted best-effort afterwards.
func (s *Service) SetImage(ctx context.Context, assetID primitive.ObjectID, r io.Reader, filename, contentType string) (string, error) {
	asset, err := s.repo.Get(ctx, assetID)
	if err != nil {
		return "", err
	}

	url, err := s.blobs.Upload(ctx, r, blobKey(assetID, filename), contentType)
	if err != nil {
		return "", err
	}

	if err := s.repo.Update(ctx, assetID, bson.M{"image": url}); err != nil {
		return "", err
	}

	if asset.Image != "" {
		if derr := s.blobs.DeleteByURL(ctx, asset.Image); derr != nil {
			log.Printf("delete previous image blob for asset %s: %v", assetID.Hex(), derr)
		}
	}
	return url, nil
}

// AddAttachment uploads a blob and appends its record to the asset's
// attachment list inside a transaction, so the list never references a
// blob that failed to upload.
func (s *Service) AddAttachment(ctx context.Context, assetID primitive.ObjectID, r io.Reader, name string, size int64, contentType string) (*models.Attachment, error) {
	if _, err := s.repo.Get(ctx, assetID); err != nil {
		return nil, err
	}

	url, err := s.blobs.Upload(ctx, r, blobKey(assetID, name), contentType)
	if err != nil {
		return nil, err
	}

	attachment := models.Attachment{
		ID:   uuid.NewString(),
		Name: name,
		Size: size,
		Type: contentType,
		URL:  url,
		Date: time.Now().UTC(),
	}

	err = s.store.RunTransaction(ctx, func(tx store.Tx) error {
		var asset models.Asset
		if err := tx.Get(CollAssets, assetID, &asset); err != nil {
			return err
		}
		return tx.Update(CollAssets, assetID, bson.M{
			"attachments": append(asset.Attachments, attachment),
		})
	})
	if err != nil {
		// The list was never updated; drop the orphaned blob.
		if derr := s.blobs.DeleteByURL(ctx, url); derr != nil {
			log.Printf("delete orphaned attachment blob for asset %s: %v", assetID.Hex(), derr)
		}
		return nil, err
	}
	return &attachment, nil
}

// RemoveAttachment drops the attachment record from the asset, then
// deletes its blob best-effort.
func (s *Service) RemoveAttachment(ctx context.Context, assetID primitive.ObjectID, attachmentID string) error {
	var removedURL string
	err := s.store.RunTransaction(ctx, func(tx store.Tx) error {
		removedURL = ""
		var asset models.Asset
		if err := tx.Get(CollAssets, assetID, &asset); err != nil {
			return err
		}
		kept := make([]models.Attachment, 0, len(asset.Attachments))
		for _, att := range asset.Attachments {
			if att.ID == attachmentID {
				removedURL = att.URL
				continue
			}
			kept = append(kept, att)
		}
		if removedURL == "" {
			return store.ErrNotFound
		}
		return tx.Update(CollAssets, assetID, bson.M{"attachments": kept})
	})
	if err != nil {
		return err
	}

	if derr := s.blobs.DeleteByURL(ctx, removedURL); derr != nil {
		log.Printf("delete attachment blob for asset %s: %v", assetID.Hex(), derr)
	}
	return nil
}
