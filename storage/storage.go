// Package storage abstracts blob storage for asset images and
// attachments. Blob deletion has no transactional join with the document
// store, so callers treat delete failures as loggable, non-fatal events.
package storage

import (
	"context"
	"io"
)

type Storage interface {
	// Upload stores the blob under key and returns its public URL.
	Upload(ctx context.Context, r io.Reader, key string, contentType string) (string, error)

	// DeleteByURL removes the blob a previous Upload returned the URL
	// for. Deleting an absent blob is not an error.
	DeleteByURL(ctx context.Context, url string) error
}
