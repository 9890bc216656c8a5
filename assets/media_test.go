package assets_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kiilove/setflow-sub002/models"
	"github.com/kiilove/setflow-sub002/store"
)

func TestSetImageReplacesPreviousBlob(t *testing.T) {
	svc, _, blobs := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAsset(ctx, &models.Asset{Name: "노트북", Category: "노트북"}, "관리자")
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}

	first, err := svc.SetImage(ctx, created.AssetID, strings.NewReader("v1"), "a.png", "image/png")
	if err != nil {
		t.Fatalf("set image: %v", err)
	}
	second, err := svc.SetImage(ctx, created.AssetID, strings.NewReader("v2"), "b.png", "image/png")
	if err != nil {
		t.Fatalf("replace image: %v", err)
	}
	if first == second {
		t.Fatalf("replacement returned the same url")
	}

	asset := mustGetAsset(t, svc, created.AssetID)
	if asset.Image != second {
		t.Fatalf("asset image is %q, want %q", asset.Image, second)
	}
	if blobs.Len() != 1 {
		t.Fatalf("old image blob not removed, %d blobs stored", blobs.Len())
	}
}

func TestAddAndRemoveAttachment(t *testing.T) {
	svc, _, blobs := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAsset(ctx, &models.Asset{Name: "노트북", Category: "노트북"}, "관리자")
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}

	att, err := svc.AddAttachment(ctx, created.AssetID,
		strings.NewReader("manual"), "manual.pdf", 6, "application/pdf")
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	if att.ID == "" || att.URL == "" {
		t.Fatalf("attachment missing id or url: %+v", att)
	}

	asset := mustGetAsset(t, svc, created.AssetID)
	if len(asset.Attachments) != 1 || asset.Attachments[0].ID != att.ID {
		t.Fatalf("attachment not recorded on asset: %+v", asset.Attachments)
	}
	if blobs.Len() != 1 {
		t.Fatalf("expected 1 blob, got %d", blobs.Len())
	}

	if err := svc.RemoveAttachment(ctx, created.AssetID, att.ID); err != nil {
		t.Fatalf("remove attachment: %v", err)
	}
	asset = mustGetAsset(t, svc, created.AssetID)
	if len(asset.Attachments) != 0 {
		t.Fatalf("attachment record not removed: %+v", asset.Attachments)
	}
	if blobs.Len() != 0 {
		t.Fatalf("attachment blob not removed, %d blobs stored", blobs.Len())
	}
}

func TestRemoveMissingAttachment(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAsset(ctx, &models.Asset{Name: "노트북", Category: "노트북"}, "관리자")
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}

	err = svc.RemoveAttachment(ctx, created.AssetID, "no-such-attachment")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
