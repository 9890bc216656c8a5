package assets_test

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiilove/setflow-sub002/assets"
	"github.com/kiilove/setflow-sub002/models"
	"github.com/kiilove/setflow-sub002/storage"
	"github.com/kiilove/setflow-sub002/store"
)

func newTestService(t *testing.T) (*assets.Service, *store.MemoryStore, *storage.MemoryStorage) {
	t.Helper()
	st := store.NewMemoryStore()
	blobs := storage.NewMemoryStorage()
	return assets.NewService(st, blobs), st, blobs
}

func mustGetAsset(t *testing.T, svc *assets.Service, id primitive.ObjectID) *models.Asset {
	t.Helper()
	asset, err := svc.GetAsset(context.Background(), id)
	if err != nil {
		t.Fatalf("get asset %s: %v", id.Hex(), err)
	}
	return asset
}

func historyCounts(t *testing.T, svc *assets.Service, assetID primitive.ObjectID) map[string]int {
	t.Helper()
	entries, err := svc.GetAssetHistory(context.Background(), assetID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Type]++
	}
	return counts
}

func findEntry(t *testing.T, svc *assets.Service, assetID primitive.ObjectID, historyType string) models.AssetHistory {
	t.Helper()
	entries, err := svc.GetAssetHistory(context.Background(), assetID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	for _, e := range entries {
		if e.Type == historyType {
			return e
		}
	}
	t.Fatalf("no %s entry in ledger of asset %s", historyType, assetID.Hex())
	return models.AssetHistory{}
}

func activeAssignments(t *testing.T, st *store.MemoryStore, assetID primitive.ObjectID) []models.Assignment {
	t.Helper()
	var active []models.Assignment
	err := st.Find(context.Background(), assets.CollAssignments,
		bson.M{"assetId": assetID, "status": models.AssignmentActive}, nil, &active)
	if err != nil {
		t.Fatalf("find active assignments: %v", err)
	}
	return active
}

// assertPointerConsistent checks that the asset points at exactly its
// active assignment, or at nothing when no assignment is active.
func assertPointerConsistent(t *testing.T, svc *assets.Service, st *store.MemoryStore, assetID primitive.ObjectID) {
	t.Helper()
	asset := mustGetAsset(t, svc, assetID)
	active := activeAssignments(t, st, assetID)
	if asset.CurrentAssignmentID == nil {
		if len(active) != 0 {
			t.Fatalf("asset has no current assignment but %d active assignments exist", len(active))
		}
		return
	}
	if len(active) != 1 {
		t.Fatalf("asset points at an assignment but %d active assignments exist", len(active))
	}
	if active[0].ID != *asset.CurrentAssignmentID {
		t.Fatalf("currentAssignmentId %s does not match active assignment %s",
			asset.CurrentAssignmentID.Hex(), active[0].ID.Hex())
	}
}

func TestCreateAsset(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateAsset(ctx, &models.Asset{
		Name:          "맥북 프로 16",
		Category:      "노트북",
		PurchasePrice: 3200000,
		Supplier:      "애플코리아",
	}, "관리자")
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}

	asset := mustGetAsset(t, svc, res.AssetID)
	if asset.Status != models.StatusAvailable {
		t.Fatalf("expected status %s, got %s", models.StatusAvailable, asset.Status)
	}
	if asset.CurrentAssignmentID != nil {
		t.Fatalf("new asset must not reference an assignment")
	}

	counts := historyCounts(t, svc, res.AssetID)
	if counts[models.HistoryTypePurchase] != 1 || len(counts) != 1 {
		t.Fatalf("expected exactly one purchase entry, got %v", counts)
	}
	entry := findEntry(t, svc, res.AssetID, models.HistoryTypePurchase)
	if entry.ID != res.HistoryID {
		t.Fatalf("result history id %s does not match ledger entry %s", res.HistoryID.Hex(), entry.ID.Hex())
	}
	if entry.Details["supplier"] != "애플코리아" {
		t.Fatalf("purchase details missing supplier: %v", entry.Details)
	}
	assertPointerConsistent(t, svc, st, res.AssetID)
}

func TestCreateAssetWithAssignment(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateAssetWithAssignment(ctx,
		&models.Asset{Name: "씽크패드 X1", Category: "노트북"},
		assets.AssignmentRequest{AssignedTo: "김철수", Department: "개발팀", Location: "본사 3층"},
		"관리자")
	if err != nil {
		t.Fatalf("create with assignment: %v", err)
	}

	asset := mustGetAsset(t, svc, res.AssetID)
	if asset.Status != models.StatusInUse {
		t.Fatalf("expected status %s, got %s", models.StatusInUse, asset.Status)
	}
	if asset.CurrentAssignmentID == nil || *asset.CurrentAssignmentID != res.AssignmentID {
		t.Fatalf("asset does not point at the created assignment")
	}
	if asset.AssignedTo != "김철수" || asset.Department != "개발팀" {
		t.Fatalf("holder fields not mirrored: %+v", asset)
	}
	if asset.AssignedDate == nil {
		t.Fatalf("assignedDate not set")
	}

	var assignment models.Assignment
	if err := st.Get(ctx, assets.CollAssignments, res.AssignmentID, &assignment); err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if assignment.Status != models.AssignmentActive {
		t.Fatalf("expected active assignment, got %s", assignment.Status)
	}
	if assignment.AssetID != res.AssetID || assignment.AssignedTo != "김철수" {
		t.Fatalf("assignment fields wrong: %+v", assignment)
	}

	counts := historyCounts(t, svc, res.AssetID)
	if counts[models.HistoryTypePurchase] != 1 || counts[models.HistoryTypeAssign] != 1 {
		t.Fatalf("expected one purchase and one assign entry, got %v", counts)
	}
	assertPointerConsistent(t, svc, st, res.AssetID)
}

func TestAssignAvailableAsset(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAsset(ctx, &models.Asset{Name: "모니터", Category: "주변기기"}, "관리자")
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}

	res, err := svc.AssignAsset(ctx, created.AssetID, nil,
		assets.AssignmentRequest{AssignedTo: "박민수", Department: "디자인팀"}, "관리자")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if res.PreviousAssignmentID != nil {
		t.Fatalf("first assignment must not report a previous assignment")
	}

	counts := historyCounts(t, svc, created.AssetID)
	if counts[models.HistoryTypeReturn] != 0 {
		t.Fatalf("first assignment must not write a return entry, got %v", counts)
	}
	if counts[models.HistoryTypeAssign] != 1 {
		t.Fatalf("expected one assign entry, got %v", counts)
	}
	assertPointerConsistent(t, svc, st, created.AssetID)
}

func TestReassignment(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAssetWithAssignment(ctx,
		&models.Asset{Name: "노트북", Category: "노트북"},
		assets.AssignmentRequest{AssignedTo: "김철수", Department: "개발팀"},
		"관리자")
	if err != nil {
		t.Fatalf("create with assignment: %v", err)
	}

	res, err := svc.AssignAsset(ctx, created.AssetID, nil,
		assets.AssignmentRequest{AssignedTo: "이영희", Department: "기획팀"}, "관리자")
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if res.PreviousAssignmentID == nil || *res.PreviousAssignmentID != created.AssignmentID {
		t.Fatalf("reassignment did not close the previous assignment")
	}

	var prev models.Assignment
	if err := st.Get(ctx, assets.CollAssignments, created.AssignmentID, &prev); err != nil {
		t.Fatalf("get previous assignment: %v", err)
	}
	if prev.Status != models.AssignmentCompleted {
		t.Fatalf("previous assignment not completed: %s", prev.Status)
	}
	if prev.EndDate == nil {
		t.Fatalf("previous assignment has no end date")
	}

	asset := mustGetAsset(t, svc, created.AssetID)
	if asset.AssignedTo != "이영희" || asset.Department != "기획팀" {
		t.Fatalf("holder fields not updated: %+v", asset)
	}
	if asset.CurrentAssignmentID == nil || *asset.CurrentAssignmentID != res.NewAssignmentID {
		t.Fatalf("asset does not point at the new assignment")
	}

	counts := historyCounts(t, svc, created.AssetID)
	if counts[models.HistoryTypeAssign] != 2 || counts[models.HistoryTypeReturn] != 1 {
		t.Fatalf("expected 2 assign + 1 return entries, got %v", counts)
	}

	ret := findEntry(t, svc, created.AssetID, models.HistoryTypeReturn)
	if ret.Details["reassigned"] != true {
		t.Fatalf("return entry not marked as reassignment: %v", ret.Details)
	}
	if ret.Details["newAssignee"] != "이영희" {
		t.Fatalf("return entry missing new assignee: %v", ret.Details)
	}
	assertPointerConsistent(t, svc, st, created.AssetID)
}

func TestReturnAsset(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAssetWithAssignment(ctx,
		&models.Asset{Name: "태블릿", Category: "태블릿"},
		assets.AssignmentRequest{AssignedTo: "김철수", Department: "개발팀"},
		"관리자")
	if err != nil {
		t.Fatalf("create with assignment: %v", err)
	}

	res, err := svc.ReturnAsset(ctx, created.AssetID, nil, "퇴사에 따른 반납", "관리자")
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if res.PreviousAssignmentID == nil || *res.PreviousAssignmentID != created.AssignmentID {
		t.Fatalf("return did not close the active assignment")
	}

	asset := mustGetAsset(t, svc, created.AssetID)
	if asset.Status != models.StatusAvailable {
		t.Fatalf("expected status %s, got %s", models.StatusAvailable, asset.Status)
	}
	if asset.CurrentAssignmentID != nil || asset.AssignedTo != "" || asset.Department != "" {
		t.Fatalf("holder fields not cleared: %+v", asset)
	}

	var prev models.Assignment
	if err := st.Get(ctx, assets.CollAssignments, created.AssignmentID, &prev); err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if prev.Status != models.AssignmentCompleted || prev.ReturnNotes != "퇴사에 따른 반납" {
		t.Fatalf("assignment not closed with notes: %+v", prev)
	}

	ret := findEntry(t, svc, created.AssetID, models.HistoryTypeReturn)
	if ret.Details["returnNotes"] != "퇴사에 따른 반납" {
		t.Fatalf("return entry missing notes: %v", ret.Details)
	}
	assertPointerConsistent(t, svc, st, created.AssetID)
}

func TestReturnUnassignedAsset(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAsset(ctx, &models.Asset{Name: "키보드", Category: "주변기기"}, "관리자")
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}

	res, err := svc.ReturnAsset(ctx, created.AssetID, nil, "", "관리자")
	if err != nil {
		t.Fatalf("return of unassigned asset must succeed: %v", err)
	}
	if res.PreviousAssignmentID != nil {
		t.Fatalf("nothing was assigned, nothing should be closed")
	}

	counts := historyCounts(t, svc, created.AssetID)
	if counts[models.HistoryTypeReturn] != 0 {
		t.Fatalf("no return entry expected, got %v", counts)
	}
	assertPointerConsistent(t, svc, st, created.AssetID)
}

func TestDisposeAssetWithActiveAssignment(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAssetWithAssignment(ctx,
		&models.Asset{Name: "구형 데스크탑", Category: "데스크탑"},
		assets.AssignmentRequest{AssignedTo: "박민수", Department: "총무팀"},
		"관리자")
	if err != nil {
		t.Fatalf("create with assignment: %v", err)
	}

	res, err := svc.DisposeAsset(ctx, created.AssetID, "노후 장비 교체", "관리자")
	if err != nil {
		t.Fatalf("dispose: %v", err)
	}
	if res.PreviousStatus != models.StatusInUse {
		t.Fatalf("expected previous status %s, got %s", models.StatusInUse, res.PreviousStatus)
	}

	asset := mustGetAsset(t, svc, created.AssetID)
	if asset.Status != models.StatusDisposed {
		t.Fatalf("expected status %s, got %s", models.StatusDisposed, asset.Status)
	}
	if asset.CurrentAssignmentID != nil || asset.AssignedTo != "" {
		t.Fatalf("disposal must detach the holder: %+v", asset)
	}

	var prev models.Assignment
	if err := st.Get(ctx, assets.CollAssignments, created.AssignmentID, &prev); err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if prev.Status != models.AssignmentCompleted {
		t.Fatalf("assignment not closed by disposal: %s", prev.Status)
	}
	if prev.ReturnNotes != "자산 폐기에 따른 자동 반납" {
		t.Fatalf("unexpected return notes: %q", prev.ReturnNotes)
	}

	counts := historyCounts(t, svc, created.AssetID)
	if counts[models.HistoryTypeReturn] != 1 || counts[models.HistoryTypeDispose] != 1 {
		t.Fatalf("expected 1 return + 1 dispose entry, got %v", counts)
	}

	ret := findEntry(t, svc, created.AssetID, models.HistoryTypeReturn)
	if ret.Details["automatic"] != true {
		t.Fatalf("auto-return entry not marked automatic: %v", ret.Details)
	}
	disp := findEntry(t, svc, created.AssetID, models.HistoryTypeDispose)
	if disp.Details["reason"] != "노후 장비 교체" {
		t.Fatalf("dispose entry missing reason: %v", disp.Details)
	}
	if disp.Details["previousStatus"] != models.StatusInUse {
		t.Fatalf("dispose entry missing previous status: %v", disp.Details)
	}
	assertPointerConsistent(t, svc, st, created.AssetID)
}

func TestDisposeUnassignedAsset(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAsset(ctx, &models.Asset{Name: "고장난 프린터", Category: "주변기기"}, "관리자")
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}

	res, err := svc.DisposeAsset(ctx, created.AssetID, "수리 불가", "관리자")
	if err != nil {
		t.Fatalf("dispose: %v", err)
	}
	if res.PreviousStatus != models.StatusAvailable {
		t.Fatalf("expected previous status %s, got %s", models.StatusAvailable, res.PreviousStatus)
	}

	counts := historyCounts(t, svc, created.AssetID)
	if counts[models.HistoryTypeReturn] != 0 || counts[models.HistoryTypeDispose] != 1 {
		t.Fatalf("unassigned disposal must write only a dispose entry, got %v", counts)
	}
	assertPointerConsistent(t, svc, st, created.AssetID)
}

func TestAssignMissingAsset(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AssignAsset(context.Background(), primitive.NewObjectID(), nil,
		assets.AssignmentRequest{AssignedTo: "김철수"}, "관리자")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignAtomicityOnCommitFailure(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAssetWithAssignment(ctx,
		&models.Asset{Name: "노트북", Category: "노트북"},
		assets.AssignmentRequest{AssignedTo: "김철수", Department: "개발팀"},
		"관리자")
	if err != nil {
		t.Fatalf("create with assignment: %v", err)
	}
	before := historyCounts(t, svc, created.AssetID)

	boom := errors.New("commit failed")
	st.SetCommitHook(func() error { return boom })
	_, err = svc.AssignAsset(ctx, created.AssetID, nil,
		assets.AssignmentRequest{AssignedTo: "이영희"}, "관리자")
	st.SetCommitHook(nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}

	// Nothing may have changed: same holder, same pointer, same ledger,
	// the old assignment still active, no new assignment document.
	asset := mustGetAsset(t, svc, created.AssetID)
	if asset.AssignedTo != "김철수" {
		t.Fatalf("failed transaction changed the holder: %+v", asset)
	}
	if asset.CurrentAssignmentID == nil || *asset.CurrentAssignmentID != created.AssignmentID {
		t.Fatalf("failed transaction moved the assignment pointer")
	}
	after := historyCounts(t, svc, created.AssetID)
	for typ, n := range after {
		if before[typ] != n {
			t.Fatalf("failed transaction wrote ledger entries: before %v, after %v", before, after)
		}
	}
	var all []models.Assignment
	if err := st.Find(ctx, assets.CollAssignments, bson.M{"assetId": created.AssetID}, nil, &all); err != nil {
		t.Fatalf("find assignments: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("failed transaction left %d assignment documents", len(all))
	}
	assertPointerConsistent(t, svc, st, created.AssetID)
}

func TestTransactionConflictSurfaces(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAsset(ctx, &models.Asset{Name: "모니터", Category: "주변기기"}, "관리자")
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}

	st.SetCommitHook(func() error { return store.ErrTransactionConflict })
	defer st.SetCommitHook(nil)

	_, err = svc.AssignAsset(ctx, created.AssetID, nil,
		assets.AssignmentRequest{AssignedTo: "김철수"}, "관리자")
	if !errors.Is(err, store.ErrTransactionConflict) {
		t.Fatalf("expected ErrTransactionConflict after exhausted retries, got %v", err)
	}
}

// The ledger must balance: over any operation sequence the number of
// assign entries minus return entries is 1 while assigned, 0 otherwise.
func TestLedgerBalancesOverLifecycle(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAssetWithAssignment(ctx,
		&models.Asset{Name: "노트북", Category: "노트북"},
		assets.AssignmentRequest{AssignedTo: "김철수"}, "관리자")
	if err != nil {
		t.Fatalf("create with assignment: %v", err)
	}
	id := created.AssetID

	if _, err := svc.ReturnAsset(ctx, id, nil, "", "관리자"); err != nil {
		t.Fatalf("return: %v", err)
	}
	if _, err := svc.AssignAsset(ctx, id, nil, assets.AssignmentRequest{AssignedTo: "이영희"}, "관리자"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.AssignAsset(ctx, id, nil, assets.AssignmentRequest{AssignedTo: "박민수"}, "관리자"); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if _, err := svc.DisposeAsset(ctx, id, "교체", "관리자"); err != nil {
		t.Fatalf("dispose: %v", err)
	}

	counts := historyCounts(t, svc, id)
	if counts[models.HistoryTypeAssign] != counts[models.HistoryTypeReturn] {
		t.Fatalf("ledger out of balance after full lifecycle: %v", counts)
	}
	if counts[models.HistoryTypePurchase] != 1 || counts[models.HistoryTypeDispose] != 1 {
		t.Fatalf("expected one purchase and one dispose entry, got %v", counts)
	}
	assertPointerConsistent(t, svc, st, id)
}
