package services

import (
	"context"
	"errors"
	"testing"

	"waste-wizard-backend/internal/database"
	"waste-wizard-backend/internal/models"
)

type binKey struct{ trashcan, bin int }

// memStore mimics the SQL statements of database.BinConfigRepo
type memStore struct {
	rows    map[binKey]models.BinConfig
	failGet map[int]error
	writes  int
}

func newMemStore(rows ...models.BinConfig) *memStore {
	s := &memStore{rows: map[binKey]models.BinConfig{}, failGet: map[int]error{}}
	for _, r := range rows {
		s.rows[binKey{r.Trashcan, r.BinNumber}] = r
	}
	return s
}

func (s *memStore) GetBinConfig(ctx context.Context, trashcan, bin int) (*models.BinConfig, error) {
	if err := s.failGet[bin]; err != nil {
		return nil, err
	}
	row, ok := s.rows[binKey{trashcan, bin}]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *memStore) ListBinConfigs(ctx context.Context, trashcan int) ([]models.BinConfig, error) {
	var out []models.BinConfig
	for k, row := range s.rows {
		if k.trashcan == trashcan {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *memStore) InsertBinConfig(ctx context.Context, cfg *models.BinConfig) error {
	k := binKey{cfg.Trashcan, cfg.BinNumber}
	if _, ok := s.rows[k]; ok {
		return database.ErrBinExists
	}
	s.writes++
	s.rows[k] = *cfg
	return nil
}

func (s *memStore) UpsertBinCapacity(ctx context.Context, cfg *models.BinConfig) error {
	k := binKey{cfg.Trashcan, cfg.BinNumber}
	s.writes++
	if row, ok := s.rows[k]; ok {
		row.Capacity = cfg.Capacity
		s.rows[k] = row
		*cfg = row
		return nil
	}
	s.rows[k] = *cfg
	return nil
}

func (s *memStore) UpsertBinConfig(ctx context.Context, cfg *models.BinConfig, lockAt float64) (bool, error) {
	k := binKey{cfg.Trashcan, cfg.BinNumber}
	if row, ok := s.rows[k]; ok && row.Capacity >= lockAt {
		return false, nil
	}
	s.writes++
	s.rows[k] = *cfg
	return true, nil
}

func TestApplyBatch(t *testing.T) {
	ctx := context.Background()

	store := newMemStore(
		models.BinConfig{Trashcan: 1, BinNumber: 1, WasteType: "trash", Capacity: 40},
		models.BinConfig{Trashcan: 1, BinNumber: 2, WasteType: "plastic", Capacity: 3},
		models.BinConfig{Trashcan: 1, BinNumber: 3, WasteType: "compost", Capacity: 60},
	)

	results, err := ApplyBatch(ctx, store, 1, []models.BinConfigRequest{
		{BinNumber: 1, WasteType: "glass", Capacity: floatPtr(12)},
		{BinNumber: 2, WasteType: "paper", FillLevel: floatPtr(0)},
		{BinNumber: 3, WasteType: "metal", Capacity: floatPtr(0)},
		{BinNumber: 4, WasteType: "electronics"},
		{BinNumber: 0, WasteType: "paper"},
	})
	if err != nil {
		t.Fatalf("ApplyBatch() error = %v", err)
	}

	wantStatus := []string{
		models.BinStatusApplied,
		models.BinStatusApplied,
		models.BinStatusRejectedLocked,
		models.BinStatusApplied,
		models.BinStatusRejectedInvalid,
	}
	if len(results) != len(wantStatus) {
		t.Fatalf("got %d results, want %d", len(results), len(wantStatus))
	}
	for i, want := range wantStatus {
		if results[i].Status != want {
			t.Errorf("result %d status = %q, want %q (%+v)", i, results[i].Status, want, results[i])
		}
	}

	// bin 1 keeps its waste type, only capacity moves
	if got := store.rows[binKey{1, 1}]; got.WasteType != "trash" || got.Capacity != 12 {
		t.Errorf("bin 1 = %+v, want trash at 12", got)
	}
	if results[0].WasteType != "trash" {
		t.Errorf("bin 1 result waste type = %q, want trash", results[0].WasteType)
	}

	if got := store.rows[binKey{1, 2}]; got.WasteType != "paper" || got.Capacity != 0 {
		t.Errorf("bin 2 = %+v, want paper at 0", got)
	}

	// locked bin untouched and reported with its stored state
	if got := store.rows[binKey{1, 3}]; got.WasteType != "compost" || got.Capacity != 60 {
		t.Errorf("bin 3 = %+v, want compost at 60", got)
	}
	if results[2].WasteType != "compost" || results[2].Capacity != 60 || results[2].Error == "" {
		t.Errorf("locked result = %+v", results[2])
	}

	if got := store.rows[binKey{1, 4}]; got.WasteType != "electronics" {
		t.Errorf("bin 4 = %+v, want electronics", got)
	}

	if store.writes != 3 {
		t.Errorf("writes = %d, want 3", store.writes)
	}
}

func TestApplyBatchFirstBinIgnoresSubmittedType(t *testing.T) {
	tests := []struct {
		name string
		req  models.BinConfigRequest
		want float64
	}{
		{"waste type omitted", models.BinConfigRequest{BinNumber: 1, Capacity: floatPtr(10)}, 10},
		{"unknown waste type", models.BinConfigRequest{BinNumber: 1, WasteType: "uranium", FillLevel: floatPtr(7)}, 7},
		{"nothing but the bin", models.BinConfigRequest{BinNumber: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(models.BinConfig{Trashcan: 1, BinNumber: 1, WasteType: "trash", Capacity: 3})

			results, err := ApplyBatch(context.Background(), store, 1, []models.BinConfigRequest{tt.req})
			if err != nil {
				t.Fatalf("ApplyBatch() error = %v", err)
			}
			if results[0].Status != models.BinStatusApplied || results[0].WasteType != "trash" {
				t.Errorf("result = %+v, want applied as trash", results[0])
			}
			if got := store.rows[binKey{1, 1}]; got.WasteType != "trash" || got.Capacity != tt.want {
				t.Errorf("bin 1 = %+v, want trash at %v", got, tt.want)
			}
		})
	}
}

func TestApplyBatchNewFirstBinNeedsWasteType(t *testing.T) {
	store := newMemStore()

	results, err := ApplyBatch(context.Background(), store, 1, []models.BinConfigRequest{
		{BinNumber: 1, Capacity: floatPtr(10)},
		{BinNumber: 1, WasteType: "uranium"},
		{BinNumber: 1, WasteType: "trash", Capacity: floatPtr(-1)},
	})
	if err != nil {
		t.Fatalf("ApplyBatch() error = %v", err)
	}
	for i, r := range results {
		if r.Status != models.BinStatusRejectedInvalid {
			t.Errorf("result %d = %+v, want rejected-invalid", i, r)
		}
	}
	if store.writes != 0 {
		t.Errorf("writes = %d, want 0", store.writes)
	}
}

func TestApplyBatchInsertsFirstBin(t *testing.T) {
	store := newMemStore()

	results, err := ApplyBatch(context.Background(), store, 7, []models.BinConfigRequest{
		{BinNumber: 1, WasteType: "recyclables", Capacity: floatPtr(2.5)},
	})
	if err != nil {
		t.Fatalf("ApplyBatch() error = %v", err)
	}
	if results[0].Status != models.BinStatusApplied {
		t.Fatalf("status = %q, want applied", results[0].Status)
	}
	got := store.rows[binKey{7, 1}]
	if got.WasteType != "recyclables" || got.Capacity != 2.5 || got.Trashcan != 7 {
		t.Errorf("row = %+v", got)
	}
}

func TestApplyBatchLaterElementSeesEarlierWrite(t *testing.T) {
	store := newMemStore()

	results, err := ApplyBatch(context.Background(), store, 1, []models.BinConfigRequest{
		{BinNumber: 2, WasteType: "glass", Capacity: floatPtr(50)},
		{BinNumber: 2, WasteType: "paper", Capacity: floatPtr(0)},
	})
	if err != nil {
		t.Fatalf("ApplyBatch() error = %v", err)
	}
	if results[0].Status != models.BinStatusApplied || results[1].Status != models.BinStatusRejectedLocked {
		t.Errorf("statuses = %q, %q", results[0].Status, results[1].Status)
	}
	if got := store.rows[binKey{1, 2}].WasteType; got != "glass" {
		t.Errorf("waste type = %q, want glass", got)
	}
}

func TestApplyBatchStopsOnStoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	store := newMemStore()
	store.failGet[3] = boom

	results, err := ApplyBatch(context.Background(), store, 1, []models.BinConfigRequest{
		{BinNumber: 2, WasteType: "glass"},
		{BinNumber: 3, WasteType: "paper"},
		{BinNumber: 4, WasteType: "metal"},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Status != models.BinStatusApplied || results[1].Status != models.BinStatusFailed {
		t.Errorf("statuses = %q, %q", results[0].Status, results[1].Status)
	}
	if _, ok := store.rows[binKey{1, 2}]; !ok {
		t.Error("earlier write should stay")
	}
	if _, ok := store.rows[binKey{1, 4}]; ok {
		t.Error("elements after the failure must not be written")
	}
}

func TestApplyBatchConvergesOnInsertRace(t *testing.T) {
	store := &racingStore{memStore: newMemStore()}

	results, err := ApplyBatch(context.Background(), store, 1, []models.BinConfigRequest{
		{BinNumber: 1, WasteType: "trash", Capacity: floatPtr(3)},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if results[0].Status != models.BinStatusApplied {
		t.Errorf("status = %q, want applied", results[0].Status)
	}

	row := store.rows[binKey{1, 1}]
	if row.WasteType != "paper" {
		t.Errorf("waste_type = %q, want the first writer's paper", row.WasteType)
	}
	if row.Capacity != 3 {
		t.Errorf("capacity = %v, want 3", row.Capacity)
	}
}

// racingStore hides existing rows from reads, as if another writer inserted first
type racingStore struct {
	*memStore
}

func (s *racingStore) GetBinConfig(ctx context.Context, trashcan, bin int) (*models.BinConfig, error) {
	s.rows[binKey{trashcan, bin}] = models.BinConfig{Trashcan: trashcan, BinNumber: bin, WasteType: "paper"}
	return nil, nil
}

func TestMarkRolledBack(t *testing.T) {
	results := []models.BinConfigResult{
		{BinNumber: 1, Status: models.BinStatusApplied},
		{BinNumber: 2, Status: models.BinStatusRejectedLocked},
		{BinNumber: 3, Status: models.BinStatusFailed, Error: "boom"},
	}
	markRolledBack(results)

	if results[0].Status != models.BinStatusFailed || results[0].Error != "rolled back" {
		t.Errorf("applied result = %+v", results[0])
	}
	if results[1].Status != models.BinStatusRejectedLocked {
		t.Errorf("rejected result changed: %+v", results[1])
	}
	if results[2].Error != "boom" {
		t.Errorf("failed result changed: %+v", results[2])
	}
}

type recordingAlerter struct {
	bins []int
	err  error
}

func (a *recordingAlerter) SendBinFullAlert(ctx context.Context, trashcan, bin int, wasteType string, capacity float64) error {
	a.bins = append(a.bins, bin)
	return a.err
}

func TestNotifyFullBins(t *testing.T) {
	results := []models.BinConfigResult{
		{BinNumber: 1, Status: models.BinStatusApplied, Capacity: 80},
		{BinNumber: 2, Status: models.BinStatusApplied, Capacity: 79.99},
		{BinNumber: 3, Status: models.BinStatusRejectedLocked, Capacity: 95},
		{BinNumber: 4, Status: models.BinStatusApplied, Capacity: 100},
	}

	alerter := &recordingAlerter{}
	if sent := NotifyFullBins(context.Background(), alerter, 80, 1, results); sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}
	if len(alerter.bins) != 2 || alerter.bins[0] != 1 || alerter.bins[1] != 4 {
		t.Errorf("alerted bins = %v, want [1 4]", alerter.bins)
	}

	failing := &recordingAlerter{err: errors.New("fcm down")}
	if sent := NotifyFullBins(context.Background(), failing, 80, 1, results); sent != 0 {
		t.Errorf("sent with failing alerter = %d, want 0", sent)
	}

	if sent := NotifyFullBins(context.Background(), nil, 80, 1, results); sent != 0 {
		t.Errorf("sent without alerter = %d, want 0", sent)
	}
}
