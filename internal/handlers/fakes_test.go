package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"waste-wizard-backend/internal/database"
	"waste-wizard-backend/internal/models"
	"waste-wizard-backend/internal/services"
)

type fakeConfigurator struct {
	bins    []models.BinConfig
	results []models.BinConfigResult
	err     error

	gotTrashcan int
	gotAtomic   bool
	gotReqs     []models.BinConfigRequest
}

func (f *fakeConfigurator) ListBinConfigs(ctx context.Context, trashcan int) ([]models.BinConfig, error) {
	f.gotTrashcan = trashcan
	return f.bins, nil
}

func (f *fakeConfigurator) ApplyBinConfigs(ctx context.Context, trashcan int, reqs []models.BinConfigRequest, atomic bool) ([]models.BinConfigResult, error) {
	f.gotTrashcan = trashcan
	f.gotAtomic = atomic
	f.gotReqs = reqs
	return f.results, f.err
}

type fakeWasteLog struct {
	mu     sync.Mutex
	items  []models.WasteItem
	nextID int64
	since  *time.Time
	err    error
}

func (f *fakeWasteLog) InsertWasteItem(ctx context.Context, item *models.WasteItem) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	item.ID = f.nextID
	item.Time = time.Now().UTC()
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeWasteLog) ListWasteItems(ctx context.Context, trashcan int, since *time.Time) ([]models.WasteItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = since
	var out []models.WasteItem
	for _, item := range f.items {
		if item.Trashcan != trashcan || (since != nil && item.Time.Before(*since)) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time.Equal(out[j].Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].Time.After(out[j].Time)
	})
	return out, nil
}

type fakeUsers map[string]*models.User

func (f fakeUsers) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := f[username]; ok {
		return u, nil
	}
	return nil, database.ErrUserNotFound
}

type fakeGeocoder struct {
	address string
	err     error
}

func (f *fakeGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*services.Address, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.Address{FormattedAddress: f.address, Lat: lat, Lng: lng}, nil
}

type recordingHub struct {
	messages []interface{}
}

func (h *recordingHub) Broadcast(message interface{}) {
	h.messages = append(h.messages, message)
}
