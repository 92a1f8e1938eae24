package usecases_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/donamatch/donamatch/internal/core/domain"
)

// --- Mock NGORepository ---

type mockNGORepo struct {
	createFn   func(ctx context.Context, ngo *domain.NGO) error
	getByIDFn  func(ctx context.Context, id int64) (*domain.NGO, error)
	listFn     func(ctx context.Context, offset, limit int) ([]domain.NGO, error)
	snapshotFn func(ctx context.Context) ([]domain.NGO, error)
	updateFn   func(ctx context.Context, ngo *domain.NGO) error
	deleteFn   func(ctx context.Context, id int64) error

	snapshots int
}

func (m *mockNGORepo) Create(ctx context.Context, ngo *domain.NGO) error {
	if m.createFn != nil {
		return m.createFn(ctx, ngo)
	}
	ngo.ID = 1
	return nil
}

func (m *mockNGORepo) CreateBatch(ctx context.Context, ngos []domain.NGO) error { return nil }

func (m *mockNGORepo) GetByID(ctx context.Context, id int64) (*domain.NGO, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockNGORepo) List(ctx context.Context, offset, limit int) ([]domain.NGO, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, nil
}

func (m *mockNGORepo) Snapshot(ctx context.Context) ([]domain.NGO, error) {
	m.snapshots++
	if m.snapshotFn != nil {
		return m.snapshotFn(ctx)
	}
	return nil, nil
}

func (m *mockNGORepo) Update(ctx context.Context, ngo *domain.NGO) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, ngo)
	}
	return nil
}

func (m *mockNGORepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock DonationRepository ---

type mockDonationRepo struct {
	createFn   func(ctx context.Context, d *domain.Donation) error
	getByIDFn  func(ctx context.Context, id int64) (*domain.Donation, error)
	listFn     func(ctx context.Context, status domain.DonationStatus, offset, limit int) ([]domain.Donation, error)
	snapshotFn func(ctx context.Context) ([]domain.Donation, error)
	updateFn   func(ctx context.Context, d *domain.Donation) error
	assignFn   func(ctx context.Context, donationID, ngoID int64) (*domain.Donation, error)
}

func (m *mockDonationRepo) Create(ctx context.Context, d *domain.Donation) error {
	if m.createFn != nil {
		return m.createFn(ctx, d)
	}
	d.ID = 1
	return nil
}

func (m *mockDonationRepo) CreateBatch(ctx context.Context, ds []domain.Donation) error { return nil }

func (m *mockDonationRepo) GetByID(ctx context.Context, id int64) (*domain.Donation, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockDonationRepo) List(ctx context.Context, status domain.DonationStatus, offset, limit int) ([]domain.Donation, error) {
	if m.listFn != nil {
		return m.listFn(ctx, status, offset, limit)
	}
	return nil, nil
}

func (m *mockDonationRepo) Snapshot(ctx context.Context) ([]domain.Donation, error) {
	if m.snapshotFn != nil {
		return m.snapshotFn(ctx)
	}
	return nil, nil
}

func (m *mockDonationRepo) Update(ctx context.Context, d *domain.Donation) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, d)
	}
	return nil
}

func (m *mockDonationRepo) Assign(ctx context.Context, donationID, ngoID int64) (*domain.Donation, error) {
	if m.assignFn != nil {
		return m.assignFn(ctx, donationID, ngoID)
	}
	return nil, domain.ErrNotAssignable
}

// --- In-memory CacheService ---

var errMiss = errors.New("miss")

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

// --- Recording EventPublisher ---

type recordingPublisher struct {
	events []domain.DonationEvent
	ngos   []domain.NGO
	err    error
}

func (p *recordingPublisher) PublishDonationEvent(ctx context.Context, ev *domain.DonationEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *ev)
	return nil
}

func (p *recordingPublisher) PublishNGOUpdated(ctx context.Context, ngo *domain.NGO) error {
	if p.err != nil {
		return p.err
	}
	p.ngos = append(p.ngos, *ngo)
	return nil
}

// --- Fixtures ---

var (
	sanFrancisco = domain.GeoPoint{Lat: 37.7749, Lon: -122.4194}
	soma         = domain.GeoPoint{Lat: 37.7815, Lon: -122.3968}
	oakland      = domain.GeoPoint{Lat: 37.8044, Lon: -122.2711}
	sanJose      = domain.GeoPoint{Lat: 37.3382, Lon: -121.8863}
)

func bayAreaNGOs() []domain.NGO {
	return []domain.NGO{
		{ID: 1, Name: "Clothes For All", Location: soma, IsAvailable: true},
		{ID: 2, Name: "East Bay Relief Center", Location: oakland, IsAvailable: true},
		{ID: 3, Name: "Community Aid South Bay", Location: sanJose, IsAvailable: true},
		{ID: 4, Name: "Closed Pantry", Location: sanFrancisco, IsAvailable: false},
	}
}

func ngoIDs(ngos []domain.NGO) []int64 {
	out := make([]int64, len(ngos))
	for i, n := range ngos {
		out[i] = n.ID
	}
	return out
}
