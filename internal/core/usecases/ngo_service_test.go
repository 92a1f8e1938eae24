package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/core/proximity"
	"github.com/donamatch/donamatch/internal/core/usecases"
)

func TestNGOService_Create_Defaults(t *testing.T) {
	var stored domain.NGO
	repo := &mockNGORepo{
		createFn: func(ctx context.Context, ngo *domain.NGO) error {
			stored = *ngo
			ngo.ID = 42
			return nil
		},
	}
	svc := usecases.NewNGOService(repo, nil, nil)

	ngo := &domain.NGO{Name: "Food Bank", Location: sanFrancisco, Verified: true}
	if err := svc.Create(context.Background(), ngo); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.IsAvailable || stored.Verified {
		t.Errorf("expected available and unverified, got available=%v verified=%v", stored.IsAvailable, stored.Verified)
	}
	if ngo.ID != 42 {
		t.Errorf("expected id 42, got %d", ngo.ID)
	}
}

func TestNGOService_Create_InvalidLocation(t *testing.T) {
	repo := &mockNGORepo{
		createFn: func(ctx context.Context, ngo *domain.NGO) error {
			t.Fatal("repository should not be called")
			return nil
		},
	}
	svc := usecases.NewNGOService(repo, nil, nil)

	err := svc.Create(context.Background(), &domain.NGO{Name: "x", Location: domain.GeoPoint{Lat: 91, Lon: 0}})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNGOService_Nearby(t *testing.T) {
	repo := &mockNGORepo{
		snapshotFn: func(ctx context.Context) ([]domain.NGO, error) { return bayAreaNGOs(), nil },
	}
	svc := usecases.NewNGOService(repo, nil, nil)

	res, err := svc.Nearby(context.Background(), proximity.Query{
		Center:       sanFrancisco,
		RadiusMeters: 20_000,
		Availability: proximity.AvailableOnly,
		Unit:         proximity.Kilometers,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := ngoIDs(res.Entities())
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected [1 2], got %v", got)
	}
	if res.Unit != proximity.Kilometers {
		t.Errorf("expected km, got %s", res.Unit)
	}
	if d := res.Matches[0].Distance; d < 1.5 || d > 3 {
		t.Errorf("expected SoMa about 2 km away, got %.3f", d)
	}
}

func TestNGOService_Nearby_InvalidQuery(t *testing.T) {
	repo := &mockNGORepo{}
	svc := usecases.NewNGOService(repo, nil, nil)

	for _, q := range []proximity.Query{
		{Center: sanFrancisco, RadiusMeters: 0},
		{Center: sanFrancisco, RadiusMeters: -5},
		{Center: domain.GeoPoint{Lat: 0, Lon: 181}, RadiusMeters: 1000},
	} {
		if _, err := svc.Nearby(context.Background(), q); !errors.Is(err, proximity.ErrInvalidQuery) {
			t.Errorf("query %+v: expected ErrInvalidQuery, got %v", q, err)
		}
	}
	if repo.snapshots != 0 {
		t.Errorf("invalid queries must not read the repository, got %d snapshots", repo.snapshots)
	}
}

func TestNGOService_Nearby_SnapshotError(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &mockNGORepo{
		snapshotFn: func(ctx context.Context) ([]domain.NGO, error) { return nil, boom },
	}
	svc := usecases.NewNGOService(repo, nil, nil)

	_, err := svc.Nearby(context.Background(), proximity.Query{Center: sanFrancisco, RadiusMeters: 1000})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped snapshot error, got %v", err)
	}
}

func TestNGOService_Nearby_CachedUntilWrite(t *testing.T) {
	repo := &mockNGORepo{
		snapshotFn: func(ctx context.Context) ([]domain.NGO, error) { return bayAreaNGOs(), nil },
		getByIDFn: func(ctx context.Context, id int64) (*domain.NGO, error) {
			n := bayAreaNGOs()[0]
			return &n, nil
		},
	}
	cache := newMemCache()
	svc := usecases.NewNGOService(repo, cache, nil)
	q := proximity.Query{Center: sanFrancisco, RadiusMeters: 5000, Availability: proximity.AvailableOnly}
	ctx := context.Background()

	first, err := svc.Nearby(ctx, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Nearby(ctx, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.snapshots != 1 {
		t.Fatalf("expected one snapshot, got %d", repo.snapshots)
	}
	if first.Len() != second.Len() || second.Matches[0].Entity.ID != first.Matches[0].Entity.ID {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}

	name := "Renamed"
	if _, err := svc.Update(ctx, 1, domain.NGOUpdate{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.Nearby(ctx, q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.snapshots != 2 {
		t.Errorf("expected update to invalidate the cache, got %d snapshots", repo.snapshots)
	}
}

func TestNGOService_Nearby_DistinctQueriesNotShared(t *testing.T) {
	repo := &mockNGORepo{
		snapshotFn: func(ctx context.Context) ([]domain.NGO, error) { return bayAreaNGOs()[:1], nil },
	}
	svc := usecases.NewNGOService(repo, newMemCache(), nil)
	ctx := context.Background()
	d := proximity.Distance(sanFrancisco, soma)

	justShort, err := svc.Nearby(ctx, proximity.Query{Center: sanFrancisco, RadiusMeters: d - 0.0004})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if justShort.Len() != 0 {
		t.Fatalf("expected no match short of %.6f m, got %d", d, justShort.Len())
	}
	onBoundary, err := svc.Nearby(ctx, proximity.Query{Center: sanFrancisco, RadiusMeters: d})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if onBoundary.Len() != 1 {
		t.Fatalf("expected the NGO at exactly the radius, got %d matches", onBoundary.Len())
	}

	shifted := domain.GeoPoint{Lat: sanFrancisco.Lat, Lon: sanFrancisco.Lon + 4e-7}
	if _, err := svc.Nearby(ctx, proximity.Query{Center: shifted, RadiusMeters: 5000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := svc.Nearby(ctx, proximity.Query{Center: sanFrancisco, RadiusMeters: 5000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Len() != 1 || res.Matches[0].Meters != d {
		t.Fatalf("expected distance %.6f from the original center, got %+v", d, res.Matches)
	}
	if repo.snapshots != 4 {
		t.Errorf("expected every distinct query to miss the cache, got %d snapshots", repo.snapshots)
	}
}

func TestNGOService_Nearby_TTLZeroDisablesCache(t *testing.T) {
	repo := &mockNGORepo{}
	cache := newMemCache()
	svc := usecases.NewNGOService(repo, cache, nil).WithNearbyTTL(0)
	q := proximity.Query{Center: sanFrancisco, RadiusMeters: 5000}

	for range 3 {
		if _, err := svc.Nearby(context.Background(), q); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if repo.snapshots != 3 || cache.sets != 0 {
		t.Errorf("expected 3 snapshots and no cache writes, got %d and %d", repo.snapshots, cache.sets)
	}
}

func TestNGOService_Update(t *testing.T) {
	var saved domain.NGO
	repo := &mockNGORepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.NGO, error) {
			return &domain.NGO{ID: id, Name: "Old", Location: soma, IsAvailable: true}, nil
		},
		updateFn: func(ctx context.Context, ngo *domain.NGO) error {
			saved = *ngo
			return nil
		},
	}
	pub := &recordingPublisher{}
	svc := usecases.NewNGOService(repo, nil, pub)

	off := false
	got, err := svc.Update(context.Background(), 9, domain.NGOUpdate{IsAvailable: &off, Location: &oakland})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsAvailable || saved.IsAvailable {
		t.Error("expected availability to be cleared")
	}
	if saved.Location != oakland || saved.Name != "Old" {
		t.Errorf("unexpected saved NGO %+v", saved)
	}
	if len(pub.ngos) != 1 || pub.ngos[0].ID != 9 {
		t.Errorf("expected one ngo.updated event, got %+v", pub.ngos)
	}
}

func TestNGOService_Update_InvalidLocation(t *testing.T) {
	svc := usecases.NewNGOService(&mockNGORepo{}, nil, nil)
	bad := domain.GeoPoint{Lat: -100, Lon: 0}
	if _, err := svc.Update(context.Background(), 1, domain.NGOUpdate{Location: &bad}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNGOService_Update_PublishFailureIgnored(t *testing.T) {
	repo := &mockNGORepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.NGO, error) {
			return &domain.NGO{ID: id, Location: soma}, nil
		},
	}
	svc := usecases.NewNGOService(repo, nil, &recordingPublisher{err: errors.New("nats down")})

	name := "New"
	if _, err := svc.Update(context.Background(), 1, domain.NGOUpdate{Name: &name}); err != nil {
		t.Fatalf("publish failures must not fail the update: %v", err)
	}
}

func TestNGOService_GetByID_Cached(t *testing.T) {
	calls := 0
	repo := &mockNGORepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.NGO, error) {
			calls++
			return &domain.NGO{ID: id, Name: "Cached", Location: soma}, nil
		},
	}
	svc := usecases.NewNGOService(repo, newMemCache(), nil)

	for range 2 {
		ngo, err := svc.GetByID(context.Background(), 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ngo.Name != "Cached" || ngo.Location != soma {
			t.Errorf("unexpected ngo %+v", ngo)
		}
	}
	if calls != 1 {
		t.Errorf("expected one repository call, got %d", calls)
	}
}

func TestNGOService_List_ClampsPage(t *testing.T) {
	var gotOffset, gotLimit int
	repo := &mockNGORepo{
		listFn: func(ctx context.Context, offset, limit int) ([]domain.NGO, error) {
			gotOffset, gotLimit = offset, limit
			return nil, nil
		},
	}
	svc := usecases.NewNGOService(repo, nil, nil)

	if _, err := svc.List(context.Background(), -3, 1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOffset != 0 || gotLimit != 50 {
		t.Errorf("expected offset 0 limit 50, got %d %d", gotOffset, gotLimit)
	}
}

func TestNGOService_Delete_NotFound(t *testing.T) {
	repo := &mockNGORepo{
		deleteFn: func(ctx context.Context, id int64) error { return domain.ErrNotFound },
	}
	svc := usecases.NewNGOService(repo, newMemCache(), nil)
	if err := svc.Delete(context.Background(), 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
