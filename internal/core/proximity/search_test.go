package proximity_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/core/proximity"
)

type place struct {
	id    int64
	pos   domain.GeoPoint
	avail bool
}

func (p place) EntityID() int64           { return p.id }
func (p place) Position() domain.GeoPoint { return p.pos }
func (p place) Available() bool           { return p.avail }

var sanFrancisco = domain.NewGeoPoint(37.7749, -122.4194)

func ids(r proximity.Result[place]) []int64 {
	out := make([]int64, 0, r.Len())
	for _, m := range r.Matches {
		out = append(out, m.Entity.id)
	}
	return out
}

func TestSearch_SanFranciscoScenario(t *testing.T) {
	entities := []place{
		{id: 1, pos: domain.NewGeoPoint(37.7815, -122.3968), avail: true},
		{id: 2, pos: domain.NewGeoPoint(37.3382, -121.8863), avail: true},
	}
	for name, idx := range map[string]proximity.Index[place]{
		"scan":  proximity.NewScanIndex(entities),
		"rtree": proximity.NewRTreeIndex(entities),
	} {
		t.Run(name, func(t *testing.T) {
			res, err := proximity.Search(idx, proximity.Query{Center: sanFrancisco, RadiusMeters: 5000})
			require.NoError(t, err)
			require.Equal(t, []int64{1}, ids(res))
			assert.InDelta(t, 2117.49, res.Matches[0].Meters, 0.5)
			assert.Equal(t, res.Matches[0].Meters, res.Matches[0].Distance)
		})
	}
}

func TestSearch_InvalidQuery(t *testing.T) {
	idx := proximity.NewScanIndex([]place{{id: 1, pos: sanFrancisco, avail: true}})
	tests := []struct {
		name  string
		query proximity.Query
	}{
		{"zero radius", proximity.Query{Center: sanFrancisco, RadiusMeters: 0}},
		{"negative radius", proximity.Query{Center: sanFrancisco, RadiusMeters: -5}},
		{"nan radius", proximity.Query{Center: sanFrancisco, RadiusMeters: math.NaN()}},
		{"infinite radius", proximity.Query{Center: sanFrancisco, RadiusMeters: math.Inf(1)}},
		{"latitude out of range", proximity.Query{Center: domain.NewGeoPoint(90.5, 0), RadiusMeters: 10}},
		{"longitude out of range", proximity.Query{Center: domain.NewGeoPoint(0, -180.1), RadiusMeters: 10}},
		{"negative limit", proximity.Query{Center: sanFrancisco, RadiusMeters: 10, Limit: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := proximity.Search(idx, tt.query)
			require.Error(t, err)
			assert.True(t, errors.Is(err, proximity.ErrInvalidQuery), "got %v", err)
		})
	}
}

func TestSearch_EmptyCollection(t *testing.T) {
	res, err := proximity.Search(proximity.NewIndex[place](nil), proximity.Query{Center: sanFrancisco, RadiusMeters: 1000})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
	assert.NotNil(t, res.Matches)
}

func TestSearch_AvailabilityFilter(t *testing.T) {
	// Two entities at the same spot, so they are equidistant from the centre.
	spot := domain.NewGeoPoint(37.7800, -122.4100)
	entities := []place{
		{id: 10, pos: spot, avail: false},
		{id: 11, pos: spot, avail: true},
	}
	idx := proximity.NewScanIndex(entities)
	q := proximity.Query{Center: sanFrancisco, RadiusMeters: 5000}

	q.Availability = proximity.AvailableOnly
	res, err := proximity.Search(idx, q)
	require.NoError(t, err)
	assert.Equal(t, []int64{11}, ids(res))

	q.Availability = proximity.UnavailableOnly
	res, err = proximity.Search(idx, q)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, ids(res))

	q.Availability = proximity.Any
	res, err = proximity.Search(idx, q)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, ids(res))
}

func TestSearch_InclusiveBoundary(t *testing.T) {
	target := domain.NewGeoPoint(37.7815, -122.3968)
	exact := proximity.Distance(sanFrancisco, target)
	idx := proximity.NewRTreeIndex([]place{{id: 1, pos: target, avail: true}})

	res, err := proximity.Search(idx, proximity.Query{Center: sanFrancisco, RadiusMeters: exact})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(res))

	res, err = proximity.Search(idx, proximity.Query{Center: sanFrancisco, RadiusMeters: exact - 0.01})
	require.NoError(t, err)
	assert.Empty(t, ids(res))
}

func TestSearch_OrderingLimitAndUnit(t *testing.T) {
	near := domain.NewGeoPoint(37.7760, -122.4194)
	far := domain.NewGeoPoint(37.7900, -122.4194)
	entities := []place{
		{id: 7, pos: far, avail: true},
		{id: 5, pos: near, avail: true},
		{id: 3, pos: near, avail: true},
		{id: 9, pos: sanFrancisco, avail: true},
	}
	idx := proximity.NewScanIndex(entities)

	res, err := proximity.Search(idx, proximity.Query{Center: sanFrancisco, RadiusMeters: 5000, Unit: proximity.Kilometers})
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 3, 5, 7}, ids(res))
	assert.Equal(t, proximity.Kilometers, res.Unit)
	for _, m := range res.Matches {
		assert.InDelta(t, m.Meters/1000, m.Distance, 1e-12)
	}
	assert.Zero(t, res.Matches[0].Meters)

	res, err = proximity.Search(idx, proximity.Query{Center: sanFrancisco, RadiusMeters: 5000, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 3}, ids(res))
}

func TestAssemble_DoesNotMutateInput(t *testing.T) {
	cands := []proximity.Candidate[place]{
		{Entity: place{id: 2}, Meters: 20},
		{Entity: place{id: 1}, Meters: 10},
	}
	res := proximity.Assemble(cands, 0, proximity.Meters)
	assert.Equal(t, []int64{1, 2}, ids(res))
	assert.Equal(t, int64(2), cands[0].Entity.id)

	empty := proximity.Assemble[place](nil, 5, proximity.Kilometers)
	assert.Equal(t, 0, empty.Len())
}

func randomPlaces(rng *rand.Rand, n int) []place {
	out := make([]place, n)
	for i := range out {
		var lat, lon float64
		switch i % 3 {
		case 0:
			// Bay Area cluster.
			lat = 37.3 + rng.Float64()
			lon = -122.6 + rng.Float64()
		case 1:
			// Straddling the antimeridian.
			lat = rng.Float64()*20 - 10
			lon = 179 + rng.Float64()*2
			if lon > 180 {
				lon -= 360
			}
		default:
			lat = rng.Float64()*180 - 90
			lon = rng.Float64()*360 - 180
		}
		out[i] = place{id: int64(i + 1), pos: domain.NewGeoPoint(lat, lon), avail: rng.Intn(4) != 0}
	}
	return out
}

func TestRTreeIndex_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	entities := randomPlaces(rng, 3000)
	scan := proximity.NewScanIndex(entities)
	tree := proximity.NewRTreeIndex(entities)

	centers := []domain.GeoPoint{
		sanFrancisco,
		domain.NewGeoPoint(0, 179.9),
		domain.NewGeoPoint(5, -179.95),
		domain.NewGeoPoint(89.9, 0),
		domain.NewGeoPoint(-89.5, 120),
	}
	for i := 0; i < 20; i++ {
		centers = append(centers, entities[rng.Intn(len(entities))].pos)
	}
	radii := []float64{100, 5000, 50_000, 250_000, 2_000_000}

	for _, c := range centers {
		for _, r := range radii {
			q := proximity.Query{Center: c, RadiusMeters: r, Availability: proximity.AvailableOnly}
			want, err := proximity.Search(scan, q)
			require.NoError(t, err)
			got, err := proximity.Search(tree, q)
			require.NoError(t, err)
			require.Equalf(t, ids(want), ids(got), "center=%s radius=%v", c, r)

			for i, m := range got.Matches {
				assert.LessOrEqual(t, m.Meters, r+proximity.Epsilon)
				assert.True(t, m.Entity.avail)
				if i > 0 {
					prev := got.Matches[i-1]
					assert.LessOrEqual(t, prev.Meters, m.Meters)
					if prev.Meters == m.Meters {
						assert.Less(t, prev.Entity.id, m.Entity.id)
					}
				}
			}
		}
	}
}

func TestSearch_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	idx := proximity.NewIndex(randomPlaces(rng, 1000))
	q := proximity.Query{Center: sanFrancisco, RadiusMeters: 40_000, Limit: 25, Unit: proximity.Kilometers}

	first, err := proximity.Search(idx, q)
	require.NoError(t, err)
	second, err := proximity.Search(idx, q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNewIndex_PicksImplementation(t *testing.T) {
	small := make([]place, proximity.RTreeThreshold)
	large := make([]place, proximity.RTreeThreshold+1)

	_, isScan := proximity.NewIndex(small).(*proximity.ScanIndex[place])
	assert.True(t, isScan)
	_, isTree := proximity.NewIndex(large).(*proximity.RTreeIndex[place])
	assert.True(t, isTree)
	assert.Equal(t, len(large), proximity.NewIndex(large).Len())
}

func TestDistance_Properties(t *testing.T) {
	a := sanFrancisco
	b := domain.NewGeoPoint(37.3382, -121.8863)
	assert.Zero(t, proximity.Distance(a, a))
	assert.InDelta(t, proximity.Distance(a, b), proximity.Distance(b, a), 1e-9)
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    proximity.Unit
		wantErr bool
	}{
		{"", proximity.Kilometers, false},
		{"km", proximity.Kilometers, false},
		{"M", proximity.Meters, false},
		{"meters", proximity.Meters, false},
		{"miles", proximity.Meters, true},
	}
	for _, tt := range tests {
		got, err := proximity.ParseUnit(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, proximity.ErrInvalidQuery)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
