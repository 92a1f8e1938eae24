package seed

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donamatch/donamatch/internal/core/domain"
)

func TestNGOs(t *testing.T) {
	ngos := NGOs()
	require.Len(t, ngos, 5)

	emails := map[string]bool{}
	for _, n := range ngos {
		assert.True(t, n.IsAvailable, n.Name)
		assert.True(t, n.Location.Valid(), n.Name)
		assert.False(t, emails[n.Email], "duplicate email %s", n.Email)
		emails[n.Email] = true
	}
	assert.Equal(t, "foodbankofthebay@seed.donamatch.org", ngos[0].Email)
}

func TestDonations_StayNearCenter(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	ds := Donations(r, 200, nil)
	require.Len(t, ds, 200)

	for _, d := range ds {
		assert.LessOrEqual(t, math.Abs(d.Location.Lat-Center.Lat), Spread)
		assert.LessOrEqual(t, math.Abs(d.Location.Lon-Center.Lon), Spread)
		assert.NotEmpty(t, d.Title)
		assert.NotEmpty(t, d.DonorEmail)
		// No NGOs to assign to.
		assert.Equal(t, domain.StatusPending, d.Status)
		assert.Nil(t, d.NGOID)
	}
}

func TestDonations_AssignRate(t *testing.T) {
	ngos := []domain.NGO{{ID: 7}, {ID: 9}}
	r := rand.New(rand.NewPCG(42, 42))
	ds := Donations(r, 2000, ngos)

	assigned := 0
	for _, d := range ds {
		if d.Status == domain.StatusAssigned {
			require.NotNil(t, d.NGOID)
			assert.Contains(t, []int64{7, 9}, *d.NGOID)
			assigned++
		} else {
			assert.Nil(t, d.NGOID)
		}
	}
	rate := float64(assigned) / float64(len(ds))
	assert.InDelta(t, AssignProbability, rate, 0.05)
}

func TestDonations_Deterministic(t *testing.T) {
	a := Donations(rand.New(rand.NewPCG(3, 4)), 10, nil)
	b := Donations(rand.New(rand.NewPCG(3, 4)), 10, nil)
	assert.Equal(t, a, b)
}
