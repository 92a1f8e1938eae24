// Package seed generates demo NGOs and donations around the San Francisco
// Bay Area.
package seed

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/donamatch/donamatch/internal/core/domain"
)

// AssignProbability is the chance a generated donation is already assigned
// to one of the seeded NGOs.
const AssignProbability = 0.3

// Donations are scattered up to Spread degrees around Center.
var (
	Center = domain.GeoPoint{Lat: 37.7749, Lon: -122.4194}
	Spread = 0.05
)

var bayAreaNGOs = []domain.NGO{
	{
		Name:        "Food Bank of the Bay",
		Description: "We collect and distribute food to those in need in the Bay Area.",
		Address:     "900 Pennsylvania Ave, San Francisco, CA 94107",
		Location:    domain.GeoPoint{Lat: 37.7749, Lon: -122.4194},
	},
	{
		Name:        "Clothes For All",
		Description: "We provide clothes and essentials to homeless individuals.",
		Address:     "123 Howard St, San Francisco, CA 94105",
		Location:    domain.GeoPoint{Lat: 37.7815, Lon: -122.3968},
	},
	{
		Name:        "East Bay Relief Center",
		Description: "Supporting families in need in the East Bay.",
		Address:     "2000 Broadway, Oakland, CA 94612",
		Location:    domain.GeoPoint{Lat: 37.8044, Lon: -122.2711},
	},
	{
		Name:        "Community Aid South Bay",
		Description: "Community-driven support for underprivileged families.",
		Address:     "200 E Santa Clara St, San Jose, CA 95113",
		Location:    domain.GeoPoint{Lat: 37.3382, Lon: -121.8863},
	},
	{
		Name:        "North Bay Support Network",
		Description: "Helping communities in the North Bay with essential supplies.",
		Address:     "1550 4th St, San Rafael, CA 94901",
		Location:    domain.GeoPoint{Lat: 37.9735, Lon: -122.5311},
	},
}

var donorNames = []string{"John Smith", "Maria Garcia", "Alex Johnson", "Sarah Chen", "Michael Brown", "Lisa Kim"}

// Each description carries the type it is filed under.
var offers = []struct {
	description string
	kind        domain.DonationType
}{
	{"Gently used winter clothes for children", domain.DonationClothing},
	{"Non-perishable food items", domain.DonationFood},
	{"Used furniture in good condition", domain.DonationFurniture},
	{"Books for elementary school children", domain.DonationBooks},
	{"Toys for toddlers", domain.DonationToys},
	{"Medical supplies and first aid kits", domain.DonationOther},
}

// slug lowercases s and keeps only letters and digits.
func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NGOs returns the demo NGOs, available and with stable unique emails so a
// second run collides instead of duplicating them.
func NGOs() []domain.NGO {
	out := make([]domain.NGO, len(bayAreaNGOs))
	for i, n := range bayAreaNGOs {
		n.Email = slug(n.Name) + "@seed.donamatch.org"
		n.IsAvailable = true
		out[i] = n
	}
	return out
}

// Donations generates n donations placed uniformly within Spread degrees of
// Center. With probability AssignProbability each one is assigned to a
// random NGO from ngos; the rest are pending.
func Donations(r *rand.Rand, n int, ngos []domain.NGO) []domain.Donation {
	out := make([]domain.Donation, 0, n)
	for range n {
		offer := offers[r.IntN(len(offers))]
		donor := donorNames[r.IntN(len(donorNames))]
		d := domain.Donation{
			Title:       offer.description,
			Description: offer.description,
			Type:        offer.kind,
			DonorName:   donor,
			DonorEmail:  strings.ReplaceAll(strings.ToLower(donor), " ", ".") + "@example.org",
			Address:     fmt.Sprintf("%d Sample St, San Francisco, CA", 100+r.IntN(900)),
			Location: domain.GeoPoint{
				Lat: Center.Lat + (r.Float64()-0.5)*2*Spread,
				Lon: Center.Lon + (r.Float64()-0.5)*2*Spread,
			},
			Status: domain.StatusPending,
		}
		if len(ngos) > 0 && r.Float64() < AssignProbability {
			id := ngos[r.IntN(len(ngos))].ID
			d.NGOID = &id
			d.Status = domain.StatusAssigned
		}
		out = append(out, d)
	}
	return out
}
