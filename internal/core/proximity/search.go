package proximity

import (
	"cmp"
	"slices"

	"github.com/donamatch/donamatch/internal/pkg/geospatial"
)

// Candidate is an entity that passed the radius and availability checks.
type Candidate[E Entity] struct {
	Entity E
	Meters float64
}

// Match is one ordered entry of a Result.
type Match[E Entity] struct {
	Entity E
	// Meters is the exact distance from the query centre.
	Meters float64
	// Distance is Meters expressed in Result.Unit.
	Distance float64
}

// Result is the ordered answer to a Query: distance ascending, id ascending
// on ties.
type Result[E Entity] struct {
	Matches []Match[E]
	Unit    Unit
}

// Len returns the number of matches.
func (r Result[E]) Len() int { return len(r.Matches) }

// Entities returns the matched entities in result order.
func (r Result[E]) Entities() []E {
	out := make([]E, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Entity
	}
	return out
}

// Within returns every entity of idx whose distance from q.Center is at most
// q.RadiusMeters and that matches q.Availability. Order is unspecified.
func Within[E Entity](idx Index[E], q Query) ([]Candidate[E], error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	limit := q.RadiusMeters + Epsilon
	boxes := geospatial.BoundingBoxes(q.Center.Lat, q.Center.Lon, limit)

	var out []Candidate[E]
	for _, e := range idx.Candidates(boxes) {
		if !q.Availability.match(e) {
			continue
		}
		d := Distance(q.Center, e.Position())
		if d <= limit {
			out = append(out, Candidate[E]{Entity: e, Meters: d})
		}
	}
	return out, nil
}

// Search runs Within and then Assemble.
func Search[E Entity](idx Index[E], q Query) (Result[E], error) {
	cands, err := Within(idx, q)
	if err != nil {
		return Result[E]{Unit: q.Unit}, err
	}
	return Assemble(cands, q.Limit, q.Unit), nil
}

// Assemble orders candidates by distance then id, keeps at most limit of them
// (0 keeps all) and converts distances to unit. The input is not modified.
func Assemble[E Entity](cands []Candidate[E], limit int, unit Unit) Result[E] {
	sorted := slices.Clone(cands)
	slices.SortFunc(sorted, func(a, b Candidate[E]) int {
		if c := cmp.Compare(a.Meters, b.Meters); c != 0 {
			return c
		}
		return cmp.Compare(a.Entity.EntityID(), b.Entity.EntityID())
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	matches := make([]Match[E], len(sorted))
	for i, c := range sorted {
		matches[i] = Match[E]{Entity: c.Entity, Meters: c.Meters, Distance: unit.Convert(c.Meters)}
	}
	return Result[E]{Matches: matches, Unit: unit}
}
