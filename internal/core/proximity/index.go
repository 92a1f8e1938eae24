package proximity

import (
	"github.com/dhconnelly/rtreego"

	"github.com/donamatch/donamatch/internal/pkg/geospatial"
)

// RTreeThreshold is the collection size above which NewIndex builds an R-tree.
const RTreeThreshold = 256

// Index narrows a snapshot to the entities that fall inside any of the boxes.
// Implementations are immutable after construction and safe for concurrent use.
type Index[E Entity] interface {
	Candidates(boxes []geospatial.Box) []E
	Len() int
}

// NewIndex picks a linear scan for small collections and an R-tree otherwise.
func NewIndex[E Entity](entities []E) Index[E] {
	if len(entities) > RTreeThreshold {
		return NewRTreeIndex(entities)
	}
	return NewScanIndex(entities)
}

// ScanIndex returns every entity. Search then computes the exact distance for
// each one, which is the baseline the R-tree must agree with.
type ScanIndex[E Entity] struct {
	entities []E
}

func NewScanIndex[E Entity](entities []E) *ScanIndex[E] {
	cp := make([]E, len(entities))
	copy(cp, entities)
	return &ScanIndex[E]{entities: cp}
}

func (s *ScanIndex[E]) Candidates(_ []geospatial.Box) []E { return s.entities }
func (s *ScanIndex[E]) Len() int                          { return len(s.entities) }

type treeItem[E Entity] struct {
	pos    int
	entity E
	rect   rtreego.Rect
}

func (t *treeItem[E]) Bounds() rtreego.Rect { return t.rect }

// pointTolerance gives stored points a non-degenerate extent in degrees.
const pointTolerance = 1e-12

// RTreeIndex stores entity positions in an R-tree keyed on (lon, lat).
type RTreeIndex[E Entity] struct {
	tree *rtreego.Rtree
	size int
}

func NewRTreeIndex[E Entity](entities []E) *RTreeIndex[E] {
	items := make([]rtreego.Spatial, 0, len(entities))
	for i, e := range entities {
		p := e.Position()
		items = append(items, &treeItem[E]{
			pos:    i,
			entity: e,
			rect:   rtreego.Point{p.Lon, p.Lat}.ToRect(pointTolerance),
		})
	}
	return &RTreeIndex[E]{
		tree: rtreego.NewTree(2, 25, 50, items...),
		size: len(entities),
	}
}

func (r *RTreeIndex[E]) Len() int { return r.size }

// Candidates returns the entities inside any box, in insertion order, each once.
func (r *RTreeIndex[E]) Candidates(boxes []geospatial.Box) []E {
	var hits []*treeItem[E]
	seen := make(map[int]struct{})
	for _, b := range boxes {
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{b.MinLon - pointTolerance, b.MinLat - pointTolerance},
			rtreego.Point{b.MaxLon + pointTolerance, b.MaxLat + pointTolerance},
		)
		if err != nil {
			continue
		}
		for _, s := range r.tree.SearchIntersect(rect) {
			it := s.(*treeItem[E])
			if _, dup := seen[it.pos]; dup {
				continue
			}
			seen[it.pos] = struct{}{}
			hits = append(hits, it)
		}
	}

	out := make([]E, len(hits))
	for i, it := range hits {
		out[i] = it.entity
	}
	return out
}
