// Package scene composes clusters of comment tiles onto nested period cubes
// and owns the slot occupancy and hit-test list of one scene.
package scene

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/slangspace/internal/cluster"
	"github.com/ppiankov/slangspace/internal/model"
	"github.com/ppiankov/slangspace/internal/slot"
	"github.com/ppiankov/slangspace/internal/timeline"
)

// Cluster is one placed group of tiles
type Cluster struct {
	ID          string
	Term        string
	Period      int
	Lease       slot.Lease
	Origin      Vec3 // cube-local
	Basis       Basis
	Spin        float64 // extra in-plane rotation, radians
	Scale       float64
	Arrangement cluster.Arrangement
	Tiles       []*Tile
}

type termEntry struct {
	term      string
	temporary bool
	clusters  []*Cluster
}

// Scene is one independent layout: its cubes, slot occupancy and the list of
// hit-testable tiles. It is not safe for concurrent use.
type Scene struct {
	id        string
	layout    model.LayoutConfig
	palette   Palette
	indexer   *timeline.Indexer
	allocator *slot.Allocator
	splitter  cluster.Splitter
	rng       *rand.Rand
	surface   Surface
	log       *zap.Logger

	hits   []*Tile
	terms  map[string]*termEntry
	order  []string
	cubes  map[int]*Cube
	decoys []Decoy
	pinned string
	nextID int
}

// New creates a scene and lays out its background decoys. A nil surface
// discards draw commands, a nil rng is seeded from the clock and a nil
// logger is replaced by a no-op logger.
func New(cfg *model.Config, surface Surface, rng *rand.Rand, log *zap.Logger) *Scene {
	if surface == nil {
		surface = NopSurface{}
	}
	if rng == nil {
		rng = NewRand(0)
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Scene{
		id:        uuid.NewString(),
		layout:    cfg.Layout,
		palette:   Palette{cfg.Highlight},
		indexer:   timeline.New(cfg.Timeline),
		allocator: slot.NewAllocator(cfg.Layout.SlotGrid, rng),
		splitter:  cluster.NewSplitter(cfg.Layout, rng),
		rng:       rng,
		surface:   surface,
		log:       log,
		terms:     make(map[string]*termEntry),
		cubes:     make(map[int]*Cube),
	}

	s.decoys = s.makeDecoys(cfg.Layout.DecoyCount)
	if len(s.decoys) > 0 {
		surface.AddDecoys(s.decoys)
	}

	return s
}

// ID returns the scene identifier
func (s *Scene) ID() string { return s.id }

// Indexer returns the timeline used for cube layers
func (s *Scene) Indexer() *timeline.Indexer { return s.indexer }

// Allocator exposes slot occupancy
func (s *Scene) Allocator() *slot.Allocator { return s.allocator }

// Palette returns the tile styling rules
func (s *Scene) Palette() Palette { return s.palette }

// HasTerm reports whether term is laid out
func (s *Scene) HasTerm(term string) bool {
	_, ok := s.terms[term]
	return ok
}

// IsTemporary reports whether term is laid out as a preview
func (s *Scene) IsTemporary(term string) bool {
	e, ok := s.terms[term]
	return ok && e.temporary
}

// Terms returns laid-out terms in insertion order
func (s *Scene) Terms() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Clusters returns the clusters of term
func (s *Scene) Clusters(term string) []*Cluster {
	if e, ok := s.terms[term]; ok {
		return e.clusters
	}
	return nil
}

// AddTerm splits, arranges, slots and composes every cluster of st. Terms
// without a name or comments, and terms already present, are skipped. It
// returns the number of clusters built.
func (s *Scene) AddTerm(st model.SlangTerm, temporary bool) int {
	if st.Term == "" || s.HasTerm(st.Term) {
		return 0
	}

	comments := st.Comments()
	if len(comments) == 0 {
		s.log.Debug("skipping term without comments", zap.String("term", st.Term))
		return 0
	}

	entry := &termEntry{term: st.Term, temporary: temporary}
	for _, group := range s.splitter.Split(comments) {
		entry.clusters = append(entry.clusters, s.compose(st.Term, group, temporary))
	}

	s.terms[st.Term] = entry
	s.order = append(s.order, st.Term)

	s.log.Debug("term composed",
		zap.String("term", st.Term),
		zap.Bool("temporary", temporary),
		zap.Int("comments", len(comments)),
		zap.Int("clusters", len(entry.clusters)),
	)

	return len(entry.clusters)
}

// RemoveTerm tears down a term: exclusive slots are released and its tiles
// leave the hit list and the surface. It reports whether the term existed.
func (s *Scene) RemoveTerm(term string) bool {
	entry, ok := s.terms[term]
	if !ok {
		return false
	}

	gone := make(map[*Tile]struct{})
	for _, c := range entry.clusters {
		if c.Lease.Exclusive {
			s.allocator.Release(c.Lease.Key)
		}
		for _, t := range c.Tiles {
			gone[t] = struct{}{}
			s.surface.RemoveTile(t)
		}
	}

	kept := s.hits[:0]
	for _, t := range s.hits {
		if _, drop := gone[t]; !drop {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.hits); i++ {
		s.hits[i] = nil
	}
	s.hits = kept

	delete(s.terms, term)
	for i, name := range s.order {
		if name == term {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.log.Debug("term removed", zap.String("term", term), zap.Int("tiles", len(gone)))
	return true
}

// Tiles returns the hit-testable tiles. The slice must not be modified.
func (s *Scene) Tiles() []*Tile {
	return s.hits
}

// TilesOf returns the tiles of one term
func (s *Scene) TilesOf(term string) []*Tile {
	var out []*Tile
	for _, c := range s.Clusters(term) {
		out = append(out, c.Tiles...)
	}
	return out
}

// Pick returns the nearest tile hit by r, or nil
func (s *Scene) Pick(r Ray) *Tile {
	var best *Tile
	bestDist := math.Inf(1)
	for _, t := range s.hits {
		if d, ok := t.Intersect(r); ok && d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

// SetTier changes a tile's highlight tier and restyles it when it changed
func (s *Scene) SetTier(t *Tile, tier Tier) {
	if t.Tier == tier {
		return
	}
	t.Tier = tier
	s.surface.Restyle(t, s.palette.Style(t))
}

// Visit marks a tile as seen
func (s *Scene) Visit(t *Tile) {
	if t.Visited {
		return
	}
	t.Visited = true
	s.surface.Restyle(t, s.palette.Style(t))
}

// Pin applies the pinned brightness to every tile of term and clears it
// everywhere else. An empty term clears the pin.
func (s *Scene) Pin(term string) {
	s.pinned = term
	for _, t := range s.hits {
		want := term != "" && t.Term == term
		if t.Pinned != want {
			t.Pinned = want
			s.surface.Restyle(t, s.palette.Style(t))
		}
	}
}

// Pinned returns the pinned term
func (s *Scene) Pinned() string { return s.pinned }

// Cubes returns the period cubes created so far, innermost first
func (s *Scene) Cubes() []*Cube {
	out := make([]*Cube, 0, len(s.cubes))
	for _, c := range s.cubes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// Decoys returns the background decoration
func (s *Scene) Decoys() []Decoy { return s.decoys }

// Present hands the current frame to the surface
func (s *Scene) Present(seq int, cam *Camera) {
	s.surface.Present(Frame{Seq: seq, Camera: *cam, Tiles: s.hits})
}

// Dispose releases every slot and removes every tile. The scene is empty
// afterwards but remains usable.
func (s *Scene) Dispose() {
	s.allocator.ReleaseAll()
	for _, t := range s.hits {
		s.surface.RemoveTile(t)
	}
	s.hits = nil
	s.terms = make(map[string]*termEntry)
	s.order = nil
	s.pinned = ""
	s.log.Debug("scene disposed", zap.String("scene", s.id))
}

// cube returns the decoration for period p, creating it on first use
func (s *Scene) cube(p int) *Cube {
	if c, ok := s.cubes[p]; ok {
		return c
	}

	r := s.indexer.CubeRotation(p)
	rot := Vec3{X: r * 0.7, Y: r, Z: r * 0.4}
	size := s.indexer.CubeSize(p)
	m := EulerXYZ(rot.X, rot.Y, rot.Z)

	half := size / 2
	c := &Cube{
		Period:   p,
		Size:     size,
		Rotation: rot,
		Label: Label{
			Text:     s.indexer.PeriodLabel(p),
			Position: m.Apply(Vec3{-half, half, half}),
		},
		matrix: m,
	}
	if p >= s.layout.EdgeSkipInner {
		c.Edges = edgeSegments(size, m)
	}

	s.cubes[p] = c
	s.surface.AddCube(c)
	return c
}

func (s *Scene) makeDecoys(n int) []Decoy {
	if n <= 0 {
		return nil
	}

	lo, hi := s.layout.DecoyMinDistance, s.layout.DecoyMaxDistance
	if hi < lo {
		lo, hi = hi, lo
	}

	decoys := make([]Decoy, n)
	for i := range decoys {
		dist := lo + s.rng.Float64()*(hi-lo)
		theta := s.rng.Float64() * 2 * math.Pi
		phi := (s.rng.Float64() - 0.5) * math.Pi

		decoys[i] = Decoy{
			Position: Vec3{
				X: dist * math.Cos(phi) * math.Cos(theta),
				Y: dist * math.Sin(phi),
				Z: dist * math.Cos(phi) * math.Sin(theta),
			},
			Rotation: Vec3{
				X: s.rng.Float64() * math.Pi,
				Y: s.rng.Float64() * math.Pi,
				Z: s.rng.Float64() * math.Pi,
			},
			Width:   s.layout.TileWidth * 1.5,
			Height:  s.layout.TileHeight * 1.5,
			Opacity: s.palette.DecoyOpacity,
		}
	}
	return decoys
}

// NewRand returns the layout random source for seed. Seed 0 seeds from the
// clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
