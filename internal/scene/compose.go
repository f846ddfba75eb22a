package scene

import (
	"math"

	"github.com/google/uuid"

	"github.com/ppiankov/slangspace/internal/cluster"
	"github.com/ppiankov/slangspace/internal/model"
)

var spins = [4]float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2}

// compose places one group of comments as a cluster of tiles
func (s *Scene) compose(term string, comments []model.Comment, temporary bool) *Cluster {
	period := s.indexer.ClusterPeriodIndex(comments)
	cube := s.cube(period)
	lease := s.allocator.Allocate(period)

	ratio := cluster.DefaultRatio
	if s.layout.VariedAspect {
		ratio = cluster.PickRatio(s.rng, cluster.DefaultRatios)
	}
	arr := cluster.Arrange(len(comments), ratio)

	c := &Cluster{
		ID:          uuid.NewString(),
		Term:        term,
		Period:      period,
		Lease:       lease,
		Origin:      s.slotOrigin(cube.Size/2, lease.Key.Face, lease.Key.Slot),
		Spin:        spins[s.rng.Intn(len(spins))],
		Scale:       s.clusterScale(len(comments), period),
		Arrangement: arr,
	}

	normal, _, _ := faceFrame(lease.Key.Face)
	c.Basis = LookBasis(normal).RotateZ(c.Spin)

	m := cube.Matrix()
	world := c.Basis.Rotate(m)

	w := s.layout.TileWidth * c.Scale
	h := s.layout.TileHeight * c.Scale
	gap := s.layout.TileGap * c.Scale
	cols, rows := float64(arr.Cols), float64(arr.Rows)

	for i, cell := range arr.Cells {
		lx := (float64(cell.Col) - cols/2) * (w + gap)
		ly := (float64(cell.Row) - rows/2) * (h + gap)
		local := c.Origin.Add(c.Basis.X.Scale(lx)).Add(c.Basis.Y.Scale(ly))

		t := &Tile{
			ID:        s.nextID,
			Term:      term,
			Comment:   comments[i],
			Preview:   PreviewText(comments[i].Text, s.layout.PreviewWords),
			Center:    m.Apply(local),
			U:         world.X,
			V:         world.Y,
			Normal:    world.Z,
			Width:     w,
			Height:    h,
			Period:    period,
			Cluster:   c.ID,
			Temporary: temporary,
			Pinned:    s.pinned != "" && s.pinned == term,
		}
		s.nextID++

		c.Tiles = append(c.Tiles, t)
		s.hits = append(s.hits, t)
		s.surface.AddTile(t, s.palette.Style(t))
	}

	return c
}

// slotOrigin returns the cube-local cluster center for a face slot, jittered
// within a quarter of a cell
func (s *Scene) slotOrigin(half float64, face, slotIndex int) Vec3 {
	extent := half * 0.9
	cell := 2 * extent / float64(s.allocator.Grid())

	u, v := s.allocator.Nominal(slotIndex)
	u = u*extent + (s.rng.Float64()-0.5)*cell*0.5
	v = v*extent + (s.rng.Float64()-0.5)*cell*0.5

	return facePoint(face, half, u, v)
}

// clusterScale combines a random base, a density adjustment and a layer
// multiplier that grows slightly toward the outer cubes
func (s *Scene) clusterScale(count, period int) float64 {
	lo, hi := s.layout.ClusterScaleMin, s.layout.ClusterScaleMax
	base := lo + s.rng.Float64()*(hi-lo)

	adjust := 1.0
	if count > 0 && s.layout.CountReference > 0 {
		adjust = s.layout.CountReference / float64(count)
		adjust = clamp(adjust, s.layout.CountAdjustMin, s.layout.CountAdjustMax)
	}

	norm := 0.5
	if total := s.indexer.TotalPeriods(); total > 1 {
		norm = float64(period) / float64(total-1)
	}
	layer := 1 + s.layout.LayerSizeFactor*(norm-0.5)*2

	return base * adjust * layer
}
