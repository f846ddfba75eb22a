// Package slot leases (period, face, slot) positions on cube surfaces so
// that clusters in the same cube do not overlap.
package slot

import (
	"fmt"
	"math/rand"
	"sort"
)

// Faces is the number of cube faces
const Faces = 6

// Key identifies one slot on one face of one period cube
type Key struct {
	Period int `json:"period" yaml:"period"`
	Face   int `json:"face" yaml:"face"`
	Slot   int `json:"slot" yaml:"slot"`
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Period, k.Face, k.Slot)
}

// Lease is the result of an allocation. Exclusive is false for the overlap
// fallback taken when every slot of the period is occupied.
type Lease struct {
	Key       Key  `json:"key" yaml:"key"`
	Exclusive bool `json:"exclusive" yaml:"exclusive"`
}

// Allocator tracks occupied slots for one scene. It is not safe for
// concurrent use; the owning scene serializes access.
type Allocator struct {
	grid     int
	edge     []int
	middle   []int
	occupied map[Key]struct{}
	rng      *rand.Rand
}

// NewAllocator creates an allocator for a grid x grid sub-grid per face.
// Perimeter slots form the preferred edge set, interior slots the overflow.
func NewAllocator(grid int, rng *rand.Rand) *Allocator {
	if grid < 1 {
		grid = 1
	}

	a := &Allocator{
		grid:     grid,
		occupied: make(map[Key]struct{}),
		rng:      rng,
	}

	for s := 0; s < grid*grid; s++ {
		col, row := s%grid, s/grid
		if col == 0 || row == 0 || col == grid-1 || row == grid-1 {
			a.edge = append(a.edge, s)
		} else {
			a.middle = append(a.middle, s)
		}
	}

	return a
}

// Grid returns the per-face sub-grid dimension
func (a *Allocator) Grid() int {
	return a.grid
}

// SlotsPerPeriod returns how many exclusive slots one period cube offers
func (a *Allocator) SlotsPerPeriod() int {
	return Faces * a.grid * a.grid
}

// Allocate leases a free slot in period, edge slots first, then middle slots.
// When the period is saturated it returns a random edge slot without marking
// it, so allocation never fails.
func (a *Allocator) Allocate(period int) Lease {
	for _, pool := range [][]int{a.edge, a.middle} {
		if len(pool) == 0 {
			continue
		}
		if key, ok := a.scan(period, pool); ok {
			a.occupied[key] = struct{}{}
			return Lease{Key: key, Exclusive: true}
		}
	}

	return Lease{
		Key: Key{
			Period: period,
			Face:   a.rng.Intn(Faces),
			Slot:   a.edge[a.rng.Intn(len(a.edge))],
		},
	}
}

// scan walks faces in random order and each face's slots in random order
func (a *Allocator) scan(period int, pool []int) (Key, bool) {
	faces := a.rng.Perm(Faces)
	slots := make([]int, len(pool))

	for _, face := range faces {
		copy(slots, pool)
		a.rng.Shuffle(len(slots), func(i, j int) {
			slots[i], slots[j] = slots[j], slots[i]
		})

		for _, s := range slots {
			key := Key{Period: period, Face: face, Slot: s}
			if _, taken := a.occupied[key]; !taken {
				return key, true
			}
		}
	}

	return Key{}, false
}

// Release frees a slot. Releasing a free slot is a no-op.
func (a *Allocator) Release(key Key) {
	delete(a.occupied, key)
}

// ReleaseAll frees every slot
func (a *Allocator) ReleaseAll() {
	a.occupied = make(map[Key]struct{})
}

// IsOccupied reports whether key is currently leased
func (a *Allocator) IsOccupied(key Key) bool {
	_, ok := a.occupied[key]
	return ok
}

// Occupied returns the number of leased slots
func (a *Allocator) Occupied() int {
	return len(a.occupied)
}

// Keys returns the leased keys in period, face, slot order
func (a *Allocator) Keys() []Key {
	keys := make([]Key, 0, len(a.occupied))
	for k := range a.occupied {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Period != keys[j].Period {
			return keys[i].Period < keys[j].Period
		}
		if keys[i].Face != keys[j].Face {
			return keys[i].Face < keys[j].Face
		}
		return keys[i].Slot < keys[j].Slot
	})
	return keys
}

// IsEdge reports whether slot lies on the perimeter of the face grid
func (a *Allocator) IsEdge(slot int) bool {
	col, row := slot%a.grid, slot/a.grid
	return col == 0 || row == 0 || col == a.grid-1 || row == a.grid-1
}

// Nominal returns the slot center in face coordinates, each in (-1, 1)
func (a *Allocator) Nominal(slot int) (u, v float64) {
	col, row := slot%a.grid, slot/a.grid
	n := float64(a.grid)
	u = (float64(col)+0.5)/n*2 - 1
	v = (float64(row)+0.5)/n*2 - 1
	return u, v
}
