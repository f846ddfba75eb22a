package scene

import "github.com/ppiankov/slangspace/internal/slot"

// Snapshot is a serializable view of a scene
type Snapshot struct {
	ID       string         `json:"id" yaml:"id"`
	Periods  int            `json:"periods" yaml:"periods"`
	Pinned   string         `json:"pinned,omitempty" yaml:"pinned,omitempty"`
	Occupied int            `json:"occupied" yaml:"occupied"`
	Decoys   int            `json:"decoys" yaml:"decoys"`
	Cubes    []Cube         `json:"cubes" yaml:"cubes"`
	Terms    []TermSnapshot `json:"terms" yaml:"terms"`
}

// TermSnapshot describes one laid-out term
type TermSnapshot struct {
	Term      string            `json:"term" yaml:"term"`
	Temporary bool              `json:"temporary" yaml:"temporary"`
	Clusters  []ClusterSnapshot `json:"clusters" yaml:"clusters"`
}

// ClusterSnapshot describes one placed cluster
type ClusterSnapshot struct {
	ID        string         `json:"id" yaml:"id"`
	Period    int            `json:"period" yaml:"period"`
	Key       slot.Key       `json:"key" yaml:"key"`
	Exclusive bool           `json:"exclusive" yaml:"exclusive"`
	Origin    Vec3           `json:"origin" yaml:"origin"`
	Spin      float64        `json:"spin" yaml:"spin"`
	Scale     float64        `json:"scale" yaml:"scale"`
	Cols      int            `json:"cols" yaml:"cols"`
	Rows      int            `json:"rows" yaml:"rows"`
	Tiles     []TileSnapshot `json:"tiles" yaml:"tiles"`
}

// TileSnapshot describes one tile and its current style
type TileSnapshot struct {
	ID      int     `json:"id" yaml:"id"`
	User    string  `json:"user" yaml:"user"`
	Time    string  `json:"time,omitempty" yaml:"time,omitempty"`
	Preview string  `json:"preview" yaml:"preview"`
	Center  Vec3    `json:"center" yaml:"center"`
	Normal  Vec3    `json:"normal" yaml:"normal"`
	Width   float64 `json:"width" yaml:"width"`
	Height  float64 `json:"height" yaml:"height"`
	Tier    string  `json:"tier" yaml:"tier"`
	Visited bool    `json:"visited" yaml:"visited"`
	Style   Style   `json:"style" yaml:"style"`
}

// Snapshot exports cubes, clusters and tile styles
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		ID:       s.id,
		Periods:  s.indexer.TotalPeriods(),
		Pinned:   s.pinned,
		Occupied: s.allocator.Occupied(),
		Decoys:   len(s.decoys),
	}

	for _, c := range s.Cubes() {
		snap.Cubes = append(snap.Cubes, *c)
	}

	for _, term := range s.order {
		entry := s.terms[term]
		ts := TermSnapshot{Term: term, Temporary: entry.temporary}

		for _, c := range entry.clusters {
			cs := ClusterSnapshot{
				ID:        c.ID,
				Period:    c.Period,
				Key:       c.Lease.Key,
				Exclusive: c.Lease.Exclusive,
				Origin:    c.Origin,
				Spin:      c.Spin,
				Scale:     c.Scale,
				Cols:      c.Arrangement.Cols,
				Rows:      c.Arrangement.Rows,
			}
			for _, t := range c.Tiles {
				cs.Tiles = append(cs.Tiles, TileSnapshot{
					ID:      t.ID,
					User:    t.Comment.User,
					Time:    t.Comment.Time,
					Preview: t.Preview,
					Center:  t.Center,
					Normal:  t.Normal,
					Width:   t.Width,
					Height:  t.Height,
					Tier:    t.Tier.String(),
					Visited: t.Visited,
					Style:   s.palette.Style(t),
				})
			}
			ts.Clusters = append(ts.Clusters, cs)
		}

		snap.Terms = append(snap.Terms, ts)
	}

	return snap
}

// Census counts tiles by their visible state
type Census struct {
	Idle    int `json:"idle" yaml:"idle"`
	Preview int `json:"preview" yaml:"preview"`
	Visited int `json:"visited" yaml:"visited"`
	Group   int `json:"group" yaml:"group"`
	Direct  int `json:"direct" yaml:"direct"`
	Pinned  int `json:"pinned" yaml:"pinned"`
}

// Census tallies the hit-testable tiles
func (s *Scene) Census() Census {
	var c Census
	for _, t := range s.hits {
		if t.Pinned {
			c.Pinned++
		}
		switch t.Tier {
		case TierDirect:
			c.Direct++
		case TierGroup:
			c.Group++
		default:
			switch t.Resting() {
			case "visited":
				c.Visited++
			case "preview":
				c.Preview++
			default:
				c.Idle++
			}
		}
	}
	return c
}
