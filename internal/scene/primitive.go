package scene

import (
	"math"
	"strings"

	"github.com/ppiankov/slangspace/internal/model"
)

// Tier is the highlight level of a tile
type Tier int

const (
	// TierRest is the resting level: idle, visited or preview
	TierRest Tier = iota
	// TierGroup marks tiles of the hovered term
	TierGroup
	// TierDirect marks the tile under the pointer
	TierDirect
)

func (t Tier) String() string {
	switch t {
	case TierGroup:
		return "group"
	case TierDirect:
		return "direct"
	default:
		return "rest"
	}
}

// Style is what the surface needs to draw a tile
type Style struct {
	Opacity    float64 `json:"opacity" yaml:"opacity"`
	Brightness float64 `json:"brightness" yaml:"brightness"`
}

// Tile is one comment rendered as a textured plane. Geometry is fixed at
// construction; only the highlight fields change afterwards.
type Tile struct {
	ID      int
	Term    string
	Comment model.Comment
	Preview string

	Center Vec3
	U, V   Vec3 // in-plane width and height axes, unit length
	Normal Vec3
	Width  float64
	Height float64

	Period    int
	Cluster   string
	Temporary bool

	Tier    Tier
	Visited bool
	Pinned  bool
}

// Intersect returns the ray distance to the tile plane when the hit lies
// inside the tile. Tiles are double sided.
func (t *Tile) Intersect(r Ray) (float64, bool) {
	denom := r.Dir.Dot(t.Normal)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}

	dist := t.Center.Sub(r.Origin).Dot(t.Normal) / denom
	if dist < 0 {
		return 0, false
	}

	local := r.At(dist).Sub(t.Center)
	if math.Abs(local.Dot(t.U)) > t.Width/2 || math.Abs(local.Dot(t.V)) > t.Height/2 {
		return 0, false
	}

	return dist, true
}

// Resting reports the tier-less style bucket the tile falls back to
func (t *Tile) Resting() string {
	switch {
	case t.Visited:
		return "visited"
	case t.Temporary:
		return "preview"
	default:
		return "idle"
	}
}

// Palette maps tile state to a style
type Palette struct {
	model.HighlightConfig
}

// Style returns the style for the current tile state
func (p Palette) Style(t *Tile) Style {
	s := Style{Brightness: 1}
	if t.Pinned && p.PinnedBoost > 0 {
		s.Brightness = p.PinnedBoost
	}

	switch t.Tier {
	case TierDirect:
		s.Opacity = p.DirectOpacity
	case TierGroup:
		s.Opacity = p.GroupOpacity
	default:
		switch t.Resting() {
		case "visited":
			s.Opacity = p.VisitedOpacity
		case "preview":
			s.Opacity = p.PreviewOpacity
		default:
			s.Opacity = p.IdleOpacity
		}
	}

	return s
}

// Segment is one straight cube edge
type Segment struct {
	From Vec3 `json:"from" yaml:"from"`
	To   Vec3 `json:"to" yaml:"to"`
}

// Label is the period caption drawn at a cube corner
type Label struct {
	Text     string `json:"text" yaml:"text"`
	Position Vec3   `json:"position" yaml:"position"`
}

// Cube is the decoration of one period layer
type Cube struct {
	Period   int       `json:"period" yaml:"period"`
	Size     float64   `json:"size" yaml:"size"`
	Rotation Vec3      `json:"rotation" yaml:"rotation"` // Euler XYZ, radians
	Edges    []Segment `json:"edges,omitempty" yaml:"edges,omitempty"`
	Label    Label     `json:"label" yaml:"label"`

	matrix Mat3
}

// Matrix returns the cube group rotation
func (c *Cube) Matrix() Mat3 {
	return c.matrix
}

var cubeCorners = [8][3]float64{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

var cubeEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// edgeSegments returns the 12 edges of a cube of the given size in world space
func edgeSegments(size float64, m Mat3) []Segment {
	half := size / 2
	corner := func(i int) Vec3 {
		c := cubeCorners[i]
		return m.Apply(Vec3{c[0] * half, c[1] * half, c[2] * half})
	}

	segments := make([]Segment, 0, len(cubeEdges))
	for _, e := range cubeEdges {
		segments = append(segments, Segment{From: corner(e[0]), To: corner(e[1])})
	}
	return segments
}

// Decoy is a background plane. Decoys are never hit-tested.
type Decoy struct {
	Position Vec3    `json:"position" yaml:"position"`
	Rotation Vec3    `json:"rotation" yaml:"rotation"`
	Width    float64 `json:"width" yaml:"width"`
	Height   float64 `json:"height" yaml:"height"`
	Opacity  float64 `json:"opacity" yaml:"opacity"`
}

// PreviewText keeps the first n words of text, with "..." when cut
func PreviewText(text string, n int) string {
	words := strings.Fields(text)
	if n <= 0 || len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}

// faceFrame returns the outward normal and the in-face axes for u and v
func faceFrame(face int) (normal, uAxis, vAxis Vec3) {
	switch face {
	case 0: // +X
		return Vec3{1, 0, 0}, Vec3{0, 0, 1}, Vec3{0, 1, 0}
	case 1: // -X
		return Vec3{-1, 0, 0}, Vec3{0, 0, 1}, Vec3{0, 1, 0}
	case 2: // +Y
		return Vec3{0, 1, 0}, Vec3{1, 0, 0}, Vec3{0, 0, 1}
	case 3: // -Y
		return Vec3{0, -1, 0}, Vec3{1, 0, 0}, Vec3{0, 0, 1}
	case 4: // +Z
		return Vec3{0, 0, 1}, Vec3{1, 0, 0}, Vec3{0, 1, 0}
	default: // -Z
		return Vec3{0, 0, -1}, Vec3{1, 0, 0}, Vec3{0, 1, 0}
	}
}

// facePoint maps face coordinates onto a cube face of half-size half
func facePoint(face int, half, u, v float64) Vec3 {
	normal, uAxis, vAxis := faceFrame(face)
	return normal.Scale(half).Add(uAxis.Scale(u)).Add(vAxis.Scale(v))
}
