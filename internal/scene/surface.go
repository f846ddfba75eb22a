package scene

import "sync"

// Surface is the rendering binding the scene issues draw commands to
type Surface interface {
	AddCube(c *Cube)
	AddDecoys(d []Decoy)
	AddTile(t *Tile, s Style)
	RemoveTile(t *Tile)
	Restyle(t *Tile, s Style)
	Present(f Frame)
}

// Frame is what a render tick sees: the camera and the live tiles
type Frame struct {
	Seq    int
	Camera Camera
	Tiles  []*Tile
}

// NopSurface discards all draw commands
type NopSurface struct{}

func (NopSurface) AddCube(*Cube)        {}
func (NopSurface) AddDecoys([]Decoy)    {}
func (NopSurface) AddTile(*Tile, Style) {}
func (NopSurface) RemoveTile(*Tile)     {}
func (NopSurface) Restyle(*Tile, Style) {}
func (NopSurface) Present(Frame)        {}

// Recorder is a Surface that keeps the latest style per tile and counts
// commands. It is safe to read while a loop drives it.
type Recorder struct {
	mu       sync.Mutex
	styles   map[int]Style
	cubes    int
	decoys   int
	added    int
	removed  int
	restyled int
	frames   int
	lastSeen int
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{styles: make(map[int]Style)}
}

func (r *Recorder) AddCube(*Cube) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cubes++
}

func (r *Recorder) AddDecoys(d []Decoy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoys += len(d)
}

func (r *Recorder) AddTile(t *Tile, s Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles[t.ID] = s
	r.added++
}

func (r *Recorder) RemoveTile(t *Tile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.styles, t.ID)
	r.removed++
}

func (r *Recorder) Restyle(t *Tile, s Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles[t.ID] = s
	r.restyled++
}

func (r *Recorder) Present(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
	r.lastSeen = len(f.Tiles)
}

// Style returns the last style pushed for a tile id
func (r *Recorder) Style(id int) (Style, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.styles[id]
	return s, ok
}

// RecorderStats is a point-in-time copy of the command counters
type RecorderStats struct {
	Cubes     int `json:"cubes" yaml:"cubes"`
	Decoys    int `json:"decoys" yaml:"decoys"`
	Live      int `json:"live" yaml:"live"`
	Added     int `json:"added" yaml:"added"`
	Removed   int `json:"removed" yaml:"removed"`
	Restyled  int `json:"restyled" yaml:"restyled"`
	Frames    int `json:"frames" yaml:"frames"`
	LastFrame int `json:"last_frame" yaml:"last_frame"`
}

// Stats returns the counters
func (r *Recorder) Stats() RecorderStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RecorderStats{
		Cubes:     r.cubes,
		Decoys:    r.decoys,
		Live:      len(r.styles),
		Added:     r.added,
		Removed:   r.removed,
		Restyled:  r.restyled,
		Frames:    r.frames,
		LastFrame: r.lastSeen,
	}
}
