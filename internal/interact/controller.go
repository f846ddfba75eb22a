// Package interact drives hover, click and preview state on top of a scene.
// All state is owned by one goroutine: events are handled to completion in
// the order received and render ticks only read tile styles.
package interact

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/slangspace/internal/model"
	"github.com/ppiankov/slangspace/internal/scene"
)

// Callbacks are the outputs to the UI layer. Either may be nil.
type Callbacks struct {
	// OnHover fires when the directly hovered tile changes. comment is nil
	// when the pointer leaves every tile.
	OnHover func(comment *model.Comment, term string)
	// OnClick fires when a click hits a tile
	OnClick func(comment model.Comment, term string)
}

// Controller is the highlight state machine for one scene
type Controller struct {
	scene  *scene.Scene
	camera *scene.Camera
	cb     Callbacks
	log    *zap.Logger

	buildsPerTick int

	queue   []Event
	pending []model.SlangTerm
	queued  map[string]bool

	hovered  string
	direct   *scene.Tile
	preview  string
	frame    int
	disposed bool
}

// New creates a controller. buildsPerTick bounds how many queued committed
// terms each render tick composes; values below 1 mean one.
func New(sc *scene.Scene, cam *scene.Camera, cb Callbacks, buildsPerTick int, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if buildsPerTick < 1 {
		buildsPerTick = 1
	}
	return &Controller{
		scene:         sc,
		camera:        cam,
		cb:            cb,
		log:           log,
		buildsPerTick: buildsPerTick,
		queued:        make(map[string]bool),
	}
}

// Scene returns the controlled scene
func (c *Controller) Scene() *scene.Scene { return c.scene }

// Camera returns the pick camera
func (c *Controller) Camera() *scene.Camera { return c.camera }

// Hovered returns the hovered term, empty when idle
func (c *Controller) Hovered() string { return c.hovered }

// Direct returns the directly hovered tile, or nil
func (c *Controller) Direct() *scene.Tile { return c.direct }

// PreviewTerm returns the current temporary term, empty when none
func (c *Controller) PreviewTerm() string { return c.preview }

// Pending returns how many committed terms wait for construction
func (c *Controller) Pending() int { return len(c.pending) }

// Post queues an event for the next Dispatch
func (c *Controller) Post(e Event) {
	c.queue = append(c.queue, e)
}

// Dispatch handles every queued event in order, including events posted
// while dispatching
func (c *Controller) Dispatch() {
	for len(c.queue) > 0 {
		e := c.queue[0]
		c.queue[0] = nil
		c.queue = c.queue[1:]
		c.Handle(e)
	}
}

// Handle runs one event to completion
func (c *Controller) Handle(e Event) {
	if c.disposed {
		return
	}

	switch ev := e.(type) {
	case Move:
		c.move(ev.X, ev.Y)
	case Click:
		c.click(ev.X, ev.Y)
	case Leave:
		c.leave()
	case Sync:
		c.sync(ev.Slangs)
	case Preview:
		c.setPreview(ev.Term)
	case Highlight:
		c.scene.Pin(ev.Term)
	case Orbit:
		c.camera.Orbit(ev.Azimuth, ev.Polar)
	case Zoom:
		c.camera.Zoom(ev.Factor)
	}
}

// Step composes up to n queued committed terms and returns how many were built
func (c *Controller) Step(n int) int {
	built := 0
	for built < n && len(c.pending) > 0 {
		st := c.pending[0]
		c.pending = c.pending[1:]
		delete(c.queued, st.Term)

		c.scene.AddTerm(st, false)
		built++
	}
	return built
}

// Flush composes every queued committed term
func (c *Controller) Flush() {
	c.Step(len(c.pending))
}

// Tick is one render tick: bounded construction, then present
func (c *Controller) Tick() {
	if c.disposed {
		return
	}
	c.Step(c.buildsPerTick)
	c.frame++
	c.scene.Present(c.frame, c.camera)
}

// Run consumes events and drives render ticks until ctx is done or events
// is closed. The controller is disposed on return.
func (c *Controller) Run(ctx context.Context, events <-chan Event, interval time.Duration) error {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer c.Dispose()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			c.Handle(e)
			c.Dispatch()
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Dispose drops callbacks and queued work, then releases the scene. Later
// events are ignored.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.cb = Callbacks{}
	c.queue = nil
	c.pending = nil
	c.queued = make(map[string]bool)
	c.hovered, c.direct, c.preview = "", nil, ""
	c.scene.Dispose()
	c.log.Debug("controller disposed")
}

func (c *Controller) move(x, y float64) {
	hit := c.scene.Pick(c.camera.Ray(x, y))
	if hit == nil {
		c.leave()
		return
	}

	term := hit.Term

	if hit != c.direct {
		if c.direct != nil && c.direct.Term == term {
			c.scene.SetTier(c.direct, scene.TierGroup)
		}
		c.direct = hit
		c.scene.Visit(hit)
		c.scene.SetTier(hit, scene.TierDirect)

		if c.cb.OnHover != nil {
			comment := hit.Comment
			c.cb.OnHover(&comment, term)
		}
	}

	if term != c.hovered {
		c.rest(c.hovered)
		c.hovered = term
		for _, t := range c.scene.TilesOf(term) {
			if t == hit {
				continue
			}
			c.scene.SetTier(t, scene.TierGroup)
		}
	}
}

// leave returns to idle. The hover callback fires only when something was
// hovered.
func (c *Controller) leave() {
	had := c.direct != nil || c.hovered != ""

	c.rest(c.hovered)
	c.hovered = ""
	c.direct = nil

	if had && c.cb.OnHover != nil {
		c.cb.OnHover(nil, "")
	}
}

// rest drops every tile of term to its resting tier
func (c *Controller) rest(term string) {
	if term == "" {
		return
	}
	for _, t := range c.scene.TilesOf(term) {
		c.scene.SetTier(t, scene.TierRest)
	}
}

func (c *Controller) click(x, y float64) {
	hit := c.scene.Pick(c.camera.Ray(x, y))
	if hit == nil || c.cb.OnClick == nil {
		return
	}
	c.cb.OnClick(hit.Comment, hit.Term)
}

func (c *Controller) sync(slangs []model.SlangTerm) {
	for _, st := range slangs {
		if st.Term == "" || c.queued[st.Term] {
			continue
		}
		if c.scene.HasTerm(st.Term) {
			if !c.scene.IsTemporary(st.Term) {
				continue
			}
			// the preview was committed: rebuild it as permanent
			c.clearPreview()
		}

		c.pending = append(c.pending, st)
		c.queued[st.Term] = true
	}
}

func (c *Controller) setPreview(st *model.SlangTerm) {
	c.clearPreview()
	if st == nil || st.Term == "" {
		return
	}
	if c.queued[st.Term] || c.scene.HasTerm(st.Term) {
		c.log.Debug("preview already committed", zap.String("term", st.Term))
		return
	}

	if c.scene.AddTerm(*st, true) > 0 {
		c.preview = st.Term
	}
}

// clearPreview removes the temporary term before anything else is built so
// no slot or hit target of it survives
func (c *Controller) clearPreview() {
	if c.preview == "" {
		return
	}
	if c.hovered == c.preview {
		c.leave()
	}
	c.scene.RemoveTerm(c.preview)
	c.preview = ""
}
