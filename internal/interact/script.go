package interact

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/slangspace/internal/model"
)

// Script is a recorded sequence of pointer and UI events
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one scripted action. Exactly one field is expected to be set.
type Step struct {
	Move      *Pointer   `yaml:"move,omitempty"`
	Click     *Pointer   `yaml:"click,omitempty"`
	Leave     bool       `yaml:"leave,omitempty"`
	Highlight *string    `yaml:"highlight,omitempty"` // empty clears the pin
	Preview   *string    `yaml:"preview,omitempty"`   // empty clears the preview
	Orbit     *OrbitStep `yaml:"orbit,omitempty"`
	Zoom      float64    `yaml:"zoom,omitempty"`
	Tick      int        `yaml:"tick,omitempty"`
}

// Pointer is a position in normalized device coordinates, or a tile of a
// term to aim at. Tile indexes the visible tiles of Term.
type Pointer struct {
	X    float64 `yaml:"x,omitempty"`
	Y    float64 `yaml:"y,omitempty"`
	Term string  `yaml:"term,omitempty"`
	Tile int     `yaml:"tile,omitempty"`
}

// OrbitStep rotates the camera
type OrbitStep struct {
	Azimuth float64 `yaml:"azimuth"`
	Polar   float64 `yaml:"polar"`
}

// LoadScript reads a YAML script. Unknown keys are rejected.
func LoadScript(path string) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return &s, nil
}

// Aim returns the pointer position of the n-th tile of term that a pointer
// at its projected center actually picks.
func (c *Controller) Aim(term string, n int) (x, y float64, ok bool) {
	seen := 0
	for _, t := range c.scene.TilesOf(term) {
		px, py, visible := c.camera.Project(t.Center)
		if !visible || c.scene.Pick(c.camera.Ray(px, py)) != t {
			continue
		}
		if seen == n {
			return px, py, true
		}
		seen++
	}
	return 0, 0, false
}

// Replay runs script through the controller. previews supplies the terms
// that preview steps refer to by name.
func (c *Controller) Replay(script *Script, previews map[string]model.SlangTerm) error {
	for i, step := range script.Steps {
		events, err := c.stepEvents(step, previews)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		for _, e := range events {
			c.Post(e)
		}
		c.Dispatch()
		for n := 0; n < step.Tick; n++ {
			c.Tick()
		}
	}
	return nil
}

func (c *Controller) stepEvents(step Step, previews map[string]model.SlangTerm) ([]Event, error) {
	var events []Event

	if step.Move != nil {
		x, y, err := c.resolve(*step.Move)
		if err != nil {
			return nil, err
		}
		events = append(events, Move{X: x, Y: y})
	}
	if step.Click != nil {
		x, y, err := c.resolve(*step.Click)
		if err != nil {
			return nil, err
		}
		events = append(events, Click{X: x, Y: y})
	}
	if step.Leave {
		events = append(events, Leave{})
	}
	if step.Highlight != nil {
		events = append(events, Highlight{Term: model.NormalizeTerm(*step.Highlight)})
	}
	if step.Preview != nil {
		name := model.NormalizeTerm(*step.Preview)
		if name == "" {
			events = append(events, Preview{})
		} else {
			st, ok := previews[name]
			if !ok {
				return nil, fmt.Errorf("unknown preview term %q", name)
			}
			events = append(events, Preview{Term: &st})
		}
	}
	if step.Orbit != nil {
		events = append(events, Orbit{Azimuth: step.Orbit.Azimuth, Polar: step.Orbit.Polar})
	}
	if step.Zoom != 0 {
		events = append(events, Zoom{Factor: step.Zoom})
	}
	return events, nil
}

func (c *Controller) resolve(p Pointer) (float64, float64, error) {
	if p.Term == "" {
		return p.X, p.Y, nil
	}
	x, y, ok := c.Aim(model.NormalizeTerm(p.Term), p.Tile)
	if !ok {
		return 0, 0, fmt.Errorf("no visible tile %d of %q", p.Tile, p.Term)
	}
	return x, y, nil
}
