package interact

import "github.com/ppiankov/slangspace/internal/model"

// Event is one input to the controller
type Event interface {
	event()
}

// Move is a pointer move in normalized device coordinates, +Y up
type Move struct{ X, Y float64 }

// Click is a pointer click in normalized device coordinates
type Click struct{ X, Y float64 }

// Leave is the pointer leaving the viewport
type Leave struct{}

// Sync delivers the current committed collection. Terms already laid out
// are ignored.
type Sync struct{ Slangs []model.SlangTerm }

// Preview replaces the temporary term. A nil Term clears it.
type Preview struct{ Term *model.SlangTerm }

// Highlight pins a term. An empty Term clears the pin.
type Highlight struct{ Term string }

// Orbit rotates the camera around its target, in radians
type Orbit struct{ Azimuth, Polar float64 }

// Zoom scales the camera distance
type Zoom struct{ Factor float64 }

func (Move) event()      {}
func (Click) event()     {}
func (Leave) event()     {}
func (Sync) event()      {}
func (Preview) event()   {}
func (Highlight) event() {}
func (Orbit) event()     {}
func (Zoom) event()      {}
