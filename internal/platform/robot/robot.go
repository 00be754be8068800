// Package robot performs native mouse input through robotgo.
package robot

import (
	"github.com/go-vgo/robotgo"

	"github.com/verte-zerg/autoclick/internal/model"
	"github.com/verte-zerg/autoclick/internal/platform"
)

// Robot clicks with the system's left mouse button.
type Robot struct{}

// New returns a Robot after checking that a display is reachable.
func New() (*Robot, error) {
	if err := platform.CheckDisplay(); err != nil {
		return nil, err
	}
	return &Robot{}, nil
}

// Position returns the current pointer location.
func (r *Robot) Position() (model.Point, error) {
	x, y := robotgo.Location()
	return model.Point{X: x, Y: y}, nil
}

// Click moves to p and presses the left button once.
func (r *Robot) Click(p model.Point) error {
	robotgo.Move(p.X, p.Y)
	robotgo.Click("left", false)
	return nil
}
