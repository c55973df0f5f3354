// Package projection maps game-world coordinates onto the background map.
package projection

import (
	"fmt"

	"github.com/paulmach/orb"

	"cctvmap/pkg/config"
	"cctvmap/pkg/model"
)

// WorldBounds covers the playable area in world units.
var WorldBounds = orb.Bound{
	Min: orb.Point{-4000, -4000},
	Max: orb.Point{4000, 4000},
}

// Projector converts between world and display space. Implementations are
// stateless; ToWorld inverts ToDisplay.
type Projector interface {
	ToDisplay(p model.Point) orb.Point
	ToWorld(d orb.Point) model.Point
	Name() string
}

// Affine applies a per-axis scale and offset.
// A negative ScaleY flips the vertical axis, which the GTA map image requires.
type Affine struct {
	ScaleX, OffsetX float64
	ScaleY, OffsetY float64
}

func (a Affine) ToDisplay(p model.Point) orb.Point {
	return orb.Point{p.X*a.ScaleX + a.OffsetX, p.Y*a.ScaleY + a.OffsetY}
}

func (a Affine) ToWorld(d orb.Point) model.Point {
	return model.Point{
		X: (d[0] - a.OffsetX) / a.ScaleX,
		Y: (d[1] - a.OffsetY) / a.ScaleY,
	}
}

func (a Affine) Name() string { return config.ProjectionAffine }

// Divide scales world units down for a generic slippy map.
// The display point is in (lat, lng) order: (y/Factor, x/Factor).
type Divide struct {
	Factor float64
}

func (d Divide) ToDisplay(p model.Point) orb.Point {
	return orb.Point{p.Y / d.Factor, p.X / d.Factor}
}

func (d Divide) ToWorld(p orb.Point) model.Point {
	return model.Point{X: p[1] * d.Factor, Y: p[0] * d.Factor}
}

func (d Divide) Name() string { return config.ProjectionDivide }

// New builds the projector selected in configuration.
func New(cfg config.ProjectionConfig) (Projector, error) {
	switch cfg.Variant {
	case config.ProjectionAffine, "":
		a := cfg.Affine
		if a.ScaleX == 0 || a.ScaleY == 0 {
			return nil, fmt.Errorf("affine projection: scale must be non-zero (scale_x=%v, scale_y=%v)", a.ScaleX, a.ScaleY)
		}
		return Affine{ScaleX: a.ScaleX, OffsetX: a.OffsetX, ScaleY: a.ScaleY, OffsetY: a.OffsetY}, nil
	case config.ProjectionDivide:
		if cfg.Divide.Factor == 0 {
			return nil, fmt.Errorf("divide projection: factor must be non-zero")
		}
		return Divide{Factor: cfg.Divide.Factor}, nil
	default:
		return nil, fmt.Errorf("unknown projection variant %q", cfg.Variant)
	}
}

// DisplayBounds projects a world bound. Corners are re-normalized, so a
// flipped axis still yields Min <= Max.
func DisplayBounds(p Projector, b orb.Bound) orb.Bound {
	corners := orb.MultiPoint{
		p.ToDisplay(model.Point{X: b.Min[0], Y: b.Min[1]}),
		p.ToDisplay(model.Point{X: b.Max[0], Y: b.Max[1]}),
	}
	return corners.Bound()
}

// Center returns the display-space center of the world.
func Center(p Projector) orb.Point {
	return DisplayBounds(p, WorldBounds).Center()
}
