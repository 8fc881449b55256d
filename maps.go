package main

// PlatformKind distinguishes fixed from oscillating platforms
type PlatformKind string

const (
	PlatformStatic PlatformKind = "static"
	PlatformMoving PlatformKind = "moving"
)

// Axis of travel for a moving platform
const (
	AxisHorizontal = "horizontal"
	AxisVertical   = "vertical"
)

// Platform is a solid rectangle players can land on
type Platform struct {
	X, Y      float64
	W, H      float64
	Kind      PlatformKind
	Ground    bool // the floor strip; burrow never targets it
	Direction string
	Speed     float64 // signed, world units per tick
	OriginX   float64
	OriginY   float64
	Range     float64

	dx float64 // horizontal displacement applied this tick
}

// JumpPad launches players that land on it
type JumpPad struct {
	X, Y  float64
	W, H  float64
	Power float64 // negative = upward
}

// MapDef is one votable arena layout
type MapDef struct {
	Name      string
	Gravity   float64
	Platforms []Platform
}

const DefaultGravity = 0.0005

func static(x, y, w, h float64) Platform {
	return Platform{X: x, Y: y, W: w, H: h, Kind: PlatformStatic}
}

func moving(x, y, w, h float64, dir string, speed, rng float64) Platform {
	return Platform{
		X: x, Y: y, W: w, H: h,
		Kind:      PlatformMoving,
		Direction: dir,
		Speed:     speed,
		OriginX:   x,
		OriginY:   y,
		Range:     rng,
	}
}

func ground() Platform {
	p := static(0, 0.89, 3.0, 0.03)
	p.Ground = true
	return p
}

// Maps is the vote catalog. Index 0 is the default map.
var Maps = []MapDef{
	{
		Name:    "Classic",
		Gravity: DefaultGravity,
		Platforms: []Platform{
			ground(),
			static(0.2, 0.72, 0.3, 0.03),
			static(0.5, 0.55, 0.25, 0.03),
			static(1.0, 0.62, 0.4, 0.03),
			static(1.5, 0.62, 0.4, 0.03),
			static(2.0, 0.75, 0.3, 0.03),
			static(2.3, 0.55, 0.3, 0.03),
			static(0.8, 0.38, 0.4, 0.03),
			static(1.8, 0.38, 0.4, 0.03),
			static(0.5, 0.18, 0.35, 0.03),
			static(2.2, 0.18, 0.35, 0.03),
		},
	},
	{
		Name:    "Skyline",
		Gravity: DefaultGravity,
		Platforms: []Platform{
			ground(),
			static(0.15, 0.7, 0.3, 0.03),
			moving(0.7, 0.6, 0.3, 0.03, AxisHorizontal, 0.003, 0.3),
			static(1.35, 0.5, 0.3, 0.03),
			moving(1.9, 0.65, 0.25, 0.03, AxisVertical, 0.002, 0.15),
			static(2.45, 0.7, 0.3, 0.03),
			moving(0.9, 0.3, 0.35, 0.03, AxisHorizontal, -0.004, 0.4),
			static(2.2, 0.3, 0.3, 0.03),
		},
	},
	{
		Name:    "Moonbase",
		Gravity: 0.0003,
		Platforms: []Platform{
			ground(),
			static(0.3, 0.65, 0.35, 0.03),
			static(1.3, 0.5, 0.4, 0.03),
			static(2.3, 0.65, 0.35, 0.03),
			static(0.8, 0.25, 0.3, 0.03),
			static(1.9, 0.25, 0.3, 0.03),
		},
	},
}

// DefaultJumpPads are shared by every map
var DefaultJumpPads = []JumpPad{
	{X: -0.07, Y: 0.87, W: 0.08, H: 0.02, Power: -0.04},
	{X: 0.94, Y: 0.87, W: 0.08, H: 0.02, Power: -0.04},
}

// MapNames returns the display names in catalog order
func MapNames() []string {
	names := make([]string, len(Maps))
	for i, m := range Maps {
		names[i] = m.Name
	}
	return names
}

// Instantiate returns a fresh copy of the map's platforms
func (m MapDef) Instantiate() []Platform {
	out := make([]Platform, len(m.Platforms))
	copy(out, m.Platforms)
	return out
}

// Move advances a moving platform one tick, reversing at the edge of its range.
// The platform never leaves origin ± range.
func (pl *Platform) Move() {
	pl.dx = 0
	if pl.Kind != PlatformMoving {
		return
	}
	switch pl.Direction {
	case AxisHorizontal:
		old := pl.X
		pl.X += pl.Speed
		if pl.X > pl.OriginX+pl.Range {
			pl.X = pl.OriginX + pl.Range
			pl.Speed = -pl.Speed
		} else if pl.X < pl.OriginX-pl.Range {
			pl.X = pl.OriginX - pl.Range
			pl.Speed = -pl.Speed
		}
		pl.dx = pl.X - old
	case AxisVertical:
		pl.Y += pl.Speed
		if pl.Y > pl.OriginY+pl.Range {
			pl.Y = pl.OriginY + pl.Range
			pl.Speed = -pl.Speed
		} else if pl.Y < pl.OriginY-pl.Range {
			pl.Y = pl.OriginY - pl.Range
			pl.Speed = -pl.Speed
		}
	}
}

// ToState converts to protocol state
func (pl *Platform) ToState() PlatformState {
	return PlatformState{
		X: pl.X, Y: pl.Y, W: pl.W, H: pl.H,
		Type:      string(pl.Kind),
		Direction: pl.Direction,
	}
}
