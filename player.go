package main

import "time"

const (
	SpawnX          = 0.5
	SpawnY          = 0.5
	PlayerRadius    = 0.02
	PlayerHitRadius = 0.01
	MoveAccel       = 0.0005 // vx change per move intent
	JumpForce       = -0.02
)

// GlideKind says which ability started a glide
type GlideKind int

const (
	GlideNone GlideKind = iota
	GlideGrapple
	GlideAbduct
)

// Glide is a transient destination that overrides normal integration until reached
type Glide struct {
	Kind GlideKind
	X, Y float64
}

// Player is one connected participant
type Player struct {
	ID         string
	Name       string
	Class      PlayerClass
	X, Y       float64
	VX, VY     float64
	Radius     float64
	HitRadius  float64
	OnGround   bool
	IsIt       bool
	LastTagged time.Time

	InvisibleUntil time.Time
	FrozenUntil    time.Time
	Glide          *Glide
	Shrunk         bool

	invisible     bool // derived from InvisibleUntil each tick
	baseRadius    float64
	baseHitRadius float64
	shrinkTimer   *Timer
}

// NewPlayer creates a player at the fixed spawn point
func NewPlayer(id, name string, class PlayerClass) *Player {
	return &Player{
		ID:            id,
		Name:          name,
		Class:         class,
		X:             SpawnX,
		Y:             SpawnY,
		Radius:        PlayerRadius,
		HitRadius:     PlayerHitRadius,
		baseRadius:    PlayerRadius,
		baseHitRadius: PlayerHitRadius,
	}
}

// Invisible reports the derived stealth flag as of the last tick
func (p *Player) Invisible() bool {
	return p.invisible
}

// Frozen reports whether a freeze is in effect at now
func (p *Player) Frozen(now time.Time) bool {
	return now.Before(p.FrozenUntil)
}

// refreshDerived recomputes flags that are pure functions of stored timestamps
func (p *Player) refreshDerived(now time.Time) {
	p.invisible = now.Before(p.InvisibleUntil)
}

// ApplyMove applies a movement intent to velocity only
func (p *Player) ApplyMove(dir string) {
	switch dir {
	case DirLeft:
		p.VX -= MoveAccel
	case DirRight:
		p.VX += MoveAccel
	case DirJump:
		if p.OnGround {
			p.VY = JumpForce
			p.OnGround = false
		}
	}
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:        p.ID,
		Name:      p.Name,
		Class:     string(p.Class),
		X:         p.X,
		Y:         p.Y,
		VX:        p.VX,
		VY:        p.VY,
		Radius:    p.Radius,
		HitRadius: p.HitRadius,
		OnGround:  p.OnGround,
		IsIt:      p.IsIt,
		Invisible: p.invisible,
		Gliding:   p.Glide != nil,
		Shrunk:    p.Shrunk,
	}
}
