package main

import (
	"math"
	"time"
)

const (
	WorldWidth       = 3.0
	GroundLine       = 0.9  // 1 - ground height
	Friction         = 0.85 // vx multiplier per tick
	LandingTolerance = 0.01
	GlideSpeed       = 0.02 // world units per tick
	GlideEpsilon     = 0.001
)

// stepEnv carries per-tick inputs into the physics step
type stepEnv struct {
	now        time.Time
	onTeleport func(p *Player) // called once per teleport
}

// movePlatforms advances every moving platform one tick
func movePlatforms(w *World) {
	for i := range w.platforms {
		w.platforms[i].Move()
	}
}

// stepPhysics advances every player one tick and then refreshes derived flags
func stepPhysics(w *World, env stepEnv) {
	for _, p := range w.Players() {
		stepPlayer(w, p, env)
	}
	for _, p := range w.players {
		p.refreshDerived(env.now)
	}
}

func stepPlayer(w *World, p *Player, env stepEnv) {
	x0, y0 := p.X, p.Y

	// a frozen player carries no velocity into the tick; only gravity moves it
	frozen := p.Frozen(env.now)
	if frozen {
		p.VX = 0
		p.VY = 0
	}

	// 1. gravity and ground plane
	p.VY += w.gravity
	p.Y += p.VY
	p.OnGround = false
	clampGround(p)

	// 2. freeze suppresses all motion but keeps the player on solid ground
	if frozen {
		p.VX = 0
		p.VY = 0
	}

	// 3. platforms
	collidePlatforms(w, p)

	if !frozen {
		// 4. jump pads override landing
		for _, jp := range w.jumpPads {
			if overlapsX(p.X, p.Radius, jp.X, jp.W) &&
				p.Y+p.Radius > jp.Y && p.Y+p.Radius < jp.Y+jp.H+LandingTolerance &&
				p.VY >= 0 {
				p.VY = jp.Power
			}
		}

		// 5. horizontal integration with exponential decay
		p.X += p.VX
		p.VX *= Friction

		// 6. glide overrides this tick's integration
		if p.Glide != nil {
			glide(p, x0, y0)
		}
	} else {
		p.VY = 0
	}

	// 7. world bounds
	p.X = Clamp(p.X, p.Radius, WorldWidth-p.Radius)
	clampGround(p)

	// 8. portals
	if !frozen && w.portals.Teleport(p) {
		clampGround(p)
		if env.onTeleport != nil {
			env.onTeleport(p)
		}
	}
}

func clampGround(p *Player) {
	if p.Y+p.Radius > GroundLine {
		p.Y = GroundLine - p.Radius
		if p.VY > 0 {
			p.VY = 0
		}
		p.OnGround = true
	}
}

// collidePlatforms resolves landing and head-bump against every platform the
// player overlaps horizontally. Ride-along applies for the first landing only.
func collidePlatforms(w *World, p *Player) {
	rode := false
	for i := range w.platforms {
		pl := &w.platforms[i]
		if !overlapsX(p.X, p.Radius, pl.X, pl.W) {
			continue
		}
		bottom := p.Y + p.Radius
		top := p.Y - p.Radius
		switch {
		case bottom > pl.Y && bottom < pl.Y+pl.H+LandingTolerance && p.VY >= 0:
			p.Y = pl.Y - p.Radius
			p.VY = 0
			p.OnGround = true
			if !rode && pl.Kind == PlatformMoving && pl.Direction == AxisHorizontal {
				p.X += pl.dx
				rode = true
			}
		case top < pl.Y+pl.H && top > pl.Y && p.VY < 0:
			p.Y = pl.Y + pl.H + p.Radius
			p.VY = 0
		}
	}
}

// glide moves p from its start-of-tick position straight toward its glide
// target, snapping and clearing the glide on arrival
func glide(p *Player, x0, y0 float64) {
	g := p.Glide
	dx := g.X - x0
	dy := g.Y - y0
	dist := math.Hypot(dx, dy)
	p.VX = 0
	p.VY = 0
	if dist <= GlideSpeed || dist < GlideEpsilon {
		p.X = g.X
		p.Y = g.Y
		p.Glide = nil
		return
	}
	p.X = x0 + dx/dist*GlideSpeed
	p.Y = y0 + dy/dist*GlideSpeed
	p.OnGround = false
}
