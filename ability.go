package main

import (
	"math/rand"
	"time"
)

// Ability timings
const (
	StealthDuration  = 5 * time.Second
	ConfettiDuration = 5 * time.Second
	FreezeDuration   = 3 * time.Second
	ShrinkDuration   = 8 * time.Second
	ShrinkFactor     = 0.5

	BurrowGap   = 0.005
	BurrowNudge = 0.002 // downward vy after surfacing under a platform
)

// abilityCtx is everything a handler may touch while the world lock is held
type abilityCtx struct {
	world *World
	actor *Player
	now   time.Time
	rng   *rand.Rand
	sched *Scheduler
	emit  func(except string, msg Envelope) // except = "" broadcasts to everyone
}

// AbilityHandler applies one class's effect
type AbilityHandler func(ctx *abilityCtx)

// abilityHandlers dispatches useAbility by class. Classes without an entry
// have no ability.
var abilityHandlers = map[PlayerClass]AbilityHandler{
	ClassNinja:     stealth,
	ClassMonkey:    grapple,
	ClassClown:     confetti,
	ClassSnowman:   freeze,
	ClassMole:      burrow,
	ClassAlien:     abduct,
	ClassScientist: shrink,
}

// useAbility runs the actor's class handler, if any
func useAbility(ctx *abilityCtx) bool {
	h, ok := abilityHandlers[ctx.actor.Class]
	if !ok {
		return false
	}
	h(ctx)
	return true
}

func stealth(ctx *abilityCtx) {
	ctx.actor.InvisibleUntil = ctx.now.Add(StealthDuration)
}

func grapple(ctx *abilityCtx) {
	a := ctx.actor
	x, y, ok := randomLanding(ctx.world.platforms, a.Radius, ctx.rng)
	if !ok {
		return
	}
	a.Glide = &Glide{Kind: GlideGrapple, X: x, Y: y}
}

func confetti(ctx *abilityCtx) {
	ctx.emit(ctx.actor.ID, Envelope{T: MsgConfetti, Data: EffectMsg{Duration: ConfettiDuration.Milliseconds()}})
}

func freeze(ctx *abilityCtx) {
	until := ctx.now.Add(FreezeDuration)
	for _, p := range ctx.world.Players() {
		if p.ID == ctx.actor.ID {
			continue
		}
		p.FrozenUntil = until
		p.VX = 0
		p.VY = 0
	}
	ctx.emit(ctx.actor.ID, Envelope{T: MsgFreeze, Data: EffectMsg{Duration: FreezeDuration.Milliseconds()}})
}

// burrow surfaces the actor just under the nearest non-ground platform
// directly overhead
func burrow(ctx *abilityCtx) {
	a := ctx.actor
	var best *Platform
	for i := range ctx.world.platforms {
		pl := &ctx.world.platforms[i]
		if pl.Ground || a.X < pl.X || a.X > pl.X+pl.W {
			continue
		}
		if pl.Y+pl.H >= a.Y-a.Radius {
			continue // not above the player
		}
		if best == nil || pl.Y+pl.H > best.Y+best.H {
			best = pl
		}
	}
	if best == nil {
		return
	}
	a.Y = best.Y + best.H + a.Radius + BurrowGap
	a.VY = BurrowNudge
	a.OnGround = false
	a.Glide = nil
}

func abduct(ctx *abilityCtx) {
	others := make([]string, 0, ctx.world.PlayerCount())
	for _, id := range ctx.world.IDs() {
		if id != ctx.actor.ID {
			others = append(others, id)
		}
	}
	target := ctx.world.Player(pickOne(ctx.rng, others))
	if target == nil {
		return
	}
	x, y, ok := randomLanding(ctx.world.platforms, target.Radius, ctx.rng)
	if !ok {
		return
	}
	target.Glide = &Glide{Kind: GlideAbduct, X: x, Y: y}
	ctx.emit("", Envelope{T: MsgAbductStart, Data: AbductMsg{TargetID: target.ID}})
}

// shrink halves the actor's radii once; a timer restores the stored originals
func shrink(ctx *abilityCtx) {
	a := ctx.actor
	if a.Shrunk {
		return
	}
	a.Shrunk = true
	a.Radius = a.baseRadius * ShrinkFactor
	a.HitRadius = a.baseHitRadius * ShrinkFactor

	w, id := ctx.world, a.ID
	a.shrinkTimer = ctx.sched.After(ShrinkDuration, func() {
		p := w.Player(id)
		if p == nil || !p.Shrunk {
			return
		}
		p.Radius = p.baseRadius
		p.HitRadius = p.baseHitRadius
		p.Shrunk = false
		p.shrinkTimer = nil
	})
}

// randomLanding picks a random point on top of a random non-ground platform
// where a circle of radius r can stand
func randomLanding(platforms []Platform, r float64, rng *rand.Rand) (float64, float64, bool) {
	candidates := make([]int, 0, len(platforms))
	for i := range platforms {
		if !platforms[i].Ground {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, 0, false
	}
	pl := platforms[candidates[rng.Intn(len(candidates))]]
	x := Clamp(randBetween(rng, pl.X, pl.X+pl.W), r, WorldWidth-r)
	return x, pl.Y - r, true
}
