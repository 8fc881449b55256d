package main

import (
	"math/rand"
	"time"
)

const (
	PortalCooldown = 20 * time.Second
	TeleportRadius = 0.03
	TeleportOffset = 0.05 // exit above the paired portal so it does not re-trigger
	PortalLift     = 0.04 // portal height above its platform's top
)

// Portal is one end of a teleport pair
type Portal struct {
	X, Y   float64
	Active bool
}

// PortalPair holds two linked portals that are always both active or both inactive
type PortalPair struct {
	Portals [2]Portal
}

// SpawnPortalPair places an active pair on two distinct random platforms.
// Returns nil when fewer than two platforms exist.
func SpawnPortalPair(platforms []Platform, rng *rand.Rand) *PortalPair {
	if len(platforms) < 2 {
		return nil
	}
	first := rng.Intn(len(platforms))
	second := rng.Intn(len(platforms) - 1)
	if second >= first {
		second++
	}
	a, b := platforms[first], platforms[second]
	return &PortalPair{Portals: [2]Portal{
		{X: randBetween(rng, a.X, a.X+a.W), Y: a.Y - PortalLift, Active: true},
		{X: randBetween(rng, b.X, b.X+b.W), Y: b.Y - PortalLift, Active: true},
	}}
}

// Active reports whether the pair can teleport
func (pp *PortalPair) Active() bool {
	return pp != nil && pp.Portals[0].Active && pp.Portals[1].Active
}

// Teleport moves p to the far portal if it stands on either one, then
// deactivates the pair. Returns true if a teleport happened.
func (pp *PortalPair) Teleport(p *Player) bool {
	if !pp.Active() {
		return false
	}
	for i := range pp.Portals {
		in, out := pp.Portals[i], pp.Portals[1-i]
		if within(p.X, p.Y, in.X, in.Y, TeleportRadius) {
			p.X = out.X
			p.Y = out.Y - TeleportOffset
			pp.Portals[0].Active = false
			pp.Portals[1].Active = false
			return true
		}
	}
	return false
}
