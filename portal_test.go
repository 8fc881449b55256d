package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPortals() *PortalPair {
	return &PortalPair{Portals: [2]Portal{
		{X: 1.0, Y: 0.5, Active: true},
		{X: 2.0, Y: 0.5, Active: true},
	}}
}

func TestPortalTeleportDeactivatesPair(t *testing.T) {
	w := newTestWorld("a")
	w.portals = testPortals()
	p := w.Player("a")
	p.X, p.Y = 1.0, 0.5

	teleports := 0
	env := stepEnv{now: physicsEpoch, onTeleport: func(*Player) { teleports++ }}
	stepPhysics(w, env)

	assert.Equal(t, 1, teleports)
	assert.Equal(t, 2.0, p.X)
	assert.InDelta(t, 0.5-TeleportOffset, p.Y, 1e-12)
	assert.False(t, w.portals.Active())
	assert.False(t, w.portals.Portals[0].Active)
	assert.False(t, w.portals.Portals[1].Active)

	// standing on the far portal does nothing while the pair is spent
	p.X, p.Y, p.VY = 2.0, 0.5, 0
	stepPhysics(w, env)
	assert.Equal(t, 1, teleports)
}

func TestPortalTeleportWorksBothWays(t *testing.T) {
	pp := testPortals()
	p := NewPlayer("a", "a", ClassBase)
	p.X, p.Y = 2.01, 0.49
	require.True(t, pp.Teleport(p))
	assert.Equal(t, 1.0, p.X)
	assert.InDelta(t, 0.5-TeleportOffset, p.Y, 1e-12)
}

func TestPortalNilPairIsInert(t *testing.T) {
	var pp *PortalPair
	assert.False(t, pp.Active())
	assert.False(t, pp.Teleport(NewPlayer("a", "a", ClassBase)))
}

func TestSpawnPortalPairUsesDistinctPlatforms(t *testing.T) {
	platforms := []Platform{static(0, 0.3, 1, 0.03), static(1, 0.7, 1, 0.03)}
	for seed := int64(0); seed < 100; seed++ {
		pp := SpawnPortalPair(platforms, rand.New(rand.NewSource(seed)))
		require.NotNil(t, pp)
		assert.True(t, pp.Active())
		assert.NotEqual(t, pp.Portals[0].Y, pp.Portals[1].Y)
		for _, pt := range pp.Portals {
			assert.Contains(t, []float64{0.3 - PortalLift, 0.7 - PortalLift}, pt.Y)
		}
	}
	assert.Nil(t, SpawnPortalPair(platforms[:1], rand.New(rand.NewSource(1))))
}

func TestPortalRespawnsAfterCooldown(t *testing.T) {
	g, clk, _, _ := startMatch(t)
	far := clk.Now().Add(time.Hour)
	a, b := g.world.Player("a"), g.world.Player("b")
	b.X, b.FrozenUntil = 2.8, far
	g.world.portals = testPortals()
	a.X, a.Y, a.VY = 1.0, 0.5, 0

	runFor(g, clk, TickDuration)
	require.False(t, g.world.portals.Active())
	a.FrozenUntil = far

	runFor(g, clk, PortalCooldown-2*TickDuration)
	assert.False(t, g.world.portals.Active())

	runFor(g, clk, 2*TickDuration)
	assert.True(t, g.world.portals.Active())
}
