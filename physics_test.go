package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(ids ...string) *World {
	w := NewWorld()
	for _, id := range ids {
		w.AddPlayer(NewPlayer(id, id, ClassBase))
	}
	return w
}

var physicsEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestPhysicsGroundClamp(t *testing.T) {
	w := newTestWorld("a")
	w.platforms = nil
	p := w.Player("a")
	p.X, p.Y, p.VY = 2.9, 0.88, 0.05

	stepPhysics(w, stepEnv{now: physicsEpoch})
	assert.InDelta(t, GroundLine-p.Radius, p.Y, 1e-12)
	assert.Zero(t, p.VY)
	assert.True(t, p.OnGround)
}

func TestPhysicsBoundsHoldUnderRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for m := range Maps {
		w := newTestWorld("a", "b", "c")
		w.SetMap(m)
		now := physicsEpoch
		dirs := []string{DirLeft, DirRight, DirJump}
		for i := 0; i < 3000; i++ {
			for _, p := range w.Players() {
				if rng.Intn(3) == 0 {
					p.VX += (rng.Float64() - 0.5) * 0.2
				}
				p.ApplyMove(dirs[rng.Intn(len(dirs))])
			}
			movePlatforms(w)
			stepPhysics(w, stepEnv{now: now})
			now = now.Add(TickDuration)

			for _, p := range w.Players() {
				require.LessOrEqual(t, p.Y+p.Radius, GroundLine+1e-9, "map %d tick %d", m, i)
				require.GreaterOrEqual(t, p.X, p.Radius-1e-9)
				require.LessOrEqual(t, p.X, WorldWidth-p.Radius+1e-9)
			}
		}
	}
}

func TestPhysicsLandsOnPlatform(t *testing.T) {
	w := newTestWorld("a")
	p := w.Player("a")
	// Classic platform at x 0.2..0.5, top 0.72
	p.X, p.Y, p.VY = 0.35, 0.699, 0.005

	stepPhysics(w, stepEnv{now: physicsEpoch})
	assert.InDelta(t, 0.72-PlayerRadius, p.Y, 1e-12)
	assert.Zero(t, p.VY)
	assert.True(t, p.OnGround)
}

func TestPhysicsHeadBump(t *testing.T) {
	w := newTestWorld("a")
	p := w.Player("a")
	p.X, p.Y, p.VY = 0.35, 0.771, -0.01

	stepPhysics(w, stepEnv{now: physicsEpoch})
	assert.InDelta(t, 0.75+PlayerRadius, p.Y, 1e-12)
	assert.Zero(t, p.VY)
	assert.False(t, p.OnGround)
}

func TestPhysicsFrictionDecay(t *testing.T) {
	w := newTestWorld("a")
	p := w.Player("a")
	p.X, p.Y, p.VX = 2.8, GroundLine-PlayerRadius, 0.01

	stepPhysics(w, stepEnv{now: physicsEpoch})
	assert.InDelta(t, 2.81, p.X, 1e-12)
	assert.InDelta(t, 0.0085, p.VX, 1e-12)
}

func TestPhysicsJumpPad(t *testing.T) {
	w := newTestWorld("a")
	p := w.Player("a")
	p.X, p.Y = 0.98, GroundLine-0.03-PlayerRadius+0.01

	stepPhysics(w, stepEnv{now: physicsEpoch})
	assert.Equal(t, -0.04, p.VY)
}

func TestMovingPlatformStaysInRange(t *testing.T) {
	for _, m := range Maps {
		platforms := m.Instantiate()
		for i := 0; i < 5000; i++ {
			for j := range platforms {
				pl := &platforms[j]
				pl.Move()
				if pl.Kind != PlatformMoving {
					continue
				}
				switch pl.Direction {
				case AxisHorizontal:
					require.GreaterOrEqual(t, pl.X, pl.OriginX-pl.Range-1e-9)
					require.LessOrEqual(t, pl.X, pl.OriginX+pl.Range+1e-9)
				case AxisVertical:
					require.GreaterOrEqual(t, pl.Y, pl.OriginY-pl.Range-1e-9)
					require.LessOrEqual(t, pl.Y, pl.OriginY+pl.Range+1e-9)
				}
			}
		}
	}
}

func TestMapInstantiateIsACopy(t *testing.T) {
	w := newTestWorld()
	w.SetMap(1)
	for i := 0; i < 100; i++ {
		movePlatforms(w)
	}
	assert.Equal(t, 0.7, Maps[1].Platforms[2].X, "catalog is never mutated")
	assert.NotEqual(t, 0.7, w.platforms[2].X)
}

func TestPhysicsRideAlong(t *testing.T) {
	w := newTestWorld("a")
	w.platforms = []Platform{
		ground(),
		moving(1.0, 0.6, 0.3, 0.03, AxisHorizontal, 0.003, 0.3),
	}
	p := w.Player("a")
	p.X, p.Y = 1.15, 0.6-PlayerRadius

	movePlatforms(w)
	stepPhysics(w, stepEnv{now: physicsEpoch})
	assert.InDelta(t, 1.153, p.X, 1e-9)
	assert.True(t, p.OnGround)
}

func TestPhysicsGlideArrives(t *testing.T) {
	w := newTestWorld("a")
	w.platforms = []Platform{ground()}
	p := w.Player("a")
	p.Glide = &Glide{Kind: GlideGrapple, X: 1.0, Y: 0.3}

	now := physicsEpoch
	for i := 0; i < 100 && p.Glide != nil; i++ {
		stepPhysics(w, stepEnv{now: now})
		now = now.Add(TickDuration)
	}
	require.Nil(t, p.Glide)
	assert.Equal(t, 1.0, p.X)
	assert.Equal(t, 0.3, p.Y)
	assert.Zero(t, p.VX)
	assert.Zero(t, p.VY)
}

func TestPhysicsStealthDerivedEachTick(t *testing.T) {
	w := newTestWorld("a")
	p := w.Player("a")
	p.InvisibleUntil = physicsEpoch.Add(StealthDuration)
	assert.False(t, p.Invisible())

	stepPhysics(w, stepEnv{now: physicsEpoch})
	assert.True(t, p.Invisible())
	assert.True(t, p.ToState().Invisible)

	stepPhysics(w, stepEnv{now: physicsEpoch.Add(StealthDuration)})
	assert.False(t, p.Invisible())
}

func TestPhysicsFreezeHoldsStill(t *testing.T) {
	w := newTestWorld("snow", "b")
	snow, b := w.Player("snow"), w.Player("b")
	snow.Class = ClassSnowman
	b.X, b.Y, b.VX = 2.5, GroundLine-PlayerRadius, 0.01

	var sent []Envelope
	ok := useAbility(&abilityCtx{
		world: w,
		actor: snow,
		now:   physicsEpoch,
		rng:   rand.New(rand.NewSource(1)),
		sched: NewScheduler(newManualClock()),
		emit:  func(_ string, msg Envelope) { sent = append(sent, msg) },
	})
	require.True(t, ok)
	require.Len(t, sent, 1)
	assert.Equal(t, MsgFreeze, sent[0].T)
	assert.Equal(t, physicsEpoch.Add(FreezeDuration), b.FrozenUntil)
	assert.True(t, snow.FrozenUntil.IsZero(), "the user is not frozen")

	x := b.X
	now := physicsEpoch
	for now.Before(b.FrozenUntil) {
		b.ApplyMove(DirRight)
		stepPhysics(w, stepEnv{now: now})
		require.Zero(t, b.VX)
		require.Zero(t, b.VY)
		require.Equal(t, x, b.X)
		now = now.Add(TickDuration)
	}

	b.ApplyMove(DirRight)
	stepPhysics(w, stepEnv{now: now})
	assert.NotZero(t, b.VX)
	assert.Greater(t, b.X, x)
}

func TestPhysicsFrozenIgnoresCarriedVelocity(t *testing.T) {
	w := newTestWorld("a")
	p := w.Player("a")
	p.X, p.Y, p.OnGround = 2.8, 0.87, true
	p.FrozenUntil = physicsEpoch.Add(time.Second)
	p.VY, p.VX = JumpForce, 0.01

	stepPhysics(w, stepEnv{now: physicsEpoch})
	assert.InDelta(t, 0.87, p.Y, 1e-12)
	assert.Equal(t, 2.8, p.X)
	assert.Zero(t, p.VY)
	assert.Zero(t, p.VX)
	assert.True(t, p.OnGround)
}
