package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate     = 60 // physics ticks per second
	TickDuration = time.Second / TickRate
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendRaw(data []byte) // pre-marshaled JSON text
	SendBinary(data []byte)
}

// Game is the one global session. A single mutex serialises ticks, timer
// callbacks and client intents, so an intent lands wholly before or after a tick.
type Game struct {
	mu      sync.Mutex
	world   *World
	session *Session
	sched   *Scheduler
	clock   Clock
	rng     *rand.Rand
	clients map[string]Broadcaster // playerID -> client
	names   *NamePolicy
	history *History
	tick    uint64
}

// GameOption customises a Game at construction
type GameOption func(*Game)

// WithClock replaces the wall clock
func WithClock(c Clock) GameOption {
	return func(g *Game) { g.clock = c }
}

// WithRand replaces the random source
func WithRand(r *rand.Rand) GameOption {
	return func(g *Game) { g.rng = r }
}

// WithHistory attaches a match history recorder
func WithHistory(h *History) GameOption {
	return func(g *Game) { g.history = h }
}

// NewGame creates an idle session on the default map
func NewGame(names *NamePolicy, opts ...GameOption) *Game {
	g := &Game{
		world:   NewWorld(),
		clock:   wallClock{},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		clients: make(map[string]Broadcaster),
		names:   names,
	}
	for _, o := range opts {
		o(g)
	}
	g.sched = NewScheduler(g.clock)
	g.session = newSession(g.sched)
	return g
}

// Run drives the fixed-rate tick until ctx is cancelled
func (g *Game) Run(ctx context.Context) {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-ctx.Done():
			return
		}
	}
}

// update runs due timers and, while running, one simulation tick
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	g.sched.Advance(now)
	if !g.session.Running() {
		return
	}
	g.tick++

	movePlatforms(g.world)
	stepPhysics(g.world, stepEnv{
		now: now,
		onTeleport: func(p *Player) {
			log.Debug().Str("player", p.ID).Msg("teleport")
			g.schedulePortalRespawn()
		},
	})
	if id := transferTag(g.world, now); id != "" {
		log.Debug().Str("it", id).Msg("tag")
	}
	g.broadcastState()
}

// Join adds a connection's player. A second join from the same connection is dropped.
func (g *Game) Join(id string, client Broadcaster, req JoinMsg) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.world.Player(id) != nil {
		return nil
	}
	name, reserved := g.names.Resolve(req, g.nameInUse)
	p := NewPlayer(id, name, ParseClass(req.Class))
	g.world.AddPlayer(p)
	if client != nil {
		g.clients[id] = client
	}

	welcome := WelcomeMsg{ID: id, Name: name, Class: string(p.Class)}
	if reserved {
		if t, err := g.names.IssueTicket(name); err == nil {
			welcome.Ticket = t
		} else {
			log.Warn().Err(err).Msg("issue ticket")
		}
	}
	g.sendTo(id, Envelope{T: MsgWelcome, Data: welcome})
	log.Info().Str("player", id).Str("name", name).Str("class", string(p.Class)).Int("players", g.world.PlayerCount()).Msg("join")

	switch g.session.phase {
	case PhaseIdle:
		if g.world.PlayerCount() >= MinPlayers {
			g.startVoting()
		} else {
			g.sendTo(id, Envelope{T: MsgWaitingForPlayers})
		}
	case PhaseVoting:
		g.sendTo(id, g.voteStartMsg())
		g.sendTo(id, Envelope{T: MsgMapVoteUpdate, Data: MapVoteUpdateMsg{Tally: g.session.tally()}})
	}
	return p
}

func (g *Game) nameInUse(name string) bool {
	for _, p := range g.world.players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Leave removes a connection's player and repairs the session
func (g *Game) Leave(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.clients, id)
	wasIt := g.world.itPlayer == id
	p := g.world.RemovePlayer(id)
	if p == nil {
		return
	}
	p.shrinkTimer.Stop()
	delete(g.session.votes, id)
	log.Info().Str("player", id).Int("players", g.world.PlayerCount()).Msg("leave")

	if wasIt {
		g.world.SetIt(pickOne(g.rng, g.world.IDs()))
		if it := g.world.It(); it != nil {
			it.LastTagged = g.clock.Now()
		}
	}

	if g.world.PlayerCount() < MinPlayers {
		if g.session.phase != PhaseIdle {
			g.enterIdle()
		}
		if ids := g.world.IDs(); len(ids) == 1 {
			g.sendTo(ids[0], Envelope{T: MsgReloadPage})
		}
		return
	}
	if g.session.phase == PhaseVoting {
		g.broadcastMsg(Envelope{T: MsgMapVoteUpdate, Data: MapVoteUpdateMsg{Tally: g.session.tally()}})
	}
}

// Move applies a movement intent. Dropped unless the match is running and
// the player is not frozen.
func (g *Game) Move(id, dir string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.world.Player(id)
	if p == nil || !g.session.Running() || p.Frozen(g.clock.Now()) {
		return
	}
	p.ApplyMove(dir)
}

// UseAbility triggers the player's class effect. Dropped unless the match is running.
func (g *Game) UseAbility(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.world.Player(id)
	if p == nil || !g.session.Running() {
		return
	}
	useAbility(&abilityCtx{
		world: g.world,
		actor: p,
		now:   g.clock.Now(),
		rng:   g.rng,
		sched: g.sched,
		emit:  g.broadcastExcept,
	})
}

// Vote records or replaces a connection's map vote
func (g *Game) Vote(id string, idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session.phase != PhaseVoting || g.world.Player(id) == nil {
		return
	}
	if idx < 0 || idx >= len(Maps) {
		return
	}
	g.session.votes[id] = idx
	g.broadcastMsg(Envelope{T: MsgMapVoteUpdate, Data: MapVoteUpdateMsg{Tally: g.session.tally()}})
}

// Status reports the phase and player count
func (g *Game) Status() (Phase, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session.phase, g.world.PlayerCount()
}

// broadcastState sends the msgpack snapshot to every client
func (g *Game) broadcastState() {
	data, err := msgpack.Marshal(g.world.Snapshot(g.session.Running()))
	if err != nil {
		log.Error().Err(err).Msg("encode state")
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

// broadcastMsg sends a message to all clients in the session
func (g *Game) broadcastMsg(msg Envelope) {
	g.broadcastExcept("", msg)
}

func (g *Game) broadcastExcept(except string, msg Envelope) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.T).Msg("marshal")
		return
	}
	for id, client := range g.clients {
		if id == except {
			continue
		}
		client.SendRaw(data)
	}
}

func (g *Game) sendTo(id string, msg Envelope) {
	if client, ok := g.clients[id]; ok {
		client.SendJSON(msg)
	}
}
