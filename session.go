package main

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Phase is one state of the session lifecycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseVoting
	PhaseCountdown
	PhaseRunning
)

func (p Phase) String() string {
	switch p {
	case PhaseVoting:
		return "voting"
	case PhaseCountdown:
		return "countdown"
	case PhaseRunning:
		return "running"
	default:
		return "idle"
	}
}

// Session timings
const (
	MatchDuration  = 180 // seconds
	CountdownStart = 4
	VoteDuration   = 10 * time.Second
	MinPlayers     = 2
)

// Session holds lifecycle scalars. Every phase owns one TimerGroup that is
// stopped before the next phase starts, so a timer can never outlive its phase.
type Session struct {
	phase     Phase
	countdown int
	timer     int // seconds remaining in the match
	votes     map[string]int
	timers    *TimerGroup
	startedAt time.Time
}

func newSession(s *Scheduler) *Session {
	return &Session{
		votes:  make(map[string]int),
		timers: s.Group(),
	}
}

// Running reports whether the match clock is live
func (s *Session) Running() bool {
	return s.phase == PhaseRunning
}

// transition cancels the outgoing phase's timers and enters next
func (g *Game) transition(next Phase) {
	g.session.timers.StopAll()
	prev := g.session.phase
	g.session.phase = next
	log.Debug().Str("from", prev.String()).Str("to", next.String()).Int("players", g.world.PlayerCount()).Msg("phase")
}

// enterIdle resets the world to defaults and waits for players
func (g *Game) enterIdle() {
	g.transition(PhaseIdle)
	g.session.votes = make(map[string]int)
	g.session.countdown = 0
	g.session.timer = 0
	g.world.ClearIt()
	g.world.portals = nil
	g.world.SetMap(0)
	g.broadcastMsg(Envelope{T: MsgWaitingForPlayers})
}

// startVoting opens the map vote window
func (g *Game) startVoting() {
	g.transition(PhaseVoting)
	g.session.votes = make(map[string]int)
	g.world.ClearIt()
	g.world.portals = nil
	g.broadcastMsg(g.voteStartMsg())
	g.session.timers.After(VoteDuration, g.closeVoting)
}

func (g *Game) voteStartMsg() Envelope {
	return Envelope{T: MsgMapVoteStart, Data: MapVoteStartMsg{
		MapCount: len(Maps),
		Names:    MapNames(),
		Seconds:  int(VoteDuration / time.Second),
	}}
}

// tally counts the current votes per map index
func (s *Session) tally() []int {
	counts := make([]int, len(Maps))
	for _, idx := range s.votes {
		if idx >= 0 && idx < len(counts) {
			counts[idx]++
		}
	}
	return counts
}

// chooseMap returns the index with the highest count, breaking ties uniformly at random
func chooseMap(counts []int, pick func(n int) int) int {
	best := -1
	var tied []int
	for i, c := range counts {
		switch {
		case c > best:
			best = c
			tied = append(tied[:0], i)
		case c == best:
			tied = append(tied, i)
		}
	}
	if len(tied) == 0 {
		return 0
	}
	return tied[pick(len(tied))]
}

func (g *Game) closeVoting() {
	idx := chooseMap(g.session.tally(), g.rng.Intn)
	g.world.SetMap(idx)
	log.Info().Int("map", idx).Str("name", Maps[idx].Name).Msg("map chosen")
	g.broadcastMsg(Envelope{T: MsgMapChosen, Data: MapChosenMsg{Index: idx, Name: Maps[idx].Name}})
	g.startCountdown()
}

func (g *Game) startCountdown() {
	g.transition(PhaseCountdown)
	g.session.countdown = CountdownStart
	g.session.timer = MatchDuration
	g.broadcastMsg(Envelope{T: MsgInitGame})
	g.session.timers.Every(time.Second, func() {
		g.session.countdown--
		g.broadcastMsg(Envelope{T: MsgCountdown, Data: CountdownMsg{Value: g.session.countdown}})
		if g.session.countdown <= 0 {
			g.startRunning()
		}
	})
}

// startRunning is the only place the session becomes running
func (g *Game) startRunning() {
	g.transition(PhaseRunning)
	g.session.timer = MatchDuration
	g.session.startedAt = g.clock.Now()
	g.world.SetIt(pickOne(g.rng, g.world.IDs()))
	if it := g.world.It(); it != nil {
		it.LastTagged = g.session.startedAt
	}
	g.world.portals = SpawnPortalPair(g.world.platforms, g.rng)
	log.Info().Str("it", g.world.itPlayer).Int("players", g.world.PlayerCount()).Msg("match started")
	g.session.timers.Every(time.Second, g.matchTick)
}

func (g *Game) matchTick() {
	g.session.timer--
	g.broadcastMsg(Envelope{T: MsgTimer, Data: TimerMsg{SecondsRemaining: g.session.timer}})
	if g.session.timer > 0 {
		return
	}
	g.endMatch()
}

// endMatch names the loser and moves to the next round or back to idle
func (g *Game) endMatch() {
	loser := ""
	if it := g.world.It(); it != nil {
		loser = it.Name
		g.broadcastMsg(Envelope{T: MsgLoser, Data: LoserMsg{Name: loser}})
	}
	g.history.Record(MatchRecord{
		Map:      Maps[g.world.mapIndex].Name,
		Loser:    loser,
		Players:  g.world.PlayerCount(),
		Duration: g.clock.Now().Sub(g.session.startedAt),
		EndedAt:  g.clock.Now(),
	})
	log.Info().Str("loser", loser).Msg("match ended")
	if g.world.PlayerCount() >= MinPlayers {
		g.startVoting()
		return
	}
	g.enterIdle()
}

// schedulePortalRespawn replaces the spent pair after the cooldown. The timer
// belongs to the running phase and dies with it.
func (g *Game) schedulePortalRespawn() {
	g.session.timers.After(PortalCooldown, func() {
		g.world.portals = SpawnPortalPair(g.world.platforms, g.rng)
	})
}
