package main

// World is the single owned aggregate of simulation state. Only the Game,
// holding its lock, reads or writes it.
type World struct {
	players   map[string]*Player
	order     []string // join order; the stable enumeration order for physics and tagging
	platforms []Platform
	jumpPads  []JumpPad
	portals   *PortalPair
	gravity   float64
	mapIndex  int
	itPlayer  string
}

// NewWorld creates a world on the default map
func NewWorld() *World {
	w := &World{
		players:  make(map[string]*Player),
		jumpPads: append([]JumpPad(nil), DefaultJumpPads...),
	}
	w.SetMap(0)
	return w
}

// SetMap swaps in a fresh copy of the map's platform set and gravity
func (w *World) SetMap(idx int) {
	if idx < 0 || idx >= len(Maps) {
		idx = 0
	}
	m := Maps[idx]
	w.mapIndex = idx
	w.platforms = m.Instantiate()
	w.gravity = m.Gravity
}

// AddPlayer inserts p; an existing record with the same id is replaced in place
func (w *World) AddPlayer(p *Player) {
	if _, ok := w.players[p.ID]; !ok {
		w.order = append(w.order, p.ID)
	}
	w.players[p.ID] = p
}

// RemovePlayer deletes the record and returns it, or nil if unknown
func (w *World) RemovePlayer(id string) *Player {
	p, ok := w.players[id]
	if !ok {
		return nil
	}
	delete(w.players, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	if w.itPlayer == id {
		w.itPlayer = ""
	}
	return p
}

// Player looks up a record; stale ids yield nil
func (w *World) Player(id string) *Player {
	return w.players[id]
}

// Players returns records in stable join order
func (w *World) Players() []*Player {
	out := make([]*Player, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.players[id])
	}
	return out
}

// IDs returns player ids in stable join order
func (w *World) IDs() []string {
	return append([]string(nil), w.order...)
}

// PlayerCount returns the number of connected players
func (w *World) PlayerCount() int {
	return len(w.players)
}

// It returns the current it-holder, or nil
func (w *World) It() *Player {
	if w.itPlayer == "" {
		return nil
	}
	return w.players[w.itPlayer]
}

// SetIt makes id the only it-holder. An unknown id clears the role.
func (w *World) SetIt(id string) {
	for _, p := range w.players {
		p.IsIt = false
	}
	p, ok := w.players[id]
	if !ok {
		w.itPlayer = ""
		return
	}
	p.IsIt = true
	w.itPlayer = id
}

// ClearIt removes the it role from everyone
func (w *World) ClearIt() {
	w.SetIt("")
}

// Snapshot builds the broadcast state
func (w *World) Snapshot(running bool) GameState {
	st := GameState{
		Players:     make([]PlayerState, 0, len(w.order)),
		Platforms:   make([]PlatformState, 0, len(w.platforms)),
		Portals:     make([]PortalState, 0, 2),
		JumpPads:    make([]JumpPadState, 0, len(w.jumpPads)),
		GameRunning: running,
		ItPlayer:    w.itPlayer,
	}
	for _, p := range w.Players() {
		st.Players = append(st.Players, p.ToState())
	}
	for i := range w.platforms {
		st.Platforms = append(st.Platforms, w.platforms[i].ToState())
	}
	if w.portals != nil {
		for _, pt := range w.portals.Portals {
			st.Portals = append(st.Portals, PortalState{X: pt.X, Y: pt.Y, Active: pt.Active})
		}
	}
	for _, jp := range w.jumpPads {
		st.JumpPads = append(st.JumpPads, JumpPadState{X: jp.X, Y: jp.Y, W: jp.W, H: jp.H, Power: jp.Power})
	}
	return st
}
