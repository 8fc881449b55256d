package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin       = "join"
	MsgMove       = "move"
	MsgUseAbility = "useAbility"
	MsgVoteMap    = "voteMap"
)

// Server -> Client message types
const (
	MsgState             = "state"
	MsgWelcome           = "welcome"
	MsgCountdown         = "countdown"
	MsgTimer             = "timer"
	MsgLoser             = "loser"
	MsgMapVoteStart      = "mapVoteStart"
	MsgMapVoteUpdate     = "mapVoteUpdate"
	MsgMapChosen         = "mapChosen"
	MsgInitGame          = "initGame"
	MsgWaitingForPlayers = "waitingForPlayers"
	MsgReloadPage        = "reloadPage"
	MsgConfetti          = "confetti"
	MsgFreeze            = "freeze"
	MsgAbductStart       = "abductStart"
)

// Move directions
const (
	DirLeft  = "left"
	DirRight = "right"
	DirJump  = "jump"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; D is decoded per type
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// JoinMsg is sent once per connection to enter the session
type JoinMsg struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
	Class    string `json:"class"`
	Ticket   string `json:"ticket,omitempty"` // reclaims a reserved name after reloadPage
}

// MoveMsg carries one movement intent
type MoveMsg struct {
	Direction string `json:"direction"`
}

// VoteMsg casts or replaces a map vote
type VoteMsg struct {
	Index int `json:"index"`
}

// WelcomeMsg is sent to a player when they join
type WelcomeMsg struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Class  string `json:"class"`
	Ticket string `json:"ticket,omitempty"`
}

// PlayerState is broadcast per player each tick
type PlayerState struct {
	ID        string  `json:"id" msgpack:"id"`
	Name      string  `json:"name" msgpack:"name"`
	Class     string  `json:"class" msgpack:"class"`
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	VX        float64 `json:"vx" msgpack:"vx"`
	VY        float64 `json:"vy" msgpack:"vy"`
	Radius    float64 `json:"radius" msgpack:"radius"`
	HitRadius float64 `json:"hitRadius" msgpack:"hitRadius"`
	OnGround  bool    `json:"onGround" msgpack:"onGround"`
	IsIt      bool    `json:"isIt" msgpack:"isIt"`
	Invisible bool    `json:"invisible" msgpack:"invisible"`
	Gliding   bool    `json:"gliding,omitempty" msgpack:"gliding,omitempty"`
	Shrunk    bool    `json:"shrunk,omitempty" msgpack:"shrunk,omitempty"`
}

// PlatformState is broadcast per platform
type PlatformState struct {
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	W         float64 `json:"w" msgpack:"w"`
	H         float64 `json:"h" msgpack:"h"`
	Type      string  `json:"type" msgpack:"type"`
	Direction string  `json:"direction,omitempty" msgpack:"direction,omitempty"`
}

// PortalState is broadcast per portal
type PortalState struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Active bool    `json:"active" msgpack:"active"`
}

// JumpPadState is broadcast per jump pad
type JumpPadState struct {
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	W     float64 `json:"w" msgpack:"w"`
	H     float64 `json:"h" msgpack:"h"`
	Power float64 `json:"power" msgpack:"power"`
}

// GameState is the full state broadcast
type GameState struct {
	Players     []PlayerState   `json:"players" msgpack:"players"`
	Platforms   []PlatformState `json:"platforms" msgpack:"platforms"`
	Portals     []PortalState   `json:"portals" msgpack:"portals"`
	JumpPads    []JumpPadState  `json:"jumpPads" msgpack:"jumpPads"`
	GameRunning bool            `json:"gameRunning" msgpack:"gameRunning"`
	ItPlayer    string          `json:"itPlayer" msgpack:"itPlayer"`
}

// CountdownMsg is broadcast once per second during countdown
type CountdownMsg struct {
	Value int `json:"value"`
}

// TimerMsg is broadcast once per second while running
type TimerMsg struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

// LoserMsg names the it-holder when the match timer expires
type LoserMsg struct {
	Name string `json:"name"`
}

// MapVoteStartMsg opens the voting window
type MapVoteStartMsg struct {
	MapCount int      `json:"mapCount"`
	Names    []string `json:"names"`
	Seconds  int      `json:"seconds"`
}

// MapVoteUpdateMsg carries vote counts indexed by map
type MapVoteUpdateMsg struct {
	Tally []int `json:"tally"`
}

// MapChosenMsg announces the winning map
type MapChosenMsg struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// EffectMsg is a cosmetic area effect lasting Duration milliseconds
type EffectMsg struct {
	Duration int64 `json:"duration"`
}

// AbductMsg names the player being abducted
type AbductMsg struct {
	TargetID string `json:"targetId"`
}
