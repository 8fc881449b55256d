package main

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256

	// move intents arrive once per held key per client frame
	intentRate     = 240
	intentBurst    = 120
	maxDroppedPerS = 600
)

// Client represents a WebSocket connection
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	id          string
	remoteAddr  string
	limiter     *rate.Limiter
	dropped     int
	dropResetAt time.Time
}

// NewClient creates a new Client with a fresh connection id
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		id:         uuid.NewString(),
		remoteAddr: remoteAddr,
		limiter:    rate.NewLimiter(intentRate, intentBurst),
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn", c.id).Msg("ws read")
			}
			break
		}

		if !c.limiter.Allow() {
			now := time.Now()
			if now.After(c.dropResetAt) {
				c.dropped = 0
				c.dropResetAt = now.Add(time.Second)
			}
			c.dropped++
			if c.dropped > maxDroppedPerS {
				log.Warn().Str("conn", c.id).Str("addr", c.remoteAddr).Msg("intent flood, disconnecting")
				break
			}
			continue
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("marshal")
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message
// Prefixes with 0xFF marker byte so WritePump can distinguish from text
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// handleMessage routes incoming intents. Malformed ones are dropped silently.
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Debug().Err(err).Str("conn", c.id).Msg("bad envelope")
		return
	}

	game := c.hub.game
	switch env.T {
	case MsgJoin:
		var msg JoinMsg
		if err := json.Unmarshal(env.D, &msg); err != nil {
			return
		}
		game.Join(c.id, c, msg)
	case MsgMove:
		if dir, ok := decodeMove(env.D); ok {
			game.Move(c.id, dir)
		}
	case MsgUseAbility:
		game.UseAbility(c.id)
	case MsgVoteMap:
		if idx, ok := decodeVote(env.D); ok {
			game.Vote(c.id, idx)
		}
	}
}

// decodeMove accepts {"direction":"left"} or a bare "left"
func decodeMove(d json.RawMessage) (string, bool) {
	var msg MoveMsg
	if err := json.Unmarshal(d, &msg); err == nil && msg.Direction != "" {
		return msg.Direction, true
	}
	var dir string
	if err := json.Unmarshal(d, &dir); err == nil && dir != "" {
		return dir, true
	}
	return "", false
}

// decodeVote accepts {"index":1} or a bare 1. A missing index is not a vote.
func decodeVote(d json.RawMessage) (int, bool) {
	var msg struct {
		Index *int `json:"index"`
	}
	if err := json.Unmarshal(d, &msg); err == nil && msg.Index != nil {
		return *msg.Index, true
	}
	var idx *int
	if err := json.Unmarshal(d, &idx); err == nil && idx != nil {
		return *idx, true
	}
	return 0, false
}
