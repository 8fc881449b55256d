package main

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// startTestServer spins up an httptest.Server with a live Game and Hub and
// returns the server and its WebSocket URL
func startTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte("<html>test</html>"), 0o644))

	history, err := OpenHistory(":memory:")
	require.NoError(t, err)
	names, err := NewNamePolicy(map[string]string{"Captain": "hunter2"}, []byte("test-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	game := NewGame(names, WithHistory(history), WithRand(rand.New(rand.NewSource(1))))
	go game.Run(ctx)
	hub := NewHub(game)
	go hub.Run(ctx)

	srv := httptest.NewServer(SetupRoutes(hub, history, Config{ClientDir: tmpDir}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		history.Close()
	})
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

// dialWS opens a WebSocket connection to the test server
func dialWS(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type inbound struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d"`
}

// readUntil reads text messages until one of type typ arrives, skipping the rest
func readUntil(t *testing.T, conn *websocket.Conn, typ string) inbound {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		msgType, raw, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", typ)
		if msgType != websocket.TextMessage {
			continue
		}
		var env inbound
		require.NoError(t, json.Unmarshal(raw, &env))
		if env.T == typ {
			return env
		}
	}
}

func sendMsg(t *testing.T, conn *websocket.Conn, typ string, data interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(Envelope{T: typ, Data: data}))
}

func getJSON(t *testing.T, url string, v interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestIntegrationJoinAndVote(t *testing.T) {
	srv, wsURL := startTestServer(t)

	alice := dialWS(t, wsURL)
	sendMsg(t, alice, MsgJoin, JoinMsg{Name: "Alice", Class: "ninja"})
	env := readUntil(t, alice, MsgWelcome)
	var welcome WelcomeMsg
	require.NoError(t, json.Unmarshal(env.D, &welcome))
	assert.Equal(t, "Alice", welcome.Name)
	assert.Equal(t, "ninja", welcome.Class)
	assert.NotEmpty(t, welcome.ID)
	assert.Empty(t, welcome.Ticket)
	readUntil(t, alice, MsgWaitingForPlayers)

	bob := dialWS(t, wsURL)
	sendMsg(t, bob, MsgJoin, JoinMsg{Password: "hunter2"})
	env = readUntil(t, bob, MsgWelcome)
	require.NoError(t, json.Unmarshal(env.D, &welcome))
	assert.Equal(t, "Captain", welcome.Name)
	assert.NotEmpty(t, welcome.Ticket)

	env = readUntil(t, alice, MsgMapVoteStart)
	var start MapVoteStartMsg
	require.NoError(t, json.Unmarshal(env.D, &start))
	assert.Equal(t, len(Maps), start.MapCount)
	readUntil(t, bob, MsgMapVoteStart)

	sendMsg(t, bob, MsgVoteMap, VoteMsg{Index: 2})
	env = readUntil(t, alice, MsgMapVoteUpdate)
	var tally MapVoteUpdateMsg
	require.NoError(t, json.Unmarshal(env.D, &tally))
	assert.Equal(t, []int{0, 0, 1}, tally.Tally)

	var health map[string]interface{}
	getJSON(t, srv.URL+"/healthz", &health)
	assert.Equal(t, "voting", health["phase"])
	assert.Equal(t, float64(2), health["players"])

	// dropping to one player resets the session and tells the survivor to reload
	bob.Close()
	readUntil(t, alice, MsgWaitingForPlayers)
	readUntil(t, alice, MsgReloadPage)
}

func TestIntegrationMalformedInputIgnored(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn := dialWS(t, wsURL)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	sendMsg(t, conn, MsgMove, MoveMsg{Direction: DirLeft})
	sendMsg(t, conn, "teleportMe", nil)
	sendMsg(t, conn, MsgJoin, JoinMsg{Name: "Zed"})
	env := readUntil(t, conn, MsgWelcome)
	var welcome WelcomeMsg
	require.NoError(t, json.Unmarshal(env.D, &welcome))
	assert.Equal(t, "Zed", welcome.Name)
}

func TestIntegrationHTTPEndpoints(t *testing.T) {
	srv, _ := startTestServer(t)

	var matches []MatchRecord
	getJSON(t, srv.URL+"/matches", &matches)
	assert.Empty(t, matches)

	resp, err := http.Get(srv.URL + "/qr.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, len(body) > 8 && string(body[1:4]) == "PNG")

	resp2, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp2.Body.Close()
	page, _ := io.ReadAll(resp2.Body)
	assert.Contains(t, string(page), "test")
	assert.Equal(t, "no-cache", resp2.Header.Get("Cache-Control"))
}

func TestJoinURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://game.local:3000/qr.png", nil)
	assert.Equal(t, "http://game.local:3000/", joinURL("", r))
	assert.Equal(t, "https://tag.example/", joinURL("https://tag.example/", r))

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://game.local:3000/", joinURL("", r))
}
