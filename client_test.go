package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMove(t *testing.T) {
	dir, ok := decodeMove(json.RawMessage(`{"direction":"left"}`))
	assert.True(t, ok)
	assert.Equal(t, DirLeft, dir)

	dir, ok = decodeMove(json.RawMessage(`"jump"`))
	assert.True(t, ok)
	assert.Equal(t, DirJump, dir)

	_, ok = decodeMove(json.RawMessage(`{}`))
	assert.False(t, ok)
	_, ok = decodeMove(nil)
	assert.False(t, ok)
	_, ok = decodeMove(json.RawMessage(`42`))
	assert.False(t, ok)
}

func TestDecodeVote(t *testing.T) {
	idx, ok := decodeVote(json.RawMessage(`{"index":2}`))
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	idx, ok = decodeVote(json.RawMessage(`1`))
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = decodeVote(json.RawMessage(`{"index":0}`))
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	for _, bad := range []string{`"one"`, `null`, `{}`, `{"idx":2}`, `{"index":null}`} {
		_, ok = decodeVote(json.RawMessage(bad))
		assert.False(t, ok, bad)
	}
	_, ok = decodeVote(nil)
	assert.False(t, ok)
}

func TestMalformedVoteNotCounted(t *testing.T) {
	g, _ := newTestGame(t)
	a := &mockBroadcaster{}
	g.Join("a", a, JoinMsg{Name: "Alice"})
	g.Join("b", &mockBroadcaster{}, JoinMsg{Name: "Bob"})
	require.Equal(t, PhaseVoting, g.session.phase)

	c := &Client{hub: NewHub(g), id: "a"}
	c.handleMessage([]byte(`{"t":"voteMap","d":null}`))
	c.handleMessage([]byte(`{"t":"voteMap","d":{}}`))
	c.handleMessage([]byte(`{"t":"voteMap","d":{"idx":2}}`))
	c.handleMessage([]byte(`{"t":"voteMap"}`))
	assert.Equal(t, []int{0, 0, 0}, g.session.tally())
	assert.Zero(t, a.count(MsgMapVoteUpdate))

	c.handleMessage([]byte(`{"t":"voteMap","d":{"index":2}}`))
	assert.Equal(t, []int{0, 0, 1}, g.session.tally())
}
