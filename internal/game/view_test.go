package game

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redactionRoom() *Room {
	r := newRoom("1234")
	a := newPlayer("a", "alice", "🐶")
	b := newPlayer("b", "bob", "🐱")
	gone := newPlayer("z", "zed", "🐸")
	r.addPlayer(a)
	r.addPlayer(b)
	r.addPlayer(gone)
	r.Phase = PhaseCommenting
	a.Hand = []int{83}
	b.Hand = []int{17}
	gone.Hand = []int{64}
	gone.Disconnected = true
	b.Comment = "warm"
	b.CommentSubmitted = true
	a.Comment = "draft"
	return r
}

func TestSnapshotsSkipDisconnected(t *testing.T) {
	out := redactionRoom().snapshots()
	var got []string
	for _, d := range out {
		got = append(got, d.ConnID)
	}
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Fatalf("recipients mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotRedactsOtherHands(t *testing.T) {
	out := redactionRoom().snapshots()
	forAlice := out[0].Snapshot

	want := []PlayerView{
		{ID: "a", Username: "alice", Icon: "🐶", Hand: []CardSlot{visibleCard(83)}, IsHost: true},
		{ID: "b", Username: "bob", Icon: "🐱", Hand: []CardSlot{{hidden: true}}, Comment: "warm", CommentSubmitted: true},
		{ID: "z", Username: "zed", Icon: "🐸", Hand: []CardSlot{{hidden: true}}, Disconnected: true},
	}
	if diff := cmp.Diff(want, forAlice.Players, cmp.AllowUnexported(CardSlot{})); diff != "" {
		t.Fatalf("alice's view mismatch (-want +got):\n%s", diff)
	}

	forBob := out[1].Snapshot
	assert.True(t, forBob.Players[0].Hand[0].Hidden())
	v, ok := forBob.Players[1].Hand[0].Value()
	require.True(t, ok)
	assert.Equal(t, 17, v)
}

func TestSnapshotJSONLeaksNoHiddenState(t *testing.T) {
	out := redactionRoom().snapshots()
	raw, err := json.Marshal(out[1].Snapshot)
	require.NoError(t, err)

	body := string(raw)
	assert.NotContains(t, body, "83")
	assert.NotContains(t, body, "64")
	assert.NotContains(t, body, "draft")
	assert.False(t, strings.Contains(body, "seat"))

	var decoded struct {
		Players []struct {
			ID   string            `json:"id"`
			Hand []json.RawMessage `json:"hand"`
		} `json:"players"`
		Table       []TableEntry              `json:"table"`
		Comments    []CommentEntry            `json:"comments"`
		Rankings    map[string]map[string]int `json:"rankings"`
		RevealOrder []RevealEntry             `json:"revealOrder"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.JSONEq(t, `"?"`, string(decoded.Players[0].Hand[0]))
	assert.JSONEq(t, `17`, string(decoded.Players[1].Hand[0]))
	assert.NotNil(t, decoded.Table)
	assert.NotNil(t, decoded.Comments)
	assert.NotNil(t, decoded.Rankings)
	assert.NotNil(t, decoded.RevealOrder)
}

func TestSnapshotIsDetachedFromRoom(t *testing.T) {
	r := redactionRoom()
	r.Rankings["a"] = map[string]int{"b": 1}
	r.RevealOrder = []RevealEntry{{PlayerID: "a", PlayerName: "alice", Icon: "🐶", Card: 83}}
	before := r.snapshots()[0].Snapshot

	r.Rankings["a"]["b"] = 2
	r.RevealOrder[0].Card = 1
	r.Players[0].Hand[0] = 5
	r.Theme = "changed"

	after := r.snapshots()[0].Snapshot
	assert.Equal(t, 1, before.Rankings["a"]["b"])
	assert.Equal(t, 83, before.RevealOrder[0].Card)
	v, _ := before.Players[0].Hand[0].Value()
	assert.Equal(t, 83, v)

	diff := cmp.Diff(before, after, cmp.AllowUnexported(CardSlot{}), cmpopts.EquateEmpty())
	assert.NotEmpty(t, diff)
}

func TestHiddenSlotCarriesNoValue(t *testing.T) {
	v, ok := CardSlot{hidden: true}.Value()
	assert.False(t, ok)
	assert.Zero(t, v)

	raw, err := json.Marshal([]CardSlot{visibleCard(5), {hidden: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `[5,"?"]`, string(raw))
}
