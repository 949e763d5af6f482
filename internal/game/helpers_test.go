package game

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/oregamc-byte/yuruito/internal/deck"
	"github.com/stretchr/testify/require"
)

type sentEvent struct {
	connID  string
	event   string
	payload any
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (s *recordingSender) SendTo(connID, event string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentEvent{connID: connID, event: event, payload: payload})
}

func (s *recordingSender) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *recordingSender) eventsFor(connID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.sent {
		if e.connID == connID {
			out = append(out, e.event)
		}
	}
	return out
}

func (s *recordingSender) snapshotsFor(connID string) []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Snapshot
	for _, e := range s.sent {
		if e.connID == connID && e.event == EventUpdateGameState {
			out = append(out, e.payload.(Snapshot))
		}
	}
	return out
}

func (s *recordingSender) lastSnapshot(t *testing.T, connID string) Snapshot {
	t.Helper()
	all := s.snapshotsFor(connID)
	require.NotEmpty(t, all, "no snapshot sent to %s", connID)
	return all[len(all)-1]
}

// manualClock stands in for time.AfterFunc; timers only fire when told to.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func (m *manualClock) after(d time.Duration, f func()) stopper {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	m.timers = append(m.timers, t)
	return t
}

// fireAll runs every timer that is neither stopped nor already fired.
func (m *manualClock) fireAll() {
	m.mu.Lock()
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	m.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

func (m *manualClock) all() []*manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*manualTimer(nil), m.timers...)
}

type fixedThemes string

func (f fixedThemes) PickRandom() string { return string(f) }

const testTheme = "強そうな動物（1:弱い 100:強い）"

func newTestCoordinator(t *testing.T) (*Coordinator, *recordingSender, *manualClock) {
	t.Helper()
	snd := &recordingSender{}
	clk := &manualClock{}
	c := NewCoordinator(NewRegistry(), snd, fixedThemes(testTheme), Options{
		GracePeriod: time.Minute,
		HandSize:    1,
		Deck:        deck.Generator{Min: 1, Max: 100, Rand: rand.New(rand.NewPCG(42, 7))},
		after:       clk.after,
	})
	return c, snd, clk
}

// joinAll seats each name on connection "c-<name>" and returns the ids.
func joinAll(t *testing.T, c *Coordinator, roomID string, names ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(names))
	for _, n := range names {
		id := "c-" + n
		require.NoError(t, c.Join(id, JoinRequest{RoomID: roomID, Username: n}))
		ids = append(ids, id)
	}
	return ids
}

func roomOf(t *testing.T, c *Coordinator, roomID string) *Room {
	t.Helper()
	r, err := c.Rooms().Get(roomID)
	require.NoError(t, err)
	return r
}

// toRanking drives a freshly joined room from lobby to ranking.
func toRanking(t *testing.T, c *Coordinator, roomID, host string) {
	t.Helper()
	require.NoError(t, c.StartGame(host, roomID))
	require.NoError(t, c.GoToCommenting(host, roomID))
	require.NoError(t, c.RevealComments(host, roomID))
	require.NoError(t, c.GoToRanking(host, roomID))
}

func toRevealing(t *testing.T, c *Coordinator, roomID string, ids []string) {
	t.Helper()
	toRanking(t, c, roomID, ids[0])
	for _, id := range ids {
		require.NoError(t, c.SubmitRanking(id, roomID, map[string]int{id: 1}))
	}
	require.Equal(t, PhaseRevealing, roomOf(t, c, roomID).Phase)
}

// checkRoomConsistency asserts card uniqueness and the single-host rule.
func checkRoomConsistency(t *testing.T, r *Room, gen deck.Generator) {
	t.Helper()
	seen := map[int]string{}
	mark := func(v int, where string) {
		require.True(t, gen.Contains(v), "card %d out of range in %s", v, where)
		prev, dup := seen[v]
		require.False(t, dup, "card %d in both %s and %s", v, prev, where)
		seen[v] = where
	}
	for _, v := range r.Deck {
		mark(v, "deck")
	}
	for _, p := range r.Players {
		for _, v := range p.Hand {
			mark(v, "hand of "+p.Username)
		}
	}
	revealed := map[int]bool{}
	for _, e := range r.RevealOrder {
		require.False(t, revealed[e.Card], "card %d revealed twice", e.Card)
		revealed[e.Card] = true
	}
	for _, e := range r.Table {
		require.True(t, revealed[e.Card], "table card %d never revealed", e.Card)
	}

	if len(r.Players) > 0 {
		hosts := 0
		for _, p := range r.Players {
			if p.IsHost {
				hosts++
			}
		}
		require.Equal(t, 1, hosts, "room %s must have exactly one host", r.ID)
	}
}
