package game

import (
	"sync"
	"time"
)

const DefaultGracePeriod = 5 * time.Minute

type seatKey struct {
	room string
	seat string
}

type stopper interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) stopper

func realAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

type graceTimer struct {
	stop stopper
}

// graceTimers holds at most one pending expiry per seat. An expiry fires
// once; cancel and restart both invalidate the previous timer even if its
// callback is already running.
type graceTimers struct {
	mu      sync.Mutex
	period  time.Duration
	after   afterFunc
	pending map[seatKey]*graceTimer
}

func newGraceTimers(period time.Duration, after afterFunc) *graceTimers {
	if period <= 0 {
		period = DefaultGracePeriod
	}
	if after == nil {
		after = realAfterFunc
	}
	return &graceTimers{period: period, after: after, pending: make(map[seatKey]*graceTimer)}
}

func (g *graceTimers) start(key seatKey, onExpire func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if old := g.pending[key]; old != nil && old.stop != nil {
		old.stop.Stop()
	}
	t := &graceTimer{}
	g.pending[key] = t
	t.stop = g.after(g.period, func() {
		if g.claim(key, t) {
			onExpire()
		}
	})
}

func (g *graceTimers) claim(key seatKey, t *graceTimer) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending[key] != t {
		return false
	}
	delete(g.pending, key)
	return true
}

func (g *graceTimers) cancel(key seatKey) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.pending[key]
	if t == nil {
		return false
	}
	delete(g.pending, key)
	if t.stop != nil {
		t.stop.Stop()
	}
	return true
}

func (g *graceTimers) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// reclaimableSeat finds the seat a reconnecting client may take over:
// same username, and either disconnected or already bound to connID.
// Matching on the display name alone means anyone who knows it can take
// the seat.
func (r *Room) reclaimableSeat(username, connID string) *Player {
	for _, p := range r.Players {
		if p.Username != username {
			continue
		}
		if p.Disconnected || p.ID == connID {
			return p
		}
	}
	return nil
}

// rebind moves p onto a new connection and rewrites every round record that
// refers to the old connection id.
func (r *Room) rebind(p *Player, connID string) {
	old := p.ID
	p.ID = connID
	p.Disconnected = false
	if old == connID {
		return
	}
	for i := range r.Comments {
		if r.Comments[i].PlayerID == old {
			r.Comments[i].PlayerID = connID
		}
	}
	for i := range r.RevealOrder {
		if r.RevealOrder[i].PlayerID == old {
			r.RevealOrder[i].PlayerID = connID
		}
	}
	for i := range r.Table {
		if r.Table[i].PlayerID == old {
			r.Table[i].PlayerID = connID
		}
	}
	if own, ok := r.Rankings[old]; ok {
		delete(r.Rankings, old)
		r.Rankings[connID] = own
	}
	for _, ranking := range r.Rankings {
		if rank, ok := ranking[old]; ok {
			delete(ranking, old)
			ranking[connID] = rank
		}
	}
}
