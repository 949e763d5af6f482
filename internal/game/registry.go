package game

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry owns the lifecycle of every Room in the process.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// GetOrCreate returns the room with this id, creating an empty lobby if
// none exists yet.
func (rg *Registry) GetOrCreate(id string) (room *Room, created bool) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	if r := rg.rooms[id]; r != nil {
		return r, false
	}
	r := newRoom(id)
	rg.rooms[id] = r
	log.Info().Str("room", id).Msg("room created")
	return r, true
}

func (rg *Registry) Get(id string) (*Room, error) {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	r := rg.rooms[id]
	if r == nil {
		return nil, ErrUnknownRoom
	}
	return r, nil
}

// Delete drops r if it is still the registered room for its id and has no
// seats left. The caller must hold r.mu.
func (rg *Registry) Delete(r *Room) bool {
	if len(r.Players) > 0 {
		return false
	}
	rg.mu.Lock()
	defer rg.mu.Unlock()
	if rg.rooms[r.ID] != r {
		return false
	}
	delete(rg.rooms, r.ID)
	r.removed = true
	log.Info().Str("room", r.ID).Msg("room deleted")
	return true
}

func (rg *Registry) Len() int {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return len(rg.rooms)
}

// Summary describes a room without exposing any hidden state.
func (rg *Registry) Summary(id string) (Summary, error) {
	r, err := rg.Get(id)
	if err != nil {
		return Summary{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.removed {
		return Summary{}, ErrUnknownRoom
	}
	return r.summary(), nil
}
