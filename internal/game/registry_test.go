package game

import (
	"errors"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	rg := NewRegistry()
	if rg.rooms == nil {
		t.Fatal("rooms map should be initialized")
	}
	if rg.Len() != 0 {
		t.Fatalf("expected no rooms, got %d", rg.Len())
	}
}

func TestGetOrCreate(t *testing.T) {
	rg := NewRegistry()

	r, created := rg.GetOrCreate("1234")
	if !created {
		t.Fatal("first lookup should create the room")
	}
	if r.ID != "1234" {
		t.Fatalf("expected id 1234, got %s", r.ID)
	}
	if r.Phase != PhaseLobby {
		t.Fatalf("expected phase %s, got %s", PhaseLobby, r.Phase)
	}
	if r.Rankings == nil {
		t.Fatal("rankings should be initialized")
	}

	again, created := rg.GetOrCreate("1234")
	if created {
		t.Fatal("second lookup should not create a room")
	}
	if again != r {
		t.Fatal("second lookup should return the same room")
	}
	if rg.Len() != 1 {
		t.Fatalf("expected 1 room, got %d", rg.Len())
	}
}

func TestGetUnknownRoom(t *testing.T) {
	rg := NewRegistry()
	if _, err := rg.Get("nope"); !errors.Is(err, ErrUnknownRoom) {
		t.Fatalf("expected ErrUnknownRoom, got %v", err)
	}
}

func TestDeleteOnlyEmptyRooms(t *testing.T) {
	rg := NewRegistry()
	r, _ := rg.GetOrCreate("1234")

	r.mu.Lock()
	r.addPlayer(newPlayer("a", "alice", ""))
	deleted := rg.Delete(r)
	r.mu.Unlock()
	if deleted {
		t.Fatal("room with players should not be deleted")
	}

	r.mu.Lock()
	r.removePlayer(r.Players[0])
	deleted = rg.Delete(r)
	r.mu.Unlock()
	if !deleted {
		t.Fatal("empty room should be deleted")
	}
	if !r.removed {
		t.Fatal("deleted room should be marked removed")
	}
	if _, err := rg.Get("1234"); !errors.Is(err, ErrUnknownRoom) {
		t.Fatalf("expected ErrUnknownRoom after delete, got %v", err)
	}
}

func TestDeleteStaleRoomKeepsReplacement(t *testing.T) {
	rg := NewRegistry()
	stale, _ := rg.GetOrCreate("1234")

	stale.mu.Lock()
	rg.Delete(stale)
	stale.mu.Unlock()

	fresh, created := rg.GetOrCreate("1234")
	if !created || fresh == stale {
		t.Fatal("expected a fresh room after delete")
	}

	stale.mu.Lock()
	deleted := rg.Delete(stale)
	stale.mu.Unlock()
	if deleted {
		t.Fatal("deleting a stale pointer must not drop its replacement")
	}
	if got, _ := rg.Get("1234"); got != fresh {
		t.Fatal("replacement room should still be registered")
	}
}

func TestSummary(t *testing.T) {
	rg := NewRegistry()
	r, _ := rg.GetOrCreate("1234")
	r.mu.Lock()
	r.addPlayer(newPlayer("a", "alice", ""))
	r.addPlayer(newPlayer("b", "bob", ""))
	r.Players[1].Disconnected = true
	r.Players[0].Hand = []int{42}
	r.mu.Unlock()

	s, err := rg.Summary("1234")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	want := Summary{RoomID: "1234", Phase: PhaseLobby, Players: 2, Active: 1}
	if s != want {
		t.Fatalf("expected %+v, got %+v", want, s)
	}

	if _, err := rg.Summary("nope"); !errors.Is(err, ErrUnknownRoom) {
		t.Fatalf("expected ErrUnknownRoom, got %v", err)
	}
}
