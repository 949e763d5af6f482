package game

import (
	"sync"
)

type Phase string

const (
	PhaseLobby          Phase = "lobby"
	PhasePlaying        Phase = "playing"
	PhaseCommenting     Phase = "commenting"
	PhaseRevealComments Phase = "reveal_comments"
	PhaseRanking        Phase = "ranking"
	PhaseRevealing      Phase = "revealing"
	PhaseResult         Phase = "result"
)

const (
	DefaultHandSize = 1
	DefaultIcon     = "🐶"

	// MissingComment stands in for players who never submitted before the host revealed.
	MissingComment = "（コメントなし）"
)

type Player struct {
	ID       string
	Username string
	Icon     string
	Hand     []int
	IsHost   bool

	Comment          string
	CommentSubmitted bool
	RankingSubmitted bool
	CardRevealed     bool

	Disconnected bool

	// seat is the server-side identity of the logical player; it survives
	// connection rebinding and is never sent to clients.
	seat string
}

type TableEntry struct {
	Card       int    `json:"card"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type CommentEntry struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Icon       string `json:"icon"`
	Comment    string `json:"comment"`
}

type RevealEntry struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Icon       string `json:"icon"`
	Card       int    `json:"card"`
}

// Room is one isolated game. All fields are guarded by mu.
type Room struct {
	ID          string
	Players     []*Player
	Deck        []int
	Table       []TableEntry
	Theme       string
	Phase       Phase
	Comments    []CommentEntry
	Rankings    map[string]map[string]int
	RevealOrder []RevealEntry

	mu      sync.Mutex
	removed bool // set once the registry has dropped the room
}

// Summary is the public, secret-free description served over HTTP.
type Summary struct {
	RoomID  string `json:"roomId"`
	Phase   Phase  `json:"phase"`
	Players int    `json:"players"`
	Active  int    `json:"active"`
}
