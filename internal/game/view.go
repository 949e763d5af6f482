package game

import (
	"maps"
	"strconv"
)

// HiddenCard is what other players see in place of each card in a hand.
const HiddenCard = "?"

// CardSlot is one position of a hand as seen by a particular recipient.
// A hidden slot is built without the card value, so nothing about the card
// can leak through it.
type CardSlot struct {
	value  int
	hidden bool
}

func visibleCard(v int) CardSlot { return CardSlot{value: v} }

func (c CardSlot) Hidden() bool { return c.hidden }

// Value returns the card and true for a visible slot.
func (c CardSlot) Value() (int, bool) {
	if c.hidden {
		return 0, false
	}
	return c.value, true
}

func (c CardSlot) MarshalJSON() ([]byte, error) {
	if c.hidden {
		return []byte(strconv.Quote(HiddenCard)), nil
	}
	return strconv.AppendInt(nil, int64(c.value), 10), nil
}

type PlayerView struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	Icon             string     `json:"icon"`
	Hand             []CardSlot `json:"hand"`
	IsHost           bool       `json:"isHost"`
	Comment          string     `json:"comment,omitempty"`
	CommentSubmitted bool       `json:"commentSubmitted"`
	RankingSubmitted bool       `json:"rankingSubmitted"`
	CardRevealed     bool       `json:"cardRevealed"`
	Disconnected     bool       `json:"disconnected"`
}

// Snapshot is the update_gamestate payload for one recipient.
type Snapshot struct {
	RoomID      string                    `json:"roomId"`
	Players     []PlayerView              `json:"players"`
	Table       []TableEntry              `json:"table"`
	Theme       string                    `json:"theme"`
	Phase       Phase                     `json:"phase"`
	Comments    []CommentEntry            `json:"comments"`
	Rankings    map[string]map[string]int `json:"rankings"`
	RevealOrder []RevealEntry             `json:"revealOrder"`
}

// Delivery pairs a snapshot with the connection it is meant for.
type Delivery struct {
	ConnID   string
	Snapshot Snapshot
}

func viewOf(p *Player, recipientID string) PlayerView {
	hand := make([]CardSlot, len(p.Hand))
	for i, c := range p.Hand {
		if p.ID == recipientID {
			hand[i] = visibleCard(c)
		} else {
			hand[i] = CardSlot{hidden: true}
		}
	}
	v := PlayerView{
		ID:               p.ID,
		Username:         p.Username,
		Icon:             p.Icon,
		Hand:             hand,
		IsHost:           p.IsHost,
		CommentSubmitted: p.CommentSubmitted,
		RankingSubmitted: p.RankingSubmitted,
		CardRevealed:     p.CardRevealed,
		Disconnected:     p.Disconnected,
	}
	if p.CommentSubmitted {
		v.Comment = p.Comment
	}
	return v
}

// snapshots builds one redacted snapshot per connected player. The room
// scalar fields are copied once and shared read-only by every snapshot.
func (r *Room) snapshots() []Delivery {
	base := Snapshot{
		RoomID:      r.ID,
		Table:       append(make([]TableEntry, 0, len(r.Table)), r.Table...),
		Theme:       r.Theme,
		Phase:       r.Phase,
		Comments:    append(make([]CommentEntry, 0, len(r.Comments)), r.Comments...),
		Rankings:    cloneRankings(r.Rankings),
		RevealOrder: append(make([]RevealEntry, 0, len(r.RevealOrder)), r.RevealOrder...),
	}
	out := make([]Delivery, 0, len(r.Players))
	for _, recipient := range r.Players {
		if recipient.Disconnected {
			continue
		}
		s := base
		s.Players = make([]PlayerView, 0, len(r.Players))
		for _, p := range r.Players {
			s.Players = append(s.Players, viewOf(p, recipient.ID))
		}
		out = append(out, Delivery{ConnID: recipient.ID, Snapshot: s})
	}
	return out
}

func cloneRankings(in map[string]map[string]int) map[string]map[string]int {
	out := make(map[string]map[string]int, len(in))
	for k, v := range in {
		out[k] = maps.Clone(v)
	}
	return out
}
