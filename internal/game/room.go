package game

import (
	"maps"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/oregamc-byte/yuruito/internal/deck"
)

// Methods in this file expect r.mu to be held by the caller.

func newRoom(id string) *Room {
	return &Room{
		ID:       id,
		Phase:    PhaseLobby,
		Rankings: make(map[string]map[string]int),
	}
}

func newPlayer(connID, username, icon string) *Player {
	if icon == "" {
		icon = DefaultIcon
	}
	return &Player{ID: connID, Username: username, Icon: icon, seat: uuid.NewString()}
}

func (r *Room) player(connID string) *Player {
	for _, p := range r.Players {
		if p.ID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) playerBySeat(seat string) *Player {
	for _, p := range r.Players {
		if p.seat == seat {
			return p
		}
	}
	return nil
}

func (r *Room) activeCount() int {
	n := 0
	for _, p := range r.Players {
		if !p.Disconnected {
			n++
		}
	}
	return n
}

// allActive is false for a room without active players so that nothing
// auto-advances on an empty quorum.
func (r *Room) allActive(done func(*Player) bool) bool {
	seen := false
	for _, p := range r.Players {
		if p.Disconnected {
			continue
		}
		if !done(p) {
			return false
		}
		seen = true
	}
	return seen
}

func (r *Room) addPlayer(p *Player) {
	if r.activeCount() == 0 {
		for _, other := range r.Players {
			other.IsHost = false
		}
		p.IsHost = true
	}
	r.Players = append(r.Players, p)
}

// removePlayer drops p and hands the host role on if p held it.
func (r *Room) removePlayer(p *Player) {
	i := slices.Index(r.Players, p)
	if i < 0 {
		return
	}
	r.Players = slices.Delete(r.Players, i, i+1)
	if p.IsHost {
		r.promoteHost()
	}
}

// promoteHost makes the longest-tenured active player host, falling back
// to the first held seat when everyone is disconnected.
func (r *Room) promoteHost() {
	for _, p := range r.Players {
		if !p.Disconnected {
			p.IsHost = true
			return
		}
	}
	if len(r.Players) > 0 {
		r.Players[0].IsHost = true
	}
}

func resetRound(p *Player) {
	p.Hand = nil
	p.Comment = ""
	p.CommentSubmitted = false
	p.RankingSubmitted = false
	p.CardRevealed = false
}

// deal pops n cards from the deck tail into p's hand.
func (r *Room) deal(p *Player, n int) {
	for i := 0; i < n && len(r.Deck) > 0; i++ {
		last := len(r.Deck) - 1
		p.Hand = append(p.Hand, r.Deck[last])
		r.Deck = r.Deck[:last]
	}
	sort.Ints(p.Hand)
}

func (r *Room) start(gen deck.Generator, handSize int) error {
	cards, err := gen.Shuffled()
	if err != nil {
		return err
	}
	if err := r.transition(PhasePlaying); err != nil {
		return err
	}
	r.Deck = cards
	r.Table = nil
	r.Comments = nil
	r.Rankings = make(map[string]map[string]int)
	r.RevealOrder = nil
	for _, p := range r.Players {
		resetRound(p)
		r.deal(p, handSize)
	}
	return nil
}

// roundInProgress reports whether a late joiner needs cards to take part.
func (r *Room) roundInProgress() bool {
	switch r.Phase {
	case PhasePlaying, PhaseCommenting, PhaseRevealComments, PhaseRanking, PhaseRevealing:
		return true
	}
	return false
}

func (r *Room) submitComment(p *Player, text string) {
	p.Comment = text
	p.CommentSubmitted = true
	if len(r.Comments) > 0 {
		// keep an already aggregated summary in step with edits
		r.Comments = nil
	}
	r.checkRoundProgress()
}

func (r *Room) buildComments() {
	out := make([]CommentEntry, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Disconnected {
			continue
		}
		text := p.Comment
		if !p.CommentSubmitted {
			text = MissingComment
		}
		out = append(out, CommentEntry{PlayerID: p.ID, PlayerName: p.Username, Icon: p.Icon, Comment: text})
	}
	r.Comments = out
}

func (r *Room) revealComments() error {
	if err := r.transition(PhaseRevealComments); err != nil {
		return err
	}
	if len(r.Comments) == 0 {
		r.buildComments()
	}
	return nil
}

func (r *Room) submitRanking(p *Player, ranking map[string]int) error {
	if p.RankingSubmitted {
		return ErrDuplicateSubmission
	}
	stored := make(map[string]int, len(ranking))
	maps.Copy(stored, ranking)
	r.Rankings[p.ID] = stored
	p.RankingSubmitted = true
	r.checkRoundProgress()
	return nil
}

func (r *Room) revealCard(p *Player, card int) error {
	if p.CardRevealed {
		return ErrDuplicateSubmission
	}
	if !slices.Contains(p.Hand, card) {
		return ErrInvalidCard
	}
	r.RevealOrder = append(r.RevealOrder, RevealEntry{PlayerID: p.ID, PlayerName: p.Username, Icon: p.Icon, Card: card})
	sort.SliceStable(r.RevealOrder, func(i, j int) bool { return r.RevealOrder[i].Card < r.RevealOrder[j].Card })
	p.CardRevealed = true
	r.checkRoundProgress()
	return nil
}

// checkRoundProgress applies the completion side effects of the current
// phase once every active player is done with it.
func (r *Room) checkRoundProgress() {
	switch r.Phase {
	case PhaseCommenting:
		if len(r.Comments) == 0 && r.allActive(func(p *Player) bool { return p.CommentSubmitted }) {
			r.buildComments()
		}
	case PhaseRanking:
		if r.allActive(func(p *Player) bool { return p.RankingSubmitted }) {
			_ = r.transition(PhaseRevealing)
		}
	case PhaseRevealing:
		if r.allActive(func(p *Player) bool { return p.CardRevealed }) {
			if r.transition(PhaseResult) == nil {
				r.Table = make([]TableEntry, 0, len(r.RevealOrder))
				for _, e := range r.RevealOrder {
					r.Table = append(r.Table, TableEntry{Card: e.Card, PlayerID: e.PlayerID, PlayerName: e.PlayerName})
				}
			}
		}
	}
}

func (r *Room) restart() error {
	if err := r.transition(PhaseLobby); err != nil {
		return err
	}
	r.Deck = nil
	r.Table = nil
	r.Comments = nil
	r.Rankings = make(map[string]map[string]int)
	r.RevealOrder = nil
	for _, p := range r.Players {
		resetRound(p)
	}
	return nil
}

func (r *Room) summary() Summary {
	return Summary{RoomID: r.ID, Phase: r.Phase, Players: len(r.Players), Active: r.activeCount()}
}
