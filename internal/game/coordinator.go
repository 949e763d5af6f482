package game

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oregamc-byte/yuruito/internal/deck"
	"github.com/rs/zerolog/log"
)

const (
	EventUpdateGameState = "update_gamestate"
	EventKicked          = "kicked"

	MaxUsernameLength = 32
	MaxTextLength     = 280
)

// Sender delivers one event to one connection. Implementations must not
// block the caller.
type Sender interface {
	SendTo(connID, event string, payload any)
}

type ThemeSource interface {
	PickRandom() string
}

type Options struct {
	GracePeriod time.Duration
	HandSize    int
	Deck        deck.Generator

	after afterFunc
}

type JoinRequest struct {
	RoomID    string `json:"roomId"`
	Username  string `json:"username"`
	Icon      string `json:"icon"`
	Reconnect bool   `json:"reconnect"`
}

// Coordinator validates inbound commands, applies them to rooms and fans
// out the resulting state. Commands on one room are serialized by the
// room's lock; different rooms proceed in parallel.
type Coordinator struct {
	rooms    *Registry
	sender   Sender
	themes   ThemeSource
	grace    *graceTimers
	handSize int
	deck     deck.Generator
}

func NewCoordinator(rooms *Registry, sender Sender, themes ThemeSource, opts Options) *Coordinator {
	if opts.HandSize <= 0 {
		opts.HandSize = DefaultHandSize
	}
	if opts.Deck.Size() == 0 {
		opts.Deck = deck.New(1, 100)
	}
	return &Coordinator{
		rooms:    rooms,
		sender:   sender,
		themes:   themes,
		grace:    newGraceTimers(opts.GracePeriod, opts.after),
		handSize: opts.HandSize,
		deck:     opts.Deck,
	}
}

func (c *Coordinator) Rooms() *Registry { return c.rooms }

// Join seats connID in the room, creating the room on first use. With
// Reconnect set it first tries to hand a held seat back to the caller.
func (c *Coordinator) Join(connID string, req JoinRequest) error {
	req.RoomID = strings.TrimSpace(req.RoomID)
	req.Username = strings.TrimSpace(req.Username)
	req.Icon = strings.TrimSpace(req.Icon)
	if req.RoomID == "" || req.Username == "" || utf8.RuneCountInString(req.Username) > MaxUsernameLength ||
		utf8.RuneCountInString(req.Icon) > MaxUsernameLength {
		return c.ignored(req.RoomID, connID, CmdJoinRoom, ErrInvalidRequest)
	}
	for {
		r, _ := c.rooms.GetOrCreate(req.RoomID)
		r.mu.Lock()
		if r.removed {
			// lost a race with the last seat leaving; the id is free again
			r.mu.Unlock()
			continue
		}
		c.join(r, connID, req)
		c.broadcast(r)
		r.mu.Unlock()
		return nil
	}
}

func (c *Coordinator) join(r *Room, connID string, req JoinRequest) {
	if req.Reconnect {
		if p := r.reclaimableSeat(req.Username, connID); p != nil {
			if cur := r.player(connID); cur != nil && cur != p {
				// one connection never holds two seats
				log.Warn().Str("room", r.ID).Str("sid", connID).Str("player", p.Username).Msg("reconnect refused, connection already seated")
				return
			}
			c.grace.cancel(seatKey{room: r.ID, seat: p.seat})
			r.rebind(p, connID)
			if req.Icon != "" {
				p.Icon = req.Icon
			}
			log.Info().Str("room", r.ID).Str("sid", connID).Str("player", p.Username).Msg("player reconnected")
			return
		}
	}
	if r.player(connID) != nil {
		return
	}
	p := newPlayer(connID, req.Username, req.Icon)
	r.addPlayer(p)
	if r.roundInProgress() {
		r.deal(p, c.handSize)
	}
	log.Info().Str("room", r.ID).Str("sid", connID).Str("player", p.Username).Bool("host", p.IsHost).Msg("player joined")
}

func (c *Coordinator) StartGame(connID, roomID string) error {
	return c.exec(roomID, connID, CmdStartGame, func(r *Room, _ *Player) error {
		return r.start(c.deck, c.handSize)
	})
}

func (c *Coordinator) GoToCommenting(connID, roomID string) error {
	return c.exec(roomID, connID, CmdGoToCommenting, func(r *Room, _ *Player) error {
		return r.transition(PhaseCommenting)
	})
}

// SubmitComment accepts repeated submissions; the latest one wins.
func (c *Coordinator) SubmitComment(connID, roomID, comment string) error {
	comment = strings.TrimSpace(comment)
	if comment == "" || utf8.RuneCountInString(comment) > MaxTextLength {
		return c.ignored(roomID, connID, CmdSubmitComment, ErrInvalidRequest)
	}
	return c.exec(roomID, connID, CmdSubmitComment, func(r *Room, p *Player) error {
		r.submitComment(p, comment)
		return nil
	})
}

func (c *Coordinator) RevealComments(connID, roomID string) error {
	return c.exec(roomID, connID, CmdRevealComments, func(r *Room, _ *Player) error {
		return r.revealComments()
	})
}

func (c *Coordinator) GoToRanking(connID, roomID string) error {
	return c.exec(roomID, connID, CmdGoToRanking, func(r *Room, _ *Player) error {
		return r.transition(PhaseRanking)
	})
}

func (c *Coordinator) SubmitRanking(connID, roomID string, ranking map[string]int) error {
	return c.exec(roomID, connID, CmdSubmitRanking, func(r *Room, p *Player) error {
		return r.submitRanking(p, ranking)
	})
}

// RevealCard discloses the lowest card of the sender's hand.
func (c *Coordinator) RevealCard(connID, roomID string) error {
	return c.exec(roomID, connID, CmdRevealCard, func(r *Room, p *Player) error {
		if len(p.Hand) == 0 {
			return ErrInvalidCard
		}
		return r.revealCard(p, p.Hand[0])
	})
}

// PlayCard is the older client's way of revealing a specific card.
func (c *Coordinator) PlayCard(connID, roomID string, card int) error {
	return c.exec(roomID, connID, CmdPlayCard, func(r *Room, p *Player) error {
		return r.revealCard(p, card)
	})
}

func (c *Coordinator) UpdateIcon(connID, roomID, icon string) error {
	icon = strings.TrimSpace(icon)
	if icon == "" || utf8.RuneCountInString(icon) > MaxUsernameLength {
		return c.ignored(roomID, connID, CmdUpdateIcon, ErrInvalidRequest)
	}
	return c.exec(roomID, connID, CmdUpdateIcon, func(_ *Room, p *Player) error {
		p.Icon = icon
		return nil
	})
}

func (c *Coordinator) DrawTheme(connID, roomID string) error {
	return c.exec(roomID, connID, CmdDrawTheme, func(r *Room, _ *Player) error {
		if c.themes == nil {
			return ErrInvalidRequest
		}
		r.Theme = c.themes.PickRandom()
		return nil
	})
}

func (c *Coordinator) UpdateTheme(connID, roomID, theme string) error {
	if utf8.RuneCountInString(theme) > MaxTextLength {
		return c.ignored(roomID, connID, CmdUpdateTheme, ErrInvalidRequest)
	}
	return c.exec(roomID, connID, CmdUpdateTheme, func(r *Room, _ *Player) error {
		r.Theme = theme
		return nil
	})
}

// KickPlayer removes the target at once, without a grace period, and tells
// only the removed connection about it.
func (c *Coordinator) KickPlayer(connID, roomID, targetID string) error {
	return c.exec(roomID, connID, CmdKickPlayer, func(r *Room, host *Player) error {
		target := r.player(targetID)
		if target == nil || target == host {
			return ErrUnknownPlayer
		}
		c.grace.cancel(seatKey{room: r.ID, seat: target.seat})
		r.removePlayer(target)
		r.checkRoundProgress()
		c.sender.SendTo(target.ID, EventKicked, struct{}{})
		log.Info().Str("room", r.ID).Str("sid", target.ID).Str("player", target.Username).Msg("player kicked")
		return nil
	})
}

func (c *Coordinator) RestartGame(connID, roomID string) error {
	return c.exec(roomID, connID, CmdRestartGame, func(r *Room, _ *Player) error {
		return r.restart()
	})
}

// Disconnect holds the connection's seat open for the grace period.
func (c *Coordinator) Disconnect(connID, roomID string) error {
	return c.withRoom(roomID, func(r *Room) error {
		p := r.player(connID)
		if p == nil || p.Disconnected {
			return ErrUnknownPlayer
		}
		p.Disconnected = true
		seat := p.seat
		c.grace.start(seatKey{room: r.ID, seat: seat}, func() { c.expire(roomID, seat) })
		log.Info().Str("room", r.ID).Str("sid", connID).Str("player", p.Username).Msg("player disconnected, seat held")
		return nil
	})
}

// expire permanently removes a seat whose grace period ran out. A seat
// that was reclaimed in the meantime is left alone.
func (c *Coordinator) expire(roomID, seat string) {
	r, err := c.rooms.Get(roomID)
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.removed {
		return
	}
	p := r.playerBySeat(seat)
	if p == nil || !p.Disconnected {
		return
	}
	r.removePlayer(p)
	log.Info().Str("room", r.ID).Str("player", p.Username).Msg("grace period expired, seat removed")
	if c.rooms.Delete(r) {
		return
	}
	r.checkRoundProgress()
	c.broadcast(r)
}

func (c *Coordinator) exec(roomID, connID string, cmd Command, fn func(*Room, *Player) error) error {
	err := c.withRoom(roomID, func(r *Room) error {
		p := r.player(connID)
		if err := r.authorize(cmd, p); err != nil {
			return err
		}
		return fn(r, p)
	})
	if err != nil {
		return c.ignored(roomID, connID, cmd, err)
	}
	return nil
}

// withRoom runs fn under the room lock and broadcasts if fn succeeded.
func (c *Coordinator) withRoom(roomID string, fn func(*Room) error) error {
	r, err := c.rooms.Get(roomID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.removed {
		return ErrUnknownRoom
	}
	if err := fn(r); err != nil {
		return err
	}
	c.broadcast(r)
	return nil
}

func (c *Coordinator) ignored(roomID, connID string, cmd Command, err error) error {
	log.Debug().Err(err).Str("room", roomID).Str("sid", connID).Str("cmd", string(cmd)).Msg("command ignored")
	return err
}

// broadcast is called with r.mu held so that snapshots of one room reach
// the sender in mutation order.
func (c *Coordinator) broadcast(r *Room) {
	for _, d := range r.snapshots() {
		c.sender.SendTo(d.ConnID, EventUpdateGameState, d.Snapshot)
	}
}
