package ws

import (
	"errors"
	"strings"
	"sync"

	"github.com/oregamc-byte/yuruito/internal/config"
	"github.com/oregamc-byte/yuruito/internal/game"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const outboxSize = 64

var ErrRateLimited = errors.New("rate limited")

// Coordinator is the command surface the socket layer dispatches to.
type Coordinator interface {
	Join(connID string, req game.JoinRequest) error
	StartGame(connID, roomID string) error
	GoToCommenting(connID, roomID string) error
	SubmitComment(connID, roomID, comment string) error
	RevealComments(connID, roomID string) error
	GoToRanking(connID, roomID string) error
	SubmitRanking(connID, roomID string, ranking map[string]int) error
	RevealCard(connID, roomID string) error
	PlayCard(connID, roomID string, card int) error
	UpdateIcon(connID, roomID, icon string) error
	DrawTheme(connID, roomID string) error
	UpdateTheme(connID, roomID, theme string) error
	KickPlayer(connID, roomID, targetID string) error
	RestartGame(connID, roomID string) error
	Disconnect(connID, roomID string) error
}

// Emitter is the part of socketio.Conn the writer needs.
type Emitter interface {
	ID() string
	Emit(event string, v ...interface{})
}

// Conn is the part of socketio.Conn the command handlers need.
type Conn interface {
	Emitter
	Context() interface{}
	SetContext(v interface{})
}

// ConnCtx remembers which room a socket last joined.
type ConnCtx struct {
	RoomID string
}

type outbound struct {
	event   string
	payload any
}

type client struct {
	conn    Emitter
	outbox  chan outbound
	done    chan struct{}
	limiter *rate.Limiter
}

func (cl *client) writePump() {
	for {
		select {
		case msg := <-cl.outbox:
			cl.conn.Emit(msg.event, msg.payload)
		case <-cl.done:
			return
		}
	}
}

type Server struct {
	coord Coordinator
	cfg   config.Config

	mu      sync.RWMutex
	clients map[string]*client
}

func New(cfg config.Config) *Server {
	return &Server{cfg: cfg, clients: make(map[string]*client)}
}

func (srv *Server) SetCoordinator(c Coordinator) { srv.coord = c }

// SendTo queues an event for one connection without blocking. Events for
// unknown connections are dropped, as are events for a connection whose
// outbox is full.
func (srv *Server) SendTo(connID, event string, payload any) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	cl := srv.clients[connID]
	if cl == nil {
		return
	}
	select {
	case cl.outbox <- outbound{event: event, payload: payload}:
	default:
		log.Warn().Str("sid", connID).Str("event", event).Msg("outbox full, dropping event")
	}
}

func (srv *Server) register(conn Emitter) *client {
	cl := &client{
		conn:    conn,
		outbox:  make(chan outbound, outboxSize),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(srv.cfg.CommandRate), srv.cfg.CommandBurst),
	}
	srv.mu.Lock()
	srv.clients[conn.ID()] = cl
	srv.mu.Unlock()
	go cl.writePump()
	return cl
}

func (srv *Server) unregister(connID string) {
	srv.mu.Lock()
	cl := srv.clients[connID]
	delete(srv.clients, connID)
	srv.mu.Unlock()
	if cl != nil {
		close(cl.done)
	}
}

func (srv *Server) allow(connID string) bool {
	srv.mu.RLock()
	cl := srv.clients[connID]
	srv.mu.RUnlock()
	return cl != nil && cl.limiter.Allow()
}

// dispatch runs one command for a socket and turns the result into the
// acknowledgement map. Rejected commands change nothing.
func (srv *Server) dispatch(connID string, cmd game.Command, roomID string, fn func() error) map[string]any {
	var err error
	if !srv.allow(connID) {
		err = ErrRateLimited
	} else {
		err = fn()
	}
	if err != nil {
		log.Debug().Str("sid", connID).Str("room", roomID).Str("event", string(cmd)).Err(err).Msg("command rejected")
		return map[string]any{"ok": false, "error": code(err)}
	}
	return map[string]any{"ok": true}
}

// join switches the socket's room binding, releasing the seat in any room
// it was previously bound to.
func (srv *Server) join(s Conn, p JoinPayload) map[string]any {
	roomID := strings.TrimSpace(p.RoomID)
	req := game.JoinRequest{RoomID: roomID, Username: p.Username, Icon: p.Icon, Reconnect: p.Reconnect}
	return srv.dispatch(s.ID(), game.CmdJoinRoom, roomID, func() error {
		if err := srv.coord.Join(s.ID(), req); err != nil {
			return err
		}
		ctx := connCtx(s)
		if ctx.RoomID != "" && ctx.RoomID != roomID {
			_ = srv.coord.Disconnect(s.ID(), ctx.RoomID)
		}
		ctx.RoomID = roomID
		log.Info().Str("sid", s.ID()).Str("room", roomID).Msg("join_room")
		return nil
	})
}

func (srv *Server) disconnect(connID string, ctx *ConnCtx, reason string) {
	if ctx != nil && ctx.RoomID != "" {
		_ = srv.coord.Disconnect(connID, ctx.RoomID)
	}
	srv.unregister(connID)
	log.Info().Str("sid", connID).Str("reason", reason).Msg("socket disconnected")
}

func connCtx(s Conn) *ConnCtx {
	if ctx, ok := s.Context().(*ConnCtx); ok && ctx != nil {
		return ctx
	}
	ctx := &ConnCtx{}
	s.SetContext(ctx)
	return ctx
}

func code(err error) string {
	if errors.Is(err, ErrRateLimited) {
		return "rate_limited"
	}
	return game.Code(err)
}
