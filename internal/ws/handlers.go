package ws

import (
	socketio "github.com/googollee/go-socket.io"
	"github.com/oregamc-byte/yuruito/internal/game"
	"github.com/rs/zerolog/log"
)

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type JoinPayload struct {
	RoomID    string `json:"roomId"`
	Username  string `json:"username"`
	Icon      string `json:"icon"`
	Reconnect bool   `json:"reconnect"`
}

type CommentPayload struct {
	RoomID  string `json:"roomId"`
	Comment string `json:"comment"`
}

type RankingPayload struct {
	RoomID  string         `json:"roomId"`
	Ranking map[string]int `json:"ranking"`
}

type CardPayload struct {
	RoomID string `json:"roomId"`
	Card   int    `json:"card"`
}

type IconPayload struct {
	RoomID string `json:"roomId"`
	Icon   string `json:"icon"`
}

type ThemePayload struct {
	RoomID string `json:"roomId"`
	Theme  string `json:"theme"`
}

type KickPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// NewSocketServer builds the Socket.IO server with every game event wired
// to the coordinator. The caller runs Serve and mounts it on a router.
func (srv *Server) NewSocketServer() *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		srv.register(s)
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	io.OnEvent("/", string(game.CmdJoinRoom), func(s socketio.Conn, p JoinPayload) map[string]any {
		return srv.join(s, p)
	})

	srv.onRoomEvent(io, game.CmdStartGame, Coordinator.StartGame)
	srv.onRoomEvent(io, game.CmdGoToCommenting, Coordinator.GoToCommenting)
	srv.onRoomEvent(io, game.CmdRevealComments, Coordinator.RevealComments)
	srv.onRoomEvent(io, game.CmdGoToRanking, Coordinator.GoToRanking)
	srv.onRoomEvent(io, game.CmdRevealCard, Coordinator.RevealCard)
	srv.onRoomEvent(io, game.CmdDrawTheme, Coordinator.DrawTheme)
	srv.onRoomEvent(io, game.CmdRestartGame, Coordinator.RestartGame)

	io.OnEvent("/", string(game.CmdSubmitComment), func(s socketio.Conn, p CommentPayload) map[string]any {
		return srv.dispatch(s.ID(), game.CmdSubmitComment, p.RoomID, func() error {
			return srv.coord.SubmitComment(s.ID(), p.RoomID, p.Comment)
		})
	})

	io.OnEvent("/", string(game.CmdSubmitRanking), func(s socketio.Conn, p RankingPayload) map[string]any {
		return srv.dispatch(s.ID(), game.CmdSubmitRanking, p.RoomID, func() error {
			return srv.coord.SubmitRanking(s.ID(), p.RoomID, p.Ranking)
		})
	})

	io.OnEvent("/", string(game.CmdPlayCard), func(s socketio.Conn, p CardPayload) map[string]any {
		return srv.dispatch(s.ID(), game.CmdPlayCard, p.RoomID, func() error {
			return srv.coord.PlayCard(s.ID(), p.RoomID, p.Card)
		})
	})

	io.OnEvent("/", string(game.CmdUpdateIcon), func(s socketio.Conn, p IconPayload) map[string]any {
		return srv.dispatch(s.ID(), game.CmdUpdateIcon, p.RoomID, func() error {
			return srv.coord.UpdateIcon(s.ID(), p.RoomID, p.Icon)
		})
	})

	io.OnEvent("/", string(game.CmdUpdateTheme), func(s socketio.Conn, p ThemePayload) map[string]any {
		return srv.dispatch(s.ID(), game.CmdUpdateTheme, p.RoomID, func() error {
			return srv.coord.UpdateTheme(s.ID(), p.RoomID, p.Theme)
		})
	})

	io.OnEvent("/", string(game.CmdKickPlayer), func(s socketio.Conn, p KickPayload) map[string]any {
		return srv.dispatch(s.ID(), game.CmdKickPlayer, p.RoomID, func() error {
			return srv.coord.KickPlayer(s.ID(), p.RoomID, p.PlayerID)
		})
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		if s == nil {
			log.Error().Err(e).Msg("socket error")
			return
		}
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		ctx, _ := s.Context().(*ConnCtx)
		srv.disconnect(s.ID(), ctx, reason)
	})

	return io
}

// onRoomEvent wires an event whose payload carries nothing but the room id.
func (srv *Server) onRoomEvent(io *socketio.Server, cmd game.Command, fn func(c Coordinator, connID, roomID string) error) {
	io.OnEvent("/", string(cmd), func(s socketio.Conn, p RoomPayload) map[string]any {
		return srv.dispatch(s.ID(), cmd, p.RoomID, func() error {
			return fn(srv.coord, s.ID(), p.RoomID)
		})
	})
}
