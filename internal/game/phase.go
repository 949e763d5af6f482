package game

import (
	"slices"

	"github.com/rs/zerolog/log"
)

// Command names double as the socket.io event names.
type Command string

const (
	CmdJoinRoom       Command = "join_room"
	CmdStartGame      Command = "start_game"
	CmdGoToCommenting Command = "go_to_commenting"
	CmdSubmitComment  Command = "submit_comment"
	CmdRevealComments Command = "reveal_comments"
	CmdGoToRanking    Command = "go_to_ranking"
	CmdSubmitRanking  Command = "submit_ranking"
	CmdRevealCard     Command = "reveal_card"
	CmdPlayCard       Command = "play_card"
	CmdUpdateIcon     Command = "update_icon"
	CmdDrawTheme      Command = "draw_theme"
	CmdUpdateTheme    Command = "update_theme"
	CmdKickPlayer     Command = "kick_player"
	CmdRestartGame    Command = "restart_game"
)

// rule is the (phase, authorization) half of the guard triple. An empty
// phase means the command is valid in every phase.
type rule struct {
	phase    Phase
	hostOnly bool
}

var rules = map[Command]rule{
	CmdStartGame:      {phase: PhaseLobby, hostOnly: true},
	CmdGoToCommenting: {phase: PhasePlaying, hostOnly: true},
	CmdSubmitComment:  {phase: PhaseCommenting},
	CmdRevealComments: {phase: PhaseCommenting, hostOnly: true},
	CmdGoToRanking:    {phase: PhaseRevealComments, hostOnly: true},
	CmdSubmitRanking:  {phase: PhaseRanking},
	CmdRevealCard:     {phase: PhaseRevealing},
	CmdPlayCard:       {phase: PhaseRevealing},
	CmdRestartGame:    {phase: PhaseResult, hostOnly: true},
	CmdUpdateIcon:     {},
	CmdDrawTheme:      {hostOnly: true},
	CmdUpdateTheme:    {hostOnly: true},
	CmdKickPlayer:     {hostOnly: true},
}

var transitions = map[Phase][]Phase{
	PhaseLobby:          {PhasePlaying},
	PhasePlaying:        {PhaseCommenting},
	PhaseCommenting:     {PhaseRevealComments},
	PhaseRevealComments: {PhaseRanking},
	PhaseRanking:        {PhaseRevealing},
	PhaseRevealing:      {PhaseResult},
	PhaseResult:         {PhaseLobby},
}

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo reports whether target is one legal edge away from p.
func (p Phase) CanTransitionTo(target Phase) bool {
	return slices.Contains(transitions[p], target)
}

// authorize checks cmd against the room's phase and the actor's role.
// A nil actor is a connection that holds no active seat in the room.
func (r *Room) authorize(cmd Command, actor *Player) error {
	ru, ok := rules[cmd]
	if !ok {
		return ErrInvalidRequest
	}
	if actor == nil || actor.Disconnected {
		if ru.hostOnly {
			return ErrUnauthorized
		}
		return ErrUnknownPlayer
	}
	if ru.hostOnly && !actor.IsHost {
		return ErrUnauthorized
	}
	if ru.phase != "" && r.Phase != ru.phase {
		return ErrWrongPhase
	}
	return nil
}

func (r *Room) transition(to Phase) error {
	if !r.Phase.CanTransitionTo(to) {
		return ErrWrongPhase
	}
	log.Info().Str("room", r.ID).Str("from", string(r.Phase)).Str("to", string(to)).Msg("phase transition")
	r.Phase = to
	return nil
}
