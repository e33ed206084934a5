// internal/game/result.go
package game

import "github.com/google/uuid"

// Reason explains why an intent was rejected. Rejected intents never mutate state.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonGameNotRunning   Reason = "game_not_running"
	ReasonGameRunning      Reason = "game_running"
	ReasonNotEnoughPlayers Reason = "not_enough_players"
	ReasonNotYourTurn      Reason = "not_your_turn"
	ReasonUnknownPlayer    Reason = "unknown_player"
	ReasonInvalidMove      Reason = "invalid_move"
	ReasonCardNotInHand    Reason = "card_not_in_hand"
	ReasonInvalidColor     Reason = "invalid_color"
	ReasonAlreadyJoined    Reason = "already_joined"
	ReasonRoomFull         Reason = "room_full"
	ReasonInvalidName      Reason = "invalid_name"
	ReasonUnknownIntent    Reason = "unknown_intent"
)

// Message is the client-facing text for a rejection the transport chooses to surface.
func (r Reason) Message() string {
	switch r {
	case ReasonGameRunning:
		return "Game is already in progress."
	case ReasonRoomFull:
		return "The table is full."
	case ReasonInvalidName:
		return "A display name is required."
	case ReasonNotYourTurn:
		return "It's not your turn."
	case ReasonInvalidMove:
		return "That card cannot be played now."
	case ReasonCardNotInHand:
		return "That card is not in your hand."
	case ReasonInvalidColor:
		return "Choose red, yellow, green or blue."
	default:
		return string(r)
	}
}

// EffectType names something the transport must do after an intent is applied.
// The values double as the server-to-client frame types.
type EffectType string

const (
	EffectStateUpdate EffectType = "gameStateUpdate"
	EffectGameOver    EffectType = "gameOver"
	EffectError       EffectType = "error"
)

// Effect is returned data, never performed by the engine itself.
// To is uuid.Nil for broadcasts. A game-over effect carries the final state for
// record keeping; only Winner is meant for clients.
type Effect struct {
	Type     EffectType
	To       uuid.UUID
	State    *GameState
	Winner   string
	WinnerID uuid.UUID
	Message  string
}

// Result is the outcome of applying one intent.
type Result struct {
	Accepted bool
	Reason   Reason
	Effects  []Effect
}

func rejected(reason Reason) Result {
	return Result{Reason: reason}
}

func accepted(effects ...Effect) Result {
	return Result{Accepted: true, Effects: effects}
}
