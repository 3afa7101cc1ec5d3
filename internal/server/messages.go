package server

import (
	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/game"
)

// Client-to-server and server-to-client message envelopes. The engine's
// GameState is never sent raw: snapshots are projected per seat so hole
// cards stay private until showdown.

// ActionMessage is a player action submitted by a client.
type ActionMessage struct {
	Type   string `json:"type"` // "action"
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// ErrorMessage reports a rejected action back to the submitting client.
type ErrorMessage struct {
	Type   string `json:"type"` // "error"
	Reason string `json:"reason"`
}

// SeatView is one seat as seen by a particular viewer.
type SeatView struct {
	Seat           int      `json:"seat"`
	Stack          int      `json:"stack"`
	CurrentBet     int      `json:"current_bet"`
	TotalCommitted int      `json:"total_committed"`
	Status         string   `json:"status"`
	HoleCards      []string `json:"hole_cards,omitempty"`
}

// PotView is a resolved pot.
type PotView struct {
	Amount   int    `json:"amount"`
	Eligible []int  `json:"eligible"`
	Winners  []int  `json:"winners,omitempty"`
	Hand     string `json:"hand,omitempty"`
}

// StateMessage is a per-seat projection of the table state.
type StateMessage struct {
	Type      string    `json:"type"` // "state"
	HandID    string    `json:"hand_id,omitempty"`
	Phase     string    `json:"phase"`
	Dealer    int       `json:"dealer"`
	Community []string  `json:"community"`
	Pot       int       `json:"pot"`
	Actor     int       `json:"actor"`
	Seats     []SeatView `json:"seats"`
	Pots      []PotView `json:"pots,omitempty"`
	HandOver  bool      `json:"hand_over"`
}

// ActionRequiredMessage tells a seat it is their turn, with the legal
// action envelope so clients need not recompute it.
type ActionRequiredMessage struct {
	Type        string `json:"type"` // "action_required"
	Seat        int    `json:"seat"`
	CallAmount  int    `json:"call_amount"`
	CanCheck    bool   `json:"can_check"`
	CanBet      bool   `json:"can_bet"`
	CanRaise    bool   `json:"can_raise"`
	MinTotalBet int    `json:"min_total_bet"`
	MaxTotalBet int    `json:"max_total_bet"`
}

// parseAction maps wire action names onto engine actions.
func parseAction(name string) (game.Action, bool) {
	switch name {
	case "fold":
		return game.Fold, true
	case "check":
		return game.Check, true
	case "call":
		return game.Call, true
	case "bet":
		return game.Bet, true
	case "raise":
		return game.Raise, true
	case "allin":
		return game.AllIn, true
	default:
		return 0, false
	}
}

// projectState renders the state as seen from viewerSeat. Pass a negative
// viewer for a spectator view. Hole cards are shown only to their owner
// until the hand resolves, when live hands are exposed.
func projectState(handID string, s *game.GameState, viewerSeat int) StateMessage {
	msg := StateMessage{
		Type:      "state",
		HandID:    handID,
		Phase:     s.Phase.String(),
		Dealer:    s.Dealer,
		Community: cardNames(s.Community),
		Pot:       s.PotTotal(),
		Actor:     s.Betting.CurrentActor,
		HandOver:  s.HandOver,
	}

	for _, p := range s.Players {
		view := SeatView{
			Seat:           p.Seat,
			Stack:          p.Stack,
			CurrentBet:     p.CurrentBet,
			TotalCommitted: p.TotalCommitted,
			Status:         p.Status.String(),
		}
		show := p.Seat == viewerSeat ||
			(s.HandOver && p.Status != game.Folded && len(p.HoleCards) == 2)
		if show {
			view.HoleCards = cardNames(p.HoleCards)
		}
		msg.Seats = append(msg.Seats, view)
	}

	for i, pot := range s.Pots {
		view := PotView{Amount: pot.Amount, Eligible: pot.Eligible}
		if i < len(s.Winners) {
			view.Winners = s.Winners[i].Winners
			view.Hand = s.Winners[i].Score.String()
		}
		msg.Pots = append(msg.Pots, view)
	}
	return msg
}

func actionRequired(s *game.GameState) *ActionRequiredMessage {
	seat := s.Betting.CurrentActor
	if seat < 0 || s.HandOver {
		return nil
	}
	la := game.Legal(s, seat)
	return &ActionRequiredMessage{
		Type:        "action_required",
		Seat:        seat,
		CallAmount:  la.CallAmount,
		CanCheck:    la.CanCheck,
		CanBet:      la.CanBet,
		CanRaise:    la.CanRaise,
		MinTotalBet: la.MinTotalBet,
		MaxTotalBet: la.MaxTotalBet,
	}
}

func cardNames(cards []deck.Card) []string {
	if cards == nil {
		return nil
	}
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
