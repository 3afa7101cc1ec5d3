package game

import (
	"fmt"
	"strings"

	"github.com/lox/holdem-engine/internal/deck"
)

// History is an append-only record of one hand: the setup, every applied
// action in order, the board as it was dealt and the final pot awards.
// The engine itself never writes one; the layer driving the engine records
// entries as it applies actions, which doubles as the audit log for the
// single-writer event stream.
type History struct {
	HandID     string
	Dealer     int
	SmallBlind int
	BigBlind   int
	Stacks     []int
	Actions    []ActionRecord
	Board      []deck.Card
	Results    []PotResult
}

// ActionRecord is one applied action.
type ActionRecord struct {
	Phase  Phase
	Seat   int
	Action Action
	Amount int
}

// NewHistory starts a history from the state returned by StartHand.
func NewHistory(handID string, s *GameState) *History {
	h := &History{
		HandID:     handID,
		Dealer:     s.Dealer,
		SmallBlind: s.SmallBlind,
		BigBlind:   s.BigBlind,
		Stacks:     make([]int, len(s.Players)),
	}
	for i, p := range s.Players {
		h.Stacks[i] = p.Stack + p.TotalCommitted
	}
	return h
}

// Record appends an applied action and captures any newly dealt board
// cards and, once the hand is over, the results.
func (h *History) Record(s *GameState, seat int, action Action, amount int) {
	h.Actions = append(h.Actions, ActionRecord{
		Phase:  s.Phase,
		Seat:   seat,
		Action: action,
		Amount: amount,
	})
	if len(s.Community) > len(h.Board) {
		h.Board = append([]deck.Card(nil), s.Community...)
	}
	if s.HandOver && h.Results == nil {
		h.Results = make([]PotResult, len(s.Winners))
		for i, r := range s.Winners {
			h.Results[i] = r.clone()
		}
	}
}

// Summary renders a compact one-hand transcript for logs.
func (h *History) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "hand %s dealer=%d blinds=%d/%d\n", h.HandID, h.Dealer, h.SmallBlind, h.BigBlind)
	for _, a := range h.Actions {
		fmt.Fprintf(&b, "  [%s] seat %d %s", a.Phase, a.Seat, a.Action)
		if a.Amount > 0 {
			fmt.Fprintf(&b, " %d", a.Amount)
		}
		b.WriteByte('\n')
	}
	if len(h.Board) > 0 {
		fmt.Fprintf(&b, "  board %v\n", h.Board)
	}
	for _, r := range h.Results {
		fmt.Fprintf(&b, "  pot %d -> seats %v (%s)\n", r.Pot.Amount, r.Winners, r.Score)
	}
	return b.String()
}
