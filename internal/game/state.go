package game

import (
	"github.com/lox/holdem-engine/internal/deck"
)

// Phase is the lifecycle stage of the hand.
type Phase int

const (
	Idle Phase = iota
	Preflop
	Flop
	Turn
	River
	Showdown
)

func (p Phase) String() string {
	return [...]string{"idle", "preflop", "flop", "turn", "river", "showdown"}[p]
}

// BettingState holds the per-street betting bookkeeping. It is reset when
// a new street begins.
type BettingState struct {
	// HighestBet is the largest CurrentBet any player has this street.
	HighestBet int
	// MinRaise is the size the next raise must meet or exceed.
	MinRaise int
	// LastFullRaiseSize is the size of the most recent bet or raise that
	// legally reopened the action.
	LastFullRaiseSize int
	// Acted marks seats that have acted since the last full raise. A seat
	// in this set may no longer raise until the action is reopened.
	Acted map[int]bool
	// Reopener is the seat whose full bet/raise most recently required
	// everyone else to act again. Preflop it starts as the big blind.
	Reopener int
	// StartingIndex is the first-to-act seat for this street.
	StartingIndex int
	// CurrentActor is the seat whose turn it is, or -1.
	CurrentActor int
	// HasActed reports whether any action has occurred this street.
	HasActed bool
}

func (b BettingState) clone() BettingState {
	out := b
	out.Acted = make(map[int]bool, len(b.Acted))
	for seat := range b.Acted {
		out.Acted[seat] = true
	}
	return out
}

// GameState is the single unit of truth for a table. Every mutating
// operation produces a new GameState; no two in-flight computations can
// observe a half-updated table.
type GameState struct {
	Deck       *deck.Deck
	Community  []deck.Card
	Phase      Phase
	Dealer     int
	SmallBlind int
	BigBlind   int
	Players    []Player
	Betting    BettingState
	// Pots and Winners are populated only when the hand ends.
	Pots     []Pot
	Winners  []PotResult
	HandOver bool
}

// NewGameState creates an idle table from the given players and stakes.
// Blind and dealer misconfiguration is a caller bug and panics.
func NewGameState(players []Player, smallBlind, bigBlind, dealer int) *GameState {
	if len(players) < 2 {
		panic("game: at least 2 players required")
	}
	if smallBlind <= 0 || bigBlind < smallBlind {
		panic("game: blinds must satisfy 0 < small <= big")
	}
	if dealer < 0 || dealer >= len(players) {
		panic("game: dealer seat out of range")
	}

	seated := make([]Player, len(players))
	for i, p := range players {
		seated[i] = p.clone()
		seated[i].Seat = i
	}

	return &GameState{
		Phase:      Idle,
		Dealer:     dealer,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		Players:    seated,
		Betting:    BettingState{Reopener: -1, CurrentActor: -1, StartingIndex: -1},
	}
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() *GameState {
	out := *s
	if s.Deck != nil {
		out.Deck = s.Deck.Clone()
	}
	if s.Community != nil {
		out.Community = make([]deck.Card, len(s.Community))
		copy(out.Community, s.Community)
	}
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.clone()
	}
	out.Betting = s.Betting.clone()
	out.Pots = clonePots(s.Pots)
	if s.Winners != nil {
		out.Winners = make([]PotResult, len(s.Winners))
		for i, r := range s.Winners {
			out.Winners[i] = r.clone()
		}
	}
	return &out
}

// PotTotal returns the chips committed to the hand so far by all players.
func (s *GameState) PotTotal() int {
	total := 0
	for _, p := range s.Players {
		total += p.TotalCommitted
	}
	return total
}

// nextActor returns the first seat at or after from (clockwise, wrapping)
// that can still act, or -1 if none can.
func (s *GameState) nextActor(from int) int {
	n := len(s.Players)
	for i := 0; i < n; i++ {
		seat := ((from + i) % n + n) % n
		if s.Players[seat].Status == Active {
			return seat
		}
	}
	return -1
}

// liveCount returns the number of players still contesting the hand
// (dealt in and not folded).
func (s *GameState) liveCount() int {
	count := 0
	for _, p := range s.Players {
		if len(p.HoleCards) == 2 && p.Status != Folded && p.Status != Eliminated {
			count++
		}
	}
	return count
}

// actingCount returns the number of players that can still take actions.
func (s *GameState) actingCount() int {
	count := 0
	for _, p := range s.Players {
		if p.Status == Active {
			count++
		}
	}
	return count
}

func (s *GameState) inBettingPhase() bool {
	return s.Phase >= Preflop && s.Phase <= River
}
