package game

import (
	rand "math/rand/v2"

	"github.com/lox/holdem-engine/internal/deck"
)

// HandOption configures StartHand.
type HandOption func(*handConfig)

type handConfig struct {
	deck *deck.Deck
}

// WithDeck uses a pre-arranged deck instead of shuffling a fresh one.
// The deck is consumed as-is, which makes dealt cards deterministic in
// tests.
func WithDeck(d *deck.Deck) HandOption {
	return func(c *handConfig) {
		c.deck = d
	}
}

// StartHand deals a new hand: shuffles, deals two hole cards to every
// seated player clockwise from the dealer's left, posts blinds (capped at
// the poster's stack) and hands the action to the first seat left of the
// big blind. Stacks persist from the previous hand; per-hand fields reset.
//
// The RNG is explicit so that shuffling, the engine's only source of
// non-determinism, is seedable by the caller.
func StartHand(s *GameState, rng *rand.Rand, opts ...HandOption) *GameState {
	if s.SmallBlind <= 0 || s.BigBlind < s.SmallBlind {
		panic("game: hand started with no configured blinds")
	}
	if s.inBettingPhase() && !s.HandOver {
		panic("game: hand already in progress")
	}

	cfg := &handConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	next := s.Clone()
	next.Community = nil
	next.Pots = nil
	next.Winners = nil
	next.HandOver = false

	// Busted players sit out; everyone else starts the hand active.
	dealt := 0
	for i := range next.Players {
		p := &next.Players[i]
		p.HoleCards = nil
		p.CurrentBet = 0
		p.TotalCommitted = 0
		if p.Stack == 0 {
			p.Status = Eliminated
		} else {
			p.Status = Active
			dealt++
		}
	}
	if dealt < 2 {
		panic("game: fewer than 2 players with chips")
	}

	if cfg.deck != nil {
		next.Deck = cfg.deck.Clone()
	} else {
		if rng == nil {
			panic("game: rng required to start a hand")
		}
		next.Deck = deck.NewShuffled(rng)
	}
	if next.Deck.Remaining() < 2*dealt+5 {
		panic("game: not enough cards to start a hand")
	}

	// Two cards to each live seat, clockwise from the dealer's left.
	n := len(next.Players)
	for i := 1; i <= n; i++ {
		seat := (next.Dealer + i) % n
		if next.Players[seat].Status == Active {
			next.Players[seat].HoleCards = next.Deck.Deal(2)
		}
	}

	sbSeat, bbSeat := next.blindSeats()
	next.Players[sbSeat].commit(next.SmallBlind)
	next.Players[bbSeat].commit(next.BigBlind)

	first := next.nextActor(bbSeat + 1)
	next.Phase = Preflop
	next.Betting = BettingState{
		HighestBet:        next.BigBlind,
		MinRaise:          next.BigBlind,
		LastFullRaiseSize: next.BigBlind,
		Acted:             make(map[int]bool),
		// The big blind is the baseline reopener: with no raise, the
		// round closes only once the big blind has taken their option.
		Reopener:      bbSeat,
		StartingIndex: first,
		CurrentActor:  first,
	}

	// Blinds can put everyone all-in; if nobody can act, run the board
	// out immediately.
	if next.Betting.CurrentActor == -1 || next.roundComplete() {
		next.advanceStreet()
	}
	return next
}

// blindSeats returns the small and big blind seats for this hand. Heads-up
// the dealer posts the small blind and acts first preflop.
func (s *GameState) blindSeats() (sb, bb int) {
	first := s.nextActor(s.Dealer + 1)
	second := s.nextActor(first + 1)
	if s.actingCount() == 2 {
		dealerLive := s.Players[s.Dealer].Status == Active
		if dealerLive {
			return s.Dealer, s.nextActor(s.Dealer + 1)
		}
	}
	return first, second
}
