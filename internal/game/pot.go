package game

import (
	"sort"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/evaluator"
)

// Pot is a quantity of chips plus the seats eligible to win it. Pots are
// built fresh from total commitments when the hand resolves.
type Pot struct {
	Amount   int
	Eligible []int
}

func (p Pot) clone() Pot {
	out := Pot{Amount: p.Amount}
	if p.Eligible != nil {
		out.Eligible = append([]int(nil), p.Eligible...)
	}
	return out
}

func clonePots(pots []Pot) []Pot {
	if pots == nil {
		return nil
	}
	out := make([]Pot, len(pots))
	for i, p := range pots {
		out[i] = p.clone()
	}
	return out
}

// PotResult records how one pot was awarded.
type PotResult struct {
	Pot     Pot
	Winners []int
	// Score is the winning hand score, or the incomplete sentinel when
	// the pot was won without a showdown comparison.
	Score evaluator.Score
}

func (r PotResult) clone() PotResult {
	out := r
	out.Pot = r.Pot.clone()
	if r.Winners != nil {
		out.Winners = append([]int(nil), r.Winners...)
	}
	if r.Score.Kickers != nil {
		out.Score.Kickers = append([]int(nil), r.Score.Kickers...)
	}
	return out
}

// SidePots partitions all committed chips into pots by commitment level,
// smallest level first. For each distinct level L the pot slice is
// (L-previous) x (players committed at least L); eligibility is the
// non-folded subset of those players. Folded chips count toward amounts
// but never toward eligibility. The sum of all pots always equals the sum
// of total commitments.
func SidePots(players []Player) []Pot {
	levels := make([]int, 0, len(players))
	seen := make(map[int]bool)
	for _, p := range players {
		if p.TotalCommitted > 0 && !seen[p.TotalCommitted] {
			seen[p.TotalCommitted] = true
			levels = append(levels, p.TotalCommitted)
		}
	}
	sort.Ints(levels)

	pots := make([]Pot, 0, len(levels))
	prev := 0
	carried := 0
	for _, level := range levels {
		pot := Pot{Amount: carried}
		carried = 0
		for _, p := range players {
			if p.TotalCommitted < level {
				continue
			}
			pot.Amount += level - prev
			if p.Status != Folded {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		prev = level

		// A slice whose contributors all folded has no one to win it;
		// fold it into the next level up.
		if len(pot.Eligible) == 0 {
			carried = pot.Amount
			continue
		}
		pots = append(pots, pot)
	}
	if carried > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += carried
	}
	return pots
}

// resolve ends the hand: builds the pots from total commitments, finds
// each pot's winners by hand strength and pays them out. Ties split by
// integer division with the remainder going one chip at a time clockwise
// from the dealer's left. Called at showdown or when a fold-out leaves a
// single live player, in which case every pot has one eligible seat and
// no comparison happens.
func (s *GameState) resolve() {
	s.Phase = Showdown
	s.HandOver = true
	s.Betting.CurrentActor = -1
	s.Pots = SidePots(s.Players)
	s.Winners = make([]PotResult, 0, len(s.Pots))

	scores := make(map[int]evaluator.Score)
	for _, pot := range s.Pots {
		result := PotResult{Pot: pot.clone(), Score: evaluator.Incomplete()}

		if len(pot.Eligible) == 1 {
			result.Winners = []int{pot.Eligible[0]}
		} else {
			best := evaluator.Incomplete()
			var winners []int
			for _, seat := range pot.Eligible {
				sc, ok := scores[seat]
				if !ok {
					cards := append([]deck.Card(nil), s.Players[seat].HoleCards...)
					cards = append(cards, s.Community...)
					sc = evaluator.Evaluate(cards)
					scores[seat] = sc
				}
				switch evaluator.Compare(sc, best) {
				case 1:
					best = sc
					winners = []int{seat}
				case 0:
					winners = append(winners, seat)
				}
			}
			result.Winners = winners
			result.Score = best
		}

		s.payout(result.Pot.Amount, result.Winners)
		s.Winners = append(s.Winners, result)
	}

	// Players left with nothing are out of the game.
	for i := range s.Players {
		if s.Players[i].Stack == 0 {
			s.Players[i].Status = Eliminated
		}
	}
}

// payout splits amount among winners; the integer-division remainder is
// distributed one chip at a time clockwise starting left of the dealer,
// skipping non-winners.
func (s *GameState) payout(amount int, winners []int) {
	if len(winners) == 0 || amount == 0 {
		return
	}
	share := amount / len(winners)
	remainder := amount % len(winners)

	isWinner := make(map[int]bool, len(winners))
	for _, seat := range winners {
		isWinner[seat] = true
		s.Players[seat].Stack += share
	}

	n := len(s.Players)
	for i := 1; i <= n && remainder > 0; i++ {
		seat := (s.Dealer + i) % n
		if isWinner[seat] {
			s.Players[seat].Stack++
			remainder--
		}
	}
}
