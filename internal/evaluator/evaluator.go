// Package evaluator ranks 5-7 card poker hands into totally ordered scores.
//
// A Score is a tier (high card through straight flush) plus a kicker
// sequence used for same-tier tie-breaking. For 6 and 7 card inputs every
// 5-card subset is evaluated and the maximum kept; at C(7,5)=21
// evaluations per hand this is cheap and needs no lookup tables.
package evaluator

import (
	"sort"

	"github.com/lox/holdem-engine/internal/deck"
)

// Tier is the hand category. Higher tiers beat lower tiers outright.
type Tier int

const (
	// TierIncomplete is the sentinel for fewer than 5 cards. It sorts
	// below every real tier and is never compared for real outcomes.
	TierIncomplete Tier = iota - 1
	HighCard
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns the display label for the tier.
func (t Tier) String() string {
	switch t {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Incomplete"
	}
}

// Score is a totally ordered hand strength.
type Score struct {
	Tier    Tier
	Kickers []int
}

// Incomplete returns the sentinel score for hands with fewer than 5 cards.
func Incomplete() Score {
	return Score{Tier: TierIncomplete}
}

// String returns the display label, e.g. "Two Pair".
func (s Score) String() string {
	return s.Tier.String()
}

// Compare returns 1 if s beats o, -1 if o beats s, 0 for an exact tie.
// Higher tier wins outright; within a tier the kicker sequences are
// compared element by element and the first difference decides.
func Compare(s, o Score) int {
	if s.Tier != o.Tier {
		if s.Tier > o.Tier {
			return 1
		}
		return -1
	}
	for i := 0; i < len(s.Kickers) && i < len(o.Kickers); i++ {
		if s.Kickers[i] != o.Kickers[i] {
			if s.Kickers[i] > o.Kickers[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Evaluate scores the best 5-card hand from 5-7 cards. With fewer than 5
// cards it returns the incomplete sentinel.
func Evaluate(cards []deck.Card) Score {
	if len(cards) < 5 {
		return Incomplete()
	}
	if len(cards) == 5 {
		return Evaluate5(cards)
	}

	// Exhaustive best-of over every 5-card subset.
	best := Incomplete()
	n := len(cards)
	pick := make([]deck.Card, 5)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == 5 {
			if s := Evaluate5(pick); Compare(s, best) > 0 {
				best = s
			}
			return
		}
		for i := start; i <= n-(5-depth); i++ {
			pick[depth] = cards[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return best
}

// Evaluate5 scores exactly 5 cards.
func Evaluate5(cards []deck.Card) Score {
	if len(cards) != 5 {
		panic("evaluator: Evaluate5 requires exactly 5 cards")
	}

	values := make([]int, 5)
	flush := true
	for i, c := range cards {
		values[i] = c.Value()
		if c.Suit != cards[0].Suit {
			flush = false
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	straightKickers := straightRun(values)

	if flush && straightKickers != nil {
		return Score{Tier: StraightFlush, Kickers: straightKickers}
	}
	if flush {
		return Score{Tier: Flush, Kickers: values}
	}
	if straightKickers != nil {
		return Score{Tier: Straight, Kickers: straightKickers}
	}

	return groupScore(values)
}

// straightRun returns the kicker sequence for a straight, or nil. The
// wheel A-2-3-4-5 scores as [5 4 3 2 1] despite the ace's normal value.
func straightRun(sorted []int) []int {
	consecutive := true
	for i := 1; i < 5; i++ {
		if sorted[i] != sorted[i-1]-1 {
			consecutive = false
			break
		}
	}
	if consecutive {
		out := make([]int, 5)
		copy(out, sorted)
		return out
	}

	// Wheel: ace plays low under 5-4-3-2.
	if sorted[0] == int(deck.Ace) &&
		sorted[1] == 5 && sorted[2] == 4 && sorted[3] == 3 && sorted[4] == 2 {
		return []int{5, 4, 3, 2, deck.LowAceValue}
	}
	return nil
}

// groupScore classifies quads, full houses, trips, pairs and high cards
// from rank multiplicities.
func groupScore(sorted []int) Score {
	counts := map[int]int{}
	for _, v := range sorted {
		counts[v]++
	}

	type group struct {
		value int
		count int
	}
	groups := make([]group, 0, len(counts))
	for v, c := range counts {
		groups = append(groups, group{value: v, count: c})
	}
	// Sorted by multiplicity first, then rank, both descending, so the
	// tier-specific kicker order falls straight out of the group order.
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].value > groups[j].value
	})

	kickers := make([]int, 0, 5)
	for _, g := range groups {
		kickers = append(kickers, g.value)
	}

	switch {
	case groups[0].count == 4:
		return Score{Tier: FourOfAKind, Kickers: kickers}
	case groups[0].count == 3 && groups[1].count == 2:
		return Score{Tier: FullHouse, Kickers: kickers}
	case groups[0].count == 3:
		return Score{Tier: ThreeOfAKind, Kickers: kickers}
	case groups[0].count == 2 && groups[1].count == 2:
		return Score{Tier: TwoPair, Kickers: kickers}
	case groups[0].count == 2:
		return Score{Tier: Pair, Kickers: kickers}
	default:
		return Score{Tier: HighCard, Kickers: kickers}
	}
}
