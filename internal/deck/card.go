package deck

import "fmt"

// Suit represents a card suit.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the suit symbol.
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Rank represents a card rank. Aces are high (14); the low-ace value of 1
// exists only as an evaluator kicker for the wheel straight.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// LowAceValue is the kicker value an ace takes in the A-2-3-4-5 straight.
const LowAceValue = 1

// String returns the single-character rank, with T for ten.
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Nine:
		return fmt.Sprintf("%d", int(r))
	case r == Ten:
		return "T"
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card is an immutable playing card value.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card.
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the card as rank then suit, e.g. "A♠".
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Value returns the comparison value of the card. Aces are high.
func (c Card) Value() int {
	return int(c.Rank)
}
