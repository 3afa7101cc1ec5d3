package deck

import (
	"fmt"
	rand "math/rand/v2"
)

// Size is the number of cards in a fresh deck.
const Size = 52

// Deck is an ordered sequence of the 52 unique cards, consumed from the
// front. Dealing past the end is a caller bug and panics: the machine that
// owns the deck must guarantee 2×seats+5 cards before a hand starts.
type Deck struct {
	cards []Card
}

// New creates a full deck in canonical order (unshuffled).
func New() *Deck {
	d := &Deck{cards: make([]Card, 0, Size)}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	return d
}

// NewShuffled creates a full deck and shuffles it with rng.
func NewShuffled(rng *rand.Rand) *Deck {
	d := New()
	d.Shuffle(rng)
	return d
}

// Shuffle applies a uniform Fisher-Yates permutation using rng.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top n cards.
func (d *Deck) Deal(n int) []Card {
	if n > len(d.cards) {
		panic(fmt.Sprintf("deck: deal %d with %d remaining", n, len(d.cards)))
	}
	cards := make([]Card, n)
	copy(cards, d.cards[:n])
	d.cards = d.cards[n:]
	return cards
}

// DealOne removes and returns the top card.
func (d *Deck) DealOne() Card {
	return d.Deal(1)[0]
}

// Burn discards the top card without exposing it.
func (d *Deck) Burn() {
	if len(d.cards) == 0 {
		panic("deck: burn from empty deck")
	}
	d.cards = d.cards[1:]
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Clone returns a deep copy of the deck.
func (d *Deck) Clone() *Deck {
	cards := make([]Card, len(d.cards))
	copy(cards, d.cards)
	return &Deck{cards: cards}
}
