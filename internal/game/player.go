package game

import "github.com/lox/holdem-engine/internal/deck"

// Status is a player's standing within the current hand.
type Status int

const (
	// Active players can still act this hand.
	Active Status = iota
	// Folded players are out of the hand but their chips stay in the pot.
	Folded
	// AllInStatus players have no stack left and take no further actions.
	AllInStatus
	// Eliminated players busted in a previous hand and are not dealt in.
	Eliminated
)

func (s Status) String() string {
	return [...]string{"active", "folded", "allin", "eliminated"}[s]
}

// Player is one seat at the table. Seat indices are fixed for the table's
// lifetime. Stack plus TotalCommitted is conserved across a hand except
// for pot payouts.
type Player struct {
	Seat           int
	Stack          int
	HoleCards      []deck.Card
	CurrentBet     int // chips committed this street
	TotalCommitted int // chips committed this hand
	Status         Status
}

// NewPlayers creates count players seated 0..count-1 with equal stacks.
func NewPlayers(count, startingStack int) []Player {
	if count < 2 {
		panic("game: at least 2 players required")
	}
	players := make([]Player, count)
	for i := range players {
		players[i] = Player{Seat: i, Stack: startingStack}
	}
	return players
}

// commit moves up to n chips from the player's stack into the current bet.
// A player whose stack hits zero transitions atomically to all-in.
func (p *Player) commit(n int) int {
	if n > p.Stack {
		n = p.Stack
	}
	p.Stack -= n
	p.CurrentBet += n
	p.TotalCommitted += n
	if p.Stack == 0 && p.Status == Active {
		p.Status = AllInStatus
	}
	return n
}

// clone returns a deep copy of the player.
func (p Player) clone() Player {
	out := p
	if p.HoleCards != nil {
		out.HoleCards = make([]deck.Card, len(p.HoleCards))
		copy(out.HoleCards, p.HoleCards)
	}
	return out
}
