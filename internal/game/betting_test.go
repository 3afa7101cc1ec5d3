package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/deck"
)

// midStreetState builds a flop-stage state directly so betting rules can
// be exercised without replaying a whole hand.
func midStreetState(players []Player, dealer int, betting BettingState) *GameState {
	s := &GameState{
		Phase:      Flop,
		Dealer:     dealer,
		SmallBlind: 5,
		BigBlind:   10,
		Players:    players,
		Betting:    betting,
	}
	d := deck.New()
	for i := range s.Players {
		s.Players[i].Seat = i
		if s.Players[i].HoleCards == nil {
			s.Players[i].HoleCards = d.Deal(2)
		}
	}
	s.Community = d.Deal(3)
	s.Deck = d
	return s
}

func TestLegalActionsFacingNoBet(t *testing.T) {
	t.Parallel()

	s := midStreetState(
		[]Player{{Stack: 500}, {Stack: 500}, {Stack: 500}},
		0,
		BettingState{MinRaise: 10, LastFullRaiseSize: 10, Acted: map[int]bool{}, Reopener: -1, StartingIndex: 1, CurrentActor: 1},
	)

	la := Legal(s, 1)
	assert.True(t, la.InTurn)
	assert.True(t, la.CanFold)
	assert.True(t, la.CanCheck)
	assert.False(t, la.CanCall)
	assert.True(t, la.CanBet)
	assert.False(t, la.CanRaise, "nothing to raise before an opening bet")
	assert.True(t, la.CanAllIn)
	assert.Equal(t, 0, la.CallAmount)
	assert.Equal(t, 10, la.MinTotalBet, "minimum open is the big blind")
	assert.Equal(t, 500, la.MaxTotalBet)
}

func TestLegalActionsFacingABet(t *testing.T) {
	t.Parallel()

	s := midStreetState(
		[]Player{{Stack: 440, CurrentBet: 60}, {Stack: 500}, {Stack: 30}},
		0,
		BettingState{HighestBet: 60, MinRaise: 60, LastFullRaiseSize: 60, Acted: map[int]bool{0: true}, Reopener: 0, StartingIndex: 0, CurrentActor: 1},
	)

	la := Legal(s, 1)
	assert.False(t, la.CanCheck)
	assert.True(t, la.CanCall)
	assert.Equal(t, 60, la.CallAmount)
	assert.False(t, la.CanBet)
	assert.True(t, la.CanRaise)
	assert.Equal(t, 120, la.MinTotalBet)
	assert.Equal(t, 500, la.MaxTotalBet)

	// Seat 2's stack cannot exceed the bet: call or shove only.
	short := Legal(s, 2)
	assert.True(t, short.CanCall)
	assert.False(t, short.CanRaise)
	assert.True(t, short.CanAllIn)
	assert.Equal(t, 30, short.MinTotalBet, "min clamps to the whole stack")
}

func TestLegalActionsNeverMutateState(t *testing.T) {
	t.Parallel()

	s := midStreetState(
		[]Player{{Stack: 500}, {Stack: 500}},
		0,
		BettingState{MinRaise: 10, LastFullRaiseSize: 10, Acted: map[int]bool{}, Reopener: -1, StartingIndex: 1, CurrentActor: 1},
	)

	first := Legal(s, 1)
	second := Legal(s, 1)
	assert.Equal(t, first, second, "legality queries are idempotent")
	assert.Equal(t, 500, s.Players[1].Stack)
	assert.Equal(t, 0, s.Betting.HighestBet)
}

func TestShortAllInDoesNotReopenAction(t *testing.T) {
	t.Parallel()

	// Seats 0 and 1 have acted since the last full raise of 80. Seat 2
	// shoves to 120: a raise of 20, well short of 80.
	s := midStreetState(
		[]Player{
			{Stack: 400, CurrentBet: 100},
			{Stack: 400, CurrentBet: 100},
			{Stack: 20, CurrentBet: 100},
		},
		0,
		BettingState{
			HighestBet:        100,
			MinRaise:          80,
			LastFullRaiseSize: 80,
			Acted:             map[int]bool{0: true, 1: true},
			Reopener:          1,
			StartingIndex:     0,
			CurrentActor:      2,
			HasActed:          true,
		},
	)

	next, err := Apply(s, 2, AllIn, 0)
	require.NoError(t, err)

	assert.Equal(t, 120, next.Betting.HighestBet, "price to call goes up")
	assert.Equal(t, 80, next.Betting.LastFullRaiseSize, "short all-in is not a full raise")
	assert.Equal(t, 80, next.Betting.MinRaise)
	assert.True(t, next.Betting.Acted[0], "already-acted seats stay closed out")
	assert.True(t, next.Betting.Acted[1])
	assert.Equal(t, 1, next.Betting.Reopener, "reopener unchanged")

	// Seat 0 may call the new amount but not raise.
	la := Legal(next, 0)
	assert.True(t, la.CanCall)
	assert.Equal(t, 20, la.CallAmount)
	assert.False(t, la.CanRaise)

	rejected, err := Apply(next, 0, Raise, 300)
	assert.Same(t, next, rejected, "rejection returns the input state")
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 0, rej.Seat)
}

func TestFullRaiseReopensAction(t *testing.T) {
	t.Parallel()

	s := midStreetState(
		[]Player{
			{Stack: 400, CurrentBet: 100},
			{Stack: 400, CurrentBet: 100},
			{Stack: 900, CurrentBet: 100},
		},
		0,
		BettingState{
			HighestBet:        100,
			MinRaise:          80,
			LastFullRaiseSize: 80,
			Acted:             map[int]bool{0: true, 1: true},
			Reopener:          1,
			StartingIndex:     0,
			CurrentActor:      2,
			HasActed:          true,
		},
	)

	next, err := Apply(s, 2, Raise, 200)
	require.NoError(t, err)

	assert.Equal(t, 200, next.Betting.HighestBet)
	assert.Equal(t, 100, next.Betting.LastFullRaiseSize, "raise size becomes the new baseline")
	assert.Equal(t, 100, next.Betting.MinRaise)
	assert.Equal(t, 2, next.Betting.Reopener)
	assert.False(t, next.Betting.Acted[0], "full raise reopens everyone")
	assert.False(t, next.Betting.Acted[1])
	assert.True(t, next.Betting.Acted[2])

	la := Legal(next, 0)
	assert.True(t, la.CanRaise)
	assert.Equal(t, 300, la.MinTotalBet)
}

func TestUnderMinRaiseWithChipsBehindIsRejected(t *testing.T) {
	t.Parallel()

	s := midStreetState(
		[]Player{
			{Stack: 400, CurrentBet: 100},
			{Stack: 400, CurrentBet: 100},
			{Stack: 900, CurrentBet: 100},
		},
		0,
		BettingState{
			HighestBet:        100,
			MinRaise:          80,
			LastFullRaiseSize: 80,
			Acted:             map[int]bool{0: true, 1: true},
			Reopener:          1,
			StartingIndex:     0,
			CurrentActor:      2,
			HasActed:          true,
		},
	)

	rejected, err := Apply(s, 2, Raise, 150)
	assert.Same(t, s, rejected)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
}

func TestCheckFacingBetRejected(t *testing.T) {
	t.Parallel()

	s := midStreetState(
		[]Player{{Stack: 440, CurrentBet: 60}, {Stack: 500}},
		0,
		BettingState{HighestBet: 60, MinRaise: 60, LastFullRaiseSize: 60, Acted: map[int]bool{0: true}, Reopener: 0, StartingIndex: 0, CurrentActor: 1, HasActed: true},
	)

	rejected, err := Apply(s, 1, Check, 0)
	assert.Same(t, s, rejected)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, Check, rej.Action)
}

func TestOutOfTurnActionRejected(t *testing.T) {
	t.Parallel()

	s := midStreetState(
		[]Player{{Stack: 500}, {Stack: 500}, {Stack: 500}},
		0,
		BettingState{MinRaise: 10, LastFullRaiseSize: 10, Acted: map[int]bool{}, Reopener: -1, StartingIndex: 1, CurrentActor: 1},
	)

	rejected, err := Apply(s, 2, Check, 0)
	assert.Same(t, s, rejected)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Contains(t, rej.Reason, "out of turn")
}

func TestUndersizedOpenBetClampsToBigBlind(t *testing.T) {
	t.Parallel()

	s := midStreetState(
		[]Player{{Stack: 500}, {Stack: 500}},
		0,
		BettingState{MinRaise: 10, LastFullRaiseSize: 10, Acted: map[int]bool{}, Reopener: -1, StartingIndex: 1, CurrentActor: 1},
	)

	next, err := Apply(s, 1, Bet, 3)
	require.NoError(t, err)
	assert.Equal(t, 10, next.Betting.HighestBet, "request below the big blind is raised to it")
	assert.Equal(t, 10, next.Players[1].CurrentBet)
	assert.Equal(t, 1, next.Betting.Reopener)
}

func TestCallEmptyingStackBecomesAllInWithoutReopening(t *testing.T) {
	t.Parallel()

	// Seat 2 still to act, so the street does not end on the short call.
	s := midStreetState(
		[]Player{{Stack: 440, CurrentBet: 60}, {Stack: 25}, {Stack: 500}},
		0,
		BettingState{HighestBet: 60, MinRaise: 60, LastFullRaiseSize: 60, Acted: map[int]bool{0: true}, Reopener: 0, StartingIndex: 0, CurrentActor: 1, HasActed: true},
	)

	next, err := Apply(s, 1, Call, 0)
	require.NoError(t, err)

	p := next.Players[1]
	assert.Equal(t, AllInStatus, p.Status)
	assert.Equal(t, 0, p.Stack)
	assert.Equal(t, 25, p.CurrentBet, "short call commits the whole stack")
	assert.Equal(t, 60, next.Betting.HighestBet, "a short call never moves the bet")
	assert.Equal(t, 2, next.Betting.CurrentActor)
}
