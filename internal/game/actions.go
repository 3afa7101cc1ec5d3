package game

import "fmt"

// Action is a player action kind.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "bet", "raise", "allin"}[a]
}

// Rejection is the typed error returned when a player action is illegal.
// The accompanying state is the input state, unchanged. A conforming
// caller consults LegalActions first and should never see one.
type Rejection struct {
	Seat   int
	Action Action
	Reason string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("rejected %s by seat %d: %s", r.Action, r.Seat, r.Reason)
}

func reject(seat int, action Action, format string, args ...any) *Rejection {
	return &Rejection{Seat: seat, Action: action, Reason: fmt.Sprintf(format, args...)}
}

// LegalActions describes what a seat may legally do right now. Callers use
// it to validate or enable controls before calling Apply. Querying never
// mutates state.
type LegalActions struct {
	Seat       int
	InTurn     bool
	CanFold    bool
	CanCheck   bool
	CanCall    bool
	CanBet     bool
	CanRaise   bool
	CanAllIn   bool
	CallAmount int
	// MinTotalBet and MaxTotalBet bound the total a bet or raise must
	// bring the seat's street commitment to. A stack too short for
	// MinTotalBet can still move all-in for less.
	MinTotalBet int
	MaxTotalBet int
}

// Legal computes the legal actions for a seat. Out-of-turn seats get
// InTurn=false but the amounts are still computed against the current
// betting state.
func Legal(s *GameState, seat int) LegalActions {
	if seat < 0 || seat >= len(s.Players) {
		panic(fmt.Sprintf("game: seat %d out of range", seat))
	}

	la := LegalActions{Seat: seat}
	p := s.Players[seat]
	if !s.inBettingPhase() || s.HandOver || p.Status != Active {
		return la
	}

	b := s.Betting
	la.InTurn = seat == b.CurrentActor
	la.CallAmount = b.HighestBet - p.CurrentBet
	if la.CallAmount < 0 {
		la.CallAmount = 0
	}

	la.CanFold = true
	la.CanCheck = la.CallAmount == 0
	la.CanCall = la.CallAmount > 0 && p.Stack > 0
	la.CanBet = b.HighestBet == 0 && p.Stack > 0
	la.CanRaise = b.HighestBet > 0 && !b.Acted[seat] && p.CurrentBet+p.Stack > b.HighestBet
	la.CanAllIn = p.Stack > 0

	la.MaxTotalBet = p.CurrentBet + p.Stack
	la.MinTotalBet = b.HighestBet + b.MinRaise
	if la.CanBet && la.MinTotalBet < s.BigBlind {
		la.MinTotalBet = s.BigBlind
	}
	if la.MinTotalBet > la.MaxTotalBet {
		la.MinTotalBet = la.MaxTotalBet
	}
	return la
}

// Apply applies one player action and returns the resulting state. The
// input state is never mutated. Illegal actions return the input state
// unchanged together with a *Rejection; amount is the total street
// commitment requested for Bet and Raise and is ignored otherwise.
func Apply(s *GameState, seat int, action Action, amount int) (*GameState, error) {
	if seat < 0 || seat >= len(s.Players) {
		panic(fmt.Sprintf("game: seat %d out of range", seat))
	}
	if s.HandOver || !s.inBettingPhase() {
		return s, reject(seat, action, "no betting in progress")
	}
	if seat != s.Betting.CurrentActor {
		return s, reject(seat, action, "out of turn")
	}
	if s.Players[seat].Status != Active {
		return s, reject(seat, action, "player cannot act")
	}

	next := s.Clone()
	if rej := next.applyAction(seat, action, amount); rej != nil {
		return s, rej
	}
	next.afterAction()
	return next, nil
}

// applyAction mutates the (already cloned) state for one action, or
// returns a rejection leaving the caller to discard the clone.
func (s *GameState) applyAction(seat int, action Action, amount int) *Rejection {
	p := &s.Players[seat]
	b := &s.Betting
	callAmount := max(0, b.HighestBet-p.CurrentBet)

	switch action {
	case Fold:
		p.Status = Folded

	case Check:
		if callAmount > 0 {
			return reject(seat, action, "facing a bet of %d, cannot check", callAmount)
		}

	case Call:
		if callAmount == 0 {
			return reject(seat, action, "nothing to call")
		}
		// A call that empties the stack is a short all-in, not a raise,
		// and never reopens the action.
		p.commit(callAmount)

	case Bet:
		if b.HighestBet > 0 {
			return reject(seat, action, "facing a bet, raise instead")
		}
		if p.Stack == 0 {
			return reject(seat, action, "no chips")
		}
		// Under-sized requests are clamped up to the big blind, or to the
		// whole stack if that is smaller.
		target := amount
		if target < s.BigBlind {
			target = s.BigBlind
		}
		s.openBet(seat, min(target, p.CurrentBet+p.Stack))

	case Raise:
		if b.HighestBet == 0 {
			return reject(seat, action, "nothing to raise, bet instead")
		}
		if b.Acted[seat] {
			return reject(seat, action, "action not reopened since last full raise")
		}
		maxTotal := p.CurrentBet + p.Stack
		if maxTotal <= b.HighestBet {
			return reject(seat, action, "stack cannot exceed the current bet")
		}
		target := min(amount, maxTotal)
		if target <= b.HighestBet {
			return reject(seat, action, "raise to %d does not exceed current bet %d", target, b.HighestBet)
		}
		if target < b.HighestBet+b.MinRaise && target < maxTotal {
			return reject(seat, action, "raise to %d below minimum %d", target, b.HighestBet+b.MinRaise)
		}
		s.raiseTo(seat, target)

	case AllIn:
		if p.Stack == 0 {
			return reject(seat, action, "no chips")
		}
		target := p.CurrentBet + p.Stack
		switch {
		case b.HighestBet == 0:
			// Opening shove: always a full bet, even below the big blind.
			s.openBet(seat, target)
		case target > b.HighestBet:
			s.raiseTo(seat, target)
		default:
			// Short all-in call; the highest bet is unchanged.
			p.commit(callAmount)
		}

	default:
		return reject(seat, action, "unknown action")
	}

	b.Acted[seat] = true
	b.HasActed = true
	return nil
}

// openBet commits an opening bet. An opening bet is always full: it
// reopens the action for everyone and becomes the raise baseline.
func (s *GameState) openBet(seat, target int) {
	p := &s.Players[seat]
	p.commit(target - p.CurrentBet)
	b := &s.Betting
	b.HighestBet = p.CurrentBet
	b.MinRaise = p.CurrentBet
	b.LastFullRaiseSize = p.CurrentBet
	b.Acted = map[int]bool{seat: true}
	b.Reopener = seat
}

// raiseTo commits a raise to the given street total. A raise at or above
// the last full raise size reopens the action; a shorter all-in raises
// the price to call but leaves already-acted players closed out.
func (s *GameState) raiseTo(seat, target int) {
	p := &s.Players[seat]
	b := &s.Betting
	raiseSize := target - b.HighestBet
	p.commit(target - p.CurrentBet)
	b.HighestBet = target
	if raiseSize >= b.LastFullRaiseSize {
		b.MinRaise = raiseSize
		b.LastFullRaiseSize = raiseSize
		b.Acted = map[int]bool{seat: true}
		b.Reopener = seat
	}
}

// afterAction decides what happens next: early termination when only one
// player remains, street advancement when the round is complete, or
// passing the action clockwise.
func (s *GameState) afterAction() {
	if s.liveCount() <= 1 {
		s.resolve()
		return
	}
	if s.roundComplete() {
		s.advanceStreet()
		return
	}
	s.Betting.CurrentActor = s.nextActor(s.Betting.CurrentActor + 1)
}

// roundComplete reports whether the betting round has ended: every player
// that can still act has matched the highest bet and acted since the last
// full raise, and at least one action has occurred. If nobody can act the
// round ends immediately.
func (s *GameState) roundComplete() bool {
	acting := s.actingCount()
	if acting == 0 {
		return true
	}

	matched, acted := true, true
	for _, p := range s.Players {
		if p.Status != Active {
			continue
		}
		if p.CurrentBet != s.Betting.HighestBet {
			matched = false
		}
		if !s.Betting.Acted[p.Seat] {
			acted = false
		}
	}

	// A lone player facing only all-ins has nobody left to bet against;
	// once matched the street (and any further streets) play out.
	if acting == 1 && s.liveCount() > 1 && matched {
		return true
	}

	return s.Betting.HasActed && matched && acted
}
