package game

// advanceStreet moves the hand to the next street, dealing community
// cards, or to resolution after the river. If nobody can act on the new
// street (everyone live is all-in) it keeps advancing so the board runs
// out to the river.
func (s *GameState) advanceStreet() {
	for {
		switch s.Phase {
		case Preflop:
			s.Phase = Flop
			s.Deck.Burn()
			s.Community = append(s.Community, s.Deck.Deal(3)...)
		case Flop:
			s.Phase = Turn
			s.Deck.Burn()
			s.Community = append(s.Community, s.Deck.DealOne())
		case Turn:
			s.Phase = River
			s.Deck.Burn()
			s.Community = append(s.Community, s.Deck.DealOne())
		case River:
			s.resolve()
			return
		default:
			return
		}

		s.resetBetting()
		if s.Betting.CurrentActor != -1 && !s.roundComplete() {
			return
		}
	}
}

// resetBetting clears the per-street betting fields and hands the action
// to the first live seat left of the dealer.
func (s *GameState) resetBetting() {
	for i := range s.Players {
		s.Players[i].CurrentBet = 0
	}
	first := s.nextActor(s.Dealer + 1)
	s.Betting = BettingState{
		MinRaise:          s.BigBlind,
		LastFullRaiseSize: s.BigBlind,
		Acted:             make(map[int]bool),
		Reopener:          -1,
		StartingIndex:     first,
		CurrentActor:      first,
	}
}
