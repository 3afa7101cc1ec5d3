package server

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/handid"
)

// Session runs one table. All player actions are serialised into a single
// ordered queue and applied one at a time against the last-committed
// state by the Run loop, so the engine's sequential semantics hold no
// matter how many connections feed it. Reads of committed snapshots are
// always safe because states are immutable once produced.
type Session struct {
	cfg    TableConfig
	logger *log.Logger
	clock  quartz.Clock
	rng    *rand.Rand

	actions chan actionRequest

	mu      sync.RWMutex
	state   *game.GameState
	handID  string
	history *game.History
	hands   int
	subs    map[int]chan *game.GameState
	nextSub int
}

type actionRequest struct {
	seat   int
	action game.Action
	amount int
	reply  chan error
}

// NewSession creates a session for the configured table. The clock is
// injectable so decision timeouts are testable; pass quartz.NewReal()
// in production.
func NewSession(cfg TableConfig, logger *log.Logger, clock quartz.Clock, rng *rand.Rand) *Session {
	players := game.NewPlayers(cfg.Seats, cfg.StartingStack)
	state := game.NewGameState(players, cfg.SmallBlind, cfg.BigBlind, 0)

	return &Session{
		cfg:     cfg,
		logger:  logger.With("table", cfg.Name),
		clock:   clock,
		rng:     rng,
		actions: make(chan actionRequest),
		state:   state,
		subs:    make(map[int]chan *game.GameState),
	}
}

// Snapshot returns the last committed state. The state is immutable;
// callers may read it freely.
func (s *Session) Snapshot() *game.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// HandID returns the id of the hand in progress.
func (s *Session) HandID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handID
}

// Subscribe returns a channel that receives every committed state. The
// cancel function must be called to release the subscription. Slow
// subscribers miss intermediate states rather than blocking the table.
func (s *Session) Subscribe() (<-chan *game.GameState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan *game.GameState, 16)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// Submit queues one player action and waits for the Run loop to apply
// it. A *game.Rejection is returned unwrapped so callers can surface the
// reason to the player.
func (s *Session) Submit(ctx context.Context, seat int, action game.Action, amount int) error {
	req := actionRequest{seat: seat, action: action, amount: amount, reply: make(chan error, 1)}
	select {
	case s.actions <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run plays hands until the context is cancelled, the hand limit is
// reached, or fewer than two funded players remain.
func (s *Session) Run(ctx context.Context) error {
	for {
		if limit := s.cfg.HandLimit; limit > 0 && s.hands >= limit {
			s.logger.Info("hand limit reached", "hands", s.hands)
			return nil
		}
		if s.fundedSeats() < 2 {
			s.logger.Info("table finished, one stack remains", "hands", s.hands)
			return nil
		}

		if err := s.playHand(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		s.hands++
	}
}

func (s *Session) playHand(ctx context.Context) error {
	s.rotateButton()

	state := game.StartHand(s.Snapshot(), s.rng)
	id := handid.New()

	s.mu.Lock()
	s.handID = id
	s.history = game.NewHistory(id, state)
	s.mu.Unlock()

	s.logger.Info("hand started",
		"hand", id,
		"dealer", state.Dealer,
		"blinds", []int{state.SmallBlind, state.BigBlind})
	s.commit(state)

	for !state.HandOver {
		next, err := s.awaitAction(ctx, state)
		if err != nil {
			return err
		}
		state = next
	}

	s.logHandEnd(state)
	return nil
}

// awaitAction blocks for the current actor's decision, auto-checking or
// auto-folding them if the decision clock expires.
func (s *Session) awaitAction(ctx context.Context, state *game.GameState) (*game.GameState, error) {
	actor := state.Betting.CurrentActor

	var timeout <-chan time.Time
	var timer *quartz.Timer
	if d := s.cfg.ActionTimeout(); d > 0 {
		timer = s.clock.NewTimer(d, "action", s.cfg.Name)
		timeout = timer.C
		defer timer.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case req := <-s.actions:
			next, err := game.Apply(state, req.seat, req.action, req.amount)
			if err != nil {
				req.reply <- err
				continue
			}
			s.record(next, req.seat, req.action, req.amount)
			s.commit(next)
			req.reply <- nil
			return next, nil

		case <-timeout:
			action := game.Fold
			if game.Legal(state, actor).CanCheck {
				action = game.Check
			}
			s.logger.Warn("decision clock expired", "seat", actor, "action", action)
			next, err := game.Apply(state, actor, action, 0)
			if err != nil {
				// Folding the actor in turn cannot be rejected.
				return nil, err
			}
			s.record(next, actor, action, 0)
			s.commit(next)
			return next, nil
		}
	}
}

func (s *Session) record(state *game.GameState, seat int, action game.Action, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history != nil {
		s.history.Record(state, seat, action, amount)
	}
}

// commit publishes a newly produced state as the latest committed one.
func (s *Session) commit(state *game.GameState) {
	s.mu.Lock()
	s.state = state
	for _, ch := range s.subs {
		select {
		case ch <- state:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Session) logHandEnd(state *game.GameState) {
	for _, result := range state.Winners {
		s.logger.Info("pot awarded",
			"hand", s.HandID(),
			"amount", result.Pot.Amount,
			"winners", result.Winners,
			"with", result.Score.String())
	}

	s.mu.RLock()
	history := s.history
	s.mu.RUnlock()
	if history != nil {
		s.logger.Debug("hand history", "summary", history.Summary())
	}
}

// rotateButton moves the dealer button to the next funded seat. The very
// first hand keeps the configured dealer.
func (s *Session) rotateButton() {
	if s.hands == 0 {
		return
	}
	state := s.Snapshot().Clone()
	n := len(state.Players)
	for i := 1; i <= n; i++ {
		seat := (state.Dealer + i) % n
		if state.Players[seat].Stack > 0 {
			state.Dealer = seat
			break
		}
	}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) fundedSeats() int {
	count := 0
	for _, p := range s.Snapshot().Players {
		if p.Stack > 0 {
			count++
		}
	}
	return count
}
