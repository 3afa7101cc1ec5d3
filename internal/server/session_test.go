package server

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/randutil"
)

func testTable(seats int) TableConfig {
	return TableConfig{
		Name:          "table1",
		Seats:         seats,
		SmallBlind:    5,
		BigBlind:      10,
		StartingStack: 1000,
		HandLimit:     1,
	}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func TestSessionPlaysHandToCompletion(t *testing.T) {
	sess := NewSession(testTable(2), quietLogger(), quartz.NewReal(), randutil.New(42))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	// Drive every decision with the passive action so the hand always
	// reaches showdown. Stale submissions racing a street change are
	// rejected and retried against the fresh snapshot.
	for {
		select {
		case err := <-done:
			require.NoError(t, err)

			final := sess.Snapshot()
			require.True(t, final.HandOver)
			assert.Equal(t, game.Showdown, final.Phase)
			assert.Len(t, final.Community, 5)
			assert.NotEmpty(t, final.Winners)

			total := 0
			for _, p := range final.Players {
				total += p.Stack
			}
			assert.Equal(t, 2000, total)
			return
		default:
		}

		state := sess.Snapshot()
		if state.HandOver {
			time.Sleep(time.Millisecond)
			continue
		}
		actor := state.Betting.CurrentActor
		if actor < 0 {
			continue
		}

		action := game.Call
		if game.Legal(state, actor).CanCheck {
			action = game.Check
		}
		err := sess.Submit(ctx, actor, action, 0)
		var rej *game.Rejection
		if err != nil && !errors.As(err, &rej) {
			require.NoError(t, err)
		}
	}
}

func TestSessionRejectsOutOfTurnAction(t *testing.T) {
	sess := NewSession(testTable(2), quietLogger(), quartz.NewReal(), randutil.New(1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	// Heads up the dealer posts the small blind and acts first, so the
	// big blind raising immediately is out of turn.
	before := waitForActor(t, sess)
	outOfTurn := 1 - before.Betting.CurrentActor

	err := sess.Submit(ctx, outOfTurn, game.Raise, 50)
	var rej *game.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, outOfTurn, rej.Seat)

	after := sess.Snapshot()
	assert.Equal(t, before.PotTotal(), after.PotTotal())
	assert.Equal(t, before.Betting.CurrentActor, after.Betting.CurrentActor)

	cancel()
	require.NoError(t, <-done)
}

func TestSessionAutoFoldsOnDecisionClock(t *testing.T) {
	cfg := testTable(2)
	cfg.ActionTimeoutMS = 30_000

	mClock := quartz.NewMock(t)
	trap := mClock.Trap().NewTimer("action")
	defer trap.Close()

	sess := NewSession(cfg, quietLogger(), mClock, randutil.New(7))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	// Wait until the session arms the decision clock for the first
	// actor, then expire it without any player input.
	call := trap.MustWait(ctx)
	call.MustRelease(ctx)
	mClock.Advance(cfg.ActionTimeout()).MustWait(ctx)

	require.NoError(t, <-done)

	final := sess.Snapshot()
	require.True(t, final.HandOver)

	// The first actor faced the big blind, could not check, and was
	// folded by the clock. The blinds go to the remaining player.
	folded := 0
	for _, p := range final.Players {
		if p.Status == game.Folded {
			folded++
		}
	}
	assert.Equal(t, 1, folded)

	total := 0
	for _, p := range final.Players {
		total += p.Stack
	}
	assert.Equal(t, 2000, total)
}

func TestSessionSubscribeReceivesCommits(t *testing.T) {
	sess := NewSession(testTable(2), quietLogger(), quartz.NewReal(), randutil.New(11))

	states, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	select {
	case state := <-states:
		assert.Equal(t, game.Preflop, state.Phase)
		assert.Equal(t, 15, state.PotTotal())
	case <-ctx.Done():
		t.Fatal("no state received")
	}

	actor := waitForActor(t, sess).Betting.CurrentActor
	require.NoError(t, sess.Submit(ctx, actor, game.Fold, 0))

	// Fold ends the heads-up hand, so a hand-over state is committed.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case state := <-states:
			if state.HandOver {
				require.NoError(t, <-done)
				return
			}
		case <-deadline:
			t.Fatal("hand-over state never broadcast")
		}
	}
}

func TestSessionHandIDAssigned(t *testing.T) {
	sess := NewSession(testTable(3), quietLogger(), quartz.NewReal(), randutil.New(3))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	waitForActor(t, sess)
	assert.Len(t, sess.HandID(), 26)

	cancel()
	require.NoError(t, <-done)
}

// waitForActor blocks until a hand is underway with a seat to act.
func waitForActor(t *testing.T, sess *Session) *game.GameState {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		state := sess.Snapshot()
		if !state.HandOver && state.Phase != game.Idle && state.Betting.CurrentActor >= 0 {
			return state
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("hand never started")
	return nil
}
