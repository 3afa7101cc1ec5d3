package main

import (
	"fmt"
	rand "math/rand/v2"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem-engine/internal/evaluator"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/randutil"
)

type CLI struct {
	Hands      int   `default:"10000" help:"Number of hands to simulate"`
	Players    int   `default:"6" help:"Players at the table"`
	SmallBlind int   `default:"5" help:"Small blind amount"`
	BigBlind   int   `default:"10" help:"Big blind amount"`
	Stack      int   `default:"1000" help:"Starting stack"`
	Seed       int64 `default:"0" help:"RNG seed (0 for random)"`
	Verbose    bool  `short:"v" help:"Log every hand"`
}

type stats struct {
	Hands       int
	Showdowns   int
	FoldEnds    int
	Pots        int
	TotalPot    int
	MaxPot      int
	Busts       int
	TableResets int
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("simulate"),
		kong.Description("Self-play soak test for the hold'em engine"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(run(&cli))
}

func run(cli *CLI) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel})
	if cli.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := randutil.New(seed)
	logger.Info("simulating", "hands", cli.Hands, "players", cli.Players, "seed", seed)

	state := game.NewGameState(game.NewPlayers(cli.Players, cli.Stack), cli.SmallBlind, cli.BigBlind, 0)
	bankroll := cli.Players * cli.Stack

	var s stats
	start := time.Now()

	for i := 0; i < cli.Hands; i++ {
		if fundedSeats(state) < 2 {
			state = game.NewGameState(game.NewPlayers(cli.Players, cli.Stack), cli.SmallBlind, cli.BigBlind, state.Dealer)
			s.TableResets++
		}
		rotateDealer(state)

		h := game.StartHand(state, rng)
		for !h.HandOver {
			actor := h.Betting.CurrentActor
			action, amount := chooseAction(rng, game.Legal(h, actor))
			next, err := game.Apply(h, actor, action, amount)
			if err != nil {
				return fmt.Errorf("hand %d: %s rejected: %w", i, action, err)
			}
			h = next
		}

		if total := stackTotal(h); total != bankroll {
			return fmt.Errorf("hand %d: chips not conserved: %d != %d", i, total, bankroll)
		}
		tally(&s, h, state)
		if cli.Verbose {
			logger.Debug("hand complete", "hand", i, "phase", h.Phase, "pots", len(h.Winners))
		}
		state = h
	}

	fmt.Println(renderSummary(&s, time.Since(start)))
	return nil
}

// chooseAction picks a random legal action, favouring passive lines so
// hands regularly reach showdown. Aggressive sizes span the full legal
// range to shake out raise and side-pot edge cases.
func chooseAction(rng *rand.Rand, la game.LegalActions) (game.Action, int) {
	roll := rng.IntN(10)
	switch {
	case roll < 6:
		if la.CanCheck {
			return game.Check, 0
		}
		if la.CanCall {
			return game.Call, 0
		}
	case roll < 9:
		if la.CanBet || la.CanRaise {
			amount := la.MinTotalBet
			if span := la.MaxTotalBet - la.MinTotalBet; span > 0 {
				amount += rng.IntN(span + 1)
			}
			if la.CanBet {
				return game.Bet, amount
			}
			return game.Raise, amount
		}
		if la.CanAllIn {
			return game.AllIn, 0
		}
	default:
		if la.CanFold {
			return game.Fold, 0
		}
	}
	if la.CanCheck {
		return game.Check, 0
	}
	if la.CanCall {
		return game.Call, 0
	}
	return game.Fold, 0
}

func tally(s *stats, h, prev *game.GameState) {
	s.Hands++
	showdown := false
	for _, result := range h.Winners {
		s.Pots++
		s.TotalPot += result.Pot.Amount
		if result.Pot.Amount > s.MaxPot {
			s.MaxPot = result.Pot.Amount
		}
		if result.Score.Tier != evaluator.TierIncomplete {
			showdown = true
		}
	}
	if showdown {
		s.Showdowns++
	} else {
		s.FoldEnds++
	}
	for seat := range h.Players {
		if h.Players[seat].Stack == 0 && prev.Players[seat].Stack > 0 {
			s.Busts++
		}
	}
}

func fundedSeats(s *game.GameState) int {
	count := 0
	for _, p := range s.Players {
		if p.Stack > 0 {
			count++
		}
	}
	return count
}

func rotateDealer(s *game.GameState) {
	n := len(s.Players)
	for i := 1; i <= n; i++ {
		seat := (s.Dealer + i) % n
		if s.Players[seat].Stack > 0 {
			s.Dealer = seat
			return
		}
	}
}

func stackTotal(s *game.GameState) int {
	total := 0
	for _, p := range s.Players {
		total += p.Stack
	}
	return total
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(14)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

func renderSummary(s *stats, elapsed time.Duration) string {
	row := func(label string, value any) string {
		return labelStyle.Render(label) + fmt.Sprint(value)
	}

	avgPot := 0
	if s.Pots > 0 {
		avgPot = s.TotalPot / s.Pots
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Simulation complete"),
		row("hands", s.Hands),
		row("showdowns", s.Showdowns),
		row("fold ends", s.FoldEnds),
		row("pots", s.Pots),
		row("avg pot", avgPot),
		row("max pot", s.MaxPot),
		row("busts", s.Busts),
		row("table resets", s.TableResets),
		row("elapsed", elapsed.Round(time.Millisecond)),
		row("hands/sec", fmt.Sprintf("%.0f", float64(s.Hands)/elapsed.Seconds())),
	)
	return boxStyle.Render(body)
}
