// Package advisor orchestrates one decision: it derives opponent ranges,
// estimates equity, builds the bounded option menu, consults an external
// policy source under a deadline, validates the reply, and falls back to
// the best +EV option or the rule-based strategy when the policy fails.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/jeffeharris/my-poker-face-sub006/internal/analysis"
	"github.com/jeffeharris/my-poker-face-sub006/internal/betting"
	"github.com/jeffeharris/my-poker-face-sub006/internal/deck"
	"github.com/jeffeharris/my-poker-face-sub006/internal/evaluator"
	"github.com/jeffeharris/my-poker-face-sub006/internal/options"
	"github.com/jeffeharris/my-poker-face-sub006/internal/profile"
	"github.com/jeffeharris/my-poker-face-sub006/internal/strategy"
)

// ErrInvalidChoice marks an external policy reply that is not on the
// current menu, unparseable, or outside the legal raise window. It is
// always recovered by fallback substitution, never surfaced as fatal.
var ErrInvalidChoice = errors.New("external choice not in the current menu")

// Opponent describes one active opponent at decision time
type Opponent struct {
	Seat     int
	ID       string            // stable identity for the stats store
	Position analysis.Position
	Actions  []analysis.ObservedAction // their actions this hand, in order
	Static   *profile.Profile          // configured persona; nil means classify from stats
}

// GameState is the raw input one decision consumes. The advisor holds no
// state between decisions; everything is recomputed from this snapshot.
type GameState struct {
	Hole      []deck.Card
	Board     []deck.Card
	Round     *betting.Round
	Seat      int
	Position  analysis.Position
	LastToAct bool
	Opponents []Opponent
}

// PolicySource picks one decision from a menu. Implementations may block
// on a human or network; the advisor enforces its own deadline around the
// call and ignores late replies.
type PolicySource interface {
	Choose(ctx context.Context, state GameState, menu []options.Option) (betting.Decision, error)
}

// Report is the full outcome of one decision
type Report struct {
	Decision betting.Decision
	Menu     []options.Option
	Equity   evaluator.Equity
	FellBack bool
	Fallback string // why the fallback fired; empty otherwise
	Rule     string // rule name when the rule strategy decided
}

// Config wires an advisor. Policy may be nil, in which case the rule
// strategy decides directly (no fallback is recorded).
type Config struct {
	Estimator *evaluator.Estimator
	Store     *profile.Store
	Policy    PolicySource
	Logger    *log.Logger
	Clock     quartz.Clock
	Timeout   time.Duration // policy-source budget; 0 disables
	RNG       *rand.Rand
}

// Advisor runs decisions for one table. Not safe for concurrent use: a
// table is a sequential actor and each advisor belongs to one table.
type Advisor struct {
	estimator *evaluator.Estimator
	store     *profile.Store
	policy    PolicySource
	logger    *log.Logger
	clock     quartz.Clock
	timeout   time.Duration
	rng       *rand.Rand
}

// New creates an advisor from the config, filling in defaults
func New(cfg Config) *Advisor {
	if cfg.Estimator == nil {
		cfg.Estimator = evaluator.NewEstimator(evaluator.DefaultEstimatorConfig())
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.RNG == nil {
		cfg.RNG = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Advisor{
		estimator: cfg.Estimator,
		store:     cfg.Store,
		policy:    cfg.Policy,
		logger:    cfg.Logger.WithPrefix("advisor"),
		clock:     cfg.Clock,
		timeout:   cfg.Timeout,
		rng:       cfg.RNG,
	}
}

// Decide runs one full decision. It never fails: every error on the way
// is recovered into a concrete action.
func (a *Advisor) Decide(ctx context.Context, state GameState) Report {
	ranges := a.deriveRanges(state)

	eq, err := a.estimator.Estimate(state.Hole, state.Board, ranges, a.rng)
	if errors.Is(err, evaluator.ErrInsufficientSamples) {
		a.logger.Warn("partial equity estimate", "samples", eq.Samples)
	}
	equity := eq.Value()

	prof, stats := a.opponentProfile(primaryOpponent(state))
	menu := options.Generate(state.Round, state.Seat, equity, prof)

	report := Report{Menu: menu, Equity: eq}

	a.logger.Debug("menu built",
		"street", state.Round.Street,
		"equity", fmt.Sprintf("%.3f", equity),
		"options", len(menu))

	if a.policy == nil {
		report.Decision, report.Rule = a.ruleDecision(state, equity, prof, stats)
		return report
	}

	choice, err := a.consult(ctx, state, menu)
	if err == nil {
		if validated, ok := validate(choice, menu, state.Round, state.Seat); ok {
			report.Decision = validated
			return report
		}
		err = fmt.Errorf("%s: %w", choice, ErrInvalidChoice)
	}

	report.FellBack = true
	report.Fallback = err.Error()
	if opt, ok := bestPlusEV(menu); ok {
		report.Decision = betting.Decision{Action: opt.Action, Amount: opt.Amount}
	} else {
		report.Decision, report.Rule = a.ruleDecision(state, equity, prof, stats)
	}
	a.logger.Info("policy fallback",
		"reason", err,
		"substituted", report.Decision)
	return report
}

// deriveRanges builds one fresh range per opponent. A degenerate range
// comes back already widened, so the error only needs logging.
func (a *Advisor) deriveRanges(state GameState) []evaluator.Range {
	if len(state.Opponents) == 0 {
		return []evaluator.Range{analysis.Default()}
	}
	ranges := make([]evaluator.Range, 0, len(state.Opponents))
	for _, opp := range state.Opponents {
		prof, _ := a.opponentProfile(opp)
		r, err := analysis.Derive(prof.Looseness, opp.Position, opp.Actions)
		if errors.Is(err, analysis.ErrDegenerateRange) {
			a.logger.Debug("degenerate range widened", "opponent", opp.ID)
		}
		ranges = append(ranges, r)
	}
	return ranges
}

func (a *Advisor) opponentProfile(opp Opponent) (profile.Profile, profile.Stats) {
	if opp.Static != nil {
		return *opp.Static, profile.Stats{}
	}
	var stats profile.Stats
	if a.store != nil && opp.ID != "" {
		stats = a.store.Snapshot(opp.ID)
	}
	return profile.ClassifyStats(stats), stats
}

// primaryOpponent is the one whose profile colors the menu: the most
// recent aggressor this hand, else the first opponent.
func primaryOpponent(state GameState) Opponent {
	var primary Opponent
	if len(state.Opponents) > 0 {
		primary = state.Opponents[0]
	}
	for _, opp := range state.Opponents {
		for _, act := range opp.Actions {
			if act == analysis.ObservedRaise || act == analysis.ObservedAllIn {
				primary = opp
			}
		}
	}
	return primary
}

// consult runs the policy source under the advisor's deadline. The
// policy goroutine is cancelled on timeout; a late reply is dropped.
func (a *Advisor) consult(ctx context.Context, state GameState, menu []options.Option) (betting.Decision, error) {
	type reply struct {
		d   betting.Decision
		err error
	}

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Register the deadline before the policy goroutine starts, so once
	// the policy is running the timer is guaranteed to be armed. A nil
	// channel blocks forever, which disables the timeout cleanly.
	var timeoutFired chan struct{}
	if a.timeout > 0 {
		timeoutFired = make(chan struct{})
		timer := a.clock.AfterFunc(a.timeout, func() {
			close(timeoutFired)
		})
		defer timer.Stop()
	}

	ch := make(chan reply, 1)
	go func() {
		d, err := a.policy.Choose(cctx, state, menu)
		ch <- reply{d, err}
	}()

	select {
	case r := <-ch:
		return r.d, r.err
	case <-timeoutFired:
		return betting.Decision{}, fmt.Errorf("policy timeout after %s: %w", a.timeout, ErrInvalidChoice)
	case <-ctx.Done():
		return betting.Decision{}, fmt.Errorf("cancelled: %w", ErrInvalidChoice)
	}
}

func (a *Advisor) ruleDecision(state GameState, equity float64, prof profile.Profile, stats profile.Stats) (betting.Decision, string) {
	return strategy.DecideName(&strategy.Context{
		Round:     state.Round,
		Seat:      state.Seat,
		Equity:    equity,
		FacingBet: state.Round.ToCall(state.Seat) > 0,
		LastToAct: state.LastToAct,
		DryBoard:  strategy.DryBoard(state.Board),
		Opponent:  prof,
		OppStats:  stats,
		RNG:       a.rng,
	})
}

// validate checks an external choice against the menu. Fold, check, and
// call must appear on the menu; a raise must appear and its raise-to
// amount must sit inside the legal window; all-in is normalized to the
// seat's full stack.
func validate(d betting.Decision, menu []options.Option, r *betting.Round, seat int) (betting.Decision, bool) {
	onMenu := false
	for _, opt := range menu {
		if opt.Action == d.Action {
			onMenu = true
			break
		}
	}
	if !onMenu {
		return betting.Decision{}, false
	}

	switch d.Action {
	case betting.Raise:
		player := r.Players[seat]
		minTotal := r.CurrentBet + r.MinRaise
		maxTotal := player.RoundBet + player.Stack
		if d.Amount < minTotal || d.Amount >= maxTotal {
			return betting.Decision{}, false
		}
		return d, true
	case betting.AllIn:
		player := r.Players[seat]
		return betting.Decision{Action: betting.AllIn, Amount: player.RoundBet + player.Stack}, true
	default:
		return betting.Decision{Action: d.Action}, true
	}
}

// bestPlusEV picks the fallback substitute: the highest-ranked +EV option,
// preferring the cheapest continue (check/call) over raises so the
// substitution stays conservative.
func bestPlusEV(menu []options.Option) (options.Option, bool) {
	order := func(a betting.Action) int {
		switch a {
		case betting.Check:
			return 0
		case betting.Call:
			return 1
		case betting.Raise:
			return 2
		case betting.AllIn:
			return 3
		default:
			return 4
		}
	}
	best := options.Option{}
	found := false
	for _, opt := range menu {
		if opt.Zone != options.PlusEV || opt.Action == betting.Fold {
			continue
		}
		if !found || order(opt.Action) < order(best.Action) {
			best = opt
			found = true
		}
	}
	return best, found
}
