// Package simulator runs multi-table tournament simulations: every seat
// is driven by the rule-based strategy through its own advisor, opponent
// stats accumulate in a shared store, and results aggregate into a
// session report.
package simulator

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/jeffeharris/my-poker-face-sub006/internal/advisor"
	"github.com/jeffeharris/my-poker-face-sub006/internal/analysis"
	"github.com/jeffeharris/my-poker-face-sub006/internal/betting"
	"github.com/jeffeharris/my-poker-face-sub006/internal/config"
	"github.com/jeffeharris/my-poker-face-sub006/internal/deck"
	"github.com/jeffeharris/my-poker-face-sub006/internal/evaluator"
	"github.com/jeffeharris/my-poker-face-sub006/internal/profile"
	"github.com/jeffeharris/my-poker-face-sub006/internal/statistics"
)

// Config controls a simulation run
type Config struct {
	Tables        int
	Hands         int // per table
	Seats         int
	StartingStack int
	SmallBlind    int
	BigBlind      int
	RaiseCap      int
	Samples       int // equity samples per decision
	Seed          int64
	Personas      []config.Persona // cycled across non-hero seats
	Logger        *log.Logger

	// HeroPolicy drives seat 0 through an external policy source (TUI or
	// websocket bridge) instead of the rule strategy. Interactive policies
	// should run with a single table.
	HeroPolicy    advisor.PolicySource
	PolicyTimeout time.Duration
}

// Simulator owns the shared stats store across all tables
type Simulator struct {
	cfg    Config
	store  *profile.Store
	logger *log.Logger
}

// New creates a simulator, filling in default settings
func New(cfg Config) *Simulator {
	if cfg.Tables <= 0 {
		cfg.Tables = 1
	}
	if cfg.Hands <= 0 {
		cfg.Hands = 100
	}
	if cfg.Seats < 2 {
		cfg.Seats = 6
	}
	if cfg.StartingStack <= 0 {
		cfg.StartingStack = 200
	}
	if cfg.SmallBlind <= 0 {
		cfg.SmallBlind = 1
	}
	if cfg.BigBlind <= cfg.SmallBlind {
		cfg.BigBlind = cfg.SmallBlind * 2
	}
	if cfg.RaiseCap <= 0 {
		cfg.RaiseCap = betting.DefaultRaiseCap
	}
	if cfg.Samples <= 0 {
		cfg.Samples = 400
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return &Simulator{
		cfg:    cfg,
		store:  profile.NewStore(),
		logger: cfg.Logger.WithPrefix("simulator"),
	}
}

// Store exposes the shared opponent-stats store
func (s *Simulator) Store() *profile.Store {
	return s.store
}

// Run plays every table concurrently and merges the results
func (s *Simulator) Run(ctx context.Context) (*statistics.Session, error) {
	g, ctx := errgroup.WithContext(ctx)
	sessions := make([]*statistics.Session, s.cfg.Tables)

	for i := 0; i < s.cfg.Tables; i++ {
		i := i
		g.Go(func() error {
			sess, err := s.runTable(ctx, i)
			sessions[i] = sess
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &statistics.Session{}
	for _, sess := range sessions {
		total.Merge(sess)
	}
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("result validation failed: %w", err)
	}
	s.logger.Info("simulation complete", "summary", total.Summary())
	return total, nil
}

// seatAgent is one seat's identity and decision maker
type seatAgent struct {
	id      string
	adv     *advisor.Advisor
	persona *profile.Profile // nil classifies from observed stats
}

func (s *Simulator) runTable(ctx context.Context, table int) (*statistics.Session, error) {
	rng := rand.New(rand.NewSource(s.cfg.Seed + int64(table)*1_000_003))
	estimator := evaluator.NewEstimator(evaluator.EstimatorConfig{
		Samples: s.cfg.Samples,
		Workers: 1,
	})

	agents := make([]seatAgent, s.cfg.Seats)
	for seat := range agents {
		cfg := advisor.Config{
			Estimator: estimator,
			Store:     s.store,
			Logger:    s.cfg.Logger,
			RNG:       rand.New(rand.NewSource(rng.Int63())),
		}
		if seat == 0 {
			cfg.Policy = s.cfg.HeroPolicy
			cfg.Timeout = s.cfg.PolicyTimeout
		}
		agents[seat] = seatAgent{adv: advisor.New(cfg)}
		if seat == 0 {
			agents[seat].id = "hero"
			continue
		}
		if len(s.cfg.Personas) > 0 {
			p := s.cfg.Personas[(seat-1)%len(s.cfg.Personas)]
			prof := p.Profile()
			agents[seat].id = p.Name
			agents[seat].persona = &prof
		} else {
			agents[seat].id = fmt.Sprintf("villain-%d", seat)
		}
	}

	session := &statistics.Session{}
	button := table % s.cfg.Seats
	for hand := 0; hand < s.cfg.Hands; hand++ {
		select {
		case <-ctx.Done():
			return session, ctx.Err()
		default:
		}
		handSeed := rng.Int63()
		result := s.playHand(ctx, agents, button, handSeed)
		session.Add(result)
		button = (button + 1) % s.cfg.Seats
	}
	s.logger.Debug("table finished", "table", table, "hands", session.Hands)
	return session, nil
}

// playHand runs one complete hand and returns the hero's result
func (s *Simulator) playHand(ctx context.Context, agents []seatAgent, button int, seed int64) statistics.HandResult {
	n := len(agents)
	rng := rand.New(rand.NewSource(seed))

	stacks := make([]int, n)
	for i := range stacks {
		stacks[i] = s.cfg.StartingStack
	}
	r := betting.NewRound(stacks, s.cfg.BigBlind, s.cfg.RaiseCap)

	sbSeat := (button + 1) % n
	bbSeat := (button + 2) % n
	if n == 2 {
		// Heads-up the button posts the small blind
		sbSeat = button
		bbSeat = (button + 1) % n
	}
	r.PostBlind(sbSeat, s.cfg.SmallBlind)
	r.PostBlind(bbSeat, s.cfg.BigBlind)

	d := deck.New(rng)
	d.Shuffle()
	holes := make([][]deck.Card, n)
	for i := range holes {
		holes[i] = d.DealN(2)
	}
	community := d.DealN(5)

	hand := &handTracker{
		obs:     make([]profile.HandObservation, n),
		actions: make([][]analysis.ObservedAction, n),
	}

	showdown := false
	for {
		board := community[:r.Street.BoardCards()]
		start := (button + 1) % n
		if r.Street == betting.Preflop {
			start = (bbSeat + 1) % n
		}
		s.bettingLoop(ctx, r, agents, holes, board, button, start, hand)

		if r.Remaining() <= 1 {
			break
		}
		if r.Street == betting.River {
			showdown = true
			break
		}
		if r.ActivePlayers() <= 1 {
			// Everyone is all-in; run out the rest of the board
			showdown = true
			break
		}
		r.NextStreet()
	}

	strengths := make([]evaluator.Strength, n)
	for i := range agents {
		if !r.Players[i].Folded {
			strengths[i] = evaluator.Evaluate(append(holes[i], community...))
		}
	}
	payouts := settle(r.Players, strengths)

	for i, agent := range agents {
		s.store.Record(agent.id, hand.obs[i])
	}

	net := payouts[0] - r.Players[0].HandTotal
	return statistics.HandResult{
		NetBB:          float64(net) / float64(s.cfg.BigBlind),
		Seed:           seed,
		WentToShowdown: showdown && !r.Players[0].Folded,
		FinalPot:       r.Pot,
		BigBlind:       s.cfg.BigBlind,
		Decisions:      hand.heroDecisions,
		Fallbacks:      hand.heroFallbacks,
	}
}

// handTracker accumulates per-seat observations within one hand
type handTracker struct {
	obs           []profile.HandObservation
	actions       [][]analysis.ObservedAction
	heroDecisions int
	heroFallbacks int
}

// streetTurnBound caps the betting loop. Every raise adds at least a big
// blind, so the chips behind bound how often action can reopen; even an
// uncapped heads-up raise war finishes well inside this limit.
func streetTurnBound(r *betting.Round) int {
	chips := 0
	for _, p := range r.Players {
		chips += p.Stack + p.RoundBet
	}
	return len(r.Players) * (chips/r.BigBlind + 2)
}

// bettingLoop runs one street to completion
func (s *Simulator) bettingLoop(ctx context.Context, r *betting.Round, agents []seatAgent, holes [][]deck.Card, board []deck.Card, button, start int, hand *handTracker) {
	n := len(agents)
	seat := start
	for turns := 0; turns < streetTurnBound(r) && !r.Complete(); turns++ {
		p := r.Players[seat]
		if p.Folded || p.AllIn {
			seat = (seat + 1) % n
			continue
		}

		facing := r.ToCall(seat) > 0
		state := advisor.GameState{
			Hole:      holes[seat],
			Board:     board,
			Round:     r,
			Seat:      seat,
			Position:  positionFor(seat, button, n),
			LastToAct: seat == button,
			Opponents: opponentsFor(r, agents, hand, seat),
		}

		report := agents[seat].adv.Decide(ctx, state)
		if seat == 0 {
			hand.heroDecisions++
			if report.FellBack {
				hand.heroFallbacks++
			}
		}

		if err := r.Apply(seat, report.Decision); err != nil {
			// The strategy should never produce an illegal action;
			// fold rather than corrupt the round if it does.
			s.logger.Error("illegal decision", "seat", seat, "decision", report.Decision, "error", err)
			_ = r.Apply(seat, betting.Decision{Action: betting.Fold})
		}
		hand.observe(seat, r.Street, facing, report.Decision.Action)
		seat = (seat + 1) % n
	}
}

// observe updates one seat's aggregates and visible action history
func (h *handTracker) observe(seat int, street betting.Street, facing bool, action betting.Action) {
	obs := &h.obs[seat]
	if facing {
		obs.BetsFaced++
	}
	switch action {
	case betting.Fold:
		if facing {
			obs.FoldsToBet++
		}
	case betting.Check:
		obs.PassiveActions++
	case betting.Call:
		obs.PassiveActions++
		if street == betting.Preflop {
			obs.VoluntarilyPlayed = true
		}
		h.actions[seat] = append(h.actions[seat], analysis.ObservedCall)
	case betting.Raise:
		obs.AggressiveActions++
		if street == betting.Preflop {
			obs.VoluntarilyPlayed = true
			obs.RaisedPreflop = true
		}
		h.actions[seat] = append(h.actions[seat], analysis.ObservedRaise)
	case betting.AllIn:
		obs.AggressiveActions++
		if street == betting.Preflop {
			obs.VoluntarilyPlayed = true
			obs.RaisedPreflop = true
		}
		h.actions[seat] = append(h.actions[seat], analysis.ObservedAllIn)
	}
}

// opponentsFor lists the seats still contesting the pot against a seat
func opponentsFor(r *betting.Round, agents []seatAgent, hand *handTracker, seat int) []advisor.Opponent {
	var opps []advisor.Opponent
	for i, agent := range agents {
		if i == seat || r.Players[i].Folded {
			continue
		}
		opps = append(opps, advisor.Opponent{
			Seat:    i,
			ID:      agent.id,
			Actions: hand.actions[i],
			Static:  agent.persona,
		})
	}
	return opps
}

// positionFor maps a seat's distance from the button onto a position
func positionFor(seat, button, n int) analysis.Position {
	if n == 2 {
		if seat == button {
			return analysis.SmallBlind
		}
		return analysis.BigBlind
	}
	switch d := (seat - button + n) % n; d {
	case 0:
		return analysis.Button
	case 1:
		return analysis.SmallBlind
	case 2:
		return analysis.BigBlind
	default:
		if d == n-1 {
			return analysis.Cutoff
		}
		if d <= 4 {
			return analysis.Early
		}
		return analysis.Middle
	}
}

// settle distributes the pot, building side pots from contribution levels
// so a short all-in can only win the portion it covered.
func settle(players []betting.PlayerState, strengths []evaluator.Strength) []int {
	n := len(players)
	payouts := make([]int, n)

	var levels []int
	for _, p := range players {
		if p.HandTotal > 0 {
			levels = append(levels, p.HandTotal)
		}
	}
	if len(levels) == 0 {
		return payouts
	}
	sort.Ints(levels)

	prev := 0
	for _, level := range levels {
		if level == prev {
			continue
		}
		slice := 0
		for _, p := range players {
			c := p.HandTotal
			if c > level {
				c = level
			}
			if c > prev {
				slice += c - prev
			}
		}

		var winners []int
		var best evaluator.Strength
		for i, p := range players {
			if p.Folded || p.HandTotal < level {
				continue
			}
			switch {
			case len(winners) == 0 || strengths[i].Compare(best) > 0:
				winners = []int{i}
				best = strengths[i]
			case strengths[i].Compare(best) == 0:
				winners = append(winners, i)
			}
		}
		if len(winners) == 0 {
			// Every eligible player folded; the slice goes to the
			// strongest surviving hand overall.
			for i, p := range players {
				if p.Folded {
					continue
				}
				if len(winners) == 0 || strengths[i].Compare(best) > 0 {
					winners = []int{i}
					best = strengths[i]
				}
			}
		}

		share := slice / len(winners)
		for _, w := range winners {
			payouts[w] += share
		}
		payouts[winners[0]] += slice - share*len(winners) // odd chip
		prev = level
	}
	return payouts
}
