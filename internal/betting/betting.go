// Package betting tracks one table's betting rounds: current bet, raise
// counting, pot commitment, and action legality.
package betting

import (
	"fmt"
	"strings"
)

// Street represents the betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	ShowdownStreet
)

func (s Street) String() string {
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// BoardCards returns how many community cards are dealt by this street
func (s Street) BoardCards() int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River, ShowdownStreet:
		return 5
	default:
		return 0
	}
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
	AllIn
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "raise", "allin"}[a]
}

// ParseAction maps an external action string onto an Action. Tolerant of
// case and common aliases ("bet" means raise, "all-in"/"all in" = allin).
func ParseAction(s string) (Action, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return Fold, true
	case "check":
		return Check, true
	case "call":
		return Call, true
	case "raise", "bet":
		return Raise, true
	case "allin", "all-in", "all in", "all_in":
		return AllIn, true
	default:
		return 0, false
	}
}

// Decision is a final chosen action with its raise-to amount (total bet
// this round; 0 unless raising or going all-in)
type Decision struct {
	Action Action
	Amount int
}

func (d Decision) String() string {
	if d.Action == Raise || d.Action == AllIn {
		return fmt.Sprintf("%s %d", d.Action, d.Amount)
	}
	return d.Action.String()
}

// DefaultRaiseCap is the standard maximum number of raises per round
const DefaultRaiseCap = 4

// PlayerState tracks one seat's chips and commitments
type PlayerState struct {
	Stack        int  // chips behind
	RoundBet     int  // committed this betting round
	HandTotal    int  // committed across the whole hand
	Folded       bool
	AllIn        bool
	ActedInRound bool
}

// PotCommitted reports whether the player has wagered more this hand than
// they have behind, making fold strictly worse than call.
func (p PlayerState) PotCommitted() bool {
	return p.HandTotal > p.Stack
}

// Round is the betting round state machine for one table
type Round struct {
	Street     Street
	CurrentBet int
	MinRaise   int
	BigBlind   int
	RaiseCap   int
	Raises     int // raises this round, including full all-in raises
	Pot        int
	Players    []PlayerState
}

// NewRound creates a betting state for a hand with the given stacks
func NewRound(stacks []int, bigBlind, raiseCap int) *Round {
	if raiseCap <= 0 {
		raiseCap = DefaultRaiseCap
	}
	players := make([]PlayerState, len(stacks))
	for i, s := range stacks {
		players[i] = PlayerState{Stack: s}
	}
	return &Round{
		Street:   Preflop,
		MinRaise: bigBlind,
		BigBlind: bigBlind,
		RaiseCap: raiseCap,
		Players:  players,
	}
}

// ActivePlayers counts seats that are neither folded nor all-in
func (r *Round) ActivePlayers() int {
	n := 0
	for _, p := range r.Players {
		if !p.Folded && !p.AllIn {
			n++
		}
	}
	return n
}

// Remaining counts seats still contesting the pot (not folded)
func (r *Round) Remaining() int {
	n := 0
	for _, p := range r.Players {
		if !p.Folded {
			n++
		}
	}
	return n
}

// raiseCapped reports whether further raises are barred this round.
// With exactly two players able to act the cap is not enforced: they may
// re-raise without limit, even when other seats are all-in.
func (r *Round) raiseCapped() bool {
	return r.Raises >= r.RaiseCap && r.ActivePlayers() > 2
}

// ToCall returns the amount a seat must add to match the current bet
func (r *Round) ToCall(seat int) int {
	toCall := r.CurrentBet - r.Players[seat].RoundBet
	if toCall < 0 {
		return 0
	}
	if toCall > r.Players[seat].Stack {
		return r.Players[seat].Stack
	}
	return toCall
}

// LegalActions returns the actions available to a seat. All-in stays
// legal regardless of the raise cap: a player out of chips cannot raise
// in the capped sense.
func (r *Round) LegalActions(seat int) []Action {
	p := r.Players[seat]
	if p.Folded || p.AllIn || p.Stack == 0 {
		return nil
	}

	toCall := r.CurrentBet - p.RoundBet
	actions := []Action{Fold}

	if toCall <= 0 {
		actions = append(actions, Check)
	} else if toCall < p.Stack {
		actions = append(actions, Call)
	}

	if !r.raiseCapped() && p.Stack > toCall+r.MinRaise {
		actions = append(actions, Raise)
	}

	actions = append(actions, AllIn)
	return actions
}

// PostBlind commits a forced blind without counting it as a raise
func (r *Round) PostBlind(seat, amount int) {
	p := &r.Players[seat]
	if amount > p.Stack {
		amount = p.Stack
	}
	p.Stack -= amount
	p.RoundBet += amount
	p.HandTotal += amount
	r.Pot += amount
	if p.RoundBet > r.CurrentBet {
		r.CurrentBet = p.RoundBet
	}
	if p.Stack == 0 {
		p.AllIn = true
	}
}

// Apply advances the state machine with one decision. Raise amounts are
// raise-to totals for the round; invalid amounts return an error and
// leave the state untouched.
func (r *Round) Apply(seat int, d Decision) error {
	p := &r.Players[seat]
	if p.Folded || p.AllIn {
		return fmt.Errorf("seat %d cannot act", seat)
	}

	switch d.Action {
	case Fold:
		p.Folded = true

	case Check:
		if r.CurrentBet > p.RoundBet {
			return fmt.Errorf("cannot check facing a bet of %d", r.CurrentBet)
		}

	case Call:
		toCall := r.CurrentBet - p.RoundBet
		if toCall > p.Stack {
			toCall = p.Stack
		}
		r.commit(p, toCall)

	case Raise:
		if r.raiseCapped() {
			return fmt.Errorf("raise cap of %d reached", r.RaiseCap)
		}
		if d.Amount < r.CurrentBet+r.MinRaise {
			return fmt.Errorf("raise to %d below minimum %d", d.Amount, r.CurrentBet+r.MinRaise)
		}
		add := d.Amount - p.RoundBet
		if add > p.Stack {
			return fmt.Errorf("raise to %d exceeds stack", d.Amount)
		}
		r.MinRaise = d.Amount - r.CurrentBet
		r.CurrentBet = d.Amount
		r.Raises++
		r.commit(p, add)

	case AllIn:
		add := p.Stack
		total := p.RoundBet + add
		if total > r.CurrentBet {
			// Any all-in above the current bet counts toward the cap
			r.Raises++
			if total-r.CurrentBet >= r.MinRaise {
				r.MinRaise = total - r.CurrentBet
			}
			r.CurrentBet = total
		}
		r.commit(p, add)

	default:
		return fmt.Errorf("unknown action %v", d.Action)
	}

	p.ActedInRound = true
	return nil
}

func (r *Round) commit(p *PlayerState, amount int) {
	p.Stack -= amount
	p.RoundBet += amount
	p.HandTotal += amount
	r.Pot += amount
	if p.Stack == 0 {
		p.AllIn = true
	}
}

// Complete reports whether the round is finished: every active player has
// acted at least once and matched the current highest bet.
func (r *Round) Complete() bool {
	if r.Remaining() <= 1 {
		return true
	}
	for _, p := range r.Players {
		if p.Folded || p.AllIn {
			continue
		}
		if !p.ActedInRound || p.RoundBet != r.CurrentBet {
			return false
		}
	}
	return true
}

// NextStreet resets per-round state and advances to the next street.
// The raise counter starts over; hand totals and the pot carry forward.
func (r *Round) NextStreet() {
	r.Street++
	r.CurrentBet = 0
	r.MinRaise = r.BigBlind
	r.Raises = 0
	for i := range r.Players {
		r.Players[i].RoundBet = 0
		r.Players[i].ActedInRound = false
	}
}
