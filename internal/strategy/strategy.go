// Package strategy is the deterministic fallback policy: an ordered list
// of guard/action rules over stack geometry, hand strength, and opponent
// tendencies. It always produces a concrete action without any external
// policy source.
package strategy

import (
	"fmt"
	"math/rand"

	"github.com/jeffeharris/my-poker-face-sub006/internal/betting"
	"github.com/jeffeharris/my-poker-face-sub006/internal/options"
	"github.com/jeffeharris/my-poker-face-sub006/internal/profile"
)

// Hand strength tiers derived from equity
type Tier int

const (
	Weak Tier = iota
	Medium
	Strong
	Premium
)

func (t Tier) String() string {
	return [...]string{"weak", "medium", "strong", "premium"}[t]
}

// Tier thresholds on equity
const (
	premiumEquity = 0.80
	strongEquity  = 0.60
	mediumEquity  = 0.40
)

// TierFor buckets an equity estimate into a hand-strength tier
func TierFor(equity float64) Tier {
	switch {
	case equity >= premiumEquity:
		return Premium
	case equity >= strongEquity:
		return Strong
	case equity >= mediumEquity:
		return Medium
	default:
		return Weak
	}
}

// Geometry thresholds
const (
	// lowSPR is the stack-to-pot ratio below which play is commit-or-fold
	lowSPR = 1.5

	// shortStackBB is the big-blind depth below which play is push/fold
	shortStackBB = 10

	// commitEquity is the equity needed to commit at low SPR
	commitEquity = 0.45

	// pushEquity is the equity needed to jam a short stack
	pushEquity = 0.42

	// baseBluffFreq is the unadjusted bluff frequency when checked to
	// in position on a favorable board
	baseBluffFreq = 0.25
)

// Context carries everything one decision needs. Opponent is the profile
// of the player whose bet we face (or the next to act behind us).
type Context struct {
	Round     *betting.Round
	Seat      int
	Equity    float64
	FacingBet bool
	LastToAct bool
	DryBoard  bool // board texture unlikely to have improved callers
	Opponent  profile.Profile
	OppStats  profile.Stats
	RNG       *rand.Rand
}

// spr returns the stack-to-pot ratio
func (c *Context) spr() float64 {
	if c.Round.Pot == 0 {
		return 999
	}
	return float64(c.Round.Players[c.Seat].Stack) / float64(c.Round.Pot)
}

// stackBB returns the stack depth in big blinds
func (c *Context) stackBB() float64 {
	return float64(c.Round.Players[c.Seat].Stack) / float64(c.Round.BigBlind)
}

// callShift is the adaptive call-threshold adjustment, active only once
// the opponent has been observed long enough
func (c *Context) callShift() float64 {
	if c.OppStats.HandsSeen < profile.MinClassifyHands {
		return 0
	}
	return c.Opponent.CallShift()
}

// bluffFreq is the adaptive bluff frequency against this opponent
func (c *Context) bluffFreq() float64 {
	return baseBluffFreq * profile.BluffScale(c.OppStats)
}

func (c *Context) legal(a betting.Action) bool {
	for _, x := range c.Round.LegalActions(c.Seat) {
		if x == a {
			return true
		}
	}
	return false
}

// checkOrFold returns the cheapest way out
func (c *Context) checkOrFold() betting.Decision {
	if c.legal(betting.Check) {
		return betting.Decision{Action: betting.Check}
	}
	return betting.Decision{Action: betting.Fold}
}

// jam returns the all-in decision for this seat
func (c *Context) jam() betting.Decision {
	p := c.Round.Players[c.Seat]
	return betting.Decision{Action: betting.AllIn, Amount: p.RoundBet + p.Stack}
}

// raiseTo clamps a raise-to amount into the legal window, degrading to
// all-in when the sizing exceeds the stack
func (c *Context) raiseTo(total int) betting.Decision {
	p := c.Round.Players[c.Seat]
	minTotal := c.Round.CurrentBet + c.Round.MinRaise
	if total < minTotal {
		total = minTotal
	}
	if total >= p.RoundBet+p.Stack || !c.legal(betting.Raise) {
		return c.jam()
	}
	return betting.Decision{Action: betting.Raise, Amount: total}
}

// Rule is one guard/action pair. Rules are evaluated top to bottom; the
// first matching guard acts.
type Rule struct {
	Name string
	When func(*Context) bool
	Act  func(*Context) betting.Decision
}

// rules is the decision tree in priority order
var rules = []Rule{
	{
		Name: "low-spr-commit",
		When: func(c *Context) bool { return c.spr() < lowSPR },
		Act: func(c *Context) betting.Decision {
			if c.Equity >= commitEquity {
				return c.jam()
			}
			return c.checkOrFold()
		},
	},
	{
		Name: "short-stack-push-fold",
		When: func(c *Context) bool { return c.stackBB() < shortStackBB },
		Act: func(c *Context) betting.Decision {
			if c.Equity >= pushEquity+c.callShift() {
				return c.jam()
			}
			return c.checkOrFold()
		},
	},
	{
		Name: "facing-bet",
		When: func(c *Context) bool { return c.FacingBet },
		Act: func(c *Context) betting.Decision {
			toCall := c.Round.ToCall(c.Seat)
			required := options.RequiredEquity(c.Round.Pot, toCall) + c.callShift()

			switch TierFor(c.Equity) {
			case Premium:
				// Value raise: pot-sized
				return c.raiseTo(c.Round.CurrentBet + c.Round.Pot)
			case Strong, Medium:
				if c.Equity >= required {
					return betting.Decision{Action: betting.Call}
				}
				return c.checkOrFold()
			default:
				return c.checkOrFold()
			}
		},
	},
	{
		Name: "first-to-act",
		When: func(c *Context) bool { return !c.FacingBet },
		Act: func(c *Context) betting.Decision {
			switch TierFor(c.Equity) {
			case Premium, Strong:
				// Value bet ~60% pot
				bet := (c.Round.Pot * 3) / 5
				if bet < c.Round.BigBlind {
					bet = c.Round.BigBlind
				}
				return c.raiseTo(bet)
			case Weak:
				// Bluff only in position on favorable textures
				if c.LastToAct && c.DryBoard && c.RNG != nil &&
					c.RNG.Float64() < c.bluffFreq() {
					return c.raiseTo((c.Round.Pot * 2) / 3)
				}
				return c.checkOrFold()
			default:
				return c.checkOrFold()
			}
		},
	},
}

// Decide walks the rule list and returns the first matching action.
// Reaching the end means a structural gap in the rules, which is a
// programmer error, not a recoverable condition.
func Decide(ctx *Context) betting.Decision {
	for _, rule := range rules {
		if rule.When(ctx) {
			return rule.Act(ctx)
		}
	}
	panic(fmt.Sprintf("no strategy rule matched seat %d (facing=%v)", ctx.Seat, ctx.FacingBet))
}

// DecideName is Decide plus the name of the matched rule, for logging
func DecideName(ctx *Context) (betting.Decision, string) {
	for _, rule := range rules {
		if rule.When(ctx) {
			return rule.Act(ctx), rule.Name
		}
	}
	panic(fmt.Sprintf("no strategy rule matched seat %d (facing=%v)", ctx.Seat, ctx.FacingBet))
}
