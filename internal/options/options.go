// Package options synthesizes the legal, annotated action menu offered to
// a policy source: each candidate action with its raise-to amount, EV
// classification, style tag, and rationale text.
package options

import (
	"fmt"

	"github.com/jeffeharris/my-poker-face-sub006/internal/betting"
	"github.com/jeffeharris/my-poker-face-sub006/internal/profile"
)

// EV zone thresholds against the pot-odds-implied required equity.
// The wide dead zone is deliberate: a narrow marginal band mislabels
// borderline calls as clearly profitable and overrides sound qualitative
// guidance from the policy source.
const (
	PlusEVFactor   = 1.7
	MarginalFactor = 0.85
)

// Blocking thresholds
const (
	// FoldBlockFactor removes fold outright when equity is at least this
	// multiple of the required equity
	FoldBlockFactor = 2.0

	// FoldBlockEquity removes fold outright at monster equity
	FoldBlockEquity = 0.90

	// CallBlockEquity removes call when drawing dead or nearly so
	CallBlockEquity = 0.05
)

// Zone classifies the expected value of an action
type Zone int

const (
	MinusEV Zone = iota
	Marginal
	PlusEV
)

func (z Zone) String() string {
	switch z {
	case PlusEV:
		return "+EV"
	case Marginal:
		return "marginal"
	default:
		return "-EV"
	}
}

// Style tags an option for downstream presentation only; it never changes
// legality or EV classification.
type Style int

const (
	Conservative Style = iota
	Standard
	Aggressive
	Trappy
)

func (s Style) String() string {
	switch s {
	case Conservative:
		return "conservative"
	case Aggressive:
		return "aggressive"
	case Trappy:
		return "trappy"
	default:
		return "standard"
	}
}

// Option is one candidate action in the decision menu. Immutable once
// produced; built fresh per decision.
type Option struct {
	Action    betting.Action
	Amount    int // raise-to total for this round; 0 unless raising or jamming
	Zone      Zone
	Style     Style
	Rationale string
}

func (o Option) String() string {
	if o.Amount > 0 {
		return fmt.Sprintf("%s to %d (%s)", o.Action, o.Amount, o.Zone)
	}
	return fmt.Sprintf("%s (%s)", o.Action, o.Zone)
}

// RequiredEquity returns the pot-odds-implied equity needed to continue:
// toCall / (pot + toCall). Zero when there is nothing to call.
func RequiredEquity(pot, toCall int) float64 {
	if toCall <= 0 {
		return 0
	}
	return float64(toCall) / float64(pot+toCall)
}

// classify places an equity against a required equity in an EV zone
func classify(equity, required float64) Zone {
	switch {
	case equity >= required*PlusEVFactor:
		return PlusEV
	case equity >= required*MarginalFactor:
		return Marginal
	default:
		return MinusEV
	}
}

// potFractionSizes are the fixed raise-sizing candidates beyond min-raise
var potFractionSizes = []float64{0.5, 0.75, 1.0}

// Generate produces the bounded option menu for a seat. Deterministic:
// identical inputs always yield an identical menu.
func Generate(r *betting.Round, seat int, equity float64, prof profile.Profile) []Option {
	legal := r.LegalActions(seat)
	if len(legal) == 0 {
		return nil
	}

	player := r.Players[seat]
	toCall := r.ToCall(seat)
	required := RequiredEquity(r.Pot, toCall)

	// Blocking invariants. Pot-commitment and monster-hand fold blocking
	// are the most restrictive and take precedence: when fold is gone,
	// call survives its own blocking rule so the menu keeps a cheap
	// continue line alongside all-in. Fold is also blocked outright when
	// there is nothing to call: open-folding instead of taking a free
	// check is never rational.
	foldBlocked := toCall <= 0 ||
		equity >= FoldBlockEquity ||
		player.PotCommitted() ||
		(required > 0 && equity >= required*FoldBlockFactor)
	callBlocked := equity < CallBlockEquity && !foldBlocked

	var menu []Option
	for _, action := range legal {
		switch action {
		case betting.Fold:
			if foldBlocked {
				continue
			}
			menu = append(menu, foldOption(equity, required, prof))

		case betting.Check:
			menu = append(menu, Option{
				Action:    betting.Check,
				Zone:      PlusEV, // free to continue
				Style:     Conservative,
				Rationale: rationale("checking is free", PlusEV, prof),
			})

		case betting.Call:
			if callBlocked {
				continue
			}
			zone := classify(equity, required)
			menu = append(menu, Option{
				Action:    betting.Call,
				Zone:      zone,
				Style:     callStyle(equity, prof),
				Rationale: callRationale(equity, required, zone, prof),
			})

		case betting.Raise:
			menu = append(menu, raiseOptions(r, seat, equity, required, prof)...)

		case betting.AllIn:
			amount := player.RoundBet + player.Stack
			zone := classify(equity, jamRequiredEquity(r, seat))
			menu = append(menu, Option{
				Action:    betting.AllIn,
				Amount:    amount,
				Zone:      zone,
				Style:     Aggressive,
				Rationale: rationale(fmt.Sprintf("jamming for %d", amount), zone, prof),
			})
		}
	}

	return menu
}

// raiseOptions builds one option per distinct legal sizing candidate:
// the minimum raise, several pot fractions, clamped to the stack.
func raiseOptions(r *betting.Round, seat int, equity, required float64, prof profile.Profile) []Option {
	player := r.Players[seat]
	maxTotal := player.RoundBet + player.Stack
	minTotal := r.CurrentBet + r.MinRaise

	candidates := []int{minTotal}
	for _, frac := range potFractionSizes {
		total := r.CurrentBet + int(float64(r.Pot)*frac)
		if total > minTotal && total < maxTotal {
			candidates = append(candidates, total)
		}
	}

	var out []Option
	seen := make(map[int]bool)
	for _, total := range candidates {
		if total >= maxTotal || seen[total] {
			continue
		}
		seen[total] = true

		// One price per decision: facing a bet, every raise is classified
		// against the same pot-odds price as the call, so sizing never
		// downgrades a monster hand's raises. An open bet has no call
		// price and carries its own.
		price := required
		if price == 0 {
			price = RequiredEquity(r.Pot, total-player.RoundBet)
		}
		zone := classify(equity, price)
		out = append(out, Option{
			Action:    betting.Raise,
			Amount:    total,
			Zone:      zone,
			Style:     raiseStyle(total, minTotal, r.Pot, equity, prof),
			Rationale: rationale(fmt.Sprintf("raising to %d", total), zone, prof),
		})
	}
	return out
}

// jamRequiredEquity approximates the equity needed to justify an all-in
func jamRequiredEquity(r *betting.Round, seat int) float64 {
	player := r.Players[seat]
	return RequiredEquity(r.Pot, player.Stack)
}

func foldOption(equity, required float64, prof profile.Profile) Option {
	// Folding is profitable exactly when continuing is not
	var zone Zone
	switch classify(equity, required) {
	case PlusEV:
		zone = MinusEV
	case MinusEV:
		zone = PlusEV
	default:
		zone = Marginal
	}
	return Option{
		Action:    betting.Fold,
		Zone:      zone,
		Style:     Conservative,
		Rationale: foldRationale(equity, required, zone, prof),
	}
}

func callStyle(equity float64, prof profile.Profile) Style {
	if equity >= 0.8 && prof.Archetype.Aggressive() {
		return Trappy
	}
	return Standard
}

func raiseStyle(total, minTotal, pot int, equity float64, prof profile.Profile) Style {
	if total == minTotal && equity >= 0.85 {
		return Trappy
	}
	if total-minTotal >= pot || prof.Archetype.Aggressive() {
		return Aggressive
	}
	return Standard
}

// rationale attaches guidance text whose directive strength follows the
// archetype: tight profiles get firm direction, loose ones a soft note.
func rationale(what string, zone Zone, prof profile.Profile) string {
	switch {
	case prof.Archetype.Tight() && zone == PlusEV:
		return what + " is clearly profitable here"
	case prof.Archetype.Tight() && zone == MinusEV:
		return what + " is losing chips long-term"
	case zone == Marginal:
		return what + " is close; lean on your read"
	default:
		return what + " looks " + zone.String()
	}
}

func callRationale(equity, required float64, zone Zone, prof profile.Profile) string {
	base := fmt.Sprintf("calling needs %.0f%% equity, you have %.0f%%", required*100, equity*100)
	switch {
	case zone == PlusEV && prof.Archetype.Tight():
		return base + "; call"
	case zone == MinusEV && prof.Archetype.Tight():
		return base + "; folding is better"
	case zone == Marginal:
		return base + "; close call, defer to other reads"
	default:
		return base
	}
}

func foldRationale(equity, required float64, zone Zone, prof profile.Profile) string {
	base := fmt.Sprintf("continuing needs %.0f%% equity, you have %.0f%%", required*100, equity*100)
	switch {
	case zone == PlusEV && prof.Archetype.Tight():
		return base + "; let this one go"
	case zone == MinusEV:
		return base + "; folding gives up too much"
	default:
		return base
	}
}
