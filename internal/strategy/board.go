package strategy

import "github.com/jeffeharris/my-poker-face-sub006/internal/deck"

// DryBoard reports whether a board is unlikely to have improved callers:
// no three-flush, no pair on board, and no three cards close enough in
// rank to complete straights. Preflop (empty board) is never dry.
func DryBoard(board []deck.Card) bool {
	if len(board) < 3 {
		return false
	}

	suits := map[deck.Suit]int{}
	ranks := map[deck.Rank]int{}
	for _, c := range board {
		suits[c.Suit]++
		if ranks[c.Rank] > 0 {
			return false // paired board
		}
		ranks[c.Rank]++
	}
	for _, n := range suits {
		if n >= 3 {
			return false // flush draws live
		}
	}

	// Three ranks within a five-rank window make too many straights
	var rs []int
	for r := range ranks {
		rs = append(rs, int(r))
	}
	for i := range rs {
		near := 0
		for j := range rs {
			if d := rs[j] - rs[i]; d >= 0 && d <= 4 {
				near++
			}
		}
		if near >= 3 {
			return false
		}
	}
	return true
}
