package bot

import (
	"math/rand"

	"punto/internal/domain"
)

// Candidate weights. An adjacency-valid empty cell is always worth
// baseWeight; standing next to a same-color card adds nearOwnColorWeight;
// completing a length-2 alignment with room for a third adds pairWeight,
// which dominates every other consideration.
const (
	baseWeight         = 1
	nearOwnColorWeight = 10
	pairWeight         = 10000
)

// StandardBot is a greedy placement heuristic: it samples a cell from a
// weighted pool rather than searching for globally optimal play.
type StandardBot struct{}

// ChooseIndex picks a board index for the card. On an empty board every cell
// is equally likely. Otherwise each legal empty cell enters a flat pool once
// per weight point and one entry is drawn uniformly, which samples cells
// proportionally to weight. When no empty cell is legal the board is full
// and a random overwritable cell is chosen instead.
func (sb *StandardBot) ChooseIndex(b domain.Board, card domain.Card, rng *rand.Rand) int {
	if b.IsEmpty() {
		return rng.Intn(domain.BoardCells)
	}

	var pool []int
	for idx := range b {
		if b[idx] != nil || !b.HasNeighbor(idx) {
			continue
		}
		weight := baseWeight
		if nextToColor(b, idx, card.Color) {
			weight += nearOwnColorWeight
		}
		if extendsAlignment(b, idx, card.Color) {
			weight += pairWeight
		}
		for i := 0; i < weight; i++ {
			pool = append(pool, idx)
		}
	}
	if len(pool) > 0 {
		return pool[rng.Intn(len(pool))]
	}

	var overwrites []int
	for idx := range b {
		if b[idx] != nil && b[idx].Value < card.Value {
			overwrites = append(overwrites, idx)
		}
	}
	if len(overwrites) == 0 {
		// The round evaluator ends a round before an unplayable turn is
		// reached, so an unplaceable card here is a programming defect.
		panic("bot: no legal placement for card")
	}
	return overwrites[rng.Intn(len(overwrites))]
}

// nextToColor reports whether any king-move neighbor of idx holds a card of
// the given color.
func nextToColor(b domain.Board, idx int, color domain.Color) bool {
	row, col := domain.RowCol(idx)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if !domain.InBounds(row+dr, col+dc) {
				continue
			}
			card := b[domain.CellIndex(row+dr, col+dc)]
			if card != nil && card.Color == color {
				return true
			}
		}
	}
	return false
}

// extendsAlignment reports whether placing at idx would form a same-color
// alignment of length 2 with a clear path to a third cell on the same axis,
// a precursor of a winning run.
func extendsAlignment(b domain.Board, idx int, color domain.Color) bool {
	row, col := domain.RowCol(idx)
	dirs := [8][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}, {1, 1}, {-1, -1}, {1, -1}, {-1, 1}}
	for _, d := range dirs {
		nr, nc := row+d[0], col+d[1]
		if !domain.InBounds(nr, nc) {
			continue
		}
		neighbor := b[domain.CellIndex(nr, nc)]
		if neighbor == nil || neighbor.Color != color {
			continue
		}
		// The third cell continues the axis on the opposite side of idx.
		tr, tc := row-d[0], col-d[1]
		if !domain.InBounds(tr, tc) {
			continue
		}
		third := b[domain.CellIndex(tr, tc)]
		if third == nil || third.Color == color {
			return true
		}
	}
	return false
}
