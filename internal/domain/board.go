package domain

// BoardSide is the edge length of the square board.
const BoardSide = 6

// BoardCells is the number of slots on the board.
const BoardCells = BoardSide * BoardSide

// Board is a row-major 6x6 grid of optional card slots. A nil entry is an
// empty cell.
type Board []*Card

// NewBoard returns an empty 36-cell board.
func NewBoard() Board {
	return make(Board, BoardCells)
}

// RowCol converts a linear index to (row, col) coordinates.
func RowCol(idx int) (int, int) {
	return idx / BoardSide, idx % BoardSide
}

// CellIndex converts (row, col) coordinates to a linear index.
func CellIndex(row, col int) int {
	return row*BoardSide + col
}

// InBounds reports whether (row, col) lies on the board.
func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSide && col >= 0 && col < BoardSide
}

// IsEmpty reports whether the board holds no card at all.
func (b Board) IsEmpty() bool {
	for _, c := range b {
		if c != nil {
			return false
		}
	}
	return true
}

// HasNeighbor reports whether at least one of the up-to-8 king-move
// neighbors of idx holds a card. Neighbors are clipped at the board edges;
// there is no wraparound between rows.
func (b Board) HasNeighbor(idx int) bool {
	row, col := RowCol(idx)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if !InBounds(row+dr, col+dc) {
				continue
			}
			if b[CellIndex(row+dr, col+dc)] != nil {
				return true
			}
		}
	}
	return false
}

// CanPlace reports whether card may legally be placed at idx. On an empty
// board any cell is allowed. Otherwise an empty cell must be adjacent to an
// occupied one, and an occupied cell must hold a strictly lower value than
// the incoming card. Overwrites are not restricted to matching colors.
func (b Board) CanPlace(idx int, card Card) bool {
	if b.IsEmpty() {
		return true
	}
	if b[idx] == nil {
		return b.HasNeighbor(idx)
	}
	return b[idx].Value < card.Value
}

// CanPlay reports whether card may legally be placed anywhere on the board.
func (b Board) CanPlay(card Card) bool {
	if b.IsEmpty() {
		return true
	}
	for idx := range b {
		if b.CanPlace(idx, card) {
			return true
		}
	}
	return false
}
