package domain

// Conclusion reasons reported when a round ends.
const (
	// ReasonBlocked means the player to move could not legally place their
	// next card anywhere.
	ReasonBlocked = "blocked"
	// ReasonRun means a color reached a winning contiguous alignment.
	ReasonRun = "4cards"
)

// axis is one of the four board directions runs are traced along.
type axis struct {
	dr, dc int
}

var runAxes = [4]axis{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal down-right
	{1, -1}, // diagonal down-left
}

// visitKey memoizes one axis exploration from one cell, so a run is traced
// only once no matter which of its cells the scan reaches first.
type visitKey struct {
	cell, axis int
}

// Run is a maximal contiguous same-color alignment along a single axis.
type Run struct {
	Color  Color
	Length int
	Sum    int // summed card values, used for blocked-round tie-breaking
	Max    int // highest card value in the run
}

// Runs scans the whole board and returns every maximal run across the four
// axes. Single cards count as runs of length 1.
func (b Board) Runs() []Run {
	visited := make(map[visitKey]bool)
	var runs []Run
	for idx := range b {
		if b[idx] == nil {
			continue
		}
		for a := range runAxes {
			if visited[visitKey{idx, a}] {
				continue
			}
			runs = append(runs, b.traceRun(idx, a, visited))
		}
	}
	return runs
}

// traceRun computes the full run through idx along one axis by extending in
// both directions, marking every covered (cell, axis) pair as visited.
func (b Board) traceRun(idx, a int, visited map[visitKey]bool) Run {
	card := b[idx]
	visited[visitKey{idx, a}] = true
	run := Run{Color: card.Color, Length: 1, Sum: card.Value, Max: card.Value}
	b.extendRun(idx, a, 1, card.Color, visited, &run)
	b.extendRun(idx, a, -1, card.Color, visited, &run)
	return run
}

// extendRun recursively walks one direction along an axis, accumulating
// consecutive same-color cells into run until an empty cell, a different
// color, or the board edge stops it.
func (b Board) extendRun(idx, a, sign int, color Color, visited map[visitKey]bool, run *Run) {
	row, col := RowCol(idx)
	row += runAxes[a].dr * sign
	col += runAxes[a].dc * sign
	if !InBounds(row, col) {
		return
	}
	next := CellIndex(row, col)
	card := b[next]
	if card == nil || card.Color != color {
		return
	}
	visited[visitKey{next, a}] = true
	run.Length++
	run.Sum += card.Value
	if card.Value > run.Max {
		run.Max = card.Value
	}
	b.extendRun(next, a, sign, color, visited, run)
}

// RoundConclusion describes why a round ended and which color won it.
// Color is empty when a blocked round had no qualifying run.
type RoundConclusion struct {
	Reason string
	Color  Color
	Max    int // highest card value of the deciding run, discarded afterwards
}

// winThreshold returns the run length that wins a round outright.
func winThreshold(playerCount int) int {
	if playerCount > 2 {
		return 4
	}
	return 5
}

// blockThreshold returns the run length eligible for blocked-round scoring.
func blockThreshold(playerCount int) int {
	if playerCount > 2 {
		return 3
	}
	return 4
}

// EvaluateRound inspects the board after a placement and decides whether the
// round is over. nextCard is the top card of the player about to move;
// nextHandEmpty marks that player as unable to play at all. The blocked
// check runs before the outright-run check. The neutral color never
// contends; pass the zero Color when no neutral color is in play.
func EvaluateRound(b Board, nextCard Card, nextHandEmpty bool, playerCount int, neutral Color) *RoundConclusion {
	if nextHandEmpty || !b.CanPlay(nextCard) {
		return b.arbitrateBlocked(playerCount, neutral)
	}

	need := winThreshold(playerCount)
	for _, run := range b.Runs() {
		if run.Color == neutral {
			continue
		}
		if run.Length >= need {
			return &RoundConclusion{Reason: ReasonRun, Color: run.Color, Max: run.Max}
		}
	}
	return nil
}

// colorScore aggregates a color's qualifying runs for blocked arbitration.
type colorScore struct {
	count int
	max   int
	sum   int // sum of the highest-sum qualifying run
}

// arbitrateBlocked picks the winning color of a blocked round: most
// qualifying runs first, then the highest card value appearing in any of
// them, then the largest run sum. Returns a conclusion without a color when
// nothing qualifies.
func (b Board) arbitrateBlocked(playerCount int, neutral Color) *RoundConclusion {
	need := blockThreshold(playerCount)
	scores := map[Color]*colorScore{}
	for _, run := range b.Runs() {
		if run.Color == neutral || run.Length < need {
			continue
		}
		sc, ok := scores[run.Color]
		if !ok {
			sc = &colorScore{}
			scores[run.Color] = sc
		}
		sc.count++
		if run.Max > sc.max {
			sc.max = run.Max
		}
		if run.Sum > sc.sum {
			sc.sum = run.Sum
		}
	}

	best := &RoundConclusion{Reason: ReasonBlocked}
	var bestScore *colorScore
	for _, color := range Colors {
		sc, ok := scores[color]
		if !ok {
			continue
		}
		if bestScore == nil || sc.beats(bestScore) {
			best.Color = color
			best.Max = sc.max
			bestScore = sc
		}
	}
	return best
}

func (sc *colorScore) beats(other *colorScore) bool {
	if sc.count != other.count {
		return sc.count > other.count
	}
	if sc.max != other.max {
		return sc.max > other.max
	}
	return sc.sum > other.sum
}
