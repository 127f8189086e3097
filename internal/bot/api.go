package bot

import (
	"math/rand"

	"punto/internal/domain"
)

// Brain is the interface placement strategies must implement. It is invoked
// for explicit auto-play requests and when the server substitutes a move for
// an unavailable player. The board is guaranteed to admit at least one legal
// placement for the card.
type Brain interface {
	ChooseIndex(b domain.Board, card domain.Card, rng *rand.Rand) int
}
