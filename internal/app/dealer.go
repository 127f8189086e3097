package app

import (
	"math/rand"
	"sort"

	"punto/internal/domain"
)

// deal assigns colors, turn slots, and shuffled hands to the ready player
// set of a freshly launched session.
//
//	4 players: 1 color each, 18 cards each.
//	2 players: 2 colors each, 36 cards each.
//	3 players: 1 color each plus a neutral 4th color whose 18 cards are
//	           split 6/6/6 by turn order.
func deal(s *domain.Session, rng *rand.Rand) {
	colors := append([]domain.Color{}, domain.Colors[:]...)
	rng.Shuffle(len(colors), func(i, j int) { colors[i], colors[j] = colors[j], colors[i] })

	players := participantsByName(s)
	n := len(players)
	orders := rng.Perm(n)

	ci := 0
	for i, p := range players {
		p.Colors = []domain.Color{colors[ci]}
		ci++
		if n == 2 {
			p.Colors = append(p.Colors, colors[ci])
			ci++
		}
		p.Order = orders[i]
		p.Hand = nil
		for _, color := range p.Colors {
			p.Hand = append(p.Hand, domain.ColorSet(color)...)
		}
	}

	s.NeutralColor = ""
	if n == 3 {
		s.NeutralColor = colors[ci]
		dealNeutral(s, domain.ColorSet(s.NeutralColor), rng)
	}

	for _, p := range players {
		shuffleCards(p.Hand, rng)
	}
}

// dealNeutral shuffles the neutral pool, moves any remainder beyond a
// multiple of 3 to the discard pile, and splits the rest evenly by turn
// order.
func dealNeutral(s *domain.Session, pool []domain.Card, rng *rand.Rand) {
	shuffleCards(pool, rng)
	for len(pool)%3 != 0 {
		s.DiscardPile = append(s.DiscardPile, pool[len(pool)-1])
		pool = pool[:len(pool)-1]
	}

	third := len(pool) / 3
	for _, p := range s.PlayersByOrder() {
		p.Hand = append(p.Hand, pool[:third]...)
		pool = pool[third:]
	}
}

// rebuildOwnColors hands every player a complete 18-card set per held
// color, minus the copies sitting in the discard pile, then shuffles each
// hand.
func rebuildOwnColors(s *domain.Session, rng *rand.Rand) {
	remaining := append([]domain.Card{}, s.DiscardPile...)
	for _, p := range s.PlayersByOrder() {
		for _, color := range p.Colors {
			for _, card := range domain.ColorSet(color) {
				if i := indexOfCard(remaining, card); i >= 0 {
					remaining = append(remaining[:i], remaining[i+1:]...)
					continue
				}
				p.Hand = append(p.Hand, card)
			}
		}
		shuffleCards(p.Hand, rng)
	}
}

func indexOfCard(cards []domain.Card, card domain.Card) int {
	for i, c := range cards {
		if c == card {
			return i
		}
	}
	return -1
}

// participantsByName returns the session's players sorted by pseudonym, a
// stable iteration order for dealing.
func participantsByName(s *domain.Session) []*domain.Player {
	out := make([]*domain.Player, 0, len(s.Players))
	for _, p := range s.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pseudonym < out[j].Pseudonym })
	return out
}

func shuffleCards(cards []domain.Card, rng *rand.Rand) {
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
}
