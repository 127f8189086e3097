package app

import (
	"fmt"

	"punto/internal/domain"
)

// TransitionOutcome reports what a round transition decided.
type TransitionOutcome int

const (
	// TransitionNextRound means a fresh round was dealt and play resumed.
	TransitionNextRound TransitionOutcome = iota
	// TransitionMatchDecided means a player reached two round victories.
	TransitionMatchDecided
	// TransitionLastPlayer means only one participant remains.
	TransitionLastPlayer
	// TransitionEmptied means the session lost every participant and was
	// destroyed.
	TransitionEmptied
)

// NextRound reconciles departed players, reassigns colors, and redeals for
// the next round, or finalizes the match when it is decided. Valid only
// while the session is in its between-rounds break.
func (svc *Service) NextRound(id int64) (TransitionOutcome, error) {
	sess, err := svc.lookup(id)
	if err != nil {
		return 0, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s := sess.s
	if s.Status != domain.StatusBreak {
		return 0, ErrNotAwaitingTransition
	}

	// Left players still count: a departed player's second victory decides
	// the match before their entry is dropped.
	for _, p := range s.Players {
		if len(p.Victories) >= 2 {
			s.Status = domain.StatusFinished
			return TransitionMatchDecided, nil
		}
	}

	var freed []domain.Color
	for name, p := range s.Players {
		if p.Status == domain.PlayerLeft {
			freed = append(freed, p.Colors...)
			delete(s.Players, name)
		}
	}

	switch len(s.Players) {
	case 0:
		svc.destroy(s.ID)
		return TransitionEmptied, nil
	case 1:
		s.Status = domain.StatusFinished
		return TransitionLastPlayer, nil
	}

	rebuildNeutral := false
	if len(freed) > 0 {
		s.DiscardPile = discardWithoutColors(s.DiscardPile, freed)

		switch len(s.Players) {
		case 2:
			survivors := s.PlayersByOrder()
			if len(freed) == 2 {
				// 4 -> 2: the survivors split the two freed colors.
				survivors[0].Colors = append(survivors[0].Colors, freed[0])
				survivors[1].Colors = append(survivors[1].Colors, freed[1])
			} else {
				// 3 -> 2: the prior neutral color and the freed color both
				// re-enter play, one per survivor.
				survivors[0].Colors = append(survivors[0].Colors, s.NeutralColor)
				survivors[1].Colors = append(survivors[1].Colors, freed[0])
				s.DiscardPile = discardWithoutColors(s.DiscardPile, []domain.Color{s.NeutralColor})
				s.NeutralColor = ""
			}
		case 3:
			// 4 -> 3: the departed player's color becomes the neutral pool,
			// rebuilt in full.
			rebuildNeutral = true
			s.NeutralColor = freed[len(freed)-1]
		}
	}

	// Own-color sets are rebuilt from scratch below, so hands keep nothing
	// but their neutral cards.
	for _, p := range s.Players {
		kept := p.Hand[:0]
		for _, c := range p.Hand {
			if s.NeutralColor != "" && c.Color == s.NeutralColor {
				kept = append(kept, c)
			}
		}
		p.Hand = kept
	}

	if len(s.Players) == 3 {
		var pool []domain.Card
		if rebuildNeutral {
			pool = domain.ColorSet(s.NeutralColor)
		} else {
			// Neutral cards that survived on the board go back into the
			// split; discarded ones never reached the board.
			for _, c := range s.Board {
				if c != nil && c.Color == s.NeutralColor {
					pool = append(pool, *c)
				}
			}
		}
		dealNeutral(s, pool, sess.rng)
	}

	rebuildOwnColors(s, sess.rng)

	for i, p := range s.PlayersByOrder() {
		p.Order = i
	}
	s.Round++
	s.CurrentTurn = sess.rng.Intn(len(s.Players))
	s.Board = domain.NewBoard()
	s.Status = domain.StatusRunning

	return TransitionNextRound, nil
}

// discardWithoutColors drops every discard-pile entry of the given colors,
// returning those cards to circulation.
func discardWithoutColors(pile []domain.Card, colors []domain.Color) []domain.Card {
	out := pile[:0]
	for _, card := range pile {
		dropped := false
		for _, color := range colors {
			if card.Color == color {
				dropped = true
				break
			}
		}
		if !dropped {
			out = append(out, card)
		}
	}
	return out
}

// MatchResult returns the final winner of a finished session. A lone
// remaining participant wins by default; otherwise the winner is the unique
// player with two round victories.
func (svc *Service) MatchResult(id int64) (string, error) {
	sess, err := svc.lookup(id)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s := sess.s
	if s.Status != domain.StatusFinished {
		return "", ErrNotFinished
	}

	if len(s.Players) < 2 {
		for name := range s.Players {
			return name, nil
		}
	}
	for name, p := range s.Players {
		if len(p.Victories) >= 2 {
			return name, nil
		}
	}
	panic(fmt.Sprintf("punto: finished session %d has no player with two victories", id))
}
