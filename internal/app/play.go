package app

import (
	"punto/internal/domain"
)

// Conclusion reports a round ending to the caller of Play. Winner is empty
// when a blocked round had no qualifying run.
type Conclusion struct {
	Reason string `json:"reason"`
	Winner string `json:"winner,omitempty"`
}

// Play validates and applies a single card placement for the player holding
// the turn. An index of -1 requests an automatic move chosen by the
// placement heuristic; that path never fails for legality. On a rejected
// placement the card stays in the player's hand and the session is left
// untouched.
//
// After a committed placement the turn rotates to the next ready player and
// the round evaluator runs; a non-nil Conclusion means the session entered
// its between-rounds break.
func (svc *Service) Play(id int64, player string, index int) (*Conclusion, error) {
	sess, err := svc.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s := sess.s
	p, ok := s.Players[player]
	if !ok {
		return nil, ErrNotParticipant
	}
	if s.Status != domain.StatusRunning {
		return nil, ErrSessionNotRunning
	}
	if s.CurrentTurn != p.Order {
		return nil, ErrNotPlayersTurn
	}
	if index < -1 || index >= domain.BoardCells {
		return nil, ErrIndexOutOfRange
	}

	card, ok := p.TopCard()
	if !ok {
		return nil, ErrHandEmpty
	}

	if index == -1 {
		index = svc.brain.ChooseIndex(s.Board, card, sess.rng)
	} else if !s.Board.CanPlace(index, card) {
		return nil, ErrIllegalPlacement
	}

	p.Hand = p.Hand[:len(p.Hand)-1]
	s.Board[index] = &card
	s.CurrentTurn = s.NextReadyOrder(s.CurrentTurn)

	return svc.concludeRound(s), nil
}

// concludeRound runs the round evaluator against the player about to move
// and, when the round is over, credits the victory, discards the deciding
// card, and parks the session in the break state.
func (svc *Service) concludeRound(s *domain.Session) *Conclusion {
	next := s.CurrentPlayer()
	nextCard, hasCard := next.TopCard()

	result := domain.EvaluateRound(s.Board, nextCard, !hasCard, len(s.Players), s.NeutralColor)
	if result == nil {
		return nil
	}

	conclusion := &Conclusion{Reason: result.Reason}
	if result.Color != "" {
		if winner := s.PlayerWithColor(result.Color); winner != nil {
			winner.Victories = append(winner.Victories, s.Round)
			s.DiscardPile = append(s.DiscardPile, domain.Card{Color: result.Color, Value: result.Max})
			conclusion.Winner = winner.Pseudonym
		}
	}

	s.Status = domain.StatusBreak
	return conclusion
}
