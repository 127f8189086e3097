package app

import (
	"punto/internal/domain"
)

// PlayerView is the per-player slice of a snapshot. Hands are never
// included; only the querying player's own top card is disclosable, through
// CurrentHandTop.
type PlayerView struct {
	Status    domain.PlayerStatus `json:"status"`
	Victories []int               `json:"victories"`
	Colors    []domain.Color      `json:"colors,omitempty"`
}

// SnapshotView is the public projection of one session. Board, round, and
// discard pile are only populated once the session has left the lobby.
type SnapshotView struct {
	Status        domain.Status         `json:"status"`
	Board         domain.Board          `json:"board,omitempty"`
	Round         int                   `json:"round,omitempty"`
	DiscardPile   []domain.Card         `json:"discard_pile,omitempty"`
	CurrentPlayer string                `json:"current_player,omitempty"`
	Players       map[string]PlayerView `json:"players"`
}

// Snapshot returns the public view of a session.
func (svc *Service) Snapshot(id int64) (SnapshotView, error) {
	sess, err := svc.lookup(id)
	if err != nil {
		return SnapshotView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s := sess.s
	view := SnapshotView{
		Status:  s.Status,
		Players: make(map[string]PlayerView, len(s.Players)),
	}
	if s.Status != domain.StatusPending {
		view.Board = append(domain.Board{}, s.Board...)
		view.Round = s.Round
		view.DiscardPile = append([]domain.Card{}, s.DiscardPile...)
		if current := s.CurrentPlayer(); current != nil {
			view.CurrentPlayer = current.Pseudonym
		}
	}
	for name, p := range s.Players {
		view.Players[name] = PlayerView{
			Status:    p.Status,
			Victories: append([]int{}, p.Victories...),
			Colors:    append([]domain.Color{}, p.Colors...),
		}
	}
	return view, nil
}

// CurrentHandTop returns, without removing it, the next card the player
// would play. Only the player holding the turn may peek.
func (svc *Service) CurrentHandTop(id int64, player string) (domain.Card, error) {
	sess, err := svc.lookup(id)
	if err != nil {
		return domain.Card{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s := sess.s
	p, ok := s.Players[player]
	if !ok {
		return domain.Card{}, ErrNotParticipant
	}
	if s.CurrentTurn != p.Order {
		return domain.Card{}, ErrNotPlayersTurn
	}
	card, ok := p.TopCard()
	if !ok {
		return domain.Card{}, ErrHandEmpty
	}
	return card, nil
}
