package app

import (
	"errors"
	"testing"

	"punto/internal/domain"
)

func TestPlayValidation(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob")
	s := svc.sessions[id].s
	holder := s.CurrentPlayer().Pseudonym
	other := "ann"
	if holder == "ann" {
		other = "bob"
	}

	if _, err := svc.Play(id, "eve", 0); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider play: err = %v, want ErrNotParticipant", err)
	}
	if _, err := svc.Play(id, other, 0); !errors.Is(err, ErrNotPlayersTurn) {
		t.Fatalf("out-of-turn play: err = %v, want ErrNotPlayersTurn", err)
	}
	if _, err := svc.Play(id, holder, domain.BoardCells); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("index 36: err = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := svc.Play(id, holder, -2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("index -2: err = %v, want ErrIndexOutOfRange", err)
	}

	pending := svc.CreateSession("ann")
	if _, err := svc.Play(pending, "ann", 0); !errors.Is(err, ErrSessionNotRunning) {
		t.Fatalf("play in lobby: err = %v, want ErrSessionNotRunning", err)
	}
}

func TestPlayRejectedPlacementLeavesStateAlone(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob")
	s := svc.sessions[id].s

	first := s.CurrentPlayer()
	if _, err := svc.Play(id, first.Pseudonym, 0); err != nil {
		t.Fatalf("opening play: %v", err)
	}

	second := s.CurrentPlayer()
	handBefore := len(second.Hand)
	// Cell 35 is nowhere near the opening card at cell 0.
	if _, err := svc.Play(id, second.Pseudonym, 35); !errors.Is(err, ErrIllegalPlacement) {
		t.Fatalf("detached placement: err = %v, want ErrIllegalPlacement", err)
	}
	if len(second.Hand) != handBefore {
		t.Fatalf("rejected play consumed a card: hand %d, want %d", len(second.Hand), handBefore)
	}
	if s.Board[35] != nil {
		t.Fatalf("rejected play reached the board")
	}
	if s.CurrentPlayer() != second {
		t.Fatalf("rejected play advanced the turn")
	}
}

func TestPlayCommitsAndRotates(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob")
	s := svc.sessions[id].s

	first := s.CurrentPlayer()
	top, _ := first.TopCard()
	handBefore := len(first.Hand)

	conc, err := svc.Play(id, first.Pseudonym, 14)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if conc != nil {
		t.Fatalf("opening play concluded the round: %+v", conc)
	}
	if s.Board[14] == nil || *s.Board[14] != top {
		t.Fatalf("board[14] = %v, want %v", s.Board[14], top)
	}
	if len(first.Hand) != handBefore-1 {
		t.Fatalf("hand = %d, want %d", len(first.Hand), handBefore-1)
	}
	if s.CurrentPlayer() == first {
		t.Fatalf("turn did not rotate")
	}
}

func TestPlayAutoChoosesLegalCells(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob", "cam")
	s := svc.sessions[id].s

	for i := 0; i < 12; i++ {
		if s.Status != domain.StatusRunning {
			break
		}
		holder := s.CurrentPlayer().Pseudonym
		if _, err := svc.Play(id, holder, -1); err != nil {
			t.Fatalf("auto play %d by %s: %v", i, holder, err)
		}
	}

	placed := 0
	for _, c := range s.Board {
		if c != nil {
			placed++
		}
	}
	if placed == 0 {
		t.Fatalf("no cards reached the board")
	}
}

func TestPlayCompletingRunEndsRound(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob", "cam")
	s := svc.sessions[id].s

	ann := s.Players["ann"]
	color := ann.Colors[0]
	s.Board = domain.NewBoard()
	for i, v := range []int{1, 2, 3} {
		s.Board[i] = &domain.Card{Color: color, Value: v}
	}
	s.CurrentTurn = ann.Order
	ann.Hand = []domain.Card{{Color: color, Value: 5}}

	conc, err := svc.Play(id, "ann", 3)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if conc == nil {
		t.Fatalf("completing a run of four should end the round")
	}
	if conc.Reason != domain.ReasonRun || conc.Winner != "ann" {
		t.Fatalf("conclusion = %+v, want 4cards by ann", conc)
	}
	if s.Status != domain.StatusBreak {
		t.Fatalf("status = %s, want break", s.Status)
	}
	if len(ann.Victories) != 1 || ann.Victories[0] != 1 {
		t.Fatalf("victories = %v, want [1]", ann.Victories)
	}
	want := domain.Card{Color: color, Value: 5}
	if len(s.DiscardPile) != 1 || s.DiscardPile[0] != want {
		t.Fatalf("discard pile = %v, want [%v]", s.DiscardPile, want)
	}
}

func TestPlayAgainstEmptiedOpponentBlocksRound(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob")
	s := svc.sessions[id].s

	holder := s.CurrentPlayer()
	next := s.Players["ann"]
	if holder == next {
		next = s.Players["bob"]
	}
	holder.Hand = holder.Hand[:1]
	next.Hand = nil

	conc, err := svc.Play(id, holder.Pseudonym, 0)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if conc == nil || conc.Reason != domain.ReasonBlocked {
		t.Fatalf("conclusion = %+v, want blocked", conc)
	}
	if conc.Winner != "" {
		t.Fatalf("a single card qualifies no run, winner = %q", conc.Winner)
	}
	if s.Status != domain.StatusBreak {
		t.Fatalf("status = %s, want break", s.Status)
	}
}

func TestCurrentHandTopPeeksOnly(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob")
	s := svc.sessions[id].s

	holder := s.CurrentPlayer()
	other := "ann"
	if holder.Pseudonym == "ann" {
		other = "bob"
	}

	card, err := svc.CurrentHandTop(id, holder.Pseudonym)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	top, _ := holder.TopCard()
	if card != top {
		t.Fatalf("peeked %v, want %v", card, top)
	}
	if len(holder.Hand) != 36 {
		t.Fatalf("peek consumed a card, hand = %d", len(holder.Hand))
	}

	if _, err := svc.CurrentHandTop(id, other); !errors.Is(err, ErrNotPlayersTurn) {
		t.Fatalf("off-turn peek: err = %v, want ErrNotPlayersTurn", err)
	}
	if _, err := svc.CurrentHandTop(id, "eve"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider peek: err = %v, want ErrNotParticipant", err)
	}
}
