package app

import (
	"errors"
	"testing"

	"punto/internal/domain"
)

func totalCards(s *domain.Session) int {
	n := len(s.DiscardPile)
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	for _, c := range s.Board {
		if c != nil {
			n++
		}
	}
	return n
}

func TestNextRoundRequiresBreak(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob")
	if _, err := svc.NextRound(id); !errors.Is(err, ErrNotAwaitingTransition) {
		t.Fatalf("next round while running: err = %v, want ErrNotAwaitingTransition", err)
	}
}

func TestNextRoundRedeals(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob", "cam")
	s := svc.sessions[id].s

	ann := s.Players["ann"]
	color := ann.Colors[0]
	ann.Victories = []int{1}
	s.DiscardPile = append(s.DiscardPile, domain.Card{Color: color, Value: 5})
	s.Status = domain.StatusBreak

	outcome, err := svc.NextRound(id)
	if err != nil {
		t.Fatalf("next round: %v", err)
	}
	if outcome != TransitionNextRound {
		t.Fatalf("outcome = %v, want TransitionNextRound", outcome)
	}
	if s.Status != domain.StatusRunning || s.Round != 2 {
		t.Fatalf("state = %s round %d, want running round 2", s.Status, s.Round)
	}
	if !s.Board.IsEmpty() {
		t.Fatalf("board should be cleared for the new round")
	}
	if s.CurrentTurn < 0 || s.CurrentTurn >= len(s.Players) {
		t.Fatalf("current turn = %d out of range", s.CurrentTurn)
	}
	if len(ann.Victories) != 1 {
		t.Fatalf("victories = %v, want preserved", ann.Victories)
	}

	// One copy of the winning card stays discarded, so its owner redraws a
	// seventeen-card own set while the others get a full eighteen.
	for name, p := range s.Players {
		own := 0
		for _, c := range p.Hand {
			if c.Color == p.Colors[0] {
				own++
			}
		}
		want := 18
		if name == "ann" {
			want = 17
		}
		if own != want {
			t.Errorf("%s own-color cards = %d, want %d", name, own, want)
		}
	}

	seen := map[int]bool{}
	for _, p := range s.Players {
		seen[p.Order] = true
	}
	for i := 0; i < 3; i++ {
		if !seen[i] {
			t.Errorf("no player holds turn slot %d after reassignment", i)
		}
	}
}

func TestNextRoundDecidesMatch(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob")
	s := svc.sessions[id].s

	s.Players["ann"].Victories = []int{1, 3}
	s.Status = domain.StatusBreak

	outcome, err := svc.NextRound(id)
	if err != nil {
		t.Fatalf("next round: %v", err)
	}
	if outcome != TransitionMatchDecided {
		t.Fatalf("outcome = %v, want TransitionMatchDecided", outcome)
	}
	if s.Status != domain.StatusFinished {
		t.Fatalf("status = %s, want finished", s.Status)
	}

	winner, err := svc.MatchResult(id)
	if err != nil {
		t.Fatalf("match result: %v", err)
	}
	if winner != "ann" {
		t.Fatalf("winner = %s, want ann", winner)
	}
}

func TestNextRoundCreditsDepartedWinner(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob")
	s := svc.sessions[id].s

	s.Players["bob"].Victories = []int{1, 2}
	s.Players["bob"].Status = domain.PlayerLeft
	s.Status = domain.StatusBreak

	outcome, err := svc.NextRound(id)
	if err != nil {
		t.Fatalf("next round: %v", err)
	}
	if outcome != TransitionMatchDecided {
		t.Fatalf("outcome = %v, want TransitionMatchDecided", outcome)
	}
	winner, err := svc.MatchResult(id)
	if err != nil {
		t.Fatalf("match result: %v", err)
	}
	if winner != "bob" {
		t.Fatalf("winner = %s, want the departed bob", winner)
	}
}

func TestNextRoundLastPlayerWins(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob", "cam")
	s := svc.sessions[id].s

	s.Players["bob"].Status = domain.PlayerLeft
	s.Players["cam"].Status = domain.PlayerLeft
	s.Status = domain.StatusBreak

	outcome, err := svc.NextRound(id)
	if err != nil {
		t.Fatalf("next round: %v", err)
	}
	if outcome != TransitionLastPlayer {
		t.Fatalf("outcome = %v, want TransitionLastPlayer", outcome)
	}
	winner, err := svc.MatchResult(id)
	if err != nil {
		t.Fatalf("match result: %v", err)
	}
	if winner != "ann" {
		t.Fatalf("winner = %s, want ann", winner)
	}
}

func TestNextRoundEmptiedDestroysSession(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob")
	s := svc.sessions[id].s

	s.Players["ann"].Status = domain.PlayerLeft
	s.Players["bob"].Status = domain.PlayerLeft
	s.Status = domain.StatusBreak

	outcome, err := svc.NextRound(id)
	if err != nil {
		t.Fatalf("next round: %v", err)
	}
	if outcome != TransitionEmptied {
		t.Fatalf("outcome = %v, want TransitionEmptied", outcome)
	}
	if _, err := svc.Snapshot(id); !errors.Is(err, ErrNoSuchSession) {
		t.Fatalf("emptied session should be gone, err = %v", err)
	}
}

func TestNextRoundFourToThree(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob", "cam", "dee")
	s := svc.sessions[id].s

	leaver := s.Players["dee"]
	freed := leaver.Colors[0]
	leaver.Status = domain.PlayerLeft
	s.Status = domain.StatusBreak

	outcome, err := svc.NextRound(id)
	if err != nil {
		t.Fatalf("next round: %v", err)
	}
	if outcome != TransitionNextRound {
		t.Fatalf("outcome = %v, want TransitionNextRound", outcome)
	}
	if len(s.Players) != 3 {
		t.Fatalf("players = %d, want 3", len(s.Players))
	}
	if s.NeutralColor != freed {
		t.Fatalf("neutral color = %s, want the freed %s", s.NeutralColor, freed)
	}
	for name, p := range s.Players {
		if len(p.Hand) != 24 {
			t.Errorf("%s hand = %d, want 24", name, len(p.Hand))
		}
		if p.Order < 0 || p.Order > 2 {
			t.Errorf("%s order = %d, want 0..2", name, p.Order)
		}
	}
	// 3 own sets plus the neutral set, nothing lost.
	if got := totalCards(s); got != 72 {
		t.Fatalf("cards in circulation = %d, want 72", got)
	}
}

func TestNextRoundThreeToTwo(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob", "cam")
	s := svc.sessions[id].s

	leaver := s.Players["cam"]
	freed := leaver.Colors[0]
	neutral := s.NeutralColor
	leaver.Status = domain.PlayerLeft
	s.Status = domain.StatusBreak

	outcome, err := svc.NextRound(id)
	if err != nil {
		t.Fatalf("next round: %v", err)
	}
	if outcome != TransitionNextRound {
		t.Fatalf("outcome = %v, want TransitionNextRound", outcome)
	}
	if len(s.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(s.Players))
	}
	if s.NeutralColor != "" {
		t.Fatalf("heads-up keeps no neutral color, got %s", s.NeutralColor)
	}

	reassigned := map[domain.Color]bool{}
	for name, p := range s.Players {
		if len(p.Colors) != 2 {
			t.Fatalf("%s colors = %v, want two", name, p.Colors)
		}
		if len(p.Hand) != 36 {
			t.Errorf("%s hand = %d, want 36", name, len(p.Hand))
		}
		reassigned[p.Colors[1]] = true
	}
	if !reassigned[freed] || !reassigned[neutral] {
		t.Fatalf("freed %s and prior neutral %s should both re-enter play, got %v", freed, neutral, reassigned)
	}
}

func TestMatchResultRequiresFinished(t *testing.T) {
	svc := newTestService()
	id := launchSession(t, svc, "ann", "bob")
	if _, err := svc.MatchResult(id); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("result of running match: err = %v, want ErrNotFinished", err)
	}
}
