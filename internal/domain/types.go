package domain

// Status represents the lifecycle stage of a session.
type Status string

const (
	// StatusPending is the lobby state where invitations and joins happen.
	StatusPending Status = "pending"
	// StatusRunning is the active state where cards are placed.
	StatusRunning Status = "running"
	// StatusBreak is the pause between a concluded round and the next one.
	StatusBreak Status = "break"
	// StatusFinished is the state after the match is decided.
	StatusFinished Status = "finished"
)

// PlayerStatus represents a player's standing inside one session.
type PlayerStatus string

const (
	// PlayerPending means the player is invited but has not joined yet.
	PlayerPending PlayerStatus = "pending"
	// PlayerReady means the player joined and takes part in the match.
	PlayerReady PlayerStatus = "ready"
	// PlayerLeft means the player departed mid-match; the entry is kept
	// for scoring and victory attribution until the next round transition.
	PlayerLeft PlayerStatus = "left"
)

// Color identifies one of the four card colors.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorGreen  Color = "green"
)

// Colors lists every color in circulation.
var Colors = [4]Color{ColorBlue, ColorRed, ColorOrange, ColorGreen}

// Card is a single Punto card.
type Card struct {
	Color Color `json:"color"`
	Value int   `json:"value"` // 1..9, two copies of each per color
}

// ColorSet returns the full 18-card set for a color: two copies of each
// value 1 through 9.
func ColorSet(c Color) []Card {
	set := make([]Card, 0, 18)
	for i := 0; i < 18; i++ {
		set = append(set, Card{Color: c, Value: i%9 + 1})
	}
	return set
}

// Player holds per-session state for one participant.
type Player struct {
	Pseudonym string
	Status    PlayerStatus
	Colors    []Color
	Order     int    // turn slot, 0..N-1, reassigned every round
	Hand      []Card // last element is the next card to play
	Victories []int  // round numbers won; two wins decide the match
}

// TopCard returns the next card the player would play without removing it.
func (p *Player) TopCard() (Card, bool) {
	if len(p.Hand) == 0 {
		return Card{}, false
	}
	return p.Hand[len(p.Hand)-1], true
}

// HasColor reports whether the player owns the given color.
func (p *Player) HasColor(c Color) bool {
	for _, pc := range p.Colors {
		if pc == c {
			return true
		}
	}
	return false
}

// Session holds authoritative state for a single match instance.
type Session struct {
	ID           int64
	Status       Status
	Board        Board
	Round        int
	DiscardPile  []Card
	NeutralColor Color // set only while exactly 3 players are active
	CurrentTurn  int   // order slot of the player to move
	Players      map[string]*Player
}

// NewSession returns a pending session with the given id.
func NewSession(id int64) *Session {
	return &Session{
		ID:      id,
		Status:  StatusPending,
		Round:   1,
		Players: map[string]*Player{},
	}
}

// ReadyCount returns the number of players with status ready.
func (s *Session) ReadyCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Status == PlayerReady {
			n++
		}
	}
	return n
}

// CurrentPlayer returns the player holding the current turn slot, or nil.
func (s *Session) CurrentPlayer() *Player {
	for _, p := range s.Players {
		if p.Order == s.CurrentTurn {
			return p
		}
	}
	return nil
}

// PlayersByOrder returns the participants sorted by turn slot.
func (s *Session) PlayersByOrder() []*Player {
	out := make([]*Player, 0, len(s.Players))
	for _, p := range s.Players {
		out = append(out, p)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Order > out[j].Order; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// PlayerWithColor returns the participant owning the given color, or nil.
// Left players keep their colors and may still be credited a round win.
func (s *Session) PlayerWithColor(c Color) *Player {
	for _, p := range s.Players {
		if p.HasColor(c) {
			return p
		}
	}
	return nil
}

// NextReadyOrder returns the order slot of the next ready player after the
// given slot, cycling through all participants.
func (s *Session) NextReadyOrder(from int) int {
	n := len(s.Players)
	byOrder := s.PlayersByOrder()
	for i := 1; i <= n; i++ {
		slot := (from + i) % n
		for _, p := range byOrder {
			if p.Order == slot && p.Status == PlayerReady {
				return slot
			}
		}
	}
	return from
}
