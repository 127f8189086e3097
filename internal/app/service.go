package app

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"punto/internal/bot"
	"punto/internal/domain"
)

// Failure kinds returned by engine operations. Every failure leaves the
// session untouched.
var (
	ErrNoSuchSession         = errors.New("session not found")
	ErrSessionNotPending     = errors.New("session is not pending")
	ErrTooManyInvitees       = errors.New("invite limit reached")
	ErrNotInvited            = errors.New("player is not invited")
	ErrFewerThanTwoReady     = errors.New("not enough ready players")
	ErrNotParticipant        = errors.New("player is not a participant")
	ErrSessionNotRunning     = errors.New("session is not running")
	ErrNotPlayersTurn        = errors.New("not the player's turn")
	ErrIndexOutOfRange       = errors.New("board index out of range")
	ErrIllegalPlacement      = errors.New("card cannot be placed there")
	ErrHandEmpty             = errors.New("hand is empty")
	ErrNotAwaitingTransition = errors.New("session is not between rounds")
	ErrNotFinished           = errors.New("session is not finished")
)

// Service owns every in-flight session. The session map is guarded by mu;
// operations within one session are serialized by that session's own lock,
// so distinct sessions can be processed in parallel.
type Service struct {
	mu       sync.RWMutex
	sessions map[int64]*session
	nextID   int64
	seed     *rand.Rand // source for per-session rngs, guarded by mu
	brain    bot.Brain
}

type session struct {
	mu  sync.Mutex
	rng *rand.Rand
	s   *domain.Session
}

// NewService constructs a Service with the provided rng or a time-seeded
// default. Passing a fixed-seed rng makes shuffles and auto-play sampling
// reproducible.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		sessions: map[int64]*session{},
		nextID:   1,
		seed:     rng,
		brain:    &bot.StandardBot{},
	}
}

// lookup fetches a session by id without locking it.
func (svc *Service) lookup(id int64) (*session, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	sess, ok := svc.sessions[id]
	if !ok {
		return nil, ErrNoSuchSession
	}
	return sess, nil
}

// destroy removes a session from the registry. Safe to call while holding
// the session's own lock.
func (svc *Service) destroy(id int64) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	delete(svc.sessions, id)
}

// CreateSession allocates a new pending session with the creator already
// invited and joined, and returns its id.
func (svc *Service) CreateSession(creator string) int64 {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	id := svc.nextID
	svc.nextID++

	s := domain.NewSession(id)
	s.Players[creator] = &domain.Player{
		Pseudonym: creator,
		Status:    domain.PlayerReady,
		Victories: []int{},
	}
	svc.sessions[id] = &session{
		rng: rand.New(rand.NewSource(svc.seed.Int63())),
		s:   s,
	}
	return id
}

// Invite adds a player to a pending session's roster in the pending-invite
// state. A session holds the creator plus at most 3 invitees.
func (svc *Service) Invite(id int64, player string) error {
	sess, err := svc.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s := sess.s
	if s.Status != domain.StatusPending {
		return ErrSessionNotPending
	}
	if _, ok := s.Players[player]; ok {
		return nil
	}
	if len(s.Players) == 4 {
		return ErrTooManyInvitees
	}
	s.Players[player] = &domain.Player{
		Pseudonym: player,
		Status:    domain.PlayerPending,
	}
	return nil
}

// Join marks an invited player as ready. Joining resets the player's
// victory record.
func (svc *Service) Join(id int64, player string) error {
	sess, err := svc.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s := sess.s
	if s.Status != domain.StatusPending {
		return ErrSessionNotPending
	}
	p, ok := s.Players[player]
	if !ok {
		return ErrNotInvited
	}
	p.Status = domain.PlayerReady
	p.Victories = []int{}
	return nil
}

// Remove takes a player out of one session. While the session is pending
// the entry is deleted outright; mid-match the player is marked left and
// retained for scoring. A session left with no ready player is destroyed.
// Removing an unknown player or session is a no-op.
func (svc *Service) Remove(id int64, player string) {
	sess, err := svc.lookup(id)
	if err != nil {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	svc.removeLocked(sess, player)
}

func (svc *Service) removeLocked(sess *session, player string) {
	s := sess.s
	p, ok := s.Players[player]
	if !ok {
		return
	}

	if s.Status == domain.StatusPending {
		delete(s.Players, player)
	} else {
		p.Status = domain.PlayerLeft
		// Keep the one-ready-current invariant: the transport substitutes
		// an auto-play before removing a turn holder, so the slot only
		// needs to move on.
		if s.Status == domain.StatusRunning && s.CurrentTurn == p.Order {
			s.CurrentTurn = s.NextReadyOrder(s.CurrentTurn)
		}
	}

	if s.ReadyCount() == 0 {
		svc.destroy(s.ID)
	}
}

// RemoveAll removes a player from every session they participate in.
func (svc *Service) RemoveAll(player string) {
	for _, id := range svc.SessionsFor(player) {
		svc.Remove(id, player)
	}
}

// Launch starts the match: non-ready entries are dropped, the ready set is
// fixed as participants, colors and hands are dealt, and play begins with
// turn slot 0.
func (svc *Service) Launch(id int64) error {
	sess, err := svc.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s := sess.s
	if s.ReadyCount() < 2 {
		return ErrFewerThanTwoReady
	}
	for name, p := range s.Players {
		if p.Status != domain.PlayerReady {
			delete(s.Players, name)
		}
	}

	deal(s, sess.rng)

	s.Status = domain.StatusRunning
	s.CurrentTurn = 0
	s.Round = 1
	s.Board = domain.NewBoard()
	return nil
}

// SessionIDs returns every registered session id in ascending order.
func (svc *Service) SessionIDs() []int64 {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	ids := make([]int64, 0, len(svc.sessions))
	for id := range svc.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SessionsFor returns the ids of sessions the player participates in, in
// ascending order.
func (svc *Service) SessionsFor(player string) []int64 {
	svc.mu.RLock()
	all := make(map[int64]*session, len(svc.sessions))
	for id, sess := range svc.sessions {
		all[id] = sess
	}
	svc.mu.RUnlock()

	var ids []int64
	for id, sess := range all {
		sess.mu.Lock()
		_, ok := sess.s.Players[player]
		sess.mu.Unlock()
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Dismiss retires a finished session from the registry. Finished sessions
// are retained until the surrounding transport dismisses them, so the match
// result stays queryable.
func (svc *Service) Dismiss(id int64) error {
	sess, err := svc.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.s.Status != domain.StatusFinished {
		return ErrNotFinished
	}
	svc.destroy(id)
	return nil
}
