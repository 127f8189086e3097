package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"punto/internal/app"
	"punto/internal/config"
	"punto/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the runtime state for one Nakama match, which wraps
// exactly one engine session. The engine service is shared across matches
// and serializes access per session itself.
type MatchState struct {
	Engine    *app.Service
	SessionID int64
	Creator   string // pseudonym of the session creator

	Presences  map[string]runtime.Presence // userId -> presence
	Pseudonyms map[string]string           // userId -> pseudonym

	Tick           int64
	LastActionTick int64 // last committed play, drives auto-play substitution
	BreakStartTick int64 // when the current break began, 0 outside breaks

	TurnDuration  int64
	BreakDuration int64
}

type matchHandler struct {
	engine *app.Service
}

func newMatchHandler(engine *app.Service) *matchHandler {
	return &matchHandler{engine: engine}
}

// MatchInit boots the match in lobby phase. The engine session itself is
// created when the first presence joins.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	state := &MatchState{
		Engine:        mh.engine,
		Presences:     make(map[string]runtime.Presence),
		Pseudonyms:    make(map[string]string),
		TurnDuration:  int64(config.TurnDuration()),
		BreakDuration: int64(config.BreakDuration()),
	}

	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if val, ok := env["punto_turn_duration_sec"]; ok {
			if i, err := strconv.Atoi(val); err == nil && i > 0 {
				state.TurnDuration = int64(i)
			}
		}
	}

	labelBytes, err := json.Marshal(Label{Open: true, Game: "punto", Phase: string(domain.StatusPending)})
	if err != nil {
		logger.Error("MatchInit: failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, 1, string(labelBytes)
}

// MatchJoinAttempt admits presences while the session is pending and a
// roster slot is free.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	ms, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if ms.SessionID == 0 {
		return ms, true, ""
	}
	snap, err := ms.Engine.Snapshot(ms.SessionID)
	if err != nil {
		return ms, false, "session gone"
	}
	if snap.Status != domain.StatusPending {
		return ms, false, "match in progress"
	}
	if len(snap.Players) >= 4 {
		return ms, false, "match full"
	}
	return ms, true, ""
}

// MatchJoin creates the engine session on first join and invites every
// later presence. Players confirm with OpJoinSession to become ready.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		pseudonym := p.GetUsername()
		ms.Presences[p.GetUserId()] = p
		ms.Pseudonyms[p.GetUserId()] = pseudonym

		if ms.SessionID == 0 {
			ms.SessionID = ms.Engine.CreateSession(pseudonym)
			ms.Creator = pseudonym
			logger.Info("MatchJoin: %s created session %d", pseudonym, ms.SessionID)
			continue
		}
		if err := ms.Engine.Invite(ms.SessionID, pseudonym); err != nil {
			logger.Warn("MatchJoin: could not invite %s to session %d: %v", pseudonym, ms.SessionID, err)
		}
	}

	mh.updateLabel(ms, dispatcher, logger)
	mh.broadcastSnapshot(ms, dispatcher, logger)
	return ms
}

// MatchLeave substitutes an automatic move for a departing turn holder, then
// removes the player from the session. The match ends when the session is
// destroyed or nobody is connected.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		pseudonym := ms.Pseudonyms[p.GetUserId()]
		delete(ms.Presences, p.GetUserId())
		delete(ms.Pseudonyms, p.GetUserId())
		if pseudonym == "" {
			continue
		}

		if snap, err := ms.Engine.Snapshot(ms.SessionID); err == nil &&
			snap.Status == domain.StatusRunning && snap.CurrentPlayer == pseudonym {
			mh.playFor(ms, dispatcher, logger, pseudonym, -1)
		}
		ms.Engine.Remove(ms.SessionID, pseudonym)
		logger.Debug("MatchLeave: removed %s from session %d", pseudonym, ms.SessionID)
	}

	if _, err := ms.Engine.Snapshot(ms.SessionID); err != nil {
		logger.Info("MatchLeave: session %d emptied, terminating match", ms.SessionID)
		return nil
	}
	if len(ms.Presences) == 0 {
		return nil
	}

	mh.updateLabel(ms, dispatcher, logger)
	mh.broadcastSnapshot(ms, dispatcher, logger)
	return ms
}

// MatchLoop processes client messages and drives the turn and break timers.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		return state
	}
	ms.Tick = tick

	for _, msg := range messages {
		pseudonym := ms.Pseudonyms[msg.GetUserId()]
		switch msg.GetOpCode() {
		case OpJoinSession:
			mh.handleJoinSession(ms, dispatcher, logger, msg, pseudonym)
		case OpLaunch:
			mh.handleLaunch(ms, dispatcher, logger, msg, pseudonym)
		case OpPlay:
			mh.handlePlay(ms, dispatcher, logger, msg, pseudonym)
		case OpPeekCard:
			mh.handlePeekCard(ms, dispatcher, logger, msg, pseudonym)
		case OpNextRound:
			mh.handleNextRound(ms, dispatcher, logger, msg, pseudonym)
		default:
			logger.Warn("MatchLoop: unknown opcode %d", msg.GetOpCode())
		}
	}

	return mh.runTimers(ms, dispatcher, logger)
}

// runTimers substitutes an auto-play for an idle turn holder and advances
// past breaks once the break duration elapses.
func (mh *matchHandler) runTimers(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) interface{} {
	snap, err := ms.Engine.Snapshot(ms.SessionID)
	if err != nil {
		if ms.SessionID != 0 {
			logger.Info("MatchLoop: session %d gone, terminating match", ms.SessionID)
			return nil
		}
		return ms
	}

	switch snap.Status {
	case domain.StatusRunning:
		ms.BreakStartTick = 0
		if ms.LastActionTick == 0 {
			ms.LastActionTick = ms.Tick
		}
		if ms.Tick-ms.LastActionTick >= ms.TurnDuration && snap.CurrentPlayer != "" {
			logger.Info("MatchLoop: substituting auto-play for idle player %s in session %d", snap.CurrentPlayer, ms.SessionID)
			mh.playFor(ms, dispatcher, logger, snap.CurrentPlayer, -1)
		}
	case domain.StatusBreak:
		if ms.BreakStartTick == 0 {
			ms.BreakStartTick = ms.Tick
		}
		if ms.Tick-ms.BreakStartTick >= ms.BreakDuration {
			ms.BreakStartTick = 0
			if ended := mh.advanceRound(ms, dispatcher, logger); ended {
				return nil
			}
		}
	}
	return ms
}

func (mh *matchHandler) handleJoinSession(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, pseudonym string) {
	if err := ms.Engine.Join(ms.SessionID, pseudonym); err != nil {
		mh.sendError(ms, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	mh.broadcastSnapshot(ms, dispatcher, logger)
}

func (mh *matchHandler) handleLaunch(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, pseudonym string) {
	if pseudonym != ms.Creator {
		mh.sendError(ms, dispatcher, logger, msg.GetUserId(), errors.New("only the creator can launch"))
		return
	}
	if err := ms.Engine.Launch(ms.SessionID); err != nil {
		mh.sendError(ms, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	ms.LastActionTick = ms.Tick
	logger.Info("MatchLoop: session %d launched", ms.SessionID)
	mh.updateLabel(ms, dispatcher, logger)
	mh.broadcastSnapshot(ms, dispatcher, logger)
}

func (mh *matchHandler) handlePlay(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, pseudonym string) {
	var req PlayRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(ms, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	mh.playFor(ms, dispatcher, logger, pseudonym, req.Index)
}

func (mh *matchHandler) handlePeekCard(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, pseudonym string) {
	card, err := ms.Engine.CurrentHandTop(ms.SessionID, pseudonym)
	if err != nil {
		mh.sendError(ms, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	presence, ok := ms.Presences[msg.GetUserId()]
	if !ok {
		return
	}
	payload, err := json.Marshal(HandTopEvent{Card: card})
	if err != nil {
		logger.Error("handlePeekCard: failed to marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpHandTop, payload, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) handleNextRound(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, pseudonym string) {
	if pseudonym != ms.Creator {
		mh.sendError(ms, dispatcher, logger, msg.GetUserId(), errors.New("only the creator can advance the round"))
		return
	}
	ms.BreakStartTick = 0
	mh.advanceRound(ms, dispatcher, logger)
}

// playFor applies one placement through the engine and broadcasts the
// outcome. Errors go back to the acting player only.
func (mh *matchHandler) playFor(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, pseudonym string, index int) {
	conclusion, err := ms.Engine.Play(ms.SessionID, pseudonym, index)
	if err != nil {
		logger.Warn("playFor: %s failed to play in session %d: %v", pseudonym, ms.SessionID, err)
		if userID := mh.userIDOf(ms, pseudonym); userID != "" {
			mh.sendError(ms, dispatcher, logger, userID, err)
		}
		return
	}
	ms.LastActionTick = ms.Tick
	mh.broadcastSnapshot(ms, dispatcher, logger)

	if conclusion != nil {
		snap, err := ms.Engine.Snapshot(ms.SessionID)
		round := 0
		if err == nil {
			round = snap.Round
		}
		payload, merr := json.Marshal(RoundEndedEvent{Reason: conclusion.Reason, Winner: conclusion.Winner, Round: round})
		if merr != nil {
			logger.Error("playFor: failed to marshal round end: %v", merr)
			return
		}
		logger.Info("playFor: round %d of session %d ended (%s, winner=%q)", round, ms.SessionID, conclusion.Reason, conclusion.Winner)
		dispatcher.BroadcastMessage(OpRoundEnded, payload, nil, nil, true)
	}
}

// advanceRound runs the round transition and announces a decided match.
// Returns true when the underlying session no longer exists.
func (mh *matchHandler) advanceRound(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) bool {
	outcome, err := ms.Engine.NextRound(ms.SessionID)
	if err != nil {
		logger.Warn("advanceRound: session %d: %v", ms.SessionID, err)
		return false
	}

	switch outcome {
	case app.TransitionNextRound:
		ms.LastActionTick = ms.Tick
		mh.broadcastSnapshot(ms, dispatcher, logger)
		return false
	case app.TransitionEmptied:
		return true
	default:
		winner, err := ms.Engine.MatchResult(ms.SessionID)
		if err != nil {
			logger.Error("advanceRound: no result for finished session %d: %v", ms.SessionID, err)
			return false
		}
		payload, merr := json.Marshal(MatchEndedEvent{Winner: winner})
		if merr != nil {
			logger.Error("advanceRound: failed to marshal match end: %v", merr)
			return false
		}
		logger.Info("advanceRound: session %d won by %s", ms.SessionID, winner)
		dispatcher.BroadcastMessage(OpMatchEnded, payload, nil, nil, true)
		if err := ms.Engine.Dismiss(ms.SessionID); err != nil {
			logger.Warn("advanceRound: could not dismiss session %d: %v", ms.SessionID, err)
		}
		return true
	}
}

func (mh *matchHandler) broadcastSnapshot(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	snap, err := ms.Engine.Snapshot(ms.SessionID)
	if err != nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		logger.Error("broadcastSnapshot: failed to marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpSessionState, payload, nil, nil, true)
}

func (mh *matchHandler) sendError(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, err error) {
	presence, ok := ms.Presences[userID]
	if !ok {
		return
	}
	payload, merr := json.Marshal(ErrorEvent{Message: err.Error()})
	if merr != nil {
		logger.Error("sendError: failed to marshal: %v", merr)
		return
	}
	dispatcher.BroadcastMessage(OpGameError, payload, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := string(domain.StatusPending)
	open := true
	if snap, err := ms.Engine.Snapshot(ms.SessionID); err == nil {
		phase = string(snap.Status)
		open = snap.Status == domain.StatusPending && len(snap.Players) < 4
	}
	labelBytes, err := json.Marshal(Label{Open: open, Game: "punto", Phase: phase})
	if err != nil {
		logger.Error("updateLabel: failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("updateLabel: failed to update: %v", err)
	}
}

func (mh *matchHandler) userIDOf(ms *MatchState, pseudonym string) string {
	for userID, name := range ms.Pseudonyms {
		if name == pseudonym {
			return userID
		}
	}
	return ""
}

// MatchTerminate runs on match shutdown; the engine session is already gone
// or will be garbage collected with the registry.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: match shutting down")
	return state
}

// MatchSignal handles out-of-band signals; unused.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
