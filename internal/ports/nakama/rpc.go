package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RpcQuickMatchFn searches for an open Punto lobby and returns its match ID,
// creating a fresh match when none is available.
//
// Payload: unused.
// Returns: string containing the match ID.
func RpcQuickMatchFn(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	// Lobbies advertise {"open":true,...} in their label until they launch
	// or fill up.
	limit := 1
	authoritative := true
	labelQuery := "+label.open:true +label.game:punto"
	minSize := 0
	maxSize := 3

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, labelQuery)
	if err != nil {
		logger.Error("RpcQuickMatch [User:%s]: Failed to list matches: %v", userId, err)
		return "", err
	}

	if len(matches) > 0 {
		matchId := matches[0].MatchId
		logger.Info("RpcQuickMatch [User:%s]: Found existing match %s", userId, matchId)
		return matchId, nil
	}

	matchId, err := nk.MatchCreate(ctx, MatchNamePunto, nil)
	if err != nil {
		logger.Error("RpcQuickMatch [User:%s]: Failed to create match: %v", userId, err)
		return "", err
	}

	logger.Info("RpcQuickMatch [User:%s]: Created new match %s", userId, matchId)
	return matchId, nil
}
