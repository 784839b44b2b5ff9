package record

import (
	"context"

	"github.com/riskibarqy/belote-scorekeeper/internal/domain/session"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/logging"
)

// Snapshot decodes both raw records into a session snapshot.
// Nil payloads mean the record is absent. Anything unreadable is logged and treated as absent.
func Snapshot(ctx context.Context, logger *logging.Logger, teamNames, rounds []byte) session.Snapshot {
	if logger == nil {
		logger = logging.Default()
	}

	var out session.Snapshot

	names, mode, err := DecodeTeamNames(teamNames)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "discard unreadable team names record", "key", KeyTeamNames, "error", err)
	case mode == ModeLenient:
		logger.InfoContext(ctx, "migrated legacy team names record", "key", KeyTeamNames)
	}
	out.TeamNames = names

	decoded, mode, err := DecodeRounds(rounds)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "discard unreadable rounds record", "key", KeyRounds, "error", err)
	case mode == ModeLenient:
		logger.InfoContext(ctx, "migrated legacy rounds record", "key", KeyRounds, "rounds", len(decoded))
	}
	out.Rounds = decoded

	return out
}
