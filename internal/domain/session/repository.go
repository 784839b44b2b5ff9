package session

import (
	"context"

	"github.com/riskibarqy/belote-scorekeeper/internal/domain/round"
)

// Store persists the team names and the rounds of the current session as two records.
// Load never fails on malformed records: they are reported as absent.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	SaveTeamNames(ctx context.Context, names round.TeamNames) error
	SaveRounds(ctx context.Context, rounds []round.Round) error
	ClearTeamNames(ctx context.Context) error
	ClearRounds(ctx context.Context) error
}
