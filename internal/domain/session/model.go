package session

import (
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/belote-scorekeeper/internal/domain/round"
)

var ErrStorageUnavailable = errors.New("session storage unavailable")

type Phase string

const (
	PhaseUnconfigured Phase = "unconfigured"
	PhaseActive       Phase = "active"
	PhaseWon          Phase = "won"
)

// Snapshot is the durable part of a session.
// TeamNames is nil when no session has been started.
type Snapshot struct {
	TeamNames *round.TeamNames
	Rounds    []round.Round
}

// Configured reports whether the snapshot carries usable team names.
func (s Snapshot) Configured() bool {
	return s.TeamNames != nil
}
