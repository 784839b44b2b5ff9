package ledger

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/belote-scorekeeper/internal/domain/round"
)

var (
	ErrDuplicateID   = errors.New("duplicate round id")
	ErrRoundNotFound = errors.New("round not found")
)

// Ledger keeps the scored rounds of a game, newest first.
// It is not safe for concurrent use; the owning session serializes access.
type Ledger struct {
	rounds []round.Round
}

// New builds a ledger from rounds already ordered newest first.
func New(rounds []round.Round) (*Ledger, error) {
	l := &Ledger{rounds: make([]round.Round, 0, len(rounds))}
	seen := make(map[int64]struct{}, len(rounds))
	for _, r := range rounds {
		if _, ok := seen[r.ID]; ok {
			return nil, errors.Wrapf(ErrDuplicateID, "id=%d", r.ID)
		}
		seen[r.ID] = struct{}{}
		l.rounds = append(l.rounds, r)
	}
	return l, nil
}

func (l *Ledger) Len() int {
	return len(l.rounds)
}

// Append places the round at the head of the ledger.
func (l *Ledger) Append(r round.Round) error {
	if l.indexOf(r.ID) >= 0 {
		return errors.Wrapf(ErrDuplicateID, "id=%d", r.ID)
	}
	l.rounds = slices.Insert(l.rounds, 0, r)
	return nil
}

// Update re-scores the round with the given id from the new input.
// The round keeps its id and its position.
func (l *Ledger) Update(id int64, in round.Input, rule round.Rule, names round.TeamNames) (round.Round, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return round.Round{}, errors.Wrapf(ErrRoundNotFound, "id=%d", id)
	}
	updated := round.Apply(rule, id, in, names)
	l.rounds[idx] = updated
	return updated, nil
}

func (l *Ledger) Remove(id int64) (round.Round, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return round.Round{}, errors.Wrapf(ErrRoundNotFound, "id=%d", id)
	}
	removed := l.rounds[idx]
	l.rounds = slices.Delete(l.rounds, idx, idx+1)
	return removed, nil
}

func (l *Ledger) Get(id int64) (round.Round, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return round.Round{}, false
	}
	return l.rounds[idx], true
}

// Totals folds every round delta. It is never cached.
func (l *Ledger) Totals() round.Totals {
	var t round.Totals
	for _, r := range l.rounds {
		t.A += r.DeltaA
		t.B += r.DeltaB
	}
	return t
}

// Rounds returns a copy of the rounds, newest first.
func (l *Ledger) Rounds() []round.Round {
	return slices.Clone(l.rounds)
}

func (l *Ledger) Clear() {
	l.rounds = nil
}

func (l *Ledger) indexOf(id int64) int {
	return slices.IndexFunc(l.rounds, func(r round.Round) bool { return r.ID == id })
}
