package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/belote-scorekeeper/internal/domain/ledger"
	"github.com/riskibarqy/belote-scorekeeper/internal/domain/round"
	"github.com/riskibarqy/belote-scorekeeper/internal/domain/session"
	idgen "github.com/riskibarqy/belote-scorekeeper/internal/platform/id"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/logging"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/writeback"
)

// GameState is a read-only view of the session after an operation.
type GameState struct {
	Phase        session.Phase
	TeamNames    *round.TeamNames
	Rounds       []round.Round
	Totals       round.Totals
	Winner       round.Side
	HasWinner    bool
	WinThreshold int
	Variant      round.Variant
}

func (s GameState) WinnerName() string {
	if !s.HasWinner || s.TeamNames == nil {
		return ""
	}
	return s.TeamNames.Of(s.Winner)
}

type GameSessionConfig struct {
	Rule         round.Rule
	WinThreshold int
}

// idObserver is implemented by generators that must skip ids already in use.
type idObserver interface {
	Observe(existing int64)
}

// GameSessionService owns the one running session: team names, ledger and scoring rule.
// All operations are serialized.
type GameSessionService struct {
	mu        sync.Mutex
	store     session.Store
	writer    *writeback.Writer
	rule      round.Rule
	threshold int
	idGen     idgen.Generator
	logger    *logging.Logger

	names  *round.TeamNames
	ledger *ledger.Ledger
}

func NewGameSessionService(
	store session.Store,
	writer *writeback.Writer,
	cfg GameSessionConfig,
	idGen idgen.Generator,
	logger *logging.Logger,
) *GameSessionService {
	if logger == nil {
		logger = logging.Default()
	}
	if writer == nil {
		writer = writeback.NewSync(logger)
	}
	if cfg.Rule == nil {
		cfg.Rule = round.FixedContract{}
	}
	if cfg.WinThreshold <= 0 {
		cfg.WinThreshold = ledger.DefaultWinThreshold
	}
	if idGen == nil {
		idGen = idgen.NewClockGenerator()
	}

	empty, _ := ledger.New(nil)
	return &GameSessionService{
		store:     store,
		writer:    writer,
		rule:      cfg.Rule,
		threshold: cfg.WinThreshold,
		idGen:     idGen,
		logger:    logger,
		ledger:    empty,
	}
}

// Restore loads the persisted session. Unreadable or unreachable storage leaves the session unconfigured.
func (s *GameSessionService) Restore(ctx context.Context) GameState {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSessionService.Restore")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.names = nil
	s.ledger.Clear()

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "restore session failed, starting unconfigured", "error", err)
		return s.stateLocked()
	}
	if !snapshot.Configured() {
		if len(snapshot.Rounds) > 0 {
			s.logger.WarnContext(ctx, "ignore persisted rounds without team names", "rounds", len(snapshot.Rounds))
		}
		return s.stateLocked()
	}

	names := *snapshot.TeamNames
	s.names = &names

	seen := make(map[int64]struct{}, len(snapshot.Rounds))
	kept := make([]round.Round, 0, len(snapshot.Rounds))
	for _, r := range snapshot.Rounds {
		if _, dup := seen[r.ID]; dup {
			s.logger.WarnContext(ctx, "skip persisted round with duplicate id", "round_id", r.ID)
			continue
		}
		seen[r.ID] = struct{}{}
		kept = append(kept, r)
		if obs, ok := s.idGen.(idObserver); ok {
			obs.Observe(r.ID)
		}
	}
	restored, err := ledger.New(kept)
	if err != nil {
		s.logger.WarnContext(ctx, "rebuild ledger failed, starting with an empty one", "error", err)
		restored, _ = ledger.New(nil)
	}
	s.ledger = restored

	state := s.stateLocked()
	s.logger.InfoContext(ctx, "session restored",
		"phase", state.Phase,
		"rounds", len(state.Rounds),
		"total_a", state.Totals.A,
		"total_b", state.Totals.B,
	)
	return state
}

// StartSession sets the team names and empties the ledger. Allowed in any phase.
func (s *GameSessionService) StartSession(ctx context.Context, names round.TeamNames) (GameState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSessionService.StartSession")
	defer span.End()

	names.A = strings.TrimSpace(names.A)
	names.B = strings.TrimSpace(names.B)
	if names.A == "" || names.B == "" {
		return GameState{}, fmt.Errorf("%w: both team names are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.names = &names
	s.ledger.Clear()

	s.writer.Submit(ctx, writeback.Task{
		Name: "start_session",
		Run: func(ctx context.Context) error {
			if err := s.store.SaveTeamNames(ctx, names); err != nil {
				return err
			}
			return s.store.ClearRounds(ctx)
		},
	})

	s.logger.InfoContext(ctx, "session started", "team_a", names.A, "team_b", names.B)
	return s.stateLocked(), nil
}

// AddRound scores a new round and puts it at the head of the ledger.
func (s *GameSessionService) AddRound(ctx context.Context, input round.Input) (round.Round, GameState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSessionService.AddRound")
	defer span.End()

	if err := round.ValidateInput(input); err != nil {
		return round.Round{}, GameState{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.names == nil {
		return round.Round{}, GameState{}, ErrSessionNotConfigured
	}
	if _, won := ledger.DetectWinner(s.ledger.Totals(), s.threshold); won {
		return round.Round{}, GameState{}, ErrGameOver
	}

	added := round.Apply(s.rule, s.idGen.NewID(), input, *s.names)
	if err := s.ledger.Append(added); err != nil {
		return round.Round{}, GameState{}, fmt.Errorf("append round: %w", err)
	}
	span.SetAttributes(attribute.Int64("round.id", added.ID))

	s.persistRoundsLocked(ctx, "add_round")
	s.logger.InfoContext(ctx, "round added", "round_id", added.ID, "delta_a", added.DeltaA, "delta_b", added.DeltaB)
	return added, s.stateLocked(), nil
}

// EditRound re-scores an existing round in place.
func (s *GameSessionService) EditRound(ctx context.Context, id int64, input round.Input) (round.Round, GameState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSessionService.EditRound")
	defer span.End()
	span.SetAttributes(attribute.Int64("round.id", id))

	if err := round.ValidateInput(input); err != nil {
		return round.Round{}, GameState{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.names == nil {
		return round.Round{}, GameState{}, ErrSessionNotConfigured
	}

	updated, err := s.ledger.Update(id, input, s.rule, *s.names)
	if err != nil {
		if errors.Is(err, ledger.ErrRoundNotFound) {
			return round.Round{}, GameState{}, fmt.Errorf("%w: round %d", ErrNotFound, id)
		}
		return round.Round{}, GameState{}, fmt.Errorf("update round: %w", err)
	}

	s.persistRoundsLocked(ctx, "edit_round")
	s.logger.InfoContext(ctx, "round edited", "round_id", id, "delta_a", updated.DeltaA, "delta_b", updated.DeltaB)
	return updated, s.stateLocked(), nil
}

func (s *GameSessionService) DeleteRound(ctx context.Context, id int64) (GameState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSessionService.DeleteRound")
	defer span.End()
	span.SetAttributes(attribute.Int64("round.id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.names == nil {
		return GameState{}, ErrSessionNotConfigured
	}

	if _, err := s.ledger.Remove(id); err != nil {
		if errors.Is(err, ledger.ErrRoundNotFound) {
			return GameState{}, fmt.Errorf("%w: round %d", ErrNotFound, id)
		}
		return GameState{}, fmt.Errorf("remove round: %w", err)
	}

	s.persistRoundsLocked(ctx, "delete_round")
	s.logger.InfoContext(ctx, "round deleted", "round_id", id)
	return s.stateLocked(), nil
}

// NewGame empties the ledger and keeps the team names.
func (s *GameSessionService) NewGame(ctx context.Context) (GameState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSessionService.NewGame")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.names == nil {
		return GameState{}, ErrSessionNotConfigured
	}

	s.ledger.Clear()
	s.writer.Submit(ctx, writeback.Task{Name: "new_game", Run: s.store.ClearRounds})

	s.logger.InfoContext(ctx, "new game started")
	return s.stateLocked(), nil
}

// EndSession forgets the team names and the ledger.
func (s *GameSessionService) EndSession(ctx context.Context) GameState {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSessionService.EndSession")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.names = nil
	s.ledger.Clear()
	s.writer.Submit(ctx, writeback.Task{
		Name: "end_session",
		Run: func(ctx context.Context) error {
			if err := s.store.ClearRounds(ctx); err != nil {
				return err
			}
			return s.store.ClearTeamNames(ctx)
		},
	})

	s.logger.InfoContext(ctx, "session ended")
	return s.stateLocked()
}

func (s *GameSessionService) State(ctx context.Context) GameState {
	_, span := startUsecaseSpan(ctx, "usecase.GameSessionService.State")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stateLocked()
}

func (s *GameSessionService) persistRoundsLocked(ctx context.Context, name string) {
	rounds := s.ledger.Rounds()
	s.writer.Submit(ctx, writeback.Task{
		Name: name,
		Run: func(ctx context.Context) error {
			return s.store.SaveRounds(ctx, rounds)
		},
	})
}

func (s *GameSessionService) stateLocked() GameState {
	state := GameState{
		Phase:        session.PhaseUnconfigured,
		Rounds:       s.ledger.Rounds(),
		Totals:       s.ledger.Totals(),
		WinThreshold: s.threshold,
		Variant:      s.rule.Variant(),
	}
	if s.names == nil {
		return state
	}

	names := *s.names
	state.TeamNames = &names
	state.Phase = session.PhaseActive
	if winner, ok := ledger.DetectWinner(state.Totals, s.threshold); ok {
		state.Winner = winner
		state.HasWinner = true
		state.Phase = session.PhaseWon
	}
	return state
}
