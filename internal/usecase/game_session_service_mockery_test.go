package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/belote-scorekeeper/internal/domain/round"
	"github.com/riskibarqy/belote-scorekeeper/internal/domain/session"
	sessionmock "github.com/riskibarqy/belote-scorekeeper/internal/mocks/domain/session"
)

func TestGameSessionService_Restore_StorageUnavailableUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := sessionmock.NewStore(t)
	store.
		On("Load", mock.Anything).
		Return(session.Snapshot{}, session.ErrStorageUnavailable).
		Once()

	svc := newTestService(t, store, nil)
	state := svc.Restore(ctx)
	if state.Phase != session.PhaseUnconfigured || len(state.Rounds) != 0 {
		t.Fatalf("expected unconfigured empty session, got %+v", state)
	}
}

func TestGameSessionService_StartSession_PersistsNamesAndClearsRoundsUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "trace_id", "trace-123")
	store := sessionmock.NewStore(t)
	store.
		On("SaveTeamNames", mock.Anything, defaultNames).
		Return(nil).
		Once()
	store.
		On("ClearRounds", mock.MatchedBy(func(v context.Context) bool { return v.Value("trace_id") == "trace-123" })).
		Return(nil).
		Once()

	svc := newTestService(t, store, nil)
	if _, err := svc.StartSession(ctx, round.TeamNames{A: " Nous ", B: "Eux"}); err != nil {
		t.Fatalf("start session: %v", err)
	}
}

func TestGameSessionService_EditRound_NotFoundSkipsWriteUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := sessionmock.NewStore(t)
	store.On("SaveTeamNames", mock.Anything, defaultNames).Return(nil).Once()
	store.On("ClearRounds", mock.Anything).Return(nil).Once()
	store.
		On("SaveRounds", mock.Anything, mock.MatchedBy(func(rounds []round.Round) bool { return len(rounds) == 1 })).
		Return(nil).
		Once()

	svc := newTestService(t, store, nil)
	if _, err := svc.StartSession(ctx, defaultNames); err != nil {
		t.Fatalf("start session: %v", err)
	}
	added, before, err := svc.AddRound(ctx, round.Input{Bidder: round.SideA, Contract: 90, Suit: round.SuitSpades, ScoreMade: 95})
	if err != nil {
		t.Fatalf("add round: %v", err)
	}

	_, _, err = svc.EditRound(ctx, added.ID+1, round.Input{Bidder: round.SideB, Contract: 100, Suit: round.SuitHearts})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.DeleteRound(ctx, added.ID+1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	after := svc.State(ctx)
	if after.Totals != before.Totals || after.Rounds[0] != before.Rounds[0] {
		t.Fatalf("failed edit changed state: before=%+v after=%+v", before, after)
	}
}

func TestGameSessionService_AddRound_WriteFailureKeepsSessionUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := sessionmock.NewStore(t)
	store.On("SaveTeamNames", mock.Anything, defaultNames).Return(nil).Once()
	store.On("ClearRounds", mock.Anything).Return(nil).Once()
	store.
		On("SaveRounds", mock.Anything, mock.Anything).
		Return(errors.New("disk full")).
		Twice()

	svc := newTestService(t, store, nil)
	if _, err := svc.StartSession(ctx, defaultNames); err != nil {
		t.Fatalf("start session: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, _, err := svc.AddRound(ctx, round.Input{Bidder: round.SideB, Contract: 82, Suit: round.SuitClubs, ScoreMade: 90}); err != nil {
			t.Fatalf("add round %d should not surface write failures: %v", i, err)
		}
	}
	if state := svc.State(ctx); state.Totals.B != 164 {
		t.Fatalf("unexpected totals after failed writes: %+v", state.Totals)
	}
}
