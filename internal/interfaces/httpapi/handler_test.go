package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/belote-scorekeeper/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/cache"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/logging"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/writeback"
	"github.com/riskibarqy/belote-scorekeeper/internal/usecase"
)

type sequenceIDGenerator struct {
	next int64
}

func (g *sequenceIDGenerator) NewID() int64 {
	g.next++
	return g.next
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestRouter(t *testing.T) (http.Handler, *testClock) {
	t.Helper()

	logger := logging.NewNop()
	store := memory.NewSessionStore(logger)
	svc := usecase.NewGameSessionService(store, writeback.NewSync(logger), usecase.GameSessionConfig{}, &sequenceIDGenerator{next: 100}, logger)
	clock := &testClock{now: time.Date(2026, 1, 2, 20, 0, 0, 0, time.UTC)}
	fresh := cache.NewStoreWithClock[struct{}](DefaultFreshRoundTTL, clock.Now)

	return NewRouter(NewHandler(svc, fresh, logger), logger, RouterConfig{ServiceName: "belote-test"}), clock
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Data T `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response %s: %v", rec.Body.String(), err)
	}
	return envelope.Data
}

func decodeErrorReason(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()

	var envelope googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response %s: %v", rec.Body.String(), err)
	}
	if envelope.Error == nil || len(envelope.Error.Errors) == 0 {
		t.Fatalf("expected error body, got %s", rec.Body.String())
	}
	return envelope.Error.Errors[0].Reason, envelope.Error.Message
}

func startSession(t *testing.T, router http.Handler) {
	t.Helper()

	rec := doRequest(t, router, http.MethodPost, "/v1/session", `{"team_names":{"a":"Nous","b":"Eux"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start session: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandler_SessionLifecycle(t *testing.T) {
	t.Parallel()

	router, clock := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/session", "")
	if got := decodeData[sessionDTO](t, rec); got.Phase != "unconfigured" || got.TeamNames != nil {
		t.Fatalf("expected unconfigured session, got %+v", got)
	}

	startSession(t, router)

	rec = doRequest(t, router, http.MethodPost, "/v1/session/rounds",
		`{"bidder":"A","contract":90,"suit":"♠️","score_made":95}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add round: status=%d body=%s", rec.Code, rec.Body.String())
	}
	added := decodeData[roundMutationDTO](t, rec)
	if added.Round.DeltaA != 90 || added.Round.DeltaB != 0 {
		t.Fatalf("unexpected deltas: %+v", added.Round)
	}
	if added.Round.Description != "Contrat de 90 en ♠️ réussi par Nous." {
		t.Fatalf("unexpected description: %q", added.Round.Description)
	}
	if !added.Round.Fresh || added.Round.BidderName != "Nous" {
		t.Fatalf("new round should be fresh and named: %+v", added.Round)
	}
	if added.Session.Totals.A != 90 || added.Session.Phase != "active" {
		t.Fatalf("unexpected session: %+v", added.Session)
	}

	clock.now = clock.now.Add(time.Second)
	rec = doRequest(t, router, http.MethodGet, "/v1/session", "")
	if got := decodeData[sessionDTO](t, rec); len(got.Rounds) != 1 || got.Rounds[0].Fresh {
		t.Fatalf("fresh marker should expire: %+v", got.Rounds)
	}

	path := "/v1/session/rounds/" + "101"
	rec = doRequest(t, router, http.MethodPut, path,
		`{"bidder":"B","contract":500,"suit":"TA","score_made":0,"checked_off":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit round: status=%d body=%s", rec.Code, rec.Body.String())
	}
	edited := decodeData[roundMutationDTO](t, rec)
	if edited.Round.ID != 101 || edited.Round.DeltaA != 1000 || edited.Round.MultiplierBadge != "C" {
		t.Fatalf("unexpected edited round: %+v", edited.Round)
	}
	if edited.Session.Phase != "won" || edited.Session.Winner != "A" || edited.Session.WinnerName != "Nous" {
		t.Fatalf("expected side A to win: %+v", edited.Session)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/session/rounds",
		`{"bidder":"A","contract":82,"suit":"♣️","score_made":90}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 once the game is won, got %d", rec.Code)
	}
	if reason, _ := decodeErrorReason(t, rec); reason != "gameOver" {
		t.Fatalf("unexpected reason: %s", reason)
	}

	rec = doRequest(t, router, http.MethodDelete, path, "")
	if got := decodeData[sessionDTO](t, rec); got.Phase != "active" || len(got.Rounds) != 0 || got.Totals.A != 0 {
		t.Fatalf("deleting the decisive round should reopen the game: %+v", got)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/session/new-game", "")
	if got := decodeData[sessionDTO](t, rec); got.TeamNames == nil || got.TeamNames.A != "Nous" {
		t.Fatalf("new game should keep team names: %+v", got)
	}

	rec = doRequest(t, router, http.MethodDelete, "/v1/session", "")
	if got := decodeData[sessionDTO](t, rec); got.Phase != "unconfigured" {
		t.Fatalf("end session should unconfigure: %+v", got)
	}
}

func TestHandler_AddRound_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		start   bool
		body    string
		status  int
		reason  string
		message string
	}{
		{
			name:   "not configured",
			body:   `{"bidder":"A","contract":90,"suit":"♠️","score_made":95}`,
			status: http.StatusConflict,
			reason: "sessionNotConfigured",
		},
		{
			name:    "missing score",
			start:   true,
			body:    `{"bidder":"A","contract":90,"suit":"♠️"}`,
			status:  http.StatusBadRequest,
			reason:  "invalidInput",
			message: missingScoreMessage,
		},
		{
			name:   "unknown field",
			start:  true,
			body:   `{"bidder":"A","contract":90,"suit":"♠️","score_made":95,"extra":1}`,
			status: http.StatusBadRequest,
			reason: "invalidInput",
		},
		{
			name:   "contract off the ladder",
			start:  true,
			body:   `{"bidder":"A","contract":95,"suit":"♠️","score_made":95}`,
			status: http.StatusBadRequest,
			reason: "invalidInput",
		},
		{
			name:   "capot scored partially",
			start:  true,
			body:   `{"bidder":"B","contract":250,"suit":"SA","score_made":120}`,
			status: http.StatusBadRequest,
			reason: "invalidInput",
		},
		{
			name:   "both multipliers",
			start:  true,
			body:   `{"bidder":"B","contract":100,"suit":"♥️","score_made":120,"checked_off":true,"overridden":true}`,
			status: http.StatusBadRequest,
			reason: "invalidInput",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newTestRouter(t)
			if tt.start {
				startSession(t, router)
			}

			rec := doRequest(t, router, http.MethodPost, "/v1/session/rounds", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d body=%s", tt.status, rec.Code, rec.Body.String())
			}
			reason, message := decodeErrorReason(t, rec)
			if reason != tt.reason {
				t.Fatalf("expected reason %s, got %s", tt.reason, reason)
			}
			if tt.message != "" && !strings.Contains(message, tt.message) {
				t.Fatalf("expected message to contain %q, got %q", tt.message, message)
			}
		})
	}
}

func TestHandler_RoundID(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	startSession(t, router)

	rec := doRequest(t, router, http.MethodDelete, "/v1/session/rounds/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodDelete, "/v1/session/rounds/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestHandler_StartSession_RequiresBothNames(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	for _, body := range []string{
		`{"team_names":{"a":"Nous"}}`,
		`{"team_names":{"a":"Nous","b":"   "}}`,
		`not json`,
	} {
		rec := doRequest(t, router, http.MethodPost, "/v1/session", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestHandler_Reference(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/v1/reference/contracts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	got := decodeData[referenceDTO](t, rec)
	if len(got.Contracts) != 11 || len(got.Suits) != 6 {
		t.Fatalf("unexpected reference data: %+v", got)
	}
	last := got.Contracts[len(got.Contracts)-1]
	if last.Value != 500 || last.Label != "Générale" || !last.AllTricks {
		t.Fatalf("unexpected top contract: %+v", last)
	}
}

func TestRecoverPanic(t *testing.T) {
	t.Parallel()

	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/session", nil).WithContext(context.Background()))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
