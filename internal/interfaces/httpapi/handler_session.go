package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/belote-scorekeeper/internal/usecase"
)

const missingScoreMessage = "Veuillez saisir les points réalisés."

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSession")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.sessionToDTO(ctx, h.sessionService.State(ctx)))
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartSession")
	defer span.End()

	var req startSessionRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.sessionService.StartSession(ctx, req.TeamNames.toDomain())
	if err != nil {
		h.logger.WarnContext(ctx, "start session failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	h.freshRounds.DeletePrefix(ctx, freshRoundKeyPrefix)

	writeSuccess(ctx, w, http.StatusCreated, h.sessionToDTO(ctx, state))
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EndSession")
	defer span.End()

	state := h.sessionService.EndSession(ctx)
	h.freshRounds.DeletePrefix(ctx, freshRoundKeyPrefix)

	writeSuccess(ctx, w, http.StatusOK, h.sessionToDTO(ctx, state))
}

func (h *Handler) NewGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.NewGame")
	defer span.End()

	state, err := h.sessionService.NewGame(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "new game failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	h.freshRounds.DeletePrefix(ctx, freshRoundKeyPrefix)

	writeSuccess(ctx, w, http.StatusOK, h.sessionToDTO(ctx, state))
}

func (h *Handler) AddRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddRound")
	defer span.End()

	req, err := h.decodeRoundRequest(ctx, r.Body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	added, state, err := h.sessionService.AddRound(ctx, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "add round failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	h.freshRounds.Set(ctx, freshRoundKey(added.ID), struct{}{})

	names := *state.TeamNames
	writeSuccess(ctx, w, http.StatusCreated, roundMutationDTO{
		Round:   h.roundToDTO(ctx, added, names),
		Session: h.sessionToDTO(ctx, state),
	})
}

func (h *Handler) EditRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EditRound")
	defer span.End()

	id, err := parseRoundID(r.PathValue("roundID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req, err := h.decodeRoundRequest(ctx, r.Body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, state, err := h.sessionService.EditRound(ctx, id, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "edit round failed", "round_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	names := *state.TeamNames
	writeSuccess(ctx, w, http.StatusOK, roundMutationDTO{
		Round:   h.roundToDTO(ctx, updated, names),
		Session: h.sessionToDTO(ctx, state),
	})
}

func (h *Handler) DeleteRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteRound")
	defer span.End()

	id, err := parseRoundID(r.PathValue("roundID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.sessionService.DeleteRound(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "delete round failed", "round_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.freshRounds.Delete(ctx, freshRoundKey(id))

	writeSuccess(ctx, w, http.StatusOK, h.sessionToDTO(ctx, state))
}

func (h *Handler) decodeRoundRequest(ctx context.Context, body io.Reader) (roundRequest, error) {
	var req roundRequest
	if err := decodeJSON(body, &req); err != nil {
		return roundRequest{}, err
	}
	if req.ScoreMade == nil {
		return roundRequest{}, fmt.Errorf("%w: %s", usecase.ErrInvalidInput, missingScoreMessage)
	}
	if err := h.validateRequest(ctx, req); err != nil {
		return roundRequest{}, err
	}
	return req, nil
}

func decodeJSON(body io.Reader, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
