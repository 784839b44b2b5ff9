package httpapi

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/belote-scorekeeper/internal/domain/round"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/cache"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/logging"
	"github.com/riskibarqy/belote-scorekeeper/internal/usecase"
)

const (
	DefaultFreshRoundTTL = 600 * time.Millisecond
	freshRoundKeyPrefix  = "round:"
)

type Handler struct {
	sessionService *usecase.GameSessionService
	freshRounds    *cache.Store[struct{}]
	logger         *logging.Logger
	validator      *validator.Validate
}

// NewHandler wires the session endpoints. freshRounds holds the short-lived
// "just added" marker shown by views; pass nil to use the default TTL.
func NewHandler(
	sessionService *usecase.GameSessionService,
	freshRounds *cache.Store[struct{}],
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if freshRounds == nil {
		freshRounds = cache.NewStore[struct{}](DefaultFreshRoundTTL)
	}

	return &Handler{
		sessionService: sessionService,
		freshRounds:    freshRounds,
		logger:         logger,
		validator:      round.Validator(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type startSessionRequest struct {
	TeamNames teamNamesDTO `json:"team_names" validate:"required"`
}

type roundRequest struct {
	Bidder        string `json:"bidder" validate:"required,oneof=A B"`
	Contract      int    `json:"contract" validate:"required"`
	Suit          string `json:"suit" validate:"required"`
	ScoreMade     *int   `json:"score_made"`
	OpponentScore *int   `json:"opponent_score" validate:"omitempty,gte=0"`
	CheckedOff    bool   `json:"checked_off"`
	Overridden    bool   `json:"overridden"`
}

func (r roundRequest) toInput() round.Input {
	in := round.Input{
		Bidder:     round.Side(r.Bidder),
		Contract:   r.Contract,
		Suit:       round.Suit(r.Suit),
		CheckedOff: r.CheckedOff,
		Overridden: r.Overridden,
	}
	if r.ScoreMade != nil {
		in.ScoreMade = *r.ScoreMade
	}
	if r.OpponentScore != nil {
		in.OpponentScore = *r.OpponentScore
	}
	return in
}

type teamNamesDTO struct {
	A string `json:"a" validate:"required,max=60"`
	B string `json:"b" validate:"required,max=60"`
}

type totalsDTO struct {
	A int `json:"a"`
	B int `json:"b"`
}

type roundDTO struct {
	ID              int64  `json:"id"`
	Bidder          string `json:"bidder"`
	BidderName      string `json:"bidder_name"`
	Contract        int    `json:"contract"`
	ContractLabel   string `json:"contract_label"`
	Suit            string `json:"suit"`
	RedSuit         bool   `json:"red_suit"`
	ScoreMade       int    `json:"score_made"`
	OpponentScore   int    `json:"opponent_score"`
	CheckedOff      bool   `json:"checked_off"`
	Overridden      bool   `json:"overridden"`
	MultiplierBadge string `json:"multiplier_badge,omitempty"`
	DeltaA          int    `json:"delta_a"`
	DeltaB          int    `json:"delta_b"`
	Description     string `json:"description"`
	Fresh           bool   `json:"fresh"`
}

type sessionDTO struct {
	Phase        string        `json:"phase"`
	TeamNames    *teamNamesDTO `json:"team_names"`
	Totals       totalsDTO     `json:"totals"`
	Winner       string        `json:"winner,omitempty"`
	WinnerName   string        `json:"winner_name,omitempty"`
	WinThreshold int           `json:"win_threshold"`
	Variant      string        `json:"variant"`
	Rounds       []roundDTO    `json:"rounds"`
}

type roundMutationDTO struct {
	Round   roundDTO   `json:"round"`
	Session sessionDTO `json:"session"`
}

type contractOptionDTO struct {
	Value     int    `json:"value"`
	Label     string `json:"label"`
	AllTricks bool   `json:"all_tricks"`
}

type suitOptionDTO struct {
	Value string `json:"value"`
	Red   bool   `json:"red"`
}

type referenceDTO struct {
	Contracts []contractOptionDTO `json:"contracts"`
	Suits     []suitOptionDTO     `json:"suits"`
}

func (h *Handler) sessionToDTO(ctx context.Context, state usecase.GameState) sessionDTO {
	out := sessionDTO{
		Phase:        string(state.Phase),
		Totals:       totalsDTO{A: state.Totals.A, B: state.Totals.B},
		WinThreshold: state.WinThreshold,
		Variant:      string(state.Variant),
		Rounds:       make([]roundDTO, 0, len(state.Rounds)),
	}
	names := round.TeamNames{}
	if state.TeamNames != nil {
		names = *state.TeamNames
		out.TeamNames = &teamNamesDTO{A: names.A, B: names.B}
	}
	if state.HasWinner {
		out.Winner = string(state.Winner)
		out.WinnerName = state.WinnerName()
	}
	for _, r := range state.Rounds {
		out.Rounds = append(out.Rounds, h.roundToDTO(ctx, r, names))
	}
	return out
}

func (h *Handler) roundToDTO(ctx context.Context, r round.Round, names round.TeamNames) roundDTO {
	_, fresh := h.freshRounds.Get(ctx, freshRoundKey(r.ID))
	return roundDTO{
		ID:              r.ID,
		Bidder:          string(r.Bidder),
		BidderName:      names.Of(r.Bidder),
		Contract:        r.Contract,
		ContractLabel:   round.ContractLabel(r.Contract),
		Suit:            string(r.Suit),
		RedSuit:         r.Suit.Red(),
		ScoreMade:       r.ScoreMade,
		OpponentScore:   r.OpponentScore,
		CheckedOff:      r.CheckedOff,
		Overridden:      r.Overridden,
		MultiplierBadge: round.MultiplierBadge(r.Input),
		DeltaA:          r.DeltaA,
		DeltaB:          r.DeltaB,
		Description:     r.Description,
		Fresh:           fresh,
	}
}

func referenceData() referenceDTO {
	out := referenceDTO{
		Contracts: make([]contractOptionDTO, 0, len(round.Contracts)),
	}
	for _, c := range round.Contracts {
		out.Contracts = append(out.Contracts, contractOptionDTO{
			Value:     c,
			Label:     round.ContractLabel(c),
			AllTricks: round.IsAllTricks(c),
		})
	}
	for _, s := range []round.Suit{
		round.SuitSpades, round.SuitHearts, round.SuitDiamonds, round.SuitClubs, round.SuitNoTrump, round.SuitAllTrump,
	} {
		out.Suits = append(out.Suits, suitOptionDTO{Value: string(s), Red: s.Red()})
	}
	return out
}

func freshRoundKey(id int64) string {
	return freshRoundKeyPrefix + strconv.FormatInt(id, 10)
}

func parseRoundID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid round id %q", usecase.ErrInvalidInput, raw)
	}
	return id, nil
}

func (d teamNamesDTO) toDomain() round.TeamNames {
	return round.TeamNames{A: d.A, B: d.B}
}
