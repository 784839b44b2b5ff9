package record

import (
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/belote-scorekeeper/internal/domain/round"
)

// Older payloads named the sides after the first team ("Nous") and the second ("Eux")
// and carried view-only fields such as animationClass or holder, which are dropped here.
var legacySides = map[string]round.Side{
	"a":    round.SideA,
	"b":    round.SideB,
	"nous": round.SideA,
	"eux":  round.SideB,
}

func lenientTeamNames(payload []byte) (*round.TeamNames, error) {
	var raw map[string]any
	if err := sonic.ConfigStd.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "decode team names: %v", err)
	}

	a := firstString(raw, "A", "a", "nous", "Nous")
	b := firstString(raw, "B", "b", "eux", "Eux")
	if a == "" || b == "" {
		return nil, errors.Wrap(ErrMalformed, "team names are incomplete")
	}
	return &round.TeamNames{A: a, B: b}, nil
}

func lenientRounds(payload []byte) ([]round.Round, error) {
	var raw []any
	if err := sonic.ConfigStd.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "decode rounds: %v", err)
	}

	rounds := make([]round.Round, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		r, ok := lenientRound(obj)
		if !ok {
			continue
		}
		rounds = append(rounds, r)
	}
	return rounds, nil
}

func lenientRound(obj map[string]any) (round.Round, bool) {
	id, ok := asInt64(obj["id"])
	if !ok || id == 0 {
		return round.Round{}, false
	}
	bidderRaw, _ := obj["bidder"].(string)
	side, ok := legacySides[strings.ToLower(strings.TrimSpace(bidderRaw))]
	if !ok {
		return round.Round{}, false
	}
	contract, ok := asInt64(obj["contract"])
	if !ok || contract == 0 {
		return round.Round{}, false
	}

	suit, _ := obj["suit"].(string)
	scoreMade, _ := asInt64(obj["scoreMade"])
	opponentScore, _ := asInt64(obj["opponentScore"])
	checkedOff, _ := obj["checkedOff"].(bool)
	overridden, _ := obj["overridden"].(bool)
	deltaA, _ := firstInt(obj, "deltaA", "nous")
	deltaB, _ := firstInt(obj, "deltaB", "eux")

	return round.Round{
		ID: id,
		Input: round.Input{
			Bidder:        side,
			Contract:      int(contract),
			Suit:          round.Suit(suit),
			ScoreMade:     int(scoreMade),
			OpponentScore: int(opponentScore),
			CheckedOff:    checkedOff,
			Overridden:    overridden,
		},
		DeltaA:      int(deltaA),
		DeltaB:      int(deltaB),
		Description: firstString(obj, "description", "details"),
	}, true
}

func firstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstInt(obj map[string]any, keys ...string) (int64, bool) {
	for _, key := range keys {
		if v, ok := asInt64(obj[key]); ok {
			return v, true
		}
	}
	return 0, false
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
