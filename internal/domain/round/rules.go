package round

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrUnknownVariant = errors.New("unknown scoring variant")

// Variant names a scoring strategy.
type Variant string

const (
	VariantFixedContract Variant = "fixed_contract"
	VariantEnteredPoints Variant = "entered_points"
)

// Outcome is the derived part of a round.
type Outcome struct {
	DeltaA      int
	DeltaB      int
	Description string
	Success     bool
}

// Rule turns a round input into per-side deltas and a description.
// Implementations must be pure.
type Rule interface {
	Variant() Variant
	Score(in Input, names TeamNames) Outcome
}

// RuleFor resolves a variant name to its rule. An empty name selects the fixed contract rule.
func RuleFor(variant Variant) (Rule, error) {
	switch Variant(strings.TrimSpace(strings.ToLower(string(variant)))) {
	case "", VariantFixedContract:
		return FixedContract{}, nil
	case VariantEnteredPoints:
		return EnteredPoints{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownVariant, "variant=%q", variant)
	}
}

// Multiplier is 4 for a surcoinche, 2 for a coinche and 1 otherwise.
func Multiplier(in Input) int {
	switch {
	case in.Overridden:
		return 4
	case in.CheckedOff:
		return 2
	default:
		return 1
	}
}

// Succeeded reports whether the bidder reached the contract. Equality counts as made.
func Succeeded(in Input) bool {
	return in.ScoreMade >= in.Contract
}

// FixedContract awards the contract value times the multiplier to a single side.
type FixedContract struct{}

func (FixedContract) Variant() Variant { return VariantFixedContract }

func (FixedContract) Score(in Input, names TeamNames) Outcome {
	success := Succeeded(in)
	base := in.Contract * Multiplier(in)

	winner := in.Bidder
	if !success {
		winner = in.Bidder.Other()
	}

	out := Outcome{
		Description: Describe(in, names, success),
		Success:     success,
	}
	if winner == SideA {
		out.DeltaA = base
	} else {
		out.DeltaB = base
	}
	return out
}

// EnteredPoints credits the points typed in for each side as-is.
// The contract only decides the wording.
type EnteredPoints struct{}

func (EnteredPoints) Variant() Variant { return VariantEnteredPoints }

func (EnteredPoints) Score(in Input, names TeamNames) Outcome {
	success := Succeeded(in)
	out := Outcome{
		Description: Describe(in, names, success),
		Success:     success,
	}
	if in.Bidder == SideB {
		out.DeltaB = in.ScoreMade
		out.DeltaA = in.OpponentScore
	} else {
		out.DeltaA = in.ScoreMade
		out.DeltaB = in.OpponentScore
	}
	return out
}

// Describe renders the French summary line of a round, e.g.
// "Contrat de 160 (Coinché) en ♥️ réussi par Eux.".
func Describe(in Input, names TeamNames, success bool) string {
	var b strings.Builder
	b.WriteString("Contrat de ")
	b.WriteString(ContractLabel(in.Contract))
	switch {
	case in.Overridden:
		b.WriteString(" (Surcoinché)")
	case in.CheckedOff:
		b.WriteString(" (Coinché)")
	}
	b.WriteString(" en ")
	b.WriteString(string(in.Suit))
	if success {
		b.WriteString(" réussi")
	} else {
		b.WriteString(" chuté")
	}
	b.WriteString(" par ")
	b.WriteString(names.Of(in.Bidder))
	b.WriteString(".")
	return b.String()
}

func ContractLabel(contract int) string {
	switch contract {
	case ContractCapot:
		return "Capot"
	case ContractGenerale:
		return "Générale"
	default:
		return strconv.Itoa(contract)
	}
}

// MultiplierBadge is the short marker shown next to a contract: "S", "C" or empty.
func MultiplierBadge(in Input) string {
	switch {
	case in.Overridden:
		return "S"
	case in.CheckedOff:
		return "C"
	default:
		return ""
	}
}

// Apply scores the input and returns the resulting round with the given id.
func Apply(rule Rule, id int64, in Input, names TeamNames) Round {
	if rule == nil {
		rule = FixedContract{}
	}
	out := rule.Score(in, names)
	return Round{
		ID:          id,
		Input:       in,
		DeltaA:      out.DeltaA,
		DeltaB:      out.DeltaB,
		Description: out.Description,
	}
}

func (v Variant) String() string {
	return string(v)
}

// ParseVariant is RuleFor without the rule, used by configuration.
func ParseVariant(raw string) (Variant, error) {
	rule, err := RuleFor(Variant(raw))
	if err != nil {
		return "", fmt.Errorf("parse scoring variant: %w", err)
	}
	return rule.Variant(), nil
}
