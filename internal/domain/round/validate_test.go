package round

import (
	"errors"
	"testing"
)

func TestValidateInput(t *testing.T) {
	t.Parallel()

	valid := Input{Bidder: SideA, Contract: 120, Suit: SuitHearts, ScoreMade: 130}

	tests := []struct {
		name      string
		mutate    func(*Input)
		targetErr error
	}{
		{name: "valid input", mutate: func(*Input) {}},
		{name: "unknown contract", mutate: func(in *Input) { in.Contract = 95 }, targetErr: ErrInvalidInput},
		{name: "unknown bidder", mutate: func(in *Input) { in.Bidder = "C" }, targetErr: ErrInvalidInput},
		{name: "unknown suit", mutate: func(in *Input) { in.Suit = "♥" }, targetErr: ErrInvalidInput},
		{name: "negative score", mutate: func(in *Input) { in.ScoreMade = -1 }, targetErr: ErrInvalidInput},
		{
			name: "coinche and surcoinche together",
			mutate: func(in *Input) {
				in.CheckedOff = true
				in.Overridden = true
			},
			targetErr: ErrInvalidInput,
		},
		{
			name: "capot partially scored",
			mutate: func(in *Input) {
				in.Contract = ContractCapot
				in.ScoreMade = 160
			},
			targetErr: ErrAllTricksPartial,
		},
		{
			name: "generale taken",
			mutate: func(in *Input) {
				in.Contract = ContractGenerale
				in.ScoreMade = ContractGenerale
			},
		},
		{
			name: "capot lost",
			mutate: func(in *Input) {
				in.Contract = ContractCapot
				in.ScoreMade = 0
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			in := valid
			tc.mutate(&in)
			err := ValidateInput(in)
			if tc.targetErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected error %v, got %v", tc.targetErr, err)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected error to be marked invalid input, got %v", err)
			}
		})
	}
}
