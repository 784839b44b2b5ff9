package round

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidInput     = errors.New("invalid round input")
	ErrAllTricksPartial = errors.Wrap(ErrInvalidInput, "all-tricks contract scored partially")
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the round rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterStructValidation(inputStructLevel, Input{})
		validate = v
	})
	return validate
}

func inputStructLevel(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(Input)
	if !ok {
		return
	}
	if IsAllTricks(in.Contract) && in.ScoreMade != 0 && in.ScoreMade != in.Contract {
		sl.ReportError(in.ScoreMade, "ScoreMade", "scoreMade", "alltricks", "")
	}
}

// ValidateInput checks the constraints a round input must satisfy before scoring.
// Scoring rules themselves never validate.
func ValidateInput(in Input) error {
	err := Validator().Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "alltricks" {
				return errors.Wrapf(ErrAllTricksPartial, "contract=%d score=%d", in.Contract, in.ScoreMade)
			}
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
