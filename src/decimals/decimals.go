package decimals

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"assetledger/src/apperrors"
)

// Column bounds of numeric(19,8). Enforced here so every storage backend
// rejects the same inputs.
const (
	MaxPrecision = 19
	Scale        = 8
)

// Division is computed at this precision before the final half-even rounding
// to Scale, so repeated applies reproduce the same digits.
const divGuardPrecision = 24

// ParseAmount parses a non-negative decimal string under the numeric(19,8)
// bounds and canonicalizes it to scale 8. Precision and scale violations are
// reported as distinct validation messages, matching the column definition.
func ParseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, &apperrors.ValidationError{
			Message: fmt.Sprintf("[%s] cannot be empty", field),
			Action:  "Please review submitted data",
			Fields:  []string{field},
		}
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &apperrors.ValidationError{
			Message: fmt.Sprintf("[%s] is not a valid number", field),
			Action:  "Please review submitted data",
			Fields:  []string{field},
		}
	}
	if d.IsNegative() {
		return decimal.Zero, &apperrors.ValidationError{
			Message: fmt.Sprintf("[%s] cannot be negative", field),
			Action:  "Please review submitted data",
			Fields:  []string{field},
		}
	}

	intDigits, fracDigits := digitCounts(value)
	if intDigits+fracDigits > MaxPrecision {
		return decimal.Zero, &apperrors.ValidationError{
			Message: fmt.Sprintf("[%s] exceeds the supported amount", field),
			Action:  "Please review submitted data",
			Fields:  []string{field},
		}
	}
	if fracDigits > Scale {
		return decimal.Zero, &apperrors.ValidationError{
			Message: fmt.Sprintf("[%s] exceeds the supported fractional amount", field),
			Action:  "Please review submitted data",
			Fields:  []string{field},
		}
	}

	return Canonical(d), nil
}

// Canonical rebases a value to the persisted scale-8 representation, using
// the same half-even rule as division so repeated applies reproduce the same
// digits on every backend.
func Canonical(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Scale)
}

// DivRoundHalfEven divides n by d and rounds the quotient half-even to
// 8 fractional digits. Callers must handle d == 0 themselves.
func DivRoundHalfEven(n, d decimal.Decimal) decimal.Decimal {
	return n.DivRound(d, divGuardPrecision).RoundBank(Scale)
}

// digitCounts mirrors the column check: digits on each side of the point,
// sign and leading characters excluded.
func digitCounts(value string) (intDigits, fracDigits int) {
	value = strings.TrimPrefix(value, "+")
	value = strings.TrimPrefix(value, "-")
	parts := strings.SplitN(value, ".", 2)
	intDigits = len(parts[0])
	if len(parts) == 2 {
		fracDigits = len(parts[1])
	}
	return intDigits, fracDigits
}
