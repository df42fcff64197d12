package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// MaxDecimals is the largest decimals value any supported token uses.
const MaxDecimals = 18

// ErrInvalidAmount is returned when an amount string is not a well-formed
// non-negative decimal numeral for the token's decimals.
var ErrInvalidAmount = errors.New("invalid token amount")

// ToBaseUnits converts a human-readable decimal amount ("12.5") into the
// token's base-unit integer representation. All arithmetic is integral, so
// the conversion is exact for any input with at most `decimals` fractional
// digits. Inputs with more fractional digits than the token supports are
// rejected rather than silently rounded.
func ToBaseUnits(human string, decimals int) (*big.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("%w: decimals %d out of range", ErrInvalidAmount, decimals)
	}

	s := strings.TrimSpace(human)
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart = s[:i]
		fracPart = s[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, human)
		}
	}

	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, human)
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, human)
	}
	if len(fracPart) > decimals {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, human, decimals)
	}

	// intPart + fracPart zero-padded to decimals is the base-unit numeral.
	digits := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return big.NewInt(0), nil
	}

	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, human)
	}
	return v, nil
}

// ToHumanUnits renders a base-unit amount as a display string with thousands
// grouping, at least two fractional digits (where the token has them) and at
// most `decimals`.
func ToHumanUnits(v *big.Int, decimals int) string {
	if v == nil {
		v = big.NewInt(0)
	}
	if decimals < 0 {
		decimals = 0
	}

	s := new(big.Int).Abs(v).String()
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	intPart := s[:len(s)-decimals]
	fracPart := s[len(s)-decimals:]

	minFrac := 2
	if decimals < minFrac {
		minFrac = decimals
	}
	fracPart = strings.TrimRight(fracPart, "0")
	for len(fracPart) < minFrac {
		fracPart += "0"
	}

	out := groupThousands(intPart)
	if v.Sign() < 0 {
		out = "-" + out
	}
	if fracPart != "" {
		out += "." + fracPart
	}
	return out
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
