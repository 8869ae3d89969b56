package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Weight is a fixed-point mass in tonnes with 3 decimal places (scale = 1e3).
//
// The smallest representable step is 0.001 t (one kilogram). Values are stored
// as NUMERIC(14,3) and travel as pgtype.Numeric, so balances never pass
// through binary floating point.
type Weight int64

const WeightScale int64 = 1_000

// WeightDigits is the number of fractional digits in a Weight.
const WeightDigits = 3

// MaxWeightTonnes is the largest whole part a NUMERIC(14,3) column holds.
const MaxWeightTonnes int64 = 99_999_999_999

func NewWeightFromInt64Scaled(v int64) Weight { return Weight(v) }

// Tonnes builds a Weight from whole tonnes.
func Tonnes(t int64) Weight { return Weight(t * WeightScale) }

func (w Weight) Int64Scaled() int64 { return int64(w) }

func (w Weight) IsZero() bool { return w == 0 }

func (w Weight) IsPositive() bool { return w > 0 }

func (w Weight) IsNegative() bool { return w < 0 }

func (w Weight) Neg() Weight { return -w }

func (w Weight) Abs() Weight {
	if w < 0 {
		return -w
	}
	return w
}

// String returns a decimal string with exactly 3 fractional digits.
func (w Weight) String() string {
	v := int64(w)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%03d", sign, v/WeightScale, v%WeightScale)
}

// MarshalJSON encodes Weight as a JSON number with 3 fractional digits.
func (w Weight) MarshalJSON() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalJSON accepts either a JSON number or string.
func (w *Weight) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*w = 0
		return nil
	}

	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	parsed, err := ParseWeight(string(data))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// ParseWeight parses a plain decimal string ("12", "-0.5", "7.125").
// A comma is accepted as the decimal separator. More than 3 significant
// fractional digits is an error rather than a silent rounding.
func ParseWeight(s string) (Weight, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("empty weight")
	}
	if strings.ContainsAny(s, "eE") {
		return 0, fmt.Errorf("parse weight %q: exponent form is not supported", s)
	}

	sign := int64(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	intStr, fracStr, _ := strings.Cut(s, ".")
	if !isDigits(intStr) || !isDigits(fracStr) || intStr+fracStr == "" {
		return 0, fmt.Errorf("parse weight %q: invalid number", s)
	}
	if intStr == "" {
		intStr = "0"
	}
	intPart, err := strconv.ParseInt(intStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse weight integer part: %w", err)
	}
	if intPart > MaxWeightTonnes {
		return 0, fmt.Errorf("weight %q exceeds %d t", s, MaxWeightTonnes)
	}

	fracStr = strings.TrimRight(fracStr, "0")
	if len(fracStr) > WeightDigits {
		return 0, fmt.Errorf("weight %q has more than %d fractional digits", s, WeightDigits)
	}
	for len(fracStr) < WeightDigits {
		fracStr += "0"
	}
	frac, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse weight fractional part: %w", err)
	}

	return Weight(sign * (intPart*WeightScale + frac)), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MustWeight parses s and panics on error. For tests and constants.
func MustWeight(s string) Weight {
	w, err := ParseWeight(s)
	if err != nil {
		panic(err)
	}
	return w
}

// Float64 is for display-only aggregates (charts). Never feed it back into arithmetic.
func (w Weight) Float64() float64 { return float64(w) / float64(WeightScale) }

// ScanNumeric implements pgtype.NumericScanner.
func (w *Weight) ScanNumeric(n pgtype.Numeric) error {
	if !n.Valid {
		*w = 0
		return nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return fmt.Errorf("cannot scan non-finite numeric into Weight")
	}

	v := new(big.Int).Set(n.Int)
	exp := n.Exp + WeightDigits
	ten := big.NewInt(10)
	switch {
	case exp > 0:
		v.Mul(v, new(big.Int).Exp(ten, big.NewInt(int64(exp)), nil))
	case exp < 0:
		// NUMERIC(14,3) columns never carry more digits; SUM/AVG results are rounded half away from zero.
		div := new(big.Int).Exp(ten, big.NewInt(int64(-exp)), nil)
		q, r := new(big.Int).QuoRem(v, div, new(big.Int))
		if new(big.Int).Mul(new(big.Int).Abs(r), big.NewInt(2)).Cmp(div) >= 0 {
			if v.Sign() < 0 {
				q.Sub(q, big.NewInt(1))
			} else {
				q.Add(q, big.NewInt(1))
			}
		}
		v = q
	}
	if !v.IsInt64() {
		return fmt.Errorf("numeric value out of Weight range")
	}
	*w = Weight(v.Int64())
	return nil
}

// NumericValue implements pgtype.NumericValuer.
func (w Weight) NumericValue() (pgtype.Numeric, error) {
	return pgtype.Numeric{Int: big.NewInt(int64(w)), Exp: -WeightDigits, Valid: true}, nil
}
