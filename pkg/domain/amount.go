package domain

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"

	dErrors "payout/pkg/domain-errors"
)

// BasisPoints is the denominator for deviation tolerances.
const BasisPoints = 10_000

// Amount is a non-negative quantity of the pooled asset in its smallest unit.
// Values are immutable; arithmetic returns new Amounts. The zero value is 0.
type Amount struct {
	v *big.Int
}

// NewAmount builds an Amount from a uint64.
func NewAmount(n uint64) Amount {
	return Amount{v: new(big.Int).SetUint64(n)}
}

// ParseAmount constructs an Amount from a base-10 string.
//
// Errors: returns CodeInvalidInput for empty, non-numeric or negative input.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, dErrors.New(dErrors.CodeInvalidInput, "amount cannot be empty")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, dErrors.New(dErrors.CodeInvalidInput, "invalid amount")
	}
	if v.Sign() < 0 {
		return Amount{}, dErrors.New(dErrors.CodeInvalidInput, "amount cannot be negative")
	}
	return Amount{v: v}, nil
}

// MustParseAmount is ParseAmount for constants and tests. It panics on error.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) int() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// IsZero reports whether a is 0.
func (a Amount) IsZero() bool {
	return a.v == nil || a.v.Sign() == 0
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.int().Cmp(b.int())
}

// Equal reports whether a and b are the same quantity.
func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

// Add returns a+b.
func (a Amount) Add(b Amount) Amount {
	return Amount{v: new(big.Int).Add(a.int(), b.int())}
}

// Sub returns a-b. ok is false when b exceeds a, in which case a is returned.
func (a Amount) Sub(b Amount) (diff Amount, ok bool) {
	if a.Cmp(b) < 0 {
		return a, false
	}
	return Amount{v: new(big.Int).Sub(a.int(), b.int())}, true
}

// WithinDeviation reports whether b differs from a by at most bps basis points
// of a. A zero tolerance requires equality.
func (a Amount) WithinDeviation(b Amount, bps uint64) bool {
	if bps == 0 {
		return a.Equal(b)
	}
	diff := new(big.Int).Sub(a.int(), b.int())
	diff.Abs(diff)
	diff.Mul(diff, big.NewInt(BasisPoints))
	limit := new(big.Int).Mul(a.int(), new(big.Int).SetUint64(bps))
	return diff.Cmp(limit) <= 0
}

// BigInt returns a copy of the underlying integer.
func (a Amount) BigInt() *big.Int {
	return new(big.Int).Set(a.int())
}

func (a Amount) String() string {
	return a.int().String()
}

// MarshalText implements encoding.TextMarshaler. JSON carries amounts as
// strings so values above 2^53 survive.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer; amounts are stored as NUMERIC.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner for NUMERIC and text columns.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("scan amount: negative value %d", v)
		}
		*a = NewAmount(uint64(v))
		return nil
	default:
		return fmt.Errorf("scan amount: unsupported type %T", src)
	}
}
