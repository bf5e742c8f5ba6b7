// Package money provides an exact fixed-point monetary amount.
//
// Amounts are stored as an int64 count of minor units (cents), so balance
// arithmetic is exact integer arithmetic. Parsing, formatting and database
// mapping go through shopspring/decimal.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places an amount carries.
const Scale = 2

// Money is an exact monetary amount in minor units.
type Money struct {
	units int64
}

// Zero is the zero amount.
var Zero = Money{}

// FromUnits builds a Money from a count of minor units.
func FromUnits(units int64) Money {
	return Money{units: units}
}

// FromDecimal converts a decimal into Money. It fails if the value carries
// more precision than Scale allows.
func FromDecimal(d decimal.Decimal) (Money, error) {
	scaled := d.Shift(Scale)
	if !scaled.IsInteger() {
		return Zero, fmt.Errorf("amount %s has more than %d decimal places", d.String(), Scale)
	}
	return Money{units: scaled.IntPart()}, nil
}

// Parse parses a decimal string such as "1500.00" into Money.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// Units returns the amount in minor units.
func (m Money) Units() int64 { return m.units }

// Decimal returns the amount as a decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.units, -Scale)
}

// String formats the amount with exactly Scale decimal places.
func (m Money) String() string {
	return m.Decimal().StringFixed(Scale)
}

// Add returns m + n.
func (m Money) Add(n Money) Money { return Money{units: m.units + n.units} }

// Sub returns m - n.
func (m Money) Sub(n Money) Money { return Money{units: m.units - n.units} }

// Neg returns -m.
func (m Money) Neg() Money { return Money{units: -m.units} }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.units > 0 }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.units < 0 }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.units == 0 }

// LessThan reports whether m < n.
func (m Money) LessThan(n Money) bool { return m.units < n.units }

// Equal reports whether m == n.
func (m Money) Equal(n Money) bool { return m.units == n.units }

// MarshalJSON encodes the amount as a JSON string, e.g. "1500.00".
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both a JSON string and a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer so Money maps onto a NUMERIC column.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner for NUMERIC columns.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Zero
		return nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case int64:
		*m = FromUnits(v * 100)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into money.Money", src)
	}
}
