package models

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
)

// Amount is a fixed-point money value backed by shopspring/decimal.
// It always serializes with exactly two fractional digits ("19.00", not "19")
// and is stored as decimal(10,2).
type Amount struct {
	decimal.Decimal
}

func NewAmount(value string) Amount {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}
	}
	return Amount{d.Round(2)}
}

// MulInt multiplies by a quantity and rounds to 2 decimal places.
func (a Amount) MulInt(n int) Amount {
	return Amount{a.Decimal.Mul(decimal.NewFromInt(int64(n))).Round(2)}
}

func (a Amount) Add(b Amount) Amount {
	return Amount{a.Decimal.Add(b.Decimal)}
}

func (a Amount) Round2() Amount {
	return Amount{a.Decimal.Round(2)}
}

func (a Amount) Equal(b Amount) bool {
	return a.Decimal.Equal(b.Decimal)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.StringFixed(2) + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

func (a Amount) Value() (driver.Value, error) {
	return a.StringFixed(2), nil
}

// Scan is inherited from decimal.Decimal, which accepts the numeric types
// every supported driver hands back.

func (Amount) GormDataType() string {
	return "decimal(10,2)"
}
