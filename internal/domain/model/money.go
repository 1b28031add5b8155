package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// Money is an amount in minor units (cents).
type Money int64

// MoneyFromFloat converts a decimal amount into cents, rounding half away from zero.
func MoneyFromFloat(v float64) Money {
	return Money(math.Round(v * 100))
}

// Float returns the decimal representation of the amount.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// Times multiplies a unit price by quantity.
func (m Money) Times(quantity int) Money {
	return m * Money(quantity)
}

func (m Money) String() string {
	return strconv.FormatFloat(m.Float(), 'f', 2, 64)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = MoneyFromFloat(v)
	return nil
}
