package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit price to integer cents, rounding half away from zero.
func ToMinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(hundred).Round(0).IntPart()
}

// DiscountAmount is round(total * pct / 100), computed once on the aggregate.
func DiscountAmount(totalMinor int64, pct float64) int64 {
	return decimal.NewFromInt(totalMinor).
		Mul(decimal.NewFromFloat(pct)).
		Div(hundred).
		Round(0).
		IntPart()
}

func FromMinorUnits(amount int64) float64 {
	return decimal.New(amount, -2).InexactFloat64()
}
