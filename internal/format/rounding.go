package format

import (
	"github.com/shopspring/decimal"
)

// Suffix is the abbreviation tier attached to a shortened value.
type Suffix int

const (
	SuffixBlank Suffix = iota
	SuffixThousand
	SuffixMillion
	SuffixBillion
	SuffixTrillion
)

// Label returns the display label appended after a shortened number.
func (s Suffix) Label() string {
	switch s {
	case SuffixThousand:
		return "K"
	case SuffixMillion:
		return "M"
	case SuffixBillion:
		return "B"
	case SuffixTrillion:
		return "T"
	default:
		return ""
	}
}

// RoundedDecimal is the closed result type of the rounding policy. Exactly
// three variants exist: Regular, Large and LessThan. Formatting logic matches
// exhaustively over it.
type RoundedDecimal interface {
	RoundedValue() decimal.Decimal
	rounded()
}

// Regular is an exact-magnitude value at the requested precision.
type Regular struct {
	Value decimal.Decimal
}

// Large is a value scaled down by a suffix tier (10^3/10^6/10^9/10^12).
type Large struct {
	Value  decimal.Decimal
	Suffix Suffix
}

// LessThan signals the true value is nonzero but smaller than the smallest
// representable unit at the requested precision; Value holds that unit.
type LessThan struct {
	Value decimal.Decimal
}

func (r Regular) RoundedValue() decimal.Decimal  { return r.Value }
func (r Large) RoundedValue() decimal.Decimal    { return r.Value }
func (r LessThan) RoundedValue() decimal.Decimal { return r.Value }

func (Regular) rounded()  {}
func (Large) rounded()    {}
func (LessThan) rounded() {}

var (
	thousand = decimal.New(1, 3)
	million  = decimal.New(1, 6)
	billion  = decimal.New(1, 9)
	trillion = decimal.New(1, 12)
)

// Rounding applies the wallet's display rounding policy. All rounding is
// floor (truncation toward zero) so displayed balances never overstate
// spendable funds.
type Rounding struct{}

// RoundCoinFull keeps the exact magnitude at the coin's decimal precision.
func (Rounding) RoundCoinFull(value decimal.Decimal, coinDecimals int) RoundedDecimal {
	return roundFull(value, coinDecimals)
}

// RoundCoinShort abbreviates magnitudes >= 1000 with a suffix tier; smaller
// values keep coin precision capped at four fraction digits.
func (Rounding) RoundCoinShort(value decimal.Decimal, coinDecimals int) RoundedDecimal {
	return roundShort(value, min(coinDecimals, 4))
}

// RoundCurrencyFull keeps the exact magnitude at standard fiat precision.
func (Rounding) RoundCurrencyFull(value decimal.Decimal) RoundedDecimal {
	return roundFull(value, 2)
}

// RoundCurrencyShort abbreviates magnitudes >= 1000; smaller values keep the
// currency's own display precision.
func (Rounding) RoundCurrencyShort(value decimal.Decimal, currencyDecimals int) RoundedDecimal {
	return roundShort(value, currencyDecimals)
}

// RoundShort is the generic short-form policy.
func (Rounding) RoundShort(value decimal.Decimal, maxFractionDigits int) RoundedDecimal {
	return roundShort(value, maxFractionDigits)
}

func roundFull(value decimal.Decimal, decimals int) RoundedDecimal {
	unit := decimal.New(1, int32(-decimals))
	if value.IsPositive() && value.LessThan(unit) {
		return LessThan{Value: unit}
	}
	return Regular{Value: value.RoundDown(int32(decimals))}
}

func roundShort(value decimal.Decimal, maxFractionDigits int) RoundedDecimal {
	unit := decimal.New(1, int32(-maxFractionDigits))
	abs := value.Abs()

	if value.IsPositive() && abs.LessThan(unit) {
		return LessThan{Value: unit}
	}

	scaled, suffix := shorten(value)
	if suffix == SuffixBlank {
		return Regular{Value: value.RoundDown(int32(maxFractionDigits))}
	}

	return Large{
		Value:  scaled.RoundDown(int32(shortFractionDigits(scaled))),
		Suffix: suffix,
	}
}

// shorten picks the LARGEST tier such that the scaled value is >= 1.
func shorten(value decimal.Decimal) (decimal.Decimal, Suffix) {
	abs := value.Abs()
	switch {
	case abs.GreaterThanOrEqual(trillion):
		return value.Div(trillion), SuffixTrillion
	case abs.GreaterThanOrEqual(billion):
		return value.Div(billion), SuffixBillion
	case abs.GreaterThanOrEqual(million):
		return value.Div(million), SuffixMillion
	case abs.GreaterThanOrEqual(thousand):
		return value.Div(thousand), SuffixThousand
	default:
		return value, SuffixBlank
	}
}

// shortFractionDigits keeps roughly three significant digits on shortened
// values: 999 -> 0 places, 99.9 -> 1, 9.99 -> 2.
func shortFractionDigits(scaled decimal.Decimal) int {
	abs := scaled.Abs()
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(100)):
		return 0
	case abs.GreaterThanOrEqual(decimal.NewFromInt(10)):
		return 1
	default:
		return 2
	}
}
