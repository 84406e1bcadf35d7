package format

import (
	"fmt"
	"strings"
	"sync"

	"wallet-core-go/internal/core"
	"wallet-core-go/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// NoLimit disables fraction-digit truncation; used for values the rounding
// policy has already brought to their final precision.
const NoLimit = -1

// Value is the argument of FormatValueAsDiff: either a fiat-denominated diff
// or a percent diff.
type Value interface {
	diffValue()
}

// CurrencyDiff is a change expressed in a fiat currency.
type CurrencyDiff struct {
	CurrencyValue models.CurrencyValue
}

// PercentDiff is a change expressed as a percentage.
type PercentDiff struct {
	Percent decimal.Decimal
}

func (CurrencyDiff) diffValue() {}
func (PercentDiff) diffValue()  {}

// NumberFormatter renders decimals as locale-aware display strings. Output is
// always floor-rounded so a displayed balance never overstates spendable
// funds. The per-locale formatter cache is an optimization only: output is
// identical whether or not the cache is warm.
type NumberFormatter struct {
	languageManager core.LanguageManager
	rounding        Rounding

	mu         sync.RWMutex
	formatters map[string]*localeFormatter
}

func NewNumberFormatter(languageManager core.LanguageManager) *NumberFormatter {
	return &NumberFormatter{
		languageManager: languageManager,
		formatters:      make(map[string]*localeFormatter),
	}
}

// Format renders value with the active locale's grouping and decimal symbols,
// truncated to maximumFractionDigits and padded to minimumFractionDigits.
// A nonzero value smaller than the smallest representable unit renders with a
// "< " marker instead of a misleading zero.
func (f *NumberFormatter) Format(value decimal.Decimal, minimumFractionDigits, maximumFractionDigits int, prefix, suffix string) string {
	formatter := f.formatter(resolveLocale(f.languageManager.CurrentLanguage()), minimumFractionDigits, maximumFractionDigits)

	if maximumFractionDigits >= 0 {
		mostLowValue := decimal.New(1, int32(-maximumFractionDigits))
		if value.IsPositive() && value.LessThan(mostLowValue) {
			return "< " + prefix + formatter.format(mostLowValue) + suffix
		}
	}

	return prefix + formatter.format(value) + suffix
}

// FormatCoinFull renders the exact magnitude at the coin's decimal precision,
// followed by the coin code.
func (f *NumberFormatter) FormatCoinFull(value decimal.Decimal, code string, coinDecimals int) string {
	rounded := f.rounding.RoundCoinFull(value, coinDecimals)
	return f.renderRounded(rounded, "") + " " + code
}

// FormatCoinShort abbreviates large magnitudes with suffix tiers, followed by
// the coin code.
func (f *NumberFormatter) FormatCoinShort(value decimal.Decimal, code string, coinDecimals int) string {
	rounded := f.rounding.RoundCoinShort(value, coinDecimals)
	return f.renderRounded(rounded, "") + " " + code
}

// FormatFiatFull renders the exact magnitude prefixed with the currency symbol.
func (f *NumberFormatter) FormatFiatFull(value decimal.Decimal, symbol string) string {
	rounded := f.rounding.RoundCurrencyFull(value)
	return f.renderRounded(rounded, symbol)
}

// FormatFiatShort abbreviates large magnitudes, prefixed with the currency
// symbol.
func (f *NumberFormatter) FormatFiatShort(value decimal.Decimal, symbol string, currencyDecimals int) string {
	rounded := f.rounding.RoundCurrencyShort(value, currencyDecimals)
	return f.renderRounded(rounded, symbol)
}

// FormatNumberShort abbreviates a bare number with suffix tiers.
func (f *NumberFormatter) FormatNumberShort(value decimal.Decimal, maximumFractionDigits int) string {
	rounded := f.rounding.RoundShort(value, maximumFractionDigits)
	return f.renderRounded(rounded, "")
}

// FormatValueAsDiff renders a diff value. Percent diffs always carry an
// explicit sign and exactly two fraction digits.
func (f *NumberFormatter) FormatValueAsDiff(value Value) string {
	switch v := value.(type) {
	case CurrencyDiff:
		cv := v.CurrencyValue
		return f.FormatFiatShort(cv.Value, cv.Currency.Symbol, cv.Currency.Decimals)
	case PercentDiff:
		return f.Format(v.Percent.Abs(), 2, 2, sign(v.Percent), "%")
	default:
		panic(fmt.Sprintf("unknown diff value %T", value))
	}
}

// renderRounded matches exhaustively over the rounding result.
func (f *NumberFormatter) renderRounded(rounded RoundedDecimal, prefix string) string {
	switch r := rounded.(type) {
	case Large:
		return f.Format(r.Value, 0, NoLimit, prefix, "") + r.Suffix.Label()
	case LessThan:
		return "< " + f.Format(r.Value, 0, NoLimit, prefix, "")
	case Regular:
		return f.Format(r.Value, 0, NoLimit, prefix, "")
	default:
		panic(fmt.Sprintf("unknown rounded value %T", rounded))
	}
}

func (f *NumberFormatter) formatter(locale language.Tag, minimumFractionDigits, maximumFractionDigits int) *localeFormatter {
	formatterId := fmt.Sprintf("%s-%d-%d", locale, minimumFractionDigits, maximumFractionDigits)

	f.mu.RLock()
	formatter := f.formatters[formatterId]
	f.mu.RUnlock()
	if formatter != nil {
		return formatter
	}

	f.mu.Lock()
	if f.formatters[formatterId] == nil {
		f.formatters[formatterId] = &localeFormatter{
			symbols: symbolsFor(locale),
			minFrac: minimumFractionDigits,
			maxFrac: maximumFractionDigits,
		}
	}
	formatter = f.formatters[formatterId]
	f.mu.Unlock()

	if formatter == nil {
		panic("no formatter available for " + formatterId)
	}
	return formatter
}

func sign(value decimal.Decimal) string {
	switch value.Sign() {
	case 1:
		return "+"
	case -1:
		return "-"
	default:
		return ""
	}
}

// localeFormatter renders one (locale, precision) combination.
type localeFormatter struct {
	symbols localeSymbols
	minFrac int
	maxFrac int
}

func (lf *localeFormatter) format(v decimal.Decimal) string {
	if lf.maxFrac >= 0 {
		v = v.RoundDown(int32(lf.maxFrac))
	}

	s := v.String()
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	fracPart = strings.TrimRight(fracPart, "0")
	for len(fracPart) < lf.minFrac {
		fracPart += "0"
	}

	out := groupDigits(intPart, lf.symbols.group)
	if fracPart != "" {
		out += lf.symbols.decimal + fracPart
	}
	if negative {
		out = "-" + out
	}
	return out
}

func groupDigits(digits, separator string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(separator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
