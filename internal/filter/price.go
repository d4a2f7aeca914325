package filter

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nao1215/pricewatch/internal/model"
)

// numericPrefix matches the leading number of a price string such as
// "49.99", "49.99 EUR" or "1e3". Anything after the number is ignored.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// ParsePrice interprets a loosely typed price value.
//
// Numbers are used as-is and strings are parsed up to the first character
// that cannot continue a number. A value that has no numeric prefix (an
// empty string, "n/a", a boolean) parses as zero. Zero always satisfies a
// non-negative ceiling, so such items are never rejected on price.
func ParsePrice(v model.Value) decimal.Decimal {
	s := strings.TrimSpace(v.String())
	m := numericPrefix.FindString(s)
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// HasNumericPrice reports whether v carries a parseable price. Items
// without one pass the price criterion as zero; callers use this to
// point them out.
func HasNumericPrice(v model.Value) bool {
	return numericPrefix.MatchString(strings.TrimSpace(v.String()))
}

// EffectivePrice returns the parsed price the filter compares against the
// ceiling: actual_price when present and non-empty, otherwise price,
// otherwise zero.
func EffectivePrice(it model.Item) decimal.Decimal {
	return ParsePrice(it.EffectivePrice())
}
