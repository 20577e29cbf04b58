package cooking

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Matches a leading quantity: a mixed number ("1 1/2"), a simple fraction
// ("1/2"), or a whole/decimal number ("2", "2.5"), followed by the rest of
// the amount text.
var quantityPattern = regexp.MustCompile(`^\s*(\d+\s+\d+/\d+|\d+/\d+|\d+(?:\.\d+)?)(\s*.*)$`)

// ScaleAmount multiplies the leading numeric quantity of an amount string
// by the serving multiplier, rounding to the nearest half. Amounts with no
// leading quantity ("to taste", "a pinch") pass through unchanged. This is
// a display transform only.
func ScaleAmount(amount string, multiplier float64) string {
	m := quantityPattern.FindStringSubmatch(amount)
	if m == nil {
		return amount
	}

	value, ok := parseQuantity(m[1])
	if !ok {
		return amount
	}

	scaled := roundToHalf(value * multiplier)
	if scaled <= 0 {
		scaled = 0.5
	}

	return formatQuantity(scaled) + m[2]
}

func parseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)

	// Mixed number: "1 1/2"
	if parts := strings.Fields(s); len(parts) == 2 {
		whole, err1 := strconv.ParseFloat(parts[0], 64)
		frac, ok := parseFraction(parts[1])
		if err1 == nil && ok {
			return whole + frac, true
		}
		return 0, false
	}

	if frac, ok := parseFraction(s); ok {
		return frac, true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFraction(s string) (float64, bool) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return 0, false
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}

func roundToHalf(v float64) float64 {
	return math.Round(v*2) / 2
}

// formatQuantity renders halves the way a recipe card does: "1/2", "3",
// "2 1/2"
func formatQuantity(v float64) string {
	whole := math.Floor(v)
	half := v-whole >= 0.5

	switch {
	case whole == 0 && half:
		return "1/2"
	case half:
		return fmt.Sprintf("%d 1/2", int(whole))
	default:
		return strconv.Itoa(int(whole))
	}
}
