package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

const rule = "─────────────────────────────────────────────────────────────────────────────"

// printJSON writes v as indented JSON to stdout
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatAmount formats cents with a +/- sign
func formatAmount(cents int64) string {
	if cents >= 0 {
		return "+" + formatCents(cents)
	}
	return formatCents(cents)
}

// formatCents formats cents as dollars with thousands separators (e.g. -123456 -> "-$1,234.56")
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, addThousandsSeparator(cents/100), cents%100)
}

// formatPercent formats a fraction as a percentage with one decimal
func formatPercent(frac float64) string {
	return strconv.FormatFloat(frac*100, 'f', 1, 64) + "%"
}

// addThousandsSeparator adds commas to a number (e.g., 1234567 -> "1,234,567")
func addThousandsSeparator(n int64) string {
	str := strconv.FormatInt(n, 10)
	if len(str) <= 3 {
		return str
	}

	// Insert commas from right to left
	var result []byte
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}
