package document

import (
	"regexp"
	"strconv"
	"strings"
)

// currencySymbols are single-rune currency markers checked before codes.
var currencySymbols = []string{"$", "€", "£", "¥", "₹"}

// currencyCodes are ISO-like codes accepted as currency markers.
var currencyCodes = []string{"USD", "EUR", "GBP", "JPY", "SAR", "AED", "CHF", "CAD", "AUD"}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}$`),              // D/M/Y
	regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`),                        // Y-M-D
	regexp.MustCompile(`(?i)^\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?(\s+\d{2,4})?$`), // D Mon
	regexp.MustCompile(`(?i)^q[1-4]\s+\d{4}$`),                           // Q[1-4] YYYY
}

var thousandsRe = regexp.MustCompile(`,(\d{3})`)

// Classify maps a raw cell value to its semantic type. It is total and
// deterministic: the first matching rule wins.
func Classify(raw string) DataType {
	s := strings.TrimSpace(raw)
	if s == "" {
		return TypeEmpty
	}
	if strings.Contains(s, "%") {
		return TypePercentage
	}
	if hasCurrencyMarker(s) {
		return TypeCurrency
	}
	for _, re := range datePatterns {
		if re.MatchString(s) {
			return TypeDate
		}
	}
	if _, ok := parseNumeric(s); ok {
		return TypeNumber
	}
	return TypeText
}

// Unit returns the measurement unit implied by a value of the given
// type: "%" for percentages, the detected symbol or code for currency.
func Unit(raw string, dt DataType) string {
	switch dt {
	case TypePercentage:
		return "%"
	case TypeCurrency:
		for _, sym := range currencySymbols {
			if strings.Contains(raw, sym) {
				return sym
			}
		}
		upper := strings.ToUpper(raw)
		for _, code := range currencyCodes {
			if containsWord(upper, code) {
				return code
			}
		}
	}
	return ""
}

func hasCurrencyMarker(s string) bool {
	for _, sym := range currencySymbols {
		if strings.Contains(s, sym) {
			return true
		}
	}
	upper := strings.ToUpper(s)
	for _, code := range currencyCodes {
		if containsWord(upper, code) {
			return true
		}
	}
	return false
}

// containsWord reports whether code appears in s as a whole token, so
// "SAR 500" matches but "SARDINE" does not.
func containsWord(s, code string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], code)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isAlpha(s[i-1])
		afterIdx := i + len(code)
		after := afterIdx >= len(s) || !isAlpha(s[afterIdx])
		if before && after {
			return true
		}
		idx = i + len(code)
	}
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// parseNumeric strips thousands separators, percent signs, currency
// markers and whitespace, then attempts a float parse. A lone "-" is
// not a number.
func parseNumeric(s string) (float64, bool) {
	s = thousandsRe.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "%", "")
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	upper := strings.ToUpper(s)
	for _, code := range currencyCodes {
		if containsWord(upper, code) {
			i := strings.Index(upper, code)
			s = s[:i] + s[i+len(code):]
			upper = strings.ToUpper(s)
		}
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "+" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
