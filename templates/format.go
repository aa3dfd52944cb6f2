package templates

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Money formats v in the ISO 4217 currency code, rounded half away from zero
// to cents with en-US grouping. Unknown codes fall back to USD.
func Money(v float64, code string) string {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		unit = currency.USD
	}
	sym := printer.Sprint(currency.Symbol(unit))
	if sym == unit.String() {
		sym += " "
	}
	cents := math.Round(math.Abs(v) * 100)
	sign := ""
	if v < 0 && cents != 0 {
		sign = "-"
	}
	return sign + sym + printer.Sprintf("%.2f", cents/100)
}

// Number formats quantities and rates the way a browser prints a JS number.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Date formats t as "January 2nd, 2006". The zero time renders as a dash.
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s %d%s, %d", t.Month(), t.Day(), ordinal(t.Day()), t.Year())
}

func ordinal(d int) string {
	if d%100 >= 11 && d%100 <= 13 {
		return "th"
	}
	switch d % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// or returns s, or fallback when s is blank.
func or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// joinNonEmpty joins the non-blank parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// bullets splits a free-text description into list items, dropping a
// leading "- " marker from each line.
func bullets(desc string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(desc, "\r\n", "\n"), "\n") {
		line = strings.TrimPrefix(strings.TrimSpace(line), "- ")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// initial returns the first letter of s, upper-cased.
func initial(s string) string {
	for _, r := range strings.TrimSpace(s) {
		return strings.ToUpper(string(r))
	}
	return ""
}
