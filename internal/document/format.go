package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Currency is appended to formatted money.
const Currency = "FCFA"

// FormatAmount groups thousands with spaces: 50000 -> "50 000",
// 1234.5 -> "1 234,50".
func FormatAmount(d decimal.Decimal) string {
	if d.IsInteger() {
		return FormatInt(int(d.IntPart()))
	}
	return humanize.FormatFloat("# ###,##", d.InexactFloat64())
}

// FormatInt groups thousands of a plain integer: 120000 -> "120 000".
func FormatInt(n int) string {
	return humanize.FormatInteger("# ###.", n)
}

// FormatMoney is FormatAmount followed by the currency.
func FormatMoney(d decimal.Decimal) string {
	return FormatAmount(d) + " " + Currency
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatDate renders t as "15 octobre 2026". The zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// FormatShortDate renders t as "15/10/2026".
func FormatShortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// FormatMonth renders t as "octobre 2026".
func FormatMonth(t time.Time) string {
	return fmt.Sprintf("%s %d", frenchMonths[t.Month()-1], t.Year())
}

// orDefault returns s, or fallback when s is blank.
func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
