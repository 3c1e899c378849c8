package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reAmountJunk = regexp.MustCompile(`[^\d,.\-]`)
	reDate       = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2}|\d{4})$`)
)

// ParseAmount converts a localized money string ("1 250,50 €") to a float.
// Whitespace (including NBSP variants) and currency symbols are stripped, a
// decimal comma becomes a decimal point. Non-numeric input resolves to nil.
func ParseAmount(s string) *float64 {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ', '\t':
			return -1
		}
		return r
	}, s)
	s = reAmountJunk.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	// "1.250,50" and "1,250.50" both end with a 2-digit decimal part;
	// whichever separator comes last is the decimal one.
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	if lastComma > lastDot {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", -1)
		// only the final comma was decimal; earlier ones were thousands
		if n := strings.Count(s, "."); n > 1 {
			s = strings.Replace(s, ".", "", n-1)
		}
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// NormalizeDate accepts DD/MM/YYYY, DD-MM-YYYY and DD.MM.YYYY (2-digit years
// become 20YY) and returns ISO YYYY-MM-DD. Out-of-range day/month/year
// resolves to "" rather than an error.
func NormalizeDate(s string) string {
	m := reDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1900 || year > 2100 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// IsISODate reports whether s is a calendar-valid YYYY-MM-DD date.
func IsISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ClampConfidence keeps provider scores inside the [0,1] contract.
func ClampConfidence(c float32) float32 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
