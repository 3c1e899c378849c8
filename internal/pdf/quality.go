package pdf

import (
	"regexp"
	"strings"
)

var (
	reDateish     = regexp.MustCompile(`\b\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}\b|\b20\d{2}\b`)
	reCurrencyish = regexp.MustCompile(`\b(usd|eur|gbp|chf)\b|[$£€]`)
	reAmountish   = regexp.MustCompile(`\b\d{1,3}([ .,]\d{3})*[.,]\d{2}\b`)
)

// textQuality scores how much a text layer looks like a real business
// document. Each artifact class (date-ish, currency-ish, amount-ish) adds a
// boost on top of a small base; non-trivial length adds the rest.
func textQuality(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2)
	if reDateish.MatchString(txtL) {
		score += 0.2
	}
	if reCurrencyish.MatchString(txtL) {
		score += 0.15
	}
	if reAmountish.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
