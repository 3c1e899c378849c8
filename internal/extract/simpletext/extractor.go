// Package simpletext is the free extraction path: ordered regex banks over
// the native text layer plus token positions. Pattern order encodes priority,
// the first match anywhere in the text wins.
package simpletext

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/docstack/extractor/constants"
	"github.com/docstack/extractor/internal/common"
	"github.com/docstack/extractor/internal/extract"
	"github.com/docstack/extractor/internal/pdf"
)

const amountClass = `[\d \x{00A0}\x{202F}.,]+`
const dateClass = `\d{1,2}[/.\-]\d{1,2}[/.\-](?:\d{4}|\d{2})`

// Regex banks, most specific phrasing first. French terms lead because the
// bulk of inbound documents are FR invoices.
var (
	grossPatterns = compileAll(
		`(?i)total\s*t\.?t\.?c\.?\s*:?\s*(`+amountClass+`)`,
		`(?i)montant\s+total\s*:?\s*(`+amountClass+`)`,
		`(?i)total\s+amount\s*(?:due)?\s*:?\s*(`+amountClass+`)`,
		`(?i)\btotal\s*:?\s*(`+amountClass+`)`,
	)
	netPatterns = compileAll(
		`(?i)total\s*h\.?t\.?\s*:?\s*(`+amountClass+`)`,
		`(?i)montant\s*h\.?t\.?\s*:?\s*(`+amountClass+`)`,
		`(?i)sous[\s-]total\s*:?\s*(`+amountClass+`)`,
		`(?i)subtotal\s*:?\s*(`+amountClass+`)`,
		`(?i)net\s+amount\s*:?\s*(`+amountClass+`)`,
	)
	taxRatePatterns = compileAll(
		`(?i)t\.?v\.?a\.?\s*\(?\s*(\d{1,2}(?:[.,]\d{1,2})?)\s*%`,
		`(?i)vat\s*(?:rate)?\s*\(?\s*:?\s*(\d{1,2}(?:[.,]\d{1,2})?)\s*%`,
		`(?i)tax\s*rate\s*:?\s*(\d{1,2}(?:[.,]\d{1,2})?)\s*%`,
	)
	numberPatterns = compileAll(
		`(?i)facture\s*n[°ºo]?\s*:?\s*([A-Z0-9][A-Z0-9\-/_.]{2,})`,
		`(?i)n[°º]\s*de\s*facture\s*:?\s*([A-Z0-9][A-Z0-9\-/_.]{2,})`,
		`(?i)invoice\s*(?:#|n[°o]\.?|no\.?|num(?:ber)?)?\s*:?\s*([A-Z0-9][A-Z0-9\-/_.]{2,})`,
		`\b(INV[-/]?[0-9][A-Z0-9\-/]*)\b`,
	)
	docDatePatterns = compileAll(
		`(?i)date\s+de\s+facture\s*:?\s*(` + dateClass + `)`,
		`(?i)invoice\s+date\s*:?\s*(` + dateClass + `)`,
		`(?i)\bdate\s*:?\s*(` + dateClass + `)`,
		`\b(` + dateClass + `)\b`,
	)
	dueDatePatterns = compileAll(
		`(?i)(?:date\s+d')?[ée]ch[ée]ance\s*:?\s*(`+dateClass+`)`,
		`(?i)due\s+date\s*:?\s*(`+dateClass+`)`,
		`(?i)payable\s+(?:avant\s+le|le|by)\s*:?\s*(`+dateClass+`)`,
	)

	reUppercaseRun = regexp.MustCompile(`[A-ZÀ-Þ]{3,}`)
	legalSuffixes  = []string{"SARL", "SAS", "SASU", "SA", "EURL", "SCI", "GMBH", "LTD", "LLC", "INC", "BV", "AG"}
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// Fixed confidence weights per extracted field. The total is 1.0 so the sum
// needs no further normalization.
var fieldWeights = map[string]float32{
	constants.FieldGrossAmount:    0.30,
	constants.FieldVendorName:     0.25,
	constants.FieldDocumentNumber: 0.20,
	constants.FieldDocumentDate:   0.15,
	constants.FieldNetAmount:      0.05,
	constants.FieldTaxRate:        0.03,
	constants.FieldDueDate:        0.02,
}

type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

func (e *Extractor) Name() constants.Provider { return constants.ProviderSimpleText }

// Extract runs the regex banks over the native text layer. It only errors
// when the buffer has no parsable text layer at all; weak extractions come
// back successful with a low confidence so the orchestrator can escalate.
func (e *Extractor) Extract(ctx context.Context, buf []byte, filename string) (*extract.ExtractionResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pos, err := pdf.ExtractPositions(buf)
	if err != nil {
		return nil, common.WrapError(err, "simpletext: no text layer")
	}

	res := extractFromText(pos.Text, pos.Tokens, pos.Pages)
	res.DurationMS = time.Since(start).Milliseconds()

	e.logger.Debug("simpletext.extract.ok",
		"file", filename,
		"confidence", res.Confidence,
		"positions", len(res.FieldPositions),
		"duration_ms", res.DurationMS,
	)
	return res, nil
}

// extractFromText runs the regex banks over an already-extracted text layer.
func extractFromText(text string, tokens []pdf.Token, pages []extract.PageInfo) *extract.ExtractionResult {
	res := &extract.ExtractionResult{
		Success:      true,
		Provider:     constants.ProviderSimpleText,
		DocumentType: constants.DocInvoice,
		FullText:     text,
		Pages:        pages,
	}

	// raw matched substrings, kept for position tagging
	matched := map[string]string{}

	if raw, ok := firstMatch(grossPatterns, text); ok {
		if v := extract.ParseAmount(raw); v != nil {
			res.GrossAmount = v
			matched[constants.FieldGrossAmount] = strings.TrimSpace(raw)
		}
	}
	if raw, ok := firstMatch(netPatterns, text); ok {
		if v := extract.ParseAmount(raw); v != nil {
			res.NetAmount = v
			matched[constants.FieldNetAmount] = strings.TrimSpace(raw)
		}
	}
	if raw, ok := firstMatch(taxRatePatterns, text); ok {
		if v := extract.ParseAmount(raw); v != nil {
			res.TaxRate = v
			matched[constants.FieldTaxRate] = strings.TrimSpace(raw)
		}
	}
	if raw, ok := firstMatch(numberPatterns, text); ok {
		res.DocumentNumber = strings.TrimSpace(raw)
		matched[constants.FieldDocumentNumber] = res.DocumentNumber
	}
	if raw, ok := firstMatch(docDatePatterns, text); ok {
		if iso := extract.NormalizeDate(raw); iso != "" {
			res.DocumentDate = iso
			matched[constants.FieldDocumentDate] = strings.TrimSpace(raw)
		}
	}
	if raw, ok := firstMatch(dueDatePatterns, text); ok {
		if iso := extract.NormalizeDate(raw); iso != "" {
			res.DueDate = iso
			matched[constants.FieldDueDate] = strings.TrimSpace(raw)
		}
	}
	if vendor := guessVendorName(text); vendor != "" {
		res.VendorName = vendor
		matched[constants.FieldVendorName] = vendor
	}

	res.FieldPositions = resolvePositions(matched, tokens)
	res.Confidence = scoreConfidence(res)
	return res
}

// firstMatch returns the first capture group of the first pattern that hits.
func firstMatch(bank []*regexp.Regexp, text string) (string, bool) {
	for _, re := range bank {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// guessVendorName scans the first five non-empty lines for one with an
// uppercase run or a legal-entity suffix and falls back to the very first
// non-empty line.
func guessVendorName(text string) string {
	var firstLine string
	seen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if firstLine == "" {
			firstLine = line
		}
		seen++
		if hasLegalSuffix(line) || reUppercaseRun.MatchString(line) {
			return line
		}
		if seen >= 5 {
			break
		}
	}
	return firstLine
}

func hasLegalSuffix(line string) bool {
	up := strings.ToUpper(line)
	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(up, " "+suffix) || strings.Contains(up, " "+suffix+" ") {
			return true
		}
	}
	return false
}

// resolvePositions tags every token box whose text contains, or is contained
// by, an extracted value (case-insensitive, both directions).
func resolvePositions(matched map[string]string, tokens []pdf.Token) []extract.FieldBoundingBox {
	var boxes []extract.FieldBoundingBox
	for field, value := range matched {
		needle := strings.ToLower(value)
		if needle == "" {
			continue
		}
		for _, tok := range tokens {
			hay := strings.ToLower(tok.Text)
			if !strings.Contains(hay, needle) && !strings.Contains(needle, hay) {
				continue
			}
			boxes = append(boxes, extract.FieldBoundingBox{
				Field: field,
				Page:  tok.Page,
				Polygon: []float64{
					tok.X, tok.Y,
					tok.X + tok.Width, tok.Y,
					tok.X + tok.Width, tok.Y + tok.Height,
					tok.X, tok.Y + tok.Height,
				},
				Text: tok.Text,
			})
		}
	}
	return boxes
}

func scoreConfidence(res *extract.ExtractionResult) float32 {
	var score float32
	if res.GrossAmount != nil {
		score += fieldWeights[constants.FieldGrossAmount]
	}
	if res.VendorName != "" {
		score += fieldWeights[constants.FieldVendorName]
	}
	if res.DocumentNumber != "" {
		score += fieldWeights[constants.FieldDocumentNumber]
	}
	if res.DocumentDate != "" {
		score += fieldWeights[constants.FieldDocumentDate]
	}
	if res.NetAmount != nil {
		score += fieldWeights[constants.FieldNetAmount]
	}
	if res.TaxRate != nil {
		score += fieldWeights[constants.FieldTaxRate]
	}
	if res.DueDate != "" {
		score += fieldWeights[constants.FieldDueDate]
	}
	return extract.ClampConfidence(score)
}
