package pdf

import (
	"log/slog"
	"strings"

	"github.com/docstack/extractor/constants"
)

// Analysis is the type-analyzer verdict used for strategy routing.
type Analysis struct {
	Kind           constants.PDFKind        `json:"kind"`
	TextLength     int                      `json:"text_length"`
	PageCount      int                      `json:"page_count"`
	AvgTextPerPage float64                  `json:"avg_text_per_page"`
	Confidence     float32                  `json:"confidence"`
	Recommendation constants.Recommendation `json:"recommendation"`
	Details        AnalysisDetails          `json:"details"`
}

type AnalysisDetails struct {
	HasText       bool    `json:"has_text"`
	TextRatio     float64 `json:"text_ratio"`   // text bytes per buffer byte
	TextQuality   float32 `json:"text_quality"` // document-artifact heuristic, 0 when unparsable
	LikelyScanned bool    `json:"likely_scanned"`
}

// Text-density thresholds, in characters per page.
const (
	nativeTextPerPage  = 100
	scannedTextPerPage = 50
)

type Analyzer struct {
	logger *slog.Logger
}

func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// Analyze classifies a buffer as native/scanned/hybrid from its text density.
// It never returns an error: an unparseable buffer yields the fail-safe
// scanned/ocr-required verdict so unreadable input is never routed to the
// free parser.
func (a *Analyzer) Analyze(buf []byte) *Analysis {
	r, err := openReader(buf)
	if err != nil {
		a.logger.Warn("pdf.analyze.unparsable", "error", err, "bytes", len(buf))
		return &Analysis{
			Kind:           constants.PDFScanned,
			Confidence:     0.5,
			Recommendation: constants.RecommendOCR,
			Details:        AnalysisDetails{LikelyScanned: true},
		}
	}

	text, pages := fullText(r)
	res := verdict(len(strings.TrimSpace(text)), pages, len(buf))
	res.Details.TextQuality = textQuality(text)

	a.logger.Debug("pdf.analyze.ok",
		"kind", string(res.Kind),
		"pages", res.PageCount,
		"avg_text_per_page", res.AvgTextPerPage,
		"text_quality", res.Details.TextQuality,
		"recommendation", string(res.Recommendation),
	)
	return res
}

// verdict is the decision table over text density.
func verdict(textLen, pages, bufLen int) *Analysis {
	var avg float64
	if pages > 0 {
		avg = float64(textLen) / float64(pages)
	}
	var ratio float64
	if bufLen > 0 {
		ratio = float64(textLen) / float64(bufLen)
	}

	res := &Analysis{
		TextLength:     textLen,
		PageCount:      pages,
		AvgTextPerPage: avg,
		Details: AnalysisDetails{
			HasText:   textLen > 0,
			TextRatio: ratio,
		},
	}

	switch {
	case avg >= nativeTextPerPage:
		res.Kind = constants.PDFNative
		res.Recommendation = constants.RecommendSimpleParser
		conf := avg / 1000
		if conf > 1 {
			conf = 1
		}
		if conf > 0.95 {
			conf = 0.95
		}
		res.Confidence = float32(conf)
	case avg < scannedTextPerPage:
		res.Kind = constants.PDFScanned
		res.Recommendation = constants.RecommendOCR
		res.Confidence = 0.9
		res.Details.LikelyScanned = true
	default:
		// mixed pages must not be trusted to the free parser
		res.Kind = constants.PDFHybrid
		res.Recommendation = constants.RecommendOCR
		res.Confidence = 0.7
	}
	return res
}
