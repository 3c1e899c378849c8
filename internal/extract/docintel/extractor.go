// Package docintel is the two-level OCR strategy: a generic document-analysis
// pass on every buffer, then a conditional invoice-specialized pass gated by
// the Level-1 classification so non-invoice documents never pay for the
// expensive model.
package docintel

import (
	"context"
	"log/slog"
	"time"

	"github.com/docstack/extractor/constants"
	"github.com/docstack/extractor/internal/common"
	"github.com/docstack/extractor/internal/extract"
)

type Extractor struct {
	client       *Client
	layoutModel  string
	invoiceModel string
	invoiceGate  float32
	logger       *slog.Logger
}

func NewExtractor(cfg common.DocIntelConfig, invoiceGate float32, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if invoiceGate <= 0 {
		invoiceGate = 0.4
	}
	layout := cfg.LayoutModel
	if layout == "" {
		layout = "prebuilt-layout"
	}
	invoice := cfg.InvoiceModel
	if invoice == "" {
		invoice = "prebuilt-invoice"
	}
	return &Extractor{
		client:       NewClient(cfg, logger),
		layoutModel:  layout,
		invoiceModel: invoice,
		invoiceGate:  invoiceGate,
		logger:       logger,
	}
}

func (e *Extractor) Name() constants.Provider { return constants.ProviderOCR }

// Extract runs Level 1 (always) and Level 2 (invoice-like only). Level 1 must
// complete first: its classification gates the specialized pass. A Level-2
// failure degrades to the Level-1 result instead of failing the attempt.
func (e *Extractor) Extract(ctx context.Context, buf []byte, filename string) (*extract.ExtractionResult, error) {
	start := time.Now()

	l1, raw, err := e.client.Analyze(ctx, e.layoutModel, buf)
	if err != nil {
		return nil, common.WrapError(err, "level-1 analysis")
	}

	docType, classConf := Classify(l1.Content, filename)
	res := &extract.ExtractionResult{
		Success:      true,
		Provider:     constants.ProviderOCR,
		DocumentType: docType,
		Confidence:   classConf,
		FullText:     l1.Content,
		Pages:        mapPages(l1.Pages),
		Tables:       mapTables(l1.Tables),
		Raw:          raw,
	}

	if docType == constants.DocInvoice && classConf >= e.invoiceGate {
		if l2, l2raw, err := e.client.Analyze(ctx, e.invoiceModel, buf); err != nil {
			// Level-2 failure is not terminal: the generic result stands.
			e.logger.Warn("docintel.invoice_pass.failed",
				"file", filename, "error", err)
		} else if len(l2.Documents) > 0 {
			applyInvoiceFields(res, &l2.Documents[0])
			if fc := fieldConfidences(&l2.Documents[0]); fc > 0 {
				res.Confidence = fc
			}
			res.Raw = l2raw
		}
	} else if docType == constants.DocInvoice {
		e.logger.Info("docintel.invoice_pass.skipped",
			"file", filename, "confidence", classConf, "gate", e.invoiceGate)
	}

	res.Confidence = extract.ClampConfidence(res.Confidence)
	res.DurationMS = time.Since(start).Milliseconds()
	return res, nil
}

func mapPages(pages []Page) []extract.PageInfo {
	out := make([]extract.PageInfo, 0, len(pages))
	for _, p := range pages {
		out = append(out, extract.PageInfo{
			Number: p.PageNumber - 1,
			Width:  p.Width,
			Height: p.Height,
			Unit:   p.Unit,
		})
	}
	return out
}

func mapTables(tables []Table) []extract.Table {
	out := make([]extract.Table, 0, len(tables))
	for _, t := range tables {
		mapped := extract.Table{
			RowCount:    t.RowCount,
			ColumnCount: t.ColumnCount,
		}
		if len(t.BoundingRegions) > 0 {
			mapped.Page = t.BoundingRegions[0].PageNumber - 1
		}
		for _, c := range t.Cells {
			mapped.Cells = append(mapped.Cells, extract.TableCell{
				Row:     c.RowIndex,
				Column:  c.ColumnIndex,
				Content: c.Content,
			})
		}
		out = append(out, mapped)
	}
	return out
}
