package extract

import (
	"context"
	"encoding/json"

	"github.com/docstack/extractor/constants"
)

// Strategy is one extraction provider. Implementations must never panic and
// must convert every upstream fault into an error return; the orchestrator
// turns those into the structured result contract.
type Strategy interface {
	Name() constants.Provider
	Extract(ctx context.Context, buf []byte, filename string) (*ExtractionResult, error)
}

// ExtractionResult is the canonical output shape every provider normalizes
// into. Numeric and date fields are parse-or-null, never an error.
type ExtractionResult struct {
	Success    bool               `json:"success"`
	Provider   constants.Provider `json:"provider"`
	Confidence float32            `json:"confidence"`

	DocumentType constants.DocumentType `json:"document_type,omitempty"`

	NetAmount      *float64 `json:"net_amount,omitempty"`
	GrossAmount    *float64 `json:"gross_amount,omitempty"`
	TaxRate        *float64 `json:"tax_rate,omitempty"`
	DocumentDate   string   `json:"document_date,omitempty"` // YYYY-MM-DD
	DueDate        string   `json:"due_date,omitempty"`      // YYYY-MM-DD
	DocumentNumber string   `json:"document_number,omitempty"`
	VendorName     string   `json:"vendor_name,omitempty"`
	VendorAddress  string   `json:"vendor_address,omitempty"`
	VendorEmail    string   `json:"vendor_email,omitempty"`
	CustomerEmail  string   `json:"customer_email,omitempty"`
	PurchaseOrder  string   `json:"purchase_order,omitempty"`
	PaymentTerms   string   `json:"payment_terms,omitempty"`
	Notes          string   `json:"notes,omitempty"`

	Items          []LineItem         `json:"items,omitempty"`
	FieldPositions []FieldBoundingBox `json:"field_positions,omitempty"`

	FullText string     `json:"full_text,omitempty"`
	Pages    []PageInfo `json:"pages,omitempty"`
	Tables   []Table    `json:"tables,omitempty"`

	DurationMS int64           `json:"duration_ms"`
	Raw        json.RawMessage `json:"raw_diagnostic,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// LineItem carries one invoice line. Every field is independently nullable;
// no cross-field validation happens at this layer.
type LineItem struct {
	Description string   `json:"description,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
}

// FieldBoundingBox locates an extracted field on a page. Polygon values are
// flat [x1,y1,x2,y2,...] in the unit recorded on the owning page's metadata;
// consumers must not mix units across pages.
type FieldBoundingBox struct {
	Field      string    `json:"field"`
	Page       int       `json:"page"` // 0-indexed
	Polygon    []float64 `json:"polygon"`
	Text       string    `json:"text,omitempty"`
	Confidence *float32  `json:"confidence,omitempty"`
}

// PageInfo records per-page geometry so polygon units stay interpretable.
type PageInfo struct {
	Number int     `json:"number"` // 0-indexed
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"` // "inch" | "pixel" | "point"
}

// Table is a detected table region.
type Table struct {
	RowCount    int         `json:"row_count"`
	ColumnCount int         `json:"column_count"`
	Page        int         `json:"page"` // 0-indexed
	Cells       []TableCell `json:"cells,omitempty"`
}

type TableCell struct {
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Content string `json:"content"`
}

// Failed builds the terminal failure shape for one provider attempt.
func Failed(p constants.Provider, errMsg string) *ExtractionResult {
	return &ExtractionResult{Provider: p, Error: errMsg}
}
