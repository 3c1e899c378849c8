// Package visionagent is the alternate hosted provider: the PDF plus a fixed
// JSON field schema go to a vision-agent endpoint and a flat structured
// result comes back. The service reports no confidence, so a constant default
// is attached.
package visionagent

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/docstack/extractor/constants"
	"github.com/docstack/extractor/internal/common"
	"github.com/docstack/extractor/internal/extract"
)

// DefaultConfidence is attached to every result because the provider does
// not report one.
const DefaultConfidence = 0.8

var regionHosts = map[string]string{
	"eu": "https://api-eu.visionagent.dev",
	"us": "https://api-us.visionagent.dev",
}

// fieldSchema is the fixed field set submitted with every document.
var fieldSchema = map[string]string{
	"net_amount":      "number",
	"gross_amount":    "number",
	"tax_rate":        "number",
	"document_date":   "date",
	"due_date":        "date",
	"document_number": "string",
	"vendor_name":     "string",
	"vendor_address":  "string",
	"vendor_email":    "string",
	"customer_email":  "string",
	"purchase_order":  "string",
	"payment_terms":   "string",
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Extractor struct {
	cfg    common.VisionConfig
	http   httpDoer
	logger *slog.Logger
}

func NewExtractor(cfg common.VisionConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Region == "" {
		cfg.Region = "eu"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &Extractor{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (e *Extractor) Name() constants.Provider { return constants.ProviderVisionSchema }

// wire shape of one extraction response; every field arrives as a nullable
// scalar already matching the submitted schema.
type agentResponse struct {
	Fields struct {
		NetAmount      *float64 `json:"net_amount"`
		GrossAmount    *float64 `json:"gross_amount"`
		TaxRate        *float64 `json:"tax_rate"`
		DocumentDate   string   `json:"document_date"`
		DueDate        string   `json:"due_date"`
		DocumentNumber string   `json:"document_number"`
		VendorName     string   `json:"vendor_name"`
		VendorAddress  string   `json:"vendor_address"`
		VendorEmail    string   `json:"vendor_email"`
		CustomerEmail  string   `json:"customer_email"`
		PurchaseOrder  string   `json:"purchase_order"`
		PaymentTerms   string   `json:"payment_terms"`
	} `json:"fields"`
	Items []struct {
		Description string   `json:"description"`
		Quantity    *float64 `json:"quantity"`
		UnitPrice   *float64 `json:"unit_price"`
		Amount      *float64 `json:"amount"`
	} `json:"items"`
	FullText string `json:"full_text"`
}

func (e *Extractor) Extract(ctx context.Context, buf []byte, filename string) (*extract.ExtractionResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	host, ok := regionHosts[e.cfg.Region]
	if !ok {
		return nil, fmt.Errorf("%w: unknown vision region %q", common.ErrInvalidInput, e.cfg.Region)
	}
	endpoint := host + "/v1/agents/" + e.cfg.AgentID + "/extract"

	e.logger.Info("visionagent.extract.start",
		"req_id", rid, "region", e.cfg.Region, "bytes", len(buf))

	body, err := json.Marshal(map[string]any{
		"document": base64.StdEncoding.EncodeToString(buf),
		"filename": filename,
		"schema":   map[string]any{"fields": fieldSchema},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		e.logger.Error("visionagent.extract.http_error", "req_id", rid, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrProvider, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			e.logger.Warn("visionagent response body close error", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Error("visionagent.extract.status_error",
			"req_id", rid, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: vision status %d: %s", common.ErrProvider, resp.StatusCode, truncate(raw, 512))
	}

	var out agentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode vision response: %v", common.ErrProvider, err)
	}

	res := &extract.ExtractionResult{
		Success:        true,
		Provider:       constants.ProviderVisionSchema,
		DocumentType:   constants.DocInvoice,
		Confidence:     DefaultConfidence,
		NetAmount:      out.Fields.NetAmount,
		GrossAmount:    out.Fields.GrossAmount,
		TaxRate:        out.Fields.TaxRate,
		DocumentDate:   normalizeDate(out.Fields.DocumentDate),
		DueDate:        normalizeDate(out.Fields.DueDate),
		DocumentNumber: out.Fields.DocumentNumber,
		VendorName:     out.Fields.VendorName,
		VendorAddress:  out.Fields.VendorAddress,
		VendorEmail:    out.Fields.VendorEmail,
		CustomerEmail:  out.Fields.CustomerEmail,
		PurchaseOrder:  out.Fields.PurchaseOrder,
		PaymentTerms:   out.Fields.PaymentTerms,
		FullText:       out.FullText,
		Raw:            raw,
		DurationMS:     time.Since(start).Milliseconds(),
	}
	for _, item := range out.Items {
		res.Items = append(res.Items, extract.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}

	e.logger.Info("visionagent.extract.ok",
		"req_id", rid, "items", len(res.Items),
		"elapsed_ms", res.DurationMS)
	return res, nil
}

// normalizeDate accepts either ISO output or localized day-first dates.
func normalizeDate(s string) string {
	if extract.IsISODate(s) {
		return s
	}
	return extract.NormalizeDate(s)
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}
