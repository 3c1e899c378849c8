// Package enrich is the language-model gap-filling pass. It proposes values
// only for fields the primary extractor left empty and is strictly additive:
// a populated field is never overwritten, and no failure here is ever fatal
// to the extraction.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/docstack/extractor/internal/common"
	"github.com/docstack/extractor/internal/extract"
)

// maxPromptText bounds the slice of full text sent with the prompt.
const maxPromptText = 3000

// Enrichment is the strict reply shape; every field optional.
type Enrichment struct {
	CustomerEmail string `json:"customer_email,omitempty"`
	VendorEmail   string `json:"vendor_email,omitempty"`
	PurchaseOrder string `json:"purchase_order,omitempty"`
	PaymentTerms  string `json:"payment_terms,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Enricher struct {
	cfg    common.LLMConfig
	http   httpDoer
	logger *slog.Logger
}

func NewEnricher(cfg common.LLMConfig, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &Enricher{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Enrich fills missing fields on the result in place. Any failure (missing
// credential, network, malformed JSON, schema violation) logs and leaves the
// result untouched.
func (e *Enricher) Enrich(ctx context.Context, res *extract.ExtractionResult) {
	rid := uuid.New().String()
	start := time.Now()

	enrichment, err := e.propose(ctx, rid, res)
	if err != nil {
		e.logger.Warn("enrich.degraded",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return
	}

	applied := mergeAdditive(res, enrichment)
	e.logger.Info("enrich.ok",
		"req_id", rid, "applied", applied,
		"elapsed_ms", time.Since(start).Milliseconds())
}

func (e *Enricher) propose(ctx context.Context, rid string, res *extract.ExtractionResult) (*Enrichment, error) {
	if e.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", common.ErrEnrichment)
	}

	schema := BuildEnrichmentJSONSchema()
	body := map[string]any{
		"model":           e.cfg.Model,
		"temperature":     e.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": buildSystemPrompt()},
			{"role": "user", "content": buildUserPrompt(res) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	raw, err := e.post(ctx, strings.TrimRight(e.cfg.BaseURL, "/")+"/chat/completions", body)
	if err != nil {
		return nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if len(cc.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in completion", common.ErrEnrichment)
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	if err := ValidateJSONAgainstSchema(schema, content); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEnrichment, err)
	}
	var out Enrichment
	if err := json.Unmarshal(content, &out); err != nil {
		return nil, fmt.Errorf("unmarshal enrichment: %w", err)
	}
	return &out, nil
}

func (e *Enricher) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm http error: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			e.logger.Warn("llm response body close error", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("llm status %d: %s", resp.StatusCode, truncate(raw, 512))
	}
	return raw, nil
}

// mergeAdditive copies proposals only into empty fields and reports which
// fields were filled.
func mergeAdditive(res *extract.ExtractionResult, enr *Enrichment) []string {
	var applied []string
	if res.CustomerEmail == "" && enr.CustomerEmail != "" {
		res.CustomerEmail = enr.CustomerEmail
		applied = append(applied, "customer_email")
	}
	if res.VendorEmail == "" && enr.VendorEmail != "" {
		res.VendorEmail = enr.VendorEmail
		applied = append(applied, "vendor_email")
	}
	if res.PurchaseOrder == "" && enr.PurchaseOrder != "" {
		res.PurchaseOrder = enr.PurchaseOrder
		applied = append(applied, "purchase_order")
	}
	if res.PaymentTerms == "" && enr.PaymentTerms != "" {
		res.PaymentTerms = enr.PaymentTerms
		applied = append(applied, "payment_terms")
	}
	if res.Notes == "" && enr.Notes != "" {
		res.Notes = enr.Notes
		applied = append(applied, "notes")
	}
	return applied
}

func buildSystemPrompt() string {
	parts := []string{
		"You are an invoice enrichment assistant. Return ONLY JSON that matches the provided JSON Schema.",
		"You receive fields already extracted from an invoice plus a slice of its text.",
		"Propose values ONLY for fields that are currently missing: customer_email, vendor_email, purchase_order, payment_terms, notes.",
		"Never restate or correct a field that already has a value.",
		"Never output null. If a field is not present in the document, omit it.",
	}
	return strings.Join(parts, " ")
}

func buildUserPrompt(res *extract.ExtractionResult) string {
	known := map[string]any{
		"document_number": res.DocumentNumber,
		"document_date":   res.DocumentDate,
		"vendor_name":     res.VendorName,
		"vendor_email":    res.VendorEmail,
		"customer_email":  res.CustomerEmail,
		"purchase_order":  res.PurchaseOrder,
		"payment_terms":   res.PaymentTerms,
	}
	var b strings.Builder
	b.WriteString("Already extracted fields (empty string = missing):\n")
	b.WriteString(mustJSON(known))
	b.WriteString("\n\nDocument text (first ~3k chars):\n")
	b.WriteString(truncateText(res.FullText, maxPromptText))
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}

// truncateText cuts at a rune boundary so a multi-byte character is never
// split mid-sequence.
func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
