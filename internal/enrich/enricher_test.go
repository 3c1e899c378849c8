package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/docstack/extractor/internal/common"
	"github.com/docstack/extractor/internal/extract"
)

type fakeDoer struct {
	status int
	body   string
	err    error
	calls  int
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func completion(content string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"content":%q}}]}`, content)
}

func newTestEnricher(doer *fakeDoer) *Enricher {
	e := NewEnricher(common.LLMConfig{APIKey: "k"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.http = doer
	return e
}

func TestEnrich_AdditiveMergeKeepsPrimaryFields(t *testing.T) {
	doer := &fakeDoer{
		status: http.StatusOK,
		body:   completion(`{"customer_email":"other@x.com","payment_terms":"30 jours"}`),
	}
	e := newTestEnricher(doer)

	res := &extract.ExtractionResult{CustomerEmail: "a@b.com"}
	e.Enrich(context.Background(), res)

	if res.CustomerEmail != "a@b.com" {
		t.Errorf("customer_email = %q, want primary value retained", res.CustomerEmail)
	}
	if res.PaymentTerms != "30 jours" {
		t.Errorf("payment_terms = %q, want filled from enrichment", res.PaymentTerms)
	}
}

func TestEnrich_FillsOnlyMissing(t *testing.T) {
	doer := &fakeDoer{
		status: http.StatusOK,
		body: completion(`{"customer_email":"client@corp.fr","vendor_email":"v@acme.fr",` +
			`"purchase_order":"PO-9","notes":"signed copy"}`),
	}
	e := newTestEnricher(doer)

	res := &extract.ExtractionResult{VendorEmail: "billing@acme.fr"}
	e.Enrich(context.Background(), res)

	if res.VendorEmail != "billing@acme.fr" {
		t.Errorf("vendor_email overwritten: %q", res.VendorEmail)
	}
	if res.CustomerEmail != "client@corp.fr" || res.PurchaseOrder != "PO-9" || res.Notes != "signed copy" {
		t.Errorf("missing fields not filled: %+v", res)
	}
}

func TestEnrich_DegradesSilently(t *testing.T) {
	tests := []struct {
		name string
		doer *fakeDoer
	}{
		{"network error", &fakeDoer{err: fmt.Errorf("connection refused")}},
		{"http 500", &fakeDoer{status: http.StatusInternalServerError, body: "boom"}},
		{"malformed json", &fakeDoer{status: http.StatusOK, body: completion("not json at all")}},
		{"schema violation", &fakeDoer{status: http.StatusOK, body: completion(`{"customer_email":"not-an-email"}`)}},
		{"unknown key", &fakeDoer{status: http.StatusOK, body: completion(`{"gross_amount":12}`)}},
		{"no choices", &fakeDoer{status: http.StatusOK, body: `{"choices":[]}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnricher(tt.doer)
			res := &extract.ExtractionResult{Success: true, CustomerEmail: "a@b.com"}
			e.Enrich(context.Background(), res)
			if !res.Success || res.CustomerEmail != "a@b.com" {
				t.Errorf("result mutated on failure: %+v", res)
			}
			if res.PaymentTerms != "" || res.Notes != "" {
				t.Errorf("fields filled despite failure: %+v", res)
			}
		})
	}
}

func TestEnrich_NoAPIKeySkipsCall(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, body: completion(`{}`)}
	e := NewEnricher(common.LLMConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.http = doer

	res := &extract.ExtractionResult{}
	e.Enrich(context.Background(), res)
	if doer.calls != 0 {
		t.Errorf("HTTP called %d times without a credential, want 0", doer.calls)
	}
}

func TestTruncateText_RuneBoundary(t *testing.T) {
	// "é" is 2 bytes; place it across the cut point
	s := strings.Repeat("a", maxPromptText-1) + "échéance"
	got := truncateText(s, maxPromptText)
	if len(got) > maxPromptText {
		t.Fatalf("len = %d, want <= %d", len(got), maxPromptText)
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a multi-byte rune")
	}
	if got != strings.Repeat("a", maxPromptText-1) {
		t.Errorf("cut fell at byte %d, want the rune boundary before it", len(got))
	}

	if short := truncateText("abc", maxPromptText); short != "abc" {
		t.Errorf("short input = %q, want unchanged", short)
	}
}

func TestBuildUserPrompt_ValidUTF8(t *testing.T) {
	res := &extract.ExtractionResult{
		FullText: strings.Repeat("x", maxPromptText-1) + "€ and more",
	}
	if prompt := buildUserPrompt(res); !utf8.ValidString(prompt) {
		t.Fatal("prompt contains an invalid UTF-8 sequence")
	}
}

func TestMergeAdditive(t *testing.T) {
	res := &extract.ExtractionResult{PurchaseOrder: "PO-1"}
	applied := mergeAdditive(res, &Enrichment{
		PurchaseOrder: "PO-2",
		PaymentTerms:  "net 30",
	})
	if res.PurchaseOrder != "PO-1" {
		t.Errorf("purchase_order = %q, want PO-1", res.PurchaseOrder)
	}
	if len(applied) != 1 || applied[0] != "payment_terms" {
		t.Errorf("applied = %v, want [payment_terms]", applied)
	}
}
