package pdf

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/docstack/extractor/constants"
)

func TestVerdict(t *testing.T) {
	tests := []struct {
		name    string
		textLen int
		pages   int
		kind    constants.PDFKind
		rec     constants.Recommendation
		conf    float32
		scanned bool
	}{
		{"dense single page", 800, 1, constants.PDFNative, constants.RecommendSimpleParser, 0.8, false},
		{"exactly at native threshold", 100, 1, constants.PDFNative, constants.RecommendSimpleParser, 0.1, false},
		{"very dense caps at 0.95", 5000, 1, constants.PDFNative, constants.RecommendSimpleParser, 0.95, false},
		{"no text at all", 0, 3, constants.PDFScanned, constants.RecommendOCR, 0.9, true},
		{"sparse text", 49, 1, constants.PDFScanned, constants.RecommendOCR, 0.9, true},
		{"between thresholds", 75, 1, constants.PDFHybrid, constants.RecommendOCR, 0.7, false},
		{"exactly at scanned threshold", 50, 1, constants.PDFHybrid, constants.RecommendOCR, 0.7, false},
		{"dense average over many pages", 1000, 5, constants.PDFNative, constants.RecommendSimpleParser, 0.2, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := verdict(tc.textLen, tc.pages, 10_000)
			if res.Kind != tc.kind {
				t.Errorf("kind = %q, want %q", res.Kind, tc.kind)
			}
			if res.Recommendation != tc.rec {
				t.Errorf("recommendation = %q, want %q", res.Recommendation, tc.rec)
			}
			if diff := res.Confidence - tc.conf; diff > 0.001 || diff < -0.001 {
				t.Errorf("confidence = %.3f, want %.3f", res.Confidence, tc.conf)
			}
			if res.Details.LikelyScanned != tc.scanned {
				t.Errorf("likely_scanned = %v, want %v", res.Details.LikelyScanned, tc.scanned)
			}
		})
	}
}

func TestVerdict_ZeroPages(t *testing.T) {
	res := verdict(500, 0, 1000)
	// zero pages means zero average, which routes to OCR
	if res.Kind != constants.PDFScanned || res.Recommendation != constants.RecommendOCR {
		t.Errorf("got %q/%q, want scanned/ocr-required", res.Kind, res.Recommendation)
	}
}

func TestTextQuality(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float32
	}{
		{"invoice artifacts", "Facture du 15/01/2024\nTotal TTC: 1 250,50 €", 0.7},
		{"no artifacts", "zzzz", 0.2},
		{"length only", strings.Repeat("lorem ipsum dolor sit amet ", 5), 0.3},
		{"empty", "", 0.2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := textQuality(tc.text)
			if diff := got - tc.want; diff > 0.001 || diff < -0.001 {
				t.Errorf("textQuality = %.2f, want %.2f", got, tc.want)
			}
		})
	}
}

func TestAnalyze_UnparsableBufferFailsSafe(t *testing.T) {
	a := NewAnalyzer(slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, buf := range [][]byte{
		nil,
		[]byte("not a pdf at all"),
		[]byte("%PDF-1.7 truncated garbage"),
	} {
		res := a.Analyze(buf)
		if res == nil {
			t.Fatal("Analyze must never return nil")
		}
		if res.Kind != constants.PDFScanned {
			t.Errorf("kind = %q, want scanned for %q", res.Kind, buf)
		}
		if res.Recommendation != constants.RecommendOCR {
			t.Errorf("recommendation = %q, want ocr-required", res.Recommendation)
		}
		if res.Confidence != 0.5 {
			t.Errorf("confidence = %.2f, want 0.5", res.Confidence)
		}
	}
}
