package pdf

import (
	"io"
	"log/slog"
	"testing"

	"github.com/docstack/extractor/constants"
)

func TestExtractMetadata_GarbageBufferFillsWhatIsKnown(t *testing.T) {
	m := NewMetadataExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, buf := range [][]byte{
		nil,
		[]byte("not a pdf at all"),
		[]byte("%PDF-1.7 truncated garbage"),
	} {
		meta := m.ExtractMetadata(buf, "broken.pdf")
		if meta == nil {
			t.Fatal("ExtractMetadata must never return nil")
		}
		// integrity hashes are always present, even for garbage
		if len(meta.Integrity.MD5) != 32 {
			t.Errorf("md5 = %q, want 32 hex chars", meta.Integrity.MD5)
		}
		if len(meta.Integrity.SHA256) != 64 {
			t.Errorf("sha256 = %q, want 64 hex chars", meta.Integrity.SHA256)
		}
		if meta.Structure.SizeBytes != len(buf) {
			t.Errorf("size = %d, want %d", meta.Structure.SizeBytes, len(buf))
		}
		// unparseable content falls back to the scanned verdict
		if meta.Content.Kind != constants.PDFScanned {
			t.Errorf("kind = %q, want scanned", meta.Content.Kind)
		}
		if meta.Content.Recommendation != constants.RecommendOCR {
			t.Errorf("recommendation = %q, want ocr-required", meta.Content.Recommendation)
		}
		if meta.Info == nil {
			t.Error("info map must be non-nil")
		}
		if meta.Extraction.ExtractedAt == "" {
			t.Error("extracted_at missing")
		}
	}
}

func TestPDFDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"D:20240115093000+01'00'", "2024-01-15T09:30:00Z"},
		{"D:20240115", "2024-01-15T00:00:00Z"},
		{"garbage", "garbage"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := pdfDate(tc.in); got != tc.want {
			t.Errorf("pdfDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
