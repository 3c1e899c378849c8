package pdf

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/docstack/extractor/constants"
)

// Metadata is the full document report: properties, structural stats,
// content classification and integrity hashes.
type Metadata struct {
	Info       map[string]string `json:"info"`
	Structure  StructureInfo     `json:"structure"`
	Content    ContentInfo       `json:"content"`
	Integrity  IntegrityInfo     `json:"integrity"`
	Extraction ExtractionInfo    `json:"extraction"`
}

type StructureInfo struct {
	PageCount       int     `json:"page_count"`
	SizeBytes       int     `json:"size_bytes"`
	PDFVersion      string  `json:"pdf_version"`
	Encrypted       bool    `json:"encrypted"`
	TextLength      int     `json:"text_length"`
	AvgCharsPerPage float64 `json:"avg_chars_per_page"`
}

type ContentInfo struct {
	FullText       string                   `json:"full_text"`
	Kind           constants.PDFKind        `json:"kind"`
	Recommendation constants.Recommendation `json:"recommendation"`
}

type IntegrityInfo struct {
	MD5    string `json:"md5"`
	SHA256 string `json:"sha256"`
}

type ExtractionInfo struct {
	DurationMS  int64  `json:"duration_ms"`
	ExtractedAt string `json:"extracted_at"`
}

type MetadataExtractor struct {
	analyzer *Analyzer
	logger   *slog.Logger
}

func NewMetadataExtractor(logger *slog.Logger) *MetadataExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataExtractor{analyzer: NewAnalyzer(logger), logger: logger}
}

// ExtractMetadata builds the document report. Parse failures fill in what is
// known and leave the rest zeroed; hashes and timing are always present.
func (m *MetadataExtractor) ExtractMetadata(buf []byte, filename string) *Metadata {
	start := time.Now()

	md5sum := md5.Sum(buf)
	shasum := sha256.Sum256(buf)

	analysis := m.analyzer.Analyze(buf)

	meta := &Metadata{
		Info: map[string]string{},
		Structure: StructureInfo{
			PageCount:       analysis.PageCount,
			SizeBytes:       len(buf),
			TextLength:      analysis.TextLength,
			AvgCharsPerPage: analysis.AvgTextPerPage,
		},
		Integrity: IntegrityInfo{
			MD5:    hex.EncodeToString(md5sum[:]),
			SHA256: hex.EncodeToString(shasum[:]),
		},
	}

	if r, err := openReader(buf); err == nil {
		meta.Content.FullText, _ = fullText(r)
		meta.Info = infoDict(r)
	}
	meta.Content.Kind = analysis.Kind
	meta.Content.Recommendation = analysis.Recommendation

	if version, encrypted, err := structureInfo(buf); err == nil {
		meta.Structure.PDFVersion = version
		meta.Structure.Encrypted = encrypted
	} else {
		m.logger.Warn("pdf.metadata.structure_failed", "file", filename, "error", err)
	}

	meta.Extraction = ExtractionInfo{
		DurationMS:  time.Since(start).Milliseconds(),
		ExtractedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return meta
}

// structureInfo reads PDF version and encryption state via pdfcpu. Kept
// separate because pdfcpu rejects some damaged files the text parser accepts.
func structureInfo(buf []byte) (version string, encrypted bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdfcpu panic: %v", rec)
		}
	}()
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(buf), conf)
	if err != nil {
		return "", false, fmt.Errorf("pdfcpu read: %w", err)
	}
	if ctx.HeaderVersion != nil {
		version = ctx.HeaderVersion.String()
	}
	return version, ctx.Encrypt != nil, nil
}

// infoDict flattens the /Info dictionary into strings, normalizing the two
// well-known date entries to RFC3339.
func infoDict(r *ledongthuc.Reader) map[string]string {
	out := map[string]string{}
	defer func() { _ = recover() }()
	info := r.Trailer().Key("Info")
	if info.Kind() != ledongthuc.Dict {
		return out
	}
	for _, k := range info.Keys() {
		v := info.Key(k)
		if v.Kind() != ledongthuc.String {
			continue
		}
		val := v.Text()
		switch k {
		case "CreationDate":
			out["created_at"] = pdfDate(val)
		case "ModDate":
			out["modified_at"] = pdfDate(val)
		case "Title":
			out["title"] = val
		case "Author":
			out["author"] = val
		case "Creator":
			out["creator"] = val
		case "Producer":
			out["producer"] = val
		default:
			out[k] = val
		}
	}
	return out
}

// pdfDate converts "D:20240115093000..." to RFC3339; unparseable values pass
// through unchanged.
func pdfDate(s string) string {
	raw := s
	if len(s) >= 2 && s[:2] == "D:" {
		s = s[2:]
	}
	if len(s) > 14 {
		s = s[:14]
	}
	for _, layout := range []string{"20060102150405", "200601021504", "20060102"} {
		if len(s) == len(layout) {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format(time.RFC3339)
			}
		}
	}
	return raw
}
