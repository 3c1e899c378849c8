package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docstack/extractor/internal/pdf"
)

// analyze prints the type-analyzer verdict and the metadata report for a PDF
// without calling any paid provider.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "analyze <file.pdf>")
		os.Exit(2)
	}
	path := os.Args[1]

	buf, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	report := struct {
		Analysis *pdf.Analysis `json:"analysis"`
		Metadata *pdf.Metadata `json:"metadata"`
	}{
		Analysis: pdf.NewAnalyzer(logger).Analyze(buf),
		Metadata: pdf.NewMetadataExtractor(logger).ExtractMetadata(buf, filepath.Base(path)),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error("encode report", "error", err)
		os.Exit(1)
	}
}
