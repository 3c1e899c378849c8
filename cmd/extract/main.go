package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docstack/extractor/constants"
	"github.com/docstack/extractor/internal/common"
	"github.com/docstack/extractor/internal/enrich"
	"github.com/docstack/extractor/internal/extract"
	"github.com/docstack/extractor/internal/extract/docintel"
	"github.com/docstack/extractor/internal/extract/simpletext"
	"github.com/docstack/extractor/internal/extract/visionagent"
	"github.com/docstack/extractor/internal/pdf"
	"github.com/docstack/extractor/internal/pipeline"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "extract <file.pdf>")
		os.Exit(2)
	}
	path := os.Args[1]
	if !constants.IsAllowedExt(filepath.Ext(path)) {
		logger.Error("unsupported file extension", "path", path)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	primary, ok := constants.ParseProvider(cfg.Pipeline.PrimaryProvider)
	if !ok {
		logger.Error("unknown primary provider", "value", cfg.Pipeline.PrimaryProvider)
		os.Exit(1)
	}
	fallback, ok := constants.ParseProvider(cfg.Pipeline.FallbackProvider)
	if !ok {
		logger.Error("unknown fallback provider", "value", cfg.Pipeline.FallbackProvider)
		os.Exit(1)
	}

	providers := []extract.Strategy{
		docintel.NewExtractor(cfg.DocIntel, cfg.Pipeline.InvoiceGate, logger),
		visionagent.NewExtractor(cfg.Vision, logger),
	}
	orch := pipeline.NewOrchestrator(
		pipeline.Config{
			Primary:          primary,
			Fallback:         fallback,
			Timeout:          cfg.Pipeline.Timeout,
			AcceptConfidence: cfg.Pipeline.AcceptConfidence,
			EnrichEnabled:    cfg.Pipeline.EnrichmentEnabled,
		},
		pdf.NewAnalyzer(logger),
		simpletext.NewExtractor(logger),
		providers,
		enrich.NewEnricher(cfg.LLM, logger),
		logger,
	)

	res := orch.Extract(context.Background(), buf, filepath.Base(path))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	if !res.Success {
		os.Exit(1)
	}
}
