// Package pipeline owns strategy selection, the fallback chain and timeout
// enforcement. The orchestrator is the single seam converting every internal
// fault into the structured result contract: nothing below it may leak an
// error or panic to callers.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docstack/extractor/constants"
	"github.com/docstack/extractor/internal/common"
	"github.com/docstack/extractor/internal/extract"
	"github.com/docstack/extractor/internal/pdf"
)

// Config is the per-deployment orchestration surface. The acceptance bar and
// invoice gate are configurable rather than hardcoded; the defaults match the
// historical literals (0.6 and 0.4).
type Config struct {
	Primary          constants.Provider
	Fallback         constants.Provider // "" = no fallback
	Timeout          time.Duration
	AcceptConfidence float32 // free-parser acceptance bar, exclusive: conf must exceed it
	EnrichEnabled    bool
}

// Analyzer routes buffers; pdf.Analyzer is the production implementation.
type Analyzer interface {
	Analyze(buf []byte) *pdf.Analysis
}

// Enricher fills gaps on accepted invoice-like results.
type Enricher interface {
	Enrich(ctx context.Context, res *extract.ExtractionResult)
}

type Orchestrator struct {
	cfg        Config
	analyzer   Analyzer
	simple     extract.Strategy
	strategies map[constants.Provider]extract.Strategy
	enricher   Enricher
	logger     *slog.Logger
}

func NewOrchestrator(cfg Config, analyzer Analyzer, simple extract.Strategy, providers []extract.Strategy, enricher Enricher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.AcceptConfidence <= 0 {
		cfg.AcceptConfidence = 0.6
	}
	strategies := make(map[constants.Provider]extract.Strategy, len(providers))
	for _, s := range providers {
		strategies[s.Name()] = s
	}
	return &Orchestrator{
		cfg:        cfg,
		analyzer:   analyzer,
		simple:     simple,
		strategies: strategies,
		enricher:   enricher,
		logger:     logger,
	}
}

// Extract runs the full chain: analyze, free parser when the buffer is
// native, then the configured provider and its fallback. It never returns an
// error and never panics; total failure is a Success=false result carrying
// the aggregated attempt errors.
func (o *Orchestrator) Extract(ctx context.Context, buf []byte, filename string) *extract.ExtractionResult {
	rid := uuid.New().String()
	start := time.Now()
	var attemptErrs []string

	analysis := o.analyzer.Analyze(buf)
	o.logger.Info("orchestrator.analyzed",
		"req_id", rid, "file", filename,
		"kind", string(analysis.Kind),
		"recommendation", string(analysis.Recommendation),
		"avg_text_per_page", analysis.AvgTextPerPage)

	// Free path first when the buffer is native. A result at or below the
	// acceptance bar escalates instead of returning.
	if analysis.Recommendation == constants.RecommendSimpleParser && o.simple != nil {
		res, err := o.attempt(ctx, o.simple, buf, filename)
		switch {
		case err != nil:
			attemptErrs = append(attemptErrs, fmt.Sprintf("%s: %v", o.simple.Name(), err))
			o.logger.Warn("orchestrator.simple.failed", "req_id", rid, "error", err)
		case res.Success && res.Confidence > o.cfg.AcceptConfidence:
			o.logger.Info("orchestrator.simple.accepted",
				"req_id", rid, "confidence", res.Confidence)
			return o.finish(ctx, rid, res, start)
		default:
			attemptErrs = append(attemptErrs,
				fmt.Sprintf("%s: %v (confidence %.2f)", o.simple.Name(), common.ErrLowConfidence, res.Confidence))
			o.logger.Info("orchestrator.simple.escalated",
				"req_id", rid, "confidence", res.Confidence, "bar", o.cfg.AcceptConfidence,
				"text_quality", analysis.Details.TextQuality)
		}
	}

	for _, provider := range []constants.Provider{o.cfg.Primary, o.cfg.Fallback} {
		if provider == "" {
			continue
		}
		strategy, ok := o.strategies[provider]
		if !ok {
			attemptErrs = append(attemptErrs, fmt.Sprintf("%s: not configured", provider))
			continue
		}
		res, err := o.attempt(ctx, strategy, buf, filename)
		if err != nil || !res.Success {
			msg := "unsuccessful result"
			if err != nil {
				msg = err.Error()
			} else if res.Error != "" {
				msg = res.Error
			}
			attemptErrs = append(attemptErrs, fmt.Sprintf("%s: %s", provider, msg))
			o.logger.Warn("orchestrator.provider.failed",
				"req_id", rid, "provider", string(provider), "error", msg)
			continue
		}
		o.logger.Info("orchestrator.provider.accepted",
			"req_id", rid, "provider", string(provider), "confidence", res.Confidence)
		return o.finish(ctx, rid, res, start)
	}

	err := strings.Join(attemptErrs, "; ")
	if err == "" {
		err = common.ErrTotalFailure.Error()
	}
	o.logger.Error("orchestrator.total_failure", "req_id", rid, "file", filename, "error", err)
	res := extract.Failed(o.cfg.Primary, err)
	res.DurationMS = time.Since(start).Milliseconds()
	return res
}

// attempt races one strategy against the configured timeout. The race bounds
// the orchestrator's return, not the provider's network call: a late result
// is dropped, not awaited.
func (o *Orchestrator) attempt(ctx context.Context, s extract.Strategy, buf []byte, filename string) (*extract.ExtractionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	type outcome struct {
		res *extract.ExtractionResult
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- outcome{nil, fmt.Errorf("%w: %s panic: %v", common.ErrProvider, s.Name(), rec)}
			}
		}()
		res, err := s.Extract(ctx, buf, filename)
		ch <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s timed out after %s", common.ErrProvider, s.Name(), o.cfg.Timeout)
	case out := <-ch:
		if out.err == nil && out.res == nil {
			return nil, fmt.Errorf("%w: %s returned no result", common.ErrProvider, s.Name())
		}
		return out.res, out.err
	}
}

// finish applies the enrichment pass to accepted invoice-like results and
// stamps the overall duration.
func (o *Orchestrator) finish(ctx context.Context, rid string, res *extract.ExtractionResult, start time.Time) *extract.ExtractionResult {
	if o.cfg.EnrichEnabled && o.enricher != nil && res.DocumentType == constants.DocInvoice {
		o.enricher.Enrich(ctx, res)
	}
	res.Confidence = extract.ClampConfidence(res.Confidence)
	res.DurationMS = time.Since(start).Milliseconds()
	o.logger.Info("orchestrator.done",
		"req_id", rid,
		"provider", string(res.Provider),
		"document_type", string(res.DocumentType),
		"confidence", res.Confidence,
		"duration_ms", res.DurationMS)
	return res
}
