package docintel

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docstack/extractor/internal/common"
)

const apiVersion = "2024-02-29-preview"

// httpDoer lets tests stub the transport.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	cfg    common.DocIntelConfig
	http   httpDoer
	logger *slog.Logger
}

func NewClient(cfg common.DocIntelConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Analyze submits the buffer to a document model and polls the long-running
// operation until it settles. Every fault comes back as an error; this client
// never panics into the orchestrator.
func (c *Client) Analyze(ctx context.Context, modelID string, buf []byte) (*AnalyzeResult, json.RawMessage, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("docintel.analyze.start",
		"req_id", rid, "model", modelID, "bytes", len(buf))

	opURL, err := c.submit(ctx, modelID, buf)
	if err != nil {
		c.logger.Error("docintel.analyze.submit_error",
			"req_id", rid, "model", modelID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, nil, err
	}

	raw, err := c.poll(ctx, opURL)
	if err != nil {
		c.logger.Error("docintel.analyze.poll_error",
			"req_id", rid, "model", modelID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, raw, err
	}

	var op analyzeOperation
	if err := json.Unmarshal(raw, &op); err != nil {
		return nil, raw, fmt.Errorf("decode analyze result: %w", err)
	}
	if op.Status != "succeeded" || op.AnalyzeResult == nil {
		msg := "analysis failed"
		if op.Error != nil {
			msg = op.Error.Code + ": " + op.Error.Message
		}
		return nil, raw, fmt.Errorf("%s: %w", msg, common.ErrProvider)
	}

	c.logger.Info("docintel.analyze.ok",
		"req_id", rid, "model", modelID,
		"pages", len(op.AnalyzeResult.Pages),
		"documents", len(op.AnalyzeResult.Documents),
		"content_bytes", len(op.AnalyzeResult.Content),
		"elapsed_ms", time.Since(start).Milliseconds())
	return op.AnalyzeResult, raw, nil
}

func (c *Client) submit(ctx context.Context, modelID string, buf []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), modelID, apiVersion)

	body, err := json.Marshal(map[string]string{
		"base64Source": base64.StdEncoding.EncodeToString(buf),
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrProvider, err)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return "", fmt.Errorf("%w: submit status %d: %s", common.ErrProvider, resp.StatusCode, string(b))
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", fmt.Errorf("%w: no Operation-Location header", common.ErrProvider)
	}
	return opURL, nil
}

func (c *Client) poll(ctx context.Context, opURL string) (json.RawMessage, error) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrProvider, err)
		}
		raw, err := io.ReadAll(resp.Body)
		c.closeBody(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read poll body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return raw, fmt.Errorf("%w: poll status %d", common.ErrProvider, resp.StatusCode)
		}

		var op struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(raw, &op); err != nil {
			return raw, fmt.Errorf("decode poll body: %w", err)
		}
		switch op.Status {
		case "succeeded", "failed":
			return raw, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		c.logger.Warn("docintel response body close error", "error", err)
	}
}
