package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Pipeline PipelineConfig
	DocIntel DocIntelConfig
	Vision   VisionConfig
	LLM      LLMConfig
}

// PipelineConfig holds orchestrator-related configuration
type PipelineConfig struct {
	PrimaryProvider   string
	FallbackProvider  string // empty = no fallback
	Timeout           time.Duration
	AcceptConfidence  float32 // free-parser acceptance bar
	InvoiceGate       float32 // Level-1 confidence required to run the invoice pass
	EnrichmentEnabled bool
}

// DocIntelConfig holds document-intelligence provider configuration
type DocIntelConfig struct {
	Endpoint     string
	APIKey       string
	LayoutModel  string
	InvoiceModel string
	PollInterval time.Duration
	Timeout      time.Duration
}

// VisionConfig holds vision-agent provider configuration
type VisionConfig struct {
	APIKey  string
	Region  string // "eu" | "us"
	AgentID string
	Timeout time.Duration
}

// LLMConfig holds enrichment-model configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			PrimaryProvider:   getEnv("PRIMARY_PROVIDER", "ocr"),
			FallbackProvider:  getEnv("FALLBACK_PROVIDER", ""),
			Timeout:           getEnvAsDuration("EXTRACTION_TIMEOUT", 60*time.Second),
			AcceptConfidence:  getEnvAsFloat32("ACCEPT_CONFIDENCE", 0.6),
			InvoiceGate:       getEnvAsFloat32("INVOICE_GATE_CONFIDENCE", 0.4),
			EnrichmentEnabled: getEnvAsBool("ENRICHMENT_ENABLED", true),
		},
		DocIntel: DocIntelConfig{
			Endpoint:     getEnv("DOCINTEL_ENDPOINT", ""),
			APIKey:       getEnv("DOCINTEL_API_KEY", ""),
			LayoutModel:  getEnv("DOCINTEL_LAYOUT_MODEL", "prebuilt-layout"),
			InvoiceModel: getEnv("DOCINTEL_INVOICE_MODEL", "prebuilt-invoice"),
			PollInterval: getEnvAsDuration("DOCINTEL_POLL_INTERVAL", 1*time.Second),
			Timeout:      getEnvAsDuration("DOCINTEL_TIMEOUT", 45*time.Second),
		},
		Vision: VisionConfig{
			APIKey:  getEnv("VISION_API_KEY", ""),
			Region:  getEnv("VISION_REGION", "eu"),
			AgentID: getEnv("VISION_AGENT_ID", ""),
			Timeout: getEnvAsDuration("VISION_TIMEOUT", 45*time.Second),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration for the configured providers.
func (c *Config) Validate() error {
	if c.Pipeline.PrimaryProvider == "" {
		return NewAppError("CONFIG_ERROR", "PRIMARY_PROVIDER is required", ErrInvalidInput)
	}
	needsDocIntel := c.Pipeline.PrimaryProvider == "ocr" || c.Pipeline.FallbackProvider == "ocr"
	if needsDocIntel && (c.DocIntel.Endpoint == "" || c.DocIntel.APIKey == "") {
		return NewAppError("CONFIG_ERROR", "DOCINTEL_ENDPOINT and DOCINTEL_API_KEY are required", ErrInvalidInput)
	}
	needsVision := c.Pipeline.PrimaryProvider == "vision-schema" || c.Pipeline.FallbackProvider == "vision-schema"
	if needsVision && c.Vision.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "VISION_API_KEY is required", ErrInvalidInput)
	}
	return nil
}
