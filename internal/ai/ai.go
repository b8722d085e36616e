// Package ai sends user messages to a text-completion service and
// classifies every way that can fail.
package ai

import (
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/parley/internal/config"
	"github.com/raphaelgruber/parley/internal/metrics"
)

// New creates a completer for the configured provider.
func New(cfg config.Config, logger *slog.Logger, collector *metrics.Collector) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewClient(ClientConfig{
			Endpoint:    cfg.Endpoint,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}, logger, collector), nil

	case config.ProviderOllama:
		return NewOllamaCompleter(cfg.OllamaHost, cfg.Model)

	case config.ProviderAnthropic:
		return NewAnthropicCompleter(cfg.APIKey, cfg.Model)

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
