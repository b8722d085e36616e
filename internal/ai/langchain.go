package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
)

// LangchainCompleter adapts a langchaingo model to the Completer
// interface for providers beyond the native OpenAI-compatible client.
// Their transports expose no HTTP status to classify, so failures
// surface as KindUnknown except for deadline timeouts.
type LangchainCompleter struct {
	llm     llms.Model
	timeout time.Duration
	policy  RetryPolicy
	sleep   sleepFunc
}

// Compile-time check that LangchainCompleter implements Completer.
var _ Completer = (*LangchainCompleter)(nil)

// NewOllamaCompleter creates a completer backed by a local Ollama server.
func NewOllamaCompleter(host, model string) (*LangchainCompleter, error) {
	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(host),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama model: %w", err)
	}
	return newLangchainCompleter(llm), nil
}

// NewAnthropicCompleter creates a completer backed by the Anthropic API.
func NewAnthropicCompleter(apiKey, model string) (*LangchainCompleter, error) {
	if apiKey == "" {
		return nil, &Error{Kind: KindCredentialMissing}
	}
	llm, err := anthropic.New(
		anthropic.WithToken(apiKey),
		anthropic.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create anthropic model: %w", err)
	}
	return newLangchainCompleter(llm), nil
}

func newLangchainCompleter(llm llms.Model) *LangchainCompleter {
	return &LangchainCompleter{
		llm:     llm,
		timeout: RequestTimeout,
		policy:  DefaultRetryPolicy(),
		sleep:   sleepContext,
	}
}

// Complete sends text as a single prompt and returns the trimmed reply.
func (l *LangchainCompleter) Complete(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &Error{Kind: KindEmptyRequest}
	}

	return retry(ctx, l.policy, l.sleep, func(int) (string, error) {
		reqCtx, cancel := context.WithTimeout(ctx, l.timeout)
		defer cancel()

		out, err := llms.GenerateFromSinglePrompt(reqCtx, l.llm, text)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return "", &Error{Kind: KindTimeout}
			}
			return "", &Error{Kind: KindUnknown, Message: err.Error()}
		}

		out = strings.TrimSpace(out)
		if out == "" {
			return "", &Error{Kind: KindEmptyResponse}
		}
		return out, nil
	})
}
