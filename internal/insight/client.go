package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/datachat/internal/domain"
	"github.com/Rrens/datachat/internal/llm"
	"github.com/rs/zerolog"
)

// Client turns a dataset profile and a user query into a hosted-model request
// and back into text. Transport and provider failures are converted into
// descriptive response strings so a flaky call never terminates the session.
type Client struct {
	router   *llm.Router
	provider string
	model    string
	timeout  time.Duration
	log      zerolog.Logger
}

// NewClient creates an insight client bound to a provider on the router
func NewClient(router *llm.Router, provider, model string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		router:   router,
		provider: provider,
		model:    model,
		timeout:  timeout,
		log:      log,
	}
}

// Analyze requests a full analysis of the dataset, or an answer to a specific
// question when query is non-empty
func (c *Client) Analyze(ctx context.Context, profile *domain.Profile, summary, query string) string {
	req := llm.BuildAnalysisRequest(profile, summary, query)
	return c.complete(ctx, req, "Error generating analysis")
}

// Chat requests a conversational response to a message about the dataset
func (c *Client) Chat(ctx context.Context, profile *domain.Profile, summary string, history []domain.Message, message string) string {
	req := llm.BuildChatRequest(profile, summary, history, message)
	return c.complete(ctx, req, "Error")
}

func (c *Client) complete(ctx context.Context, req llm.Request, errPrefix string) string {
	provider, err := c.router.GetProvider(c.provider)
	if err != nil {
		c.log.Error().Err(err).Str("provider", c.provider).Msg("LLM provider unavailable")
		return fmt.Sprintf("%s: %v", errPrefix, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := provider.Complete(ctx, req, c.model)
	if err != nil {
		c.log.Warn().Err(err).Str("provider", provider.Name()).Msg("LLM completion failed")
		return fmt.Sprintf("%s: %v", errPrefix, err)
	}

	c.log.Debug().
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("LLM completion")

	return resp.Text
}
