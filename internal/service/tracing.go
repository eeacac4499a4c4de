package service

import (
	"time"

	"go.uber.org/zap"
)

// TokenUsage carries the provider's token accounting for one call.
// Fields default to zero when the provider omits usage data.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

const traceInputLimit = 200

// Tracer records one structured span per LLM call: span name, model,
// truncated input and token usage. Span emission is a non-critical side
// effect; it never fails the operation it describes.
type Tracer struct {
	logger *zap.Logger
}

// NewTracer creates a Tracer writing spans through the given logger.
func NewTracer(logger *zap.Logger) *Tracer {
	return &Tracer{logger: logger}
}

// LLMSpan emits one span for a completed LLM call.
func (t *Tracer) LLMSpan(name, model, input string, usage TokenUsage, elapsed time.Duration, err error) {
	if t == nil || t.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("span", name),
		zap.String("model", model),
		zap.String("input", truncate(input, traceInputLimit)),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
		zap.Int("total_tokens", usage.TotalTokens),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		t.logger.Warn("llm call failed", append(fields, zap.Error(err))...)
		return
	}
	t.logger.Info("llm call", fields...)
}

// MarkReviewed tags the trace of a proposal as reviewed by the user.
// Failures here are swallowed: review tagging must never fail the
// apply operation it annotates.
func (t *Tracer) MarkReviewed(proposalID string, accepted bool) {
	if t == nil || t.logger == nil {
		return
	}
	t.logger.Info("proposal reviewed",
		zap.String("proposal_id", proposalID),
		zap.Bool("accepted", accepted))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
