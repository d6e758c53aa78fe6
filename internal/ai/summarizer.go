package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/textlens/internal/model"
)

const defaultMaxSummaryChars = 500

type Summarizer interface {
	Summarize(ctx context.Context, text string, category string) (*model.Summary, error)
}

type GenerativeSummarizerConfig struct {
	Timeout         time.Duration
	MaxAttempts     int
	MaxSummaryChars int
}

// GenerativeSummarizer asks a text generator for a summary and a tone.
type GenerativeSummarizer struct {
	gen    IGenerator
	cfg    GenerativeSummarizerConfig
	policy RetryPolicy
}

func NewGenerativeSummarizer(gen IGenerator, cfg GenerativeSummarizerConfig) *GenerativeSummarizer {
	if cfg.MaxSummaryChars <= 0 {
		cfg.MaxSummaryChars = defaultMaxSummaryChars
	}
	return &GenerativeSummarizer{
		gen:    gen,
		cfg:    cfg,
		policy: RetryPolicy{MaxAttempts: cfg.MaxAttempts},
	}
}

const summaryPromptTemplate = `Analyze the following text that has been classified as "%s".

TEXT:
%s

Respond in this exact JSON format:
{
    "summary": "A clear, concise 2-3 sentence summary of the main points",
    "tone": "positive OR neutral OR negative"
}

Rules:
- Summary must be in the same language as the original text
- Tone must be exactly one of: positive, neutral, negative
- Keep summary under 150 words
- Be objective in your analysis`

func buildSummaryPrompt(text, category string) string {
	return fmt.Sprintf(summaryPromptTemplate, category, text)
}

func (s *GenerativeSummarizer) Summarize(ctx context.Context, text string, category string) (*model.Summary, error) {
	if s.gen == nil {
		return nil, &UpstreamError{Service: ServiceSummarization, Err: ErrProviderNotConfigured}
	}
	logger := logutil.GetLogger(ctx)
	prompt := buildSummaryPrompt(text, category)
	start := time.Now()
	var reply string
	err := s.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		callCtx := ctx
		if s.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
		}
		out, err := s.gen.Generate(callCtx, prompt)
		if err == nil && strings.TrimSpace(out) == "" {
			err = ErrEmptyReply
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("summarizer attempt failed",
				zap.Error(err), zap.Int("attempt", attempt), zap.Int("max_attempts", s.cfg.MaxAttempts))
			return Retryable(err)
		}
		reply = out
		return nil
	})
	if err != nil {
		logger.Error("summarization failed", zap.Error(err))
		return nil, &UpstreamError{Service: ServiceSummarization, Err: err}
	}
	result := ParseSummaryReply(reply, s.cfg.MaxSummaryChars)
	result.LatencyMs = time.Since(start).Milliseconds()
	logger.Info("summarization complete",
		zap.String("tone", string(result.Tone)),
		zap.Int64("latency_ms", result.LatencyMs))
	return result, nil
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{[^{}]*\}`)

type summaryReply struct {
	Summary string `json:"summary"`
	Tone    string `json:"tone"`
}

// ParseSummaryReply extracts summary and tone from a model reply. It tries the first json
// object in the reply, then "Summary:"/"Tone:" lines, then falls back to the raw reply cut to
// maxChars runes.
func ParseSummaryReply(reply string, maxChars int) *model.Summary {
	if maxChars <= 0 {
		maxChars = defaultMaxSummaryChars
	}
	var summary, tone string
	if span := jsonObjectPattern.FindString(reply); span != "" {
		var sr summaryReply
		if err := json.Unmarshal([]byte(span), &sr); err == nil {
			summary = strings.TrimSpace(sr.Summary)
			tone = sr.Tone
		}
	}
	if summary == "" {
		lineSummary, lineTone := parseSummaryLines(reply)
		summary = lineSummary
		if tone == "" {
			tone = lineTone
		}
	}
	if summary == "" {
		summary = truncateRunes(strings.TrimSpace(reply), maxChars)
	}
	return &model.Summary{Summary: summary, Tone: NormalizeTone(tone)}
}

// parseSummaryLines reads "Summary:" and "Tone:" lines; the key must start the line.
func parseSummaryLines(reply string) (string, string) {
	var summary, tone string
	for _, line := range strings.Split(strings.TrimSpace(reply), "\n") {
		key, value, found := strings.Cut(strings.TrimLeft(line, " \t*-#"), ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(strings.TrimLeft(value, "*"))
		switch strings.ToLower(strings.TrimRight(key, " *")) {
		case "summary", "résumé":
			summary = value
		case "tone", "ton":
			tone = value
		}
	}
	return summary, tone
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
