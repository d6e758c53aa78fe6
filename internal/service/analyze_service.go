package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/textlens/internal/ai"
	"github.com/xxxsen/textlens/internal/model"
	appErr "github.com/xxxsen/textlens/internal/pkg/errors"
)

var (
	ErrTextTooShort = fmt.Errorf("%w: text too short", appErr.ErrInvalid)
	ErrTextTooLong  = fmt.Errorf("%w: text too long", appErr.ErrInvalid)
)

type AnalyzeOptions struct {
	MinTextLength   int
	MaxTextLength   int
	CandidateLabels []string
}

type AnalyzeService struct {
	classifier ai.Classifier
	summarizer ai.Summarizer
	opts       AnalyzeOptions
}

func NewAnalyzeService(classifier ai.Classifier, summarizer ai.Summarizer, opts AnalyzeOptions) *AnalyzeService {
	return &AnalyzeService{classifier: classifier, summarizer: summarizer, opts: opts}
}

func (s *AnalyzeService) validate(text string) error {
	n := utf8.RuneCountInString(text)
	if n < s.opts.MinTextLength {
		return fmt.Errorf("%w: text must be at least %d characters long", ErrTextTooShort, s.opts.MinTextLength)
	}
	if s.opts.MaxTextLength > 0 && n > s.opts.MaxTextLength {
		return fmt.Errorf("%w: text must be at most %d characters long", ErrTextTooLong, s.opts.MaxTextLength)
	}
	return nil
}

// Analyze classifies text, then summarizes it with the predicted category. Any upstream failure
// aborts the whole analysis.
func (s *AnalyzeService) Analyze(ctx context.Context, userID, text string, labels []string) (*model.AnalysisResult, error) {
	start := time.Now()
	text = strings.TrimSpace(text)
	if err := s.validate(text); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		labels = s.opts.CandidateLabels
	}
	logger := logutil.GetLogger(ctx).With(zap.String("user_id", userID))
	logger.Info("analysis started", zap.Int("text_length", utf8.RuneCountInString(text)))

	cls, err := s.classifier.Classify(ctx, text, labels)
	if err != nil {
		return nil, wrapUpstream(err)
	}
	sum, err := s.summarizer.Summarize(ctx, text, cls.Category)
	if err != nil {
		return nil, wrapUpstream(err)
	}
	res := &model.AnalysisResult{
		Category: cls.Category,
		HFScores: cls.Scores,
		Summary:  sum.Summary,
		Tone:     sum.Tone,
		Meta: model.AnalysisMeta{
			HFLatencyMs:      nonNegative(cls.LatencyMs),
			GeminiLatencyMs:  nonNegative(sum.LatencyMs),
			TotalExecutionMs: time.Since(start).Milliseconds(),
		},
	}
	logger.Info("analysis complete",
		zap.String("category", res.Category),
		zap.String("tone", string(res.Tone)),
		zap.Int64("hf_latency_ms", res.Meta.HFLatencyMs),
		zap.Int64("gemini_latency_ms", res.Meta.GeminiLatencyMs),
		zap.Int64("total_execution_ms", res.Meta.TotalExecutionMs))
	return res, nil
}

// wrapUpstream tags upstream failures as unavailable while keeping the typed cause reachable.
func wrapUpstream(err error) error {
	var upstream *ai.UpstreamError
	if errors.As(err, &upstream) {
		return fmt.Errorf("%w: %w", appErr.ErrUnavailable, err)
	}
	return err
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
