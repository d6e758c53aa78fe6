package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/textlens/internal/ai"
	"github.com/xxxsen/textlens/internal/model"
	appErr "github.com/xxxsen/textlens/internal/pkg/errors"
)

type countingClassifier struct {
	calls  int
	labels []string
	err    error
}

func (c *countingClassifier) Classify(ctx context.Context, text string, labels []string) (*model.Classification, error) {
	c.calls++
	c.labels = labels
	if c.err != nil {
		return nil, c.err
	}
	return &model.Classification{
		Category:   "sports",
		Confidence: 0.9,
		Scores:     map[string]float64{"sports": 0.9, "food": 0.1},
		LatencyMs:  120,
	}, nil
}

type countingSummarizer struct {
	calls    int
	category string
	err      error
}

func (s *countingSummarizer) Summarize(ctx context.Context, text string, category string) (*model.Summary, error) {
	s.calls++
	s.category = category
	if s.err != nil {
		return nil, s.err
	}
	return &model.Summary{Summary: "A match report.", Tone: model.TonePositive, LatencyMs: 300}, nil
}

func newTestAnalyzeService(c ai.Classifier, s ai.Summarizer) *AnalyzeService {
	return NewAnalyzeService(c, s, AnalyzeOptions{
		MinTextLength:   20,
		MaxTextLength:   100,
		CandidateLabels: []string{"sports", "food"},
	})
}

func TestAnalyzeRejectsShortTextWithoutUpstreamCalls(t *testing.T) {
	c, s := &countingClassifier{}, &countingSummarizer{}
	svc := newTestAnalyzeService(c, s)

	_, err := svc.Analyze(context.Background(), "u1", strings.Repeat("a", 19), nil)
	require.ErrorIs(t, err, ErrTextTooShort)
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = svc.Analyze(context.Background(), "u1", "   "+strings.Repeat("a", 10)+"          ", nil)
	require.ErrorIs(t, err, ErrTextTooShort)

	_, err = svc.Analyze(context.Background(), "u1", strings.Repeat("a", 101), nil)
	require.ErrorIs(t, err, ErrTextTooLong)

	require.Zero(t, c.calls)
	require.Zero(t, s.calls)
}

func TestAnalyzeCountsRunesNotBytes(t *testing.T) {
	c, s := &countingClassifier{}, &countingSummarizer{}
	_, err := newTestAnalyzeService(c, s).Analyze(context.Background(), "u1", strings.Repeat("é", 20), nil)
	require.NoError(t, err)
	require.Equal(t, 1, c.calls)
}

func TestAnalyzeMergesResults(t *testing.T) {
	c, s := &countingClassifier{}, &countingSummarizer{}
	res, err := newTestAnalyzeService(c, s).Analyze(context.Background(), "u1", strings.Repeat("a", 20), nil)
	require.NoError(t, err)
	require.Equal(t, "sports", res.Category)
	require.Equal(t, "sports", s.category)
	require.Equal(t, []string{"sports", "food"}, c.labels)
	require.Equal(t, "A match report.", res.Summary)
	require.Equal(t, model.TonePositive, res.Tone)
	require.Equal(t, int64(120), res.Meta.HFLatencyMs)
	require.Equal(t, int64(300), res.Meta.GeminiLatencyMs)
	require.GreaterOrEqual(t, res.Meta.TotalExecutionMs, int64(0))
}

func TestAnalyzeCustomLabels(t *testing.T) {
	c, s := &countingClassifier{}, &countingSummarizer{}
	_, err := newTestAnalyzeService(c, s).Analyze(context.Background(), "u1", strings.Repeat("a", 20), []string{"x", "y"})
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, c.labels)
}

func TestAnalyzeClassifierFailureSkipsSummarizer(t *testing.T) {
	upstream := &ai.UpstreamError{Service: ai.ServiceClassification, Err: &ai.StatusError{StatusCode: 500}}
	c, s := &countingClassifier{err: upstream}, &countingSummarizer{}
	_, err := newTestAnalyzeService(c, s).Analyze(context.Background(), "u1", strings.Repeat("a", 20), nil)
	require.ErrorIs(t, err, appErr.ErrUnavailable)
	var got *ai.UpstreamError
	require.True(t, errors.As(err, &got))
	require.Equal(t, ai.ServiceClassification, got.Service)
	require.Zero(t, s.calls)
}

func TestAnalyzeSummarizerFailure(t *testing.T) {
	upstream := &ai.UpstreamError{Service: ai.ServiceSummarization, Err: ai.ErrEmptyReply}
	c, s := &countingClassifier{}, &countingSummarizer{err: upstream}
	_, err := newTestAnalyzeService(c, s).Analyze(context.Background(), "u1", strings.Repeat("a", 20), nil)
	require.ErrorIs(t, err, appErr.ErrUnavailable)
	require.ErrorIs(t, err, ai.ErrEmptyReply)
}

func TestAnalyzeWithMockPipeline(t *testing.T) {
	src := ai.NewMockSource(3)
	labels := []string{"technology", "business", "science"}
	svc := NewAnalyzeService(ai.NewMockClassifier(src, labels, false), ai.NewMockSummarizer(src, false), AnalyzeOptions{
		MinTextLength:   20,
		CandidateLabels: labels,
	})
	res, err := svc.Analyze(context.Background(), "u1", "The new phone has a faster chip.", nil)
	require.NoError(t, err)
	require.Contains(t, labels, res.Category)
	require.True(t, res.Tone.Valid())
	require.NotEmpty(t, res.Summary)
}
