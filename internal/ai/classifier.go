package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/textlens/internal/model"
)

const defaultEstimatedLoadSeconds = 20

type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) (*model.Classification, error)
}

type HFClassifierConfig struct {
	Endpoint      string
	Token         string
	Timeout       time.Duration
	MaxAttempts   int
	RetryDelay    time.Duration
	DefaultLabels []string
}

// HFClassifier calls a HuggingFace zero-shot classification endpoint.
type HFClassifier struct {
	cfg    HFClassifierConfig
	client *http.Client
	policy RetryPolicy
}

func NewHFClassifier(cfg HFClassifierConfig) *HFClassifier {
	c := &HFClassifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	c.policy = RetryPolicy{MaxAttempts: cfg.MaxAttempts, Backoff: c.backoff}
	return c
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type hfLoadingBody struct {
	EstimatedTime *float64 `json:"estimated_time"`
}

func (c *HFClassifier) Classify(ctx context.Context, text string, labels []string) (*model.Classification, error) {
	if len(labels) == 0 {
		labels = c.cfg.DefaultLabels
	}
	payload, err := json.Marshal(hfRequest{Inputs: text, Parameters: hfParameters{CandidateLabels: labels}})
	if err != nil {
		return nil, err
	}
	logger := logutil.GetLogger(ctx)
	start := time.Now()
	var scores []LabelScore
	err = c.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		res, err := c.do(ctx, payload)
		if err != nil {
			var loading *ModelLoadingError
			var transport *TransportError
			switch {
			case errors.As(err, &loading):
				logger.Warn("classifier model loading",
					zap.Float64("estimated_time", loading.EstimatedTime),
					zap.Int("attempt", attempt), zap.Int("max_attempts", c.cfg.MaxAttempts))
				return Retryable(err)
			case errors.As(err, &transport):
				logger.Warn("classifier request failed",
					zap.Error(err), zap.Int("attempt", attempt), zap.Int("max_attempts", c.cfg.MaxAttempts))
				return Retryable(err)
			}
			return err
		}
		scores = res
		return nil
	})
	if err != nil {
		logger.Error("classification failed", zap.Error(err))
		return nil, &UpstreamError{Service: ServiceClassification, Err: err}
	}
	result := summarizeScores(scores)
	result.LatencyMs = time.Since(start).Milliseconds()
	logger.Info("classification complete",
		zap.String("category", result.Category),
		zap.Float64("confidence", result.Confidence),
		zap.Int64("latency_ms", result.LatencyMs))
	return result, nil
}

// backoff waits for the model to load, but never longer than the configured retry delay.
func (c *HFClassifier) backoff(err error) time.Duration {
	var loading *ModelLoadingError
	if errors.As(err, &loading) {
		// compare in float first, huge estimates overflow time.Duration
		wait := loading.EstimatedTime * float64(time.Second)
		if wait < float64(c.cfg.RetryDelay) {
			if wait < 0 {
				return 0
			}
			return time.Duration(wait)
		}
	}
	return c.cfg.RetryDelay
}

func (c *HFClassifier) do(ctx context.Context, payload []byte) ([]LabelScore, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Timeout: isTimeout(err), Err: err}
	}
	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		estimated := float64(defaultEstimatedLoadSeconds)
		var lb hfLoadingBody
		if json.Unmarshal(body, &lb) == nil && lb.EstimatedTime != nil {
			estimated = *lb.EstimatedTime
		}
		return nil, &ModelLoadingError{EstimatedTime: estimated}
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return decodeClassification(body)
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// classificationPayload is one of the shapes the inference api has answered with.
type classificationPayload interface {
	labelScores() ([]LabelScore, error)
}

// pairListPayload: [{"label": "...", "score": 0.9}, ...]
type pairListPayload []LabelScore

func (p pairListPayload) labelScores() ([]LabelScore, error) {
	return []LabelScore(p), nil
}

// parallelListPayload: {"labels": [...], "scores": [...]}
type parallelListPayload struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

func (p parallelListPayload) labelScores() ([]LabelScore, error) {
	n := len(p.Labels)
	if len(p.Scores) < n {
		n = len(p.Scores)
	}
	out := make([]LabelScore, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, LabelScore{Label: p.Labels[i], Score: p.Scores[i]})
	}
	return out, nil
}

func parseClassificationPayload(body []byte) (classificationPayload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrEmptyClassification
	}
	switch trimmed[0] {
	case '[':
		var p pairListPayload
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("decode classification list: %w", err)
		}
		return p, nil
	case '{':
		var p parallelListPayload
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("decode classification object: %w", err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("unexpected classification payload")
}

func decodeClassification(body []byte) ([]LabelScore, error) {
	payload, err := parseClassificationPayload(body)
	if err != nil {
		return nil, err
	}
	scores, err := payload.labelScores()
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, ErrEmptyClassification
	}
	for i := range scores {
		if scores[i].Label == "" {
			scores[i].Label = "unknown"
		}
	}
	return scores, nil
}

// summarizeScores builds the label map and picks the highest score, first one wins on ties.
func summarizeScores(scores []LabelScore) *model.Classification {
	out := &model.Classification{Scores: make(map[string]float64, len(scores))}
	best := -1
	for i, s := range scores {
		out.Scores[s.Label] = round4(s.Score)
		if best < 0 || s.Score > scores[best].Score {
			best = i
		}
	}
	if best >= 0 {
		out.Category = scores[best].Label
		out.Confidence = round4(scores[best].Score)
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
