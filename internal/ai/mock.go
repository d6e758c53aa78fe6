package ai

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/textlens/internal/model"
)

var mockSummaries = map[string]string{
	"technology":    "This text discusses technological innovations and digital advancements that are shaping the modern world.",
	"business":      "The content covers business strategies, market trends, and economic developments in the corporate sector.",
	"politics":      "This article analyzes political events, policy decisions, and governmental actions affecting society.",
	"sports":        "The text reports on athletic competitions, team performances, and sports-related news.",
	"entertainment": "This content explores entertainment industry news, celebrity updates, and media productions.",
	"health":        "The text provides insights on health topics, medical research, and wellness recommendations.",
	"science":       "This article examines scientific discoveries, research findings, and technological breakthroughs.",
	"education":     "The content discusses educational trends, learning methodologies, and academic developments.",
	"travel":        "This text covers travel destinations, tourism experiences, and adventure recommendations.",
	"food":          "The content explores culinary topics, recipes, and food industry trends.",
}

const mockGenericSummary = "This text contains interesting content that has been analyzed by our AI system."

// MockSource is a goroutine safe random source shared by the mock classifier and summarizer.
type MockSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockSource seeds the generator; a zero seed means time based.
func NewMockSource(seed int64) *MockSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockSource{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

func (m *MockSource) float64() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64()
}

// intRange returns a value in [lo, hi].
func (m *MockSource) intRange(lo, hi int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo + m.rng.IntN(hi-lo+1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type MockClassifier struct {
	src           *MockSource
	defaultLabels []string
	simulate      bool
}

func NewMockClassifier(src *MockSource, defaultLabels []string, simulateLatency bool) *MockClassifier {
	return &MockClassifier{src: src, defaultLabels: defaultLabels, simulate: simulateLatency}
}

func (m *MockClassifier) Classify(ctx context.Context, text string, labels []string) (*model.Classification, error) {
	if len(labels) == 0 {
		labels = m.defaultLabels
	}
	if len(labels) == 0 {
		return nil, &UpstreamError{Service: ServiceClassification, Err: ErrEmptyClassification}
	}
	latency := m.src.intRange(100, 500)
	if m.simulate {
		if err := sleepCtx(ctx, time.Duration(latency)*time.Millisecond); err != nil {
			return nil, &UpstreamError{Service: ServiceClassification, Err: err}
		}
	}
	scores := make([]LabelScore, 0, len(labels))
	remaining := 1.0
	for i, label := range labels {
		if i == len(labels)-1 {
			scores = append(scores, LabelScore{Label: label, Score: remaining})
			break
		}
		score := m.src.float64() * remaining * 0.8
		scores = append(scores, LabelScore{Label: label, Score: score})
		remaining -= score
	}
	result := summarizeScores(scores)
	result.LatencyMs = int64(latency)
	logutil.GetLogger(ctx).Debug("mock classification", zap.String("category", result.Category))
	return result, nil
}

type MockSummarizer struct {
	src      *MockSource
	simulate bool
}

func NewMockSummarizer(src *MockSource, simulateLatency bool) *MockSummarizer {
	return &MockSummarizer{src: src, simulate: simulateLatency}
}

func (m *MockSummarizer) Summarize(ctx context.Context, text string, category string) (*model.Summary, error) {
	latency := m.src.intRange(200, 800)
	if m.simulate {
		if err := sleepCtx(ctx, time.Duration(latency)*time.Millisecond); err != nil {
			return nil, &UpstreamError{Service: ServiceSummarization, Err: err}
		}
	}
	summary, ok := mockSummaries[strings.ToLower(category)]
	if !ok {
		summary = mockGenericSummary
	}
	tone := model.Tones[m.src.intRange(0, len(model.Tones)-1)]
	return &model.Summary{Summary: summary, Tone: tone, LatencyMs: int64(latency)}, nil
}
