package model

type Tone string

const (
	TonePositive Tone = "positive"
	ToneNeutral  Tone = "neutral"
	ToneNegative Tone = "negative"
)

var Tones = []Tone{TonePositive, ToneNeutral, ToneNegative}

func (t Tone) Valid() bool {
	switch t {
	case TonePositive, ToneNeutral, ToneNegative:
		return true
	}
	return false
}

// Classification is the normalized output of the zero-shot classifier.
type Classification struct {
	Category   string             `json:"category"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
	LatencyMs  int64              `json:"latency_ms"`
}

type Summary struct {
	Summary   string `json:"summary"`
	Tone      Tone   `json:"tone"`
	LatencyMs int64  `json:"latency_ms"`
}

type AnalysisMeta struct {
	HFLatencyMs      int64 `json:"hf_latency_ms"`
	GeminiLatencyMs  int64 `json:"gemini_latency_ms"`
	TotalExecutionMs int64 `json:"total_execution_ms"`
}

type AnalysisResult struct {
	Category string             `json:"category"`
	HFScores map[string]float64 `json:"hf_scores"`
	Summary  string             `json:"summary"`
	Tone     Tone               `json:"tone"`
	Meta     AnalysisMeta       `json:"meta"`
}
