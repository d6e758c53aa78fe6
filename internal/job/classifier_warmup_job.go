package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/textlens/internal/ai"
)

const warmupText = "Keeping the classification model loaded between requests."

// ClassifierWarmupJob sends a tiny request so the hosted classifier model stays loaded.
type ClassifierWarmupJob struct {
	classifier ai.Classifier
	labels     []string
}

func NewClassifierWarmupJob(classifier ai.Classifier, labels []string) *ClassifierWarmupJob {
	return &ClassifierWarmupJob{classifier: classifier, labels: labels}
}

func (j *ClassifierWarmupJob) Name() string {
	return "classifier_warmup"
}

func (j *ClassifierWarmupJob) Run(ctx context.Context) error {
	if j.classifier == nil {
		return nil
	}
	res, err := j.classifier.Classify(ctx, warmupText, j.labels)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Debug("classifier warm", zap.Int64("latency_ms", res.LatencyMs))
	return nil
}
