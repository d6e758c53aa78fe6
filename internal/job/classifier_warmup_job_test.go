package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/textlens/internal/model"
)

type stubClassifier struct {
	text   string
	labels []string
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, text string, labels []string) (*model.Classification, error) {
	s.text, s.labels = text, labels
	if s.err != nil {
		return nil, s.err
	}
	return &model.Classification{Category: labels[0], LatencyMs: 5}, nil
}

func TestClassifierWarmupJob(t *testing.T) {
	c := &stubClassifier{}
	j := NewClassifierWarmupJob(c, []string{"technology"})
	require.Equal(t, "classifier_warmup", j.Name())
	require.NoError(t, j.Run(context.Background()))
	require.Equal(t, warmupText, c.text)
	require.Equal(t, []string{"technology"}, c.labels)

	c.err = errors.New("503")
	require.Error(t, j.Run(context.Background()))

	require.NoError(t, NewClassifierWarmupJob(nil, nil).Run(context.Background()))
}
