package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct{}

func (stubEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func TestEmbedBatch_RejectedSubmissionsCountTowardProgress(t *testing.T) {
	b, err := NewBatchEmbedder(stubEmbedder{}, 2)
	require.NoError(t, err)
	defer b.Release()

	// Closing the pool underneath makes every Submit fail without
	// tripping the released guard, so the rejection path runs.
	b.pool.Release()

	var calls [][2]int
	items, err := b.EmbedBatch(context.Background(), []string{"a", "b", "c"},
		func(completed, total int) {
			calls = append(calls, [2]int{completed, total})
		})
	require.NoError(t, err)
	require.Len(t, items, 3)

	for _, item := range items {
		assert.Error(t, item.Err)
		assert.Nil(t, item.Vector)
	}

	// Progress must still end at (3, 3) even though no item ran.
	require.Len(t, calls, 3)
	for i, call := range calls {
		assert.Equal(t, i+1, call[0])
		assert.Equal(t, 3, call[1])
	}
}
