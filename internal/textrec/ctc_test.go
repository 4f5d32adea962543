package textrec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollapseCTC(t *testing.T) {
	indices := []int{0, 1, 1, 0, 2, 2, 2, 1, 0}
	probs := []float64{0.9, 0.8, 0.7, 0.9, 0.6, 0.5, 0.4, 0.3, 0.9}

	collapsed, kept := collapseCTC(indices, probs, 0)
	assert.Equal(t, []int{1, 2, 1}, collapsed)
	assert.Equal(t, []float64{0.8, 0.6, 0.3}, kept)
}

func TestCollapseCTCBlankSeparatesRepeats(t *testing.T) {
	collapsed, _ := collapseCTC([]int{1, 0, 1}, []float64{0.9, 0.9, 0.9}, 0)
	assert.Equal(t, []int{1, 1}, collapsed)
}

func TestCollapseCTCEmpty(t *testing.T) {
	collapsed, kept := collapseCTC(nil, nil, 0)
	assert.Empty(t, collapsed)
	assert.Empty(t, kept)
}

func TestDecodeCTCGreedyTimeMajor(t *testing.T) {
	// [1, T=3, C=3]: argmax per step 1, 1, 2 -> collapsed {1, 2}.
	logits := []float32{
		0.1, 0.8, 0.1,
		0.1, 0.7, 0.2,
		0.2, 0.1, 0.7,
	}
	seq := decodeCTCGreedy(logits, []int64{1, 3, 3}, 0, false)
	require.Equal(t, []int{1, 2}, seq.collapsed)
	require.Len(t, seq.probs, 2)
	// Rows already sum to 1, so probabilities pass through.
	assert.InDelta(t, 0.8, seq.probs[0], 1e-6)
	assert.InDelta(t, 0.7, seq.probs[1], 1e-6)
}

func TestDecodeCTCGreedyClassesMajor(t *testing.T) {
	// [1, C=3, T=2] with class planes laid out contiguously: step 0
	// picks class 1, step 1 picks class 2.
	logits := []float32{
		0.1, 0.2, // class 0 over time
		0.8, 0.1, // class 1 over time
		0.1, 0.7, // class 2 over time
	}
	seq := decodeCTCGreedy(logits, []int64{1, 3, 2}, 0, true)
	assert.Equal(t, []int{1, 2}, seq.collapsed)
}

func TestDecodeCTCGreedyLogitsSoftmax(t *testing.T) {
	// Unnormalized rows go through a softmax; the winner's probability
	// lands strictly between 0 and 1.
	logits := []float32{
		-1, 4, 0,
	}
	seq := decodeCTCGreedy(logits, []int64{1, 1, 3}, 0, false)
	require.Equal(t, []int{1}, seq.collapsed)
	assert.Greater(t, seq.probs[0], 0.9)
	assert.Less(t, seq.probs[0], 1.0)
}

func TestDecodeCTCGreedyBadShape(t *testing.T) {
	assert.Empty(t, decodeCTCGreedy([]float32{1}, []int64{1}, 0, false).collapsed)
	assert.Empty(t, decodeCTCGreedy([]float32{1}, []int64{1, 2, 3}, 0, false).collapsed)
}

func TestMeanConfidence(t *testing.T) {
	assert.InDelta(t, 0.5, meanConfidence([]float64{0.25, 0.75}), 1e-12)
	assert.Zero(t, meanConfidence(nil))
}

func TestClassesFirstLayout(t *testing.T) {
	assert.False(t, classesFirstLayout([]int64{1, 40, 97}, 97))
	assert.True(t, classesFirstLayout([]int64{1, 97, 40}, 97))
	assert.False(t, classesFirstLayout([]int64{1, 40, 97, 1}, 97))
	assert.False(t, classesFirstLayout([]int64{1, 2}, 97))
}
