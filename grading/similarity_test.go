package grading

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider returns a fixed similarity or error, standing in for the
// remote oracle.
type stubProvider struct {
	score float64
	err   error
	calls int
}

func (s *stubProvider) Similarity(ctx context.Context, expected, actual string) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.score, nil
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{"bare number", "85", 85, false},
		{"decimal", "75.5", 75.5, false},
		{"with label", "SCORE: 92", 92, false},
		{"surrounded by prose", "I would rate this 67.25 out of 100.", 67.25, false},
		{"clamped high", "120", 100, false},
		{"rounded", "85.456", 85.46, false},
		{"no number", "no idea", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScore(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOracleUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildSimilarityPrompt(t *testing.T) {
	prompt := buildSimilarityPrompt("Photosynthesis converts light to energy.", "Plants turn sunlight into sugar.")

	assert.Contains(t, prompt, "Photosynthesis converts light to energy.")
	assert.Contains(t, prompt, "Plants turn sunlight into sugar.")
	assert.Contains(t, prompt, "EXPECTED ANSWER")
	assert.Contains(t, prompt, "STUDENT ANSWER")
	assert.True(t, strings.HasSuffix(prompt, "SCORE:"))
}

func TestCorrectEssay(t *testing.T) {
	ctx := context.Background()

	t.Run("maps similarity through the curve", func(t *testing.T) {
		provider := &stubProvider{score: 85}
		points, sim, err := CorrectEssay(ctx, provider, "expected", "actual", 10)
		require.NoError(t, err)
		require.NotNil(t, points)
		require.NotNil(t, sim)
		assert.Equal(t, 9.25, *points)
		assert.Equal(t, 85.0, *sim)
	})

	t.Run("nil provider leaves answer pending", func(t *testing.T) {
		points, sim, err := CorrectEssay(ctx, nil, "expected", "actual", 10)
		assert.ErrorIs(t, err, ErrOracleUnavailable)
		assert.Nil(t, points)
		assert.Nil(t, sim)
	})

	t.Run("oracle failure propagates", func(t *testing.T) {
		provider := &stubProvider{err: ErrOracleUnavailable}
		points, sim, err := CorrectEssay(ctx, provider, "expected", "actual", 10)
		assert.ErrorIs(t, err, ErrOracleUnavailable)
		assert.Nil(t, points)
		assert.Nil(t, sim)
	})

	t.Run("empty student answer scores zero without an oracle call", func(t *testing.T) {
		provider := &stubProvider{score: 85}
		points, sim, err := CorrectEssay(ctx, provider, "expected", "  ", 10)
		require.NoError(t, err)
		require.NotNil(t, points)
		assert.Equal(t, 0.0, *points)
		assert.Equal(t, 0.0, *sim)
		assert.Zero(t, provider.calls)
	})

	t.Run("empty gold answer scores zero", func(t *testing.T) {
		points, _, err := CorrectEssay(ctx, &stubProvider{score: 90}, "", "some answer", 10)
		require.NoError(t, err)
		assert.Equal(t, 0.0, *points)
	})
}
