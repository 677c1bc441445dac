package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateViewPassThrough(t *testing.T) {
	raw := QueryDescriptor{Tags: []string{"db"}, OrderBy: OrderByScore, Limit: 5}
	got, err := TranslateView("", raw)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestTranslateViewUnanswered(t *testing.T) {
	got, err := TranslateView("unanswered", QueryDescriptor{NoAnswers: false})
	require.NoError(t, err)
	assert.True(t, got.RandomOrder)
	assert.True(t, got.NoAnswers)
	assert.False(t, got.NoCorrectAnswer)
}

func TestTranslateViewIncorrect(t *testing.T) {
	got, err := TranslateView("incorrect", QueryDescriptor{})
	require.NoError(t, err)
	assert.True(t, got.RandomOrder)
	assert.True(t, got.NoCorrectAnswer)
	assert.False(t, got.NoAnswers)
}

func TestTranslateViewHot(t *testing.T) {
	// The override wins over a conflicting raw sort key.
	got, err := TranslateView("hot", QueryDescriptor{OrderBy: OrderByCreated})
	require.NoError(t, err)
	assert.True(t, got.IncludeTrend)
	assert.Equal(t, OrderByTrend, got.OrderBy)
	assert.False(t, got.RandomOrder)
}

func TestTranslateViewKeepsUnrelatedFilters(t *testing.T) {
	raw := QueryDescriptor{Tags: []string{"go"}, Author: 3, Limit: 10}
	got, err := TranslateView("unanswered", raw)
	require.NoError(t, err)
	assert.Equal(t, raw.Tags, got.Tags)
	assert.Equal(t, raw.Author, got.Author)
	assert.Equal(t, raw.Limit, got.Limit)
}

func TestTranslateViewUnknown(t *testing.T) {
	_, err := TranslateView("trending", QueryDescriptor{})
	assert.Error(t, err)
}
