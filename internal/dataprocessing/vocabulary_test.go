package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksentiment/internal/config"
	"stocksentiment/pkg/contracts/domain"
)

func TestVocabulary_Label(t *testing.T) {
	tests := []struct {
		vocabulary string
		raw        string
		want       domain.Sentiment
		ok         bool
	}{
		{config.VocabularyNumericCode, "1", domain.Negative, true},
		{config.VocabularyNumericCode, "3", domain.Neutral, true},
		{config.VocabularyNumericCode, "5", domain.Positive, true},
		{config.VocabularyNumericCode, "2", 0, false},
		{config.VocabularyNumericCode, "5.0", 0, false},
		{config.VocabularyNumericCode, "not_relevant", 0, false},

		{config.VocabularyWordLabel, "negative", domain.Negative, true},
		{config.VocabularyWordLabel, "neutral", domain.Neutral, true},
		{config.VocabularyWordLabel, "positive", domain.Positive, true},
		{config.VocabularyWordLabel, "Positive", 0, false},

		{config.VocabularyBinaryCode, "0", domain.Negative, true},
		{config.VocabularyBinaryCode, "1", domain.Positive, true},
		{config.VocabularyBinaryCode, "1.0", domain.Positive, true},
		{config.VocabularyBinaryCode, "-1", 0, false},

		{config.VocabularyPreNormalized, "-1", domain.Negative, true},
		{config.VocabularyPreNormalized, "0", domain.Neutral, true},
		{config.VocabularyPreNormalized, " 1 ", domain.Positive, true},
		{config.VocabularyPreNormalized, "2", 0, false},
		{config.VocabularyPreNormalized, "up", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.vocabulary+"/"+tt.raw, func(t *testing.T) {
			vocab, err := VocabularyFor(tt.vocabulary)
			require.NoError(t, err)

			got, ok := vocab.Label(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestVocabulary_Normalize(t *testing.T) {
	vocab, err := VocabularyFor(config.VocabularyNumericCode)
	require.NoError(t, err)

	records, unknown := vocab.Normalize([]Pair{P("a", "1"), P("b", "3"), P("c", "5"), P("d", "2")})

	assert.Equal(t, 1, unknown)
	assert.Equal(t, []domain.LabeledText{
		{Text: "a", Sentiment: domain.Negative},
		{Text: "b", Sentiment: domain.Neutral},
		{Text: "c", Sentiment: domain.Positive},
	}, records)
}

func TestVocabularyFor_Unknown(t *testing.T) {
	_, err := VocabularyFor("stars")
	assert.Error(t, err)
}
