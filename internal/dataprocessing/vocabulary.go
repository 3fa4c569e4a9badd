package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"

	"stocksentiment/internal/config"
	"stocksentiment/pkg/contracts/domain"
)

// Vocabulary maps the raw sentiment values of one source to canonical labels
type Vocabulary struct {
	Name    string
	numeric bool
	words   map[string]domain.Sentiment
	numbers map[float64]domain.Sentiment
}

// VocabularyFor returns the fixed label table of a named vocabulary
func VocabularyFor(name string) (Vocabulary, error) {
	switch name {
	case config.VocabularyNumericCode:
		return Vocabulary{Name: name, words: map[string]domain.Sentiment{
			"1": domain.Negative,
			"3": domain.Neutral,
			"5": domain.Positive,
		}}, nil
	case config.VocabularyWordLabel:
		return Vocabulary{Name: name, words: map[string]domain.Sentiment{
			"negative": domain.Negative,
			"neutral":  domain.Neutral,
			"positive": domain.Positive,
		}}, nil
	case config.VocabularyBinaryCode:
		return Vocabulary{Name: name, numeric: true, numbers: map[float64]domain.Sentiment{
			0: domain.Negative,
			1: domain.Positive,
		}}, nil
	case config.VocabularyPreNormalized:
		return Vocabulary{Name: name, numeric: true, numbers: map[float64]domain.Sentiment{
			-1: domain.Negative,
			0:  domain.Neutral,
			1:  domain.Positive,
		}}, nil
	}
	return Vocabulary{}, fmt.Errorf("unknown vocabulary %q", name)
}

// Label maps one raw value. String vocabularies match exactly; numeric
// vocabularies compare by value, so "1.0" matches 1.
func (v Vocabulary) Label(raw string) (domain.Sentiment, bool) {
	if !v.numeric {
		s, ok := v.words[raw]
		return s, ok
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	s, ok := v.numbers[f]
	return s, ok
}

// Canonical returns the form of raw used for comparisons. Numeric
// vocabularies print the parsed value in its shortest form ("1.0" becomes
// "1"); other values are returned unchanged.
func (v Vocabulary) Canonical(raw string) string {
	if !v.numeric {
		return raw
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Normalize converts pairs to canonical records. Values outside the
// vocabulary are skipped and counted.
func (v Vocabulary) Normalize(pairs []Pair) ([]domain.LabeledText, int) {
	records := make([]domain.LabeledText, 0, len(pairs))
	unknown := 0
	for _, p := range pairs {
		s, ok := v.Label(p.Sentiment.Value)
		if !ok {
			unknown++
			continue
		}
		records = append(records, domain.LabeledText{Text: p.Text.Value, Sentiment: s})
	}
	return records, unknown
}
