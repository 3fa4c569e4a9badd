package domain

import (
	"fmt"
	"strings"
	"time"
)

// Sentiment is the canonical three-value label of a corpus record
type Sentiment int8

const (
	Negative Sentiment = -1
	Neutral  Sentiment = 0
	Positive Sentiment = 1
)

// String returns the canonical integer form used in corpus files
func (s Sentiment) String() string {
	return fmt.Sprintf("%d", int8(s))
}

// Valid reports whether s is one of the three canonical labels
func (s Sentiment) Valid() bool {
	return s == Negative || s == Neutral || s == Positive
}

// ParseSentiment parses the canonical integer form of a label
func ParseSentiment(v string) (Sentiment, error) {
	switch v {
	case "-1":
		return Negative, nil
	case "0":
		return Neutral, nil
	case "1":
		return Positive, nil
	}
	return 0, fmt.Errorf("invalid sentiment %q", v)
}

// CorpusColumns is the header of every canonical corpus file
var CorpusColumns = []string{"text", "sentiment"}

// LabeledText is one record of a canonical corpus.
// Within a corpus no two records share Text.
type LabeledText struct {
	Text      string    `json:"text"`
	Sentiment Sentiment `json:"sentiment"`
}

// NormalizeText converts CRLF line breaks to LF. CSV readers fold CRLF inside
// quoted fields, so corpus texts are stored with LF only.
func NormalizeText(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// CorpusReport summarizes one wrangling run over a source dataset
type CorpusReport struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Source            string    `json:"source"`
	InitialRows       int       `json:"initial_rows"`
	AfterNullDrop     int       `json:"after_null_drop"`
	AfterSentinelDrop int       `json:"after_sentinel_drop"`
	AfterExactDedup   int       `json:"after_exact_dedup"`
	AfterConflictDrop int       `json:"after_conflict_drop"`
	ConflictingTexts  int       `json:"conflicting_texts"`
	UnknownLabels     int       `json:"unknown_labels"`
	Total             int       `json:"total"`
	Negative          int       `json:"negative"`
	Neutral           int       `json:"neutral"`
	Positive          int       `json:"positive"`
	CSVPath           string    `json:"csv_path"`
	SnapshotPath      string    `json:"snapshot_path"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// Count tallies records per label into the report
func (r *CorpusReport) Count(records []LabeledText) {
	r.Total, r.Negative, r.Neutral, r.Positive = len(records), 0, 0, 0
	for _, rec := range records {
		switch rec.Sentiment {
		case Negative:
			r.Negative++
		case Neutral:
			r.Neutral++
		case Positive:
			r.Positive++
		}
	}
}

// CorpusFileName returns the base file name of corpus n with the given extension
func CorpusFileName(n int, ext string) string {
	return fmt.Sprintf("corpus%d%s", n, ext)
}
