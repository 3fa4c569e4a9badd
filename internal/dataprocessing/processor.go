package dataprocessing

import (
	"fmt"

	"stocksentiment/pkg/contracts/domain"
)

// Prepare returns a copy of pairs in which equal values compare equal:
// texts use LF line breaks and labels are in the vocabulary's canonical form.
// Null cells are kept as they are.
func Prepare(pairs []Pair, v Vocabulary) []Pair {
	out := make([]Pair, len(pairs))
	for i, p := range pairs {
		if p.Text.Valid {
			p.Text.Value = domain.NormalizeText(p.Text.Value)
		}
		if p.Sentiment.Valid {
			p.Sentiment.Value = v.Canonical(p.Sentiment.Value)
		}
		out[i] = p
	}
	return out
}

// Deduplicate cleans projected rows in a fixed order:
//  1. rows with a null text or sentiment are dropped
//  2. rows whose sentiment equals sentinel are dropped (skipped when sentinel is empty)
//  3. exact duplicates are dropped, keeping the first occurrence
//  4. every row whose text still occurs more than once is dropped
//
// Step 4 removes a text entirely when it carries conflicting labels.
// The input slice is not modified and the result keeps input order.
func Deduplicate(pairs []Pair, sentinel string) ([]Pair, DedupStats) {
	stats := DedupStats{Initial: len(pairs)}

	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.Text.Valid && p.Sentiment.Valid {
			out = append(out, p)
		}
	}
	stats.AfterNullDrop = len(out)

	if sentinel != "" {
		kept := out[:0]
		for _, p := range out {
			if p.Sentiment.Value != sentinel {
				kept = append(kept, p)
			}
		}
		out = kept
	}
	stats.AfterSentinelDrop = len(out)

	seen := make(map[Pair]struct{}, len(out))
	kept := out[:0]
	for _, p := range out {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		kept = append(kept, p)
	}
	out = kept
	stats.AfterExactDedup = len(out)

	counts := make(map[string]int, len(out))
	for _, p := range out {
		counts[p.Text.Value]++
	}
	kept = out[:0]
	for _, p := range out {
		if counts[p.Text.Value] == 1 {
			kept = append(kept, p)
		}
	}
	out = kept
	stats.AfterConflictDrop = len(out)

	for _, n := range counts {
		if n > 1 {
			stats.ConflictingTexts++
		}
	}

	return out, stats
}

// WideToLong reshapes a table whose first column is a label and whose other
// columns are texts sharing that label. It emits one pair per non-null text
// cell, column by column: every row of the second column, then every row of
// the third, and so on.
func WideToLong(t *Table) ([]Pair, error) {
	if len(t.Columns) < 2 {
		return nil, fmt.Errorf("wide table needs an anchor and at least one text column, got %v", t.Columns)
	}

	pairs := make([]Pair, 0, t.Len()*(len(t.Columns)-1))
	for j := 1; j < len(t.Columns); j++ {
		for i := range t.Rows {
			text := t.Cell(i, j)
			if !text.Valid {
				continue
			}
			pairs = append(pairs, Pair{Text: text, Sentiment: t.Cell(i, 0)})
		}
	}
	return pairs, nil
}
