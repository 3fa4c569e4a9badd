// Package dataprocessing turns raw sentiment-labeled datasets into canonical
// (text, sentiment) corpora.
//
// # Architecture
//
//  1. Parser: ReadCSV, ReadCSVChunked and ReadXLSX load a source into a Table
//     of nullable cells, decoding latin1 and windows-1252 input on the way.
//  2. Processor: WideToLong reshapes one-label-many-texts tables and
//     Deduplicate removes nulls, sentinel rows, exact duplicates and texts
//     carrying conflicting labels.
//  3. Vocabulary: a fixed per-source table maps raw labels to -1, 0 and 1.
//  4. Wrangler: runs the steps above for one config.CorpusSource and hands the
//     result to the corpus exporter.
//
// # Usage
//
//	w := dataprocessing.NewWrangler(paths, cfg.Wrangling, metrics, logger)
//	result, err := w.Run(ctx, src)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Report.Total)
//
// Deduplication order is fixed: dropping every row of a conflicting text
// after exact duplicates are gone means a text labeled twice the same way
// survives while a text labeled two different ways does not.
package dataprocessing
