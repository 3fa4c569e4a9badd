package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	apperrors "stocksentiment/internal/errors"
	"stocksentiment/internal/exporter"
)

// ReadOptions controls how a delimited file is parsed
type ReadOptions struct {
	Delimiter rune
	Encoding  string
	// NoHeader treats the first record as data. Columns are then named by
	// position ("0", "1", ...).
	NoHeader bool
	// Logger receives read progress; nil uses slog.Default
	Logger *slog.Logger
}

// decoderFor wraps r so bytes in the named encoding come out as UTF-8
func decoderFor(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return exporter.SkipBOM(r), nil
	case "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, apperrors.NewAppValidationError(fmt.Sprintf("unsupported encoding %q", encoding))
}

func openCSV(path string, opts ReadOptions) (*os.File, *csv.Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apperrors.NewNotFoundError(path)
		}
		return nil, nil, apperrors.NewStorageError("failed to open source file", err).WithContext("file", path)
	}

	r, err := decoderFor(file, opts.Encoding)
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true
	return file, reader, nil
}

// readColumns consumes the header, or synthesizes positional names from the
// first record when there is none. The first record is returned so the
// caller can keep it as data.
func readColumns(reader *csv.Reader, path string, noHeader bool) ([]string, []string, error) {
	first, err := reader.Read()
	if err == io.EOF {
		return nil, nil, apperrors.NewParsingError("source file is empty", nil).WithContext("file", path)
	}
	if err != nil {
		return nil, nil, apperrors.NewParsingError("failed to read header", err).WithContext("file", path)
	}
	first = append([]string(nil), first...)

	if !noHeader {
		return first, nil, nil
	}
	columns := make([]string, len(first))
	for i := range first {
		columns[i] = strconv.Itoa(i)
	}
	return columns, first, nil
}

func toCells(record []string, width int) []Cell {
	row := make([]Cell, width)
	for j := 0; j < width && j < len(record); j++ {
		row[j] = cellOf(record[j])
	}
	return row
}

// ReadCSV loads a delimited file into a Table
func ReadCSV(path string, opts ReadOptions) (*Table, error) {
	file, reader, err := openCSV(path, opts)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	columns, first, err := readColumns(reader, path, opts.NoHeader)
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: columns}
	if first != nil {
		table.Rows = append(table.Rows, toCells(first, len(columns)))
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read record", err).WithContext("file", path)
		}
		table.Rows = append(table.Rows, toCells(record, len(columns)))
	}

	return table, nil
}

// ReadCSVChunked reads a delimited file chunkSize records at a time and keeps
// only the requested columns of each chunk. Only the projected columns are
// held in memory.
func ReadCSVChunked(ctx context.Context, path string, opts ReadOptions, chunkSize int, columns []string) (*Table, error) {
	if chunkSize <= 0 {
		return nil, apperrors.NewAppValidationError("chunk size must be positive")
	}

	file, reader, err := openCSV(path, opts)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	header, first, err := readColumns(reader, path, opts.NoHeader)
	if err != nil {
		return nil, err
	}

	index := make([]int, len(columns))
	for k, name := range columns {
		index[k] = -1
		for j, col := range header {
			if col == name {
				index[k] = j
				break
			}
		}
		if index[k] < 0 {
			return nil, apperrors.NewParsingError(fmt.Sprintf("column %q not found", name), nil).WithContext("file", path)
		}
	}

	project := func(record []string) []Cell {
		row := make([]Cell, len(index))
		for k, j := range index {
			if j < len(record) {
				row[k] = cellOf(record[j])
			}
		}
		return row
	}

	table := &Table{Columns: append([]string(nil), columns...)}
	chunk := make([][]Cell, 0, chunkSize)
	if first != nil {
		chunk = append(chunk, project(first))
	}

	chunks := 0
	flush := func() {
		table.Rows = append(table.Rows, chunk...)
		chunk = make([][]Cell, 0, chunkSize)
		chunks++
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read record", err).WithContext("file", path)
		}
		chunk = append(chunk, project(record))
		if len(chunk) == chunkSize {
			flush()
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	if len(chunk) > 0 {
		flush()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, "Read source in chunks",
		slog.String("file", path),
		slog.Int("chunk_size", chunkSize),
		slog.Int("chunks", chunks),
		slog.Int("rows", table.Len()))

	return table, nil
}

// ReadXLSX loads one worksheet into a Table. An empty sheet name selects the
// first sheet. The first row is the header.
func ReadXLSX(path, sheet string) (*Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.NewNotFoundError(path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("file", path)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read worksheet", err).
			WithContext("file", path).
			WithContext("sheet", sheet)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("worksheet is empty", nil).
			WithContext("file", path).
			WithContext("sheet", sheet)
	}

	table := &Table{Columns: rows[0]}
	for _, row := range rows[1:] {
		table.Rows = append(table.Rows, toCells(row, len(table.Columns)))
	}
	return table, nil
}
