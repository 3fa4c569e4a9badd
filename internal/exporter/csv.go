package exporter

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	apperrors "stocksentiment/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers []string
	Records [][]string
	// Append adds Records to an existing file. The header is written only when
	// the file is created; an existing header must equal Headers.
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	Delimiter rune
}

// WriteCSV writes data to a CSV file with the given options and reports
// whether the file was created by this call
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return false, apperrors.NewStorageError("failed to create directory", err)
	}

	created := true
	if options.Append {
		existing, err := ReadHeader(filePath, options.Delimiter)
		switch {
		case err == nil && existing != nil:
			created = false
			if len(options.Headers) > 0 && !slices.Equal(existing, options.Headers) {
				return false, apperrors.NewAppValidationError("header mismatch on append").
					WithContext("file", filePath).
					WithContext("existing", existing).
					WithContext("expected", options.Headers)
			}
		case err != nil && !os.IsNotExist(err):
			return false, err
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		return false, apperrors.NewStorageError("failed to open file", err).WithContext("file", filePath)
	}
	defer file.Close()

	if created && options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return false, apperrors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	if options.Delimiter != 0 {
		writer.Comma = options.Delimiter
	}

	if created && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return false, apperrors.NewStorageError("failed to write headers", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return false, apperrors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return false, apperrors.NewStorageError("failed to flush csv", err)
	}

	w.logger.Debug("Wrote CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)),
		slog.Bool("created", created))

	return created, nil
}

// WriteSimpleCSV replaces filePath with headers and records
func (w *CSVWriter) WriteSimpleCSV(filePath string, headers []string, records [][]string) error {
	_, err := w.WriteCSV(filePath, WriteOptions{
		Headers: headers,
		Records: records,
	})
	return err
}

// ReadHeader returns the first record of a CSV file, or nil for an empty file.
// A leading UTF-8 BOM is ignored.
func ReadHeader(filePath string, delimiter rune) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(SkipBOM(file))
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header", err).WithContext("file", filePath)
	}
	return header, nil
}

// SkipBOM wraps r so a leading UTF-8 byte order mark is not returned
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
	count  int
}

// CreateStreamWriter creates filePath and writes the header
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create directory", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create file", err).WithContext("file", filePath)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, apperrors.NewStorageError("failed to write headers", err)
		}
	}

	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.count++
	return nil
}

// Count returns the number of records written so far
func (s *StreamWriter) Count() int {
	return s.count
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
