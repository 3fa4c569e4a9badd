package acquisition

import (
	"fmt"
	"sort"
	"strings"

	"stocksentiment/internal/dataprocessing"
	apperrors "stocksentiment/internal/errors"
)

// Search parameter columns
const (
	UsernamesColumn = "usernames"
	TermsColumn     = "terms"
)

// GenerateSearchString joins search terms with " OR "
func GenerateSearchString(terms []string) string {
	return strings.Join(terms, " OR ")
}

// LoadUsernames returns the usernames column of path sorted ascending
func LoadUsernames(path string) ([]string, error) {
	usernames, err := readColumn(path, UsernamesColumn)
	if err != nil {
		return nil, err
	}
	sort.Strings(usernames)
	return usernames, nil
}

// LoadSearchTerms returns the terms column of path in file order
func LoadSearchTerms(path string) ([]string, error) {
	return readColumn(path, TermsColumn)
}

func readColumn(path, column string) ([]string, error) {
	table, err := dataprocessing.ReadCSV(path, dataprocessing.ReadOptions{})
	if err != nil {
		return nil, err
	}

	j := table.ColumnIndex(column)
	if j < 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("missing %q column", column), nil).
			WithContext("file", path).
			WithContext("columns", table.Columns)
	}

	values := make([]string, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		cell := table.Cell(i, j)
		if !cell.Valid {
			continue
		}
		if v := strings.TrimSpace(cell.Value); v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}
