package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stocksentiment/internal/errors"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name        string
		existing    string
		seed        bool
		options     WriteOptions
		wantCreated bool
		want        string
		wantErr     bool
	}{
		{
			name:        "new file gets header",
			options:     WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"1", "2"}}},
			wantCreated: true,
			want:        "a,b\n1,2\n",
		},
		{
			name:        "overwrite replaces content",
			existing:    "old\nrows\n",
			options:     WriteOptions{Headers: []string{"a"}, Records: [][]string{{"x"}}},
			wantCreated: true,
			want:        "a\nx\n",
		},
		{
			name:        "append to missing file writes header",
			options:     WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"1", "2"}}, Append: true},
			wantCreated: true,
			want:        "a,b\n1,2\n",
		},
		{
			name:     "append to existing file skips header",
			existing: "a,b\n1,2\n",
			options:  WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"3", "4"}}, Append: true},
			want:     "a,b\n1,2\n3,4\n",
		},
		{
			name:     "append with mismatched header",
			existing: "a,c\n1,2\n",
			options:  WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"3", "4"}}, Append: true},
			want:     "a,c\n1,2\n",
			wantErr:  true,
		},
		{
			name:        "append to empty file writes header",
			seed:        true,
			options:     WriteOptions{Headers: []string{"a"}, Records: [][]string{{"z"}}, Append: true},
			wantCreated: true,
			want:        "a\nz\n",
		},
		{
			name:        "bom and delimiter",
			options:     WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"1", "2"}}, BOMPrefix: true, Delimiter: ';'},
			wantCreated: true,
			want:        "\xEF\xBB\xBFa;b\n1;2\n",
		},
		{
			name:        "quotes special characters",
			options:     WriteOptions{Headers: []string{"tweet"}, Records: [][]string{{"hello, \"world\"\nbye"}}},
			wantCreated: true,
			want:        "tweet\n\"hello, \"\"world\"\"\nbye\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sub", "out.csv")
			if tt.seed || tt.existing != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
				require.NoError(t, os.WriteFile(path, []byte(tt.existing), 0644))
			}

			created, err := NewCSVWriter(nil).WriteCSV(path, tt.options)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantCreated, created)
			}
			assert.Equal(t, tt.want, readFile(t, path))
		})
	}
}

func TestReadHeader(t *testing.T) {
	dir := t.TempDir()

	withBOM := filepath.Join(dir, "bom.csv")
	require.NoError(t, os.WriteFile(withBOM, []byte("\xEF\xBB\xBFdate,tweet\nx,y\n"), 0644))
	header, err := ReadHeader(withBOM, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "tweet"}, header)

	semi := filepath.Join(dir, "semi.csv")
	require.NoError(t, os.WriteFile(semi, []byte("id;text\n"), 0644))
	header, err = ReadHeader(semi, ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "text"}, header)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	header, err = ReadHeader(empty, 0)
	require.NoError(t, err)
	assert.Nil(t, header)

	_, err = ReadHeader(filepath.Join(dir, "missing.csv"), 0)
	assert.True(t, os.IsNotExist(err))
}

func TestStreamWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.csv")
	stream, err := NewCSVWriter(nil).CreateStreamWriter(path, []string{"text", "sentiment"})
	require.NoError(t, err)

	require.NoError(t, stream.WriteRecord([]string{"up", "1"}))
	require.NoError(t, stream.WriteRecord([]string{"down", "-1"}))
	assert.Equal(t, 2, stream.Count())
	require.NoError(t, stream.Close())

	assert.Equal(t, "text,sentiment\nup,1\ndown,-1\n", readFile(t, path))
}
