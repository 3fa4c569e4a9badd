package aggregation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
)

const tweetHeader = "date,tweet,username,name,link,nlikes,nreplies,nretweets\n"

func setup(t *testing.T, mode string) (*Aggregator, *config.Paths) {
	t.Helper()
	paths, err := config.NewPaths(config.PathsConfig{BaseDir: t.TempDir(), DataDir: "data", LogsDir: "logs"})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	return NewAggregator(paths, config.AggregationConfig{Mode: mode}, nil, nil), paths
}

func writeUsernameFile(t *testing.T, paths *config.Paths, username, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(paths.GetUsernameCSVPath(username), []byte(content), 0644))
}

func readDay(t *testing.T, paths *config.Paths, day string) string {
	t.Helper()
	data, err := os.ReadFile(paths.GetDateBucketPath(day))
	require.NoError(t, err)
	return string(data)
}

func tweet(date, text, user string) string {
	return strings.Join([]string{date, text, user, user, "https://twitter.com/" + user + "/status/1", "1", "0", "2"}, ",") + "\n"
}

func TestAggregateByDate(t *testing.T) {
	a, paths := setup(t, config.AggregationTruncate)

	writeUsernameFile(t, paths, "alice", tweetHeader+
		tweet("2020-12-28 09:00:00", "late", "alice")+
		tweet("2020-12-27 23:35:41", "night", "alice")+
		tweet("2020-12-27 13:30:00", "noon", "alice"))
	writeUsernameFile(t, paths, "bob", tweetHeader+
		tweet("2020-12-27 08:00:00", "morning", "bob"))

	summary, err := a.AggregateByDate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.FilesProcessed)
	assert.Equal(t, 4, summary.RowsWritten)
	assert.Equal(t, map[string]int{"2020-12-27": 3, "2020-12-28": 1}, summary.RowsByDay)

	assert.Equal(t, tweetHeader+
		tweet("2020-12-27 13:30:00", "noon", "alice")+
		tweet("2020-12-27 23:35:41", "night", "alice")+
		tweet("2020-12-27 08:00:00", "morning", "bob"),
		readDay(t, paths, "2020-12-27"))
	assert.Equal(t, tweetHeader+tweet("2020-12-28 09:00:00", "late", "alice"), readDay(t, paths, "2020-12-28"))

	report, err := Verify(paths.TweetsByUsernameDir, paths.TweetsByDateDir, nil)
	require.NoError(t, err)
	require.NoError(t, report.Check())
	assert.Equal(t, Shape{Files: 2, Rows: 4, Cells: 32}, report.ByUsername)
	assert.Equal(t, Shape{Files: 2, Rows: 4, Cells: 32}, report.ByDate)
}

func TestAggregateByDate_TruncateIsIdempotent(t *testing.T) {
	a, paths := setup(t, config.AggregationTruncate)
	writeUsernameFile(t, paths, "alice", tweetHeader+tweet("2021-01-04 10:00:00", "hello", "alice"))
	ctx := context.Background()

	_, err := a.AggregateByDate(ctx)
	require.NoError(t, err)
	first := readDay(t, paths, "2021-01-04")

	summary, err := a.AggregateByDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ClearedFiles)
	assert.Equal(t, first, readDay(t, paths, "2021-01-04"))
}

func TestAggregateByDate_AppendDuplicatesOnRerun(t *testing.T) {
	a, paths := setup(t, config.AggregationAppend)
	writeUsernameFile(t, paths, "alice", tweetHeader+tweet("2021-01-04 10:00:00", "hello", "alice"))
	ctx := context.Background()

	_, err := a.AggregateByDate(ctx)
	require.NoError(t, err)
	_, err = a.AggregateByDate(ctx)
	require.NoError(t, err)

	row := tweet("2021-01-04 10:00:00", "hello", "alice")
	assert.Equal(t, tweetHeader+row+row, readDay(t, paths, "2021-01-04"))

	report, err := Verify(paths.TweetsByUsernameDir, paths.TweetsByDateDir, nil)
	require.NoError(t, err)
	assert.True(t, apperrors.IsType(report.Check(), apperrors.ErrTypeValidation))
}

func TestAggregateByDate_IndexColumnRemoved(t *testing.T) {
	a, paths := setup(t, config.AggregationTruncate)
	writeUsernameFile(t, paths, "carol", ","+tweetHeader+
		"0,"+tweet("2020-06-01 12:00:00", "indexed", "carol")+
		"1,"+tweet("2020-06-01 13:00:00", "again", "carol"))

	_, err := a.AggregateByDate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, tweetHeader+
		tweet("2020-06-01 12:00:00", "indexed", "carol")+
		tweet("2020-06-01 13:00:00", "again", "carol"),
		readDay(t, paths, "2020-06-01"))

	report, err := Verify(paths.TweetsByUsernameDir, paths.TweetsByDateDir, nil)
	require.NoError(t, err)
	assert.NoError(t, report.Check())
}

func TestAggregateByDate_SkipsEmptyFiles(t *testing.T) {
	a, paths := setup(t, config.AggregationTruncate)
	writeUsernameFile(t, paths, "empty", "")
	writeUsernameFile(t, paths, "header_only", tweetHeader)
	writeUsernameFile(t, paths, "dave", tweetHeader+tweet("2020-02-02 02:02:02", "hi", "dave"))

	summary, err := a.AggregateByDate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"empty.csv", "header_only.csv"}, summary.SkippedFiles)
	assert.Equal(t, 1, summary.FilesProcessed)

	entries, err := os.ReadDir(paths.TweetsByDateDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAggregateByDate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantType apperrors.ErrorType
	}{
		{"missing date column", "tweet,username\nhi,eve\n", apperrors.ErrTypeParsing},
		{"empty date", tweetHeader + tweet("", "hi", "eve"), apperrors.ErrTypeParsing},
		{"date climbing out of the directory", tweetHeader + tweet("../../escaped 13:30:00", "hi", "eve"), apperrors.ErrTypeParsing},
		{"date with slashes", tweetHeader + tweet("2020/12/27 13:30:00", "hi", "eve"), apperrors.ErrTypeParsing},
		{"date of dots", tweetHeader + tweet(".. 13:30:00", "hi", "eve"), apperrors.ErrTypeParsing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, paths := setup(t, config.AggregationTruncate)
			writeUsernameFile(t, paths, "eve", tt.content)

			_, err := a.AggregateByDate(context.Background())
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType))

			assert.NoFileExists(t, filepath.Join(paths.TweetsByDateDir, "..", "..", "escaped.csv"))
			entries, err := os.ReadDir(paths.TweetsByDateDir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestAggregateByDate_HeaderMismatch(t *testing.T) {
	a, paths := setup(t, config.AggregationAppend)
	require.NoError(t, os.WriteFile(paths.GetDateBucketPath("2020-03-03"), []byte("date,text\nx,y\n"), 0644))
	writeUsernameFile(t, paths, "frank", tweetHeader+tweet("2020-03-03 03:03:03", "hi", "frank"))

	_, err := a.AggregateByDate(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestAggregateByDate_UnknownMode(t *testing.T) {
	a, _ := setup(t, "rotate")
	_, err := a.AggregateByDate(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestVerify_DoesNotModifyFiles(t *testing.T) {
	dir := t.TempDir()
	content := ",date,tweet\n0,2020-01-01 00:00:00,a\n0,2020-01-01 00:00:00,a\n"
	path := filepath.Join(dir, "dup.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	report, err := Verify(dir, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, Shape{Files: 1, Rows: 2, Cells: 4}, report.ByUsername)
	assert.Equal(t, "(2,2)", report.ByUsername.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestIsIndexColumn(t *testing.T) {
	assert.True(t, IsIndexColumn(""))
	assert.True(t, IsIndexColumn("Unnamed: 0"))
	assert.False(t, IsIndexColumn("date"))
}
