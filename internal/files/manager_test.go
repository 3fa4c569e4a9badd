package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksentiment/internal/config"
)

func newTestManager(t *testing.T) (*Manager, *config.Paths) {
	t.Helper()
	paths, err := config.NewPaths(config.PathsConfig{BaseDir: t.TempDir(), DataDir: "data", LogsDir: "logs"})
	require.NoError(t, err)
	return NewManager(paths, nil), paths
}

func TestFileExists(t *testing.T) {
	m, paths := newTestManager(t)
	touch(t, filepath.Join(paths.DataDir, "present.csv"), "x")

	assert.True(t, m.FileExists("present.csv"))
	assert.True(t, m.FileExists(filepath.Join(paths.DataDir, "present.csv")))
	assert.False(t, m.FileExists("absent.csv"))
}

func TestEnsureDirectory(t *testing.T) {
	m, paths := newTestManager(t)

	require.NoError(t, m.EnsureDirectory("corpora/"))
	info, err := os.Stat(paths.CorporaDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestClearCSVFiles(t *testing.T) {
	m, paths := newTestManager(t)
	dir := paths.TweetsByDateDir
	touch(t, filepath.Join(dir, "2020-01-01.csv"), "h\n")
	touch(t, filepath.Join(dir, "2020-01-02.csv"), "h\n")
	touch(t, filepath.Join(dir, "keep.txt"), "k")
	touch(t, filepath.Join(dir, "sub", "nested.csv"), "n")

	removed, err := m.ClearCSVFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	names, err := m.ListFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.txt"}, names)
	assert.FileExists(t, filepath.Join(dir, "sub", "nested.csv"))
}

func TestClearCSVFiles_MissingDir(t *testing.T) {
	m, _ := newTestManager(t)
	removed, err := m.ClearCSVFiles("does/not/exist")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestWriteFileAtomic(t *testing.T) {
	m, paths := newTestManager(t)

	require.NoError(t, m.WriteFileAtomic("corpora/corpus1.json", []byte(`{"id":1}`)))
	require.NoError(t, m.WriteFileAtomic("corpora/corpus1.json", []byte(`{"id":2}`)))

	data, err := os.ReadFile(filepath.Join(paths.CorporaDir, "corpus1.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"id":2}`, string(data))

	names, err := m.ListFiles("corpora/")
	require.NoError(t, err)
	assert.Equal(t, []string{"corpus1.json"}, names, "no temp files left behind")
}

func TestResolvePath(t *testing.T) {
	m, paths := newTestManager(t)

	tests := []struct {
		in   string
		want string
	}{
		{"logs/app.log", filepath.Join(paths.LogsDir, "app.log")},
		{"corpora/corpus2.csv", filepath.Join(paths.CorporaDir, "corpus2.csv")},
		{"raw_data/x.csv", filepath.Join(paths.DataDir, "raw_data", "x.csv")},
		{"/abs/file.csv", "/abs/file.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, m.resolvePath(tt.in))
		})
	}
}
