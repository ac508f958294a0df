package adapter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "revu.dev/pkg/revu/internal/model"
)

func sampleReviews() []m.FileReview {
	return []m.FileReview{
		{
			Filename:  "src/app.py",
			Original:  "x=1\n",
			Report:    "# Audit\nAll fine.\n",
			FixedCode: "x = 1\n",
		},
		{
			Filename:  "util.py",
			Report:    "needs docstrings",
			FixedCode: "pass\n",
		},
	}
}

func TestFileResultStoreSaveAndLoad(t *testing.T) {
	dir := m.Path(t.TempDir())
	store := NewFileResultStore()

	run, err := store.SaveRun(dir, "myproject", sampleReviews())
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	t.Run("files are written per review", func(t *testing.T) {
		runDir := filepath.Join(string(dir), run.ID)

		report, err := os.ReadFile(filepath.Join(runDir, "src__app.report.md"))
		require.NoError(t, err)
		assert.Equal(t, "# Audit\nAll fine.\n", string(report))

		fixed, err := os.ReadFile(filepath.Join(runDir, "src__app.fixed.py"))
		require.NoError(t, err)
		assert.Equal(t, "x = 1\n", string(fixed))
	})

	t.Run("index lists the run", func(t *testing.T) {
		runs, err := store.LoadIndex(dir)
		require.NoError(t, err)
		require.Len(t, runs, 1)

		assert.Equal(t, run.ID, runs[0].ID)
		assert.Equal(t, "myproject", runs[0].Root)
		assert.Equal(t, []string{"src/app.py", "util.py"}, runs[0].Files)
	})

	t.Run("run round-trips through LoadRun", func(t *testing.T) {
		loaded, err := store.LoadRun(dir, run.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Reviews, 2)

		assert.Equal(t, "src/app.py", loaded.Reviews[0].Filename)
		assert.Equal(t, "# Audit\nAll fine.\n", loaded.Reviews[0].Report)
		assert.Equal(t, "x = 1\n", loaded.Reviews[0].FixedCode)
	})

	t.Run("unknown run is an error", func(t *testing.T) {
		_, err := store.LoadRun(dir, "no-such-run")
		require.Error(t, err)
	})
}

func TestFileResultStoreIndexOrder(t *testing.T) {
	dir := m.Path(t.TempDir())
	store := NewFileResultStore()

	first, err := store.SaveRun(dir, "one", sampleReviews())
	require.NoError(t, err)

	second, err := store.SaveRun(dir, "two", sampleReviews())
	require.NoError(t, err)

	runs, err := store.LoadIndex(dir)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
}

func TestFileResultStoreLoadIndexMissingDir(t *testing.T) {
	store := NewFileResultStore()

	runs, err := store.LoadIndex(m.Path(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestExportHTMLEscapesContent(t *testing.T) {
	store := NewFileResultStore()

	run := &ReviewRun{
		ID:   "abc",
		Root: "proj",
		Reviews: []m.FileReview{
			{
				Filename:  "evil.py",
				Original:  `x = "<script>alert(1)</script>"`,
				Report:    "<b>bold claim</b>",
				FixedCode: "y < 2 && z > 1",
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, store.ExportHTML(&buf, run))

	out := buf.String()

	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<b>bold claim</b>")
	assert.Contains(t, out, "evil.py")
}
