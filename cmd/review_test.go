package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revu.dev/pkg/revu/internal/adapter"
	m "revu.dev/pkg/revu/internal/model"
)

func TestReviewCmdPlain(t *testing.T) {
	redirectLogFile(t)

	t.Run("submits accepted files and renders the reviews", func(t *testing.T) {
		t.Chdir(t.TempDir())

		client := &fakeReviewClient{
			analyzeResults: []m.AnalysisResult{
				{Filename: "app.py", Report: "looks fine", FixedCode: "print('app')\n"},
				{Filename: "src/util.py", Report: "rename things", FixedCode: "print('util')\n"},
			},
		}
		swapReviewClient(t, client)

		dir := writeProject(t)

		cmd, output := newTestRootCmd(newReviewCmd())
		cmd.SetArgs([]string{"review", dir, "--plain", "--remote-config=false"})

		require.NoError(t, cmd.Execute())

		require.Equal(t, 1, client.analyzeCalls)
		require.Len(t, client.analyzedFiles, 2)
		assert.Equal(t, "app.py", client.analyzedFiles[0].RelPath)
		assert.Equal(t, "src/util.py", client.analyzedFiles[1].RelPath)

		out := output.String()
		assert.Contains(t, out, "Submitting 2 file(s)")
		assert.Contains(t, out, "looks fine")
		assert.Contains(t, out, "rename things")
		assert.Contains(t, out, "Reviewed 2 file(s)")
		assert.Contains(t, out, "Saved run ")

		runs, err := resultStore.LoadIndex(m.Path(defaultResultsDir))
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, dir, runs[0].Root)
	})

	t.Run("no-save skips persisting the run", func(t *testing.T) {
		t.Chdir(t.TempDir())

		swapReviewClient(t, &fakeReviewClient{
			analyzeResults: []m.AnalysisResult{{Filename: "app.py", Report: "ok"}},
		})

		dir := writeProject(t)

		cmd, output := newTestRootCmd(newReviewCmd())
		cmd.SetArgs([]string{"review", dir, "--plain", "--no-save", "--remote-config=false"})

		require.NoError(t, cmd.Execute())

		assert.NotContains(t, output.String(), "Saved run")

		runs, err := resultStore.LoadIndex(m.Path(defaultResultsDir))
		require.NoError(t, err)
		assert.Empty(t, runs)
	})

	t.Run("empty selection submits nothing", func(t *testing.T) {
		t.Chdir(t.TempDir())

		client := &fakeReviewClient{}
		swapReviewClient(t, client)

		// A project with no Python files at all.
		dir := t.TempDir()

		cmd, output := newTestRootCmd(newReviewCmd())
		cmd.SetArgs([]string{"review", dir, "--plain", "--remote-config=false"})

		require.NoError(t, cmd.Execute())

		assert.Equal(t, 0, client.analyzeCalls)
		assert.Contains(t, output.String(), "No matching files found")
		assert.NotContains(t, output.String(), "Submitting")
	})

	t.Run("server failure is rendered and returned", func(t *testing.T) {
		t.Chdir(t.TempDir())

		swapReviewClient(t, &fakeReviewClient{
			analyzeErr: &adapter.APIError{StatusCode: 400, Detail: "bad syntax"},
		})

		dir := writeProject(t)

		cmd, output := newTestRootCmd(newReviewCmd())
		cmd.SetArgs([]string{"review", dir, "--plain", "--remote-config=false"})

		require.Error(t, cmd.Execute())
		assert.Contains(t, output.String(), "Review failed: bad syntax")

		runs, err := resultStore.LoadIndex(m.Path(defaultResultsDir))
		require.NoError(t, err)
		assert.Empty(t, runs)
	})
}
