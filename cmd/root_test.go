package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revu.dev/pkg/revu/internal/adapter"
	m "revu.dev/pkg/revu/internal/model"
)

// fakeReviewClient stands in for the HTTP client in command tests.
type fakeReviewClient struct {
	skipFolders    []string
	skipErr        error
	analyzeResults []m.AnalysisResult
	analyzeErr     error
	analyzeCalls   int
	analyzedFiles  []m.CandidateFile
}

func (f *fakeReviewClient) FetchSkipFolders(_ context.Context) ([]string, error) {
	return f.skipFolders, f.skipErr
}

func (f *fakeReviewClient) Analyze(_ context.Context, files []m.CandidateFile) ([]m.AnalysisResult, error) {
	f.analyzeCalls++
	f.analyzedFiles = files

	return f.analyzeResults, f.analyzeErr
}

// swapReviewClient replaces the client factory for the duration of a test.
func swapReviewClient(t *testing.T, client adapter.ReviewClient) {
	t.Helper()

	original := newReviewClient
	newReviewClient = func() adapter.ReviewClient { return client }
	t.Cleanup(func() { newReviewClient = original })
}

// redirectLogFile keeps test runs from writing a log file into the
// package directory.
func redirectLogFile(t *testing.T) {
	t.Helper()

	original := viper.GetString(logFilenameKey)
	viper.Set(logFilenameKey, filepath.Join(t.TempDir(), "revu.log"))
	t.Cleanup(func() { viper.Set(logFilenameKey, original) })
}

// newTestRootCmd builds a fresh root with the given subcommand and
// captured output.
func newTestRootCmd(sub *cobra.Command) (*cobra.Command, *bytes.Buffer) {
	cmd := baseRootCmd()
	configureRootFlags(cmd)
	cmd.AddCommand(sub)

	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(output)

	return cmd, output
}

// writeProject lays out a small Python project with one excluded folder.
func writeProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	files := map[string]string{
		"app.py":             "print('app')\n",
		"src/util.py":        "print('util')\n",
		"venv/lib/vendor.py": "print('vendored')\n",
		"notes.txt":          "not python\n",
	}

	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return dir
}

func TestResolveRoot(t *testing.T) {
	assert.Equal(t, m.Path("proj"), resolveRoot([]string{"proj"}))
	assert.Equal(t, m.Path("."), resolveRoot(nil))
}

func TestRootCmdHelpOutput(t *testing.T) {
	redirectLogFile(t)

	cmd, output := newTestRootCmd(newScanCmd())

	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, output.String(), "Usage:")
	assert.Contains(t, output.String(), "code-review service")
}

func TestInitWiresDependencies(t *testing.T) {
	assert.NotNil(t, fsAdapter)
	assert.NotNil(t, resultStore)
	assert.NotNil(t, newReviewClient)
	assert.NotNil(t, newReviewClient())
}

func TestExecute(t *testing.T) {
	originalRootCmd := rootCmd
	defer func() { rootCmd = originalRootCmd }()

	mockCmd := &cobra.Command{
		Use: "test",
		RunE: func(_ *cobra.Command, _ []string) error {
			return nil
		},
	}
	mockCmd.SetOut(&bytes.Buffer{})
	mockCmd.SetErr(&bytes.Buffer{})

	rootCmd = mockCmd

	Execute()
}
