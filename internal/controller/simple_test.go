package controller

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "revu.dev/pkg/revu/internal/model"
)

func newTestUI() (*SimpleUI, *bytes.Buffer) {
	buf := &bytes.Buffer{}

	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	return NewSimpleUI(cmd), buf
}

func TestDisplaySelection(t *testing.T) {
	ctx := context.Background()

	t.Run("skip summary shown only when files were skipped", func(t *testing.T) {
		selection := m.NewSelection("proj")
		selection.TotalMatched = 5
		selection.Add("a.py", "a\n")
		selection.Add("b.py", "b\n")
		selection.Add("c.py", "c\n")
		selection.Skip("venv/d.py")
		selection.Skip("venv/e.py")

		ui, buf := newTestUI()
		require.NoError(t, ui.DisplaySelection(ctx, selection))

		out := buf.String()
		assert.Contains(t, out, "a.py")
		assert.Contains(t, out, "Skipped 2 of 5")
		assert.Contains(t, out, "venv/d.py")
	})

	t.Run("no summary without skipped files", func(t *testing.T) {
		selection := m.NewSelection("proj")
		selection.TotalMatched = 2
		selection.Add("a.py", "a\n")
		selection.Add("b.py", "b\n")

		ui, buf := newTestUI()
		require.NoError(t, ui.DisplaySelection(ctx, selection))

		assert.NotContains(t, buf.String(), "Skipped")
	})

	t.Run("empty selection states there is nothing to submit", func(t *testing.T) {
		selection := m.NewSelection("proj")

		ui, buf := newTestUI()
		require.NoError(t, ui.DisplaySelection(ctx, selection))

		assert.Contains(t, buf.String(), "No matching files found")
	})
}

func TestDisplayReviews(t *testing.T) {
	ctx := context.Background()

	reviews := []m.FileReview{
		{Filename: "a.py", Original: "x=1\n", Report: "tidy up", FixedCode: "x = 1\n"},
		{Filename: "b.py", Report: "missing original"},
	}

	ui, buf := newTestUI()
	require.NoError(t, ui.DisplayReviews(ctx, reviews))

	out := buf.String()

	assert.Contains(t, out, "a.py")
	assert.Contains(t, out, "tidy up")
	assert.Contains(t, out, "x = 1")
	assert.Contains(t, out, "b.py")
	assert.Contains(t, out, "Reviewed 2 file(s)")

	// A review without original content must not render an Original section
	// header twice; the second file simply has none.
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("--- Original ---")))
}

func TestDisplayError(t *testing.T) {
	ui, buf := newTestUI()

	ui.DisplayError(context.Background(), "bad syntax")

	assert.Contains(t, buf.String(), "bad syntax")
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"newlines and tabs kept", "a\n\tb", "a\n\tb"},
		{"ansi escape stripped", "a\x1b[31mred\x1b[0m", "a[31mred[0m"},
		{"control chars stripped", "a\x00\x07b\x7f", "ab"},
		{"unicode kept", "héllo ✓", "héllo ✓"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sanitize(tc.in))
		})
	}
}
