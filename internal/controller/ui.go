// Package controller renders selections and review results, either as
// plain command output or as an interactive terminal session.
package controller

import (
	"context"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	m "revu.dev/pkg/revu/internal/model"
)

// UI renders the stages of a review session. Implementations can use
// different output methods (simple text, TUI, etc).
type UI interface {
	// DisplaySelection shows the preview of an accepted selection and,
	// when files were skipped, the skip summary.
	DisplaySelection(ctx context.Context, selection *m.Selection) error

	// DisplaySubmitting shows the loading state for an in-flight request.
	DisplaySubmitting(ctx context.Context, files int)

	// DisplayReviews renders the per-file results of a submission.
	DisplayReviews(ctx context.Context, reviews []m.FileReview) error

	// DisplayError renders a failed submission's message.
	DisplayError(ctx context.Context, message string)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Sanitize strips terminal control characters from text that came from
// files or the server before it is written to the screen, keeping only
// newlines and tabs. Displayed content must never be able to drive the
// terminal.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}

		if r < 0x20 || r == 0x7f {
			return -1
		}

		return r
	}, s)
}
