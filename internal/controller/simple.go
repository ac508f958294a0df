package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "revu.dev/pkg/revu/internal/model"
)

// SimpleUI implements UI using the cobra command's output stream. It is
// used when stdout is not a terminal or when --plain is set.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplaySelection prints the preview table for the accepted files and the
// skip summary. The summary only appears when something was skipped.
func (s *SimpleUI) DisplaySelection(ctx context.Context, selection *m.Selection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if selection.Empty() {
		s.printf("No matching files found under %s\n", selection.Root)

		if selection.Skipped > 0 {
			s.printSkipSummary(selection)
		}

		return nil
	}

	s.printf("\n%s", renderSelectionTable(selection))

	if selection.Skipped > 0 {
		s.printSkipSummary(selection)
	}

	return nil
}

func (s *SimpleUI) printSkipSummary(selection *m.Selection) {
	summary := color.YellowString(
		"Skipped %d of %d matching file(s) under excluded folders:",
		selection.Skipped, selection.TotalMatched,
	)

	s.printf("%s\n", summary)

	for _, path := range selection.SkippedPaths {
		s.printf("  - %s\n", Sanitize(path))
	}
}

func renderSelectionTable(selection *m.Selection) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"File", "Lines", "Bytes"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
	})

	for _, file := range selection.Files {
		table.Append([]string{
			Sanitize(file.RelPath),
			fmt.Sprintf("%d", strings.Count(file.Content, "\n")+1),
			fmt.Sprintf("%d", len(file.Content)),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Accepted %d", selection.Accepted()),
		"",
		"",
	})

	table.Render()

	return buf.String()
}

// DisplaySubmitting announces the in-flight request.
func (s *SimpleUI) DisplaySubmitting(ctx context.Context, files int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Submitting %d file(s) for review...\n", files)
}

// DisplayReviews prints the three sections for each reviewed file.
func (s *SimpleUI) DisplayReviews(ctx context.Context, reviews []m.FileReview) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, review := range reviews {
		s.printf("\n%s\n", color.CyanString("=== %s ===", Sanitize(review.Filename)))

		if review.Original != "" {
			s.printf("%s\n%s\n", color.New(color.Bold).Sprint("--- Original ---"), Sanitize(review.Original))
		}

		s.printf("%s\n%s\n", color.New(color.Bold).Sprint("--- Report ---"), Sanitize(review.Report))
		s.printf("%s\n%s\n", color.New(color.Bold).Sprint("--- Fixed code ---"), Sanitize(review.FixedCode))
	}

	s.printf("\n%s\n", color.GreenString("Reviewed %d file(s)", len(reviews)))

	return nil
}

// DisplayError prints the failure message of a submission.
func (s *SimpleUI) DisplayError(ctx context.Context, message string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", color.RedString("Review failed: %s", Sanitize(message)))
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
