package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"revu.dev/pkg/revu/internal/adapter"
	"revu.dev/pkg/revu/internal/controller"
	m "revu.dev/pkg/revu/internal/model"
)

var viewRunFlag string
var viewHTMLFlag string

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View previously saved review runs",
		Long: `List review runs saved in the output directory, print a single run
with --run, or export it as a standalone HTML page with --run and --html.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := m.Path(viper.GetString(outputFlagName))

			if viewRunFlag == "" {
				return listRuns(cmd, dir)
			}

			run, err := resultStore.LoadRun(dir, viewRunFlag)
			if err != nil {
				return err
			}

			if viewHTMLFlag != "" {
				return exportRunHTML(cmd, run, viewHTMLFlag)
			}

			ui := controller.NewSimpleUI(cmd)

			return ui.DisplayReviews(cmd.Context(), run.Reviews)
		},
	}

	cmd.Flags().StringVar(&viewRunFlag, "run", "", "ID of the run to show")
	cmd.Flags().StringVar(&viewHTMLFlag, "html", "", "write the run to this file as HTML (requires --run)")

	return cmd
}

func listRuns(cmd *cobra.Command, dir m.Path) error {
	runs, err := resultStore.LoadIndex(dir)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		cmd.Printf("No saved runs under %s\n", dir)
		return nil
	}

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Run", "Created", "Root", "Files"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, run := range runs {
		table.Append([]string{
			run.ID,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Root,
			fmt.Sprintf("%d", len(run.Files)),
		})
	}

	table.Render()
	cmd.Printf("\n%s", buf.String())

	return nil
}

func exportRunHTML(cmd *cobra.Command, run *adapter.ReviewRun, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	defer func() { _ = f.Close() }()

	if err := resultStore.ExportHTML(f, run); err != nil {
		return err
	}

	cmd.Printf("Exported run %s to %s\n", run.ID, path)

	return nil
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
