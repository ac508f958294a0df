package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"revu.dev/pkg/revu/internal/controller"
	"revu.dev/pkg/revu/internal/domain"
)

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [path]",
		Short: "Preview which files would be submitted for review",
		Long: `Scan a project folder and show the files that would be submitted,
along with a summary of files skipped because they live under excluded
folders. Nothing is sent to the server.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			root := resolveRoot(args)

			client := newReviewClient()
			skip := domain.NewSkipFolderSource(configuredSkipFolders(), client)

			// The fetch races the scan by design; a scan observes
			// whichever list is resolved when it starts.
			if viper.GetBool(remoteConfigConfigKey) {
				go skip.FetchRemote(ctx)
			}

			selector := domain.NewSelector(fsAdapter, skip, viper.GetString(extensionConfigKey))

			selection, err := selector.Scan(ctx, root)
			if err != nil {
				return err
			}

			ui := controller.NewSimpleUI(cmd)

			return ui.DisplaySelection(ctx, selection)
		},
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
