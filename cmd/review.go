package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"revu.dev/pkg/revu/internal/controller"
	"revu.dev/pkg/revu/internal/domain"
	m "revu.dev/pkg/revu/internal/model"
)

var reviewPlainFlag bool
var reviewNoSaveFlag bool

// reviewCmd represents the review command.
var reviewCmd = newReviewCmd()

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review [path]",
		Short: "Submit a project folder for review",
		Long: `Scan a project folder, submit the accepted files to the analysis
service and render the per-file audit report and fixed code.

When stdout is a terminal this opens an interactive session; use --plain
to force one-shot output.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			root := resolveRoot(args)

			client := newReviewClient()
			skip := domain.NewSkipFolderSource(configuredSkipFolders(), client)
			selector := domain.NewSelector(fsAdapter, skip, viper.GetString(extensionConfigKey))
			session := domain.NewSession(client)

			outputDir := m.Path(viper.GetString(outputFlagName))
			if reviewNoSaveFlag {
				outputDir = ""
			}

			if !reviewPlainFlag && controller.IsTTY(os.Stdout) {
				tui := controller.NewSessionTUI(session, selector, skip, resultStore, outputDir, os.Stdout)
				return tui.Run(ctx, root)
			}

			return runPlainReview(cmd, session, selector, skip, root, outputDir)
		},
	}

	configureReviewFlags(cmd)

	return cmd
}

// runPlainReview is the non-interactive flow: one scan, one submission,
// one rendering of the outcome.
func runPlainReview(
	cmd *cobra.Command,
	session *domain.Session,
	selector *domain.Selector,
	skip *domain.SkipFolderSource,
	root m.Path,
	outputDir m.Path,
) error {
	ctx := cmd.Context()

	if viper.GetBool(remoteConfigConfigKey) {
		go skip.FetchRemote(ctx)
	}

	selection, err := selector.Scan(ctx, root)
	if err != nil {
		return err
	}

	session.StartSelection(selection)

	ui := controller.NewSimpleUI(cmd)

	if err := ui.DisplaySelection(ctx, selection); err != nil {
		return err
	}

	// Empty selection: the submit affordance is simply absent.
	if !session.CanSubmit() {
		return nil
	}

	ui.DisplaySubmitting(ctx, selection.Accepted())

	if err := session.Submit(ctx); err != nil {
		ui.DisplayError(ctx, session.LastError())
		return err
	}

	if err := ui.DisplayReviews(ctx, session.Reviews()); err != nil {
		return err
	}

	if outputDir != "" {
		run, err := resultStore.SaveRun(outputDir, string(root), session.Reviews())
		if err != nil {
			return err
		}

		cmd.Printf("Saved run %s under %s\n", run.ID, outputDir)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func configureReviewFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&reviewPlainFlag, plainFlagName, false, "plain one-shot output instead of the interactive session")
	cmd.Flags().BoolVar(&reviewNoSaveFlag, noSaveFlagName, false, "do not save the run to the output directory")
}
