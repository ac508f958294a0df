// Package cmd provides the root command and CLI setup for revu.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"revu.dev/pkg/revu/internal/adapter"
	m "revu.dev/pkg/revu/internal/model"
)

// Shared dependencies. Package variables so command tests can swap in
// fakes, wired in init().
var fsAdapter adapter.SourceFSAdapter
var resultStore adapter.ResultStore
var newReviewClient func() adapter.ReviewClient

// resultsOutputDirFlag is a root-level flag shared by commands that read
// or write saved review runs.
var resultsOutputDirFlag string

// serverFlag overrides the analysis service base URL.
var serverFlag string

// skipFoldersFlag overrides the skip-folder list for this invocation.
var skipFoldersFlag []string

// remoteConfigFlag toggles fetching the server's skip-folder list.
var remoteConfigFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	resultStore = adapter.NewFileResultStore()
	newReviewClient = func() adapter.ReviewClient {
		return adapter.NewHTTPReviewClient(viper.GetString(serverURLConfigKey), serverTimeout())
	}
}

const rootLongDescription = `Revu submits a folder of Python source files to a code-review service and
renders the per-file audit report and fixed code it returns.

Files under conventionally-ignored folders (virtualenvs, caches, build
artefacts, version control metadata) are filtered out locally before
anything leaves the machine.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revu",
		Short: "Submit Python sources for automated code review",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&resultsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for saved review runs",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringVarP(
		&serverFlag, serverFlagName, "s",
		viper.GetString(serverURLConfigKey),
		"base URL of the analysis service",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(serverFlagName), serverURLConfigKey)

	cmd.PersistentFlags().StringArrayVarP(
		&skipFoldersFlag, skipFoldersFlagName, "x",
		viper.GetStringSlice(skipFoldersConfigKey),
		"skip folders matching these names (replaces the built-in list, can be repeated)",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(skipFoldersFlagName), skipFoldersConfigKey)

	cmd.PersistentFlags().BoolVar(
		&remoteConfigFlag, remoteConfigFlagName,
		viper.GetBool(remoteConfigConfigKey),
		"fetch the server's skip-folder list at startup",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(remoteConfigFlagName), remoteConfigConfigKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// resolveRoot picks the folder to scan: the positional argument when
// given, the current directory otherwise.
func resolveRoot(args []string) m.Path {
	if len(args) > 0 {
		return m.Path(args[0])
	}

	return m.Path(".")
}
