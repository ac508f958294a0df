package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
	latest "github.com/tcnksm/go-latest"
)

var versionCheckUpdateFlag bool

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the build version and Go version used to build this tool.",
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok || info.Main.Version == "" {
				cmd.Println("version: unknown")
				return
			}

			cmd.Println("tool version\t", info.Main.Version)
			cmd.Println("go version\t", info.GoVersion)

			if versionCheckUpdateFlag {
				checkUpdate(cmd, info.Main.Version)
			}
		},
	}

	cmd.Flags().BoolVar(&versionCheckUpdateFlag, "check-update", false, "check GitHub for a newer release")

	return cmd
}

// checkUpdate compares the build version against the newest release tag.
// Network problems are silently ignored.
func checkUpdate(cmd *cobra.Command, currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "revu-dev",
		Repository: "revu",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return
	}

	if res.Outdated {
		cmd.Printf("A new version is available: %s (you have %s)\n", res.Current, currentVer)
		return
	}

	cmd.Printf("You are using the latest version: %s\n", currentVer)
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
