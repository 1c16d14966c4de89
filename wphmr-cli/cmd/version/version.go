package version

import (
	"fmt"
	"runtime/debug"

	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X .../cmd/version.Version=..."
var (
	Version   = ""
	BuildTime = ""
	Commit    = ""
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run: func(c *cobra.Command, args []string) {
		out := c.OutOrStdout()
		fmt.Fprintf(out, "Version %s\n", current())
		fmt.Fprintf(out, "Build Time: %s\n", BuildTime)
		fmt.Fprintf(out, "Commit: %s\n", Commit)
	},
}

func init() {
	cmd.RootCmd.AddCommand(versionCmd)
}

func current() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}
