package clean

import (
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/utils"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/logger"
	"github.com/spf13/cobra"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the generated plugin",
	Long:  "Remove the generated plugin. A missing file is not an error.",
	RunE:  clean,
}

func init() {
	cmd.RootCmd.AddCommand(cleanCmd)
}

func clean(c *cobra.Command, args []string) error {
	config, err := cmd.LoadConfig()
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	path, err := utils.ArtifactPath(config.OutputDir, config.FileName)
	if err != nil {
		return err
	}
	removed, err := utils.RemoveFile(path)
	if err != nil {
		return err
	}
	if removed {
		logger.L.Info().Str("path", path).Msg("Removed plugin")
	} else {
		logger.L.Info().Str("path", path).Msg("Nothing to remove")
	}
	return nil
}
