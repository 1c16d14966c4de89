package generate

import (
	"fmt"

	wphmr "github.com/artkrsk/vite-plugin-wp-hmr"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/logger"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var toStdout bool

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the dev server plugin once",
	Long: `Resolve the dev server origin and write the plugin into output_dir.
The file is left in place; run "wphmr clean" to remove it.`,
	RunE: generate,
}

func init() {
	generateCmd.Flags().BoolVar(&toStdout, "stdout", false, "print the plugin instead of writing it")
	cmd.RootCmd.AddCommand(generateCmd)
}

func generate(c *cobra.Command, args []string) error {
	config, err := cmd.LoadConfig()
	if err != nil {
		return err
	}

	if toStdout {
		origin, err := wphmr.ResolveOrigin(c.Context(), config)
		if err != nil {
			return err
		}
		code, err := wphmr.Generate(origin.String(), config)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(c.OutOrStdout(), code)
		return err
	}

	engine, err := wphmr.New(config)
	if err != nil {
		return err
	}
	if err := engine.Write(c.Context()); err != nil {
		return err
	}
	logger.L.Info().Str("path", engine.ArtifactPath()).Str("origin", engine.Origin().String()).Msg("Plugin written")
	color.Green("Wrote %s\n", engine.ArtifactPath())
	return nil
}
