package types

import (
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/typeconverter"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/logger"
	"github.com/spf13/cobra"
)

var outPath string

// typesCmd represents the types command
var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Emit TypeScript declarations for the plugin options",
	RunE: func(c *cobra.Command, args []string) error {
		if outPath == "" {
			return typeconverter.Render(c.OutOrStdout())
		}
		if err := typeconverter.Write(outPath); err != nil {
			return err
		}
		logger.L.Info().Str("path", outPath).Msg("Wrote declarations")
		return nil
	},
}

func init() {
	typesCmd.Flags().StringVarP(&outPath, "out", "o", "", "write to a file instead of stdout")
	cmd.RootCmd.AddCommand(typesCmd)
}
