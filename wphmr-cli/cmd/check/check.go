package check

import (
	"fmt"
	"os"

	"github.com/artkrsk/vite-plugin-wp-hmr/internal/jscheck"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/jsruntime"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/utils"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	simulate bool
	hrefs    []string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate the client side of a generated plugin",
	Long: `Parse the inline module script of a generated plugin with esbuild and list
the events it reloads stylesheets on. With --simulate each event is replayed
in QuickJS against the given stylesheet hrefs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: check,
}

func init() {
	checkCmd.Flags().BoolVar(&simulate, "simulate", false, "replay every event in a JS runtime")
	checkCmd.Flags().StringSliceVar(&hrefs, "href", []string{"/style.css"}, "stylesheet hrefs used by --simulate")
	cmd.RootCmd.AddCommand(checkCmd)
}

func check(c *cobra.Command, args []string) error {
	path, err := target(args)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	report, err := jscheck.Check(string(data))
	if err != nil {
		color.Red("%s: %v\n", path, err)
		return err
	}

	out := c.OutOrStdout()
	fmt.Fprintf(out, "client: %s\n", report.ClientURL)
	if !report.HasModule {
		fmt.Fprintln(out, "css reload: none")
		return nil
	}
	for _, event := range report.Events {
		fmt.Fprintf(out, "css reload: %s\n", event)
	}
	if !simulate {
		color.Green("OK\n")
		return nil
	}

	js, ok := jscheck.ExtractModuleScript(string(data))
	if !ok {
		return jscheck.ErrNoModuleScript
	}
	pool := jsruntime.NewPool(jsruntime.PoolConfig{PoolSize: 1})
	defer pool.Close()
	for _, event := range report.Events {
		replay, err := jscheck.Simulate(pool, js, hrefs, event)
		if err != nil {
			return fmt.Errorf("simulate %s: %w", event, err)
		}
		fmt.Fprintf(out, "%s -> %v\n", event, replay.Hrefs)
	}
	color.Green("OK\n")
	return nil
}

func target(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	config, err := cmd.LoadConfig()
	if err != nil {
		return "", err
	}
	if err := config.Validate(); err != nil {
		return "", err
	}
	return utils.ArtifactPath(config.OutputDir, config.FileName)
}
