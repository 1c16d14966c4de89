// Package initcmd implements "wphmr init".
package initcmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	wphmr "github.com/artkrsk/vite-plugin-wp-hmr"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/logger"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var force bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create wphmr.yaml interactively",
	RunE:  run,
}

func init() {
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.RootCmd.AddCommand(initCmd)
}

// FileConfig is the on-disk shape written by init.
type FileConfig struct {
	OutputDir       string   `yaml:"output_dir"`
	Origin          string   `yaml:"origin,omitempty"`
	DevPatterns     []string `yaml:"dev_patterns,omitempty"`
	CSSReloadEvents []string `yaml:"css_reload_events,omitempty"`
	CSP             any      `yaml:"csp"`
	Cleanup         bool     `yaml:"cleanup"`
}

type answers struct {
	OutputDir string
	Origin    string
	Patterns  string
	Events    string
	CSP       bool
	Cleanup   bool
}

var questions = []*survey.Question{
	{
		Name:     "OutputDir",
		Prompt:   &survey.Input{Message: "Plugin directory:", Default: "wp-content/mu-plugins"},
		Validate: survey.Required,
	},
	{
		Name:   "Origin",
		Prompt: &survey.Input{Message: "Dev server origin (empty to auto-detect):", Default: wphmr.DefaultOrigin},
	},
	{
		Name:   "Patterns",
		Prompt: &survey.Input{Message: "Extra dev host suffixes (comma separated):", Help: "local, test and dev are always included"},
	},
	{
		Name:   "Events",
		Prompt: &survey.Input{Message: "Events that reload stylesheets (comma separated):"},
	},
	{
		Name:   "CSP",
		Prompt: &survey.Confirm{Message: "Send a permissive Content-Security-Policy on dev hosts?", Default: true},
	},
	{
		Name:   "Cleanup",
		Prompt: &survey.Confirm{Message: "Remove the plugin when the dev server stops?", Default: true},
	},
}

func run(c *cobra.Command, args []string) error {
	path := cmd.ConfigName + ".yaml"
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	var a answers
	if err := survey.Ask(questions, &a); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			logger.L.Warn().Msg("Aborted")
			return nil
		}
		return err
	}

	data, err := Render(a.fileConfig())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	color.Green("Wrote %s\n", path)
	return nil
}

func (a answers) fileConfig() FileConfig {
	return FileConfig{
		OutputDir:       strings.TrimSpace(a.OutputDir),
		Origin:          strings.TrimSpace(a.Origin),
		DevPatterns:     splitList(a.Patterns),
		CSSReloadEvents: splitList(a.Events),
		CSP:             a.CSP,
		Cleanup:         a.Cleanup,
	}
}

// Render encodes fc as YAML.
func Render(fc FileConfig) ([]byte, error) {
	if fc.CSP == nil {
		fc.CSP = true
	}
	return yaml.Marshal(fc)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
