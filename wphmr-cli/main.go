package main

import (
	"fmt"
	"os"

	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd"
	_ "github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd/check"
	_ "github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd/clean"
	_ "github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd/dev"
	_ "github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd/generate"
	_ "github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd/initcmd"
	_ "github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd/proxy"
	_ "github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd/types"
	_ "github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd/version"
	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

func main() {
	// Keep stdout clean for piped output.
	if !cmd.Quiet(os.Args[1:]) {
		art := figure.NewFigure("WP HMR", "slant", true)
		art.Print()
		fmt.Println()
		color.Magenta("Vite dev server bridge for WordPress\n\n")
	}
	cmd.Execute()
}
