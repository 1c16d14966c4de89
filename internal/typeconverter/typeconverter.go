// Package typeconverter emits TypeScript declarations for the options the
// Vite side passes to wphmr, so vite.config.ts can type-check them.
package typeconverter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tkrajina/typescriptify-golang-structs/typescriptify"
)

// PluginOptions mirrors the Vite plugin options object.
type PluginOptions struct {
	OutputDir       string   `json:"outputDir"`
	FileName        string   `json:"fileName,omitempty"`
	DevPatterns     []string `json:"devPatterns,omitempty"`
	CSSReloadEvents []string `json:"cssReloadEvents,omitempty"`
	CSP             string   `json:"csp,omitempty" ts_type:"boolean | string"`
	CacheTTL        int      `json:"cacheTtl,omitempty"`
	Cleanup         bool     `json:"cleanup,omitempty"`
	Origin          string   `json:"origin,omitempty"`
}

func converter() *typescriptify.TypeScriptify {
	c := typescriptify.New().Add(PluginOptions{})
	c.CreateInterface = true
	c.BackupDir = ""
	return c
}

// Render writes the declarations to w.
func Render(w io.Writer) error {
	out, err := converter().Convert(nil)
	if err != nil {
		return fmt.Errorf("convert options: %w", err)
	}
	_, err = io.WriteString(w, out+"\n")
	return err
}

// Write renders the declarations into path, creating its directory.
func Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
