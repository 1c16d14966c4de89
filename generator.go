package wphmr

import (
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/devserver"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/phpgen"
)

// Generator turns a resolved origin and the config into the plugin source.
// The engine treats the result as opaque text.
type Generator interface {
	Generate(origin phpgen.Origin, config *Config) (string, error)
}

// ScriptGenerator is the default Generator.
type ScriptGenerator struct{}

func (ScriptGenerator) Generate(origin phpgen.Origin, config *Config) (string, error) {
	return phpgen.Assemble(origin, config.Options()), nil
}

// Generate parses origin and assembles the plugin for config. An invalid
// origin aborts before any text is produced.
func Generate(origin string, config Config) (string, error) {
	u, err := devserver.ParseOrigin(origin)
	if err != nil {
		return "", err
	}
	return ScriptGenerator{}.Generate(phpgen.NewOrigin(u), &config)
}
