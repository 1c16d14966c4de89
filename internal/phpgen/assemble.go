// Package phpgen assembles the WordPress must-use plugin that connects pages
// to a Vite dev server.
//
// Assemble is pure: it performs no I/O and never validates the PHP it emits.
// The output is an ordered list of independent fragments (header, detector,
// probe, injector, policy) joined by Separator. Every function the plugin
// defines is wrapped in a function_exists guard so the file can be included
// more than once.
package phpgen

import "strings"

// Separator joins fragments in the generated file.
const Separator = "\n\n"

// Fragments is the fixed fragment order. Detector and probe must precede the
// functions that call them.
var Fragments = []Fragment{
	Header,
	DevDetector,
	Probe,
	Injector,
	Policy,
}

// Assemble renders the plugin for origin and opts.
func Assemble(origin Origin, opts Options) string {
	blocks := make([]string, 0, len(Fragments))
	for _, fragment := range Fragments {
		if text, ok := fragment(origin, opts); ok {
			blocks = append(blocks, strings.TrimRight(text, "\n"))
		}
	}
	return strings.Join(blocks, Separator) + "\n"
}
