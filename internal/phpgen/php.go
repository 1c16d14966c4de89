package phpgen

import "strings"

var (
	singleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	doubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`)
)

// phpSingle renders s as a single-quoted PHP literal.
func phpSingle(s string) string {
	return "'" + singleQuoteEscaper.Replace(s) + "'"
}

// phpDouble renders s as a double-quoted PHP literal. Only characters that
// would end the literal or start an interpolation are escaped, so single
// quotes (common in CSP source lists) stay as written.
func phpDouble(s string) string {
	return `"` + doubleQuoteEscaper.Replace(s) + `"`
}

func phpArray(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = phpSingle(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// guard wraps body in a function_exists check. body must already be indented
// one level.
func guard(name, body string) string {
	return "if (!function_exists(" + phpSingle(name) + ")) {\n" + body + "}"
}

// indent prefixes every non-empty line with four spaces per level.
func indent(s string, level int) string {
	prefix := strings.Repeat("    ", level)
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		if line != "\n" {
			b.WriteString(prefix)
		}
		b.WriteString(line)
	}
	return b.String()
}
