// Package jscheck inspects the client side of a generated plugin: it pulls
// the inline module out of the PHP, checks it parses, and can replay its
// stylesheet listeners in QuickJS against a stub document.
package jscheck

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	esbuildApi "github.com/evanw/esbuild/pkg/api"
)

var ErrNoModuleScript = errors.New("no inline module script")

const moduleOpen = "<script type=\"module\">\n"

var (
	listenerPattern  = regexp.MustCompile(`hot\.on\(("(?:[^"\\]|\\.)*")`)
	clientSrcPattern = regexp.MustCompile(`<script type="module" src="([^"]+)"></script>`)
)

// ExtractModuleScript returns the body of the inline module script.
func ExtractModuleScript(php string) (string, bool) {
	start := strings.Index(php, moduleOpen)
	if start < 0 {
		return "", false
	}
	body := php[start+len(moduleOpen):]
	end := strings.Index(body, "</script>")
	if end < 0 {
		return "", false
	}
	return body[:end], true
}

// ClientURL returns the src of the client script tag.
func ClientURL(php string) (string, bool) {
	m := clientSrcPattern.FindStringSubmatch(php)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Events lists the event names the module subscribes to, in order.
func Events(js string) ([]string, error) {
	var events []string
	for _, m := range listenerPattern.FindAllStringSubmatch(js, -1) {
		var name string
		if err := json.Unmarshal([]byte(m[1]), &name); err != nil {
			return nil, fmt.Errorf("decode event name %s: %w", m[1], err)
		}
		events = append(events, name)
	}
	return events, nil
}

// Validate parses js as an ES module.
func Validate(js string) error {
	result := esbuildApi.Transform(js, esbuildApi.TransformOptions{
		Loader:     esbuildApi.LoaderJS,
		Format:     esbuildApi.FormatESModule,
		Sourcefile: "inline-module.js",
	})
	return firstError(result.Errors)
}

func firstError(messages []esbuildApi.Message) error {
	if len(messages) == 0 {
		return nil
	}
	msg := messages[0]
	if msg.Location != nil {
		return fmt.Errorf("%s at %s:%d: %s", msg.Text, msg.Location.File, msg.Location.Line, msg.Location.LineText)
	}
	return errors.New(msg.Text)
}

// Report summarizes a generated plugin file.
type Report struct {
	ClientURL string
	HasModule bool
	Events    []string
}

// Check extracts and validates the client side of php.
func Check(php string) (Report, error) {
	var r Report
	url, ok := ClientURL(php)
	if !ok {
		return r, errors.New("no client script tag")
	}
	r.ClientURL = url

	js, ok := ExtractModuleScript(php)
	if !ok {
		return r, nil
	}
	r.HasModule = true
	if err := Validate(js); err != nil {
		return r, fmt.Errorf("inline module: %w", err)
	}
	events, err := Events(js)
	if err != nil {
		return r, err
	}
	r.Events = events
	return r, nil
}
