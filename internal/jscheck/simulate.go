package jscheck

import (
	"encoding/json"
	"errors"
	"fmt"

	esbuildApi "github.com/evanw/esbuild/pkg/api"

	"github.com/artkrsk/vite-plugin-wp-hmr/internal/jsruntime"
)

const stubNamespace = "vite-client-stub"

// clientStub replaces the real Vite client: listeners are recorded on
// globalThis so the footer can fire them.
const clientStub = `export function createHotContext(path) {
  globalThis.__hotPath = path;
  return {
    on(event, cb) {
      (globalThis.__listeners[event] = globalThis.__listeners[event] || []).push(cb);
    },
  };
}
`

const documentStub = `globalThis.__listeners = {};
var __links = %s.map(function (href) { return { href: href }; });
var document = {
  querySelectorAll: function (selector) {
    return selector === 'link[rel="stylesheet"]' ? __links : [];
  },
};
`

const fireFooter = `(globalThis.__listeners[%s] || []).forEach(function (cb) { cb(); });
JSON.stringify({ path: globalThis.__hotPath, hrefs: __links.map(function (l) { return l.href; }) });
`

var clientStubPlugin = esbuildApi.Plugin{
	Name: stubNamespace,
	Setup: func(build esbuildApi.PluginBuild) {
		build.OnResolve(esbuildApi.OnResolveOptions{Filter: `^https?://`},
			func(args esbuildApi.OnResolveArgs) (esbuildApi.OnResolveResult, error) {
				return esbuildApi.OnResolveResult{Path: args.Path, Namespace: stubNamespace}, nil
			})
		build.OnLoad(esbuildApi.OnLoadOptions{Filter: `.*`, Namespace: stubNamespace},
			func(args esbuildApi.OnLoadArgs) (esbuildApi.OnLoadResult, error) {
				contents := clientStub
				return esbuildApi.OnLoadResult{Contents: &contents, Loader: esbuildApi.LoaderJS}, nil
			})
	},
}

// Replay is the observable outcome of firing one event.
type Replay struct {
	HotPath string   `json:"path"`
	Hrefs   []string `json:"hrefs"`
}

// Simulate bundles the inline module with a stub client, loads it in the
// pool with stylesheet links at hrefs, fires event and returns the rewritten
// hrefs.
func Simulate(pool *jsruntime.Pool, js string, hrefs []string, event string) (Replay, error) {
	program, err := bundle(js, hrefs, event)
	if err != nil {
		return Replay{}, err
	}
	out, err := pool.Execute(program)
	if err != nil {
		return Replay{}, fmt.Errorf("run module: %w", err)
	}
	var replay Replay
	if err := json.Unmarshal([]byte(out), &replay); err != nil {
		return Replay{}, fmt.Errorf("decode replay %q: %w", out, err)
	}
	return replay, nil
}

func bundle(js string, hrefs []string, event string) (string, error) {
	if hrefs == nil {
		hrefs = []string{}
	}
	linksJSON, err := json.Marshal(hrefs)
	if err != nil {
		return "", err
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return "", err
	}

	result := esbuildApi.Build(esbuildApi.BuildOptions{
		Stdin: &esbuildApi.StdinOptions{
			Contents:   js,
			Loader:     esbuildApi.LoaderJS,
			Sourcefile: "inline-module.js",
		},
		Bundle:        true,
		Write:         false,
		Format:        esbuildApi.FormatIIFE,
		Target:        esbuildApi.ES2020,
		LegalComments: esbuildApi.LegalCommentsNone,
		Plugins:       []esbuildApi.Plugin{clientStubPlugin},
		Banner: map[string]string{
			"js": fmt.Sprintf(documentStub, linksJSON),
		},
		// The footer is the completion value QuickJS hands back.
		Footer: map[string]string{
			"js": fmt.Sprintf(fireFooter, eventJSON),
		},
	})
	if err := firstError(result.Errors); err != nil {
		return "", fmt.Errorf("bundle module: %w", err)
	}
	if len(result.OutputFiles) == 0 {
		return "", errors.New("bundle module: no output")
	}
	return string(result.OutputFiles[0].Contents), nil
}
