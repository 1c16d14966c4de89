package phpgen

import (
	"fmt"
	"strings"
)

// Names of everything the generated plugin defines. They are part of the
// output contract: theme code may call the detector and probe directly.
const (
	DetectorFunc = "vite_wp_hmr_is_dev_environment"
	ProbeFunc    = "vite_wp_hmr_is_dev_server_running"
	InjectorFunc = "vite_wp_hmr_inject_client"
	PolicyFunc   = "vite_wp_hmr_csp_header"

	// CacheKeyPrefix namespaces the probe transient; the port is appended.
	CacheKeyPrefix = "vite_wp_hmr_running_"

	HeadHook    = "wp_head"
	HeadersHook = "send_headers"
	// HookPriority runs both callbacks ahead of theme and plugin output.
	HookPriority = 1

	// ProbeTimeout is the fsockopen timeout in seconds.
	ProbeTimeout = "0.1"

	nowdocMarker = "VITE_WP_HMR"
)

// Fragment builds one independent block of the plugin. ok is false when the
// block is not part of the output for these inputs.
type Fragment func(origin Origin, opts Options) (text string, ok bool)

// CacheKey is the transient key the probe uses for port.
func CacheKey(port int) string {
	return fmt.Sprintf("%s%d", CacheKeyPrefix, port)
}

const headerTemplate = `<?php
/**
 * Plugin Name: Vite WP HMR
 * Description: Loads the Vite hot-reload client from %s on development hosts. Generated by vite-plugin-wp-hmr, removed when the dev server stops.
 */`

// Header is the plugin identification block.
func Header(origin Origin, _ Options) (string, bool) {
	return fmt.Sprintf(headerTemplate, origin.String()), true
}

const detectorTemplate = `function %s() {
    $host = isset($_SERVER['HTTP_HOST']) ? strtolower($_SERVER['HTTP_HOST']) : '';
    $host = preg_replace('/:\d+$/', '', $host);
    if ($host === 'localhost' || $host === '127.0.0.1') {
        return true;
    }
    $patterns = %s;
    foreach ($patterns as $pattern) {
        $suffix = '.' . strtolower($pattern);
        if (substr($host, -strlen($suffix)) === $suffix) {
            return true;
        }
    }
    return false;
}
`

// DevDetector is the host header predicate.
func DevDetector(_ Origin, opts Options) (string, bool) {
	body := fmt.Sprintf(detectorTemplate, DetectorFunc, phpArray(DevPatternList(opts)))
	return guard(DetectorFunc, indent(body, 1)), true
}

const probeTemplate = `function %s() {
    $cache_key = %s;
    $cached = get_transient($cache_key);
    if ($cached !== false) {
        return $cached === '1';
    }
    $connection = @fsockopen(%s, %d, $errno, $errstr, %s);
    $running = $connection !== false;
    if ($running) {
        fclose($connection);
    }
    set_transient($cache_key, $running ? '1' : '0', %d);
    return $running;
}
`

// Probe is the cached reachability check against the dev server port. A
// cached '0' is returned as-is until the transient expires.
func Probe(origin Origin, opts Options) (string, bool) {
	body := fmt.Sprintf(probeTemplate,
		ProbeFunc,
		phpSingle(CacheKey(origin.Port)),
		phpSingle(origin.Host),
		origin.Port,
		ProbeTimeout,
		opts.cacheTTL(),
	)
	return guard(ProbeFunc, indent(body, 1)), true
}

// Injector prints the client tags into <head> and registers itself on wp_head.
func Injector(origin Origin, opts Options) (string, bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "    function %s() {\n", InjectorFunc)
	fmt.Fprintf(&b, "        if (!%s() || !%s()) {\n", DetectorFunc, ProbeFunc)
	b.WriteString("            return;\n")
	b.WriteString("        }\n")
	fmt.Fprintf(&b, "        echo %s . \"\\n\";\n", phpSingle(ClientScriptTag(origin)))
	if script, ok := CSSReloadScript(origin, opts.CSSReloadEvents); ok {
		// Nowdoc body and marker stay at column zero.
		fmt.Fprintf(&b, "        echo <<<'%s'\n", nowdocMarker)
		b.WriteString(script)
		b.WriteString("\n\n")
		b.WriteString(nowdocMarker + ";\n")
	}
	b.WriteString("    }\n")
	fmt.Fprintf(&b, "    add_action(%s, %s, %d);\n", phpSingle(HeadHook), phpSingle(InjectorFunc), HookPriority)
	return guard(InjectorFunc, b.String()), true
}

const policyTemplate = `function %s() {
    if (!%s()) {
        return;
    }
    header(%s);
}
add_action(%s, %s, %d);
`

// Policy sends the development CSP header. Absent when CSP is disabled.
func Policy(_ Origin, opts Options) (string, bool) {
	switch opts.CSP.Kind() {
	case CSPDisabled:
		return "", false
	case CSPDefault, CSPCustom:
		body := fmt.Sprintf(policyTemplate,
			PolicyFunc,
			DetectorFunc,
			phpDouble("Content-Security-Policy: "+opts.CSP.Policy()),
			phpSingle(HeadersHook), phpSingle(PolicyFunc), HookPriority,
		)
		return guard(PolicyFunc, indent(body, 1)), true
	default:
		return "", false
	}
}
