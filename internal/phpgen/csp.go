package phpgen

// CSPKind selects which content-security-policy branch is generated.
type CSPKind int

const (
	// CSPDefault emits DefaultPolicy. It is the zero value so an unset option
	// behaves like `csp: true`.
	CSPDefault CSPKind = iota
	// CSPDisabled omits the header function and its registration.
	CSPDisabled
	// CSPCustom emits a caller supplied policy verbatim.
	CSPCustom
)

// DefaultPolicy is the permissive policy used while developing.
const DefaultPolicy = "default-src * data: blob: 'unsafe-inline' 'unsafe-eval'; " +
	"script-src * data: blob: 'unsafe-inline' 'unsafe-eval'; " +
	"style-src * data: blob: 'unsafe-inline'; " +
	"connect-src * ws: wss:; " +
	"img-src * data: blob:; " +
	"font-src * data:"

// CSP is the tagged variant behind the `csp` option.
type CSP struct {
	kind   CSPKind
	policy string
}

func DisabledCSP() CSP { return CSP{kind: CSPDisabled} }

func DefaultCSP() CSP { return CSP{kind: CSPDefault} }

// CustomCSP returns a variant that sends policy as-is. No validation is done.
// The header PHP sends at runtime is exactly policy, but the emitted source
// escapes \, " and $ inside the double-quoted literal, so policies with those
// characters do not appear byte-for-byte in the generated file.
func CustomCSP(policy string) CSP { return CSP{kind: CSPCustom, policy: policy} }

func (c CSP) Kind() CSPKind { return c.kind }

// Enabled reports whether a header function is generated at all.
func (c CSP) Enabled() bool { return c.kind != CSPDisabled }

// Policy returns the header value to send, or "" when disabled.
func (c CSP) Policy() string {
	switch c.kind {
	case CSPDisabled:
		return ""
	case CSPCustom:
		return c.policy
	default:
		return DefaultPolicy
	}
}

func (c CSP) String() string {
	switch c.kind {
	case CSPDisabled:
		return "disabled"
	case CSPCustom:
		return "custom"
	default:
		return "default"
	}
}
