package jsruntime

import (
	"github.com/buke/quickjs-go"
)

// QuickJSRuntime wraps one QuickJS runtime and its current context
type QuickJSRuntime struct {
	runtime *quickjs.Runtime
	context *quickjs.Context
}

// NewQuickJSRuntime creates a new QuickJS runtime
func NewQuickJSRuntime() *QuickJSRuntime {
	rt := quickjs.NewRuntime()
	return &QuickJSRuntime{
		runtime: rt,
		context: rt.NewContext(),
	}
}

// Execute evaluates code as a script and returns its completion value
func (q *QuickJSRuntime) Execute(code string) (string, error) {
	res := q.context.Eval(code)
	defer res.Free()

	if res.IsException() {
		return "", res.Error()
	}

	return res.String(), nil
}

// Reset swaps in a fresh context; the runtime itself is kept.
func (q *QuickJSRuntime) Reset() {
	if q.context != nil {
		q.context.Close()
	}
	q.context = q.runtime.NewContext()
}

// Destroy permanently destroys the runtime
func (q *QuickJSRuntime) Destroy() {
	if q.context != nil {
		q.context.Close()
		q.context = nil
	}
	if q.runtime != nil {
		q.runtime.Close()
		q.runtime = nil
	}
}
