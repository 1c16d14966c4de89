// Package jsruntime runs small JavaScript programs on a fixed set of QuickJS
// workers. It is used to replay the generated client scripts offline.
package jsruntime

import (
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned by Execute after Close.
var ErrPoolClosed = errors.New("jsruntime: pool closed")

// JSRuntime is the interface for JavaScript execution
type JSRuntime interface {
	// Execute runs JavaScript code and returns the result as a string
	Execute(code string) (string, error)
	// Reset drops all globals so the next program starts clean
	Reset()
	// Destroy permanently destroys the runtime
	Destroy()
}

// PoolConfig configures the runtime pool
type PoolConfig struct {
	PoolSize int // Number of workers, each owning one runtime
	// New overrides the runtime constructor, mainly for tests.
	New func() JSRuntime
}

type result struct {
	out string
	err error
}

type job struct {
	code  string
	reply chan result
}

// Pool dispatches programs to workers. Each worker is pinned to its OS thread
// for its whole life since QuickJS state must not move between threads.
type Pool struct {
	jobs   chan job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewPool starts the workers.
func NewPool(config PoolConfig) *Pool {
	if config.PoolSize <= 0 {
		config.PoolSize = 2
	}
	if config.New == nil {
		config.New = func() JSRuntime { return NewQuickJSRuntime() }
	}
	p := &Pool{jobs: make(chan job)}
	for i := 0; i < config.PoolSize; i++ {
		p.wg.Add(1)
		go p.work(config.New)
	}
	return p
}

func (p *Pool) work(newRuntime func() JSRuntime) {
	defer p.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	rt := newRuntime()
	defer rt.Destroy()
	for j := range p.jobs {
		out, err := rt.Execute(j.code)
		rt.Reset()
		j.reply <- result{out: out, err: err}
	}
}

// Execute runs code on the next free worker and returns its final value.
func (p *Pool) Execute(code string) (string, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return "", ErrPoolClosed
	}
	reply := make(chan result, 1)
	p.jobs <- job{code: code, reply: reply}
	p.mu.RUnlock()

	r := <-reply
	return r.out, r.err
}

// Close stops the workers after in-flight programs finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
