// Package pipeline is a small module-resolution pipeline: named hooks, each
// holding an ordered list of taps. A tap either produces a result, usually by
// handing a rewritten request to another hook through DoResolve, or defers so
// the next tap on the same hook can try.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	graphlib "github.com/dominikbraun/graph"
)

const (
	HookResolve   = "resolve"
	HookDirectory = "directory"
	HookFile      = "file"
)

var (
	ErrUnknownHook  = errors.New("unknown hook")
	ErrNotConnected = errors.New("hooks are not connected")
	ErrCycle        = errors.New("hook transition would create a cycle")
	ErrUnresolved   = errors.New("request could not be resolved")
)

// Request is what flows between hooks. Path is the directory the request is
// relative to, Request is the requested path, Query is carried through
// untouched.
type Request struct {
	Path    string
	Request string
	Query   string
}

// ParseRequest splits a raw request of the form "path?query".
func ParseRequest(path, raw string) Request {
	request, query, _ := strings.Cut(raw, "?")
	return Request{Path: path, Request: request, Query: query}
}

// Result is a fully resolved file.
type Result struct {
	Path  string
	Query string
}

func (r Result) String() string {
	if r.Query == "" {
		return r.Path
	}
	return r.Path + "?" + r.Query
}

// Callback receives the outcome of a hook. Calling it with a nil result and
// a nil error means "not handled here".
type Callback func(result *Result, err error)

// Step is a single tap on a hook.
type Step func(rc *Context, req Request, callback Callback)

type tap struct {
	name string
	step Step
}

// HookInfo describes a hook and the names of its taps, in run order.
type HookInfo struct {
	Name string
	Taps []string
}

// Pipeline holds the hooks, the taps registered on them and the allowed
// transitions between hooks. Transitions form a DAG, so a resolution can
// never re-enter a hook it came from.
type Pipeline struct {
	mu     sync.RWMutex
	hooks  graphlib.Graph[string, string]
	taps   map[string][]tap
	logger *slog.Logger
}

type Option func(*Pipeline)

// WithLogger sets the logger used for tracing hook runs.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		hooks:  graphlib.New(graphlib.StringHash, graphlib.Directed(), graphlib.PreventCycles()),
		taps:   make(map[string][]tap),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddHook declares a hook. Declaring an existing hook is a no-op.
func (p *Pipeline) AddHook(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.hooks.AddVertex(name)
	if err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
		return fmt.Errorf("failed to add hook %q: %w", name, err)
	}
	return nil
}

// Connect allows taps on hook from to hand requests to hook to.
func (p *Pipeline) Connect(from, to string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, name := range []string{from, to} {
		if _, err := p.hooks.Vertex(name); err != nil {
			return fmt.Errorf("%w: %s", ErrUnknownHook, name)
		}
	}

	err := p.hooks.AddEdge(from, to)
	switch {
	case err == nil, errors.Is(err, graphlib.ErrEdgeAlreadyExists):
		return nil
	case errors.Is(err, graphlib.ErrEdgeCreatesCycle):
		return fmt.Errorf("%w: %s -> %s", ErrCycle, from, to)
	default:
		return fmt.Errorf("failed to connect %s -> %s: %w", from, to, err)
	}
}

// Tap appends step to the hook. Taps run in registration order.
func (p *Pipeline) Tap(hook, name string, step Step) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.hooks.Vertex(hook); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownHook, hook)
	}
	p.taps[hook] = append(p.taps[hook], tap{name: name, step: step})
	return nil
}

// Hooks lists the hooks in transition order, ties broken by name.
func (p *Pipeline) Hooks() ([]HookInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	order, err := graphlib.StableTopologicalSort(p.hooks, func(a, b string) bool {
		return a < b
	})
	if err != nil {
		return nil, fmt.Errorf("failed to order hooks: %w", err)
	}

	infos := make([]HookInfo, 0, len(order))
	for _, name := range order {
		info := HookInfo{Name: name}
		for _, t := range p.taps[name] {
			info.Taps = append(info.Taps, t.name)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Successors returns the hooks that taps on hook may hand requests to.
func (p *Pipeline) Successors(hook string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	adjacency, err := p.hooks.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	edges, ok := adjacency[hook]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHook, hook)
	}
	next := make([]string, 0, len(edges))
	for to := range edges {
		next = append(next, to)
	}
	sort.Strings(next)
	return next, nil
}

// Run passes req through the taps of hook. callback is invoked exactly once:
// with the first result or error a tap produces, or with (nil, nil) when
// every tap deferred.
func (p *Pipeline) Run(hook string, req Request, callback Callback) {
	p.mu.RLock()
	_, err := p.hooks.Vertex(hook)
	taps := append([]tap(nil), p.taps[hook]...)
	p.mu.RUnlock()

	once := onceCallback(callback, p.logger, hook)
	if err != nil {
		once(nil, fmt.Errorf("%w: %s", ErrUnknownHook, hook))
		return
	}
	p.runFrom(hook, taps, 0, req, once)
}

func (p *Pipeline) runFrom(hook string, taps []tap, i int, req Request, callback Callback) {
	if i >= len(taps) {
		p.logger.Debug("hook exhausted", "hook", hook, "path", req.Path, "request", req.Request)
		callback(nil, nil)
		return
	}

	t := taps[i]
	p.logger.Debug("tap", "hook", hook, "tap", t.name, "path", req.Path, "request", req.Request)
	rc := &Context{pipeline: p, hook: hook}
	t.step(rc, req, func(result *Result, err error) {
		if err != nil || result != nil {
			callback(result, err)
			return
		}
		p.runFrom(hook, taps, i+1, req, callback)
	})
}

// Resolve runs hook and returns its result. A request no tap handled is
// reported as ErrUnresolved.
func (p *Pipeline) Resolve(hook string, req Request) (*Result, error) {
	var (
		result *Result
		err    error
	)
	p.Run(hook, req, func(r *Result, e error) {
		result, err = r, e
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrUnresolved, req.Request, req.Path)
	}
	return result, nil
}

func onceCallback(callback Callback, logger *slog.Logger, hook string) Callback {
	var called bool
	var mu sync.Mutex
	return func(result *Result, err error) {
		mu.Lock()
		if called {
			mu.Unlock()
			logger.Warn("tap invoked its callback more than once", "hook", hook)
			return
		}
		called = true
		mu.Unlock()
		callback(result, err)
	}
}

// Context is handed to every tap and is how a tap reports a match onward.
type Context struct {
	pipeline *Pipeline
	hook     string
}

// Hook is the name of the hook the tap is running on.
func (c *Context) Hook() string {
	return c.hook
}

// Logger returns the pipeline's logger.
func (c *Context) Logger() *slog.Logger {
	return c.pipeline.logger
}

// DoResolve hands req to hook kind. The outcome of that hook, including
// "not handled", is passed to callback, so a tap can forward its own fallback
// and let resolution continue down the original chain.
func (c *Context) DoResolve(kind string, req Request, callback Callback) {
	c.pipeline.mu.RLock()
	_, err := c.pipeline.hooks.Edge(c.hook, kind)
	c.pipeline.mu.RUnlock()
	if err != nil {
		callback(nil, fmt.Errorf("%w: %s -> %s", ErrNotConnected, c.hook, kind))
		return
	}
	c.pipeline.Run(kind, req, callback)
}
