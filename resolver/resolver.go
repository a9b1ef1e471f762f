// Package resolver resolves component-style requests: a request for
// "Widget" or "ui/Widget" is answered by a file named after its last segment,
// either next to it (ui/Widget.js) or inside a directory of the same name
// (ui/Widget/Widget.js).
//
// The resolver never reads file contents and never fails. A request it
// cannot answer is deferred to the rest of the pipeline.
package resolver

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/LegacyCodeHQ/compresolve/fsstat"
	"github.com/LegacyCodeHQ/compresolve/pipeline"
)

// Name is the tap name the resolver registers under.
const Name = "component"

// DefaultVendorDir is the folder holding externally fetched dependencies.
// Requests through it are never treated as components.
const DefaultVendorDir = "node_modules"

var (
	// ErrInvalidExtension reports an extension token that cannot name a file.
	ErrInvalidExtension = errors.New("invalid extension")
	// ErrNoFileHook reports a hook whose taps cannot hand matches to the file hook.
	ErrNoFileHook = errors.New("hook cannot reach the file hook")
)

// DefaultExtensions returns the default extension priority: plain scripts,
// then scripts with markup.
func DefaultExtensions() []string {
	return []string{"js", "jsx"}
}

// Request is one resolution request.
type Request struct {
	BasePath    string
	RequestPath string
	Query       string
}

// Outcome is either deferred (Found is false) or a concrete file.
type Outcome struct {
	Found     bool
	Directory string
	Filename  string
	Query     string
}

// Descriptor is what the resolver hands to the file hook on a match.
func (o Outcome) Descriptor() pipeline.Request {
	return pipeline.Request{Path: o.Directory, Request: o.Filename, Query: o.Query}
}

// Path is the full path of the matched file.
func (o Outcome) Path() string {
	if !o.Found {
		return ""
	}
	return filepath.Join(o.Directory, o.Filename)
}

// Resolver answers component requests. It is safe for concurrent use.
type Resolver struct {
	extensions []string
	vendorDir  string
	stat       fsstat.StatFunc
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithExtensions sets the extension priority. Tokens may be given with or
// without a leading dot.
func WithExtensions(exts ...string) Option {
	return func(r *Resolver) {
		r.extensions = make([]string, len(exts))
		for i, e := range exts {
			r.extensions[i] = strings.TrimPrefix(e, ".")
		}
	}
}

// WithStat sets the filesystem the resolver probes.
func WithStat(stat fsstat.StatFunc) Option {
	return func(r *Resolver) {
		r.stat = stat
	}
}

// WithVendorDir overrides the vendored-dependency folder name.
func WithVendorDir(name string) Option {
	return func(r *Resolver) {
		r.vendorDir = name
	}
}

// New builds a Resolver, rejecting an empty or malformed extension list.
func New(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		extensions: DefaultExtensions(),
		vendorDir:  DefaultVendorDir,
		stat:       fsstat.OS(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if len(r.extensions) == 0 {
		return nil, fmt.Errorf("%w: extension list is empty", ErrInvalidExtension)
	}
	for _, e := range r.extensions {
		if err := ValidateExtension(e); err != nil {
			return nil, err
		}
	}
	if r.vendorDir == "" || strings.ContainsAny(r.vendorDir, `/\`) {
		return nil, fmt.Errorf("invalid vendor directory %q", r.vendorDir)
	}
	return r, nil
}

// ValidateExtension rejects tokens that cannot be appended to a file name.
func ValidateExtension(ext string) error {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}
	return nil
}

// Extensions returns a copy of the configured priority list.
func (r *Resolver) Extensions() []string {
	return append([]string(nil), r.extensions...)
}

// Resolve decides req. The result depends only on req, the configured
// extensions and which files exist right now.
func (r *Resolver) Resolve(req Request) Outcome {
	requestPath := toSlash(req.RequestPath)
	if requestPath == "" {
		return Outcome{}
	}
	if hasSegment(requestPath, r.vendorDir) {
		return Outcome{}
	}

	target := filepath.Clean(filepath.FromSlash(requestPath))
	if !filepath.IsAbs(target) {
		target = filepath.Join(normalize(req.BasePath), target)
	}

	baseName := filepath.Base(target)
	if baseName == "." || baseName == ".." || baseName == string(filepath.Separator) {
		return Outcome{}
	}

	// Sibling file first, then the directory named like the component.
	for _, dir := range []string{filepath.Dir(target), target} {
		if filename, ok := r.probe(dir, baseName); ok {
			return Outcome{Found: true, Directory: dir, Filename: filename, Query: req.Query}
		}
	}
	return Outcome{}
}

func (r *Resolver) probe(dir, baseName string) (string, bool) {
	for _, ext := range r.extensions {
		filename := baseName + "." + ext
		if fsstat.IsFile(r.stat, filepath.Join(dir, filename)) {
			return filename, true
		}
	}
	return "", false
}

// Step is the pipeline form of Resolve. A match goes to the file hook with
// the original callback as its fallback; anything else defers.
func (r *Resolver) Step(rc *pipeline.Context, req pipeline.Request, callback pipeline.Callback) {
	outcome := r.Resolve(Request{BasePath: req.Path, RequestPath: req.Request, Query: req.Query})
	if !outcome.Found {
		callback(nil, nil)
		return
	}
	rc.Logger().Debug("component matched", "directory", outcome.Directory, "file", outcome.Filename)
	rc.DoResolve(pipeline.HookFile, outcome.Descriptor(), callback)
}

// Register taps the resolver onto hook. The hook must be connected to the
// file hook, since every match is handed there.
func (r *Resolver) Register(p *pipeline.Pipeline, hook string) error {
	next, err := p.Successors(hook)
	if err != nil {
		return fmt.Errorf("failed to register %s resolver: %w", Name, err)
	}
	if !slices.Contains(next, pipeline.HookFile) {
		return fmt.Errorf("failed to register %s resolver on %q: %w", Name, hook, ErrNoFileHook)
	}
	if err := p.Tap(hook, Name, r.Step); err != nil {
		return fmt.Errorf("failed to register %s resolver: %w", Name, err)
	}
	return nil
}
