package pipeline

import (
	"path/filepath"

	"github.com/LegacyCodeHQ/compresolve/fsstat"
)

// FileStep accepts a request naming an existing regular file and defers on
// anything else.
func FileStep(stat fsstat.StatFunc) Step {
	return func(_ *Context, req Request, callback Callback) {
		path := joinRequest(req)
		if !fsstat.IsFile(stat, path) {
			callback(nil, nil)
			return
		}
		callback(&Result{Path: path, Query: req.Query}, nil)
	}
}

// Forward hands the request unchanged to another hook.
func Forward(kind string) Step {
	return func(rc *Context, req Request, callback Callback) {
		rc.DoResolve(kind, req, callback)
	}
}

// Default builds the resolve -> directory -> file pipeline. A request is
// first tried as an exact file, then as a directory. The directory hook has
// no taps of its own; plugins such as the component resolver go there.
func Default(stat fsstat.StatFunc, opts ...Option) (*Pipeline, error) {
	p := New(opts...)
	for _, hook := range []string{HookResolve, HookDirectory, HookFile} {
		if err := p.AddHook(hook); err != nil {
			return nil, err
		}
	}
	edges := [][2]string{
		{HookResolve, HookFile},
		{HookResolve, HookDirectory},
		{HookDirectory, HookFile},
	}
	for _, e := range edges {
		if err := p.Connect(e[0], e[1]); err != nil {
			return nil, err
		}
	}

	taps := []struct {
		hook, name string
		step       Step
	}{
		{HookResolve, "as-file", Forward(HookFile)},
		{HookResolve, "as-directory", Forward(HookDirectory)},
		{HookFile, "exists", FileStep(stat)},
	}
	for _, t := range taps {
		if err := p.Tap(t.hook, t.name, t.step); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func joinRequest(req Request) string {
	if filepath.IsAbs(req.Request) {
		return filepath.Clean(req.Request)
	}
	return filepath.Join(req.Path, req.Request)
}
