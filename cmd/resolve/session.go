package resolve

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/LegacyCodeHQ/compresolve/config"
	"github.com/LegacyCodeHQ/compresolve/fsstat"
	"github.com/LegacyCodeHQ/compresolve/internal/devlog"
	"github.com/LegacyCodeHQ/compresolve/pipeline"
	"github.com/LegacyCodeHQ/compresolve/resolver"
	"github.com/spf13/cobra"
)

// Options are the flags shared by every command that builds a pipeline.
type Options struct {
	Base       string
	ConfigPath string
	Extensions []string
	VendorDir  string
	Query      string
	Format     string
	Relative   bool
	Verbose    bool
}

// AddFlags registers opts on cmd.
func AddFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Base, "base", "b", ".", "Directory requests are relative to")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file (default: <base>/"+config.FileName+")")
	cmd.Flags().StringSliceVarP(&opts.Extensions, "ext", "e", nil, "Extensions to try, in priority order (default: js,jsx)")
	cmd.Flags().StringVar(&opts.VendorDir, "vendor-dir", "", "Vendored dependency folder that is never resolved as a component (default: node_modules)")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "Query attached to requests that carry none")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatText, "Output format (text, json)")
	cmd.Flags().BoolVar(&opts.Relative, "relative", false, "Print resolved paths relative to the base directory")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Trace pipeline steps on stderr")
}

// Session is a ready-to-use pipeline with the component resolver tapped in.
type Session struct {
	Base     string
	Config   config.Config
	Pipeline *pipeline.Pipeline
	Logger   *slog.Logger

	query    string
	relative bool
}

// NewSession loads configuration, applies flag overrides and wires the
// pipeline against the local filesystem.
func (o *Options) NewSession(cmd *cobra.Command) (*Session, error) {
	return o.newSession(cmd, fsstat.OS())
}

func (o *Options) newSession(cmd *cobra.Command, stat fsstat.StatFunc) (*Session, error) {
	if o.Format != FormatText && o.Format != FormatJSON {
		return nil, fmt.Errorf("unknown format %q (want %s or %s)", o.Format, FormatText, FormatJSON)
	}

	base := o.Base
	if base == "" {
		base = "."
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	var cfg config.Config
	if o.ConfigPath != "" {
		cfg, err = config.Load(o.ConfigPath)
	} else {
		cfg, err = config.LoadDir(absBase)
	}
	if err != nil {
		return nil, err
	}
	cfg = cfg.Merge(config.Config{Extensions: o.Extensions, VendorDir: o.VendorDir})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	handler := devlog.Handler(slog.LevelDebug)
	if o.Verbose {
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)

	p, err := pipeline.Default(stat, pipeline.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	r, err := resolver.New(append(cfg.ResolverOptions(), resolver.WithStat(stat))...)
	if err != nil {
		return nil, err
	}
	if err := r.Register(p, cfg.Hook); err != nil {
		return nil, err
	}

	return &Session{
		Base:     absBase,
		Config:   cfg,
		Pipeline: p,
		Logger:   logger,
		query:    o.Query,
		relative: o.Relative,
	}, nil
}

// Entry is the outcome for one raw request.
type Entry struct {
	Request string `json:"request"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Query   string `json:"query,omitempty"`
}

// ResolveAll runs every raw request ("path" or "path?query") through the
// pipeline. Unresolved requests are entries with Found unset, not errors.
func (s *Session) ResolveAll(raw []string) ([]Entry, error) {
	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		req := pipeline.ParseRequest(s.Base, r)
		if req.Query == "" {
			req.Query = s.query
		}

		result, err := s.Pipeline.Resolve(pipeline.HookResolve, req)
		if errors.Is(err, pipeline.ErrUnresolved) {
			entries = append(entries, Entry{Request: r})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", r, err)
		}

		entries = append(entries, Entry{
			Request: r,
			Found:   true,
			Path:    s.displayPath(result.Path),
			Query:   result.Query,
		})
	}
	return entries, nil
}

func (s *Session) displayPath(path string) string {
	if !s.relative {
		return path
	}
	rel, err := filepath.Rel(s.Base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
