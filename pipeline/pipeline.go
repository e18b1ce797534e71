// Package pipeline runs whole compilations: it resolves the input, loads the
// source, compiles the shape graph, serializes it and hands it to the sinks.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/semshape/config"
	"github.com/c360studio/semshape/export"
	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/metrics"
	"github.com/c360studio/semshape/shapes"
	"github.com/c360studio/semshape/source"
)

// Request describes one compilation.
type Request struct {
	// Input is a file, module directory or URL. Mutually exclusive with Version.
	Input string
	// Version selects a release under the configured ontology root. Used
	// when Input is empty; empty means the current release.
	Version string
	// ShapeNamespace overrides the computed shape namespace.
	ShapeNamespace string
	// Layout requires "single" or "modular"; empty accepts either.
	Layout string
	// Format overrides the configured output format.
	Format export.Format
}

// Result is a completed compilation.
type Result struct {
	RunID    string
	Locator  string
	Mode     source.Mode
	Modules  []string
	Graph    *shapes.Graph
	Format   export.Format
	Body     []byte
	Duration time.Duration
}

// Runner executes compilations against one configuration.
type Runner struct {
	cfg       *config.Config
	loader    *source.Loader
	compiler  *shapes.Compiler
	publisher *graph.Publisher
	store     Store
	metrics   *metrics.Collector
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records every run on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Runner) { r.metrics = c }
}

// WithPublisher publishes every successful run on p.
func WithPublisher(p *graph.Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// Store keeps delivered shape graphs. *storage.Store implements it.
type Store interface {
	Put(ctx context.Context, msg *graph.ShapeGraphMessage) (uint64, error)
}

// WithStore stores every successful run in s.
func WithStore(s Store) Option {
	return func(r *Runner) { r.store = s }
}

// NewRunner validates cfg and creates a runner.
func NewRunner(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.loader = source.NewLoader(source.OptionsFromConfig(cfg.Source), r.logger)
	r.compiler = shapes.NewCompiler(shapes.OptionsFromConfig(cfg, ""), r.logger)
	return r, nil
}

// Run compiles one request. Nothing is returned on failure.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := r.now()
	runID := uuid.New().String()
	logger := r.logger.With("run_id", runID)

	res, err := r.run(ctx, req, logger)
	elapsed := r.now().Sub(start)
	if err != nil {
		mode := ""
		if res != nil {
			mode = string(res.Mode)
		}
		r.metrics.RecordFailure(mode, elapsed)
		logger.Error("Compilation failed", "error", err, "duration", elapsed)
		return nil, err
	}

	res.RunID = runID
	res.Duration = elapsed
	r.metrics.RecordSuccess(string(res.Mode), elapsed, metrics.RunStats{
		Modules:    len(res.Modules),
		Shapes:     len(res.Graph.Shapes),
		Properties: res.Graph.PropertyCount(),
	})
	logger.Info("Compiled shape graph",
		"locator", res.Locator,
		"mode", res.Mode,
		"modules", len(res.Modules),
		"shapes", len(res.Graph.Shapes),
		"format", res.Format,
		"duration", elapsed)
	return res, nil
}

// run returns a partial result alongside an error so the caller can label
// the failure with the source mode.
func (r *Runner) run(ctx context.Context, req Request, logger *slog.Logger) (*Result, error) {
	format, err := r.format(req.Format)
	if err != nil {
		return nil, err
	}

	locator, want, err := r.locate(req)
	if err != nil {
		return nil, err
	}

	logger.Debug("Loading source", "locator", locator, "mode", want)
	src, err := r.loader.LoadAs(ctx, locator, want)
	if err != nil {
		return nil, err
	}
	partial := &Result{Locator: src.Locator, Mode: src.Mode, Modules: src.ModuleNames()}

	compiler := r.compiler
	if req.ShapeNamespace != "" {
		compiler = shapes.NewCompiler(shapes.OptionsFromConfig(r.cfg, req.ShapeNamespace), logger)
	}
	g, err := compiler.Compile(src)
	if err != nil {
		return partial, err
	}

	body, err := export.Export(g, format)
	if err != nil {
		return partial, fmt.Errorf("serialize shape graph: %w", err)
	}

	partial.Graph = g
	partial.Format = format
	partial.Body = body
	return partial, nil
}

// locate resolves the request to a locator and the mode it must have.
func (r *Runner) locate(req Request) (string, source.Mode, error) {
	var want source.Mode
	switch req.Layout {
	case "":
	case config.LayoutSingle:
		want = source.ModeSingle
	case config.LayoutModular:
		want = source.ModeModular
	default:
		return "", "", &config.ConfigurationError{Reason: fmt.Sprintf("unknown layout %q", req.Layout)}
	}

	if req.Input != "" {
		if req.Version != "" {
			return "", "", &config.ConfigurationError{Reason: "input and version are mutually exclusive"}
		}
		return req.Input, want, nil
	}

	locator, mode, err := source.ResolveVersion(r.cfg.Ontology, req.Version)
	if err != nil {
		return "", "", err
	}
	if want != "" && want != mode {
		return "", "", &config.ConfigurationError{
			Reason: fmt.Sprintf("version %s has a %s layout but %s was requested", versionName(req.Version), mode, want),
		}
	}
	return locator, mode, nil
}

func (r *Runner) format(f export.Format) (export.Format, error) {
	if f == "" {
		f = export.Format(r.cfg.Output.Format)
	}
	parsed, err := export.ParseFormat(string(f))
	if err != nil {
		return "", &config.ConfigurationError{Reason: err.Error()}
	}
	return parsed, nil
}

func versionName(v string) string {
	if v == "" {
		return source.CurrentVersion
	}
	return v
}

// Publish sends a completed result to the configured publisher and store,
// if any.
func (r *Runner) Publish(ctx context.Context, res *Result) error {
	if res == nil || (r.publisher == nil && r.store == nil) {
		return nil
	}
	msg := r.message(res)

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, msg); err != nil {
			r.metrics.RecordPublishError()
			return err
		}
	}
	if r.store != nil {
		rev, err := r.store.Put(ctx, msg)
		if err != nil {
			r.metrics.RecordPublishError()
			return err
		}
		r.logger.Debug("Stored shape graph", "run_id", res.RunID, "source", res.Locator, "revision", rev)
	}
	return nil
}

func (r *Runner) message(res *Result) *graph.ShapeGraphMessage {
	info, _ := export.GetFormatInfo(res.Format)
	return &graph.ShapeGraphMessage{
		ID:          uuid.New().String(),
		RunID:       res.RunID,
		Source:      res.Locator,
		Mode:        string(res.Mode),
		Format:      string(res.Format),
		MIMEType:    info.MIMEType,
		Modules:     res.Modules,
		ShapeCount:  len(res.Graph.Shapes),
		Body:        string(res.Body),
		GeneratedAt: r.now().UTC(),
	}
}
