package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/semshape/config"
	"github.com/c360studio/semshape/export"
	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/metrics"
	"github.com/c360studio/semshape/pipeline"
	"github.com/c360studio/semshape/storage"
)

// sourceFlags select and shape one compilation.
type sourceFlags struct {
	input          string
	version        string
	shapeNamespace string
	layout         string
	format         string
	natsURL        string
	subject        string
	kvBucket       string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Ontology file, module directory or URL")
	cmd.Flags().StringVar(&f.version, "version", "", "Ontology release under the configured root (default: current)")
	cmd.Flags().StringVar(&f.shapeNamespace, "shape-namespace", "", "Namespace IRI for generated shapes")
	cmd.Flags().StringVar(&f.layout, "layout", "", "Require a single or modular source")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVar(&f.natsURL, "publish-nats", "", "Publish the shape graph to this NATS server")
	cmd.Flags().StringVar(&f.subject, "subject", "", "NATS subject for published shape graphs")
	cmd.Flags().StringVar(&f.kvBucket, "store-bucket", "", "Keep the latest shape graph per source in this NATS KV bucket")
	cmd.MarkFlagsMutuallyExclusive("input", "version")
}

func (f *sourceFlags) request() pipeline.Request {
	return pipeline.Request{
		Input:          f.input,
		Version:        f.version,
		ShapeNamespace: f.shapeNamespace,
		Layout:         f.layout,
		Format:         export.Format(f.format),
	}
}

// apply overrides configuration from flags.
func (f *sourceFlags) apply(cfg *config.Config) {
	if f.format != "" {
		cfg.Output.Format = strings.ToLower(f.format)
	}
	if f.natsURL != "" {
		cfg.NATS.URL = f.natsURL
	}
	if f.subject != "" {
		cfg.NATS.Subject = f.subject
	}
	if f.kvBucket != "" {
		cfg.NATS.KVBucket = f.kvBucket
	}
}

func compileCmd(g *globalFlags) *cobra.Command {
	f := &sourceFlags{}

	cmd := &cobra.Command{
		Use:   "compile [output]",
		Short: "Compile an ontology into a SHACL shape graph",
		Long: `Compile an ontology into a SHACL shape graph. The graph is written to
output, or to stdout when output is "-" or omitted. A failed compilation
leaves an existing output file untouched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := pipeline.Stdout
			if len(args) == 1 {
				output = args[0]
			}
			return runCompile(cmd.Context(), g, f, output, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	f.register(cmd)
	return cmd
}

func watchCmd(g *globalFlags) *cobra.Command {
	f := &sourceFlags{}
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch <output>",
		Short: "Recompile the shape graph whenever the ontology changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), g, f, metricsAddr, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

func storedCmd(g *globalFlags) *cobra.Command {
	var natsURL, bucket string

	cmd := &cobra.Command{
		Use:   "stored [source]",
		Short: "List stored shape graphs, or print the latest one for a source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(g.logLevel, cmd.ErrOrStderr())
			cfg, err := loadConfig(g.configPath, &sourceFlags{natsURL: natsURL, kvBucket: bucket}, logger)
			if err != nil {
				return err
			}
			if cfg.NATS.URL == "" {
				return &config.ConfigurationError{Reason: "stored requires a NATS URL"}
			}
			if cfg.NATS.KVBucket == "" {
				cfg.NATS.KVBucket = storage.BucketShapes
			}

			nc, closeFn, err := graph.Connect(cfg.NATS.URL)
			if err != nil {
				return err
			}
			defer closeFn()
			js, err := jetstream.New(nc)
			if err != nil {
				return fmt.Errorf("create jetstream context: %w", err)
			}
			store, err := storage.Open(cmd.Context(), js, cfg.NATS.KVBucket)
			if err != nil {
				return err
			}
			return printStored(cmd.Context(), store, args, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS server URL")
	cmd.Flags().StringVar(&bucket, "store-bucket", "", "NATS KV bucket (default "+storage.BucketShapes+")")
	return cmd
}

// printStored prints the stored graph of args[0], or one line per stored
// source when no source is given.
func printStored(ctx context.Context, store *storage.Store, args []string, w io.Writer) error {
	if len(args) == 1 {
		msg, err := store.Latest(ctx, args[0])
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, msg.Body)
		return err
	}

	graphs, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, msg := range graphs {
		fmt.Fprintf(w, "%s\t%s\t%d shapes\t%s\n", msg.Source, msg.Mode, msg.ShapeCount, msg.GeneratedAt.Format(time.RFC3339))
	}
	return nil
}

func runCompile(ctx context.Context, g *globalFlags, f *sourceFlags, output string, stdout, stderr io.Writer) error {
	logger := setupLogger(g.logLevel, stderr)

	cfg, err := loadConfig(g.configPath, f, logger)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	opts, closeFn, err := natsSinks(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	runner, err := pipeline.NewRunner(cfg, append(opts, pipeline.WithLogger(logger))...)
	if err != nil {
		return err
	}

	_, err = runner.Compile(ctx, f.request(), output, stdout)
	return err
}

func runWatch(ctx context.Context, g *globalFlags, f *sourceFlags, metricsAddr, output string, stdout, stderr io.Writer) error {
	logger := setupLogger(g.logLevel, stderr)

	cfg, err := loadConfig(g.configPath, f, logger)
	if err != nil {
		return err
	}
	if metricsAddr != "" {
		cfg.Watch.MetricsAddr = metricsAddr
	}

	if ctx == nil {
		ctx = context.Background()
	}
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	opts, closeFn, err := natsSinks(signalCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	registry := prometheus.NewRegistry()
	opts = append(opts,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics.New(registry)),
	)

	runner, err := pipeline.NewRunner(cfg, opts...)
	if err != nil {
		return err
	}

	req := f.request()
	locator := req.Input
	if locator == "" {
		return &config.ConfigurationError{Reason: "watch requires --input"}
	}

	watcher, err := pipeline.NewWatcher(locator, cfg.Watch.Debounce, cfg.Source.ReservedDirs, logger)
	if err != nil {
		return err
	}

	if cfg.Watch.MetricsAddr != "" {
		stop := serveMetrics(signalCtx, cfg.Watch.MetricsAddr, registry, logger)
		defer stop()
	}

	logger.Info("Semshape watching",
		"version", Version,
		"input", locator,
		"output", output)

	return runner.Watch(signalCtx, watcher, req, output, stdout)
}

// natsSinks connects to NATS when configured and returns the publisher and
// store options for the runner.
func natsSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]pipeline.Option, func(), error) {
	if cfg.NATS.URL == "" {
		return nil, func() {}, nil
	}

	nc, closeFn, err := graph.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, nil, err
	}
	opts := []pipeline.Option{
		pipeline.WithPublisher(graph.NewPublisher(nc, cfg.NATS.Subject, logger)),
	}

	if cfg.NATS.KVBucket != "" {
		js, err := jetstream.New(nc)
		if err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("create jetstream context: %w", err)
		}
		store, err := storage.Open(ctx, js, cfg.NATS.KVBucket)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithStore(store))
		logger.Debug("Storing shape graphs", "bucket", cfg.NATS.KVBucket)
	}
	return opts, closeFn, nil
}

// serveMetrics serves /metrics until the returned function is called.
func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", "error", err)
		}
	}
}

// loadConfig loads layered configuration and applies flag overrides.
func loadConfig(path string, f *sourceFlags, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.NewLoader(logger).Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	f.apply(cfg)
	return cfg, nil
}

// setupLogger builds a text logger at the named level and installs it as
// the default.
func setupLogger(level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}
