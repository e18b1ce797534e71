package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/c360studio/semshape/config"
)

// Compile runs one request and delivers the result to output and the
// publisher. The output is left untouched when the run fails.
func (r *Runner) Compile(ctx context.Context, req Request, output string, stdout io.Writer) (*Result, error) {
	res, err := r.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := WriteOutput(output, res.Body, stdout); err != nil {
		return nil, err
	}
	if err := r.Publish(ctx, res); err != nil {
		return res, err
	}
	return res, nil
}

// Watch compiles req once and again after every change w reports, until ctx
// is done. Failed recompilations are logged and the previous output is kept.
// A configuration error on the first run is returned.
func (r *Runner) Watch(ctx context.Context, w *Watcher, req Request, output string, stdout io.Writer) error {
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() {
		if err := w.Stop(); err != nil {
			r.logger.Warn("Failed to stop watcher", "error", err)
		}
	}()

	if _, err := r.Compile(ctx, req, output, stdout); err != nil {
		if config.IsConfigurationError(err) {
			return err
		}
		r.logger.Warn("Initial compilation failed, waiting for changes", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			r.metrics.RecordWatchEvent()
			r.logger.Info("Ontology changed, recompiling", "paths", ev.Paths)
			if _, err := r.Compile(ctx, req, output, stdout); err != nil {
				r.logger.Warn("Recompilation failed, keeping previous output", "error", err)
			}
		}
	}
}
