package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/semshape/config"
	"github.com/c360studio/semshape/graph"
)

// Options configure a Loader.
type Options struct {
	// ReservedDirs are subdirectory names never treated as modules.
	ReservedDirs []string
	// DefaultModule names a single source when nothing else is extractable.
	DefaultModule string
	// Formats are the recognised formats in preference order.
	Formats []FormatInfo
	Fetch   FetchOptions
}

// OptionsFromConfig builds loader options from configuration.
func OptionsFromConfig(cfg config.SourceConfig) Options {
	return Options{
		ReservedDirs:  cfg.ReservedDirs,
		DefaultModule: cfg.DefaultModule,
		Formats:       DefaultFormats(),
		Fetch: FetchOptions{
			Timeout:      cfg.FetchTimeout,
			UserAgent:    cfg.UserAgent,
			MaxBytes:     cfg.MaxFetchBytes,
			AllowPrivate: cfg.AllowPrivateHosts,
		},
	}
}

// Loader loads ontology sources.
type Loader struct {
	opts    Options
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(opts Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Formats) == 0 {
		opts.Formats = DefaultFormats()
	}
	if opts.DefaultModule == "" {
		opts.DefaultModule = "ontology"
	}
	opts.ReservedDirs = slices.Clone(opts.ReservedDirs)

	return &Loader{
		opts:    opts,
		fetcher: NewFetcher(opts.Fetch, opts.Formats),
		logger:  logger,
	}
}

// Load loads a file, a module directory or an http(s) URL.
func (l *Loader) Load(ctx context.Context, locator string) (*Result, error) {
	return l.LoadAs(ctx, locator, "")
}

// LoadAs loads locator and requires the given mode. An empty mode accepts
// either. A directory where a single file is required, or the reverse, is a
// ConfigurationError raised before anything is parsed.
func (l *Loader) LoadAs(ctx context.Context, locator string, want Mode) (*Result, error) {
	if locator == "" {
		return nil, &SourceError{Locator: locator, Reason: "no input given"}
	}

	if IsRemote(locator) {
		if err := requireMode(locator, ModeSingle, want); err != nil {
			return nil, err
		}
		return l.loadRemote(ctx, locator)
	}

	info, err := os.Stat(locator)
	if err != nil {
		return nil, &SourceError{Locator: locator, Reason: "cannot access input", Err: err}
	}

	if info.IsDir() {
		if err := requireMode(locator, ModeModular, want); err != nil {
			return nil, err
		}
		return l.loadDirectory(ctx, locator)
	}

	if err := requireMode(locator, ModeSingle, want); err != nil {
		return nil, err
	}
	m, err := l.loadFile(locator, filepath.Base(locator))
	if err != nil {
		return nil, err
	}
	m.Name = l.moduleName(m.Graph, "", locator)
	return &Result{Locator: locator, Mode: ModeSingle, Modules: []Module{m}}, nil
}

func requireMode(locator string, got, want Mode) error {
	if want == "" || want == got {
		return nil
	}
	return &config.ConfigurationError{
		Reason: fmt.Sprintf("%s is a %s source but a %s source is required", locator, got, want),
	}
}

// loadDirectory loads every non-reserved subdirectory holding a recognised
// ontology file as a module.
func (l *Loader) loadDirectory(ctx context.Context, dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &SourceError{Locator: dir, Reason: "cannot read directory", Err: err}
	}

	var modules []Module
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || slices.Contains(l.opts.ReservedDirs, entry.Name()) {
			continue
		}

		moduleDir := filepath.Join(dir, entry.Name())
		file, err := l.moduleFile(moduleDir)
		if err != nil {
			return nil, err
		}
		if file == "" {
			l.logger.Debug("Skipping directory without ontology file", "dir", moduleDir)
			continue
		}

		m, err := l.loadFile(file, filepath.Base(file))
		if err != nil {
			return nil, err
		}
		m.Name = entry.Name()
		modules = append(modules, m)

		l.logger.Debug("Loaded module",
			"module", m.Name,
			"file", file,
			"format", m.Format,
			"triples", m.Graph.Len())
	}

	if len(modules) == 0 {
		return nil, &SourceError{Locator: dir, Reason: "no module directory holds a recognised ontology file"}
	}
	sortModules(modules)
	return &Result{Locator: dir, Mode: ModeModular, Modules: modules}, nil
}

// moduleFile returns the first ontology file of a module directory in format
// preference order, or "" when there is none.
func (l *Loader) moduleFile(dir string) (string, error) {
	for _, f := range l.opts.Formats {
		matches, err := doublestar.Glob(os.DirFS(dir), extensionGlob(f.Extensions), doublestar.WithFilesOnly())
		if err != nil {
			return "", &SourceError{Locator: dir, Reason: "cannot list module directory", Err: err}
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return filepath.Join(dir, filepath.FromSlash(matches[0])), nil
		}
	}
	return "", nil
}

// extensionGlob matches file names ending in any of exts.
func extensionGlob(exts []string) string {
	if len(exts) == 1 {
		return "*" + exts[0]
	}
	trimmed := make([]string, len(exts))
	for i, e := range exts {
		trimmed[i] = strings.TrimPrefix(e, ".")
	}
	return "*.{" + strings.Join(trimmed, ",") + "}"
}

// loadFile reads and decodes one local file. The module name is left to the
// caller.
func (l *Loader) loadFile(file, name string) (Module, error) {
	format, ok := formatForExtension(l.opts.Formats, name)
	if !ok {
		format = FormatTurtle
	}

	f, err := os.Open(file)
	if err != nil {
		return Module{}, &SourceError{Locator: file, Reason: "cannot open file", Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Module{}, &SourceError{Locator: file, Reason: "cannot read file", Err: err}
	}

	g, err := l.decode(file, data, format)
	if err != nil {
		return Module{}, err
	}
	return Module{Path: file, Format: format, Graph: g}, nil
}

func (l *Loader) loadRemote(ctx context.Context, locator string) (*Result, error) {
	res, err := l.fetcher.Fetch(ctx, locator)
	if err != nil {
		return nil, &SourceError{Locator: locator, Reason: "cannot fetch", Err: err}
	}

	format, ok := formatForContentType(l.opts.Formats, res.ContentType)
	if !ok {
		if format, ok = formatForExtension(l.opts.Formats, urlPath(res.URL)); !ok {
			format = FormatTurtle
		}
	}

	g, err := l.decode(locator, res.Body, format)
	if err != nil {
		return nil, err
	}

	m := Module{
		Name:   l.moduleName(g, locator, ""),
		Path:   locator,
		Format: format,
		Graph:  g,
	}
	l.logger.Debug("Fetched remote ontology",
		"url", res.URL,
		"format", format,
		"bytes", len(res.Body),
		"triples", g.Len())
	return &Result{Locator: locator, Mode: ModeSingle, Modules: []Module{m}}, nil
}

func (l *Loader) decode(locator string, data []byte, format Format) (*graph.Graph, error) {
	triples, prefixes, err := decode(data, format)
	if err != nil {
		return nil, &SourceError{Locator: locator, Reason: "cannot parse " + string(format), Err: err}
	}
	return graph.New(triples, prefixes), nil
}

// moduleName names a single source: the last path segment of its ontology
// IRI, else of its URL, else the file name without extension, else the
// default name.
func (l *Loader) moduleName(g *graph.Graph, rawURL, file string) string {
	if name := lastSegment(g.OntologyIRI()); name != "" {
		return name
	}
	if rawURL != "" {
		if name := lastSegment(urlPath(rawURL)); name != "" {
			return name
		}
	}
	if file != "" {
		base := filepath.Base(file)
		if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" {
			return name
		}
	}
	return l.opts.DefaultModule
}

// lastSegment returns the last non-empty '/' or '#' separated segment.
func lastSegment(s string) string {
	s = strings.TrimRight(s, "/#")
	if i := strings.LastIndexAny(s, "/#"); i >= 0 {
		s = s[i+1:]
	}
	if strings.Contains(s, ":") {
		return ""
	}
	return s
}

func urlPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Clean("/" + u.Path)
}
