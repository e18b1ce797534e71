package shapes

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/c360studio/semshape/config"
	"github.com/c360studio/semshape/description"
	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/namespace"
	"github.com/c360studio/semshape/source"
	"github.com/c360studio/semshape/vocabulary/shacl"
)

// Options are the fixed tables a Compiler is built with.
type Options struct {
	Allocator Allocator
	// Suffix is appended to class local names to form shape IRIs.
	Suffix string
	// RootClasses lists root classes per module for modular sources.
	RootClasses map[string][]string
	// Predicates carry class descriptions.
	Predicates []string
	Marker     string
	Wildcards  []string
	// LiteralMarker is the target token meaning "plain literal".
	LiteralMarker string
	// DatatypePrefixes maps target prefixes that denote datatypes.
	DatatypePrefixes map[string]string
}

// OptionsFromConfig builds compiler options. A non-empty override replaces
// the configured shape namespace.
func OptionsFromConfig(cfg *config.Config, override string) Options {
	ns := cfg.Shapes.Namespace
	if override != "" {
		ns = override
	}
	return Options{
		Allocator: Allocator{
			Override:       ns,
			ModularBase:    cfg.Shapes.ModularBase,
			FallbackBase:   cfg.Shapes.FallbackBase,
			OntologySuffix: cfg.Shapes.OntologySuffix,
		},
		Suffix:           cfg.Shapes.Suffix,
		RootClasses:      cfg.Shapes.RootClasses,
		Predicates:       cfg.Description.Predicates,
		Marker:           cfg.Description.Marker,
		Wildcards:        cfg.Description.Wildcards,
		LiteralMarker:    cfg.Description.LiteralMarker,
		DatatypePrefixes: cfg.Description.DatatypePrefixes,
	}
}

// Compiler compiles loaded sources into shape graphs. Its options are copied
// at construction, so one Compiler can serve concurrent runs.
type Compiler struct {
	opts   Options
	parser *description.Parser
	logger *slog.Logger
}

// NewCompiler creates a compiler.
func NewCompiler(opts Options, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	opts.RootClasses = cloneRoots(opts.RootClasses)
	opts.Predicates = slices.Clone(opts.Predicates)
	opts.Wildcards = slices.Clone(opts.Wildcards)
	opts.DatatypePrefixes = maps.Clone(opts.DatatypePrefixes)
	if len(opts.Predicates) == 0 {
		opts.Predicates = []string{shacl.DCDescription}
	}
	if opts.Suffix == "" {
		opts.Suffix = "Shape"
	}

	return &Compiler{
		opts:   opts,
		parser: description.NewParser(description.Options{Marker: opts.Marker, Wildcards: opts.Wildcards}),
		logger: logger,
	}
}

// modelClass is a class with a property-list description in one module.
type modelClass struct {
	iri     string
	module  string
	entries []description.Entry
}

// resolvedProperty is a property shape before shape IRIs are minted.
type resolvedProperty struct {
	shape PropertyShape
	// target is the resolved target IRI for class-like targets.
	target string
	// owner is the module whose shape a KindNode target refers to.
	owner string
}

// run holds the per-compilation state.
type run struct {
	res        *source.Result
	resolvers  map[string]*namespace.Resolver
	index      *classIndex
	namespaces map[string]string
}

// Compile compiles every class with a property-list description. Any
// grammar, resolution or configuration failure aborts the whole compilation.
func (c *Compiler) Compile(res *source.Result) (*Graph, error) {
	if res == nil || len(res.Modules) == 0 {
		return nil, errors.New("compile shapes: no modules loaded")
	}

	r := &run{
		res:        res,
		resolvers:  make(map[string]*namespace.Resolver, len(res.Modules)),
		namespaces: make(map[string]string, len(res.Modules)),
	}

	var classes []modelClass
	for _, m := range res.Modules {
		r.resolvers[m.Name] = namespace.NewResolver(m.Name, m.Graph)
		r.namespaces[m.Name] = c.opts.Allocator.Namespace(res.Mode, m.Name, m.Graph.OntologyIRI())

		found, err := c.parseModule(m)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("Parsed module descriptions",
			"module", m.Name,
			"classes", len(found),
			"namespace", r.namespaces[m.Name])
		classes = append(classes, found...)
	}
	r.index = newClassIndex(classes)

	resolved := make([][]resolvedProperty, len(classes))
	for i, cls := range classes {
		props, err := c.resolveEntries(r, cls)
		if err != nil {
			return nil, err
		}
		resolved[i] = props
	}

	roots, err := c.roots(r, classes, resolved)
	if err != nil {
		return nil, err
	}

	return c.emit(r, classes, resolved, roots)
}

// parseModule parses the descriptions of every owl:Class of a module, in IRI
// order.
func (c *Compiler) parseModule(m source.Module) ([]modelClass, error) {
	var classes []modelClass
	for _, class := range m.Graph.SubjectsOfType(shacl.OWLClass) {
		text := c.description(m.Graph, class)
		entries, ok, err := c.parser.Parse(class, text)
		if err != nil {
			return nil, fmt.Errorf("parse description in module %s: %w", m.Name, err)
		}
		if !ok {
			continue
		}
		classes = append(classes, modelClass{iri: class, module: m.Name, entries: entries})
	}
	return classes, nil
}

// description returns the first description of class carrying the marker,
// trying predicates in configured order.
func (c *Compiler) description(g *graph.Graph, class string) string {
	for _, pred := range c.opts.Predicates {
		for _, text := range g.LiteralValues(class, pred) {
			if c.parser.IsPropertyList(text) {
				return text
			}
		}
	}
	return ""
}

func (c *Compiler) resolveEntries(r *run, cls modelClass) ([]resolvedProperty, error) {
	current := r.resolvers[cls.module]
	props := make([]resolvedProperty, 0, len(cls.entries))

	for _, e := range cls.entries {
		path, err := current.Expand(e.Property, cls.iri, e.Line)
		if err != nil {
			return nil, err
		}

		prop, err := c.resolveTarget(r, cls, e)
		if err != nil {
			return nil, err
		}
		prop.shape.Path = path
		prop.shape.Min = e.Min
		prop.shape.Max = e.Max
		props = append(props, prop)
	}
	return props, nil
}

// resolveTarget classifies a target token: literal marker, datatype, modeled
// class, or anything else.
func (c *Compiler) resolveTarget(r *run, cls modelClass, e description.Entry) (resolvedProperty, error) {
	if e.Target == c.opts.LiteralMarker {
		return resolvedProperty{shape: PropertyShape{Kind: KindLiteral}}, nil
	}

	tok := namespace.ParseToken(e.Target)
	if tok.Qualified {
		if ns, ok := c.opts.DatatypePrefixes[tok.Prefix]; ok {
			return resolvedProperty{shape: PropertyShape{Kind: KindDatatype, Datatype: ns + tok.Local}}, nil
		}
	} else if owner, ok := r.index.OwnerOfLocal(tok.Local, cls.module); ok {
		// Bare names resolve in the graph of the module modeling the class.
		if iri, _, found := r.resolvers[owner].Resolve(e.Target); found {
			if prop, ok := r.classTarget(iri, cls.module); ok {
				return prop, nil
			}
		}
	}

	iri, err := r.resolvers[cls.module].Expand(e.Target, cls.iri, e.Line)
	if err != nil {
		return resolvedProperty{}, err
	}
	if prop, ok := r.classTarget(iri, cls.module); ok {
		return prop, nil
	}
	return resolvedProperty{shape: PropertyShape{Kind: KindBlankNodeOrIRI}, target: iri}, nil
}

func (r *run) classTarget(iri, current string) (resolvedProperty, bool) {
	owner, ok := r.index.Owner(iri, current)
	if !ok {
		return resolvedProperty{}, false
	}
	return resolvedProperty{shape: PropertyShape{Kind: KindNode}, target: iri, owner: owner}, true
}

// roots returns, per module, the set of root class IRIs.
func (c *Compiler) roots(r *run, classes []modelClass, resolved [][]resolvedProperty) (map[string]map[string]bool, error) {
	out := make(map[string]map[string]bool, len(r.res.Modules))

	if r.res.Mode == source.ModeModular {
		for _, m := range r.res.Modules {
			entries, ok := c.opts.RootClasses[m.Name]
			if !ok {
				c.logger.Warn("No root classes configured for module", "module", m.Name)
				continue
			}
			roots, err := FixedRoots(m.Name, entries, r.resolvers[m.Name])
			if err != nil {
				return nil, err
			}
			out[m.Name] = roots
		}
		return out, nil
	}

	iris := make([]string, 0, len(classes))
	references := make(map[string][]string)
	for i, cls := range classes {
		iris = append(iris, cls.iri)
		for _, p := range resolved[i] {
			if p.target != "" {
				references[cls.iri] = append(references[cls.iri], p.target)
			}
		}
	}
	roots := DetectRoots(iris, references)
	for _, m := range r.res.Modules {
		out[m.Name] = roots
	}
	return out, nil
}

func (c *Compiler) emit(r *run, classes []modelClass, resolved [][]resolvedProperty, roots map[string]map[string]bool) (*Graph, error) {
	minted := make(map[string]string, len(classes))
	out := &Graph{
		Prefixes: c.prefixes(r),
		Shapes:   make([]NodeShape, 0, len(classes)),
	}

	for i, cls := range classes {
		iri := c.shapeIRI(r, cls.iri, cls.module)
		key := cls.module + " " + cls.iri
		if prev, ok := minted[iri]; ok && prev != key {
			return nil, fmt.Errorf("compile shapes: shape <%s> minted for both %s and %s", iri, prev, key)
		}
		minted[iri] = key

		shape := NodeShape{
			IRI:        iri,
			Class:      cls.iri,
			Module:     cls.module,
			Root:       roots[cls.module][cls.iri],
			Properties: make([]PropertyShape, 0, len(resolved[i])),
		}
		for _, p := range resolved[i] {
			ps := p.shape
			if ps.Kind == KindNode {
				ps.Node = c.shapeIRI(r, p.target, p.owner)
			}
			shape.Properties = append(shape.Properties, ps)
		}
		out.Shapes = append(out.Shapes, shape)
	}

	sort.Slice(out.Shapes, func(i, j int) bool {
		return out.Shapes[i].IRI < out.Shapes[j].IRI
	})

	c.logger.Debug("Compiled shapes",
		"shapes", len(out.Shapes),
		"classes", r.index.Len(),
		"properties", out.PropertyCount())
	return out, nil
}

func (c *Compiler) shapeIRI(r *run, class, module string) string {
	return ShapeIRI(r.namespaces[module], graph.LocalName(class), c.opts.Suffix)
}

// prefixes binds the standard namespaces, then each module's declared
// prefixes (first module wins), then the shape namespaces.
func (c *Compiler) prefixes(r *run) map[string]string {
	out := shacl.DefaultPrefixes()
	for _, m := range r.res.Modules {
		for prefix, ns := range m.Graph.Prefixes() {
			if _, taken := out[prefix]; !taken {
				out[prefix] = ns
			}
		}
	}

	bind := func(prefix, ns string) {
		if _, taken := out[prefix]; !taken {
			out[prefix] = ns
		}
	}
	if r.res.Mode == source.ModeModular {
		for _, m := range r.res.Modules {
			bind(strings.ToLower(m.Name)+"-shapes", r.namespaces[m.Name])
		}
	} else if len(r.res.Modules) == 1 {
		bind("shapes", r.namespaces[r.res.Modules[0].Name])
	}
	return out
}

func cloneRoots(in map[string][]string) map[string][]string {
	if in == nil {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}
