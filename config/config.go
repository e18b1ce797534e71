// Package config provides configuration loading and management for Semshape.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semshape/vocabulary/shacl"
)

// Layout names accepted by Ontology.Layouts and the --layout flag.
const (
	LayoutSingle  = "single"
	LayoutModular = "modular"
)

// Config represents the complete Semshape configuration
type Config struct {
	Shapes      ShapesConfig      `yaml:"shapes"`
	Description DescriptionConfig `yaml:"description"`
	Source      SourceConfig      `yaml:"source"`
	Ontology    OntologyConfig    `yaml:"ontology"`
	Output      OutputConfig      `yaml:"output"`
	NATS        NATSConfig        `yaml:"nats"`
	Watch       WatchConfig       `yaml:"watch"`
}

// ShapesConfig configures where shapes are minted and which classes are roots.
type ShapesConfig struct {
	// Namespace overrides the computed shape namespace when set.
	Namespace string `yaml:"namespace"`
	// ModularBase is the base IRI for modular sources; each module gets base + name + "/".
	ModularBase string `yaml:"modular_base"`
	// FallbackBase is used for single fragments that declare no ontology IRI.
	FallbackBase string `yaml:"fallback_base"`
	// OntologySuffix is appended to a single fragment's ontology IRI.
	OntologySuffix string `yaml:"ontology_suffix"`
	// Suffix is appended to a class local name to form the shape IRI.
	Suffix string `yaml:"suffix"`
	// RootClasses lists the root classes (CURIEs or IRIs) per module name.
	// Only consulted for modular sources.
	RootClasses map[string][]string `yaml:"root_classes"`
}

// DescriptionConfig configures the property-list description grammar.
type DescriptionConfig struct {
	// Predicates carry class descriptions, in full IRI form.
	Predicates []string `yaml:"predicates"`
	// Marker identifies a description as a property list.
	Marker string `yaml:"marker"`
	// Wildcards are the bound tokens meaning "no limit".
	Wildcards []string `yaml:"wildcards"`
	// LiteralMarker is the target token compiled to sh:nodeKind sh:Literal.
	LiteralMarker string `yaml:"literal_marker"`
	// DatatypePrefixes maps target prefixes compiled to sh:datatype.
	DatatypePrefixes map[string]string `yaml:"datatype_prefixes"`
}

// SourceConfig configures source loading.
type SourceConfig struct {
	// ReservedDirs are subdirectory names never treated as modules.
	ReservedDirs []string `yaml:"reserved_dirs"`
	// DefaultModule names a single source when nothing better is extractable.
	DefaultModule string `yaml:"default_module"`
	// FetchTimeout bounds remote source retrieval.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// MaxFetchBytes bounds the size of a remote source.
	MaxFetchBytes int64 `yaml:"max_fetch_bytes"`
	// UserAgent is sent with remote requests.
	UserAgent string `yaml:"user_agent"`
	// AllowPrivateHosts permits fetching from localhost and private networks.
	AllowPrivateHosts bool `yaml:"allow_private_hosts"`
}

// OntologyConfig locates versioned ontology releases.
type OntologyConfig struct {
	// Root is the directory holding one subdirectory per version.
	Root string `yaml:"root"`
	// File is the single-file ontology name inside a version directory.
	File string `yaml:"file"`
	// Layouts maps versions to "single" or "modular". Unlisted versions are single.
	Layouts map[string]string `yaml:"layouts"`
}

// OutputConfig configures serialization.
type OutputConfig struct {
	// Format is turtle, ntriples or jsonld.
	Format string `yaml:"format"`
}

// NATSConfig configures publishing compiled shape graphs.
type NATSConfig struct {
	// URL is the NATS server URL (empty = do not publish)
	URL string `yaml:"url"`
	// Subject receives the compiled graph.
	Subject string `yaml:"subject"`
	// KVBucket stores the latest graph per source (empty = do not store).
	KVBucket string `yaml:"kv_bucket"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	// Debounce is how long to wait for more changes before recompiling.
	Debounce time.Duration `yaml:"debounce"`
	// MetricsAddr serves /metrics when set (e.g. ":9090").
	MetricsAddr string `yaml:"metrics_addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Shapes: ShapesConfig{
			ModularBase:    "https://w3id.org/skg-if/shapes/",
			FallbackBase:   "http://example.org/shapes/",
			OntologySuffix: "/shapes/",
			Suffix:         "Shape",
			RootClasses:    DefaultRootClasses(),
		},
		Description: DescriptionConfig{
			Predicates:    []string{shacl.DCDescription},
			Marker:        "The properties that can be used",
			Wildcards:     []string{"*", "N"},
			LiteralMarker: "rdfs:Literal",
			DatatypePrefixes: map[string]string{
				"xsd": shacl.XSDNamespace,
			},
		},
		Source: SourceConfig{
			ReservedDirs:  []string{"resources"},
			DefaultModule: "ontology",
			FetchTimeout:  30 * time.Second,
			MaxFetchBytes: 50 * 1024 * 1024,
			UserAgent:     "semshape/0.1",
		},
		Ontology: OntologyConfig{
			Root:    filepath.Join("data-model", "ontology"),
			File:    "skg-o.ttl",
			Layouts: map[string]string{},
		},
		Output: OutputConfig{
			Format: "turtle",
		},
		NATS: NATSConfig{
			Subject: "shapes.compiled",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// DefaultRootClasses returns the entry-point classes of the SKG-IF modules.
func DefaultRootClasses() map[string][]string {
	return map[string][]string{
		"agent":            {"foaf:Agent"},
		"grant":            {"frapo:Grant"},
		"research-product": {"fabio:Work"},
		"topic":            {"skos:Concept"},
		"venue":            {"fabio:Expression"},
		"data-source":      {"dcat:Catalog"},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Shapes.Suffix == "" {
		return &ConfigurationError{Reason: "shapes.suffix is required"}
	}
	if c.Shapes.ModularBase == "" {
		return &ConfigurationError{Reason: "shapes.modular_base is required"}
	}
	if c.Shapes.FallbackBase == "" {
		return &ConfigurationError{Reason: "shapes.fallback_base is required"}
	}
	if len(c.Description.Predicates) == 0 {
		return &ConfigurationError{Reason: "description.predicates must not be empty"}
	}
	if c.Description.Marker == "" {
		return &ConfigurationError{Reason: "description.marker is required"}
	}
	if len(c.Description.Wildcards) == 0 {
		return &ConfigurationError{Reason: "description.wildcards must not be empty"}
	}
	for version, layout := range c.Ontology.Layouts {
		if layout != LayoutSingle && layout != LayoutModular {
			return &ConfigurationError{Reason: fmt.Sprintf("ontology.layouts[%s]: unknown layout %q", version, layout)}
		}
	}
	switch c.Output.Format {
	case "turtle", "ntriples", "jsonld":
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("output.format: unsupported format %q", c.Output.Format)}
	}
	if c.Source.MaxFetchBytes <= 0 {
		return &ConfigurationError{Reason: "source.max_fetch_bytes must be positive"}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Shapes
	if other.Shapes.Namespace != "" {
		c.Shapes.Namespace = other.Shapes.Namespace
	}
	if other.Shapes.ModularBase != "" {
		c.Shapes.ModularBase = other.Shapes.ModularBase
	}
	if other.Shapes.FallbackBase != "" {
		c.Shapes.FallbackBase = other.Shapes.FallbackBase
	}
	if other.Shapes.OntologySuffix != "" {
		c.Shapes.OntologySuffix = other.Shapes.OntologySuffix
	}
	if other.Shapes.Suffix != "" {
		c.Shapes.Suffix = other.Shapes.Suffix
	}
	if len(other.Shapes.RootClasses) > 0 {
		if c.Shapes.RootClasses == nil {
			c.Shapes.RootClasses = make(map[string][]string)
		}
		for module, roots := range other.Shapes.RootClasses {
			c.Shapes.RootClasses[module] = roots
		}
	}

	// Description
	if len(other.Description.Predicates) > 0 {
		c.Description.Predicates = other.Description.Predicates
	}
	if other.Description.Marker != "" {
		c.Description.Marker = other.Description.Marker
	}
	if len(other.Description.Wildcards) > 0 {
		c.Description.Wildcards = other.Description.Wildcards
	}
	if other.Description.LiteralMarker != "" {
		c.Description.LiteralMarker = other.Description.LiteralMarker
	}
	if len(other.Description.DatatypePrefixes) > 0 {
		if c.Description.DatatypePrefixes == nil {
			c.Description.DatatypePrefixes = make(map[string]string)
		}
		for prefix, ns := range other.Description.DatatypePrefixes {
			c.Description.DatatypePrefixes[prefix] = ns
		}
	}

	// Source
	if len(other.Source.ReservedDirs) > 0 {
		c.Source.ReservedDirs = other.Source.ReservedDirs
	}
	if other.Source.DefaultModule != "" {
		c.Source.DefaultModule = other.Source.DefaultModule
	}
	if other.Source.FetchTimeout != 0 {
		c.Source.FetchTimeout = other.Source.FetchTimeout
	}
	if other.Source.MaxFetchBytes != 0 {
		c.Source.MaxFetchBytes = other.Source.MaxFetchBytes
	}
	if other.Source.UserAgent != "" {
		c.Source.UserAgent = other.Source.UserAgent
	}
	if other.Source.AllowPrivateHosts {
		c.Source.AllowPrivateHosts = true
	}

	// Ontology
	if other.Ontology.Root != "" {
		c.Ontology.Root = other.Ontology.Root
	}
	if other.Ontology.File != "" {
		c.Ontology.File = other.Ontology.File
	}
	if len(other.Ontology.Layouts) > 0 {
		if c.Ontology.Layouts == nil {
			c.Ontology.Layouts = make(map[string]string)
		}
		for version, layout := range other.Ontology.Layouts {
			c.Ontology.Layouts[version] = layout
		}
	}

	// Output
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}
	if other.NATS.KVBucket != "" {
		c.NATS.KVBucket = other.NATS.KVBucket
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Watch.MetricsAddr != "" {
		c.Watch.MetricsAddr = other.Watch.MetricsAddr
	}
}
