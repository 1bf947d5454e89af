package opencontrol

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/openctrl/complianceio/schema"
)

// RootFileName is the canonical repository root file.
const RootFileName = "opencontrol.yaml"

type options struct {
	logger *slog.Logger
	layout Layout
}

// Option configures a load or save call.
type Option func(*options)

// WithLogger sets the logger used to report file operations at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLayout overrides structural layout detection with an explicit hint.
func WithLayout(layout Layout) Option {
	return func(o *options) { o.layout = layout }
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default(), layout: LayoutAuto}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type loader struct {
	options
	root string
}

// rootFile is the on-disk shape of opencontrol.yaml: metadata plus relative
// paths to the component, standard, and certification files.
type rootFile struct {
	SchemaVersion  string                  `yaml:"schema_version"`
	Name           string                  `yaml:"name"`
	Metadata       *Metadata               `yaml:"metadata,omitempty"`
	Components     []string                `yaml:"components,omitempty"`
	Standards      []string                `yaml:"standards,omitempty"`
	Certifications []string                `yaml:"certifications,omitempty"`
	Dependencies   map[string][]Dependency `yaml:"dependencies,omitempty"`
}

var rootKnownKeys = []string{
	"schema_version", "name", "metadata", "components", "standards",
	"certifications", "dependencies",
}

// Load reads an OpenControl repository. Path may be the repository root
// directory or the opencontrol.yaml file itself.
//
// Load fails with NotFoundError if the root file or a referenced file is
// absent, ParseError on malformed YAML, ValidationError if required fields
// are missing or mistyped, and UnrecognizedLayoutError if a component file
// matches no known layout.
func Load(path string, opts ...Option) (*Repository, error) {
	rootPath := path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		rootPath = filepath.Join(path, RootFileName)
	}

	l := &loader{options: newOptions(opts), root: filepath.Dir(rootPath)}

	data, err := os.ReadFile(rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &schema.NotFoundError{Path: rootPath}
		}
		return nil, fmt.Errorf("read repository root: %w", err)
	}
	l.logger.Debug("read file", slog.String("path", rootPath))

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &schema.ParseError{Path: rootPath, Err: err}
	}
	if len(doc.Content) == 0 {
		return nil, &schema.ValidationError{Path: rootPath, Msg: "empty root file"}
	}

	var root rootFile
	if err := doc.Content[0].Decode(&root); err != nil {
		return nil, &schema.ValidationError{Path: rootPath, Msg: err.Error()}
	}
	extras, err := schema.UnknownYAML(doc.Content[0], rootKnownKeys...)
	if err != nil {
		return nil, &schema.ParseError{Path: rootPath, Err: err}
	}

	repo := &Repository{
		SchemaVersion: root.SchemaVersion,
		Name:          root.Name,
		Metadata:      root.Metadata,
		Dependencies:  root.Dependencies,
		Extras:        extras,
	}

	if repo.Components, err = l.resolveComponents(root.Components); err != nil {
		return nil, err
	}
	if repo.Standards, err = l.resolveStandards(root.Standards); err != nil {
		return nil, err
	}
	if repo.Certifications, err = l.resolveCertifications(root.Certifications); err != nil {
		return nil, err
	}

	if err := repo.Validate().Err(rootPath); err != nil {
		return nil, err
	}
	return repo, nil
}

// resolveComponents loads each referenced component file, falling back to
// filesystem discovery when the root file lists none.
func (l *loader) resolveComponents(entries []string) ([]*Component, error) {
	if len(entries) == 0 {
		discovered, err := l.discover("components/*/component.{yaml,yml}")
		if err != nil {
			return nil, err
		}
		entries = discovered
	}

	var components []*Component
	for _, entry := range entries {
		path := filepath.Join(l.root, entry)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, "component.yaml")
		} else if err == nil && !hasYAMLExtension(path) {
			// Convention: non-YAML files in the tree are not ours.
			l.logger.Debug("skipping non-YAML file", slog.String("path", path))
			continue
		}

		doc, err := l.readDocument(path)
		if err != nil {
			return nil, err
		}

		c, err := l.resolveComponentFile(doc, path)
		if err != nil {
			return nil, err
		}
		if err := checkControlTriples(c, path); err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, nil
}

// checkControlTriples rejects duplicate (component, standard, control)
// triples as soon as a component is assembled, so the error can name the
// offending file.
func checkControlTriples(c *Component, path string) error {
	seen := make(map[string]bool)
	for _, control := range c.Satisfies {
		triple := control.StandardKey + "\x00" + control.ControlKey
		if seen[triple] {
			return &schema.ValidationError{
				Path:   path,
				Entity: c.EffectiveKey(),
				Field:  "satisfies",
				Msg: fmt.Sprintf("control %s %s implemented more than once",
					control.StandardKey, control.ControlKey),
			}
		}
		seen[triple] = true
	}
	return nil
}

func (l *loader) resolveStandards(entries []string) ([]*Standard, error) {
	if len(entries) == 0 {
		discovered, err := l.discover("standards/*.{yaml,yml}")
		if err != nil {
			return nil, err
		}
		entries = discovered
	}

	var standards []*Standard
	for _, entry := range entries {
		path := filepath.Join(l.root, entry)
		if !hasYAMLExtension(path) {
			l.logger.Debug("skipping non-YAML file", slog.String("path", path))
			continue
		}
		doc, err := l.readDocument(path)
		if err != nil {
			return nil, err
		}

		var s Standard
		if err := doc.Decode(&s); err != nil {
			return nil, &schema.ValidationError{Path: path, Msg: err.Error()}
		}
		standards = append(standards, &s)
	}
	return standards, nil
}

func (l *loader) resolveCertifications(entries []string) ([]*Certification, error) {
	if len(entries) == 0 {
		discovered, err := l.discover("certifications/*.{yaml,yml}")
		if err != nil {
			return nil, err
		}
		entries = discovered
	}

	var certifications []*Certification
	for _, entry := range entries {
		path := filepath.Join(l.root, entry)
		if !hasYAMLExtension(path) {
			l.logger.Debug("skipping non-YAML file", slog.String("path", path))
			continue
		}
		doc, err := l.readDocument(path)
		if err != nil {
			return nil, err
		}

		var c Certification
		if err := doc.Decode(&c); err != nil {
			return nil, &schema.ValidationError{Path: path, Msg: err.Error()}
		}
		certifications = append(certifications, &c)
	}
	return certifications, nil
}

// readDocument reads one YAML file and returns its root node.
func (l *loader) readDocument(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &schema.NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	l.logger.Debug("read file", slog.String("path", path))

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &schema.ParseError{Path: path, Err: err}
	}
	if len(doc.Content) == 0 {
		return nil, &schema.ValidationError{Path: path, Msg: "empty document"}
	}
	return doc.Content[0], nil
}

// discover globs for files under the repository root, returning paths
// relative to it in lexical order.
func (l *loader) discover(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(l.root), pattern)
	if err != nil {
		return nil, fmt.Errorf("discover %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

func hasYAMLExtension(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
