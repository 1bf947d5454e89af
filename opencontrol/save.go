package opencontrol

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/openctrl/complianceio/schema"
)

// Save validates the repository and writes it under dir using the
// canonical layout, regardless of the layout it was loaded from. Saving a
// loaded repository and loading it back yields a semantically equal
// repository.
func (r *Repository) Save(dir string, opts ...Option) error {
	o := newOptions(opts)

	if err := r.Validate().Err(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create repository directory: %w", err)
	}

	root := rootFile{
		SchemaVersion: r.SchemaVersion,
		Name:          r.Name,
		Metadata:      r.Metadata,
		Dependencies:  r.Dependencies,
	}

	for _, c := range r.Components {
		rel := filepath.Join("components", c.EffectiveKey(), "component.yaml")
		if err := writeYAML(filepath.Join(dir, rel), c, o.logger); err != nil {
			return err
		}
		root.Components = append(root.Components, filepath.ToSlash(rel))
	}

	for _, s := range r.Standards {
		rel := filepath.Join("standards", slug.Make(s.Name)+".yaml")
		if err := writeYAML(filepath.Join(dir, rel), s, o.logger); err != nil {
			return err
		}
		root.Standards = append(root.Standards, filepath.ToSlash(rel))
	}

	for _, c := range r.Certifications {
		rel := filepath.Join("certifications", slug.Make(c.Name)+".yaml")
		if err := writeYAML(filepath.Join(dir, rel), c, o.logger); err != nil {
			return err
		}
		root.Certifications = append(root.Certifications, filepath.ToSlash(rel))
	}

	var node yaml.Node
	if err := node.Encode(root); err != nil {
		return fmt.Errorf("encode repository root: %w", err)
	}
	if err := schema.AppendYAML(&node, r.Extras); err != nil {
		return fmt.Errorf("encode repository root: %w", err)
	}
	return writeYAML(filepath.Join(dir, RootFileName), &node, o.logger)
}

// writeYAML marshals v and writes it, creating parent directories.
func writeYAML(path string, v any, logger *slog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Debug("wrote file", slog.String("path", path))
	return nil
}
