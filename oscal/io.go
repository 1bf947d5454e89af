package oscal

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openctrl/complianceio/schema"
)

// CatalogResolver answers whether a control identifier exists in a known
// catalog. Resolution is best-effort: validation flags unresolved
// references as warnings and never drops them.
type CatalogResolver interface {
	ResolveControlID(controlID string) bool
}

// Options configures a document load or save call.
type Options struct {
	// Logger reports file operations at debug level.
	Logger *slog.Logger
}

// Option configures a document load or save call.
type Option func(*Options)

// WithLogger sets the logger used to report file operations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts []Option) Options {
	o := Options{Logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ReadDocument reads one OSCAL JSON file into v, classifying failures into
// the error taxonomy: NotFoundError for a missing file, ParseError for
// malformed JSON, ValidationError for well-formed JSON of the wrong shape.
func ReadDocument(path string, v any, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &schema.NotFoundError{Path: path}
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if logger != nil {
		logger.Debug("read file", slog.String("path", path))
	}

	if err := json.Unmarshal(data, v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return &schema.ParseError{Path: path, Err: err}
		}
		return &schema.ValidationError{Path: path, Msg: err.Error()}
	}
	return nil
}

// WriteDocument marshals v with two-space indentation and writes it as a
// UTF-8 JSON file, creating parent directories.
func WriteDocument(path string, v any, logger *slog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if logger != nil {
		logger.Debug("wrote file", slog.String("path", path))
	}
	return nil
}
