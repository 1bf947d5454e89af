// Package convert maps control-narrative repositories into OSCAL
// component definitions. The two models disagree about where control
// statements live: the narrative side nests them under
// (component, standard, control), the OSCAL side flattens them into
// per-component control implementations keyed by control identifier.
package convert

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openctrl/complianceio/config"
	"github.com/openctrl/complianceio/opencontrol"
	"github.com/openctrl/complianceio/oscal"
	"github.com/openctrl/complianceio/oscal/component"
	"github.com/openctrl/complianceio/schema"
)

// defaultRequirementDescription is written when every narrative entry is
// a keyed sub-part and no blanket text exists for the requirement.
const defaultRequirementDescription = "Requirements are implemented as described in the included statements."

// conversionNamespace seeds the uuids derived for converted entities.
// Deriving them from content keeps conversion deterministic: identical
// input serializes to byte-identical output.
var conversionNamespace = uuid.MustParse("a9febce1-37d7-4cf6-bf39-7b4cbbc46242")

// conversionTimestamp is the last-modified written when no override is
// given. A fixed value keeps reconversion byte-identical; callers who
// want a wall-clock stamp set one with WithModified.
var conversionTimestamp = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

// Options configures a conversion.
type Options struct {
	// Logger reports conversion progress at debug level.
	Logger *slog.Logger

	// Config supplies the catalog source mapping and output defaults.
	// Nil means the layered loader resolves it (defaults, user config,
	// project complianceio.yaml).
	Config *config.Config

	// Modified overrides the document's last-modified timestamp. Zero
	// means the fixed conversion timestamp, keeping output reproducible.
	Modified time.Time
}

// Option configures a conversion.
type Option func(*Options)

// WithLogger sets the logger used to report conversion progress.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithConfig sets the configuration used for catalog sources and output
// defaults.
func WithConfig(cfg *config.Config) Option {
	return func(o *Options) {
		if cfg != nil {
			o.Config = cfg
		}
	}
}

// WithModified sets the document's last-modified timestamp in place of
// the fixed conversion timestamp.
func WithModified(t time.Time) Option {
	return func(o *Options) {
		o.Modified = t
	}
}

func newOptions(opts []Option) (Options, error) {
	o := Options{Logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Config == nil {
		// No explicit config: resolve through the layered loader so a
		// project complianceio.yaml takes effect.
		cfg, err := config.NewLoader(o.Logger).Load()
		if err != nil {
			return Options{}, fmt.Errorf("load configuration: %w", err)
		}
		o.Config = cfg
	}
	return o, nil
}

// ComponentDefinition converts a control-narrative repository into an
// OSCAL component definition. Every repository component becomes one
// defined component; its control implementations group by standard key in
// first-appearance order, and statements keep source order.
func ComponentDefinition(repo *opencontrol.Repository, opts ...Option) (*component.Definition, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	def := &component.Definition{
		UUID: derivedUUID("component-definition", repo.Name),
		Metadata: oscal.Metadata{
			Title:        repo.Name,
			Version:      o.Config.Convert.Version,
			OscalVersion: oscal.Version,
			LastModified: o.modified(),
		},
	}

	for _, oc := range repo.Components {
		c, err := convertComponent(oc, o)
		if err != nil {
			return nil, err
		}
		if err := def.AddComponent(c); err != nil {
			return nil, &schema.ConversionError{Entity: oc.EffectiveKey(), Msg: err.Error()}
		}
		o.Logger.Debug("converted component",
			slog.String("component", oc.EffectiveKey()),
			slog.Int("control_implementations", len(c.ControlImplementations)))
	}

	return def, nil
}

func (o Options) modified() time.Time {
	if o.Modified.IsZero() {
		return conversionTimestamp
	}
	return o.Modified.UTC().Truncate(time.Second)
}

func convertComponent(oc *opencontrol.Component, o Options) (*component.Component, error) {
	key := oc.EffectiveKey()
	c := &component.Component{
		UUID:        derivedUUID("component", key),
		Type:        o.Config.Convert.ComponentType,
		Title:       oc.Name,
		Description: oc.Name,
	}

	// Group controls by standard key, keeping the order standards first
	// appear in and the source order of controls within each standard.
	var standardKeys []string
	grouped := make(map[string][]*opencontrol.Control)
	for _, ctrl := range oc.Satisfies {
		if _, seen := grouped[ctrl.StandardKey]; !seen {
			standardKeys = append(standardKeys, ctrl.StandardKey)
		}
		grouped[ctrl.StandardKey] = append(grouped[ctrl.StandardKey], ctrl)
	}

	for _, standardKey := range standardKeys {
		if !schema.IsWellFormedCatalogID(standardKey) {
			return nil, &schema.ConversionError{
				Entity: key,
				Msg:    fmt.Sprintf("standard key %q is not a usable catalog identifier", standardKey),
			}
		}
		source, ok := o.Config.Source(standardKey)
		if !ok {
			return nil, &schema.ConversionError{
				Entity: key,
				Msg:    fmt.Sprintf("no catalog source configured for standard %q and no default set", standardKey),
			}
		}

		ci := &component.ControlImplementation{
			UUID:        derivedUUID("control-implementation", key, standardKey),
			Source:      source,
			Description: standardKey,
		}
		for _, ctrl := range grouped[standardKey] {
			ci.ImplementedRequirements = append(ci.ImplementedRequirements,
				convertControl(ctrl, key, standardKey))
		}
		c.AddControlImplementation(ci)
	}

	return c, nil
}

// convertControl maps one narrative control onto an implemented
// requirement. Keyed narrative entries become statements named
// "<standard>:<control>_smt.<part>"; un-keyed (or "shared") entries
// become the requirement description. A control with no keyed entries
// still emits a single statement, so every requirement is addressable by
// at least one statement identifier.
func convertControl(ctrl *opencontrol.Control, componentKey, standardKey string) *component.ImplementedRequirement {
	ir := &component.ImplementedRequirement{
		UUID:        derivedUUID("implemented-requirement", componentKey, standardKey, ctrl.ControlKey),
		ControlID:   schema.OscalizeControlID(ctrl.ControlKey),
		Description: defaultRequirementDescription,
	}

	for _, p := range ctrl.Parameters {
		ir.Props = append(ir.Props, oscal.Property{Name: p.Key, Value: p.Text})
	}

	qualified := schema.QualifiedControlID{Catalog: standardKey, Control: ctrl.ControlKey}
	var blanket []string
	for _, entry := range ctrl.Narrative {
		// "shared" marks text common to every part, not a part key.
		if entry.Key != "" && entry.Key != "shared" {
			ir.Statements = append(ir.Statements, &component.Statement{
				StatementID: fmt.Sprintf("%s_smt.%s", qualified, entry.Key),
				UUID: derivedUUID("statement", componentKey, standardKey,
					ctrl.ControlKey, entry.Key),
				Description: strings.TrimSpace(entry.Text),
			})
			continue
		}
		blanket = append(blanket, strings.TrimSpace(entry.Text))
	}
	if len(blanket) > 0 {
		ir.Description = strings.Join(blanket, "\n\n")
	}

	if len(ir.Statements) == 0 {
		ir.Statements = []*component.Statement{{
			StatementID: qualified.String(),
			UUID: derivedUUID("statement", componentKey, standardKey,
				ctrl.ControlKey),
			Description: ir.Description,
		}}
	}

	return ir
}

// derivedUUID derives a stable uuid from the identifying path of a
// converted entity.
func derivedUUID(parts ...string) string {
	return uuid.NewSHA1(conversionNamespace, []byte(strings.Join(parts, "\x1f"))).String()
}
