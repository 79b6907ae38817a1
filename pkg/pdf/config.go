// Package pdf builds HistFactory probability models from workspace specs:
// parameter bookkeeping (Config), expected-data construction and the full
// likelihood (Model).
package pdf

import (
	"fmt"

	"github.com/fkrieter/pyhf/pkg/modifiers"
	"github.com/fkrieter/pyhf/pkg/tensor"
	"github.com/fkrieter/pyhf/pkg/tensor/graph"
	"github.com/fkrieter/pyhf/pkg/workspace"
)

// Option configures model construction.
type Option func(*options)

type options struct {
	backend tensor.Backend
	poi     string
	qualify bool
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.backend == nil {
		o.backend = graph.New()
	}
	return o
}

// WithBackend selects the tensor backend. Defaults to the graph backend.
func WithBackend(b tensor.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithPOI names the parameter of interest. The named modifier must exist,
// be unconstrained, and own exactly one parameter.
func WithPOI(name string) Option {
	return func(o *options) { o.poi = name }
}

// WithQualifiedNames rewrites every modifier name to "type/name" during
// the spec walk, letting distinct types share a bare name. A bare POI name
// is requalified along with its modifier.
func WithQualifiedNames() Option {
	return func(o *options) { o.qualify = true }
}

// paramBlock ties a modifier to its slice of the parameter vector.
type paramBlock struct {
	slice [2]int
	mod   modifiers.Modifier
}

// Config is the parameter bookkeeping of a model: which modifier owns
// which slice of the parameter vector, in declaration order, and the
// auxiliary data their constraints observe.
type Config struct {
	parMap    map[string]paramBlock
	parOrder  []string
	auxData   []float64
	auxOrder  []string
	auxSlices map[string][2]int
	nparams   int
	poiName   string
	poiIndex  int
	channels  []string
	samples   []string
}

// attachment records one modifier application to a (channel, sample) slot.
type attachment struct {
	channel     int
	sample      int
	channelName string
	sampleName  string
	name        string
	mod         modifiers.Modifier
}

// NewConfig walks the spec in declaration order and allocates parameters.
func NewConfig(spec *workspace.Spec, opts ...Option) (*Config, error) {
	o := buildOptions(opts)
	cfg, _, err := buildConfig(spec, &o)
	return cfg, err
}

func buildConfig(spec *workspace.Spec, o *options) (*Config, []attachment, error) {
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}

	cfg := &Config{
		parMap:    make(map[string]paramBlock),
		auxSlices: make(map[string][2]int),
		poiIndex:  -1,
	}
	var attachments []attachment

	poiName := o.poi
	seenSamples := make(map[string]bool)
	for ci := range spec.Channels {
		ch := &spec.Channels[ci]
		cfg.channels = append(cfg.channels, ch.Name)
		for si := range ch.Samples {
			smp := &ch.Samples[si]
			if !seenSamples[smp.Name] {
				seenSamples[smp.Name] = true
				cfg.samples = append(cfg.samples, smp.Name)
			}
			for mi := range smp.Modifiers {
				def := smp.Modifiers[mi]
				name := def.Name
				if o.qualify {
					full := def.Type + "/" + def.Name
					if def.Name == poiName {
						poiName = full
					}
					name = full
				}
				mod, err := cfg.addOrGet(ch, smp, name, &def)
				if err != nil {
					return nil, nil, err
				}
				if err := mod.AddSample(ch.Name, smp.Name, smp.Data, &def); err != nil {
					return nil, nil, fmt.Errorf("%w: %w", ErrInvalidModifier, err)
				}
				attachments = append(attachments, attachment{
					channel:     ci,
					sample:      si,
					channelName: ch.Name,
					sampleName:  smp.Name,
					name:        name,
					mod:         mod,
				})
			}
		}
	}

	if poiName != "" {
		if err := cfg.setPOI(poiName); err != nil {
			return nil, nil, err
		}
	}
	return cfg, attachments, nil
}

// addOrGet returns the modifier registered under name, creating and
// allocating it on first sight. Shared modifiers are handed back for every
// later attachment; name collisions across types, or any reuse of an
// unshared type, are rejected.
func (c *Config) addOrGet(ch *workspace.Channel, smp *workspace.Sample, name string, def *workspace.ModifierDef) (modifiers.Modifier, error) {
	if !modifiers.Known(def.Type) {
		return nil, fmt.Errorf("%w: unknown type %q (modifier %q on %s/%s)",
			ErrInvalidModifier, def.Type, def.Name, ch.Name, smp.Name)
	}

	if blk, ok := c.parMap[name]; ok {
		if blk.mod.Type() != def.Type {
			return nil, fmt.Errorf("%w: %q already declared as %s, redeclared as %s on %s/%s (use unique names or qualified names)",
				ErrInvalidNameReuse, name, blk.mod.Type(), def.Type, ch.Name, smp.Name)
		}
		if !blk.mod.IsShared() {
			return nil, fmt.Errorf("%w: %s %q redeclared on %s/%s, its parameters are never shared",
				ErrInvalidNameReuse, def.Type, name, ch.Name, smp.Name)
		}
		return blk.mod, nil
	}

	mod, err := modifiers.New(smp.Data, def)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModifier, err)
	}
	npars := mod.NParameters()
	c.parMap[name] = paramBlock{
		slice: [2]int{c.nparams, c.nparams + npars},
		mod:   mod,
	}
	c.nparams += npars
	c.parOrder = append(c.parOrder, name)
	if mod.IsConstrained() {
		aux := mod.AuxData()
		c.auxSlices[name] = [2]int{len(c.auxData), len(c.auxData) + len(aux)}
		c.auxData = append(c.auxData, aux...)
		c.auxOrder = append(c.auxOrder, name)
	}
	return mod, nil
}

func (c *Config) setPOI(name string) error {
	blk, ok := c.parMap[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPOINotFound, name)
	}
	if blk.mod.IsConstrained() {
		return fmt.Errorf("%w: %q is constrained", ErrInvalidPOI, name)
	}
	if n := blk.mod.NParameters(); n != 1 {
		return fmt.Errorf("%w: %q has %d parameters", ErrInvalidPOI, name, n)
	}
	c.poiName = name
	c.poiIndex = blk.slice[0]
	return nil
}

// NParams is the length of the model's parameter vector.
func (c *Config) NParams() int { return c.nparams }

// ParOrder returns modifier names in first-seen order.
func (c *Config) ParOrder() []string {
	return append([]string(nil), c.parOrder...)
}

// ParNames returns one label per parameter vector entry, indexing the
// names of modifiers that own more than one parameter.
func (c *Config) ParNames() []string {
	names := make([]string, 0, c.nparams)
	for _, name := range c.parOrder {
		blk := c.parMap[name]
		if n := blk.slice[1] - blk.slice[0]; n > 1 {
			for i := 0; i < n; i++ {
				names = append(names, fmt.Sprintf("%s[%d]", name, i))
			}
			continue
		}
		names = append(names, name)
	}
	return names
}

// AuxOrder returns constrained modifier names in first-seen order.
func (c *Config) AuxOrder() []string {
	return append([]string(nil), c.auxOrder...)
}

// ParSlice returns the [lo, hi) parameter range owned by name.
func (c *Config) ParSlice(name string) ([2]int, bool) {
	blk, ok := c.parMap[name]
	return blk.slice, ok
}

// AuxSlice returns the [lo, hi) auxiliary-data range owned by name.
func (c *Config) AuxSlice(name string) ([2]int, bool) {
	s, ok := c.auxSlices[name]
	return s, ok
}

// Modifier returns the modifier registered under name.
func (c *Config) Modifier(name string) (modifiers.Modifier, bool) {
	blk, ok := c.parMap[name]
	return blk.mod, ok
}

// SuggestedInit concatenates the per-modifier initial parameter values.
func (c *Config) SuggestedInit() []float64 {
	init := make([]float64, 0, c.nparams)
	for _, name := range c.parOrder {
		init = append(init, c.parMap[name].mod.SuggestedInit()...)
	}
	return init
}

// SuggestedBounds concatenates the per-modifier parameter bounds.
func (c *Config) SuggestedBounds() [][2]float64 {
	bounds := make([][2]float64, 0, c.nparams)
	for _, name := range c.parOrder {
		bounds = append(bounds, c.parMap[name].mod.SuggestedBounds()...)
	}
	return bounds
}

// AuxData returns the constraint observations in auxiliary order.
func (c *Config) AuxData() []float64 {
	return append([]float64(nil), c.auxData...)
}

// POIIndex returns the position of the parameter of interest in the
// parameter vector.
func (c *Config) POIIndex() (int, error) {
	if c.poiIndex < 0 {
		return 0, ErrNoPOI
	}
	return c.poiIndex, nil
}

// POIName returns the configured parameter of interest, empty when unset.
func (c *Config) POIName() string { return c.poiName }

// Channels returns channel names in declaration order.
func (c *Config) Channels() []string {
	return append([]string(nil), c.channels...)
}

// Samples returns sample names in first-seen order.
func (c *Config) Samples() []string {
	return append([]string(nil), c.samples...)
}
