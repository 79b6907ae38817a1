// Package modifiers implements the HistFactory modifier types. A modifier
// is a named deformation of sample yields owning a block of nuisance
// parameters; constrained modifiers additionally contribute auxiliary
// observations to the likelihood's constraint term.
//
// Shared modifiers (every type except shapesys) may attach the same name
// to several samples or channels and reuse one parameter block across all
// attachments.
package modifiers

import (
	"errors"
	"fmt"

	"github.com/fkrieter/pyhf/pkg/tensor"
	"github.com/fkrieter/pyhf/pkg/workspace"
)

var ErrUnknownType = errors.New("unknown modifier type")

// Constraint density families.
const (
	PDFNormal  = "normal"
	PDFPoisson = "poisson"
)

// OpKind says how a modifier's field enters the expected yields.
type OpKind uint8

const (
	// OpFactor fields multiply the nominal yields.
	OpFactor OpKind = iota
	// OpDelta fields shift the nominal yields.
	OpDelta
)

func (k OpKind) String() string {
	if k == OpDelta {
		return "delta"
	}
	return "factor"
}

// Modifier is one named yield deformation. Implementations are built by
// the registry from the first attachment and then see every attachment,
// the first included, through AddSample.
type Modifier interface {
	Type() string
	NParameters() int
	SuggestedInit() []float64
	SuggestedBounds() [][2]float64
	IsConstrained() bool
	IsShared() bool
	// PDFType names the constraint family, empty when unconstrained.
	PDFType() string
	// AuxData returns the constraint observations contributed once per
	// modifier name, nil when unconstrained.
	AuxData() []float64
	OpKind() OpKind

	// AddSample records the attachment to (channel, sample) together
	// with its payload.
	AddSample(channel, sample string, sampleData []float64, def *workspace.ModifierDef) error

	// Apply builds the per-bin field of the attachment from the
	// modifier's parameter slice: a factor for OpFactor modifiers, a
	// delta for OpDelta. Scalar fields broadcast over the sample's bins.
	Apply(b tensor.Backend, channel, sample string, pars tensor.Value) tensor.Value

	// Alphas maps the parameter slice to the constraint's expected
	// observations. Identity for normal-constrained modifiers.
	Alphas(b tensor.Backend, pars tensor.Value) tensor.Value
}

// SigmaFinalizer is implemented by modifiers whose constraint widths
// depend on every attached sample and settle only after the full spec
// walk.
type SigmaFinalizer interface {
	FinalizedSigmas() []float64
}

// Constructor builds a fresh modifier from its first attachment.
type Constructor func(sampleData []float64, def *workspace.ModifierDef) (Modifier, error)

var registry = map[string]Constructor{
	workspace.TypeNormFactor:  newNormFactor,
	workspace.TypeShapeFactor: newShapeFactor,
	workspace.TypeNormSys:     newNormSys,
	workspace.TypeHistoSys:    newHistoSys,
	workspace.TypeShapeSys:    newShapeSys,
	workspace.TypeStatError:   newStatError,
}

// Known reports whether typ is a registered modifier type.
func Known(typ string) bool {
	_, ok := registry[typ]
	return ok
}

// New instantiates the modifier declared by def against its first host
// sample's nominal yields.
func New(sampleData []float64, def *workspace.ModifierDef) (Modifier, error) {
	ctor, ok := registry[def.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q (modifier %q)", ErrUnknownType, def.Type, def.Name)
	}
	return ctor(sampleData, def)
}

// slotKey addresses one attachment of a shared modifier.
type slotKey struct {
	channel string
	sample  string
}
