package modifiers

import (
	"github.com/fkrieter/pyhf/pkg/tensor"
	"github.com/fkrieter/pyhf/pkg/workspace"
)

// normFactor is a single unconstrained scale factor shared by all
// attachments. The usual signal-strength parameter of interest.
type normFactor struct{}

func newNormFactor(_ []float64, _ *workspace.ModifierDef) (Modifier, error) {
	return &normFactor{}, nil
}

func (*normFactor) Type() string { return workspace.TypeNormFactor }
func (*normFactor) NParameters() int { return 1 }
func (*normFactor) SuggestedInit() []float64 { return []float64{1} }
func (*normFactor) SuggestedBounds() [][2]float64 { return [][2]float64{{0, 10}} }
func (*normFactor) IsConstrained() bool { return false }
func (*normFactor) IsShared() bool { return true }
func (*normFactor) PDFType() string { return "" }
func (*normFactor) AuxData() []float64 { return nil }
func (*normFactor) OpKind() OpKind { return OpFactor }

func (*normFactor) AddSample(string, string, []float64, *workspace.ModifierDef) error {
	return nil
}

func (*normFactor) Apply(_ tensor.Backend, _, _ string, pars tensor.Value) tensor.Value {
	return pars
}

func (*normFactor) Alphas(_ tensor.Backend, pars tensor.Value) tensor.Value {
	return pars
}
