package modifiers

import (
	"fmt"

	"github.com/fkrieter/pyhf/pkg/tensor"
	"github.com/fkrieter/pyhf/pkg/workspace"
)

// shapeFactor is an unconstrained per-bin scale, one free parameter per
// bin of the first host sample. Data-driven background shapes use it.
type shapeFactor struct {
	name  string
	nbins int
}

func newShapeFactor(sampleData []float64, def *workspace.ModifierDef) (Modifier, error) {
	return &shapeFactor{name: def.Name, nbins: len(sampleData)}, nil
}

func (s *shapeFactor) Type() string { return workspace.TypeShapeFactor }
func (s *shapeFactor) NParameters() int { return s.nbins }
func (s *shapeFactor) IsConstrained() bool { return false }
func (s *shapeFactor) IsShared() bool { return true }
func (s *shapeFactor) PDFType() string { return "" }
func (s *shapeFactor) AuxData() []float64 { return nil }
func (s *shapeFactor) OpKind() OpKind { return OpFactor }

func (s *shapeFactor) SuggestedInit() []float64 {
	return repeat(1, s.nbins)
}

func (s *shapeFactor) SuggestedBounds() [][2]float64 {
	return repeatBounds([2]float64{0, 10}, s.nbins)
}

func (s *shapeFactor) AddSample(channel, sample string, sampleData []float64, _ *workspace.ModifierDef) error {
	if len(sampleData) != s.nbins {
		return fmt.Errorf("shapefactor %q: attached to %d-bin sample %s/%s, has %d parameters",
			s.name, len(sampleData), channel, sample, s.nbins)
	}
	return nil
}

func (s *shapeFactor) Apply(_ tensor.Backend, _, _ string, pars tensor.Value) tensor.Value {
	return pars
}

func (s *shapeFactor) Alphas(_ tensor.Backend, pars tensor.Value) tensor.Value {
	return pars
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func repeatBounds(b [2]float64, n int) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		out[i] = b
	}
	return out
}
