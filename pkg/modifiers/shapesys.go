package modifiers

import (
	"fmt"

	"github.com/fkrieter/pyhf/pkg/tensor"
	"github.com/fkrieter/pyhf/pkg/workspace"
)

// shapeSys is an uncorrelated per-bin shape systematic: one Poisson
// constrained gamma per bin. The constraint strength per bin is
// tau_b = nominal_b^2 / uncertainty_b^2, entering both as the auxiliary
// observation and as the rate scale, so relative uncertainty maps onto an
// effective auxiliary measurement count. Not shared: every attachment
// owns fresh parameters.
type shapeSys struct {
	name string
	tau  []float64
}

func newShapeSys(sampleData []float64, def *workspace.ModifierDef) (Modifier, error) {
	uncerts := def.Data.Floats
	if uncerts == nil {
		return nil, fmt.Errorf("shapesys %q: missing per-bin uncertainties", def.Name)
	}
	if len(uncerts) != len(sampleData) {
		return nil, fmt.Errorf("shapesys %q: %d uncertainties for %d bins",
			def.Name, len(uncerts), len(sampleData))
	}
	tau := make([]float64, len(uncerts))
	for i, db := range uncerts {
		if db <= 0 {
			return nil, fmt.Errorf("shapesys %q: non-positive uncertainty %v in bin %d",
				def.Name, db, i)
		}
		b := sampleData[i]
		tau[i] = b * b / (db * db)
	}
	return &shapeSys{name: def.Name, tau: tau}, nil
}

func (s *shapeSys) Type() string { return workspace.TypeShapeSys }
func (s *shapeSys) NParameters() int { return len(s.tau) }
func (s *shapeSys) IsConstrained() bool { return true }
func (s *shapeSys) IsShared() bool { return false }
func (s *shapeSys) PDFType() string { return PDFPoisson }
func (s *shapeSys) OpKind() OpKind { return OpFactor }

func (s *shapeSys) SuggestedInit() []float64 {
	return repeat(1, len(s.tau))
}

// SuggestedBounds keeps the gammas strictly positive: the Poisson
// constraint rate tau*gamma is singular at zero.
func (s *shapeSys) SuggestedBounds() [][2]float64 {
	return repeatBounds([2]float64{1e-10, 10}, len(s.tau))
}

// AuxData observes tau_b events in each auxiliary bin.
func (s *shapeSys) AuxData() []float64 {
	out := make([]float64, len(s.tau))
	copy(out, s.tau)
	return out
}

func (s *shapeSys) AddSample(channel, sample string, sampleData []float64, _ *workspace.ModifierDef) error {
	if len(sampleData) != len(s.tau) {
		return fmt.Errorf("shapesys %q: attached to %d-bin sample %s/%s, has %d parameters",
			s.name, len(sampleData), channel, sample, len(s.tau))
	}
	return nil
}

func (s *shapeSys) Apply(_ tensor.Backend, _, _ string, pars tensor.Value) tensor.Value {
	return pars
}

// Alphas scales the gammas by tau, giving the Poisson rates of the
// auxiliary measurement.
func (s *shapeSys) Alphas(b tensor.Backend, pars tensor.Value) tensor.Value {
	return b.Mul(pars, b.Const(s.tau))
}
