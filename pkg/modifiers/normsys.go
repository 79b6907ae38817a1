package modifiers

import (
	"fmt"

	"github.com/fkrieter/pyhf/pkg/interp"
	"github.com/fkrieter/pyhf/pkg/tensor"
	"github.com/fkrieter/pyhf/pkg/workspace"
)

// normSys is a correlated normalization systematic: one normal-constrained
// nuisance parameter alpha, interpolated exponentially between per-sample
// lo/hi scales (interpolation code 1).
type normSys struct {
	name  string
	slots map[slotKey]workspace.HiLo
}

func newNormSys(_ []float64, def *workspace.ModifierDef) (Modifier, error) {
	if def.Data.HiLo == nil {
		return nil, fmt.Errorf("normsys %q: missing hi/lo data", def.Name)
	}
	return &normSys{name: def.Name, slots: make(map[slotKey]workspace.HiLo)}, nil
}

func (*normSys) Type() string { return workspace.TypeNormSys }
func (*normSys) NParameters() int { return 1 }
func (*normSys) SuggestedInit() []float64 { return []float64{0} }
func (*normSys) SuggestedBounds() [][2]float64 { return [][2]float64{{-5, 5}} }
func (*normSys) IsConstrained() bool { return true }
func (*normSys) IsShared() bool { return true }
func (*normSys) PDFType() string { return PDFNormal }
func (*normSys) OpKind() OpKind { return OpFactor }

// AuxData is the single constraint observation, centered on alpha = 0.
func (*normSys) AuxData() []float64 { return []float64{0} }

func (n *normSys) AddSample(channel, sample string, _ []float64, def *workspace.ModifierDef) error {
	hl := def.Data.HiLo
	if hl == nil {
		return fmt.Errorf("normsys %q: missing hi/lo data on %s/%s", n.name, channel, sample)
	}
	if hl.Hi <= 0 || hl.Lo <= 0 {
		return fmt.Errorf("normsys %q: non-positive scale hi=%v lo=%v on %s/%s",
			n.name, hl.Hi, hl.Lo, channel, sample)
	}
	n.slots[slotKey{channel, sample}] = *hl
	return nil
}

func (n *normSys) Apply(b tensor.Backend, channel, sample string, pars tensor.Value) tensor.Value {
	hl, ok := n.slots[slotKey{channel, sample}]
	if !ok {
		panic(fmt.Sprintf("normsys %q: apply on unattached slot %s/%s", n.name, channel, sample))
	}
	return interp.Code1(b, pars, b.Scalar(hl.Hi), b.Scalar(hl.Lo))
}

func (n *normSys) Alphas(_ tensor.Backend, pars tensor.Value) tensor.Value {
	return pars
}
