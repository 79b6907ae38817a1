package modifiers

import (
	"fmt"

	"github.com/fkrieter/pyhf/pkg/interp"
	"github.com/fkrieter/pyhf/pkg/tensor"
	"github.com/fkrieter/pyhf/pkg/workspace"
)

// histoSys is a correlated shape systematic: one normal-constrained
// nuisance parameter alpha, interpolated piecewise-linearly between full
// up/down histograms (interpolation code 0). Unlike the factor modifiers
// it shifts yields additively.
type histoSys struct {
	name  string
	slots map[slotKey]histoPayload
}

type histoPayload struct {
	nominal []float64
	hi      []float64
	lo      []float64
}

func newHistoSys(_ []float64, def *workspace.ModifierDef) (Modifier, error) {
	if def.Data.HiLoData == nil {
		return nil, fmt.Errorf("histosys %q: missing hi_data/lo_data histograms", def.Name)
	}
	return &histoSys{name: def.Name, slots: make(map[slotKey]histoPayload)}, nil
}

func (*histoSys) Type() string { return workspace.TypeHistoSys }
func (*histoSys) NParameters() int { return 1 }
func (*histoSys) SuggestedInit() []float64 { return []float64{0} }
func (*histoSys) SuggestedBounds() [][2]float64 { return [][2]float64{{-5, 5}} }
func (*histoSys) IsConstrained() bool { return true }
func (*histoSys) IsShared() bool { return true }
func (*histoSys) PDFType() string { return PDFNormal }
func (*histoSys) OpKind() OpKind { return OpDelta }

// AuxData is the single constraint observation, centered on alpha = 0.
func (*histoSys) AuxData() []float64 { return []float64{0} }

func (h *histoSys) AddSample(channel, sample string, sampleData []float64, def *workspace.ModifierDef) error {
	hld := def.Data.HiLoData
	if hld == nil {
		return fmt.Errorf("histosys %q: missing histograms on %s/%s", h.name, channel, sample)
	}
	if len(hld.HiData) != len(sampleData) || len(hld.LoData) != len(sampleData) {
		return fmt.Errorf("histosys %q: histograms have %d/%d bins, sample %s/%s has %d",
			h.name, len(hld.HiData), len(hld.LoData), channel, sample, len(sampleData))
	}
	nominal := make([]float64, len(sampleData))
	copy(nominal, sampleData)
	h.slots[slotKey{channel, sample}] = histoPayload{
		nominal: nominal,
		hi:      hld.HiData,
		lo:      hld.LoData,
	}
	return nil
}

func (h *histoSys) Apply(b tensor.Backend, channel, sample string, pars tensor.Value) tensor.Value {
	p, ok := h.slots[slotKey{channel, sample}]
	if !ok {
		panic(fmt.Sprintf("histosys %q: apply on unattached slot %s/%s", h.name, channel, sample))
	}
	return interp.Code0(b, pars, b.Const(p.nominal), b.Const(p.hi), b.Const(p.lo))
}

func (h *histoSys) Alphas(_ tensor.Backend, pars tensor.Value) tensor.Value {
	return pars
}
