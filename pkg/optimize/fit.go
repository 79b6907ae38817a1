package optimize

import (
	"fmt"

	"github.com/fkrieter/pyhf/pkg/pdf"
	"github.com/fkrieter/pyhf/pkg/tensor"
)

// freeVar names the free parameter vector in fit objectives.
const freeVar = "pars"

// twiceNLL builds the -2 log L objective over the free variable pars.
func twiceNLL(m *pdf.Model, pars tensor.Value, data []float64) tensor.Value {
	b := m.Backend()
	return b.Mul(b.Scalar(-2), m.BuildLogPDF(pars, b.Const(data)))
}

func checkData(m *pdf.Model, data []float64) error {
	want := m.NActualBins() + len(m.Config().AuxData())
	if len(data) != want {
		return fmt.Errorf("optimize: dataset has %d entries, model expects %d", len(data), want)
	}
	return nil
}

// UnconstrainedBestFit maximizes the model likelihood over all parameters,
// returning the best-fit vector and the -2 log L value there.
func (n *Newton) UnconstrainedBestFit(m *pdf.Model, data []float64) (*Result, error) {
	if err := checkData(m, data); err != nil {
		return nil, err
	}
	cfg := m.Config()
	b := m.Backend()
	pars := b.Var(freeVar, cfg.NParams())
	return n.Minimize(Objective{
		Backend: b,
		Expr:    twiceNLL(m, pars, data),
		Var:     freeVar,
		Init:    cfg.SuggestedInit(),
		Bounds:  cfg.SuggestedBounds(),
	})
}

// ConstrainedBestFit maximizes the likelihood with the parameter of
// interest pinned to poiValue, fitting only the nuisance parameters. The
// result's X carries the full parameter vector with the pin in place.
func (n *Newton) ConstrainedBestFit(m *pdf.Model, poiValue float64, data []float64) (*Result, error) {
	if err := checkData(m, data); err != nil {
		return nil, err
	}
	cfg := m.Config()
	poi, err := cfg.POIIndex()
	if err != nil {
		return nil, err
	}

	b := m.Backend()
	nfree := cfg.NParams() - 1
	if nfree == 0 {
		// Nothing floats: evaluate the objective at the pin.
		expr := twiceNLL(m, b.Const([]float64{poiValue}), data)
		out, err := b.Eval(expr, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: objective: %w", ErrNumericFailure, err)
		}
		return &Result{X: []float64{poiValue}, Objective: out[0], Converged: true}, nil
	}

	nuis := b.Var(freeVar, nfree)
	parts := make([]tensor.Value, 0, 3)
	if poi > 0 {
		parts = append(parts, b.Slice(nuis, 0, poi))
	}
	parts = append(parts, b.Const([]float64{poiValue}))
	if poi < nfree {
		parts = append(parts, b.Slice(nuis, poi, nfree))
	}
	full := b.Concat(parts...)

	init := cfg.SuggestedInit()
	bounds := cfg.SuggestedBounds()
	res, err := n.Minimize(Objective{
		Backend: b,
		Expr:    twiceNLL(m, full, data),
		Var:     freeVar,
		Init:    spliceOut(init, poi),
		Bounds:  spliceOutBounds(bounds, poi),
	})
	if err != nil {
		return nil, err
	}
	res.X = spliceIn(res.X, poi, poiValue)
	return res, nil
}

func spliceOut(v []float64, i int) []float64 {
	out := make([]float64, 0, len(v)-1)
	out = append(out, v[:i]...)
	return append(out, v[i+1:]...)
}

func spliceOutBounds(v [][2]float64, i int) [][2]float64 {
	out := make([][2]float64, 0, len(v)-1)
	out = append(out, v[:i]...)
	return append(out, v[i+1:]...)
}

func spliceIn(v []float64, i int, val float64) []float64 {
	out := make([]float64, 0, len(v)+1)
	out = append(out, v[:i]...)
	out = append(out, val)
	return append(out, v[i:]...)
}
