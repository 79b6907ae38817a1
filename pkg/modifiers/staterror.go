package modifiers

import (
	"fmt"
	"math"

	"github.com/fkrieter/pyhf/pkg/tensor"
	"github.com/fkrieter/pyhf/pkg/workspace"
)

// statError models limited Monte Carlo statistics: one normal-constrained
// gamma per bin, shared across the samples of a channel. The constraint
// width per bin is settled only after every attachment is known:
// sqrt of the quadrature sum of the per-sample absolute uncertainties,
// divided by the summed nominal yields.
type statError struct {
	name    string
	nbins   int
	nominal [][]float64
	uncerts [][]float64
}

func newStatError(sampleData []float64, def *workspace.ModifierDef) (Modifier, error) {
	if def.Data.Floats == nil {
		return nil, fmt.Errorf("staterror %q: missing per-bin uncertainties", def.Name)
	}
	return &statError{name: def.Name, nbins: len(sampleData)}, nil
}

func (s *statError) Type() string { return workspace.TypeStatError }
func (s *statError) NParameters() int { return s.nbins }
func (s *statError) IsConstrained() bool { return true }
func (s *statError) IsShared() bool { return true }
func (s *statError) PDFType() string { return PDFNormal }
func (s *statError) OpKind() OpKind { return OpFactor }

func (s *statError) SuggestedInit() []float64 {
	return repeat(1, s.nbins)
}

func (s *statError) SuggestedBounds() [][2]float64 {
	return repeatBounds([2]float64{1e-10, 10}, s.nbins)
}

// AuxData observes every gamma at one.
func (s *statError) AuxData() []float64 {
	return repeat(1, s.nbins)
}

func (s *statError) AddSample(channel, sample string, sampleData []float64, def *workspace.ModifierDef) error {
	uncerts := def.Data.Floats
	if uncerts == nil {
		return fmt.Errorf("staterror %q: missing uncertainties on %s/%s", s.name, channel, sample)
	}
	if len(sampleData) != s.nbins || len(uncerts) != s.nbins {
		return fmt.Errorf("staterror %q: %d-bin attachment on %s/%s, has %d parameters",
			s.name, len(sampleData), channel, sample, s.nbins)
	}
	nominal := make([]float64, s.nbins)
	copy(nominal, sampleData)
	unc := make([]float64, s.nbins)
	copy(unc, uncerts)
	s.nominal = append(s.nominal, nominal)
	s.uncerts = append(s.uncerts, unc)
	return nil
}

func (s *statError) Apply(_ tensor.Backend, _, _ string, pars tensor.Value) tensor.Value {
	return pars
}

func (s *statError) Alphas(_ tensor.Backend, pars tensor.Value) tensor.Value {
	return pars
}

// FinalizedSigmas folds the recorded attachments into per-bin constraint
// widths: quadrature sum of uncertainties over samples, relative to the
// total nominal yield.
func (s *statError) FinalizedSigmas() []float64 {
	sigmas := make([]float64, s.nbins)
	for b := 0; b < s.nbins; b++ {
		var quad, total float64
		for i := range s.uncerts {
			quad += s.uncerts[i][b] * s.uncerts[i][b]
			total += s.nominal[i][b]
		}
		sigmas[b] = math.Sqrt(quad) / total
	}
	return sigmas
}
