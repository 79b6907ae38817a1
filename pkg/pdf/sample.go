package pdf

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fkrieter/pyhf/pkg/modifiers"
)

// SampleData draws n toy datasets at the parameter point pars. Actual bins
// are Poisson fluctuations of the expected yields; auxiliary observations
// are drawn from each modifier's constraint density. Rows are full
// datasets in LogPDF layout.
func (m *Model) SampleData(pars []float64, n int, src rand.Source) ([][]float64, error) {
	lambdas, err := m.ExpectedActualData(pars)
	if err != nil {
		return nil, err
	}
	alphas, err := m.ExpectedAuxData(pars)
	if err != nil {
		return nil, err
	}

	width := len(lambdas) + len(alphas)
	toys := make([][]float64, n)
	for t := range toys {
		toy := make([]float64, 0, width)
		for _, lam := range lambdas {
			toy = append(toy, distuv.Poisson{Lambda: lam, Src: src}.Rand())
		}
		for _, name := range m.config.auxOrder {
			mod := m.config.parMap[name].mod
			seg := m.config.auxSlices[name]
			switch mod.PDFType() {
			case modifiers.PDFPoisson:
				for _, lam := range alphas[seg[0]:seg[1]] {
					toy = append(toy, distuv.Poisson{Lambda: lam, Src: src}.Rand())
				}
			default:
				sigmas := m.constraintSigmas(name, seg[1]-seg[0])
				for i, mu := range alphas[seg[0]:seg[1]] {
					toy = append(toy, distuv.Normal{Mu: mu, Sigma: sigmas[i], Src: src}.Rand())
				}
			}
		}
		toys[t] = toy
	}
	return toys, nil
}
