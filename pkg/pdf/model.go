package pdf

import (
	"fmt"

	"github.com/fkrieter/pyhf/pkg/modifiers"
	"github.com/fkrieter/pyhf/pkg/tensor"
	"github.com/fkrieter/pyhf/pkg/workspace"
)

// parsVar names the parameter vector in graphs built by the eager
// evaluation wrappers.
const parsVar = "pars"

type channelInfo struct {
	name    string
	bins    int
	samples int
}

// Model is a HistFactory probability model: per-bin Poisson terms over the
// modified expected yields times the constraint densities of its
// systematics.
//
// The Build* methods assemble backend graphs over caller-supplied values,
// letting the optimizer differentiate through arbitrary parameter wirings.
// The eager methods wrap them for one-shot evaluation at concrete
// parameter vectors.
type Model struct {
	backend     tensor.Backend
	config      *Config
	channels    []channelInfo
	cube        *tensor.Cube
	attachments []attachment
	sigmas      map[string][]float64
}

// New builds a model from a validated workspace spec.
func New(spec *workspace.Spec, opts ...Option) (*Model, error) {
	o := buildOptions(opts)
	cfg, attachments, err := buildConfig(spec, &o)
	if err != nil {
		return nil, err
	}

	m := &Model{
		backend:     o.backend,
		config:      cfg,
		attachments: attachments,
		sigmas:      make(map[string][]float64),
	}

	maxSamples, maxBins := 0, 0
	for _, ch := range spec.Channels {
		if len(ch.Samples) > maxSamples {
			maxSamples = len(ch.Samples)
		}
		if ch.NBins() > maxBins {
			maxBins = ch.NBins()
		}
		m.channels = append(m.channels, channelInfo{
			name:    ch.Name,
			bins:    ch.NBins(),
			samples: len(ch.Samples),
		})
	}
	m.cube = tensor.NewCube(len(spec.Channels), maxSamples, maxBins)
	for ci, ch := range spec.Channels {
		for si, smp := range ch.Samples {
			m.cube.SetSample(ci, si, smp.Data)
		}
	}

	for _, name := range cfg.auxOrder {
		if fin, ok := cfg.parMap[name].mod.(modifiers.SigmaFinalizer); ok {
			m.sigmas[name] = fin.FinalizedSigmas()
		}
	}
	return m, nil
}

// Config returns the parameter bookkeeping.
func (m *Model) Config() *Config { return m.config }

// Backend returns the tensor backend the model builds graphs on.
func (m *Model) Backend() tensor.Backend { return m.backend }

// Cube returns the NaN-padded nominal yields, shaped
// (channels, max samples, max bins).
func (m *Model) Cube() *tensor.Cube { return m.cube }

// ChannelBins returns the per-channel bin counts in declaration order.
func (m *Model) ChannelBins() []int {
	bins := make([]int, len(m.channels))
	for i, ch := range m.channels {
		bins[i] = ch.bins
	}
	return bins
}

// NActualBins is the total bin count across channels, the length of
// expected actual data.
func (m *Model) NActualBins() int {
	n := 0
	for _, ch := range m.channels {
		n += ch.bins
	}
	return n
}

// slicePars cuts the modifier's parameter block out of the full vector.
func (m *Model) slicePars(pars tensor.Value, name string) tensor.Value {
	sl := m.config.parMap[name].slice
	return m.backend.Slice(pars, sl[0], sl[1])
}

// combine folds every attachment's field into per-slot factor and delta
// expressions.
func (m *Model) combine(pars tensor.Value) *modifiers.Combiner {
	comb := modifiers.NewCombiner(m.backend)
	for _, att := range m.attachments {
		field := att.mod.Apply(m.backend, att.channelName, att.sampleName, m.slicePars(pars, att.name))
		comb.Add(att.mod.OpKind(), att.channel, att.sample, field)
	}
	return comb
}

// BuildExpectedActualData assembles the per-bin expected yields:
// factor * (delta + nominal) per sample slot, summed over the slots of
// each channel and concatenated across channels in declaration order.
func (m *Model) BuildExpectedActualData(pars tensor.Value) tensor.Value {
	b := m.backend
	comb := m.combine(pars)

	channelExprs := make([]tensor.Value, 0, len(m.channels))
	for ci, ch := range m.channels {
		var channelSum tensor.Value
		for si := 0; si < ch.samples; si++ {
			nominal := b.Const(m.cube.SampleRow(ci, si)[:ch.bins])
			expr := nominal
			if delta := comb.DeltaField(ci, si); delta != nil {
				expr = b.Add(delta, expr)
			}
			if factor := comb.FactorField(ci, si); factor != nil {
				expr = b.Mul(factor, expr)
			}
			if channelSum == nil {
				channelSum = expr
			} else {
				channelSum = b.Add(channelSum, expr)
			}
		}
		channelExprs = append(channelExprs, channelSum)
	}
	return b.Concat(channelExprs...)
}

// BuildExpectedAuxData assembles the expected constraint observations of
// every constrained modifier, concatenated in auxiliary order.
func (m *Model) BuildExpectedAuxData(pars tensor.Value) tensor.Value {
	b := m.backend
	exprs := make([]tensor.Value, 0, len(m.config.auxOrder))
	for _, name := range m.config.auxOrder {
		mod := m.config.parMap[name].mod
		exprs = append(exprs, mod.Alphas(b, m.slicePars(pars, name)))
	}
	if len(exprs) == 0 {
		return nil
	}
	return b.Concat(exprs...)
}

// BuildExpectedData concatenates expected actual and auxiliary data.
func (m *Model) BuildExpectedData(pars tensor.Value) tensor.Value {
	actual := m.BuildExpectedActualData(pars)
	aux := m.BuildExpectedAuxData(pars)
	if aux == nil {
		return actual
	}
	return m.backend.Concat(actual, aux)
}

// constraintSigmas returns the normal-constraint widths for name: the
// finalized statistical sigmas where applicable, unit width otherwise.
func (m *Model) constraintSigmas(name string, n int) []float64 {
	if s, ok := m.sigmas[name]; ok {
		return s
	}
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	return ones
}

// BuildConstraintLogPDF assembles the summed log densities of every
// constraint term against the auxiliary observations aux.
func (m *Model) BuildConstraintLogPDF(aux, pars tensor.Value) tensor.Value {
	b := m.backend
	var summands []tensor.Value
	for _, name := range m.config.auxOrder {
		mod := m.config.parMap[name].mod
		seg := m.config.auxSlices[name]
		observed := b.Slice(aux, seg[0], seg[1])
		alphas := mod.Alphas(b, m.slicePars(pars, name))

		switch mod.PDFType() {
		case modifiers.PDFNormal:
			sigmas := b.Const(m.constraintSigmas(name, seg[1]-seg[0]))
			summands = append(summands, b.NormalLogPDF(observed, alphas, sigmas))
		case modifiers.PDFPoisson:
			summands = append(summands, b.PoissonLogPDF(observed, alphas))
		default:
			panic(fmt.Sprintf("pdf: constrained modifier %q with unknown pdf type %q", name, mod.PDFType()))
		}
	}
	if len(summands) == 0 {
		return b.Scalar(0)
	}
	return b.Sum(b.Concat(summands...))
}

// BuildLogPDF assembles the full log likelihood: per-bin Poisson terms of
// the actual data against the expected yields, plus the constraint terms
// against the auxiliary data. data carries actual bins first, auxiliary
// observations after.
func (m *Model) BuildLogPDF(pars, data tensor.Value) tensor.Value {
	b := m.backend
	cut := data.Len() - len(m.config.auxData)
	actual := b.Slice(data, 0, cut)
	lambdas := m.BuildExpectedActualData(pars)
	main := b.Sum(b.PoissonLogPDF(actual, lambdas))
	if len(m.config.auxData) == 0 {
		return main
	}
	aux := b.Slice(data, cut, data.Len())
	return b.Add(main, m.BuildConstraintLogPDF(aux, pars))
}

func (m *Model) evalAt(expr tensor.Value, pars []float64) ([]float64, error) {
	if len(pars) != m.config.nparams {
		return nil, fmt.Errorf("pdf: %d parameters passed, model has %d", len(pars), m.config.nparams)
	}
	return m.backend.Eval(expr, tensor.Binding{parsVar: pars})
}

func (m *Model) parsValue() tensor.Value {
	return m.backend.Var(parsVar, m.config.nparams)
}

// ExpectedActualData evaluates the per-bin expected yields at pars.
func (m *Model) ExpectedActualData(pars []float64) ([]float64, error) {
	return m.evalAt(m.BuildExpectedActualData(m.parsValue()), pars)
}

// ExpectedAuxData evaluates the expected constraint observations at pars.
func (m *Model) ExpectedAuxData(pars []float64) ([]float64, error) {
	expr := m.BuildExpectedAuxData(m.parsValue())
	if expr == nil {
		return nil, nil
	}
	return m.evalAt(expr, pars)
}

// ExpectedData evaluates actual and auxiliary expectations at pars.
func (m *Model) ExpectedData(pars []float64) ([]float64, error) {
	return m.evalAt(m.BuildExpectedData(m.parsValue()), pars)
}

// ConstraintLogPDF evaluates the summed constraint log densities at pars
// against the auxiliary observations aux.
func (m *Model) ConstraintLogPDF(aux, pars []float64) (float64, error) {
	if len(aux) != len(m.config.auxData) {
		return 0, fmt.Errorf("pdf: %d auxiliary observations passed, model has %d",
			len(aux), len(m.config.auxData))
	}
	expr := m.BuildConstraintLogPDF(m.backend.Const(aux), m.parsValue())
	out, err := m.evalAt(expr, pars)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// LogPDF evaluates the full log likelihood at pars for a dataset laid out
// as actual bins followed by auxiliary observations.
func (m *Model) LogPDF(pars, data []float64) (float64, error) {
	want := m.NActualBins() + len(m.config.auxData)
	if len(data) != want {
		return 0, fmt.Errorf("pdf: dataset has %d entries, model expects %d", len(data), want)
	}
	expr := m.BuildLogPDF(m.parsValue(), m.backend.Const(data))
	out, err := m.evalAt(expr, pars)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// PDF is exp(LogPDF).
func (m *Model) PDF(pars, data []float64) (float64, error) {
	want := m.NActualBins() + len(m.config.auxData)
	if len(data) != want {
		return 0, fmt.Errorf("pdf: dataset has %d entries, model expects %d", len(data), want)
	}
	expr := m.backend.Exp(m.BuildLogPDF(m.parsValue(), m.backend.Const(data)))
	out, err := m.evalAt(expr, pars)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// ObservedData concatenates per-bin observations with the model's
// auxiliary data, forming a full dataset for LogPDF.
func (m *Model) ObservedData(observed []float64) []float64 {
	data := make([]float64, 0, len(observed)+len(m.config.auxData))
	data = append(data, observed...)
	data = append(data, m.config.auxData...)
	return data
}
