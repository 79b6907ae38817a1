// Package infer derives CLs hypothesis-test results from model fits using
// the asymptotic profile-likelihood approximation.
package infer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fkrieter/pyhf/pkg/optimize"
	"github.com/fkrieter/pyhf/pkg/pdf"
)

// NSigma holds the band positions of the expected CLs set, in the order
// HypoTest reports them.
var NSigma = []float64{-2, -1, 0, 1, 2}

// Option configures a hypothesis test.
type Option func(*options)

type options struct {
	opt      *optimize.Newton
	tails    bool
	expected bool
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.opt == nil {
		o.opt = &optimize.Newton{}
	}
	return o
}

// WithOptimizer replaces the default Newton optimizer.
func WithOptimizer(n *optimize.Newton) Option {
	return func(o *options) { o.opt = n }
}

// WithTailProbs adds the CLs+b and CLb tail probabilities to the result.
func WithTailProbs() Option {
	return func(o *options) { o.tails = true }
}

// WithExpectedSet adds the expected CLs band at NSigma to the result.
func WithExpectedSet() Option {
	return func(o *options) { o.expected = true }
}

// Result is a completed hypothesis test at one tested signal strength.
type Result struct {
	// CLs is the observed CLs value, CLs+b over CLb.
	CLs float64
	// TestStat and TestStatAsimov are the q_mu values on the observed
	// and on the background-only Asimov dataset.
	TestStat       float64
	TestStatAsimov float64
	// TailProbs carries [CLs+b, CLb] when requested.
	TailProbs []float64
	// Expected carries the expected CLs band at NSigma when requested.
	Expected []float64
}

// QMu computes the q_mu test statistic at signal strength mu: the
// difference of the pinned and free -2 log L minima, truncated to zero
// when the best-fit strength exceeds mu.
func QMu(m *pdf.Model, mu float64, data []float64, opts ...Option) (float64, error) {
	o := buildOptions(opts)
	return qMu(m, &o, mu, data)
}

func qMu(m *pdf.Model, o *options, mu float64, data []float64) (float64, error) {
	poi, err := m.Config().POIIndex()
	if err != nil {
		return 0, err
	}
	pinned, err := o.opt.ConstrainedBestFit(m, mu, data)
	if err != nil {
		return 0, fmt.Errorf("infer: fit pinned at mu=%v: %w", mu, err)
	}
	free, err := o.opt.UnconstrainedBestFit(m, data)
	if err != nil {
		return 0, fmt.Errorf("infer: free fit: %w", err)
	}
	if free.X[poi] > mu {
		return 0, nil
	}
	q := pinned.Objective - free.Objective
	if q < 0 {
		q = 0
	}
	return q, nil
}

// AsimovData builds the background-only Asimov dataset: nuisance
// parameters are fit to the observed data with the signal strength pinned
// to zero, and the model expectation there becomes the dataset.
func AsimovData(m *pdf.Model, data []float64, opts ...Option) ([]float64, error) {
	o := buildOptions(opts)
	return asimovData(m, &o, data)
}

func asimovData(m *pdf.Model, o *options, data []float64) ([]float64, error) {
	res, err := o.opt.ConstrainedBestFit(m, 0, data)
	if err != nil {
		return nil, fmt.Errorf("infer: background-only fit: %w", err)
	}
	return m.ExpectedData(res.X)
}

// HypoTest performs an asymptotic CLs test of the signal strength testPOI
// against the observed data.
func HypoTest(m *pdf.Model, testPOI float64, data []float64, opts ...Option) (*Result, error) {
	o := buildOptions(opts)

	qmu, err := qMu(m, &o, testPOI, data)
	if err != nil {
		return nil, err
	}
	asimov, err := asimovData(m, &o, data)
	if err != nil {
		return nil, err
	}
	qmuA, err := qMu(m, &o, testPOI, asimov)
	if err != nil {
		return nil, fmt.Errorf("infer: asimov test statistic: %w", err)
	}

	sqrtq := math.Sqrt(qmu)
	sqrtqA := math.Sqrt(qmuA)
	clsb := distuv.UnitNormal.Survival(sqrtq)
	clb := distuv.UnitNormal.Survival(sqrtq - sqrtqA)

	res := &Result{
		CLs:            clsb / clb,
		TestStat:       qmu,
		TestStatAsimov: qmuA,
	}
	if o.tails {
		res.TailProbs = []float64{clsb, clb}
	}
	if o.expected {
		res.Expected = make([]float64, 0, len(NSigma))
		for _, ns := range NSigma {
			res.Expected = append(res.Expected,
				distuv.UnitNormal.Survival(sqrtqA-ns)/distuv.UnitNormal.CDF(ns))
		}
	}
	return res, nil
}
