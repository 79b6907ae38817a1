package graph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fkrieter/pyhf/pkg/tensor"
)

// at reads element i from a possibly-broadcast operand.
func at(xs []float64, i int) float64 {
	if len(xs) == 1 {
		return xs[0]
	}
	return xs[i]
}

// evaluation memoizes one forward pass over a graph at a fixed binding.
type evaluation struct {
	binding tensor.Binding
	values  map[*node][]float64
}

func newEvaluation(binding tensor.Binding) *evaluation {
	return &evaluation{binding: binding, values: make(map[*node][]float64)}
}

func (e *evaluation) eval(nd *node) ([]float64, error) {
	if out, ok := e.values[nd]; ok {
		return out, nil
	}
	out, err := e.compute(nd)
	if err != nil {
		return nil, err
	}
	e.values[nd] = out
	return out, nil
}

func (e *evaluation) compute(nd *node) ([]float64, error) {
	switch nd.op {
	case opConst:
		return nd.data, nil
	case opVar:
		bound, ok := e.binding[nd.name]
		if !ok {
			return nil, fmt.Errorf("graph: unbound variable %q", nd.name)
		}
		if len(bound) != nd.n {
			return nil, fmt.Errorf("graph: variable %q bound with %d values, declared %d",
				nd.name, len(bound), nd.n)
		}
		return bound, nil
	}

	ins := make([][]float64, len(nd.inputs))
	for i, in := range nd.inputs {
		v, err := e.eval(in)
		if err != nil {
			return nil, err
		}
		ins[i] = v
	}

	out := make([]float64, nd.n)
	switch nd.op {
	case opSlice:
		copy(out, ins[0][nd.lo:nd.lo+nd.n])
	case opConcat:
		pos := 0
		for _, in := range ins {
			copy(out[pos:], in)
			pos += len(in)
		}
	case opAdd:
		for i := range out {
			out[i] = at(ins[0], i) + at(ins[1], i)
		}
	case opSub:
		for i := range out {
			out[i] = at(ins[0], i) - at(ins[1], i)
		}
	case opMul:
		for i := range out {
			out[i] = at(ins[0], i) * at(ins[1], i)
		}
	case opDiv:
		for i := range out {
			out[i] = at(ins[0], i) / at(ins[1], i)
		}
	case opNeg:
		for i := range out {
			out[i] = -ins[0][i]
		}
	case opLog:
		for i := range out {
			out[i] = math.Log(ins[0][i])
		}
	case opExp:
		for i := range out {
			out[i] = math.Exp(ins[0][i])
		}
	case opSqrt:
		for i := range out {
			out[i] = math.Sqrt(ins[0][i])
		}
	case opPow:
		for i := range out {
			out[i] = math.Pow(at(ins[0], i), at(ins[1], i))
		}
	case opWhere:
		for i := range out {
			if at(ins[0], i) > 0 {
				out[i] = at(ins[1], i)
			} else {
				out[i] = at(ins[2], i)
			}
		}
	case opSum:
		out[0] = floats.Sum(ins[0])
	case opPoisLogPDF:
		for i := range out {
			out[i] = poissonLogPDF(at(ins[0], i), at(ins[1], i))
		}
	case opNormLogPDF:
		for i := range out {
			dist := distuv.Normal{Mu: at(ins[1], i), Sigma: at(ins[2], i)}
			out[i] = dist.LogProb(at(ins[0], i))
		}
	default:
		panic(fmt.Sprintf("graph: eval of %v", nd))
	}
	return out, nil
}

// poissonLogPDF is the continuous extension n·ln λ − λ − lnΓ(n+1). It
// accepts non-integer observations, which Asimov datasets produce.
func poissonLogPDF(n, lam float64) float64 {
	lg, _ := math.Lgamma(n + 1)
	if n == 0 {
		// avoids 0·ln(0) = NaN at lam = 0, where the density is e^-lam
		return -lam - lg
	}
	return n*math.Log(lam) - lam - lg
}

// Eval computes the value of v at the binding.
func (b *Backend) Eval(v tensor.Value, binding tensor.Binding) ([]float64, error) {
	out, err := newEvaluation(binding).eval(asNode(v))
	if err != nil {
		return nil, err
	}
	res := make([]float64, len(out))
	copy(res, out)
	return res, nil
}
