package graph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/fkrieter/pyhf/pkg/tensor"
)

// Gradient computes exact first derivatives of the scalar v with respect
// to every element of the named variable at the binding. Variables that do
// not appear in the graph get a zero gradient.
func (b *Backend) Gradient(v tensor.Value, wrt string, binding tensor.Binding) ([]float64, error) {
	root := asNode(v)
	if root.n != 1 {
		return nil, fmt.Errorf("graph: gradient of non-scalar %v", root)
	}
	bound, ok := binding[wrt]
	if !ok {
		return nil, fmt.Errorf("graph: gradient wrt unbound variable %q", wrt)
	}

	e := newEvaluation(binding)
	if _, err := e.eval(root); err != nil {
		return nil, err
	}

	order := topoOrder(root)
	adj := make(map[*node][]float64, len(order))
	adj[root] = []float64{1}

	for i := len(order) - 1; i >= 0; i-- {
		nd := order[i]
		g := adj[nd]
		if g == nil {
			continue
		}
		backprop(e, adj, nd, g)
	}

	grad := make([]float64, len(bound))
	for nd, g := range adj {
		if nd.op == opVar && nd.name == wrt {
			floats.Add(grad, g)
		}
	}
	return grad, nil
}

// topoOrder returns nodes in dependency order, root last.
func topoOrder(root *node) []*node {
	var order []*node
	seen := make(map[*node]bool)
	var visit func(*node)
	visit = func(nd *node) {
		if seen[nd] {
			return
		}
		seen[nd] = true
		for _, in := range nd.inputs {
			visit(in)
		}
		order = append(order, nd)
	}
	visit(root)
	return order
}

// accum adds g to the adjoint of nd at output index i, folding broadcast
// operands back down to their scalar slot.
func accum(adj map[*node][]float64, nd *node, i int, g float64) {
	a := adj[nd]
	if a == nil {
		a = make([]float64, nd.n)
		adj[nd] = a
	}
	if nd.n == 1 {
		a[0] += g
		return
	}
	a[i] += g
}

// backprop distributes the adjoint g of nd onto its inputs.
func backprop(e *evaluation, adj map[*node][]float64, nd *node, g []float64) {
	switch nd.op {
	case opConst, opVar:
		return
	}

	ins := make([][]float64, len(nd.inputs))
	for i, in := range nd.inputs {
		ins[i] = e.values[in]
	}
	out := e.values[nd]

	switch nd.op {
	case opSlice:
		src := nd.inputs[0]
		a := adj[src]
		if a == nil {
			a = make([]float64, src.n)
			adj[src] = a
		}
		for i, gi := range g {
			a[nd.lo+i] += gi
		}
	case opConcat:
		pos := 0
		for _, in := range nd.inputs {
			for i := 0; i < in.n; i++ {
				accum(adj, in, i, g[pos+i])
			}
			pos += in.n
		}
	case opAdd:
		for i, gi := range g {
			accum(adj, nd.inputs[0], i, gi)
			accum(adj, nd.inputs[1], i, gi)
		}
	case opSub:
		for i, gi := range g {
			accum(adj, nd.inputs[0], i, gi)
			accum(adj, nd.inputs[1], i, -gi)
		}
	case opMul:
		for i, gi := range g {
			accum(adj, nd.inputs[0], i, gi*at(ins[1], i))
			accum(adj, nd.inputs[1], i, gi*at(ins[0], i))
		}
	case opDiv:
		for i, gi := range g {
			bi := at(ins[1], i)
			accum(adj, nd.inputs[0], i, gi/bi)
			accum(adj, nd.inputs[1], i, -gi*out[i]/bi)
		}
	case opNeg:
		for i, gi := range g {
			accum(adj, nd.inputs[0], i, -gi)
		}
	case opLog:
		for i, gi := range g {
			accum(adj, nd.inputs[0], i, gi/ins[0][i])
		}
	case opExp:
		for i, gi := range g {
			accum(adj, nd.inputs[0], i, gi*out[i])
		}
	case opSqrt:
		for i, gi := range g {
			accum(adj, nd.inputs[0], i, gi/(2*out[i]))
		}
	case opPow:
		for i, gi := range g {
			base, exp := at(ins[0], i), at(ins[1], i)
			accum(adj, nd.inputs[0], i, gi*exp*math.Pow(base, exp-1))
			accum(adj, nd.inputs[1], i, gi*out[i]*math.Log(base))
		}
	case opWhere:
		for i, gi := range g {
			if at(ins[0], i) > 0 {
				accum(adj, nd.inputs[1], i, gi)
			} else {
				accum(adj, nd.inputs[2], i, gi)
			}
		}
	case opSum:
		in := nd.inputs[0]
		for i := 0; i < in.n; i++ {
			accum(adj, in, i, g[0])
		}
	case opPoisLogPDF:
		// d/dλ (n·lnλ − λ − lnΓ(n+1)) = n/λ − 1; the observation is data
		for i, gi := range g {
			n, lam := at(ins[0], i), at(ins[1], i)
			d := -1.0
			if n != 0 {
				d = n/lam - 1
			}
			accum(adj, nd.inputs[1], i, gi*d)
		}
	case opNormLogPDF:
		for i, gi := range g {
			x, mu, sigma := at(ins[0], i), at(ins[1], i), at(ins[2], i)
			z := (x - mu) / sigma
			accum(adj, nd.inputs[0], i, gi*(-z/sigma))
			accum(adj, nd.inputs[1], i, gi*(z/sigma))
			accum(adj, nd.inputs[2], i, gi*((z*z-1)/sigma))
		}
	default:
		panic(fmt.Sprintf("graph: backprop through %v", nd))
	}
}

// Hessian computes second derivatives of the scalar v with respect to the
// named variable as central finite differences of the exact gradient. The
// result is symmetrized.
func (b *Backend) Hessian(v tensor.Value, wrt string, binding tensor.Binding) ([][]float64, error) {
	root := asNode(v)
	if root.n != 1 {
		return nil, fmt.Errorf("graph: hessian of non-scalar %v", root)
	}
	base, ok := binding[wrt]
	if !ok {
		return nil, fmt.Errorf("graph: hessian wrt unbound variable %q", wrt)
	}
	n := len(base)

	var gradErr error
	gradAt := func(dst, x []float64) {
		shifted := make(tensor.Binding, len(binding))
		for k, vs := range binding {
			shifted[k] = vs
		}
		shifted[wrt] = x
		g, err := b.Gradient(v, wrt, shifted)
		if err != nil {
			if gradErr == nil {
				gradErr = err
			}
			for i := range dst {
				dst[i] = math.NaN()
			}
			return
		}
		copy(dst, g)
	}

	jac := mat.NewDense(n, n, nil)
	fd.Jacobian(jac, gradAt, base, &fd.JacobianSettings{Formula: fd.Central})
	if gradErr != nil {
		return nil, gradErr
	}

	hess := make([][]float64, n)
	for i := range hess {
		hess[i] = make([]float64, n)
		for j := range hess[i] {
			hess[i][j] = (jac.At(i, j) + jac.At(j, i)) / 2
		}
	}
	return hess, nil
}
