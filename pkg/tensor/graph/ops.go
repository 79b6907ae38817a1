package graph

import (
	"fmt"

	"github.com/fkrieter/pyhf/pkg/tensor"
)

// binaryLen resolves the result length of an elementwise binary operation.
// Operands must match, or one must be a scalar to broadcast.
func binaryLen(a, b *node) int {
	switch {
	case a.n == b.n:
		return a.n
	case a.n == 1:
		return b.n
	case b.n == 1:
		return a.n
	}
	panic(fmt.Sprintf("graph: shape mismatch %v vs %v", a, b))
}

func (b *Backend) binary(op opKind, x, y tensor.Value) tensor.Value {
	a, c := asNode(x), asNode(y)
	return &node{op: op, n: binaryLen(a, c), inputs: []*node{a, c}}
}

func (b *Backend) unary(op opKind, x tensor.Value) tensor.Value {
	a := asNode(x)
	return &node{op: op, n: a.n, inputs: []*node{a}}
}

func (b *Backend) Add(x, y tensor.Value) tensor.Value { return b.binary(opAdd, x, y) }
func (b *Backend) Sub(x, y tensor.Value) tensor.Value { return b.binary(opSub, x, y) }
func (b *Backend) Mul(x, y tensor.Value) tensor.Value { return b.binary(opMul, x, y) }
func (b *Backend) Div(x, y tensor.Value) tensor.Value { return b.binary(opDiv, x, y) }

func (b *Backend) Neg(x tensor.Value) tensor.Value { return b.unary(opNeg, x) }
func (b *Backend) Log(x tensor.Value) tensor.Value { return b.unary(opLog, x) }
func (b *Backend) Exp(x tensor.Value) tensor.Value { return b.unary(opExp, x) }
func (b *Backend) Sqrt(x tensor.Value) tensor.Value { return b.unary(opSqrt, x) }

func (b *Backend) Pow(base, exp tensor.Value) tensor.Value {
	return b.binary(opPow, base, exp)
}

// Slice takes the half-open range [lo, hi) of v.
func (b *Backend) Slice(v tensor.Value, lo, hi int) tensor.Value {
	nd := asNode(v)
	if lo < 0 || hi > nd.n || lo >= hi {
		panic(fmt.Sprintf("graph: slice [%d:%d) of %v", lo, hi, nd))
	}
	return &node{op: opSlice, n: hi - lo, inputs: []*node{nd}, lo: lo}
}

// Concat joins values end to end.
func (b *Backend) Concat(vs ...tensor.Value) tensor.Value {
	if len(vs) == 0 {
		panic("graph: concat of nothing")
	}
	inputs := make([]*node, len(vs))
	n := 0
	for i, v := range vs {
		inputs[i] = asNode(v)
		n += inputs[i].n
	}
	if len(inputs) == 1 {
		return inputs[0]
	}
	return &node{op: opConcat, n: n, inputs: inputs}
}

// ternaryLen resolves the result length of a three-operand elementwise
// operation: every operand is either a scalar or the common length.
func ternaryLen(a, b, c *node) int {
	n := 1
	for _, nd := range [...]*node{a, b, c} {
		if nd.n == 1 {
			continue
		}
		if n != 1 && nd.n != n {
			panic(fmt.Sprintf("graph: shape mismatch %v vs length %d", nd, n))
		}
		n = nd.n
	}
	return n
}

// Where picks a where cond > 0 and b elsewhere. All three operands
// broadcast as scalars against the widest operand.
func (b *Backend) Where(cond, x, y tensor.Value) tensor.Value {
	c, a, d := asNode(cond), asNode(x), asNode(y)
	return &node{op: opWhere, n: ternaryLen(c, a, d), inputs: []*node{c, a, d}}
}

// Sum reduces v to a single element.
func (b *Backend) Sum(v tensor.Value) tensor.Value {
	return &node{op: opSum, n: 1, inputs: []*node{asNode(v)}}
}

// PoissonLogPDF is the continuous Poisson log density
// n·ln λ − λ − lnΓ(n+1), elementwise. Gradients flow into lam only; the
// observation argument is treated as data.
func (b *Backend) PoissonLogPDF(n, lam tensor.Value) tensor.Value {
	return b.binary(opPoisLogPDF, n, lam)
}

// NormalLogPDF is the Normal log density, elementwise in x, mu and sigma.
func (b *Backend) NormalLogPDF(x, mu, sigma tensor.Value) tensor.Value {
	xs, mus, sigmas := asNode(x), asNode(mu), asNode(sigma)
	return &node{op: opNormLogPDF, n: ternaryLen(xs, mus, sigmas), inputs: []*node{xs, mus, sigmas}}
}
