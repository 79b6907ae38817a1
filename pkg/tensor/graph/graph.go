// Package graph implements the default tensor backend: a reverse-mode
// automatic differentiation graph over float64 vectors.
//
// Graphs are built once and evaluated many times at different parameter
// bindings. Eval runs a memoized forward pass; Gradient adds a single
// reverse sweep accumulating exact adjoints; Hessian takes central finite
// differences of the exact gradient, so no operation needs second-order
// rules.
package graph

import (
	"fmt"

	"github.com/fkrieter/pyhf/pkg/tensor"
)

type opKind uint8

const (
	opConst opKind = iota
	opVar
	opSlice
	opConcat
	opAdd
	opSub
	opMul
	opDiv
	opNeg
	opLog
	opExp
	opSqrt
	opPow
	opWhere
	opSum
	opPoisLogPDF
	opNormLogPDF
)

var opNames = map[opKind]string{
	opConst: "const", opVar: "var", opSlice: "slice", opConcat: "concat",
	opAdd: "add", opSub: "sub", opMul: "mul", opDiv: "div", opNeg: "neg",
	opLog: "log", opExp: "exp", opSqrt: "sqrt", opPow: "pow",
	opWhere: "where", opSum: "sum",
	opPoisLogPDF: "poisson_logpdf", opNormLogPDF: "normal_logpdf",
}

// node is one vertex of the computation graph. Nodes are immutable after
// construction and safe to share between graphs.
type node struct {
	op     opKind
	n      int
	inputs []*node

	data []float64 // opConst payload
	name string    // opVar
	lo   int       // opSlice lower bound
}

func (nd *node) Len() int { return nd.n }

func (nd *node) String() string {
	if nd.op == opVar {
		return fmt.Sprintf("var(%s)[%d]", nd.name, nd.n)
	}
	return fmt.Sprintf("%s[%d]", opNames[nd.op], nd.n)
}

// Backend builds and evaluates graphs. The zero value is ready to use.
type Backend struct{}

// New returns a graph backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return tensor.Graph }

func asNode(v tensor.Value) *node {
	nd, ok := v.(*node)
	if !ok {
		panic(fmt.Sprintf("graph: foreign value %T", v))
	}
	return nd
}

// Const copies data into a constant node.
func (b *Backend) Const(data []float64) tensor.Value {
	if len(data) == 0 {
		panic("graph: empty const")
	}
	d := make([]float64, len(data))
	copy(d, data)
	return &node{op: opConst, n: len(d), data: d}
}

// Scalar is a length-1 constant.
func (b *Backend) Scalar(v float64) tensor.Value {
	return &node{op: opConst, n: 1, data: []float64{v}}
}

// Var declares a named input of the given size, bound at evaluation time.
func (b *Backend) Var(name string, size int) tensor.Value {
	if size <= 0 {
		panic(fmt.Sprintf("graph: variable %q with size %d", name, size))
	}
	if name == "" {
		panic("graph: variable without name")
	}
	return &node{op: opVar, n: size, name: name}
}

func (b *Backend) Ones(n int) tensor.Value {
	return b.fill(n, 1)
}

func (b *Backend) Zeros(n int) tensor.Value {
	return b.fill(n, 0)
}

func (b *Backend) fill(n int, v float64) tensor.Value {
	if n <= 0 {
		panic(fmt.Sprintf("graph: fill with size %d", n))
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = v
	}
	return &node{op: opConst, n: n, data: data}
}
