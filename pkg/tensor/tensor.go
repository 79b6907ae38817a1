// Package tensor defines the numeric backend contract for likelihood
// evaluation. A Backend builds computation graphs over opaque Values and
// evaluates them, with first and second derivatives, at parameter bindings.
//
// Graph construction errors (shape mismatches, out-of-range slices) are
// programmer errors and panic. Evaluation-time problems (unbound variables,
// wrong binding lengths) are data errors and return errors.
package tensor

import (
	"fmt"
	"strings"
)

// Known backend names.
const (
	Graph = "graph"
	Auto  = "auto"
)

// Value is an opaque handle to a node in a backend's computation graph.
// Every value has a static element count.
type Value interface {
	Len() int
}

// Binding assigns concrete values to the named variables of a graph.
type Binding map[string][]float64

// Backend builds and evaluates computation graphs. All elementwise binary
// operations broadcast a length-1 operand against a vector operand; any
// other length mismatch panics.
type Backend interface {
	Name() string

	Const(data []float64) Value
	Scalar(v float64) Value
	Var(name string, size int) Value

	Slice(v Value, lo, hi int) Value
	Concat(vs ...Value) Value

	Add(a, b Value) Value
	Sub(a, b Value) Value
	Mul(a, b Value) Value
	Div(a, b Value) Value
	Neg(v Value) Value
	Log(v Value) Value
	Exp(v Value) Value
	Sqrt(v Value) Value
	Pow(base, exp Value) Value

	// Where picks a where cond > 0 and b elsewhere, elementwise.
	Where(cond, a, b Value) Value

	// Sum reduces to a length-1 value.
	Sum(v Value) Value

	Ones(n int) Value
	Zeros(n int) Value

	// PoissonLogPDF is the continuous extension of the Poisson log
	// density, elementwise in n and lam.
	PoissonLogPDF(n, lam Value) Value
	// NormalLogPDF is the Normal log density, elementwise in x, mu, sigma.
	NormalLogPDF(x, mu, sigma Value) Value

	Eval(v Value, binding Binding) ([]float64, error)

	// Gradient differentiates a scalar v with respect to the named
	// variable, returning one partial per variable element.
	Gradient(v Value, wrt string, binding Binding) ([]float64, error)

	// Hessian returns the matrix of second partials of a scalar v with
	// respect to the named variable.
	Hessian(v Value, wrt string, binding Binding) ([][]float64, error)
}

// Normalize canonicalizes a backend name from config or flags.
func Normalize(name string) (string, error) {
	b := strings.ToLower(strings.TrimSpace(name))
	switch b {
	case "", Auto:
		return Graph, nil
	case Graph:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto or graph)", name)
	}
}
