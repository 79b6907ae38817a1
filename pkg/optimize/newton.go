// Package optimize fits model parameters by Newton iteration on a
// backend-differentiated objective. The fit helpers wrap a model's
// negative log likelihood; Minimize works on any scalar graph.
package optimize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fkrieter/pyhf/internal/logger"
	"github.com/fkrieter/pyhf/pkg/tensor"
)

// Defaults applied where the corresponding Newton field is zero.
const (
	DefaultMaxIterations = 1000
	DefaultTolerance     = 1e-4
	DefaultDamping       = 1e-10
)

// Newton minimizes a twice-differentiable scalar objective by damped
// Newton steps, clamping each iterate to the objective's bounds. The zero
// value is ready to use.
type Newton struct {
	// MaxIterations caps the number of Newton steps.
	MaxIterations int
	// Tolerance declares convergence when no parameter moved further
	// than this in one step.
	Tolerance float64
	// Damping is added to the Hessian diagonal before solving.
	Damping float64
	// Log receives per-iteration progress at debug level.
	Log logger.Logger
}

// Objective is a scalar expression to minimize over one named variable.
type Objective struct {
	Backend tensor.Backend
	Expr    tensor.Value
	// Var names the free variable inside Expr.
	Var  string
	Init []float64
	// Bounds clamp each parameter to [lo, hi] after every step. Nil
	// leaves the parameters unbounded.
	Bounds [][2]float64
}

// Result is a completed minimization.
type Result struct {
	// X is the final parameter vector.
	X []float64
	// Objective is the expression value at X.
	Objective float64
	// Iterations is the number of Newton steps taken.
	Iterations int
	// Converged reports whether the step tolerance was reached.
	Converged bool
}

func (n *Newton) maxIterations() int {
	if n.MaxIterations > 0 {
		return n.MaxIterations
	}
	return DefaultMaxIterations
}

func (n *Newton) tolerance() float64 {
	if n.Tolerance > 0 {
		return n.Tolerance
	}
	return DefaultTolerance
}

func (n *Newton) damping() float64 {
	if n.Damping > 0 {
		return n.Damping
	}
	return DefaultDamping
}

func (n *Newton) log() logger.Logger {
	if n.Log != nil {
		return n.Log
	}
	return logger.Discard()
}

// Minimize runs damped Newton iteration from obj.Init until the largest
// clamped parameter move drops below tolerance.
func (n *Newton) Minimize(obj Objective) (*Result, error) {
	k := len(obj.Init)
	if k == 0 {
		return nil, fmt.Errorf("optimize: empty initial parameter vector")
	}
	if obj.Bounds != nil && len(obj.Bounds) != k {
		return nil, fmt.Errorf("optimize: %d bounds for %d parameters", len(obj.Bounds), k)
	}

	b := obj.Backend
	log := n.log()
	tol := n.tolerance()
	x := append([]float64(nil), obj.Init...)
	binding := tensor.Binding{obj.Var: x}

	hess := mat.NewDense(k, k, nil)
	inv := mat.NewDense(k, k, nil)
	step := mat.NewVecDense(k, nil)

	for iter := 1; iter <= n.maxIterations(); iter++ {
		grad, err := b.Gradient(obj.Expr, obj.Var, binding)
		if err != nil {
			return nil, fmt.Errorf("%w: gradient at iteration %d: %w", ErrNumericFailure, iter, err)
		}
		if i := firstNonFinite(grad); i >= 0 {
			return nil, fmt.Errorf("%w: gradient[%d] = %v at iteration %d (x = %v)",
				ErrNumericFailure, i, grad[i], iter, x)
		}

		hrows, err := b.Hessian(obj.Expr, obj.Var, binding)
		if err != nil {
			return nil, fmt.Errorf("%w: hessian at iteration %d: %w", ErrNumericFailure, iter, err)
		}
		for i, row := range hrows {
			if j := firstNonFinite(row); j >= 0 {
				return nil, fmt.Errorf("%w: hessian[%d][%d] = %v at iteration %d",
					ErrNumericFailure, i, j, row[j], iter)
			}
			hess.SetRow(i, row)
		}
		for i := 0; i < k; i++ {
			hess.Set(i, i, hess.At(i, i)+n.damping())
		}

		if err := inv.Inverse(hess); err != nil {
			return nil, fmt.Errorf("%w: singular hessian at iteration %d: %w", ErrNumericFailure, iter, err)
		}
		step.MulVec(inv, mat.NewVecDense(k, grad))

		maxMove := 0.0
		for i := 0; i < k; i++ {
			next := x[i] - step.AtVec(i)
			if obj.Bounds != nil {
				next = clamp(next, obj.Bounds[i])
			}
			if move := math.Abs(next - x[i]); move > maxMove {
				maxMove = move
			}
			x[i] = next
		}
		log.Debug("newton step", "iteration", iter, "max_move", maxMove)

		if maxMove < tol {
			val, err := n.objectiveAt(b, obj, binding)
			if err != nil {
				return nil, err
			}
			log.Debug("fit converged", "iterations", iter, "objective", val)
			return &Result{X: x, Objective: val, Iterations: iter, Converged: true}, nil
		}
	}
	return nil, fmt.Errorf("%w: after %d iterations (tolerance %g)", ErrNotConverged, n.maxIterations(), tol)
}

func (n *Newton) objectiveAt(b tensor.Backend, obj Objective, binding tensor.Binding) (float64, error) {
	out, err := b.Eval(obj.Expr, binding)
	if err != nil {
		return 0, fmt.Errorf("%w: objective: %w", ErrNumericFailure, err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("optimize: objective has %d elements, want a scalar", len(out))
	}
	if !isFinite(out[0]) {
		return 0, fmt.Errorf("%w: objective = %v", ErrNumericFailure, out[0])
	}
	return out[0], nil
}

func clamp(v float64, b [2]float64) float64 {
	if v < b[0] {
		return b[0]
	}
	if v > b[1] {
		return b[1]
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func firstNonFinite(vs []float64) int {
	for i, v := range vs {
		if !isFinite(v) {
			return i
		}
	}
	return -1
}
