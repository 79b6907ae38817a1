package interp

import (
	"math"
	"testing"

	"github.com/fkrieter/pyhf/pkg/tensor"
	"github.com/fkrieter/pyhf/pkg/tensor/graph"
)

func evalAt(t *testing.T, build func(b tensor.Backend, alpha tensor.Value) tensor.Value, alpha float64) []float64 {
	t.Helper()
	b := graph.New()
	a := b.Var("alpha", 1)
	out, err := b.Eval(build(b, a), tensor.Binding{"alpha": {alpha}})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	return out
}

func TestCode0(t *testing.T) {
	t.Parallel()

	nominal := []float64{50, 60}
	hi := []float64{55, 62}
	lo := []float64{42, 57}
	build := func(b tensor.Backend, alpha tensor.Value) tensor.Value {
		return Code0(b, alpha, b.Const(nominal), b.Const(hi), b.Const(lo))
	}

	tests := []struct {
		alpha float64
		want  []float64
	}{
		{0, []float64{0, 0}},
		{1, []float64{5, 2}},
		{2, []float64{10, 4}},
		{-1, []float64{-8, -3}},
		{-0.5, []float64{-4, -1.5}},
	}
	for _, tc := range tests {
		got := evalAt(t, build, tc.alpha)
		for i := range tc.want {
			if math.Abs(got[i]-tc.want[i]) > 1e-12 {
				t.Errorf("Code0(alpha=%v)[%d] = %v, want %v", tc.alpha, i, got[i], tc.want[i])
			}
		}
	}
}

func TestCode1(t *testing.T) {
	t.Parallel()

	hi, lo := 1.1, 0.9
	build := func(b tensor.Backend, alpha tensor.Value) tensor.Value {
		return Code1(b, alpha, b.Scalar(hi), b.Scalar(lo))
	}

	tests := []struct {
		alpha float64
		want  float64
	}{
		{0, 1},
		{1, 1.1},
		{2, 1.1 * 1.1},
		{0.5, math.Sqrt(1.1)},
		{-1, 0.9},
		{-2, 0.9 * 0.9},
	}
	for _, tc := range tests {
		got := evalAt(t, build, tc.alpha)
		if math.Abs(got[0]-tc.want) > 1e-12 {
			t.Errorf("Code1(alpha=%v) = %v, want %v", tc.alpha, got[0], tc.want)
		}
	}
}

func TestCode1GradientSign(t *testing.T) {
	t.Parallel()

	b := graph.New()
	a := b.Var("alpha", 1)
	out := b.Sum(Code1(b, a, b.Scalar(1.1), b.Scalar(0.9)))

	// rising through hi side, falling through lo side mirrored
	g, err := b.Gradient(out, "alpha", tensor.Binding{"alpha": {0.5}})
	if err != nil {
		t.Fatalf("Gradient: %v", err)
	}
	if g[0] <= 0 {
		t.Fatalf("expected positive slope on hi side, got %v", g[0])
	}
	g, err = b.Gradient(out, "alpha", tensor.Binding{"alpha": {-0.5}})
	if err != nil {
		t.Fatalf("Gradient: %v", err)
	}
	if g[0] <= 0 {
		t.Fatalf("expected positive slope on lo side for lo < 1, got %v", g[0])
	}
}
