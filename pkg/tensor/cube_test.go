package tensor

import (
	"math"
	"testing"
)

func TestNewCubeStartsAsPadding(t *testing.T) {
	t.Parallel()

	c := NewCube(2, 3, 4)
	if ch, s, b := c.Dims(); ch != 2 || s != 3 || b != 4 {
		t.Fatalf("Dims: got (%d,%d,%d)", ch, s, b)
	}
	for i, v := range c.Data {
		if !math.IsNaN(v) {
			t.Fatalf("cell %d not NaN after NewCube: %v", i, v)
		}
	}
}

func TestCubeSetSample(t *testing.T) {
	t.Parallel()

	c := NewCube(2, 2, 3)
	c.SetSample(0, 0, []float64{1, 2, 3})
	c.SetSample(1, 1, []float64{4, 5})

	if got := c.At(0, 0, 1); got != 2 {
		t.Fatalf("At(0,0,1): got %v, want 2", got)
	}
	if got := c.At(1, 1, 0); got != 4 {
		t.Fatalf("At(1,1,0): got %v, want 4", got)
	}
	// short row leaves trailing padding
	if !c.IsPadding(1, 1, 2) {
		t.Fatal("expected trailing NaN padding for short row")
	}
	// untouched slot stays padded
	if !c.IsPadding(0, 1, 0) {
		t.Fatal("expected untouched slot to stay padded")
	}
}

func TestCubeSampleRowIsView(t *testing.T) {
	t.Parallel()

	c := NewCube(1, 1, 2)
	c.SetSample(0, 0, []float64{7, 8})
	row := c.SampleRow(0, 0)
	row[0] = 9
	if got := c.At(0, 0, 0); got != 9 {
		t.Fatalf("SampleRow is not a view: got %v", got)
	}
}

func TestCubeCloneIsIndependent(t *testing.T) {
	t.Parallel()

	c := NewCube(1, 1, 1)
	c.Set(0, 0, 0, 5)
	d := c.Clone()
	d.Set(0, 0, 0, 6)
	if c.At(0, 0, 0) != 5 {
		t.Fatal("Clone shares storage with original")
	}
}

func TestCubePanics(t *testing.T) {
	t.Parallel()

	mustPanic(t, func() { NewCube(-1, 1, 1) })
	mustPanic(t, func() {
		c := NewCube(1, 1, 1)
		c.SetSample(0, 0, []float64{1, 2})
	})
	mustPanic(t, func() {
		c := NewCube(1, 1, 1)
		c.At(1, 0, 0)
	})
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", Graph, false},
		{"auto", Graph, false},
		{"graph", Graph, false},
		{" Graph ", Graph, false},
		{"cuda", "", true},
	}
	for _, tc := range tests {
		got, err := Normalize(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Normalize(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("Normalize(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func mustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	fn()
}
