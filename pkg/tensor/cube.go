package tensor

import "math"

// Cube is a dense rank-3 block of float64 values laid out row-major as
// (channel, sample, bin). Channels hold differing sample and bin counts;
// absent cells are padded with NaN and skipped by consumers.
//
// Cube performs no memory safety beyond Go's slice checks; out-of-range
// indices panic.
type Cube struct {
	Channels int
	Samples  int
	Bins     int

	// Data holds the flattened values, len Channels*Samples*Bins.
	Data []float64
}

// NewCube allocates a cube with every cell set to NaN.
func NewCube(channels, samples, bins int) *Cube {
	if channels < 0 || samples < 0 || bins < 0 {
		panic("negative cube dimension")
	}
	data := make([]float64, channels*samples*bins)
	for i := range data {
		data[i] = math.NaN()
	}
	return &Cube{Channels: channels, Samples: samples, Bins: bins, Data: data}
}

func (c *Cube) index(ch, s, b int) int {
	return (ch*c.Samples+s)*c.Bins + b
}

// At returns the value at (ch, s, b).
func (c *Cube) At(ch, s, b int) float64 {
	return c.Data[c.index(ch, s, b)]
}

// Set stores v at (ch, s, b).
func (c *Cube) Set(ch, s, b int, v float64) {
	c.Data[c.index(ch, s, b)] = v
}

// SetSample copies a per-bin row into slot (ch, s). Rows shorter than the
// bin dimension leave the trailing cells as NaN padding.
func (c *Cube) SetSample(ch, s int, row []float64) {
	if len(row) > c.Bins {
		panic("sample row longer than cube bin dimension")
	}
	copy(c.Data[c.index(ch, s, 0):c.index(ch, s, len(row))], row)
}

// SampleRow returns the (ch, s) row as a view into the cube.
func (c *Cube) SampleRow(ch, s int) []float64 {
	return c.Data[c.index(ch, s, 0):c.index(ch, s, c.Bins)]
}

// IsPadding reports whether cell (ch, s, b) is NaN padding.
func (c *Cube) IsPadding(ch, s, b int) bool {
	return math.IsNaN(c.At(ch, s, b))
}

// Dims returns the cube dimensions.
func (c *Cube) Dims() (channels, samples, bins int) {
	return c.Channels, c.Samples, c.Bins
}

// Clone returns a deep copy.
func (c *Cube) Clone() *Cube {
	data := make([]float64, len(c.Data))
	copy(data, c.Data)
	return &Cube{Channels: c.Channels, Samples: c.Samples, Bins: c.Bins, Data: data}
}
