package modifiers

import "github.com/fkrieter/pyhf/pkg/tensor"

// Combiner folds the per-attachment fields of every modifier into one
// factor and one delta expression per (channel, sample) slot. Factor
// fields are identity (one) off their attachments and multiply together;
// delta fields are zero off their attachments and add. The model applies
// them as factor * (delta + nominal).
type Combiner struct {
	b       tensor.Backend
	factors map[[2]int][]tensor.Value
	deltas  map[[2]int][]tensor.Value
}

// NewCombiner returns an empty Combiner building nodes on b.
func NewCombiner(b tensor.Backend) *Combiner {
	return &Combiner{
		b:       b,
		factors: make(map[[2]int][]tensor.Value),
		deltas:  make(map[[2]int][]tensor.Value),
	}
}

// Add records a modifier field for slot (channel, sample), routed by the
// modifier's op kind.
func (c *Combiner) Add(kind OpKind, channel, sample int, field tensor.Value) {
	key := [2]int{channel, sample}
	if kind == OpDelta {
		c.deltas[key] = append(c.deltas[key], field)
		return
	}
	c.factors[key] = append(c.factors[key], field)
}

// FactorField multiplies the factor contributions of a slot, or returns
// nil when the slot has none (an implicit field of ones).
func (c *Combiner) FactorField(channel, sample int) tensor.Value {
	return c.fold(c.factors[[2]int{channel, sample}], c.b.Mul)
}

// DeltaField sums the delta contributions of a slot, or returns nil when
// the slot has none (an implicit field of zeros).
func (c *Combiner) DeltaField(channel, sample int) tensor.Value {
	return c.fold(c.deltas[[2]int{channel, sample}], c.b.Add)
}

func (c *Combiner) fold(fields []tensor.Value, op func(a, b tensor.Value) tensor.Value) tensor.Value {
	if len(fields) == 0 {
		return nil
	}
	out := fields[0]
	for _, f := range fields[1:] {
		out = op(out, f)
	}
	return out
}
