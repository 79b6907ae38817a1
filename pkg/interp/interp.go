// Package interp provides the HistFactory interpolation codes used by
// shape and normalization systematics. Both codes pivot on the sign of the
// nuisance parameter alpha: positive alpha interpolates toward the up
// variation, negative toward the down variation.
package interp

import "github.com/fkrieter/pyhf/pkg/tensor"

// Code0 is piecewise-linear interpolation, returning an additive delta:
//
//	alpha >= 0: alpha * (hi - nominal)
//	alpha <  0: alpha * (nominal - lo)
//
// hi, lo and nominal must share a length; alpha broadcasts.
func Code0(b tensor.Backend, alpha, nominal, hi, lo tensor.Value) tensor.Value {
	up := b.Mul(alpha, b.Sub(hi, nominal))
	down := b.Mul(alpha, b.Sub(nominal, lo))
	return b.Where(alpha, up, down)
}

// Code1 is exponential interpolation, returning a multiplicative factor:
//
//	alpha >= 0: hi^alpha
//	alpha <  0: lo^(-alpha)
//
// Both branches equal one at alpha == 0.
func Code1(b tensor.Backend, alpha, hi, lo tensor.Value) tensor.Value {
	up := b.Pow(hi, alpha)
	down := b.Pow(lo, b.Neg(alpha))
	return b.Where(alpha, up, down)
}
