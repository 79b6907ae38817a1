package pdf

import "github.com/fkrieter/pyhf/pkg/workspace"

// UncorrelatedBackground builds a one-channel counting model: a signal
// sample scaled by the unconstrained normalisation mu, and a background
// sample with per-bin Poisson-constrained uncertainties. mu is the
// parameter of interest.
func UncorrelatedBackground(signal, background, backgroundUncerts []float64, opts ...Option) (*Model, error) {
	spec := &workspace.Spec{
		Channels: []workspace.Channel{
			{
				Name: "singlechannel",
				Samples: []workspace.Sample{
					{
						Name: "signal",
						Data: signal,
						Modifiers: []workspace.ModifierDef{
							{Name: "mu", Type: workspace.TypeNormFactor},
						},
					},
					{
						Name: "background",
						Data: background,
						Modifiers: []workspace.ModifierDef{
							{
								Name: "uncorr_bkguncrt",
								Type: workspace.TypeShapeSys,
								Data: workspace.ModifierData{Floats: backgroundUncerts},
							},
						},
					},
				},
			},
		},
	}
	return New(spec, append([]Option{WithPOI("mu")}, opts...)...)
}
