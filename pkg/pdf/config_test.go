package pdf

import (
	"errors"
	"math"
	"testing"

	"github.com/fkrieter/pyhf/pkg/workspace"
)

func twoBinSpec() *workspace.Spec {
	return &workspace.Spec{
		Channels: []workspace.Channel{
			{
				Name: "singlechannel",
				Samples: []workspace.Sample{
					{
						Name: "signal",
						Data: []float64{12, 11},
						Modifiers: []workspace.ModifierDef{
							{Name: "mu", Type: workspace.TypeNormFactor},
						},
					},
					{
						Name: "background",
						Data: []float64{50, 52},
						Modifiers: []workspace.ModifierDef{
							{
								Name: "uncorr_bkguncrt",
								Type: workspace.TypeShapeSys,
								Data: workspace.ModifierData{Floats: []float64{3, 7}},
							},
						},
					},
				},
			},
		},
	}
}

func mustConfig(t *testing.T, spec *workspace.Spec, opts ...Option) *Config {
	t.Helper()
	cfg, err := NewConfig(spec, opts...)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return cfg
}

func TestConfigTwoBin(t *testing.T) {
	t.Parallel()

	cfg := mustConfig(t, twoBinSpec(), WithPOI("mu"))

	if got, want := cfg.NParams(), 3; got != want {
		t.Fatalf("NParams = %d, want %d", got, want)
	}
	wantOrder := []string{"mu", "uncorr_bkguncrt"}
	order := cfg.ParOrder()
	if len(order) != len(wantOrder) {
		t.Fatalf("ParOrder = %v, want %v", order, wantOrder)
	}
	for i := range order {
		if order[i] != wantOrder[i] {
			t.Fatalf("ParOrder = %v, want %v", order, wantOrder)
		}
	}

	if sl, ok := cfg.ParSlice("mu"); !ok || sl != [2]int{0, 1} {
		t.Fatalf("ParSlice(mu) = %v, %v, want [0 1], true", sl, ok)
	}
	if sl, ok := cfg.ParSlice("uncorr_bkguncrt"); !ok || sl != [2]int{1, 3} {
		t.Fatalf("ParSlice(uncorr_bkguncrt) = %v, %v, want [1 3], true", sl, ok)
	}
	if _, ok := cfg.ParSlice("nope"); ok {
		t.Fatal("ParSlice(nope) reported ok")
	}

	aux := cfg.AuxData()
	wantAux := []float64{2500.0 / 9.0, 2704.0 / 49.0}
	if len(aux) != len(wantAux) {
		t.Fatalf("AuxData = %v, want %v", aux, wantAux)
	}
	for i := range aux {
		if math.Abs(aux[i]-wantAux[i]) > 1e-12 {
			t.Fatalf("AuxData[%d] = %v, want %v", i, aux[i], wantAux[i])
		}
	}
	auxOrder := cfg.AuxOrder()
	if len(auxOrder) != 1 || auxOrder[0] != "uncorr_bkguncrt" {
		t.Fatalf("AuxOrder = %v, want [uncorr_bkguncrt]", auxOrder)
	}
	if sl, ok := cfg.AuxSlice("uncorr_bkguncrt"); !ok || sl != [2]int{0, 2} {
		t.Fatalf("AuxSlice = %v, %v, want [0 2], true", sl, ok)
	}

	init := cfg.SuggestedInit()
	for i, v := range init {
		if v != 1 {
			t.Fatalf("SuggestedInit[%d] = %v, want 1", i, v)
		}
	}
	bounds := cfg.SuggestedBounds()
	if len(init) != cfg.NParams() || len(bounds) != cfg.NParams() {
		t.Fatalf("init/bounds lengths %d/%d, want %d", len(init), len(bounds), cfg.NParams())
	}
	if bounds[0] != [2]float64{0, 10} {
		t.Fatalf("POI bounds = %v, want [0 10]", bounds[0])
	}
	if bounds[1] != [2]float64{1e-10, 10} {
		t.Fatalf("gamma bounds = %v, want [1e-10 10]", bounds[1])
	}

	idx, err := cfg.POIIndex()
	if err != nil || idx != 0 {
		t.Fatalf("POIIndex = %d, %v, want 0, nil", idx, err)
	}
	if got := cfg.POIName(); got != "mu" {
		t.Fatalf("POIName = %q, want mu", got)
	}

	channels := cfg.Channels()
	if len(channels) != 1 || channels[0] != "singlechannel" {
		t.Fatalf("Channels = %v", channels)
	}
	samples := cfg.Samples()
	if len(samples) != 2 || samples[0] != "signal" || samples[1] != "background" {
		t.Fatalf("Samples = %v", samples)
	}
}

func TestConfigParNames(t *testing.T) {
	t.Parallel()

	cfg := mustConfig(t, twoBinSpec(), WithPOI("mu"))
	got := cfg.ParNames()
	want := []string{"mu", "uncorr_bkguncrt[0]", "uncorr_bkguncrt[1]"}
	if len(got) != len(want) {
		t.Fatalf("ParNames = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ParNames = %v, want %v", got, want)
		}
	}
}

func TestConfigNoPOI(t *testing.T) {
	t.Parallel()

	cfg := mustConfig(t, twoBinSpec())
	if _, err := cfg.POIIndex(); !errors.Is(err, ErrNoPOI) {
		t.Fatalf("POIIndex error = %v, want ErrNoPOI", err)
	}
	if got := cfg.POIName(); got != "" {
		t.Fatalf("POIName = %q, want empty", got)
	}
}

func TestConfigSharedNormFactor(t *testing.T) {
	t.Parallel()

	spec := &workspace.Spec{
		Channels: []workspace.Channel{
			{
				Name: "ch",
				Samples: []workspace.Sample{
					{
						Name: "a",
						Data: []float64{10, 20},
						Modifiers: []workspace.ModifierDef{
							{Name: "mu", Type: workspace.TypeNormFactor},
						},
					},
					{
						Name: "b",
						Data: []float64{30, 40},
						Modifiers: []workspace.ModifierDef{
							{Name: "mu", Type: workspace.TypeNormFactor},
						},
					},
				},
			},
		},
	}
	cfg := mustConfig(t, spec)
	if got, want := cfg.NParams(), 1; got != want {
		t.Fatalf("NParams = %d, want %d: reuse must share one parameter", got, want)
	}
	if got := cfg.ParOrder(); len(got) != 1 || got[0] != "mu" {
		t.Fatalf("ParOrder = %v, want [mu]", got)
	}
}

func TestConfigNameReuseErrors(t *testing.T) {
	t.Parallel()

	base := func(second workspace.ModifierDef) *workspace.Spec {
		return &workspace.Spec{
			Channels: []workspace.Channel{
				{
					Name: "ch",
					Samples: []workspace.Sample{
						{
							Name: "a",
							Data: []float64{10, 20},
							Modifiers: []workspace.ModifierDef{
								{
									Name: "syst",
									Type: workspace.TypeShapeSys,
									Data: workspace.ModifierData{Floats: []float64{1, 2}},
								},
							},
						},
						{
							Name:      "b",
							Data:      []float64{30, 40},
							Modifiers: []workspace.ModifierDef{second},
						},
					},
				},
			},
		}
	}

	t.Run("type collision", func(t *testing.T) {
		t.Parallel()
		_, err := NewConfig(base(workspace.ModifierDef{Name: "syst", Type: workspace.TypeNormFactor}))
		if !errors.Is(err, ErrInvalidNameReuse) {
			t.Fatalf("err = %v, want ErrInvalidNameReuse", err)
		}
	})

	t.Run("unshared reuse", func(t *testing.T) {
		t.Parallel()
		_, err := NewConfig(base(workspace.ModifierDef{
			Name: "syst",
			Type: workspace.TypeShapeSys,
			Data: workspace.ModifierData{Floats: []float64{3, 4}},
		}))
		if !errors.Is(err, ErrInvalidNameReuse) {
			t.Fatalf("err = %v, want ErrInvalidNameReuse", err)
		}
	})
}

func TestConfigQualifiedNames(t *testing.T) {
	t.Parallel()

	spec := &workspace.Spec{
		Channels: []workspace.Channel{
			{
				Name: "ch",
				Samples: []workspace.Sample{
					{
						Name: "a",
						Data: []float64{10, 20},
						Modifiers: []workspace.ModifierDef{
							{Name: "x", Type: workspace.TypeNormFactor},
							{Name: "x", Type: workspace.TypeShapeFactor},
						},
					},
				},
			},
		},
	}

	// Without qualification the bare names collide across types.
	if _, err := NewConfig(spec); !errors.Is(err, ErrInvalidNameReuse) {
		t.Fatalf("unqualified err = %v, want ErrInvalidNameReuse", err)
	}

	cfg := mustConfig(t, spec, WithQualifiedNames(), WithPOI("x"))
	order := cfg.ParOrder()
	if len(order) != 2 || order[0] != "normfactor/x" || order[1] != "shapefactor/x" {
		t.Fatalf("ParOrder = %v, want [normfactor/x shapefactor/x]", order)
	}
	// The bare POI name follows the first modifier that matched it.
	if got := cfg.POIName(); got != "normfactor/x" {
		t.Fatalf("POIName = %q, want normfactor/x", got)
	}
	idx, err := cfg.POIIndex()
	if err != nil || idx != 0 {
		t.Fatalf("POIIndex = %d, %v, want 0, nil", idx, err)
	}
}

func TestConfigPOIErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		poi  string
		want error
	}{
		{"missing", "nonexistent", ErrPOINotFound},
		{"constrained", "uncorr_bkguncrt", ErrInvalidPOI},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewConfig(twoBinSpec(), WithPOI(tc.poi))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestConfigMultiParameterPOI(t *testing.T) {
	t.Parallel()

	spec := &workspace.Spec{
		Channels: []workspace.Channel{
			{
				Name: "ch",
				Samples: []workspace.Sample{
					{
						Name: "a",
						Data: []float64{10, 20},
						Modifiers: []workspace.ModifierDef{
							{Name: "sf", Type: workspace.TypeShapeFactor},
						},
					},
				},
			},
		},
	}
	_, err := NewConfig(spec, WithPOI("sf"))
	if !errors.Is(err, ErrInvalidPOI) {
		t.Fatalf("err = %v, want ErrInvalidPOI", err)
	}
}

func TestConfigUnknownModifierType(t *testing.T) {
	t.Parallel()

	spec := twoBinSpec()
	spec.Channels[0].Samples[0].Modifiers[0].Type = "lumi"
	_, err := NewConfig(spec)
	if !errors.Is(err, ErrInvalidModifier) {
		t.Fatalf("err = %v, want ErrInvalidModifier", err)
	}
}

func TestConfigBadModifierPayload(t *testing.T) {
	t.Parallel()

	// Structurally fine, but a scale factor of zero is meaningless and
	// the modifier constructor rejects it.
	spec := twoBinSpec()
	spec.Channels[0].Samples[0].Modifiers = append(spec.Channels[0].Samples[0].Modifiers,
		workspace.ModifierDef{
			Name: "acceptance",
			Type: workspace.TypeNormSys,
			Data: workspace.ModifierData{HiLo: &workspace.HiLo{Hi: 1.1, Lo: 0}},
		})
	_, err := NewConfig(spec)
	if !errors.Is(err, ErrInvalidModifier) {
		t.Fatalf("err = %v, want ErrInvalidModifier", err)
	}
}
