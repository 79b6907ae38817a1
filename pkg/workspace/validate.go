package workspace

import "fmt"

// Validate checks the structural integrity of the spec: non-empty channels
// and samples, consistent bin counts within a channel, and modifier data
// matching the arity its type requires. Semantic checks (name sharing,
// parameter-of-interest rules) happen at model build time.
func (s *Spec) Validate() error {
	if len(s.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidSpec)
	}
	for _, c := range s.Channels {
		if err := c.validate(); err != nil {
			return err
		}
	}
	for _, o := range s.Observations {
		ch, err := s.Channel(o.Name)
		if err != nil {
			return fmt.Errorf("%w: observation %q has no matching channel", ErrInvalidSpec, o.Name)
		}
		if len(o.Data) != ch.NBins() {
			return fmt.Errorf("%w: observation %q has %d bins, channel has %d",
				ErrInvalidSpec, o.Name, len(o.Data), ch.NBins())
		}
	}
	return nil
}

func (c *Channel) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: channel without name", ErrInvalidSpec)
	}
	if len(c.Samples) == 0 {
		return fmt.Errorf("%w: channel %q has no samples", ErrInvalidSpec, c.Name)
	}
	nbins := len(c.Samples[0].Data)
	for _, smp := range c.Samples {
		if smp.Name == "" {
			return fmt.Errorf("%w: channel %q has a sample without name", ErrInvalidSpec, c.Name)
		}
		if len(smp.Data) == 0 {
			return fmt.Errorf("%w: sample %q in channel %q has no bins",
				ErrInvalidSpec, smp.Name, c.Name)
		}
		if len(smp.Data) != nbins {
			return fmt.Errorf("%w: sample %q in channel %q has %d bins, expected %d",
				ErrInvalidSpec, smp.Name, c.Name, len(smp.Data), nbins)
		}
		for _, m := range smp.Modifiers {
			if err := validateModifier(&m, c.Name, smp.Name, nbins); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateModifier(m *ModifierDef, channel, sample string, nbins int) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: modifier %q (%s) on %s/%s: %s",
			ErrInvalidSpec, m.Name, m.Type, channel, sample, fmt.Sprintf(format, args...))
	}
	if m.Name == "" {
		return fmt.Errorf("%w: unnamed modifier on %s/%s", ErrInvalidSpec, channel, sample)
	}
	switch m.Type {
	case TypeNormFactor, TypeShapeFactor:
		if !m.Data.IsEmpty() {
			return fail("expects null data")
		}
	case TypeNormSys:
		if m.Data.HiLo == nil {
			return fail("expects hi/lo data")
		}
	case TypeHistoSys:
		hld := m.Data.HiLoData
		if hld == nil {
			return fail("expects hi_data/lo_data histograms")
		}
		if len(hld.HiData) != nbins || len(hld.LoData) != nbins {
			return fail("histograms have %d/%d bins, expected %d",
				len(hld.HiData), len(hld.LoData), nbins)
		}
	case TypeShapeSys, TypeStatError:
		if m.Data.Floats == nil {
			return fail("expects per-bin uncertainties")
		}
		if len(m.Data.Floats) != nbins {
			return fail("has %d uncertainties, expected %d", len(m.Data.Floats), nbins)
		}
	case "":
		return fmt.Errorf("%w: modifier %q on %s/%s has no type",
			ErrInvalidSpec, m.Name, channel, sample)
	default:
		// unknown types are rejected later by the model builder, which
		// owns the registry
	}
	return nil
}
