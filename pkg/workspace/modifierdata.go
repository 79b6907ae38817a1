package workspace

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// HiLo is the up/down scale pair of a normsys modifier.
type HiLo struct {
	Hi float64 `json:"hi"`
	Lo float64 `json:"lo"`
}

// HiLoData is the up/down histogram pair of a histosys modifier.
type HiLoData struct {
	HiData []float64 `json:"hi_data"`
	LoData []float64 `json:"lo_data"`
}

// ModifierData is the type-dependent payload of a modifier definition. In
// the JSON it is one of: null (normfactor, shapefactor), an object with
// hi/lo scalars (normsys), an object with hi_data/lo_data histograms
// (histosys), or a flat array of per-bin uncertainties (shapesys,
// staterror). Exactly one arm is populated after decoding.
type ModifierData struct {
	HiLo     *HiLo
	HiLoData *HiLoData
	Floats   []float64
}

// IsEmpty reports whether no arm is populated.
func (d *ModifierData) IsEmpty() bool {
	return d.HiLo == nil && d.HiLoData == nil && d.Floats == nil
}

func (d *ModifierData) UnmarshalJSON(b []byte) error {
	if d == nil {
		return fmt.Errorf("modifier data: nil receiver")
	}
	*d = ModifierData{}
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	switch b[0] {
	case '[':
		var fs []float64
		if err := json.Unmarshal(b, &fs); err != nil {
			return fmt.Errorf("modifier data: %w", err)
		}
		d.Floats = fs
		return nil
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(b, &probe); err != nil {
			return fmt.Errorf("modifier data: %w", err)
		}
		if _, ok := probe["hi_data"]; ok {
			var hld HiLoData
			if err := json.Unmarshal(b, &hld); err != nil {
				return fmt.Errorf("modifier data: %w", err)
			}
			d.HiLoData = &hld
			return nil
		}
		if _, ok := probe["hi"]; ok {
			var hl HiLo
			if err := json.Unmarshal(b, &hl); err != nil {
				return fmt.Errorf("modifier data: %w", err)
			}
			d.HiLo = &hl
			return nil
		}
		return fmt.Errorf("modifier data: object needs hi/lo or hi_data/lo_data")
	default:
		return fmt.Errorf("modifier data: expected null, object, or array")
	}
}

func (d ModifierData) MarshalJSON() ([]byte, error) {
	switch {
	case d.HiLo != nil:
		return json.Marshal(d.HiLo)
	case d.HiLoData != nil:
		return json.Marshal(d.HiLoData)
	case d.Floats != nil:
		return json.Marshal(d.Floats)
	default:
		return []byte("null"), nil
	}
}
