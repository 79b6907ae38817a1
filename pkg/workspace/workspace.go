// Package workspace defines the HistFactory JSON workspace format: channels
// of binned samples, each sample carrying the modifiers that deform it.
//
// A Spec describes structure and data only; the statistical interpretation
// lives in pkg/pdf.
package workspace

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
)

// Modifier type names understood by the model builder.
const (
	TypeNormFactor  = "normfactor"
	TypeShapeFactor = "shapefactor"
	TypeNormSys     = "normsys"
	TypeHistoSys    = "histosys"
	TypeShapeSys    = "shapesys"
	TypeStatError   = "staterror"
)

// Spec is a full HistFactory workspace specification.
type Spec struct {
	Channels     []Channel     `json:"channels"`
	Observations []Observation `json:"observations,omitempty"`
	Measurements []Measurement `json:"measurements,omitempty"`
}

// Channel is a named region with one or more samples binned identically.
type Channel struct {
	Name    string   `json:"name"`
	Samples []Sample `json:"samples"`
}

// Sample holds nominal per-bin event rates and the modifiers acting on them.
type Sample struct {
	Name      string        `json:"name"`
	Data      []float64     `json:"data"`
	Modifiers []ModifierDef `json:"modifiers"`
}

// ModifierDef declares one modifier attachment: a name shared across
// attachments of the same parameter, a type, and type-dependent data.
type ModifierDef struct {
	Name string       `json:"name"`
	Type string       `json:"type"`
	Data ModifierData `json:"data"`
}

// Observation is the recorded per-bin event counts for one channel.
type Observation struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// Measurement names a parameter of interest for a fit.
type Measurement struct {
	Name   string            `json:"name"`
	Config MeasurementConfig `json:"config"`
}

type MeasurementConfig struct {
	POI string `json:"poi"`
}

// Load decodes and validates a workspace from r.
func Load(r io.Reader) (*Spec, error) {
	var spec Spec
	dec := json.NewDecoder(r)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode workspace: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// LoadFile reads a workspace from path, or from stdin when path is "-".
func LoadFile(path string) (*Spec, error) {
	if path == "-" {
		return Load(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// ChannelNames returns channel names in declaration order.
func (s *Spec) ChannelNames() []string {
	names := make([]string, len(s.Channels))
	for i, c := range s.Channels {
		names[i] = c.Name
	}
	return names
}

// Channel returns the named channel.
func (s *Spec) Channel(name string) (*Channel, error) {
	for i := range s.Channels {
		if s.Channels[i].Name == name {
			return &s.Channels[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoChannel, name)
}

// Observation returns the observed counts for the named channel, if present.
func (s *Spec) Observation(name string) ([]float64, bool) {
	for _, o := range s.Observations {
		if o.Name == name {
			return o.Data, true
		}
	}
	return nil, false
}

// NBins returns the common bin count of the channel's samples.
func (c *Channel) NBins() int {
	if len(c.Samples) == 0 {
		return 0
	}
	return len(c.Samples[0].Data)
}
