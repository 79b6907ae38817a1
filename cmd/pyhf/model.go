package main

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/fkrieter/pyhf/pkg/pdf"
	"github.com/fkrieter/pyhf/pkg/tensor"
	"github.com/fkrieter/pyhf/pkg/tensor/graph"
	"github.com/fkrieter/pyhf/pkg/workspace"
)

// loadWorkspace reads the workspace named by the first positional argument,
// falling back to the --workspace flag (and so to stdin).
func loadWorkspace(c *cli.Command) (*workspace.Spec, error) {
	path := workspacePath
	if arg := c.Args().First(); arg != "" {
		path = arg
	}
	return workspace.LoadFile(path)
}

func backendFromFlags() (tensor.Backend, error) {
	name, err := tensor.Normalize(backendName)
	if err != nil {
		return nil, err
	}
	switch name {
	case tensor.Graph:
		return graph.New(), nil
	default:
		return nil, fmt.Errorf("backend %q is not built in", name)
	}
}

// buildModel turns a workspace into a Model, resolving the parameter of
// interest from the --poi flag or the workspace's first measurement.
func buildModel(spec *workspace.Spec) (*pdf.Model, error) {
	b, err := backendFromFlags()
	if err != nil {
		return nil, err
	}
	opts := []pdf.Option{pdf.WithBackend(b)}
	poi := poiName
	if poi == "" && len(spec.Measurements) > 0 {
		poi = spec.Measurements[0].Config.POI
	}
	if poi != "" {
		opts = append(opts, pdf.WithPOI(poi))
	}
	if qualifyNames {
		opts = append(opts, pdf.WithQualifiedNames())
	}
	return pdf.New(spec, opts...)
}

// observedData assembles the full dataset (actual counts then auxiliary
// observations) from the workspace's recorded observations.
func observedData(spec *workspace.Spec, m *pdf.Model) ([]float64, error) {
	actual := make([]float64, 0, m.NActualBins())
	for _, name := range m.Config().Channels() {
		obs, ok := spec.Observation(name)
		if !ok {
			return nil, fmt.Errorf("workspace has no observation for channel %q", name)
		}
		actual = append(actual, obs...)
	}
	return m.ObservedData(actual), nil
}
