package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/fkrieter/pyhf/pkg/infer"
)

func clsCmd() *cli.Command {
	var testPOI float64

	return &cli.Command{
		Name:      "cls",
		Usage:     "Compute observed and expected CLs values for a workspace",
		ArgsUsage: "[workspace.json]",
		Flags: append(analysisFlags(),
			&cli.Float64Flag{
				Name:        "test-poi",
				Usage:       "signal strength hypothesis to test",
				Value:       1.0,
				Destination: &testPOI,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := LoadConfig()
			applyFitConfig(c, cfg)
			if cfg.TestPOI != nil && !c.IsSet("test-poi") {
				testPOI = *cfg.TestPOI
			}
			log := buildLogger()

			spec, err := loadWorkspace(c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			m, err := buildModel(spec)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: build model: %v", err), 1)
			}
			data, err := observedData(spec, m)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			log.Debug("hypothesis test", "poi", m.Config().POIName(), "test_poi", testPOI)
			res, err := infer.HypoTest(m, testPOI, data,
				infer.WithOptimizer(newtonFromFlags(log)),
				infer.WithExpectedSet(),
			)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: hypotest: %v", err), 1)
			}

			out := struct {
				CLsExp []float64 `json:"CLs_exp"`
				CLsObs float64   `json:"CLs_obs"`
			}{CLsExp: res.Expected, CLsObs: res.CLs}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "    ")
			return enc.Encode(out)
		},
	}
}
