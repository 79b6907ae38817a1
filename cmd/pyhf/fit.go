package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/fkrieter/pyhf/pkg/optimize"
)

func fitCmd() *cli.Command {
	var poiValue float64

	return &cli.Command{
		Name:      "fit",
		Usage:     "Maximum likelihood fit of a workspace to its observations",
		ArgsUsage: "[workspace.json]",
		Flags: append(analysisFlags(),
			&cli.Float64Flag{
				Name:        "poi-value",
				Usage:       "pin the parameter of interest to this value during the fit",
				Destination: &poiValue,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			applyFitConfig(c, LoadConfig())
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

			opt := newtonFromFlags(log)
			var res *optimize.Result
			if c.IsSet("poi-value") {
				res, err = opt.ConstrainedBestFit(m, poiValue, data)
			} else {
				res, err = opt.UnconstrainedBestFit(m, data)
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: fit: %v", err), 1)
			}

			type fitParameter struct {
				Name  string  `json:"name"`
				Value float64 `json:"value"`
			}
			out := struct {
				Parameters []fitParameter `json:"parameters"`
				TwiceNLL   float64        `json:"twice_nll"`
				Iterations int            `json:"iterations"`
				Converged  bool           `json:"converged"`
			}{
				TwiceNLL:   res.Objective,
				Iterations: res.Iterations,
				Converged:  res.Converged,
			}
			names := m.Config().ParNames()
			for i, v := range res.X {
				out.Parameters = append(out.Parameters, fitParameter{Name: names[i], Value: v})
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "    ")
			return enc.Encode(out)
		},
	}
}
