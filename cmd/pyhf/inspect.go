package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize the channels, samples and parameters of a workspace",
		ArgsUsage: "[workspace.json]",
		Flags:     append(workspaceFlags(), append(modelFlags(), append(loggingFlags(), configFlags()...)...)...),
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
			cfg := m.Config()
			log.Debug("workspace loaded", "channels", len(cfg.Channels()), "parameters", cfg.NParams())

			section("Workspace")
			rowInt("channels", len(cfg.Channels()))
			rowInt("samples", len(cfg.Samples()))
			rowInt("parameters", len(cfg.ParOrder()))
			rowInt("model_parameters", cfg.NParams())
			rowInt("auxiliary_data", len(cfg.AuxData()))
			row("poi", cfg.POIName())

			section("Channels")
			bins := m.ChannelBins()
			for i, name := range cfg.Channels() {
				ch, err := spec.Channel(name)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				row(name, fmt.Sprintf("%d bins, %d samples", bins[i], len(ch.Samples)))
			}

			section("Parameters")
			for _, name := range cfg.ParOrder() {
				mod, ok := cfg.Modifier(name)
				if !ok {
					continue
				}
				constraint := mod.PDFType()
				if constraint == "" {
					constraint = "unconstrained"
				}
				sl, _ := cfg.ParSlice(name)
				row(name, fmt.Sprintf("%-13s %s  pars=[%d:%d]", constraint, mod.Type(), sl[0], sl[1]))
			}

			if len(spec.Measurements) > 0 {
				section("Measurements")
				for _, meas := range spec.Measurements {
					row(meas.Name, fmt.Sprintf("poi=%s", meas.Config.POI))
				}
			}

			return nil
		},
	}
}

func section(title string) {
	line := strings.Repeat("-", len(title)+8)
	fmt.Printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}

func row(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-24s %s\n", label+":", value)
}

func rowInt(label string, v int) {
	if v == 0 {
		return
	}
	row(label, fmt.Sprintf("%d", v))
}
