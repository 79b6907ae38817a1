package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/fkrieter/pyhf/internal/logger"
	"github.com/fkrieter/pyhf/pkg/optimize"
)

var (
	workspacePath string
	poiName       string
	qualifyNames  bool
	backendName   string
	maxIterations int
	tolerance     float64
	logLevel      string
	logFormat     string
	debug         bool
	configFile    string
)

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to the configuration file",
			Destination: &configFile,
		},
	}
}

func workspaceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "workspace",
			Aliases:     []string{"w"},
			Usage:       "path to a HistFactory workspace JSON file (- for stdin)",
			Value:       "-",
			Destination: &workspacePath,
		},
	}
}

func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "poi",
			Usage:       "parameter of interest (defaults to the first measurement's poi)",
			Destination: &poiName,
		},
		&cli.BoolFlag{
			Name:        "qualify-names",
			Usage:       "prefix parameter names with their modifier type",
			Destination: &qualifyNames,
		},
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "tensor backend (auto, graph)",
			Value:       "auto",
			Destination: &backendName,
		},
	}
}

func fitFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "max-iterations",
			Usage:       "cap on Newton steps per fit",
			Value:       optimize.DefaultMaxIterations,
			Destination: &maxIterations,
		},
		&cli.Float64Flag{
			Name:        "tolerance",
			Usage:       "per-parameter step size declaring convergence",
			Value:       optimize.DefaultTolerance,
			Destination: &tolerance,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// analysisFlags is the flag set shared by the fit and cls commands.
func analysisFlags() []cli.Flag {
	flags := workspaceFlags()
	flags = append(flags, modelFlags()...)
	flags = append(flags, fitFlags()...)
	flags = append(flags, loggingFlags()...)
	flags = append(flags, configFlags()...)
	return flags
}

// buildLogger constructs the command logger from the logging flags. Logs go
// to stderr so piped stdout stays clean JSON.
func buildLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}
	switch logFormat {
	case "json":
		return logger.JSON(os.Stderr, level)
	case "text":
		return logger.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	default:
		if stderrIsTTY() {
			return logger.Pretty(os.Stderr, level)
		}
		return logger.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
}

func newtonFromFlags(log logger.Logger) *optimize.Newton {
	return &optimize.Newton{
		MaxIterations: maxIterations,
		Tolerance:     tolerance,
		Log:           log,
	}
}
