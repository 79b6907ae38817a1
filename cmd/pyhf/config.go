package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the pyhf configuration file (~/.config/pyhf/config.yaml).
// Numeric fields are pointers so we can distinguish "not set" from zero
// values.
type Config struct {
	// Fit defaults
	TestPOI       *float64 `yaml:"test_poi"`
	MaxIterations *int     `yaml:"max_iterations"`
	Tolerance     *float64 `yaml:"tolerance"`

	// Model
	Backend string `yaml:"backend"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

const starterConfig = `# pyhf configuration. Flags override these values.

# test_poi: 1.0
# max_iterations: 1000
# tolerance: 1.0e-4

# backend: graph

# log_level: info
# log_format: pretty

# server_address: 127.0.0.1:8080
`

func configPath() string {
	if configFile != "" {
		return configFile
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pyhf", "config.yaml")
}

// applyFitConfig applies config file defaults to the shared analysis flags
// when the corresponding CLI flag was not explicitly set.
func applyFitConfig(c *cli.Command, cfg Config) {
	if cfg.Backend != "" && !c.IsSet("backend") {
		backendName = cfg.Backend
	}
	if cfg.MaxIterations != nil && !c.IsSet("max-iterations") {
		maxIterations = *cfg.MaxIterations
	}
	if cfg.Tolerance != nil && !c.IsSet("tolerance") {
		tolerance = *cfg.Tolerance
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	applyFitConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or initialize the configuration file",
		Flags: configFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			return showConfig()
		},
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the resolved configuration",
				Flags: configFlags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					return showConfig()
				},
			},
			{
				Name:  "init",
				Usage: "Write a commented starter configuration file",
				Flags: configFlags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					path := configPath()
					if path == "" {
						return cli.Exit("error: cannot determine config path", 1)
					}
					if _, err := os.Stat(path); err == nil {
						return cli.Exit(fmt.Sprintf("error: %s already exists", path), 1)
					}
					if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
						return cli.Exit(fmt.Sprintf("error: %v", err), 1)
					}
					if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
						return cli.Exit(fmt.Sprintf("error: %v", err), 1)
					}
					fmt.Printf("wrote %s\n", path)
					return nil
				},
			},
		},
	}
}

func showConfig() error {
	path := configPath()
	fmt.Printf("# %s\n", path)
	out, err := yaml.Marshal(LoadConfig())
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	fmt.Print(string(out))
	return nil
}
