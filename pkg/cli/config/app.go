package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"github.com/modsec-lab/aegis/pkg/flow"
	"github.com/modsec-lab/aegis/pkg/registry"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// AppConfig is the moderation policy configuration, loaded from a TOML file.
// Everything has a built-in default so the file is optional.
type AppConfig struct {
	path string

	Threshold  Threshold  `toml:"threshold"`
	BannedOrgs []string   `toml:"banned_orgs"`
	Categories []Category `toml:"category"`
}

// Threshold configures the adaptive auto-flag threshold
type Threshold struct {
	Initial float64 `toml:"initial"`
	Alpha   float64 `toml:"alpha"`
	Floor   float64 `toml:"floor"`
}

// Validate checks if the Threshold is valid
func (t *Threshold) Validate() error {
	if t.Initial <= 0 || t.Initial > 1 {
		return goerr.New("threshold initial must be in (0, 1]", goerr.V("initial", t.Initial))
	}
	if t.Alpha <= 0 || t.Alpha >= 1 {
		return goerr.New("threshold alpha must be in (0, 1)", goerr.V("alpha", t.Alpha))
	}
	if t.Floor <= 0 || t.Floor > t.Initial {
		return goerr.New("threshold floor must be in (0, initial]",
			goerr.V("floor", t.Floor), goerr.V("initial", t.Initial))
	}
	return nil
}

// Category binds an option letter to a harm category and its priority weight
type Category struct {
	Key    string `toml:"key"`
	Name   string `toml:"name"`
	Weight int    `toml:"weight"`
}

// Validate checks if the Category is valid
func (c *Category) Validate() error {
	if len(c.Key) != 1 || c.Key[0] < 'A' || c.Key[0] > 'Z' {
		return goerr.New("category key must be a single upper-case letter", goerr.V("key", c.Key))
	}
	if c.Name == "" {
		return goerr.New("category name is required", goerr.V("key", c.Key))
	}
	if c.Weight < 1 {
		return goerr.New("category weight must be at least 1", goerr.V("key", c.Key), goerr.V("weight", c.Weight))
	}
	return nil
}

func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to the moderation policy TOML file",
			Category:    "Policy",
			Sources:     cli.EnvVars("AEGIS_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Load reads and validates the configuration file. Without a path the
// built-in defaults are used.
func (a *AppConfig) Load() error {
	a.Threshold = Threshold{}
	a.BannedOrgs = nil
	a.Categories = nil

	if a.path != "" {
		data, err := os.ReadFile(a.path)
		if err != nil {
			return goerr.Wrap(err, "failed to read config file", goerr.V("path", a.path))
		}
		if err := toml.Unmarshal(data, a); err != nil {
			return goerr.Wrap(err, "failed to parse config file", goerr.V("path", a.path))
		}
	}

	defaults := registry.DefaultThresholdConfig()
	if a.Threshold == (Threshold{}) {
		a.Threshold = Threshold{
			Initial: defaults.Initial,
			Alpha:   defaults.Alpha,
			Floor:   defaults.Floor,
		}
	}

	return a.Validate()
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if err := a.Threshold.Validate(); err != nil {
		return goerr.Wrap(err, "invalid threshold")
	}

	keys := make(map[string]bool)
	names := make(map[string]bool)
	for _, cat := range a.Categories {
		if err := cat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category")
		}
		if keys[cat.Key] {
			return goerr.New("duplicate category key", goerr.V("key", cat.Key))
		}
		keys[cat.Key] = true
		if names[cat.Name] {
			return goerr.New("duplicate category name", goerr.V("name", cat.Name))
		}
		names[cat.Name] = true
	}

	return nil
}

// ThresholdConfig converts the threshold section for the registry
func (a *AppConfig) ThresholdConfig() registry.ThresholdConfig {
	return registry.ThresholdConfig{
		Initial: a.Threshold.Initial,
		Alpha:   a.Threshold.Alpha,
		Floor:   a.Threshold.Floor,
	}
}

// CategoryOptions converts the category section for the dialogues,
// falling back to the built-in category table when the file defines none.
func (a *AppConfig) CategoryOptions() []flow.CategoryOption {
	if len(a.Categories) == 0 {
		return flow.DefaultCategories()
	}
	options := make([]flow.CategoryOption, 0, len(a.Categories))
	for _, cat := range a.Categories {
		options = append(options, flow.CategoryOption{
			Key:      cat.Key,
			Category: types.Category(cat.Name),
			Weight:   cat.Weight,
		})
	}
	return options
}
