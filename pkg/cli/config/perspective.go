package config

import (
	"log/slog"

	"github.com/modsec-lab/aegis/pkg/service/perspective"
	"github.com/urfave/cli/v3"
)

// Perspective holds CLI flags for the toxicity scoring service
type Perspective struct {
	apiKey  string
	baseURL string
}

func (x *Perspective) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "perspective-api-key",
			Usage:       "Perspective API key",
			Category:    "Perspective",
			Sources:     cli.EnvVars("AEGIS_PERSPECTIVE_API_KEY"),
			Destination: &x.apiKey,
		},
		&cli.StringFlag{
			Name:        "perspective-base-url",
			Usage:       "Perspective API base URL override",
			Category:    "Perspective",
			Sources:     cli.EnvVars("AEGIS_PERSPECTIVE_BASE_URL"),
			Destination: &x.baseURL,
		},
	}
}

func (x Perspective) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("api-key.len", len(x.apiKey)),
		slog.String("base-url", x.baseURL),
	)
}

// Configure builds the scoring client
func (x *Perspective) Configure() (*perspective.Client, error) {
	var opts []perspective.Option
	if x.baseURL != "" {
		opts = append(opts, perspective.WithBaseURL(x.baseURL))
	}
	return perspective.New(x.apiKey, opts...)
}
