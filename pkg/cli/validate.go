package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/cli/config"
	"github.com/modsec-lab/aegis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the moderation policy configuration file",
		Flags:   appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Load(); err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logger := logging.Default()
			logger.Info("Configuration validation passed",
				"categories", len(appCfg.CategoryOptions()),
				"banned_orgs", len(appCfg.BannedOrgs),
				"threshold", appCfg.Threshold,
			)
			return nil
		},
	}
}
