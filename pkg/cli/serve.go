package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/modsec-lab/aegis/pkg/cli/config"
	httpctrl "github.com/modsec-lab/aegis/pkg/controller/http"
	"github.com/modsec-lab/aegis/pkg/registry"
	"github.com/modsec-lab/aegis/pkg/service/normalizer"
	slacksvc "github.com/modsec-lab/aegis/pkg/service/slack"
	"github.com/modsec-lab/aegis/pkg/usecase"
	"github.com/modsec-lab/aegis/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var slackCfg config.Slack
	var perspectiveCfg config.Perspective

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("AEGIS_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, perspectiveCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the moderation bot HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := slackCfg.Validate(); err != nil {
				return goerr.Wrap(err, "invalid slack configuration")
			}

			if err := appCfg.Load(); err != nil {
				return goerr.Wrap(err, "failed to load moderation policy")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			chat, err := slacksvc.New(slackCfg.BotToken())
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack service")
			}

			oracle, err := perspectiveCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize perspective client")
			}

			reg := registry.New(oracle, normalizer.New(), appCfg.ThresholdConfig())

			coordinator := usecase.New(chat, repo, reg, slackCfg.ModChannelID(),
				usecase.WithBannedOrgs(appCfg.BannedOrgs),
				usecase.WithCategories(appCfg.CategoryOptions()),
			)

			handler := httpctrl.NewSlackEventHandler(coordinator, slackCfg.BotUserID())
			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(handler, slackCfg.SigningSecret()),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(sigCtx)

			g.Go(func() error {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"mod_channel", slackCfg.ModChannelID(),
					"threshold", appCfg.Threshold,
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})

			g.Go(func() error {
				<-gctx.Done()
				logging.Default().Info("Shutting down")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := g.Wait(); err != nil {
				return err
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
