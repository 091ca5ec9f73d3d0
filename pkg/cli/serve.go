package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/riskpilot/pkg/cli/config"
	httpctrl "github.com/secmon-lab/riskpilot/pkg/controller/http"
	"github.com/secmon-lab/riskpilot/pkg/service/worker"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
	"github.com/secmon-lab/riskpilot/pkg/utils/async"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var staticDir string
	var sweepInterval time.Duration
	var repoCfg config.Repository
	var authCfg config.Auth
	var aiCfg config.AI
	var cryptoCfg config.Crypto
	var slackCfg config.Slack
	var storageCfg config.Storage

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RISKPILOT_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL for the application (e.g., https://your-domain.com), used in notification links",
			Sources:     cli.EnvVars("RISKPILOT_BASE_URL"),
			Destination: &baseURL,
		},
		&cli.StringFlag{
			Name:        "static-dir",
			Usage:       "Directory with the built web frontend, served for non-API paths",
			Sources:     cli.EnvVars("RISKPILOT_STATIC_DIR"),
			Destination: &staticDir,
		},
		&cli.DurationFlag{
			Name:        "token-sweep-interval",
			Usage:       "Interval for deleting expired sessions",
			Value:       time.Hour,
			Sources:     cli.EnvVars("RISKPILOT_TOKEN_SWEEP_INTERVAL"),
			Destination: &sweepInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, aiCfg.Flags()...)
	flags = append(flags, cryptoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			authUC, err := authCfg.Configure(repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authCfg.IsNoAuthMode() {
				logger.Warn("Running in no-auth mode (development only)", "auth", authCfg)
			} else {
				logger.Info("Firebase authentication enabled", "auth", authCfg)
			}

			factory, err := aiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure AI gateway")
			}
			logger.LogAttrs(ctx, slog.LevelInfo, "AI gateway configured", aiCfg.LogAttrs()...)

			keys, err := cryptoCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure encryption")
			}

			ucOpts := []usecase.Option{
				usecase.WithAuth(authUC),
				usecase.WithLLMFactory(factory),
				usecase.WithKeyring(keys),
			}

			notifier, err := slackCfg.Configure(baseURL)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Slack notifications")
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
				logger.Info("Slack notifications enabled", "slack", slackCfg)
			} else {
				logger.Info("Slack notifications disabled")
			}

			archiver, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure report archive")
			}
			if archiver != nil {
				defer func() {
					if err := archiver.Close(); err != nil {
						logger.Error("failed to close report archive", "error", err.Error())
					}
				}()
				ucOpts = append(ucOpts, usecase.WithArchiver(archiver))
				logger.Info("Report archive enabled", "storage", storageCfg)
			}

			pdfFont, err := storageCfg.PDFFont()
			if err != nil {
				return err
			}
			if pdfFont == "" {
				logger.Warn("--pdf-font is not set, PDF reports only render Latin-1 text")
			}
			ucOpts = append(ucOpts, usecase.WithPDFFont(pdfFont))

			uc := usecase.New(repo, ucOpts...)

			sweeper := worker.NewTokenSweepWorker(repo, sweepInterval)
			if err := sweeper.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start token sweep worker")
			}

			var httpOpts []httpctrl.Options
			if staticDir != "" {
				if _, err := os.Stat(staticDir); err != nil {
					return goerr.Wrap(err, "static directory is not readable", goerr.V("dir", staticDir))
				}
				httpOpts = append(httpOpts, httpctrl.WithStaticFS(os.DirFS(staticDir)))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr, "base_url", baseURL)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				sweeper.Stop()
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				sweeper.Stop()

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				// Let pending notifications finish
				if err := async.Wait(shutdownCtx); err != nil {
					logger.Warn("background tasks did not finish before shutdown", "error", err.Error())
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
