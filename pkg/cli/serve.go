package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/stagehand-hq/stagehand/pkg/cli/config"
	httpctrl "github.com/stagehand-hq/stagehand/pkg/controller/http"
	"github.com/stagehand-hq/stagehand/pkg/service/executor"
	"github.com/stagehand-hq/stagehand/pkg/service/notify"
	"github.com/stagehand-hq/stagehand/pkg/service/preview"
	"github.com/stagehand-hq/stagehand/pkg/usecase"
	"github.com/stagehand-hq/stagehand/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var configPath string
	var repoCfg config.Repository
	var slackCfg config.Slack
	var geminiCfg config.Gemini
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("STAGEHAND_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to the operation catalog TOML file",
			Sources:     cli.EnvVars("STAGEHAND_CONFIG"),
			Destination: &configPath,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := sentryCfg.Configure(version); err != nil {
				return goerr.Wrap(err, "failed to configure sentry")
			}

			// Initialize action store based on backend type
			store, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize action store")
			}
			defer func() {
				if err := store.Close(); err != nil {
					logging.Default().Error("failed to close action store", "error", err.Error())
				}
			}()

			ucOpts := []usecase.Option{}

			// Load the operation catalog if configured
			var appCfg *config.AppConfig
			if configPath != "" {
				appCfg, err = config.LoadAppConfiguration(configPath)
				if err != nil {
					return goerr.Wrap(err, "failed to load configuration")
				}
				confirmCfg, err := appCfg.ToConfirmConfig()
				if err != nil {
					return goerr.Wrap(err, "failed to compile TTL policy")
				}
				ucOpts = append(ucOpts,
					usecase.WithCatalog(appCfg.ToCatalog()),
					usecase.WithConfirmConfig(confirmCfg),
				)
				logging.Default().Info("Operation catalog loaded",
					"path", configPath, "operations", len(appCfg.Operations))
			} else {
				logging.Default().Warn("No operation catalog configured, any operation can be staged")
			}

			// Assemble the executor registry
			registry := executor.NewRegistry()
			if appCfg != nil {
				for operation, endpoint := range appCfg.WebhookEndpoints() {
					hook, err := executor.NewWebhook(endpoint)
					if err != nil {
						return goerr.Wrap(err, "failed to build webhook executor",
							goerr.V("operation", operation))
					}
					if err := registry.Register(operation, hook); err != nil {
						return goerr.Wrap(err, "failed to register webhook executor",
							goerr.V("operation", operation))
					}
				}
			}
			if slackCfg.BotToken() != "" {
				post, err := executor.NewSlackPost(slackCfg.BotToken())
				if err != nil {
					return goerr.Wrap(err, "failed to build slack post executor")
				}
				if err := registry.Register("post_message", post); err != nil {
					return goerr.Wrap(err, "failed to register slack post executor")
				}
			}
			ucOpts = append(ucOpts, usecase.WithRegistry(registry))
			logging.Default().Info("Executor registry assembled", "operations", registry.Operations())

			// Preview renderer: LLM when Gemini is configured, templates as
			// the fallback path
			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}
			if llmClient != nil {
				ucOpts = append(ucOpts, usecase.WithPreviewRenderer(preview.NewLLM(llmClient)))
				logging.Default().Info("LLM preview rendering enabled")
			} else if appCfg != nil {
				templates := appCfg.PreviewTemplates()
				if len(templates) > 0 {
					renderer, err := preview.NewTemplate(templates)
					if err != nil {
						return goerr.Wrap(err, "failed to compile preview templates")
					}
					ucOpts = append(ucOpts, usecase.WithPreviewRenderer(renderer))
					logging.Default().Info("Template preview rendering enabled", "templates", len(templates))
				}
			}

			// Slack approval notifications
			if slackCfg.IsNotifierConfigured() {
				notifier, err := notify.NewSlack(slackCfg.BotToken(), slackCfg.ChannelID())
				if err != nil {
					return goerr.Wrap(err, "failed to configure slack notifier")
				}
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
				logging.Default().Info("Slack approval notifications enabled", "channel", slackCfg.ChannelID())
			}

			uc := usecase.New(store, ucOpts...)

			httpOpts := []httpctrl.Options{}
			if slackCfg.IsWebhookConfigured() {
				httpOpts = append(httpOpts, httpctrl.WithSlackInteraction(slackCfg.SigningSecret()))
				logging.Default().Info("Slack interaction webhook enabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
