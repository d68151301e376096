package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JaimeRLA/CorrelationGame/internal/api"
	"github.com/JaimeRLA/CorrelationGame/internal/config"
	"github.com/JaimeRLA/CorrelationGame/internal/factory"
	"github.com/JaimeRLA/CorrelationGame/internal/logging"
	"github.com/JaimeRLA/CorrelationGame/internal/services/auth"
	"github.com/JaimeRLA/CorrelationGame/internal/services/credentials"
	redisstorage "github.com/JaimeRLA/CorrelationGame/internal/storage/redis"
	"github.com/JaimeRLA/CorrelationGame/internal/storage/sqlstore"
)

func main() {
	cfg := &config.Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func newCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "corrgame-server",
		Short:         "Daily word-chain trivia server",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	config.RegisterFlags(cmd, cfg)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}

func factoryConfig(cfg *config.Config, logger *slog.Logger) factory.Config {
	authCfg := auth.DefaultConfig()
	authCfg.Secret = cfg.JWTSecret
	authCfg.SessionTTL = cfg.SessionTTL
	authCfg.LoginDomain = cfg.LoginDomain

	credCfg := credentials.DefaultConfig()
	credCfg.AllowRegistration = cfg.AllowRegistration

	fc := factory.Config{
		AuthConfig:        authCfg,
		CredentialsConfig: &credCfg,
		ChainsPath:        cfg.Chains,
		LeaderboardSize:   cfg.LeaderboardSize,
		Logger:            logger,
		StorageType:       cfg.Storage,
	}

	switch cfg.Storage {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		fc.RedisConfig = &redisCfg
	case factory.StorageTypeSQL:
		sqlCfg := sqlstore.DefaultConfig()
		sqlCfg.Driver = cfg.SQLDriver
		sqlCfg.DSN = cfg.SQLDSN
		fc.SQLConfig = &sqlCfg
	}

	return fc
}

func run(parent context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	app, err := factory.New(factoryConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("storage close error", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		DailyService:       app.DailyService,
		ScoringService:     app.ScoringService,
		LeaderboardService: app.LeaderboardService,
		ChainService:       app.ChainService,
		Hub:                app.Hub,
		LeaderboardSize:    app.LeaderboardSize,
		StorageName:        app.StorageName,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Bind
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go app.Run(ctx)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", app.StorageName))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
