package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"freeze_dryer/internal/config"
	"freeze_dryer/internal/handlers"
	"freeze_dryer/internal/logger"
	"freeze_dryer/internal/repository"
	"freeze_dryer/internal/repository/db"
	"freeze_dryer/internal/server"
	"freeze_dryer/internal/service"
)

const shutdownTimeout = 10 * time.Second

type serveFlags struct {
	connect bool
}

func (sf *serveFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&sf.connect, "connect", false, "Connect device.default on startup")
}

func serveCmd(rf *rootFlags) *cobra.Command {
	var sf serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rf, &sf)
		},
	}
	sf.register(cmd)
	return cmd
}

func runServe(ctx context.Context, rf *rootFlags, sf *serveFlags) error {
	cfg, log, err := rf.load()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sqlDB, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Errorw("failed to init sqlite", "path", cfg.DBPath, "err", err)
		return err
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, service.Deps{
		Devices: service.NewDeviceFactory(deviceConfig(cfg), log),
		Auth:    service.AuthConfig{SigningKey: cfg.SigningKey, TokenTTL: cfg.TokenTTL},
		Log:     log,
	})

	seedRecipes(ctx, services, cfg.RecipesFile, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sf.connect {
		if err := services.Dryer.Connect(ctx, cfg.DefaultDevice); err != nil {
			log.Warnw("startup_connect_failed", "kind", cfg.DefaultDevice, "err", err)
		}
	}

	srv := server.New(cfg.Port, handlers.NewHandler(services, log.Named("http")).InitRoutes())
	errc := make(chan error, 1)
	go func() { errc <- srv.Run() }()
	log.Infow("server_started", "addr", srv.Addr(), "db", cfg.DBPath)

	select {
	case err = <-errc:
		if err != nil {
			log.Errorw("server_failed", "err", err)
		}
	case <-ctx.Done():
		log.Infow("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Errorw("server forced to shutdown", "err", serr)
		err = errors.Join(err, serr)
	}
	if derr := services.Dryer.Close(shutdownCtx); derr != nil {
		log.Warnw("device_close_failed", "err", derr)
	}
	return err
}

func deviceConfig(cfg config.Config) service.DeviceConfig {
	return service.DeviceConfig{
		SerialPort:      cfg.SerialPort,
		BaudRate:        cfg.BaudRate,
		LineAssembly:    cfg.LineAssembly,
		SimTick:         cfg.SimTick,
		SimConnectDelay: cfg.SimConnectDelay,
		SimFinishDelay:  cfg.SimFinishDelay,
	}
}

// seedRecipes stores built-in and file recipes. Failures are logged, the service still starts.
func seedRecipes(ctx context.Context, services *service.Service, path string, log *logger.Logger) {
	extra, err := config.LoadRecipes(path)
	if err != nil {
		log.Warnw("recipes_file_skipped", "path", path, "err", err)
	}
	if err := services.Recipes.EnsureDefaults(ctx, extra); err != nil {
		log.Errorw("recipe_seed_failed", "err", err)
	}
}
