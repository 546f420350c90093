package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"freeze_dryer/internal/config"
	"freeze_dryer/internal/logger"
)

// @title                       Freeze Dryer API
// @version                     1.0
// @description                 Controls a freeze dryer over serial or a built-in simulator.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := rootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	var rf rootFlags
	var sf serveFlags

	cmd := &cobra.Command{
		Use:           "freeze-dryer",
		Short:         "Freeze-dryer controller service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &rf, &sf)
		},
	}

	cmd.PersistentFlags().StringVar(&rf.configPath, "config", "", "Config file (default configs/config.yml)")
	cmd.PersistentFlags().StringVar(&rf.logLevel, "log-level", "", "Override log.level")
	sf.register(cmd)

	cmd.AddCommand(serveCmd(&rf), portsCmd(), simulateCmd(&rf))
	return cmd
}

// load resolves the configuration and logger for a command.
func (rf *rootFlags) load() (config.Config, *logger.Logger, error) {
	cfg, err := config.Load(rf.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if rf.logLevel != "" {
		cfg.LogLevel = rf.logLevel
	}
	return cfg, logger.New(cfg.LogLevel), nil
}
