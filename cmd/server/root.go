package main

import (
	"fmt"
	"os"

	"github.com/jengzang/mobility-metrics-go/internal/analysis"
	"github.com/jengzang/mobility-metrics-go/internal/config"
	"github.com/jengzang/mobility-metrics-go/internal/database"
	"github.com/jengzang/mobility-metrics-go/internal/repository"
	"github.com/jengzang/mobility-metrics-go/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var optConfigFile string

var rootCmd = &cobra.Command{
	Use:   "mobmetrics",
	Short: "Mobility trace analytics",
	Long: `Detects stay points, visits, journeys and contacts in movement traces
and derives per-entity and dataset-wide mobility metrics.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&optConfigFile, "config", "", "config file (yaml, json or toml)")
}

// newLogger builds a production logger, or a development one at debug level
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// app holds the wired dependencies shared by the subcommands
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *repository.Store
	service *service.DatasetService
}

func newApp() (*app, error) {
	cfg, err := config.Load(optConfigFile)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if err := database.Init(database.Config{Path: cfg.DBPath}, logger); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.Migrate(database.GetDB(), logger); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	store := repository.NewStore(database.GetDB())
	svc, err := service.NewDatasetService(store, analysis.NewPipeline(store, logger, cfg.Workers), cfg.Defaults, cfg.CacheSize, logger)
	if err != nil {
		database.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: store, service: svc}, nil
}

func (a *app) Close() {
	a.service.Wait()
	if err := database.Close(); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
