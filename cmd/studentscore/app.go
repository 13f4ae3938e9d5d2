package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studentscore/artifact"
	"studentscore/config"
	"studentscore/logging"
	"studentscore/ml"
)

const defaultConfigPath = "config.yaml"

// app holds what every command needs, built once per process.
type app struct {
	config    *config.Config
	logger    *zap.Logger
	artifacts *artifact.Artifacts
	predictor *ml.Predictor
	paths     []string
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	required := cmd.Flags().Changed("config")
	return config.Load(configPath, required)
}

func artifactSource(cfg *config.Config) (artifact.Source, []string) {
	if cfg.Artifacts.Source == config.SourceSQLite {
		src := artifact.StoreSource{Path: cfg.Artifacts.DBPath}
		return src, src.Paths()
	}
	src := artifact.NewFileSource(cfg.Artifacts.Dir, cfg.Artifacts.ModelPath, cfg.Artifacts.ColumnsPath)
	return src, src.Paths()
}

// newApp loads config, logger and artifacts. Artifact failures are fatal to
// the caller; nothing is served without both artifacts.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	src, paths := artifactSource(cfg)
	arts, err := artifact.Load(ctx, src)
	if err != nil {
		logger.Error("cannot load artifacts", zap.Error(err))
		return nil, err
	}
	logger.Named("artifact").Info("artifacts loaded",
		zap.String("source", arts.Source()),
		zap.String("model", fmt.Sprintf("%T", arts.Model())),
		zap.Int("columns", len(arts.Columns())),
	)

	policy, err := cfg.CategoryPolicy()
	if err != nil {
		return nil, err
	}
	predictor, err := ml.NewPredictor(arts.Model(), arts.Columns(),
		ml.WithCategoryPolicy(policy),
		ml.WithLogger(logger.Named("encoder")),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		config:    cfg,
		logger:    logger,
		artifacts: arts,
		predictor: predictor,
		paths:     paths,
	}, nil
}

// watch starts the artifact change watcher when enabled.
func (a *app) watch(ctx context.Context) {
	if !a.config.Artifacts.Watch {
		return
	}
	if _, err := artifact.Watch(ctx, a.logger.Named("watch"), a.paths...); err != nil {
		a.logger.Warn("artifact watcher disabled", zap.Error(err))
	}
}
