package commands

import (
	"go.uber.org/zap"

	"tableflip.dev/termwise/pkg/app"
	"tableflip.dev/termwise/pkg/commands/options"
	"tableflip.dev/termwise/pkg/config"
	"tableflip.dev/termwise/pkg/logging"
	"tableflip.dev/termwise/pkg/optimizer"
	"tableflip.dev/termwise/pkg/submit"
)

// environment is what the planning commands share: configuration, a logger
// and one app.State with its submission pipeline.
type environment struct {
	cfg      *config.Config
	logger   *zap.Logger
	state    *app.State
	pipeline *submit.Pipeline
}

// loadEnvironment reads the configuration and builds the logger. With quiet
// set nothing is logged unless a log file is given, since the terminal
// belongs to the UI.
func loadEnvironment(lo *options.LogOptions, quiet bool) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log, lo, quiet)
	if err != nil {
		return nil, err
	}

	state := app.New()
	client := optimizer.NewClient(cfg.Optimizer.URL, cfg.Optimizer.Timeout, logger.Named("optimizer"))
	return &environment{
		cfg:      cfg,
		logger:   logger,
		state:    state,
		pipeline: submit.New(state, client, logger.Named("submit")),
	}, nil
}

func newLogger(cfg config.LogConfig, lo *options.LogOptions, quiet bool) (*zap.Logger, error) {
	if lo != nil && lo.Level != "" {
		cfg.Level = lo.Level
	}
	switch {
	case lo != nil && lo.File != "":
		return logging.New(cfg, lo.File)
	case quiet:
		return zap.NewNop(), nil
	}
	return logging.New(cfg)
}
