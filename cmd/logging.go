package cmd

import (
	"github.com/arbobendik/FlexLight-sub000/config"
	"github.com/arbobendik/FlexLight-sub000/log"
	"github.com/urfave/cli"
)

var logger = log.New("flexgraph")

// Load the config named by the --config flag and apply its logging section.
// The global -v and -vv flags raise the configured verbosity.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return nil, err
	}
	if err = setupLogging(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(ctx *cli.Context, cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}

	if ctx.GlobalBool("v") && level > log.Info {
		level = log.Info
	}

	if ctx.GlobalBool("vv") {
		level = log.Debug
	}

	log.SetLevel(level)
	return log.SetFileSink(cfg.Logging.File, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups)
}
