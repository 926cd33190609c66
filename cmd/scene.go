package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/arbobendik/FlexLight-sub000/asset/compiled"
	"github.com/arbobendik/FlexLight-sub000/asset/description"
	"github.com/arbobendik/FlexLight-sub000/config"
	"github.com/urfave/cli"
)

// A scene description and the archive it compiles to.
type compileJob struct {
	source string
	target string
}

// Compile scene descriptions into archives and optionally keep recompiling
// them on change.
func CompileScene(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	if ctx.NArg() == 0 {
		return errors.New("missing scene description file")
	}
	out := ctx.String("out")
	if out != "" && ctx.NArg() > 1 {
		return errors.New("--out can only be used with a single scene description")
	}

	jobs := make([]compileJob, 0, ctx.NArg())
	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		ext := filepath.Ext(sceneFile)
		if ext != ".yaml" && ext != ".yml" {
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}

		job := compileJob{source: sceneFile, target: out}
		if job.target == "" {
			job.target = strings.TrimSuffix(sceneFile, ext) + ".zip"
		}
		if err = job.run(cfg); err != nil {
			return err
		}
		jobs = append(jobs, job)
	}

	if !ctx.Bool("watch") || len(jobs) == 0 {
		return nil
	}

	w, err := newSceneWatcher(jobs, cfg)
	if err != nil {
		return err
	}
	defer w.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return w.Run(sigCtx)
}

func (job compileJob) run(cfg *config.Config) error {
	logger.Noticef("parsing and compiling scene: %s", job.source)
	sc, err := description.ReadFile(job.source, description.Options{
		BVH:    cfg.BVHOptions(),
		Layout: cfg.BufferLayout(),
	})
	if err != nil {
		return err
	}

	bufs, err := sc.GenerateArrays()
	if err != nil {
		return err
	}

	cs := compiled.FromScene(sc, bufs)
	logger.Noticef("scene information:\n%s", cs.Stats())

	return compiled.WriteFile(cs, job.target)
}

// Display compiled scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	if _, err := loadConfig(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing compiled scene zip file")
	}

	sceneFile := ctx.Args().First()
	if !strings.HasSuffix(sceneFile, ".zip") {
		return errors.New("only compiled scene files with a .zip extension are supported")
	}

	cs, err := compiled.ReadFile(sceneFile)
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", cs.Stats())
	return nil
}

// Write the effective configuration (defaults merged with --config) to a file.
func WriteConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing output file")
	}

	if err = cfg.Save(ctx.Args().First()); err != nil {
		return err
	}
	logger.Noticef("wrote configuration to %s", ctx.Args().First())
	return nil
}
