package cmd

import (
	"context"
	"path/filepath"

	"github.com/arbobendik/FlexLight-sub000/config"
	"github.com/fsnotify/fsnotify"
)

// sceneWatcher recompiles scene descriptions when they are written. The
// parent directories are watched so editors that replace files on save are
// picked up as well. Included descriptions are not watched.
type sceneWatcher struct {
	w   *fsnotify.Watcher
	cfg *config.Config

	jobs map[string]compileJob
}

func newSceneWatcher(jobs []compileJob, cfg *config.Config) (*sceneWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	sw := &sceneWatcher{
		w:    w,
		cfg:  cfg,
		jobs: make(map[string]compileJob, len(jobs)),
	}

	dirs := make(map[string]struct{})
	for _, job := range jobs {
		sw.jobs[filepath.Clean(job.source)] = job
		dirs[filepath.Dir(job.source)] = struct{}{}
	}
	for dir := range dirs {
		if err = w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}

	logger.Noticef("watching %d scene description(s) for changes", len(sw.jobs))
	return sw, nil
}

// Process events until ctx is done or the watcher is closed. Failed
// recompilations are logged and do not stop the loop.
func (sw *sceneWatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sw.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			job, found := sw.jobs[filepath.Clean(ev.Name)]
			if !found {
				continue
			}
			if err := job.run(sw.cfg); err != nil {
				logger.Errorf("recompiling %s failed: %v", job.source, err)
			}
		case err, ok := <-sw.w.Errors:
			if !ok {
				return nil
			}
			logger.Errorf("watch error: %v", err)
		}
	}
}

func (sw *sceneWatcher) Close() error {
	return sw.w.Close()
}
