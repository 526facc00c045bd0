package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/kensetsu/internal/logger"
)

// settle is how long the recipe must stay unchanged before a rerun.
const settle = 250 * time.Millisecond

func cmdWatch(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: kensetsu watch <recipe.json>")
	}
	cfg, err := setup()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	log := logger.Named("watch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	rerun := func() {
		report, err := runRecipe(ctx, cfg, path)
		if err != nil {
			log.Error("run failed", zap.Error(err))
			return
		}
		printReport(report, cfg.Scene.Output)
	}
	rerun()

	timer := time.NewTimer(settle)
	timer.Stop()
	log.Info("watching recipe", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			log.Info("recipe changed, rerunning", zap.String("path", path))
			rerun()
		}
	}
}
