package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/kensetsu/internal/config"
	"github.com/Faultbox/kensetsu/internal/logger"
	"github.com/Faultbox/kensetsu/pkg/recipe"
)

func cmdCheck(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: kensetsu check <recipe.json>")
	}
	if _, err := setup(); err != nil {
		return err
	}

	rc, err := recipe.ParseFile(args[0])
	if err != nil {
		logger.Error("invalid recipe", zap.String("path", args[0]), zap.Error(err))
		return err
	}
	fmt.Printf("Recipe:     %s (type %q, version %g)\n", args[0], rc.Kind, rc.Version)
	if n := checkRecipe(os.Stdout, rc); n > 0 {
		logger.Warn("recipe has unresolved spawns", zap.Int("count", n))
	}
	return nil
}

// checkRecipe lists the items of rc with their spawn counts and returns the
// number of spawns whose item is not defined.
func checkRecipe(w io.Writer, rc *recipe.Recipe) int {
	counts := rc.SpawnCount()

	fmt.Fprintf(w, "Items:      %d\n", len(rc.Items))
	for _, it := range rc.Items {
		fmt.Fprintf(w, "  %8d  %-24s spawns=%d shader=%q\n", it.ItemID, it.DisplayName, counts[it.ItemID], it.ShaderName)
	}

	fmt.Fprintf(w, "Spawns:     %d\n", len(rc.Spawns))
	unresolved := 0
	for i, s := range rc.Spawns {
		if _, ok := rc.Item(s.ItemID); !ok {
			fmt.Fprintf(w, "  spawn %d: unknown item %d\n", i, s.ItemID)
			unresolved++
		}
	}
	fmt.Fprintf(w, "Unresolved: %d\n", unresolved)
	return unresolved
}

func cmdConfig(args []string) error {
	if len(args) < 1 || args[0] != "init" {
		return fmt.Errorf("usage: kensetsu config init [path]")
	}
	cfg, err := setup()
	if err != nil {
		return err
	}

	path := ""
	if len(args) > 1 {
		path = args[1]
	}
	written, err := initConfig(cfg, path)
	if err != nil {
		return err
	}
	logger.Info("wrote config", zap.String("path", written))
	fmt.Printf("Wrote %s\n", written)
	return nil
}

// initConfig saves cfg to path, or to the user config directory when path
// is empty. An existing file is never overwritten.
func initConfig(cfg *config.Config, path string) (string, error) {
	target := path
	if target == "" {
		target = filepath.Join(config.ConfigDir(), "config.yaml")
	}
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("config %s already exists", target)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	if path == "" {
		return target, cfg.Save()
	}
	return target, cfg.SaveTo(path)
}
