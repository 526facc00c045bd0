// kensetsu replays scene recipes: it fetches item payloads, decodes their
// texture-packed meshes and writes a scene manifest of placed instances.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/kensetsu/internal/acquire"
	"github.com/Faultbox/kensetsu/internal/assets"
	"github.com/Faultbox/kensetsu/internal/config"
	"github.com/Faultbox/kensetsu/internal/logger"
	"github.com/Faultbox/kensetsu/internal/materialize"
	"github.com/Faultbox/kensetsu/internal/pipeline"
	"github.com/Faultbox/kensetsu/internal/scene"
	"github.com/Faultbox/kensetsu/pkg/meshtex"
	"github.com/Faultbox/kensetsu/pkg/pixel"
	"github.com/Faultbox/kensetsu/pkg/recipe"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	var err error
	switch command {
	case "run":
		err = cmdRun(args)
	case "decode":
		err = cmdDecode(args)
	case "inspect":
		err = cmdInspect(args)
	case "watch":
		err = cmdWatch(args)
	case "check":
		err = cmdCheck(args)
	case "config":
		err = cmdConfig(args)
	case "version":
		fmt.Println("kensetsu", config.Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`kensetsu - scene recipe replay tool

Usage:
  kensetsu [flags] <command> [arguments]

Commands:
  run <recipe.json>           Fetch, build and spawn a recipe
  watch <recipe.json>         Run a recipe and rerun it whenever it changes
  check <recipe.json>         List recipe items and unknown spawn references
  config init [path]          Write the effective configuration as YAML
  decode <payload> [out.obj]  Decode a mesh payload to Wavefront OBJ
  inspect <payload>           Show the header and statistics of a mesh payload
  version                     Print the version

Flags:
  -config <file>   config file (.yaml or .toml)
  -store <dir>     item store root
  -out <file>      scene manifest output
  -timeout <dur>   per-fetch timeout, 0 disables
  -workers <n>     parallel item builds
  -shader <name>   default shader
  -log <file>      log file
  -debug           debug logging

Examples:
  kensetsu run scene.json
  kensetsu -store ~/kensetsu/Assets -workers 4 run scene.json
  kensetsu decode items/42/model.exr model.obj`)
}

// setup loads the configuration and starts logging.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger.Debug("configuration loaded",
		zap.String("store", cfg.Store.Root),
		zap.Duration("timeout", cfg.Fetch.Timeout.D()),
		zap.Int("workers", cfg.Build.Workers))
	return cfg, nil
}

func cmdRun(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: kensetsu run <recipe.json>")
	}
	cfg, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := runRecipe(ctx, cfg, args[0])
	if err != nil {
		return err
	}
	printReport(report, cfg.Scene.Output)
	return nil
}

// runRecipe replays the recipe at path and saves the scene manifest.
func runRecipe(ctx context.Context, cfg *config.Config, path string) (pipeline.Report, error) {
	log := logger.Named("run")

	rc, err := recipe.ParseFile(path)
	if err != nil {
		log.Error("invalid recipe", zap.String("path", path), zap.Error(err))
		return pipeline.Report{}, err
	}
	log.Info("loaded recipe",
		zap.String("path", path),
		zap.String("type", rc.Kind),
		zap.Float64("version", rc.Version),
		zap.Int("items", len(rc.Items)),
		zap.Int("spawns", len(rc.Spawns)))

	store := assets.NewStore(cfg.Store.Root)
	manifest := scene.NewManifest()
	run := pipeline.NewRun(rc, pipeline.Deps{
		Fetcher: acquire.NewHTTPFetcher(cfg.Fetch.Timeout.D(), cfg.Fetch.UserAgent),
		Store:   store,
		Builder: materialize.NewBuilder(store, cfg.Build, logger.Named("build")),
		Placer:  manifest,
		Workers: cfg.Build.Workers,
		Log:     log,
	})

	if err := (pipeline.Driver{Tick: cfg.Scene.Tick.D()}).Drive(ctx, run); err != nil {
		return run.Report(), err
	}
	if err := manifest.Save(cfg.Scene.Output); err != nil {
		return run.Report(), err
	}
	log.Info("scene saved", zap.String("path", cfg.Scene.Output), zap.Int("instances", manifest.Len()))
	return run.Report(), nil
}

func printReport(r pipeline.Report, output string) {
	fmt.Printf("Fetched:    %d payloads\n", r.Acquisition.Fetches)
	fmt.Printf("Built:      %d items\n", len(r.Built))
	for _, err := range r.BuildErrors() {
		fmt.Printf("  failed:   %v\n", err)
	}
	fmt.Printf("Placed:     %d instances\n", r.Placed)
	for _, ref := range r.Unresolved {
		fmt.Printf("  skipped:  %v\n", ref)
	}
	fmt.Printf("Manifest:   %s\n", output)
}

// loadMesh reads a payload file and decodes its mesh.
func loadMesh(path string) (*meshtex.Mesh, []pixel.Record, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, "", err
	}
	records, format, err := pixel.Decode(data)
	if err != nil {
		return nil, nil, format, err
	}
	mesh, err := meshtex.Decode(records)
	if err != nil {
		return nil, records, format, err
	}
	return mesh, records, format, nil
}

func cmdDecode(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: kensetsu decode <payload> [out.obj]")
	}

	mesh, _, _, err := loadMesh(args[0])
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	if len(args) < 2 {
		return materialize.WriteOBJ(os.Stdout, "mesh", mesh)
	}

	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	if err := materialize.WriteOBJ(out, "mesh", mesh); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %d vertices, %d triangles\n", args[1], len(mesh.Vertices), mesh.TriangleCount())
	return nil
}

func cmdInspect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: kensetsu inspect <payload>")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	records, format, err := pixel.Decode(data)
	if err != nil {
		return err
	}

	fmt.Printf("File:       %s\n", args[0])
	fmt.Printf("Format:     %s\n", format)
	fmt.Printf("Records:    %d\n", len(records))

	hdr, err := meshtex.DecodeHeader(records)
	if err != nil {
		return err
	}
	fmt.Printf("Version:    %g\n", hdr.Version)
	fmt.Printf("Vertices:   %d\n", hdr.VertexCount)
	fmt.Printf("Normals:    %d\n", hdr.NormalCount)
	fmt.Printf("UVs:        %d\n", hdr.UVCount)
	fmt.Printf("Indices:    %d (%d records)\n", hdr.IndexCount, hdr.IndexRecords())

	mesh, err := meshtex.Decode(records)
	if err != nil {
		return err
	}
	b := mesh.Bounds()
	fmt.Printf("Triangles:  %d\n", mesh.TriangleCount())
	fmt.Printf("Bounds:     (%g, %g, %g) - (%g, %g, %g)\n", b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)

	reencoded := meshtex.Encode(mesh)
	used := meshtex.HeaderRecords + hdr.GeometryRecords()
	fmt.Printf("Unused:     %d trailing records\n", len(records)-used)
	fmt.Printf("Re-encoded: %d records\n", len(reencoded))
	return nil
}
