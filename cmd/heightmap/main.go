package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"runtime"
	"time"

	"infworld/internal/config"
	"infworld/internal/preview"
	"infworld/internal/profiling"
	"infworld/internal/world"

	"github.com/xlab/closer"
)

func main() {
	configPath := flag.String("config", "", "terrain YAML file (defaults when empty)")
	seedFlag := flag.String("seed", "", "world seed (any int32), overrides the config when set")
	level := flag.Int("level", 0, "LOD level whose chunk size is sampled")
	cx := flag.Int("x", 0, "center chunk x")
	cz := flag.Int("z", 0, "center chunk z")
	radius := flag.Int("radius", 4, "chunks on each side of the center")
	upscale := flag.Int("upscale", 2, "integer scale factor of the output")
	workers := flag.Int("workers", runtime.NumCPU(), "mesh workers")
	label := flag.Bool("label", true, "draw seed and position in the corner")
	out := flag.String("out", "heightmap.png", "output PNG path")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Error("load config", "err", err)
			os.Exit(1)
		}
	}
	if *seedFlag != "" {
		seed, err := config.ParseSeed(*seedFlag)
		if err != nil {
			logger.Error("parse seed", "err", err)
			os.Exit(2)
		}
		cfg.Seed = seed
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer closer.Close()
	closer.Bind(cancel)

	start := time.Now()
	opts := preview.Options{
		Center:  world.ChunkCoord{X: *cx, Z: *cz},
		Radius:  *radius,
		Level:   *level,
		Workers: *workers,
	}
	img, err := preview.Render(ctx, world.NewSeed(cfg.Seed), cfg, opts)
	if err != nil {
		closer.Fatalln(err)
	}
	img = preview.Upscale(img, *upscale)
	if *label {
		preview.Label(img, fmt.Sprintf("seed %d  level %d  chunk %d,%d", cfg.Seed, *level, *cx, *cz))
	}

	f, err := os.Create(*out)
	if err != nil {
		closer.Fatalln(err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(*out)
		closer.Fatalln(err)
	}
	if err := f.Close(); err != nil {
		closer.Fatalln(err)
	}

	logger.Info("heightmap written",
		"path", *out,
		"size", img.Bounds().Dx(),
		"chunks", profiling.TotalCount("preview.chunks"),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
}
