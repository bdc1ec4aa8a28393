package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	"infworld/internal/config"
	"infworld/internal/graphics"
	"infworld/internal/terrain"
	"infworld/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "terrain YAML file (defaults when empty)")
	seedFlag := flag.String("seed", "", "world seed (any int32), overrides the config when set")
	fps := flag.Int("fps", 60, "frame cap, 0 for unlimited")
	workers := flag.Int("workers", runtime.NumCPU(), "mesh workers for the initial fill")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

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
	config.SetFPSLimit(*fps)

	// On a signal closer runs this from its own goroutine and exits right
	// after, so wait for the main thread to release the GL resources first.
	stop := newShutdown()
	defer closer.Close()
	closer.Bind(func() {
		stop.Stop()
		logger.Info("viewer stopped")
	})

	err := run(cfg, *workers, logger, stop)
	stop.Finish()
	if err != nil {
		closer.Fatalln(err)
	}
}

// run owns the window and GL context. Every resource it creates is released
// before it returns.
func run(cfg config.Terrain, workers int, logger *slog.Logger, stop *shutdown) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		return err
	}
	if err := gl.Init(); err != nil {
		return err
	}
	logger.Info("opengl ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	seed := world.NewSeed(cfg.Seed)
	buffers := graphics.NewTerrainBuffers()
	manager, err := terrain.NewManager(seed, cfg, buffers, terrain.WithLogger(logger))
	if err != nil {
		return err
	}
	defer manager.Close()

	if err := manager.GenerateAllParallel(stop.Context(), seed, 0, 0, workers); err != nil {
		logger.Warn("initial fill incomplete", "err", err)
	}

	renderer, err := graphics.NewTerrainRenderer(buffers, manager)
	if err != nil {
		return err
	}
	defer renderer.Dispose()

	width, height := window.GetSize()
	cam := graphics.NewCamera(width, height, manager.ViewDistance()*1.5)
	cam.Position[1] = manager.HeightAt(0, 0) + 200

	loop := newViewerLoop(window, manager, renderer, cam, logger, stop)
	setupInputHandlers(window, loop)
	loop.Run()
	return nil
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(1280, 720, "infworld", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	glfw.SwapInterval(0)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	return window, nil
}
