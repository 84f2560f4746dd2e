package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/gekko3d/asteroids/asteroidrt/rt/app"
	"github.com/gekko3d/asteroids/asteroidrt/rt/core"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	defaults := core.DefaultFieldConfig()

	count := flag.Int("count", defaults.Amount, "Number of asteroid instances")
	groups := flag.Int("groups", defaults.Groups, "Number of rotate groups (rings)")
	radius := flag.Float64("radius", float64(defaults.Radius), "Outer ring radius")
	gap := flag.Float64("gap", float64(defaults.GapSize), "Radial gap between rings")
	offset := flag.Float64("offset", float64(defaults.Offset), "Max positional jitter")
	limit := flag.Int("limit", defaults.RotateLimit, "Initial number of rotating outer rings")
	step := flag.Float64("step", float64(defaults.Step), "Per-frame yaw step in radians")
	seed := flag.Int64("seed", 0, "Placement seed (0 picks a time based seed)")
	width := flag.Int("width", 1280, "Window width")
	height := flag.Int("height", 720, "Window height")
	vsync := flag.Bool("vsync", true, "Wait for vertical sync on present")
	debug := flag.Bool("debug", false, "Show the stats overlay and debug logs")
	flag.Parse()

	logger := core.NewDefaultLogger("asteroids", *debug)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	opts := app.Options{
		Field: core.FieldConfig{
			Amount:      *count,
			Groups:      *groups,
			Radius:      float32(*radius),
			GapSize:     float32(*gap),
			Offset:      float32(*offset),
			RotateLimit: *limit,
			Step:        float32(*step),
		},
		Seed:  *seed,
		VSync: *vsync,
		Debug: *debug,
	}

	if err := run(opts, *width, *height, logger); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(opts app.Options, width, height int, logger core.Logger) error {
	if err := opts.Field.Validate(); err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(width, height, "Asteroid Field", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer window.Destroy()

	application := app.NewApp(window, opts, logger)
	defer application.Release()
	if err := application.Init(); err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		application.HandleCursor(xpos, ypos)
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		application.HandleScroll(yoff)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		application.HandleClick(button, action)
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		if err := application.Update(); err != nil {
			return err
		}
		application.Render()
	}
	return nil
}
