package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gekko3d/snowfall"
	"github.com/gekko3d/snowfall/snowrt/rt/app"
	"github.com/gekko3d/snowfall/snowrt/rt/host"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg := snowfall.DefaultConfig()
	configPath := flag.String("config", "", "Optional TOML config file; explicit flags override it")
	particles := flag.Int("particles", cfg.ParticleCount, "Particles per display")
	maxAge := flag.Float64("max-age", float64(cfg.MaxAge), "Seconds before a flake respawns at the top")
	gravityX := flag.Float64("gravity-x", float64(cfg.Gravity.X()), "Horizontal acceleration (wind)")
	gravityY := flag.Float64("gravity-y", float64(cfg.Gravity.Y()), "Vertical acceleration")
	debug := flag.Bool("debug", false, "Verbose logging and a startup window snapshot dump")
	listWindows := flag.Bool("list-windows", false, "Print the on-screen windows as YAML and exit")
	flag.Parse()

	if *configPath != "" {
		loaded, err := snowfall.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "particles":
			cfg.ParticleCount = *particles
		case "max-age":
			cfg.MaxAge = float32(*maxAge)
		case "gravity-x":
			cfg.Gravity = mgl32.Vec2{float32(*gravityX), cfg.Gravity.Y()}
		case "gravity-y":
			cfg.Gravity = mgl32.Vec2{cfg.Gravity.X(), float32(*gravityY)}
		case "debug":
			cfg.Debug = *debug
		}
	})

	logger := snowfall.NewDefaultLogger("snowfall", cfg.Debug)
	source := host.CompositorWindows{Logger: logger.Named("windows")}

	if *listWindows {
		if err := host.WriteSnapshot(os.Stdout, source.OnScreenWindows()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg, *configPath, logger, source); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(cfg snowfall.Config, configPath string, logger snowfall.Logger, source host.WindowSource) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	application := app.NewApp(cfg, logger)
	defer application.Release()
	if err := application.Init(host.Displays(), host.GLFWOpener{}, source); err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	if configPath != "" {
		watcher, err := app.WatchConfig(configPath, logger)
		if err != nil {
			logger.Warnf("config %s will not be reloaded: %v", configPath, err)
		} else {
			defer watcher.Close()
			application.SetConfigUpdates(watcher.Updates())
		}
	}
	return application.Run()
}
