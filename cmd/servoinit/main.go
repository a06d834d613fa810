package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-servoinit/internal/config"
	"github.com/coreman2200/funtimes-servoinit/internal/hal"
	"github.com/coreman2200/funtimes-servoinit/internal/servo"
)

// BCM pins of the three servos and where they start.
// On a pca9685 board the servos sit on config i2c.channels instead.
var servoPins = []int{18, 23, 24}

const initialAngle = 90.0

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", "", "driver: gpio | pca9685 | sim")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		logLevel   = flag.String("log-level", "", "debug | info | warn | error")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg := loadConfig(*configPath, log.Logger)
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *simOnly {
		cfg.Driver = hal.DriverSim
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	// trap Ctrl+C and call cancel on the context
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(c)
		cancel()
	}()
	go func() {
		select {
		case sig := <-c:
			log.Info().Str("signal", sig.String()).Msg("aborting")
			cancel()
		case <-ctx.Done():
		}
	}()

	backend, err := hal.Open(hal.Options{
		Driver:  cfg.Driver,
		I2CBus:  cfg.I2C.Bus,
		I2CAddr: cfg.I2C.Addr,
		Log:     log.Logger,
	})
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Driver).Msg("hardware unavailable")
		return 1
	}

	in := servo.New(backend, servo.WithLogger(log.Logger))
	err = in.Run(ctx, servoIDs(cfg), initialAngle)
	if err != nil && !errors.Is(err, servo.ErrInterrupted) {
		log.Error().Err(err).Msg("servo init failed")
	}
	return exitCode(err)
}

// loadConfig reads path, falling back to the defaults with a warning.
func loadConfig(path string, l zerolog.Logger) *config.Config {
	cfg, err := config.Load(path)
	switch {
	case err == nil:
		return cfg
	case os.IsNotExist(err):
		l.Warn().Str("path", path).Msg("no config file; using defaults")
	default:
		l.Warn().Err(err).Str("path", path).Msg("config load failed; proceeding with flags")
	}
	return config.Default()
}

// servoIDs picks the ids the three servos answer to on the selected driver.
func servoIDs(cfg *config.Config) []int {
	if cfg.Driver == hal.DriverPCA9685 {
		return cfg.I2C.Channels
	}
	return servoPins
}

// exitCode is 0 for a completed or user-interrupted run and 1 otherwise.
func exitCode(err error) int {
	if err == nil || errors.Is(err, servo.ErrInterrupted) {
		return 0
	}
	return 1
}
