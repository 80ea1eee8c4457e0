// Presenter - points a camera at printed text, reads it out on a dashboard
// once the shot is sharp and steady, and flags important sounds nearby.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-presenter/internal/config"
	"github.com/teslashibe/go-presenter/internal/httpc"
	"github.com/teslashibe/go-presenter/internal/log"
	"github.com/teslashibe/go-presenter/internal/observe"
	"github.com/teslashibe/go-presenter/pkg/audioio"
	"github.com/teslashibe/go-presenter/pkg/camera"
	"github.com/teslashibe/go-presenter/pkg/history"
	"github.com/teslashibe/go-presenter/pkg/overlay"
	"github.com/teslashibe/go-presenter/pkg/presenter"
	"github.com/teslashibe/go-presenter/pkg/soundalert"
	"github.com/teslashibe/go-presenter/pkg/targeting"
	"github.com/teslashibe/go-presenter/pkg/web"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, listDevices, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if listDevices {
		return printAudioDevices()
	}

	log.Init(cfg.Log.Level, cfg.Log.Format)
	logger := log.Component("presenter")
	httpc.UserAgent = "go-presenter/" + version

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	provider, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = provider.Shutdown(shutdownCtx)
	}()

	cam, err := camera.NewCaptureSource(cfg.Camera, logger)
	if err != nil {
		return fmt.Errorf("could not open camera %s: %w", cfg.Camera.String(), err)
	}
	defer cam.Close()

	estimator, err := targeting.New(cfg.Targeting)
	if err != nil {
		return err
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	opts := presenter.Options{
		Camera:         cam,
		Estimator:      estimator,
		Viewfinder:     cfg.Viewfinder,
		OCR:            ocrFactory(cfg.OCR, logger),
		Renderer:       overlay.NewRenderer(cfg.Overlay),
		Metrics:        provider.Metrics(),
		Logger:         logger,
		VisionInterval: cfg.Pipeline.VisionInterval,
		RenderInterval: cfg.Pipeline.RenderInterval,
	}
	if store != nil {
		opts.History = store
	}

	if cfg.Alerts.Enabled {
		detector := soundalert.NewDetectorFromConfig(cfg.Alerts, logger)
		defer detector.Close()
		opts.Detector = detector

		src, err := audioio.NewSource(cfg.Audio, logger)
		if err != nil {
			// Surfaced on the dashboard as an audio error, like a failed read.
			logger.Error("audio source unavailable", "error", err)
			src = unavailableAudio{cfg: cfg.Audio, err: err}
		}
		defer src.Close()
		opts.Audio = src
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Web.Enabled {
		webOpts := web.Options{
			Addr:       cfg.Web.Addr,
			Logger:     logger,
			Calibrator: estimator,
			Metrics:    provider.Handler(),
			OnViewersChanged: func(delta int) {
				provider.Metrics().Viewers.Add(context.Background(), int64(delta))
			},
		}
		if store != nil {
			webOpts.History = store
		}
		server := web.NewServer(webOpts)
		opts.Publisher = server
		g.Go(func() error { return server.Start(ctx) })
	}

	app, err := presenter.New(opts)
	if err != nil {
		return err
	}

	logger.Info("presenter starting",
		"version", version,
		"camera", cfg.Camera.String(),
		"ocr_engines", cfg.OCR.Engines,
		"alerts", cfg.Alerts.Enabled,
		"dashboard", cfg.Web.Enabled,
	)

	g.Go(func() error { return app.Run(ctx) })

	err = g.Wait()
	logger.Info("presenter stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loadConfig applies, in order: defaults, the config file, environment
// variables and command line flags.
func loadConfig(args []string) (*config.Config, bool, error) {
	fs := flag.NewFlagSet("presenter", flag.ContinueOnError)

	configPath := fs.String("config", "", "Path to a YAML config file")
	cameraSrc := fs.String("camera", "", "Camera device index or stream URL (overrides PRESENTER_CAMERA)")
	clarity := fs.Float64("clarity", 0, "Clarity threshold (Laplacian variance)")
	stability := fs.Float64("stability", 0, "Stability threshold (mean absolute difference)")
	port := fs.Int("port", 0, "Dashboard port")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	audioDevice := fs.Int("audio-device", audioio.DefaultDevice, "PortAudio input device index (see -list-audio-devices)")
	listDevices := fs.Bool("list-audio-devices", false, "List audio input devices and exit")

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, false, err
		}
		cfg = loaded
	}

	if err := cfg.LoadEnvConfig(); err != nil {
		return nil, false, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["camera"] {
		cfg.Camera.Source = *cameraSrc
	}
	if set["clarity"] {
		cfg.Targeting.ClarityThreshold = *clarity
	}
	if set["stability"] {
		cfg.Targeting.StabilityThreshold = *stability
	}
	if set["port"] {
		cfg.Web.Addr = fmt.Sprintf(":%d", *port)
	}
	if set["log-level"] {
		cfg.Log.Level = *logLevel
	}
	if set["audio-device"] {
		cfg.Audio.Device = *audioDevice
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, *listDevices, nil
}

func printAudioDevices() error {
	devices, err := audioio.ListDevices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Println("No audio input devices found")
		return nil
	}
	for _, d := range devices {
		marker := " "
		if d.Default {
			marker = "*"
		}
		fmt.Printf("%s %2d  %-40s  %d ch  %.0f Hz\n", marker, d.Index, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
	}
	return nil
}
