package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/signspell/internal/app"
	"github.com/ayusman/signspell/internal/capture"
	"github.com/ayusman/signspell/internal/config"
	"github.com/ayusman/signspell/internal/detector"
	"github.com/ayusman/signspell/internal/observe"
	"github.com/ayusman/signspell/internal/plugin"
	"github.com/ayusman/signspell/internal/server"
	"github.com/ayusman/signspell/internal/store"
	"github.com/ayusman/signspell/internal/tray"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	start := flag.Bool("start", false, "start recognition immediately")
	flag.Parse()

	fmt.Println("Signspell - ASL fingerspelling recognition")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := run(cfg, *start); err != nil {
		log.Fatalf("Signspell failed: %v", err)
	}
}

func run(cfg *config.Config, start bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	var metrics *observe.Metrics
	var metricsHandler http.Handler
	if cfg.Server.Metrics {
		mp, shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    "signspell",
			ServiceVersion: version,
		})
		if err != nil {
			return fmt.Errorf("initialize metrics: %w", err)
		}
		defer shutdown(context.Background())

		metrics, err = observe.NewMetrics(mp)
		if err != nil {
			return fmt.Errorf("create metrics: %w", err)
		}
		metricsHandler = promhttp.Handler()
	}

	appCfg := app.Config{
		Detector:      newDetector(cfg.Detector),
		HoldThreshold: cfg.Speller.HoldThreshold,
		IdleFPS:       cfg.Camera.IdleFPS,
		ActiveFPS:     cfg.Camera.ActiveFPS,
		IdleTimeout:   cfg.Camera.IdleTimeout,
		Metrics:       metrics,
	}
	if cfg.Camera.DeviceID >= 0 {
		appCfg.Camera = capture.NewCameraWithConfig(capture.CameraConfig{
			DeviceID: cfg.Camera.DeviceID,
			FPS:      cfg.Camera.IdleFPS,
		})
		appCfg.Preview = capture.NewPreview()
	} else {
		log.Println("Camera disabled, frames must be supplied externally")
	}

	if len(cfg.Plugins.Sinks) > 0 {
		manager := plugin.NewManager(cfg.Plugins.Dir)
		if err := manager.Discover(); err != nil {
			log.Printf("Failed to discover plugins: %v", err)
		}
		for _, p := range manager.List() {
			log.Printf("Found plugin %s %s", p.Manifest.Name, p.Manifest.Version)
		}
		dispatcher := plugin.NewDispatcher(manager, plugin.NewExecutor(cfg.Plugins.Timeout), cfg.Plugins.Sinks)
		defer dispatcher.Wait()
		appCfg.Sink = dispatcher
	}

	application := app.New(appCfg)
	defer application.Close()

	staticDir := findWebDir(cfg.Server.StaticDir)
	if staticDir != "" {
		fmt.Printf("Serving static files from: %s\n", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir:      staticDir,
		Store:          st,
		App:            application,
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.ListenAddr)
	})

	if start {
		if err := application.SetActive(true); err != nil {
			log.Printf("Failed to start recognition: %v", err)
		}
	}

	if cfg.Tray.Enabled {
		runTray(gctx, stop, application, "http://"+cfg.Server.ListenAddr)
	}

	return g.Wait()
}

// runTray blocks on the menu bar until the user quits or ctx ends.
func runTray(ctx context.Context, stop context.CancelFunc, a *app.App, url string) {
	t := tray.New(a.IsActive())
	t.OnToggle(a.SetActive)
	t.OnClear(a.Clear)
	t.OnOpen(func() {
		if err := openBrowser(url); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	})
	t.OnQuit(stop)

	unsubscribe := a.Subscribe(t.Update)
	defer unsubscribe()

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
	stop()
}

func newDetector(cfg config.DetectorConfig) detector.Detector {
	dc := detector.DefaultConfig()
	dc.MaxHands = cfg.MaxHands
	dc.MinConfidence = cfg.MinConfidence
	dc.MinTrackingConf = cfg.MinTrackingConfidence

	mp, err := detector.NewMediaPipeDetector(dc)
	if err != nil {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		return detector.NewMockDetector()
	}
	log.Println("Using MediaPipe hand detection")
	return mp
}

// findWebDir returns the first existing directory among the configured path,
// its parents relative to the working directory and ~/.signspell/web.
func findWebDir(configured string) string {
	var candidates []string
	if configured != "" {
		candidates = append(candidates, configured)
		if !filepath.IsAbs(configured) {
			candidates = append(candidates,
				filepath.Join("..", configured),
				filepath.Join("..", "..", configured),
			)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".signspell", "web"))
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func openBrowser(url string) error {
	if strings.HasPrefix(url, "http://:") {
		url = "http://localhost" + strings.TrimPrefix(url, "http://")
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
