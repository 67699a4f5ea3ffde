package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/spectrum.report/internal/api"
	"github.com/banshee-data/spectrum.report/internal/config"
	"github.com/banshee-data/spectrum.report/internal/db"
	"github.com/banshee-data/spectrum.report/internal/fsutil"
	"github.com/banshee-data/spectrum.report/internal/serialport"
	"github.com/banshee-data/spectrum.report/internal/spectro"
	"github.com/banshee-data/spectrum.report/internal/timeutil"
	"github.com/banshee-data/spectrum.report/internal/version"
)

var (
	devMode    = flag.Bool("dev", false, "Run in dev mode (replay fixture lines instead of hardware)")
	listen     = flag.String("listen", "", "Listen address (overrides config)")
	dbPath     = flag.String("db", "", "Preset database path (overrides config)")
	configPath = flag.String("config", "", "Path to JSON config file")
)

// loadConfig merges the optional config file with flag overrides. A flag
// explicitly set on the command line wins over the file value.
func loadConfig() *config.Config {
	cfg := config.Empty()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *listen != "" {
		cfg.Listen = listen
	}
	if *dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg
}

// startupTarget picks the port and baud the daemon connects to at boot:
// the enabled preset when one exists, otherwise the config defaults.
func startupTarget(database *db.DB, cfg *config.Config) (string, int) {
	preset, err := database.GetEnabledSerialConfig()
	if err != nil {
		log.Printf("failed to load enabled serial preset: %v", err)
	}
	if preset != nil {
		log.Printf("using serial preset %q (%s @ %d)", preset.Name, preset.PortPath, preset.BaudRate)
		return preset.PortPath, preset.BaudRate
	}
	return cfg.GetSerialPort(), cfg.GetBaudRate()
}

// fixtureFactory builds a mock serial layer preloaded with the dev fixture
// file, so the full connect/scan/stream path can be exercised without an
// instrument on the bench.
func fixtureFactory(path string) (serialport.Factory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	port := serialport.NewTestablePort()
	port.AddReadData([]byte(strings.TrimSpace(string(data)) + "\n"))
	factory := serialport.NewMockFactory(port)
	factory.Ports = []string{"/dev/fixture"}
	return factory, nil
}

func main() {
	flag.Parse()
	cfg := loadConfig()

	log.Printf("spectrad %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	var factory serialport.Factory
	if *devMode {
		var err error
		factory, err = fixtureFactory(cfg.GetFixturePath())
		if err != nil {
			log.Fatalf("failed to load fixture file: %v", err)
		}
		log.Printf("dev mode: replaying %s on /dev/fixture", cfg.GetFixturePath())
	} else {
		factory = serialport.RealFactory{}
	}

	database, err := db.NewDB(cfg.GetDBPath())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	bus := spectro.NewBus()
	store := spectro.NewStore(bus)
	controller := spectro.NewController(
		serialport.NewTransport(factory), store, bus, timeutil.RealClock{})
	defer controller.Disconnect()

	port, baud := startupTarget(database, cfg)
	if *devMode {
		port = "/dev/fixture"
	}
	if err := controller.Connect(port, baud); err != nil {
		// not fatal: the port can be connected later over the API
		log.Printf("startup connect to %s failed: %v", port, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(controller, store, bus, database)
	srv.EnableFileExport(fsutil.OSFileSystem{}, cfg.GetExportDir())
	server := &http.Server{
		Addr:    cfg.GetListen(),
		Handler: api.LoggingMiddleware(srv.ServeMux()),
	}

	go func() {
		log.Printf("listening on %s", cfg.GetListen())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	bus.Close()
	log.Printf("graceful shutdown complete")
}
