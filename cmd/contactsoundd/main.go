// Command contactsoundd is a demo/harness binary: it drives pkg/engine from
// either a JSONL telemetry feed or a websocket connection, logging the
// playback commands the engine emits. It never plays audio itself.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/opd-ai/contactsound/pkg/command"
	"github.com/opd-ai/contactsound/pkg/config"
	"github.com/opd-ai/contactsound/pkg/engine"
	"github.com/opd-ai/contactsound/pkg/material"
	"github.com/opd-ai/contactsound/pkg/registry"
	"github.com/opd-ai/contactsound/pkg/rng"
	"github.com/opd-ai/contactsound/pkg/store"
	"github.com/opd-ai/contactsound/pkg/surface"
)

var (
	listen   = flag.String("listen", "", "Serve a websocket telemetry endpoint on this address (e.g. :8077)")
	feed     = flag.String("feed", "", "Read a JSONL telemetry feed from this file instead of listening")
	fps      = flag.Float64("fps", 60, "Frames per second to pace a JSONL feed at")
	seed     = flag.Int64("seed", 0, "RNG seed; 0 means nondeterministic (crypto/rand-derived)")
	logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.WithError(err).Fatal("invalid log level")
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if err := config.Load(); err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	cfg := config.Get()

	e, err := buildEngine(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to construct engine")
	}

	logrus.WithFields(logrus.Fields{
		"listen": *listen,
		"feed":   *feed,
		"fps":    *fps,
	}).Info("starting contactsoundd")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("shutdown signal received")
		cancel()
	}()

	switch {
	case *listen != "":
		runServer(ctx, *listen, e)
	case *feed != "":
		runFeed(ctx, *feed, *fps, e)
	default:
		logrus.Fatal("one of -listen or -feed is required")
	}

	logrus.Info("contactsoundd stopped")
}

func buildEngine(cfg config.Config) (*engine.Engine, error) {
	bank, err := loadBank(cfg.MaterialDataPath)
	if err != nil {
		return nil, err
	}
	profile, err := loadProfile(cfg.SurfaceDataPath)
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	floorMaterial, err := material.ParseMaterial(cfg.FloorMaterial)
	if err != nil {
		return nil, err
	}

	var r *rng.RNG
	if *seed != 0 {
		r = rng.NewRNG(*seed)
	}

	ecfg := engine.Config{
		InitialAmp:        cfg.InitialAmp,
		PreventDistortion: cfg.PreventDistortion,
		Logging:           cfg.Logging,
		FloorMaterial:     floorMaterial,
		FloorSize:         material.SizeBucket(cfg.FloorSize),
		FloorBounciness:   cfg.FloorBounciness,
		FloorResonance:    cfg.FloorResonance,
		MaxScrapeSeconds:  cfg.MaxScrapeSeconds,
	}
	return engine.New(ecfg, bank, profile, catalog, r, logrus.NewEntry(logrus.StandardLogger()))
}

func loadBank(path string) (*material.Bank, error) {
	if path == "" {
		return material.LoadBundled()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return material.Load(data)
}

func loadProfile(path string) (*surface.Profile, error) {
	if path == "" {
		return surface.LoadBundled()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return surface.Load(f)
}

func loadCatalog(cfg config.Config) ([]registry.CatalogEntry, error) {
	if cfg.StorePath == "" {
		return registry.LoadBundledCatalog()
	}
	s, err := store.New(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	catalog, err := s.LoadCatalog()
	if err != nil {
		return nil, err
	}
	if len(catalog) > 0 {
		return catalog, nil
	}

	bundled, err := registry.LoadBundledCatalog()
	if err != nil {
		return nil, err
	}
	if err := s.SaveCatalog(bundled); err != nil {
		logrus.WithError(err).Warn("failed to seed persisted catalog")
	}
	return bundled, nil
}

// runFeed reads newline-delimited JSON telemetry frames from a file, paced
// by a rate limiter, and logs the commands each frame produces.
func runFeed(ctx context.Context, path string, fps float64, e *engine.Engine) {
	f, err := os.Open(path)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open feed file")
	}
	defer f.Close()

	limiter := rate.NewLimiter(rate.Limit(fps), 1)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		frame, err := decodeFrame(line)
		if err != nil {
			logrus.WithError(err).Warn("failed to decode telemetry frame, skipping")
			continue
		}
		logCommands(e.OnFrame(frame))
	}
	if err := scanner.Err(); err != nil {
		logrus.WithError(err).Error("feed read error")
	}
}

// runServer serves a websocket endpoint accepting one JSON telemetry frame
// per message and streaming back the resulting command batch.
func runServer(ctx context.Context, addr string, e *engine.Engine) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	// The engine is not safe for concurrent OnFrame calls, and every
	// connection's handler shares it.
	var engineMu sync.Mutex

	mux := http.NewServeMux()
	mux.HandleFunc("/telemetry", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Error("failed to upgrade websocket")
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				logrus.WithError(err).Debug("websocket read error")
				return
			}

			frame, err := decodeFrame(msg)
			if err != nil {
				logrus.WithError(err).Warn("failed to decode telemetry frame")
				continue
			}

			engineMu.Lock()
			cmds := e.OnFrame(frame)
			engineMu.Unlock()
			logCommands(cmds)

			payload, err := json.Marshal(cmds)
			if err != nil {
				logrus.WithError(err).Error("failed to marshal commands")
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logrus.WithError(err).Debug("websocket write error")
				return
			}
		}
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("websocket server error")
	}
}

func logCommands(cmds []command.Command) {
	for _, c := range cmds {
		logrus.WithField("type", c.Type()).Debug("emitted playback command")
	}
}
