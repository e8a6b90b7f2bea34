// Package config handles loading and hot-reloading engine configuration.
package config

import (
	"context"
	"errors"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds the tunables an engine is constructed with, plus the
// locations of its bundled/overridden data files.
type Config struct {
	InitialAmp        float64 `mapstructure:"InitialAmp"`
	PreventDistortion bool    `mapstructure:"PreventDistortion"`
	Logging           bool    `mapstructure:"Logging"`
	FloorMaterial     string  `mapstructure:"FloorMaterial"`
	FloorSize         int     `mapstructure:"FloorSize"`
	FloorBounciness   float64 `mapstructure:"FloorBounciness"`
	FloorResonance    float64 `mapstructure:"FloorResonance"`
	MaxScrapeSeconds  float64 `mapstructure:"MaxScrapeSeconds"`
	MaterialDataPath  string  `mapstructure:"MaterialDataPath"`
	SurfaceDataPath   string  `mapstructure:"SurfaceDataPath"`
	CatalogPath       string  `mapstructure:"CatalogPath"`
	OverridesPath     string  `mapstructure:"OverridesPath"`
	StorePath         string  `mapstructure:"StorePath"`
}

// C is the global configuration instance.
var C Config

// mu protects concurrent access to C during hot-reload.
var mu sync.RWMutex

var (
	watcherMu       sync.Mutex
	watcherActive   bool
	watcherCtx      context.Context
	watcherCancel   context.CancelFunc
	currentCallback ReloadCallback
)

// ReloadCallback is called when the configuration is hot-reloaded. Only
// the data-file paths are expected to change at runtime: a live engine's
// InitialAmp/PreventDistortion are fixed at construction and only change
// through an explicit Reset call.
type ReloadCallback func(old, new Config)

// Load reads configuration from file and environment, populating C.
func Load() error {
	viper.SetConfigName("contactsound")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.contactsound")

	viper.SetDefault("InitialAmp", 0.5)
	viper.SetDefault("PreventDistortion", true)
	viper.SetDefault("Logging", true)
	viper.SetDefault("FloorMaterial", "stone")
	viper.SetDefault("FloorSize", 3)
	viper.SetDefault("FloorBounciness", 0.1)
	viper.SetDefault("FloorResonance", 0.4)
	viper.SetDefault("MaxScrapeSeconds", 5.0)
	viper.SetDefault("MaterialDataPath", "")
	viper.SetDefault("SurfaceDataPath", "")
	viper.SetDefault("CatalogPath", "")
	viper.SetDefault("OverridesPath", "")
	viper.SetDefault("StorePath", "contactsound.db")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return viper.Unmarshal(&C)
}

// Save writes the current configuration to file.
func Save() error {
	mu.RLock()
	defer mu.RUnlock()

	viper.Set("InitialAmp", C.InitialAmp)
	viper.Set("PreventDistortion", C.PreventDistortion)
	viper.Set("Logging", C.Logging)
	viper.Set("FloorMaterial", C.FloorMaterial)
	viper.Set("FloorSize", C.FloorSize)
	viper.Set("FloorBounciness", C.FloorBounciness)
	viper.Set("FloorResonance", C.FloorResonance)
	viper.Set("MaxScrapeSeconds", C.MaxScrapeSeconds)
	viper.Set("MaterialDataPath", C.MaterialDataPath)
	viper.Set("SurfaceDataPath", C.SurfaceDataPath)
	viper.Set("CatalogPath", C.CatalogPath)
	viper.Set("OverridesPath", C.OverridesPath)
	viper.Set("StorePath", C.StorePath)

	return viper.WriteConfig()
}

// Watch starts watching the config file for changes and calls the
// callback on reload. Returns a stop function to cancel watching. Only
// one watcher can be active at a time; calling Watch again replaces the
// callback but reuses the same underlying file watcher.
func Watch(callback ReloadCallback) (stop func(), err error) {
	watcherMu.Lock()
	defer watcherMu.Unlock()

	if !watcherActive {
		ctx, cancel := context.WithCancel(context.Background())
		watcherCtx = ctx
		watcherCancel = cancel
		currentCallback = callback
		watcherActive = true

		viper.WatchConfig()
		viper.OnConfigChange(func(e fsnotify.Event) {
			watcherMu.Lock()
			cb := currentCallback
			ctx := watcherCtx
			watcherMu.Unlock()

			if ctx != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
			}

			mu.Lock()
			old := C
			var newCfg Config
			if err := viper.Unmarshal(&newCfg); err == nil {
				C = newCfg
				mu.Unlock()
				if cb != nil {
					cb(old, newCfg)
				}
			} else {
				mu.Unlock()
			}
		})
	} else {
		currentCallback = callback
	}

	return func() {
		watcherMu.Lock()
		defer watcherMu.Unlock()
		if watcherCancel != nil {
			watcherCancel()
			watcherCancel = nil
			watcherCtx = nil
		}
		watcherActive = false
		currentCallback = nil
	}, nil
}

// Get returns a copy of the current config safely.
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return C
}

// Set updates the config safely.
func Set(cfg Config) {
	mu.Lock()
	C = cfg
	mu.Unlock()
}
