// hot-reload.go: dynamic configuration with Argus integration
//
// SPDX-License-Identifier: MPL-2.0

package tinylfu

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// ReloadableSettings are the cache parameters HotConfig can change on a
// running Cache without reconstructing it. MaxSize and WindowRatio are
// recorded on every reload for observability but are NOT applied live —
// changing either of them changes the
// shape of the policy and store, which this cache does not rebuild in
// place.
type ReloadableSettings struct {
	MaxSize             int
	WindowRatio         float64
	ExpireAfterWrite    time.Duration
	ExpireAfterAccess   time.Duration
	RefreshAfterWrite   time.Duration
	MaintenanceInterval time.Duration
}

// reloadTarget is the narrow surface HotConfig needs from a Cache[K, V].
// Expressing it as an interface rather than parameterizing HotConfig itself
// over [K, V] lets one HotConfig watch a cache without the call site having
// to spell out its key/value types.
type reloadTarget interface {
	SetExpireAfterWrite(time.Duration)
	SetExpireAfterAccess(time.Duration)
	SetRefreshAfterWrite(time.Duration)
	SetMaintenanceInterval(time.Duration)
	wakeMaintenance()
}

var _ reloadTarget = (*Cache[string, any])(nil)

// HotConfig watches a configuration file with Argus and applies the
// reloadable subset of Config live to the cache it is attached to.
type HotConfig struct {
	cache   reloadTarget
	watcher *argus.Watcher
	mu      sync.RWMutex
	current ReloadableSettings

	// OnReload is called after configuration is successfully reloaded.
	// This callback is optional and must be fast and non-blocking.
	OnReload func(old, new ReloadableSettings)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(old, new ReloadableSettings)

	// Logger is not read by NewHotConfig or the reload path; setting it has
	// no effect.
	Logger Logger
}

// NewHotConfig creates a new hot-reloadable configuration wrapper for cache
// and starts watching configPath immediately.
//
// Example configuration file (YAML):
//
//	cache:
//	  max_size: 10000
//	  expire_after_write: "1h"
//	  expire_after_access: "10m"
//	  refresh_after_write: "5m"
//	  maintenance_interval: "1s"
//	  window_ratio: 0.01
//
// MaxSize and WindowRatio are parsed and reported through OnReload but are
// never applied to the running cache; only ExpireAfterWrite,
// ExpireAfterAccess, RefreshAfterWrite and MaintenanceInterval take effect
// without a restart.
func NewHotConfig[K comparable, V any](cache *Cache[K, V], opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	hc := &HotConfig{
		cache:    cache,
		OnReload: opts.OnReload,
		current: ReloadableSettings{
			MaxSize:             cache.cfg.MaxSize,
			WindowRatio:         cache.cfg.WindowRatio,
			ExpireAfterWrite:    time.Duration(cache.expireAfterWrite.Load()),
			ExpireAfterAccess:   time.Duration(cache.expireAfterAccess.Load()),
			RefreshAfterWrite:   time.Duration(cache.refreshAfterWrite.Load()),
			MaintenanceInterval: cache.cfg.MaintenanceInterval,
		},
	}

	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher

	return hc, nil
}

// Start begins watching the configuration file for changes.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// Current returns the most recently applied reloadable settings.
func (hc *HotConfig) Current() ReloadableSettings {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.current
}

// handleConfigChange is called by Argus when the watched file changes.
func (hc *HotConfig) handleConfigChange(configData map[string]interface{}) {
	hc.mu.Lock()
	old := hc.current
	next := hc.parseSettings(configData, old)
	hc.current = next
	hc.mu.Unlock()

	hc.applyChanges(old, next)

	if hc.OnReload != nil {
		hc.OnReload(old, next)
	}
}

func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

func parseDuration(value interface{}) (time.Duration, bool) {
	if str, ok := value.(string); ok {
		if d, err := time.ParseDuration(str); err == nil {
			return d, true
		}
	}
	return 0, false
}

func parseFloatInRange(value interface{}, min, max float64) (float64, bool) {
	if v, ok := value.(float64); ok {
		if v > min && v < max {
			return v, true
		}
	}
	return 0, false
}

// parseSettings extracts ReloadableSettings from Argus config data, falling
// back to prior on any field the file does not set.
func (hc *HotConfig) parseSettings(data map[string]interface{}, prior ReloadableSettings) ReloadableSettings {
	next := prior

	cacheSection, ok := data["cache"].(map[string]interface{})
	if !ok {
		if _, hasMaxSize := data["max_size"]; hasMaxSize {
			cacheSection = data
		} else {
			return next
		}
	}

	if maxSize, ok := parsePositiveInt(cacheSection["max_size"]); ok {
		next.MaxSize = maxSize
	}
	if ratio, ok := parseFloatInRange(cacheSection["window_ratio"], 0, 1); ok {
		next.WindowRatio = ratio
	}
	if d, ok := parseDuration(cacheSection["expire_after_write"]); ok {
		next.ExpireAfterWrite = d
	}
	if d, ok := parseDuration(cacheSection["expire_after_access"]); ok {
		next.ExpireAfterAccess = d
	}
	if d, ok := parseDuration(cacheSection["refresh_after_write"]); ok {
		next.RefreshAfterWrite = d
	}
	if d, ok := parseDuration(cacheSection["maintenance_interval"]); ok {
		next.MaintenanceInterval = d
	}

	return next
}

// applyChanges pushes the reloadable fields that changed onto the cache.
// MaxSize and WindowRatio are intentionally not applied here — see
// ReloadableSettings.
func (hc *HotConfig) applyChanges(old, new ReloadableSettings) {
	if new.ExpireAfterWrite != old.ExpireAfterWrite {
		hc.cache.SetExpireAfterWrite(new.ExpireAfterWrite)
	}
	if new.ExpireAfterAccess != old.ExpireAfterAccess {
		hc.cache.SetExpireAfterAccess(new.ExpireAfterAccess)
	}
	if new.RefreshAfterWrite != old.RefreshAfterWrite {
		hc.cache.SetRefreshAfterWrite(new.RefreshAfterWrite)
	}
	if new.MaintenanceInterval != old.MaintenanceInterval && new.MaintenanceInterval > 0 {
		hc.cache.SetMaintenanceInterval(new.MaintenanceInterval)
		hc.cache.wakeMaintenance()
	}
}
