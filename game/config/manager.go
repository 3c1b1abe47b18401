package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/fogmaze/game/engine"
	"github.com/wricardo/fogmaze/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = engine.ErrInvalidConfig
)

// Manager loads maze presets from a directory of JSON files and caches them.
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

var _ service.ConfigManager = (*Manager)(nil)

// NewManager creates a preset manager over configDir, which must exist.
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}
	m.defaultConfig = m.pickDefault()
	return m, nil
}

func presetFile(name string) string {
	if strings.HasSuffix(name, ".json") {
		return name
	}
	return name + ".json"
}

// LoadConfig loads a preset by name, with or without the .json suffix.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// another goroutine may have loaded it meanwhile
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, presetFile(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, name, err)
	}
	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	m.configs[name] = &config
	return &config, nil
}

// ListConfigs describes every valid preset in the directory, sorted by file
// name. Invalid files are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		config, err := m.LoadConfig(id)
		if err != nil {
			continue
		}
		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Rows:        config.Rows,
			Cols:        config.Cols,
			RandomSize:  config.RandomSize,
		})
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Filename < configs[j].Filename })
	return configs, nil
}

// GetDefault returns the preset new sessions use when none is selected.
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached presets so edits on disk are picked up.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	def := m.pickDefault()
	m.mu.Lock()
	m.defaultConfig = def
	m.mu.Unlock()
}

// pickDefault prefers the classic preset, then the first valid file, then a
// built-in preset.
func (m *Manager) pickDefault() *engine.GameConfig {
	if config, err := m.LoadConfig(DefaultPreset); err == nil {
		return config
	}
	configs, err := m.ListConfigs()
	if err != nil || len(configs) == 0 {
		return engine.DefaultConfig()
	}
	config, err := m.LoadConfig(configs[0].ConfigID)
	if err != nil {
		return engine.DefaultConfig()
	}
	return config
}

// SaveConfig validates config and writes it as <name>.json.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: bad preset name %q", ErrInvalidConfig, name)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.configDir, presetFile(name)), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()
	return nil
}

// Count reports how many presets are cached.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
