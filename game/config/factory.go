package config

import (
	"github.com/wricardo/fogmaze/game/engine"
	"github.com/wricardo/fogmaze/game/session"
)

// EngineFactory builds engines from the named preset, or from the manager's
// default when preset is empty. The preset is looked up for every session, so
// SetDefault and RefreshCache take effect on the next connection.
func (m *Manager) EngineFactory(preset string) session.EngineFactory {
	return func() (engine.Engine, error) {
		cfg := m.GetDefault()
		if preset != "" {
			var err error
			if cfg, err = m.LoadConfig(preset); err != nil {
				return nil, err
			}
		}
		return engine.NewEngine(cfg)
	}
}
