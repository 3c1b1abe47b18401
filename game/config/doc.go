// Package config provides process settings and maze presets for fogmaze.
//
// Settings:
//
// FromEnv reads FOGMAZE_HOST, FOGMAZE_PORT, FOGMAZE_MAX_SESSIONS,
// FOGMAZE_POLL_INTERVAL, FOGMAZE_PRESET, FOGMAZE_CONFIG_DIR, FOGMAZE_VIEWPORT and
// FOGMAZE_IDLE_TIMEOUT, after LoadDotEnv has merged an optional .env file.
// Out-of-range ports fall back to 4434 and roster sizes are clamped to 1..6.
//
// Presets:
//
// A preset is a JSON file in the configs directory:
//
//	{
//	  "name": "Classic",
//	  "description": "10x10 maze",
//	  "rows": 10,
//	  "cols": 10,
//	  "random_size": false,
//	  "messages": {"welcome": "...", "exit_found": "..."}
//	}
//
// With random_size every session draws each dimension from [n/2, n]. An
// optional integer "seed" makes every session's maze identical.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	sessions, err := session.NewManager(session.Config{
//		Factory: manager.EngineFactory("hard"),
//	})
package config
