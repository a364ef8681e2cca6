// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for simulation tuning constants.
//
// cmd/server passes these values to the packages that use them. The
// ResourceLimits, the spatial cell sizes and IdleConnTimeout are loaded
// but not read by any other package.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// SIMULATION TICK CONFIGURATION
// =============================================================================

// SimConfig holds fixed-step simulation timing.
type SimConfig struct {
	TickRateHz int `toml:"tick_rate_hz"` // simulation ticks per second (spec.md §4.1 default 30)
}

func defaultSim() SimConfig {
	return SimConfig{TickRateHz: 30}
}

// =============================================================================
// RESOURCE LIMITS (DoS protection / memory bounds)
// =============================================================================

// ResourceLimits controls hard caps on per-room entity and event counts.
type ResourceLimits struct {
	MaxPlayersPerRoom int `toml:"max_players_per_room"`
	MaxProjectiles    int `toml:"max_projectiles"`
	MaxZones          int `toml:"max_zones"`
	MaxTraps          int `toml:"max_traps"`
	MaxWards          int `toml:"max_wards"`
	MaxRooms          int `toml:"max_rooms"`
}

func defaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxPlayersPerRoom: 10,
		MaxProjectiles:    64,
		MaxZones:          32,
		MaxTraps:          16,
		MaxWards:          20,
		MaxRooms:          2000,
	}
}

// =============================================================================
// SERIALIZER / PRIORITIZER / RELIABLE QUEUE TUNING
// =============================================================================

// SerializerConfig controls per-viewer delta baseline staleness.
type SerializerConfig struct {
	StaleTickThreshold int `toml:"stale_tick_threshold"` // spec.md §4.6 default ≈2.4s @ 30Hz = 72 ticks
}

func defaultSerializer() SerializerConfig {
	return SerializerConfig{StaleTickThreshold: 72}
}

// PriorityConfig controls interest-management distance bands and cadence.
type PriorityConfig struct {
	CriticalDistance     float64 `toml:"critical_distance"`
	HighDistance         float64 `toml:"high_distance"`
	MediumDistance       float64 `toml:"medium_distance"`
	HighCadenceTicks     int     `toml:"high_cadence_ticks"`
	MediumCadenceTicks   int     `toml:"medium_cadence_ticks"`
	LowCadenceTicks      int     `toml:"low_cadence_ticks"`
	MaxTicksWithoutUpdate int    `toml:"max_ticks_without_update"`
}

func defaultPriority() PriorityConfig {
	return PriorityConfig{
		CriticalDistance:      500,
		HighDistance:          1000,
		MediumDistance:        1500,
		HighCadenceTicks:      2,
		MediumCadenceTicks:    5,
		LowCadenceTicks:       15,
		MaxTicksWithoutUpdate: 30, // ~1s @ 30Hz
	}
}

// ReliableConfig controls the per-player reliable event queue policy.
type ReliableConfig struct {
	RetryIntervalTicks int `toml:"retry_interval_ticks"` // spec.md §4.8 default 10
	MaxRetries         int `toml:"max_retries"`          // spec.md §4.8 default 10
	QueueCapacity      int `toml:"queue_capacity"`       // spec.md §4.8 default 100
}

func defaultReliable() ReliableConfig {
	return ReliableConfig{
		RetryIntervalTicks: 10,
		MaxRetries:         10,
		QueueCapacity:      100,
	}
}

// =============================================================================
// INPUT RATE LIMITS (spec.md §4.5, per input type, per second)
// =============================================================================

// InputRateLimits maps input type name to its per-second sliding-window cap.
type InputRateLimits struct {
	Limits  map[string]int `toml:"limits"`
	Default int            `toml:"default"`
}

func defaultInputRateLimits() InputRateLimits {
	return InputRateLimits{
		Default: 10,
		Limits: map[string]int{
			"MOVE":         20,
			"ATTACK_MOVE":  20,
			"TARGET_UNIT":  20,
			"STOP":         20,
			"ABILITY":      8,
			"LEVEL_UP":     5,
			"BUY_ITEM":     5,
			"SELL_ITEM":    5,
			"RECALL":       2,
			"PING":         5,
			"CHAT":         3,
			"PLACE_WARD":   3,
		},
	}
}

// =============================================================================
// SPATIAL CONFIGURATION
// =============================================================================

// SpatialConfig holds world bounds and spatial indexing cell sizes.
type SpatialConfig struct {
	WorldWidth        float64 `toml:"world_width"`
	WorldHeight       float64 `toml:"world_height"`
	GridCellSize      float64 `toml:"grid_cell_size"`
	FlowFieldCellSize float64 `toml:"flow_field_cell_size"`
}

func defaultSpatial() SpatialConfig {
	return SpatialConfig{
		WorldWidth:        16000,
		WorldHeight:       16000,
		GridCellSize:      500,
		FlowFieldCellSize: 150,
	}
}

// =============================================================================
// SERVER / GATEWAY CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP/WebSocket gateway settings.
type ServerConfig struct {
	Port            int    `toml:"port"`
	PlayersPerTeam  int    `toml:"players_per_team"`
	LogLevel        string `toml:"log_level"`
	IdleConnTimeout int    `toml:"idle_conn_timeout_seconds"`
}

func defaultServer() ServerConfig {
	return ServerConfig{
		Port:            8080,
		PlayersPerTeam:  1,
		LogLevel:        "info",
		IdleConnTimeout: 120,
	}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim        SimConfig
	Limits     ResourceLimits
	Serializer SerializerConfig
	Priority   PriorityConfig
	Reliable   ReliableConfig
	InputRates InputRateLimits
	Spatial    SpatialConfig
	Server     ServerConfig
}

// fileShape mirrors AppConfig for TOML decoding; only the fields an
// operator actually wants to override need appear in the file.
type fileShape struct {
	Sim        SimConfig        `toml:"sim"`
	Limits     ResourceLimits   `toml:"limits"`
	Serializer SerializerConfig `toml:"serializer"`
	Priority   PriorityConfig   `toml:"priority"`
	Reliable   ReliableConfig   `toml:"reliable"`
	InputRates InputRateLimits  `toml:"input_rates"`
	Spatial    SpatialConfig    `toml:"spatial"`
	Server     ServerConfig     `toml:"server"`
}

// Default returns the built-in configuration, before any file or
// environment overlay.
func Default() AppConfig {
	return AppConfig{
		Sim:        defaultSim(),
		Limits:     defaultLimits(),
		Serializer: defaultSerializer(),
		Priority:   defaultPriority(),
		Reliable:   defaultReliable(),
		InputRates: defaultInputRateLimits(),
		Spatial:    defaultSpatial(),
		Server:     defaultServer(),
	}
}

// Load returns the complete configuration: defaults, optionally
// overlaid by a TOML file named in ROOM_CONFIG_PATH, then overlaid by
// environment variables. Precedence matches SPEC_FULL.md §1: defaults
// < file < environment.
func Load() (AppConfig, error) {
	cfg := Default()

	if path := os.Getenv("ROOM_CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		f := fileShape{
			Sim: cfg.Sim, Limits: cfg.Limits, Serializer: cfg.Serializer, Priority: cfg.Priority,
			Reliable: cfg.Reliable, InputRates: cfg.InputRates, Spatial: cfg.Spatial, Server: cfg.Server,
		}
		if _, err := toml.Decode(string(data), &f); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
		overlayFromFile(&cfg, f)
	}

	cfg.Server = serverFromEnv(cfg.Server)
	return cfg, nil
}

func overlayFromFile(cfg *AppConfig, f fileShape) {
	if f.Sim.TickRateHz > 0 {
		cfg.Sim.TickRateHz = f.Sim.TickRateHz
	}
	if f.Limits.MaxPlayersPerRoom > 0 {
		cfg.Limits = f.Limits
	}
	if f.Serializer.StaleTickThreshold > 0 {
		cfg.Serializer = f.Serializer
	}
	if f.Priority.CriticalDistance > 0 {
		cfg.Priority = f.Priority
	}
	if f.Reliable.RetryIntervalTicks > 0 {
		cfg.Reliable = f.Reliable
	}
	if len(f.InputRates.Limits) > 0 {
		cfg.InputRates = f.InputRates
	}
	if f.Spatial.WorldWidth > 0 {
		cfg.Spatial = f.Spatial
	}
	if f.Server.Port > 0 {
		cfg.Server.Port = f.Server.Port
	}
	if f.Server.PlayersPerTeam > 0 {
		cfg.Server.PlayersPerTeam = f.Server.PlayersPerTeam
	}
	if f.Server.LogLevel != "" {
		cfg.Server.LogLevel = f.Server.LogLevel
	}
}

// serverFromEnv returns server configuration with the PORT,
// PLAYERS_PER_TEAM and LOG_LEVEL environment variable overrides.
func serverFromEnv(cfg ServerConfig) ServerConfig {
	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if ppt := getEnvInt("PLAYERS_PER_TEAM", 0); ppt > 0 {
		cfg.PlayersPerTeam = ppt
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
