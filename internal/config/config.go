// Package config loads memsim's cache geometries, address ranges, log
// path and activity-log mode from defaults, an optional HuJSON file, CLI
// flags, and legacy positional arguments, in that precedence order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/memsim/internal/sim"
)

// ConfigFileName is the default config file looked up in the working
// directory when --config is not given.
const ConfigFileName = "memsim.hujson"

// Default geometries and ranges, matching spec.md section 6.
const (
	DefaultInstrSets = 16384
	DefaultInstrWays = 2
	DefaultDataSets  = 16384
	DefaultDataWays  = 4
	DefaultLineSize  = 64
)

var (
	// DefaultInstrRange is the default instruction address range.
	DefaultInstrRange = sim.AddrRange{Low: 0x00000000, High: 0x00FFFFFF}
	// DefaultDataRange is the default data address range.
	DefaultDataRange = sim.AddrRange{Low: 0x01000000, High: 0xFFFFFFFF}
)

// fileConfig is the shape of the optional HuJSON config file. Every
// field is optional; a zero value means "not set by this layer".
type fileConfig struct {
	InstrSets  uint32 `json:"instr_sets,omitempty"`  //nolint:tagliatelle // snake_case for config file
	InstrWays  uint32 `json:"instr_ways,omitempty"`  //nolint:tagliatelle
	DataSets   uint32 `json:"data_sets,omitempty"`   //nolint:tagliatelle
	DataWays   uint32 `json:"data_ways,omitempty"`   //nolint:tagliatelle
	LineSize   uint32 `json:"line_size,omitempty"`   //nolint:tagliatelle
	InstrRange string `json:"instr_range,omitempty"` //nolint:tagliatelle
	DataRange  string `json:"data_range,omitempty"`  //nolint:tagliatelle
	Log        string `json:"log,omitempty"`
	Mode       int    `json:"mode,omitempty"`
}

// Config is the fully resolved, validated simulator configuration.
type Config struct {
	TracePath string

	InstrSets uint32
	InstrWays uint32
	DataSets  uint32
	DataWays  uint32
	LineSize  uint32

	InstrRange sim.AddrRange
	DataRange  sim.AddrRange

	LogPath string
	Mode    sim.LogMode
}

// Overrides are the values parsed from CLI flags and legacy positional
// arguments. A pointer field left nil means "not set at this layer";
// the layer below it is left untouched.
type Overrides struct {
	TracePath *string

	InstrSets *uint32
	InstrWays *uint32
	DataSets  *uint32
	DataWays  *uint32
	LineSize  *uint32

	InstrRange *sim.AddrRange
	DataRange  *sim.AddrRange

	LogPath *string
	Mode    *int
}

// Default returns the built-in defaults (spec.md section 6), before any
// config file or CLI overrides are applied.
func Default() Config {
	return Config{
		InstrSets:  DefaultInstrSets,
		InstrWays:  DefaultInstrWays,
		DataSets:   DefaultDataSets,
		DataWays:   DefaultDataWays,
		LineSize:   DefaultLineSize,
		InstrRange: DefaultInstrRange,
		DataRange:  DefaultDataRange,
		Mode:       sim.ModeCounters,
	}
}

// Load resolves a Config with the precedence order described in
// SPEC_FULL.md's Configuration section: defaults, then an optional
// HuJSON config file (configPath, or ConfigFileName in workDir if
// configPath is empty and the file exists), then flags and positional
// overrides layered on top, then validation.
func Load(workDir, configPath string, overrides Overrides) (Config, error) {
	cfg := Default()

	fileCfg, loadedPath, err := loadConfigFile(workDir, configPath)
	if err != nil {
		return Config{}, err
	}

	if loadedPath != "" {
		applyFileConfig(&cfg, fileCfg)
	}

	if err := applyOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadConfigFile(workDir, configPath string) (fileConfig, string, error) {
	mustExist := configPath != ""

	path := configPath
	if path == "" {
		path = filepath.Join(workDir, ConfigFileName)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled, like the teacher's config loader
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return fileConfig{}, "", nil
		}

		return fileConfig{}, "", fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, "", fmt.Errorf("%w %s: invalid HuJSON: %w", ErrConfigInvalid, path, err)
	}

	var fc fileConfig

	if err := json.Unmarshal(standardized, &fc); err != nil {
		return fileConfig{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return fc, path, nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.InstrSets != 0 {
		cfg.InstrSets = fc.InstrSets
	}

	if fc.InstrWays != 0 {
		cfg.InstrWays = fc.InstrWays
	}

	if fc.DataSets != 0 {
		cfg.DataSets = fc.DataSets
	}

	if fc.DataWays != 0 {
		cfg.DataWays = fc.DataWays
	}

	if fc.LineSize != 0 {
		cfg.LineSize = fc.LineSize
	}

	if fc.InstrRange != "" {
		if r, err := parseRange(fc.InstrRange); err == nil {
			cfg.InstrRange = r
		}
	}

	if fc.DataRange != "" {
		if r, err := parseRange(fc.DataRange); err == nil {
			cfg.DataRange = r
		}
	}

	if fc.Log != "" {
		cfg.LogPath = fc.Log
	}

	if fc.Mode != 0 {
		cfg.Mode = sim.LogMode(fc.Mode)
	}
}

func applyOverrides(cfg *Config, o Overrides) error {
	if o.TracePath != nil {
		cfg.TracePath = *o.TracePath
	}

	if o.InstrSets != nil {
		cfg.InstrSets = *o.InstrSets
	}

	if o.InstrWays != nil {
		cfg.InstrWays = *o.InstrWays
	}

	if o.DataSets != nil {
		cfg.DataSets = *o.DataSets
	}

	if o.DataWays != nil {
		cfg.DataWays = *o.DataWays
	}

	if o.LineSize != nil {
		cfg.LineSize = *o.LineSize
	}

	if o.InstrRange != nil {
		cfg.InstrRange = *o.InstrRange
	}

	if o.DataRange != nil {
		cfg.DataRange = *o.DataRange
	}

	if o.LogPath != nil {
		cfg.LogPath = *o.LogPath
	}

	if o.Mode != nil {
		cfg.Mode = sim.LogMode(*o.Mode)
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.TracePath == "" {
		return ErrTracePathRequired
	}

	if cfg.Mode != sim.ModeCounters && cfg.Mode != sim.ModeVerbose {
		return fmt.Errorf("%w: %d", ErrInvalidMode, cfg.Mode)
	}

	if _, err := sim.NewGeometry(cfg.LineSize, cfg.InstrSets, cfg.InstrWays); err != nil {
		return fmt.Errorf("instruction cache: %w", err)
	}

	if _, err := sim.NewGeometry(cfg.LineSize, cfg.DataSets, cfg.DataWays); err != nil {
		return fmt.Errorf("data cache: %w", err)
	}

	if cfg.InstrRange.Overlaps(cfg.DataRange) {
		return fmt.Errorf("%w: instruction range %x-%x, data range %x-%x",
			sim.ErrRangesOverlap, cfg.InstrRange.Low, cfg.InstrRange.High, cfg.DataRange.Low, cfg.DataRange.High)
	}

	return nil
}

// BuildGeometries constructs the instruction and data cache geometries
// described by cfg. It assumes cfg has already been validated by Load.
func BuildGeometries(cfg Config) (instr, data sim.Geometry, err error) {
	instr, err = sim.NewGeometry(cfg.LineSize, cfg.InstrSets, cfg.InstrWays)
	if err != nil {
		return sim.Geometry{}, sim.Geometry{}, fmt.Errorf("instruction cache: %w", err)
	}

	data, err = sim.NewGeometry(cfg.LineSize, cfg.DataSets, cfg.DataWays)
	if err != nil {
		return sim.Geometry{}, sim.Geometry{}, fmt.Errorf("data cache: %w", err)
	}

	return instr, data, nil
}
