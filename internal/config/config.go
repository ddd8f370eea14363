package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"wall-planner/coverage"
	"wall-planner/internal/maskio"
)

// Defaults used when a field is omitted from the configuration file.
const (
	DefaultAddr         = ":8080"
	DefaultGap          = 30
	DefaultAllowCaution = true
	DefaultMaxGap       = 100
	DefaultMinGap       = 5

	// DefaultMaxPixels admits masks up to 4096x4096.
	DefaultMaxPixels      = 1 << 24
	DefaultMaxStoredPlans = 100
)

// Config is the planner service configuration. Every field is optional;
// the Get* accessors supply defaults for missing values.
type Config struct {
	Addr                 *string  `json:"addr,omitempty"`
	Gap                  *int     `json:"gap,omitempty"`
	MinGap               *int     `json:"min_gap,omitempty"`
	MaxGap               *int     `json:"max_gap,omitempty"`
	AllowCaution         *bool    `json:"allow_caution,omitempty"`
	ExactNodes           *int     `json:"exact_nodes,omitempty"`
	OffSurfaceCost       *float64 `json:"off_surface_cost,omitempty"`
	LargestComponentOnly *bool    `json:"largest_component_only,omitempty"`
	MaskThreshold        *int     `json:"mask_threshold,omitempty"`
	OutputDir            *string  `json:"output_dir,omitempty"`
	MaxPixels            *int     `json:"max_pixels,omitempty"`
	MaxStoredPlans       *int     `json:"max_stored_plans,omitempty"`
}

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. Fields omitted from the file keep
// their defaults, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that every set field is within range.
func (c *Config) Validate() error {
	minGap, maxGap := c.GetMinGap(), c.GetMaxGap()
	if minGap <= 0 {
		return fmt.Errorf("min_gap must be positive, got %d", minGap)
	}
	if maxGap < minGap {
		return fmt.Errorf("max_gap %d below min_gap %d", maxGap, minGap)
	}
	if gap := c.GetGap(); gap < minGap || gap > maxGap {
		return fmt.Errorf("gap %d outside [%d,%d]", gap, minGap, maxGap)
	}
	if n := c.GetExactNodes(); n < 1 || n > coverage.ExactLimit {
		return fmt.Errorf("exact_nodes must be in [1,%d], got %d", coverage.ExactLimit, n)
	}
	if cost := c.GetOffSurfaceCost(); cost <= coverage.SurfaceCost {
		return fmt.Errorf("off_surface_cost must exceed %g, got %g", coverage.SurfaceCost, cost)
	}
	if t := c.GetMaskThreshold(); t < 0 || t > 255 {
		return fmt.Errorf("mask_threshold must be in [0,255], got %d", t)
	}
	if n := c.GetMaxPixels(); n < 1 || n > coverage.MaxMaskPixels {
		return fmt.Errorf("max_pixels must be in [1,%d], got %d", coverage.MaxMaskPixels, n)
	}
	if n := c.GetMaxStoredPlans(); n < 1 {
		return fmt.Errorf("max_stored_plans must be positive, got %d", n)
	}
	return nil
}

// CheckGap reports whether a per-request gap is acceptable. Small gaps
// grow the waypoint count quadratically, so callers are bounded here
// rather than in the planner.
func (c *Config) CheckGap(gap int) error {
	if gap < c.GetMinGap() || gap > c.GetMaxGap() {
		return fmt.Errorf("gap %d outside [%d,%d]", gap, c.GetMinGap(), c.GetMaxGap())
	}
	return nil
}

// CheckSize reports whether a requested mask size is within max_pixels.
func (c *Config) CheckSize(width, height int) error {
	return coverage.CheckSize(width, height, c.GetMaxPixels())
}

// PlannerOptions builds coverage options from the configuration.
func (c *Config) PlannerOptions() coverage.Options {
	return coverage.Options{
		ExactNodes:           c.GetExactNodes(),
		OffSurfaceCost:       c.GetOffSurfaceCost(),
		LargestComponentOnly: c.GetLargestComponentOnly(),
	}
}

func (c *Config) GetAddr() string {
	if c.Addr == nil {
		return DefaultAddr
	}
	return *c.Addr
}

func (c *Config) GetGap() int {
	if c.Gap == nil {
		return DefaultGap
	}
	return *c.Gap
}

func (c *Config) GetMinGap() int {
	if c.MinGap == nil {
		return DefaultMinGap
	}
	return *c.MinGap
}

func (c *Config) GetMaxGap() int {
	if c.MaxGap == nil {
		return DefaultMaxGap
	}
	return *c.MaxGap
}

func (c *Config) GetAllowCaution() bool {
	if c.AllowCaution == nil {
		return DefaultAllowCaution
	}
	return *c.AllowCaution
}

func (c *Config) GetExactNodes() int {
	if c.ExactNodes == nil {
		return coverage.ExactLimit
	}
	return *c.ExactNodes
}

func (c *Config) GetOffSurfaceCost() float64 {
	if c.OffSurfaceCost == nil {
		return coverage.DefaultOffSurfaceCost
	}
	return *c.OffSurfaceCost
}

func (c *Config) GetLargestComponentOnly() bool {
	return c.LargestComponentOnly != nil && *c.LargestComponentOnly
}

func (c *Config) GetMaskThreshold() int {
	if c.MaskThreshold == nil {
		return maskio.DefaultThreshold
	}
	return *c.MaskThreshold
}

// GetOutputDir returns the directory plans are saved to, or "" to skip
// saving.
func (c *Config) GetOutputDir() string {
	if c.OutputDir == nil {
		return ""
	}
	return *c.OutputDir
}

func (c *Config) GetMaxPixels() int {
	if c.MaxPixels == nil {
		return DefaultMaxPixels
	}
	return *c.MaxPixels
}

// GetMaxStoredPlans returns how many plans the server keeps for
// retrieval before evicting the oldest.
func (c *Config) GetMaxStoredPlans() int {
	if c.MaxStoredPlans == nil {
		return DefaultMaxStoredPlans
	}
	return *c.MaxStoredPlans
}
