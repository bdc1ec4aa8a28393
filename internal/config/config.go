package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid terrain config")

// Range schedules.
const (
	// ScheduleDivide shrinks the window of level i to Range/(i+1), floored at MinRange.
	ScheduleDivide = "divide"
	// ScheduleConstant gives every level the same window.
	ScheduleConstant = "constant"
)

// Terrain holds the world generation and LOD layout settings.
type Terrain struct {
	Seed int32 `yaml:"seed"`

	// Prec is the number of grid cells along one chunk edge.
	Prec int `yaml:"prec"`
	// ChunkSize is the half-extent of a level-0 chunk in noise space.
	ChunkSize float32 `yaml:"chunk_size"`
	MaxHeight float32 `yaml:"max_height"`
	// WorldScale stretches noise space into render space.
	WorldScale float32 `yaml:"world_scale"`

	LODLevels int `yaml:"lod_levels"`
	// LODScale is the chunk size multiplier between consecutive levels.
	LODScale      int    `yaml:"lod_scale"`
	Range         int    `yaml:"range"`
	MinRange      int    `yaml:"min_range"`
	RangeSchedule string `yaml:"range_schedule"`

	// StrictQueues panics instead of dropping entries when a regeneration
	// queue would overflow.
	StrictQueues bool `yaml:"strict_queues"`
}

// Default returns the stock terrain layout.
func Default() Terrain {
	return Terrain{
		Seed:          0,
		Prec:          40,
		ChunkSize:     64,
		MaxHeight:     270,
		WorldScale:    2.5,
		LODLevels:     5,
		LODScale:      2,
		Range:         14,
		MinRange:      2,
		RangeSchedule: ScheduleDivide,
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (Terrain, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate checks the settings for values the generator cannot work with.
func (t Terrain) Validate() error {
	switch {
	case t.Prec < 1:
		return fmt.Errorf("%w: prec must be positive, got %d", ErrInvalid, t.Prec)
	case t.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk_size must be positive, got %v", ErrInvalid, t.ChunkSize)
	case t.MaxHeight <= 0:
		return fmt.Errorf("%w: max_height must be positive, got %v", ErrInvalid, t.MaxHeight)
	case t.WorldScale <= 0:
		return fmt.Errorf("%w: world_scale must be positive, got %v", ErrInvalid, t.WorldScale)
	case t.LODLevels < 1:
		return fmt.Errorf("%w: lod_levels must be at least 1, got %d", ErrInvalid, t.LODLevels)
	case t.LODScale < 2:
		return fmt.Errorf("%w: lod_scale must be at least 2, got %d", ErrInvalid, t.LODScale)
	case t.Range < 1:
		return fmt.Errorf("%w: range must be positive, got %d", ErrInvalid, t.Range)
	case t.MinRange < 1:
		return fmt.Errorf("%w: min_range must be positive, got %d", ErrInvalid, t.MinRange)
	case t.RangeSchedule != ScheduleDivide && t.RangeSchedule != ScheduleConstant:
		return fmt.Errorf("%w: unknown range_schedule %q", ErrInvalid, t.RangeSchedule)
	}
	return nil
}

// LevelRange returns the window half-width, in chunks, of the given level.
func (t Terrain) LevelRange(level int) int {
	if t.RangeSchedule == ScheduleConstant {
		return max(t.Range, t.MinRange)
	}
	return max(t.Range/(level+1), t.MinRange)
}

// LevelScale returns the chunk half-extent of the given level in noise space.
func (t Terrain) LevelScale(level int) float32 {
	scale := t.ChunkSize
	for range level {
		scale *= float32(t.LODScale)
	}
	return scale
}

// ParseSeed parses a decimal world seed. Any int32, negative included, is
// accepted.
func ParseSeed(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: seed %q: %w", ErrInvalid, s, err)
	}
	return int32(v), nil
}
