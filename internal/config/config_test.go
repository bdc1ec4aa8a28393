package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Terrain)
	}{
		{"prec", func(c *Terrain) { c.Prec = 0 }},
		{"chunk size", func(c *Terrain) { c.ChunkSize = 0 }},
		{"max height", func(c *Terrain) { c.MaxHeight = -1 }},
		{"world scale", func(c *Terrain) { c.WorldScale = 0 }},
		{"levels", func(c *Terrain) { c.LODLevels = 0 }},
		{"lod scale", func(c *Terrain) { c.LODScale = 1 }},
		{"range", func(c *Terrain) { c.Range = 0 }},
		{"min range", func(c *Terrain) { c.MinRange = 0 }},
		{"schedule", func(c *Terrain) { c.RangeSchedule = "spiral" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLevelRangeSchedules(t *testing.T) {
	c := Default()
	want := []int{14, 7, 4, 3, 2}
	for i, w := range want {
		if got := c.LevelRange(i); got != w {
			t.Errorf("divide: LevelRange(%d) = %d, want %d", i, got, w)
		}
	}
	if got := c.LevelRange(20); got != c.MinRange {
		t.Errorf("divide: LevelRange(20) = %d, want floor %d", got, c.MinRange)
	}

	c.RangeSchedule = ScheduleConstant
	for i := range want {
		if got := c.LevelRange(i); got != 14 {
			t.Errorf("constant: LevelRange(%d) = %d, want 14", i, got)
		}
	}
}

func TestLevelScale(t *testing.T) {
	c := Default()
	want := []float32{64, 128, 256, 512, 1024}
	for i, w := range want {
		if got := c.LevelScale(i); got != w {
			t.Errorf("LevelScale(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	raw := "seed: 42\nrange: 10\nrange_schedule: constant\nstrict_queues: true\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Seed != 42 || c.Range != 10 || c.RangeSchedule != ScheduleConstant || !c.StrictQueues {
		t.Errorf("overrides not applied: %+v", c)
	}
	if c.Prec != 40 || c.MaxHeight != 270 {
		t.Errorf("defaults lost: %+v", c)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("prec: [1, 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Errorf("malformed yaml: expected error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("lod_scale: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(invalid); !errors.Is(err, ErrInvalid) {
		t.Errorf("invalid values: got %v, want ErrInvalid", err)
	}
}

func TestRenderSettingsClamp(t *testing.T) {
	SetFlySpeed(1)
	if got := GetFlySpeed(); got != 10 {
		t.Errorf("GetFlySpeed() = %v, want 10", got)
	}
	SetFlySpeed(400)

	SetFPSLimit(-5)
	if got := GetFPSLimit(); got != 0 {
		t.Errorf("GetFPSLimit() = %d, want 0", got)
	}
	SetFPSLimit(60)

	first := ToggleWireframe()
	if GetWireframe() != first || ToggleWireframe() == first {
		t.Errorf("ToggleWireframe did not flip the flag")
	}
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		in   string
		want int32
	}{
		{"0", 0},
		{"42", 42},
		{"-7", -7},
		{"2147483647", math.MaxInt32},
		{"-2147483648", math.MinInt32},
	}
	for _, tt := range tests {
		got, err := ParseSeed(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseSeed(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}

	for _, in := range []string{"", "abc", "1.5", "2147483648", "-2147483649"} {
		if _, err := ParseSeed(in); !errors.Is(err, ErrInvalid) {
			t.Errorf("ParseSeed(%q) error = %v, want ErrInvalid", in, err)
		}
	}
}
