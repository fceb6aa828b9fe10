package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/echoflow/internal/opticalflow"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	if cfg.Scale == nil || *cfg.Scale != 0.5 {
		t.Errorf("Expected Scale 0.5, got %v", cfg.Scale)
	}
	if cfg.WindowSize == nil || *cfg.WindowSize != 5 {
		t.Errorf("Expected WindowSize 5, got %v", cfg.WindowSize)
	}
	if cfg.Background != nil || cfg.Threshold != nil || cfg.Gain != nil {
		t.Errorf("Expected preprocessing fields to be unset")
	}
	if cfg.TimeStep == nil || *cfg.TimeStep != "1s" {
		t.Errorf("Expected TimeStep '1s', got %v", cfg.TimeStep)
	}
	require.NoError(t, cfg.Validate())
}

func TestEmptyConfigGettersMatchDefaults(t *testing.T) {
	empty := EmptyTuningConfig()
	def := DefaultTuningConfig()

	if diff := cmp.Diff(def.TrackerConfig(64, 48), empty.TrackerConfig(64, 48)); diff != "" {
		t.Errorf("TrackerConfig mismatch (-default +empty):\n%s", diff)
	}
	if diff := cmp.Diff(def.VelocityOptions(), empty.VelocityOptions()); diff != "" {
		t.Errorf("VelocityOptions mismatch (-default +empty):\n%s", diff)
	}
	assert.Equal(t, def.GetGridSpacingM(), empty.GetGridSpacingM())
	assert.Equal(t, def.GetTimeStep(), empty.GetTimeStep())
}

func TestTrackerConfigMatchesEngineDefaults(t *testing.T) {
	got := EmptyTuningConfig().TrackerConfig(100, 80)
	want := opticalflow.DefaultConfig(100, 80)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TrackerConfig mismatch (-want +got):\n%s", diff)
	}

	want2 := opticalflow.DefaultVelocityOptions()
	if diff := cmp.Diff(want2, EmptyTuningConfig().VelocityOptions()); diff != "" {
		t.Errorf("VelocityOptions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("partial config keeps defaults", func(t *testing.T) {
		path := filepath.Join(tmpDir, "partial.json")
		content := `{"window_size": 7, "threshold": 0.5, "background": 0, "fill_gaps": true}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadTuningConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.GetWindowSize())
		assert.Equal(t, 0.5, cfg.GetScale())
		assert.True(t, cfg.GetFillGaps())

		opts := cfg.VelocityOptions()
		require.NotNil(t, opts.Threshold)
		require.NotNil(t, opts.Background)
		assert.Equal(t, float32(0.5), *opts.Threshold)
		assert.Equal(t, float32(0), *opts.Background)
		assert.Nil(t, opts.Gain)
		assert.Equal(t, 8, opts.Spacing)
	})

	t.Run("time step", func(t *testing.T) {
		path := filepath.Join(tmpDir, "step.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"time_step": "5m", "grid_spacing_m": 250}`), 0o644))

		cfg, err := LoadTuningConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, cfg.GetTimeStep())
		assert.Equal(t, 250.0, cfg.GetGridSpacingM())
	})

	t.Run("wrong extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
		_, err := LoadTuningConfig(path)
		assert.ErrorContains(t, err, ".json extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTuningConfig(filepath.Join(tmpDir, "missing.json"))
		assert.Error(t, err)
	})

	t.Run("too large", func(t *testing.T) {
		path := filepath.Join(tmpDir, "big.json")
		require.NoError(t, os.WriteFile(path, make([]byte, 1024*1024+1), 0o644))
		_, err := LoadTuningConfig(path)
		assert.ErrorContains(t, err, "too large")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"scale": `), 0o644))
		_, err := LoadTuningConfig(path)
		assert.ErrorContains(t, err, "parse")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{"scale too large", `{"scale": 1}`, "scale"},
		{"scale zero", `{"scale": 0}`, "scale"},
		{"negative levels", `{"levels": -1}`, "levels"},
		{"even window", `{"window_size": 4}`, "window_size"},
		{"unit window", `{"window_size": 1}`, "window_size"},
		{"zero iterations", `{"iterations": 0}`, "iterations"},
		{"zero poly_n", `{"poly_n": 0}`, "poly_n"},
		{"zero spacing", `{"spacing": 0}`, "spacing"},
		{"min frac above one", `{"min_frac_bins_for_avg": 1.5}`, "min_frac_bins_for_avg"},
		{"negative power", `{"idw_low_res_power": -1}`, "idw_low_res_power"},
		{"zero grid spacing", `{"grid_spacing_m": 0}`, "grid_spacing_m"},
		{"bad time step", `{"time_step": "soon"}`, "time_step"},
		{"negative time step", `{"time_step": "-1s"}`, "time_step"},
	}

	tmpDir := t.TempDir()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "case"+string(rune('a'+i))+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.json), 0o644))
			_, err := LoadTuningConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if diff := cmp.Diff(DefaultTuningConfig(), cfg); diff != "" {
		t.Errorf("defaults file drifted from DefaultTuningConfig (-want +got):\n%s", diff)
	}
}
