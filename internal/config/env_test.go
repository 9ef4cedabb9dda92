package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PDFBW_SIZE", "PDFBW_QUALITY", "PDFBW_BRIGHTNESS", "LOG_LEVEL", "LOG_FILE", "METRICS_TEXTFILE"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()

	assert.Equal(t, "original", cfg.Conversion.Size)
	assert.True(t, cfg.Conversion.PreserveOrientation)
	assert.Equal(t, 1.0, cfg.Conversion.Brightness)
	assert.Equal(t, 75, cfg.Conversion.Quality)
	assert.Equal(t, 3, cfg.Conversion.SamplePages)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
	assert.Empty(t, cfg.MetricsTextfile)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PDFBW_SIZE", "A4")
	t.Setenv("PDFBW_PRESERVE_ORIENTATION", "no")
	t.Setenv("PDFBW_CONTRAST", "1.4")
	t.Setenv("PDFBW_QUALITY", "not-a-number")
	t.Setenv("AXIOM_DATASET", "prod")
	t.Setenv("HTTP_TIMEOUT", "5s")

	cfg := FromEnv()
	assert.Equal(t, "A4", cfg.Conversion.Size)
	assert.False(t, cfg.Conversion.PreserveOrientation)
	assert.Equal(t, 1.4, cfg.Conversion.Contrast)
	assert.Equal(t, 75, cfg.Conversion.Quality)
	assert.Equal(t, "prod_pdfbw", cfg.Axiom.Dataset)
	assert.Equal(t, 5*time.Second, cfg.Source.HTTPTimeout)
}

func TestLoadReadsDotEnv(t *testing.T) {
	require.NoError(t, os.Unsetenv("PDFBW_SHARPNESS"))
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PDFBW_SHARPNESS=2.5\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("PDFBW_SHARPNESS")
	})

	cfg := Load()
	assert.Equal(t, 2.5, cfg.Conversion.Sharpness)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "YES", " on "} {
		assert.True(t, parseBool(s), s)
	}
	for _, s := range []string{"0", "false", "", "maybe"} {
		assert.False(t, parseBool(s), s)
	}
}
