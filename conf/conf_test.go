package conf

import (
	"os"
	"path/filepath"
	"testing"

	zs "github.com/wgdzlh/zonalstats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "zonal.yaml")
	require.NoError(t, os.WriteFile(file, []byte("workers: 4\nburner: gdal\noutput: out.csv\n"), 0o644))

	t.Setenv(ENV_WORKERS, "6")
	t.Setenv(ENV_POLICY, "skip")
	c, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 6, c.Workers)
	assert.Equal(t, zs.BURNER_GDAL, c.Burner)
	assert.Equal(t, "out.csv", c.OutputPath)
	assert.Equal(t, "skip", c.Policy)
	assert.Empty(t, c.LogLevel)
	assert.Empty(t, c.VectorEncoding)

	opts, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, zs.Options{Workers: 6, Policy: zs.SkipOnError}, opts)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv(ENV_WORKERS, "many")
	_, err = Load("")
	assert.ErrorContains(t, err, ENV_WORKERS)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("ZONAL_MASK_DIR=/tmp/masks\n"), 0o644))
	t.Setenv(ENV_MASK_DIR, "")
	os.Unsetenv(ENV_MASK_DIR)

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env"), env))
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/masks", c.MaskDir)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Config)
		ok   bool
	}{
		{"default", func(*Config) {}, true},
		{"zero workers", func(c *Config) { c.Workers = 0 }, false},
		{"bad policy", func(c *Config) { c.Policy = "retry" }, false},
		{"bad burner", func(c *Config) { c.Burner = "opencv" }, false},
		{"upper format", func(c *Config) { c.OutputFormat = "XLSX" }, true},
		{"bad format", func(c *Config) { c.OutputFormat = "xml" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.edit(&c)
			if tc.ok {
				assert.NoError(t, c.Validate())
			} else {
				assert.Error(t, c.Validate())
			}
		})
	}
}
