package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafer-esen/memtrans/errs"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsNonPowerOfTwoLineSize(t *testing.T) {
	cfg := Default()
	cfg.LineSize = 63
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Config))
}

func TestValidateRejectsZeroAssociativity(t *testing.T) {
	cfg := Default()
	cfg.Associativity = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonDivisibleCacheSize(t *testing.T) {
	cfg := Default()
	cfg.CacheSize = 100
	cfg.LineSize = 64
	cfg.Associativity = 1
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPowerOfTwoSetCount(t *testing.T) {
	cfg := Default()
	cfg.CacheSize = 64 * 3 // 3 sets, not a power of two
	cfg.LineSize = 64
	cfg.Associativity = 1
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyOutputPath(t *testing.T) {
	cfg := Default()
	cfg.OutputPath = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadOverlaysYAMLOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memtrans.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_size: 4096\nline_size: 32\nassociativity: 4\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.CacheSize)
	assert.Equal(t, 32, cfg.LineSize)
	assert.Equal(t, 4, cfg.Associativity)
	assert.Equal(t, 8, cfg.BusWidth) // untouched by the YAML doc, stays default
	assert.NoError(t, cfg.Validate())
}

func TestFromFlagsLeavesUnsetFieldsAtDefault(t *testing.T) {
	cfg := FromFlags(0, 0, 0, 0, true, "")
	want := Default()
	want.SimInstructions = true
	assert.Equal(t, want, cfg)
}
