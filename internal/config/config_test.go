package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), ".env")

	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, "data", cfg.WorkDir)
	assert.Equal(t, 64, cfg.MaxUploadMB)
	assert.True(t, cfg.DayFirst)
	assert.False(t, cfg.JoinContinuations)
	assert.Equal(t, "127.0.0.1:5200", cfg.Addr())
	assert.Equal(t, int64(64<<20), cfg.MaxUploadBytes())
}

func TestLoad_FileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WORK_DIR=/tmp/wa\nJOIN_CONTINUATIONS=true\nMAX_UPLOAD_MB=8\n"), 0o644))
	t.Setenv("PORT", "9000")
	t.Setenv("DAY_FIRST", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/wa", cfg.WorkDir)
	assert.True(t, cfg.JoinContinuations)
	assert.False(t, cfg.DayFirst)
	assert.Equal(t, 8, cfg.MaxUploadMB)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
}

func TestSavePasswordHash(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), ".env")
	_, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, SavePasswordHash("hash"))
	assert.Equal(t, "hash", PasswordHash())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "=hash")
}
