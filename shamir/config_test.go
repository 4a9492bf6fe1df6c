package shamir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/sharekit/xconfig"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 1024*1024, config.ChunkSize)
	assert.Equal(t, ModeSequential, config.Mode)
	assert.False(t, config.Compression)
	assert.True(t, config.IntegrityCheck)
	assert.NoError(t, config.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "default", config: DefaultConfig()},
		{name: "empty mode", config: Config{ChunkSize: 1}},
		{name: "parallel", config: Config{ChunkSize: 1, Mode: ModeParallel}},
		{name: "zero chunk", config: Config{Mode: ModeSequential}, wantErr: true},
		{name: "negative chunk", config: Config{ChunkSize: -1}, wantErr: true},
		{name: "unknown mode", config: Config{ChunkSize: 1, Mode: "fast"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), config)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shamir.yaml")
		require.NoError(t, os.WriteFile(path, []byte("chunk_size: 4096\nmode: parallel\ncompression: true\n"), 0o600))

		config, err := LoadConfig(xconfig.WithFiles(path))
		require.NoError(t, err)

		assert.Equal(t, Config{ChunkSize: 4096, Mode: ModeParallel, Compression: true, IntegrityCheck: true}, config)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shamir.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"chunk_size": 4096}`), 0o600))

		t.Setenv("SHAMIR_CHUNK_SIZE", "512")
		t.Setenv("SHAMIR_INTEGRITY_CHECK", "false")

		config, err := LoadConfig(xconfig.WithFiles(path), xconfig.WithEnv("SHAMIR"))
		require.NoError(t, err)

		assert.Equal(t, 512, config.ChunkSize)
		assert.False(t, config.IntegrityCheck)
	})

	t.Run("invalid value", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shamir.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mode: turbo\n"), 0o600))

		_, err := LoadConfig(xconfig.WithFiles(path))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("unknown key in strict mode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shamir.yaml")
		require.NoError(t, os.WriteFile(path, []byte("chunk: 1\n"), 0o600))

		_, err := LoadConfig(xconfig.WithFiles(path), xconfig.WithStrict())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}
