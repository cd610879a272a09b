package kensaku

import (
	"testing"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	assert.NilError(t, err)
	assert.DeepEqual(t, cfg, DefaultConfig())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("KENSAKU_INITIAL_CAPACITY", "64")
	t.Setenv("KENSAKU_CHUNK_SIZE", "16")
	t.Setenv("KENSAKU_LOG_LEVEL", "debug")
	t.Setenv("KENSAKU_PRETTY_LOG", "true")

	cfg, err := LoadConfig()
	assert.NilError(t, err)
	assert.Equal(t, cfg.InitialCapacity, 64)
	assert.Equal(t, cfg.ChunkSize, 16)
	assert.Equal(t, cfg.LogLevel, "debug")
	assert.Assert(t, cfg.PrettyLog)

	w := NewWorld(WithConfig(cfg), WithLogger(zerolog.Nop()))
	assert.Equal(t, w.chunkSize, 16)
}

func TestLoadConfigRejects(t *testing.T) {
	for name, env := range map[string][2]string{
		"chunk size":   {"KENSAKU_CHUNK_SIZE", "0"},
		"capacity":     {"KENSAKU_INITIAL_CAPACITY", "-1"},
		"log level":    {"KENSAKU_LOG_LEVEL", "chatty"},
		"not a number": {"KENSAKU_CHUNK_SIZE", "many"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := LoadConfig()
			assert.Assert(t, err != nil)
		})
	}
}

func TestWorldOptions(t *testing.T) {
	w := NewWorld(WithChunkSize(8), WithInitialCapacity(32), WithLogger(zerolog.Nop()))
	assert.Equal(t, w.chunkSize, 8)
	assert.Equal(t, cap(w.entities.metas), 32)

	// invalid sizes fall back to the defaults
	w = NewWorld(WithChunkSize(-3), WithLogger(zerolog.Nop()))
	assert.Equal(t, w.chunkSize, DefaultConfig().ChunkSize)

	w = NewWorld(WithPrettyLog(), WithConfig(Config{ChunkSize: 2, LogLevel: "warn"}))
	assert.Equal(t, w.Logger().GetLevel(), zerolog.WarnLevel)
}
