package mpmq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig_Defaults(t *testing.T) {
	cfg := defaultConfig()
	cfg.Name = "fn"

	require.NoError(t, validateConfig(&cfg))
	assert.Equal(t, []Record{{}}, cfg.ProcessData)
	assert.Equal(t, 1, cfg.ProcessesToStart)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, CallStylePositional, cfg.CallStyle)
	assert.NotNil(t, cfg.Observer)
	assert.NotNil(t, cfg.Logger)
	assert.NotNil(t, cfg.Metrics)
}

func TestValidateConfig_ProcessesToStart(t *testing.T) {
	t.Run("defaults to len of process data", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Name = "fn"
		cfg.ProcessData = []Record{{}, {}, {}}
		require.NoError(t, validateConfig(&cfg))
		assert.Equal(t, 3, cfg.ProcessesToStart)
	})

	t.Run("capped at len of process data", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Name = "fn"
		cfg.ProcessData = []Record{{}, {}}
		cfg.ProcessesToStart = 10
		require.NoError(t, validateConfig(&cfg))
		assert.Equal(t, 2, cfg.ProcessesToStart)
	})
}

func TestValidateConfig_EmptyProcessDataStaysEmpty(t *testing.T) {
	cfg := defaultConfig()
	cfg.Name = "fn"
	cfg.ProcessData = []Record{}
	require.NoError(t, validateConfig(&cfg))
	assert.Empty(t, cfg.ProcessData)
}

func TestValidateConfig_Invalid(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		cfg := defaultConfig()
		require.ErrorIs(t, validateConfig(&cfg), ErrInvalidConfig)
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Name = "fn"
		cfg.Timeout = -time.Second
		require.ErrorIs(t, validateConfig(&cfg), ErrInvalidConfig)
	})
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New("")
	require.ErrorIs(t, err, ErrInvalidConfig)
}
