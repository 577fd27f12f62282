package container

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civitas/internal/config"
	"civitas/internal/datasource/memory"
	"civitas/internal/store"
	"civitas/pkg/logger"
)

func TestNew(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	tests := []struct {
		name        string
		config      *config.Config
		expectRedis bool
	}{
		{
			name: "Container with Redis configured",
			config: &config.Config{
				Environment: "test",
				RedisURL:    "redis://" + mr.Addr(),
			},
			expectRedis: true,
		},
		{
			name: "Container without Redis configured",
			config: &config.Config{
				Environment: "test",
				RedisURL:    "",
			},
			expectRedis: false,
		},
		{
			name: "Unreachable Redis degrades to no caching",
			config: &config.Config{
				Environment: "test",
				RedisURL:    "redis://:bad@[::1]:0",
			},
			expectRedis: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.New("error", "test")
			require.NoError(t, err)

			st := store.New(memory.New())

			c, err := New(tt.config, log, st)
			require.NoError(t, err)
			require.NotNil(t, c)

			assert.Equal(t, tt.expectRedis, c.HasRedis())
			assert.NotNil(t, c.Store)
			assert.NotNil(t, c.Ledger)
			assert.NotNil(t, c.Scoring)
			assert.NotNil(t, c.Comments)
		})
	}
}
