package cache

import (
	"testing"

	"github.com/signbridge/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// unreachable points at a port nothing listens on
var unreachable = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

func TestAssetURLCacheFactory(t *testing.T) {
	t.Run("redis disabled uses memory", func(t *testing.T) {
		f := NewAssetURLCacheFactory(config.RedisConfig{}, WithLogger(zaptest.NewLogger(t)))
		c, err := f.CreateCache()
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &InMemoryAssetURLCache{}, c)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		f := NewAssetURLCacheFactory(unreachable)
		c, err := f.CreateCache()
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &InMemoryAssetURLCache{}, c)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		f := NewAssetURLCacheFactory(unreachable, WithInMemoryFallback(false))
		_, err := f.CreateCache()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Redis required")
	})
}
