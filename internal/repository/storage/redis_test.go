package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/testing/suite"
)

func TestNewRedisStorage(t *testing.T) {
	t.Run("Connects to a live server", func(t *testing.T) {
		ctx, st := suite.New(t)

		// When: connecting to the suite container
		redisStorage, err := NewRedisStorage(ctx, st.Redis.Options().Addr, "", 0)

		// Then: the connection answers and closes cleanly
		require.NoError(t, err)
		assert.NoError(t, redisStorage.Connection.Ping(ctx).Err())
		assert.NoError(t, redisStorage.Close())
	})

	t.Run("Fails fast on a dead address", func(t *testing.T) {
		ctx, _ := suite.New(t)

		redisStorage, err := NewRedisStorage(ctx, "127.0.0.1:1", "", 0)

		require.Error(t, err)
		assert.Nil(t, redisStorage)
	})
}
