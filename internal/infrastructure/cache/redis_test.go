package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"returns-desk/config"
)

func TestRedisCache_UnreachableServerIsAnError(t *testing.T) {
	c := NewRedisCache(&config.RedisConfig{Addr: "127.0.0.1:1", TTL: time.Minute}, zap.NewNop())
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.Error(t, c.Ping(ctx))

	item, err := c.GetItem(ctx, "42")
	require.Error(t, err)
	require.Nil(t, item)
}
