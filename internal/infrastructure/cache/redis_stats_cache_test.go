package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsKey(t *testing.T) {
	assert.Equal(t, "review_stats:u1", statsKey("u1"))
}

func TestNewRedisClientParsesURL(t *testing.T) {
	client, err := NewRedisClient("redis://:pw@cache.internal:6380/2")
	require.NoError(t, err)
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = NewRedisClient("http://nope")
	assert.Error(t, err)
}
