package localcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReadMissingKey(t *testing.T) {
	cache, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	data, ok := cache.ReadAll("never-written")
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestCacheWriteReadRoundTrip(t *testing.T) {
	cache, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	cache.Write(KeyProducts, []byte(`[{"id":"1"}]`))

	data, ok := cache.ReadAll(KeyProducts)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, string(data))

	// overwrite replaces, never appends
	cache.Write(KeyProducts, []byte(`[]`))
	data, ok = cache.ReadAll(KeyProducts)
	require.True(t, ok)
	assert.Equal(t, `[]`, string(data))
}

func TestCacheRemove(t *testing.T) {
	cache, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	cache.Write(KeySettings, []byte(`{}`))
	cache.Remove(KeySettings)

	_, ok := cache.ReadAll(KeySettings)
	assert.False(t, ok)
}

func TestCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	cache, err := Open(dir)
	require.NoError(t, err)
	cache.Write(KeyOrders, []byte(`[{"id":"7"}]`))
	require.NoError(t, cache.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	data, ok := reopened.ReadAll(KeyOrders)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"7"}]`, string(data))
}

func TestBroadcasterDeliversWrites(t *testing.T) {
	cache, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	var gotOrigin, gotKey string
	var gotValue []byte
	require.NoError(t, cache.Broadcaster().Subscribe(func(origin, key string, value []byte) {
		gotOrigin, gotKey, gotValue = origin, key, value
	}))

	cache.Write(KeyUsers, []byte(`[]`))

	assert.Equal(t, cache.Origin(), gotOrigin)
	assert.Equal(t, KeyUsers, gotKey)
	assert.Equal(t, `[]`, string(gotValue))

	cache.Remove(KeyUsers)
	assert.Equal(t, KeyUsers, gotKey)
	assert.Nil(t, gotValue, "removal broadcasts a nil value")
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "cart/abc", SessionKey(KeyPrefixCart, "abc"))
	assert.Equal(t, "user/abc", SessionKey(KeyPrefixUser, "abc"))
}
