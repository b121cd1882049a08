package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackedStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStoreWithClient(client), mr
}

func TestNewStore_EmptyURLDisablesCache(t *testing.T) {
	store := NewStore("")
	assert.False(t, store.Enabled())
}

func TestNewStore_BadURLDisablesCache(t *testing.T) {
	store := NewStore("not a redis url")
	assert.False(t, store.Enabled())
}

func TestDisabledStore_ReadsMissWritesReportFalse(t *testing.T) {
	store := NewStore("")
	ctx := context.Background()

	_, ok := store.Get(ctx, "tenants:no_filters")
	assert.False(t, ok)

	var out []string
	assert.False(t, store.GetJSON(ctx, "tenants:no_filters", &out))

	assert.False(t, store.SetJSON(ctx, "tenants:no_filters", []string{"a"}, TTLTenants))
	assert.False(t, store.SetBatch(ctx, map[string]any{"k": "v"}, TTLTenants))
	assert.Nil(t, store.ScanPrefix(ctx, "property"))
	assert.NoError(t, store.Close())
}

func TestSetBatch_EmptyEntriesReportFalse(t *testing.T) {
	store := NewStore("")
	assert.False(t, store.SetBatch(context.Background(), nil, TTLTasks))
}

func TestSetJSON_RetrievableUntilTTLExpires(t *testing.T) {
	store, mr := newBackedStore(t)
	ctx := context.Background()

	key := DeriveKey("tasks", nil)
	require.True(t, store.SetJSON(ctx, key, []string{"a", "b"}, TTLTasks))

	var out []string
	require.True(t, store.GetJSON(ctx, key, &out))
	assert.Equal(t, []string{"a", "b"}, out)

	mr.FastForward(TTLTasks - time.Second)
	require.True(t, store.GetJSON(ctx, key, &out))

	mr.FastForward(2 * time.Second)
	assert.False(t, store.GetJSON(ctx, key, &out))
}

func TestSetJSON_DoubleWriteLeavesSameState(t *testing.T) {
	store, mr := newBackedStore(t)
	ctx := context.Background()

	key := "tenants:no_filters"
	require.True(t, store.SetJSON(ctx, key, map[string]string{"name": "Jane Doe"}, TTLTenants))
	require.True(t, store.SetJSON(ctx, key, map[string]string{"name": "Jane Doe"}, TTLTenants))

	var out map[string]string
	require.True(t, store.GetJSON(ctx, key, &out))
	assert.Equal(t, "Jane Doe", out["name"])
	assert.Equal(t, TTLTenants, mr.TTL(key))
}

func TestSetBatch_EveryEntryCarriesTTL(t *testing.T) {
	store, mr := newBackedStore(t)
	ctx := context.Background()

	entries := map[string]any{
		"property:prop-1": map[string]string{"street1": "12 Elm St"},
		"property:prop-2": map[string]string{"street1": "9 Oak Ave"},
	}
	require.True(t, store.SetBatch(ctx, entries, TTLProperties))

	for key := range entries {
		var out map[string]string
		assert.True(t, store.GetJSON(ctx, key, &out), key)
		assert.Equal(t, TTLProperties, mr.TTL(key), key)
	}

	mr.FastForward(TTLProperties + time.Second)
	for key := range entries {
		var out map[string]string
		assert.False(t, store.GetJSON(ctx, key, &out), key)
	}
}

func TestScanPrefix_ReturnsOnlyPrefixedDocuments(t *testing.T) {
	store, _ := newBackedStore(t)
	ctx := context.Background()

	require.True(t, store.SetJSON(ctx, "property:prop-1", map[string]string{"street1": "12 Elm St"}, TTLProperties))
	require.True(t, store.SetJSON(ctx, "property:prop-2", map[string]string{"street1": "9 Oak Ave"}, TTLProperties))
	require.True(t, store.SetJSON(ctx, "tenants:no_filters", []string{}, TTLTenants))

	docs := store.ScanPrefix(ctx, "property")
	assert.Len(t, docs, 2)
}

func TestGet_RawBytesRoundTrip(t *testing.T) {
	store, _ := newBackedStore(t)
	ctx := context.Background()

	require.True(t, store.SetJSON(ctx, "leases:by_name", map[string]float64{"Jane Doe": 1234.5}, TTLLeases))

	raw, ok := store.Get(ctx, "leases:by_name")
	require.True(t, ok)
	assert.JSONEq(t, `{"Jane Doe":1234.5}`, string(raw))
}
