package kvstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("local_transactions")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("local_transactions", []byte(`[{"id":"txn-1"}]`)))

	got, err := store.Get("local_transactions")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"txn-1"}]`, string(got))

	require.NoError(t, store.Delete("local_transactions"))
	_, err = store.Get("local_transactions")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_LastWriterWins(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("k", []byte("first")))
	require.NoError(t, store.Set("k", []byte("second")))

	got, err := store.Get("k")
	require.NoError(t, err)
	require.Equal(t, "second", string(got))
}

func TestFileStore_PrincipalKeysAreSafeFileNames(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	key := "rate_alerts_w7x5v-principal/../id"
	require.NoError(t, store.Set(key, []byte("{}")))

	got, err := store.Get(key)
	require.NoError(t, err)
	require.Equal(t, "{}", string(got))
}

func TestFileStore_KeysByPrefix(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("rate_alerts_p1", []byte("[]")))
	require.NoError(t, store.Set("rate_alerts_p2", []byte("[]")))
	require.NoError(t, store.Set("local_transactions", []byte("[]")))

	keys, err := store.Keys("rate_alerts_")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"rate_alerts_p1", "rate_alerts_p2"}, keys)
}

func TestFileStore_DeleteAbsentKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Delete("never_written"))
}
