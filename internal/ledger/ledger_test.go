package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"giftvault/internal/kvstore"
)

type failingStore struct {
	kvstore.Store
}

func (f *failingStore) Set(string, []byte) error {
	return errors.New("disk full")
}

func newTestLedger(store kvstore.Store) *Ledger {
	return New(store, 50, "txn", zerolog.Nop())
}

func TestLedger_AppendAssignsIDAndTimestamp(t *testing.T) {
	l := newTestLedger(kvstore.NewMemStore())

	stored := l.Append(Entry{
		Type:     TypeSell,
		Amount:   decimal.NewFromInt(50),
		Currency: "USD",
		Status:   "completed",
	})

	require.Regexp(t, `^txn-\d+-[0-9a-f]{6}$`, stored.ID)
	require.False(t, stored.CreatedAt.IsZero())
}

func TestLedger_RetentionCap(t *testing.T) {
	l := newTestLedger(kvstore.NewMemStore())

	for i := 0; i < 51; i++ {
		l.Append(Entry{
			Type:        TypeBuy,
			Amount:      decimal.NewFromInt(int64(i)),
			Currency:    "NGN",
			Description: fmt.Sprintf("entry %d", i),
		})
	}

	entries := l.List()
	require.Len(t, entries, 50)

	// Newest first: entry 50 leads, entry 0 was evicted.
	require.Equal(t, "entry 50", entries[0].Description)
	require.Equal(t, "entry 1", entries[49].Description)
}

func TestLedger_PersistsAcrossReload(t *testing.T) {
	store := kvstore.NewMemStore()

	first := newTestLedger(store)
	first.Append(Entry{Type: TypeSwap, Amount: decimal.NewFromInt(10), Currency: "ICP",
		Meta: &Metadata{FromAsset: "ICP", ToAsset: "ckBTC"}})

	second := newTestLedger(store)
	entries := second.List()
	require.Len(t, entries, 1)
	require.Equal(t, TypeSwap, entries[0].Type)
	require.NotNil(t, entries[0].Meta)
	require.Equal(t, "ckBTC", entries[0].Meta.ToAsset)
}

func TestLedger_StorageFailureDoesNotCrash(t *testing.T) {
	l := New(&failingStore{Store: kvstore.NewMemStore()}, 50, "txn", zerolog.Nop())

	stored := l.Append(Entry{Type: TypeSend, Amount: decimal.NewFromInt(5), Currency: "USD"})
	require.NotEmpty(t, stored.ID)

	// The write was swallowed; the in-memory log still has the entry.
	require.Len(t, l.List(), 1)
}

func TestLedger_Clear(t *testing.T) {
	store := kvstore.NewMemStore()
	l := newTestLedger(store)

	l.Append(Entry{Type: TypeBillPay, Amount: decimal.NewFromInt(20), Currency: "NGN"})
	l.Clear()

	require.Empty(t, l.List())
	require.Empty(t, newTestLedger(store).List())
}

func TestLedger_CorruptBlobDegradesToEmpty(t *testing.T) {
	store := kvstore.NewMemStore()
	require.NoError(t, store.Set("local_transactions", []byte("not json")))

	l := newTestLedger(store)
	require.Empty(t, l.List())
}
