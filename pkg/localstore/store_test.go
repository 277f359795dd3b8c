package localstore

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type snapshotRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func mustStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(afero.NewMemMapFs(), "snapshots")
	require.NoError(t, err)
	return store
}

func TestReadMissingKeyReportsAbsence(t *testing.T) {
	store := mustStore(t)

	var rows []snapshotRow
	found, err := store.Read(KeyCompanies, &rows)
	require.NoError(t, err, "a missing snapshot is not an error")
	require.False(t, found)
	require.Empty(t, rows)
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := mustStore(t)

	written := []snapshotRow{{ID: "c1", Name: "Acme"}, {ID: "c2", Name: "Beta"}}
	require.NoError(t, store.Write(KeyCompanies, written))

	var read []snapshotRow
	found, err := store.Read(KeyCompanies, &read)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, written, read)
}

func TestWriteReplacesWholesale(t *testing.T) {
	store := mustStore(t)

	require.NoError(t, store.Write(KeyBankAccounts, []snapshotRow{{ID: "a"}, {ID: "b"}}))
	require.NoError(t, store.Write(KeyBankAccounts, []snapshotRow{{ID: "c"}}))

	var read []snapshotRow
	found, err := store.Read(KeyBankAccounts, &read)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []snapshotRow{{ID: "c"}}, read, "a write replaces the previous value entirely")
}

func TestSubscribeReceivesChangeEvents(t *testing.T) {
	store := mustStore(t)

	events, cancel := store.Subscribe()
	defer cancel()

	require.NoError(t, store.Write(KeyDigitalWallets, []snapshotRow{{ID: "w1"}}))
	require.Equal(t, Event{Key: KeyDigitalWallets}, <-events)

	require.NoError(t, store.Delete(KeyDigitalWallets))
	require.Equal(t, Event{Key: KeyDigitalWallets}, <-events)
}

func TestCancelledSubscriptionStopsEvents(t *testing.T) {
	store := mustStore(t)

	events, cancel := store.Subscribe()
	cancel()

	_, open := <-events
	require.False(t, open)
}

func TestDeleteMissingKeyIsIgnored(t *testing.T) {
	store := mustStore(t)
	require.NoError(t, store.Delete(KeyCompanies))
}

func TestRejectsPathTraversalKeys(t *testing.T) {
	store := mustStore(t)

	require.Error(t, store.Write("../escape", []snapshotRow{}))
	_, err := store.Read("", nil)
	require.Error(t, err)
}
