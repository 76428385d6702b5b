package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func acquireJournal(t *testing.T) (*DB, func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "wikigate-tests")
	require.NoError(t, err)
	j, err := Open(context.Background(), filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	return j, func() {
		if err := j.Close(); err != nil {
			t.Log("unable to close journal", err)
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

func TestRecordAndCount(t *testing.T) {
	ctx := context.Background()
	j, cleanup := acquireJournal(t)
	defer cleanup()

	require.NoError(t, j.Record(ctx, LoginOK, "alice", "10.0.0.7:41234", ""))
	require.NoError(t, j.Record(ctx, LoginDenied, "mallory", "10.0.0.9:55001", ""))
	require.NoError(t, j.Record(ctx, LoginDenied, "mallory", "10.0.0.9:55002", ""))

	count, err := j.CountEvents(ctx, LoginDenied)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = j.CountEvents(ctx, LoginOK)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = j.CountEvents(ctx, Logout)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestDiscardSwallowsEverything(t *testing.T) {
	sink := Discard()
	require.NoError(t, sink.Record(context.Background(), LoginOK, "alice", "", ""))
	require.NoError(t, sink.Close())
}
