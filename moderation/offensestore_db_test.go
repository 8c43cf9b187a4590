package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rounds-social/rounds/karma"
	"github.com/rounds-social/rounds/notify"
	"github.com/rounds-social/rounds/util"
)

func testDBOffenseStore(t *testing.T) *DBOffenseStore {
	t.Helper()
	db, err := util.SetupDatabase("sqlite://:memory:", 1)
	require.NoError(t, err)
	store, err := NewDBOffenseStore(db)
	require.NoError(t, err)
	return store
}

func TestDBOffenseStoreUpsert(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	store := testDBOffenseStore(t)

	// unknown users read back as clear standing
	state, err := store.Get(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(0), state.Count)
	assert.False(state.IsBanned)
	assert.Nil(state.LastOffense)

	now := time.Now().UTC()
	require.NoError(store.Set(ctx, "alice", &OffenseState{Count: 1, LastOffense: &now}))
	state, err = store.Get(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(1), state.Count)
	assert.False(state.IsBanned)
	require.NotNil(state.LastOffense)

	// a second write updates the single row in place
	require.NoError(store.Set(ctx, "alice", &OffenseState{Count: 4, LastOffense: &now, IsBanned: true}))
	state, err = store.Get(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(4), state.Count)
	assert.True(state.IsBanned)

	// users are independent
	state, err = store.Get(ctx, "bob")
	require.NoError(err)
	assert.Equal(int64(0), state.Count)
}

func TestDBOffenseStoreReset(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	store := testDBOffenseStore(t)

	now := time.Now().UTC()
	require.NoError(store.Set(ctx, "alice", &OffenseState{Count: 4, LastOffense: &now, IsBanned: true}))

	// writing the zero state clears the ban and the timestamp
	require.NoError(store.Set(ctx, "alice", &OffenseState{}))
	state, err := store.Get(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(0), state.Count)
	assert.False(state.IsBanned)
	assert.Nil(state.LastOffense)
}

func TestModeratorOverDBStore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	store := testDBOffenseStore(t)
	notifier := notify.NewMemNotifier()
	ledger := karma.NewLedger(karma.NewMemActivityStore(), notifier, nil)
	mod := NewModerator(ledger, store, notifier, nil)

	decision, err := mod.ModerateContent(ctx, "alice", "this is shit")
	require.NoError(err)
	assert.Equal(DecisionReject, decision)

	state, err := store.Get(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(1), state.Count)

	total, err := ledger.Total(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(-20), total)
}
