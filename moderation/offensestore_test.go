package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemOffenseStore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	store := NewMemOffenseStore()

	// unknown users start clear
	st, err := store.Get(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(0), st.Count)
	assert.False(st.IsBanned)
	assert.Nil(st.LastOffense)

	now := time.Now().UTC()
	require.NoError(store.Set(ctx, "alice", &OffenseState{Count: 2, LastOffense: &now, IsBanned: false}))

	st, err = store.Get(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(2), st.Count)
	assert.NotNil(st.LastOffense)

	// other users unaffected
	st, err = store.Get(ctx, "bob")
	require.NoError(err)
	assert.Equal(int64(0), st.Count)
}
