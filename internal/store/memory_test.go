package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docombos/docombos/apps/go-server/internal/game"
	"github.com/docombos/docombos/apps/go-server/internal/session"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	_, err := st.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	a := session.New("a", game.DefaultRules())
	b := session.New("b", game.DefaultRules())
	require.NoError(t, st.Save(ctx, a))
	require.NoError(t, st.Save(ctx, b))

	got, err := st.Get(ctx, "b")
	require.NoError(t, err)
	assert.Same(t, b, got)

	list, err := st.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*session.Session{a, b}, list)

	require.NoError(t, st.Delete(ctx, "a"))
	require.NoError(t, st.Delete(ctx, "a"))
	_, err = st.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}
