package inmemory

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytparty/server/internal/repository/connection"
	"github.com/ytparty/server/pkg/wsconn"
)

func TestGroups(t *testing.T) {
	r := NewRepo(slog.Default())
	a, b, c := wsconn.New(nil, 1), wsconn.New(nil, 1), wsconn.New(nil, 1)

	require.NoError(t, r.Add("room1", a))
	require.NoError(t, r.Add("room1", b))
	require.NoError(t, r.Add("room2", c))
	assert.ErrorIs(t, r.Add("room1", a), connection.ErrAlreadyExists)

	assert.ElementsMatch(t, []*wsconn.Conn{a, b}, r.GetConns("room1"))
	assert.ElementsMatch(t, []*wsconn.Conn{c}, r.GetConns("room2"))
	assert.Empty(t, r.GetConns("room3"))

	require.NoError(t, r.Remove("room1", a))
	assert.ErrorIs(t, r.Remove("room1", a), connection.ErrNotFound)
	assert.ElementsMatch(t, []*wsconn.Conn{b}, r.GetConns("room1"))

	require.NoError(t, r.Remove("room1", b))
	assert.Empty(t, r.GetConns("room1"))
	assert.ErrorIs(t, r.Remove("room1", b), connection.ErrNotFound)
}
