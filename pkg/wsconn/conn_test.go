package wsconn

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendBuffer(t *testing.T) {
	c := New(nil, 2)
	assert.NotEmpty(t, c.Id())

	require.NoError(t, c.Send([]byte("1")))
	require.NoError(t, c.SendJSON(map[string]int{"a": 1}))
	assert.ErrorIs(t, c.Send([]byte("3")), ErrSendBufferFull)

	assert.Equal(t, "1", string(<-c.Out()))
	assert.JSONEq(t, `{"a":1}`, string(<-c.Out()))

	c.Close()
	c.Close()
	assert.ErrorIs(t, c.Send([]byte("4")), ErrClosed)
}

func TestWritePumpFlushesBeforeClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		c := New(ws, 4)
		c.Send([]byte("hello"))
		c.Send([]byte("world"))
		c.Close()
		c.WritePump()
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer ws.Close()

	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, data, err = ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "world", string(data))

	_, _, err = ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
