package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytparty/server/pkg/wsconn"
)

type echoInput struct {
	Text string `json:"text"`
}

func readAck(t *testing.T, conn *wsconn.Conn) ackMessage {
	t.Helper()

	var out struct {
		Type    string          `json:"type"`
		Ack     int             `json:"ack"`
		Payload json.RawMessage `json:"payload"`
	}
	select {
	case data := <-conn.Out():
		require.NoError(t, json.Unmarshal(data, &out))
	default:
		t.Fatal("expected an outbound message")
	}

	return ackMessage{Type: out.Type, Ack: out.Ack, Payload: string(out.Payload)}
}

func TestDispatch(t *testing.T) {
	r := New()
	var seenType string
	r.Use(func(next HandlerFunc[json.RawMessage]) HandlerFunc[json.RawMessage] {
		return func(ctx context.Context, conn *wsconn.Conn, payload json.RawMessage) (any, error) {
			seenType = GetMessageTypeFromCtx(ctx)
			return next(ctx, conn, payload)
		}
	})
	Handle(r, "echo", func(_ context.Context, _ *wsconn.Conn, in echoInput) (any, error) {
		return map[string]string{"text": in.Text}, nil
	})
	Handle(r, "fail", func(context.Context, *wsconn.Conn, struct{}) (any, error) {
		return nil, errors.New("boom")
	})

	conn := wsconn.New(nil, 8)
	ctx := context.Background()

	r.dispatch(ctx, conn, message{Type: "echo", Ack: 7, Payload: json.RawMessage(`{"text":"hi"}`)})
	assert.Equal(t, "echo", seenType)
	ack := readAck(t, conn)
	assert.Equal(t, AckMessageType, ack.Type)
	assert.Equal(t, 7, ack.Ack)
	assert.JSONEq(t, `{"text":"hi"}`, ack.Payload.(string))

	r.dispatch(ctx, conn, message{Type: "echo", Payload: json.RawMessage(`{"text":"hi"}`)})
	assert.Len(t, conn.Out(), 0, "fire-and-forget messages get no reply")

	r.dispatch(ctx, conn, message{Type: "fail", Ack: 8})
	ack = readAck(t, conn)
	assert.JSONEq(t, `{"success":false,"error":"boom"}`, ack.Payload.(string))

	r.dispatch(ctx, conn, message{Type: "nope", Ack: 9})
	ack = readAck(t, conn)
	assert.JSONEq(t, `{"success":false,"error":"unknown message type"}`, ack.Payload.(string))

	r.dispatch(ctx, conn, message{Type: "nope"})
	assert.Len(t, conn.Out(), 0)
}

func TestDispatchInvalidPayload(t *testing.T) {
	var gotErr error
	r := New(WithErrorReply(func(_ context.Context, err error) any {
		gotErr = err
		return "rejected"
	}))
	Handle(r, "echo", func(_ context.Context, _ *wsconn.Conn, in echoInput) (any, error) {
		return in, nil
	})

	conn := wsconn.New(nil, 8)
	r.dispatch(context.Background(), conn, message{Type: "echo", Ack: 1, Payload: json.RawMessage(`"not an object"`)})

	assert.ErrorIs(t, gotErr, ErrInvalidPayload)
	ack := readAck(t, conn)
	assert.Equal(t, `"rejected"`, ack.Payload)
}
