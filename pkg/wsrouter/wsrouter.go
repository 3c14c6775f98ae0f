package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ytparty/server/pkg/wsconn"
)

const AckMessageType = "ack"

var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrInvalidPayload     = errors.New("invalid payload")
)

type message struct {
	Type    string          `json:"type"`
	Ack     int             `json:"ack,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ackMessage struct {
	Type    string `json:"type"`
	Ack     int    `json:"ack"`
	Payload any    `json:"payload"`
}

// HandlerFunc handles one decoded message. The returned value is sent back as
// the ack payload when the sender asked for one.
type HandlerFunc[T any] func(ctx context.Context, conn *wsconn.Conn, payload T) (any, error)

type Middleware func(next HandlerFunc[json.RawMessage]) HandlerFunc[json.RawMessage]

// ErrorReplyFunc turns a handler error into the ack payload.
type ErrorReplyFunc func(ctx context.Context, err error) any

type WSRouter struct {
	routes      map[string]HandlerFunc[json.RawMessage]
	middlewares []Middleware
	errorReply  ErrorReplyFunc
	logger      *slog.Logger
}

type Option func(*WSRouter)

func WithErrorReply(f ErrorReplyFunc) Option {
	return func(r *WSRouter) {
		r.errorReply = f
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *WSRouter) {
		r.logger = logger
	}
}

func New(opts ...Option) *WSRouter {
	r := &WSRouter{
		routes: make(map[string]HandlerFunc[json.RawMessage]),
		errorReply: func(_ context.Context, err error) any {
			return map[string]any{"success": false, "error": err.Error()}
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Use appends middlewares wrapping every handler, outermost first.
func (r *WSRouter) Use(mws ...Middleware) {
	r.middlewares = append(r.middlewares, mws...)
}

// Handle registers handler for messageType, decoding the payload into T. An
// absent payload leaves T at its zero value.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = func(ctx context.Context, conn *wsconn.Conn, raw json.RawMessage) (any, error) {
		var payload T
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
			}
		}

		return handler(ctx, conn, payload)
	}
}

// ServeConn reads messages until the connection fails. Messages from one
// connection are handled sequentially in arrival order.
func (r *WSRouter) ServeConn(ctx context.Context, conn *wsconn.Conn) error {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			r.logger.WarnContext(ctx, "failed to decode message", "error", err)
			continue
		}

		r.dispatch(ctx, conn, msg)
	}
}

func (r *WSRouter) dispatch(ctx context.Context, conn *wsconn.Conn, msg message) {
	ctx = context.WithValue(ctx, messageTypeKey, msg.Type)
	if msg.Ack != 0 {
		ctx = context.WithValue(ctx, ackKey, msg.Ack)
	}

	handler, ok := r.routes[msg.Type]
	if !ok {
		handler = func(context.Context, *wsconn.Conn, json.RawMessage) (any, error) {
			return nil, ErrUnknownMessageType
		}
	}

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	resp, err := handler(ctx, conn, msg.Payload)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to handle message", "error", err)
		if msg.Ack == 0 {
			return
		}

		resp = r.errorReply(ctx, err)
	}

	if msg.Ack == 0 {
		return
	}

	if err := conn.SendJSON(&ackMessage{
		Type:    AckMessageType,
		Ack:     msg.Ack,
		Payload: resp,
	}); err != nil {
		r.logger.WarnContext(ctx, "failed to send ack", "error", err)
	}
}
