package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ytparty/server/pkg/ctxlogger"
	"github.com/ytparty/server/pkg/party"
	"github.com/ytparty/server/pkg/wsconn"
	"github.com/ytparty/server/pkg/wsrouter"
)

func (c controller) wsRequestIdWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[json.RawMessage]) wsrouter.HandlerFunc[json.RawMessage] {
		return func(ctx context.Context, conn *wsconn.Conn, payload json.RawMessage) (any, error) {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("ws_request_id", uuid.NewString()))
			return next(ctx, conn, payload)
		}
	}
}

func (c controller) loggerWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[json.RawMessage]) wsrouter.HandlerFunc[json.RawMessage] {
		return func(ctx context.Context, conn *wsconn.Conn, payload json.RawMessage) (any, error) {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", wsrouter.GetMessageTypeFromCtx(ctx)))
			c.logger.DebugContext(ctx, "websocket message received", "payload", string(payload))

			start := time.Now()

			resp, err := next(ctx, conn, payload)

			c.logger.DebugContext(ctx, "websocket message handled",
				"processing_time_us", time.Since(start).Microseconds(),
			)

			return resp, err
		}
	}
}

var inboundEvents = map[string]struct{}{
	party.EventStateSync:             {},
	party.EventStateReport:           {},
	party.EventCommand:               {},
	party.EventQueueSync:             {},
	party.EventQueueAddVideo:         {},
	party.EventQueueRemoveVideo:      {},
	party.EventQueueMoveVideo:        {},
	party.EventDownloadVideoMetadata: {},
}

func (c controller) metricsWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[json.RawMessage]) wsrouter.HandlerFunc[json.RawMessage] {
		return func(ctx context.Context, conn *wsconn.Conn, payload json.RawMessage) (any, error) {
			messageType := wsrouter.GetMessageTypeFromCtx(ctx)
			if _, ok := inboundEvents[messageType]; !ok {
				messageType = "unknown"
			}

			c.metrics.WSEvents.WithLabelValues(messageType).Inc()
			return next(ctx, conn, payload)
		}
	}
}

// rateLimited rejects the request when the socket exhausted its limiter.
func (c controller) rateLimited(next wsrouter.HandlerFunc[string]) wsrouter.HandlerFunc[string] {
	return func(ctx context.Context, conn *wsconn.Conn, payload string) (any, error) {
		if limiter := c.getLimiterFromCtx(ctx); limiter != nil && !limiter.Allow() {
			return nil, errTooManyRequests
		}

		return next(ctx, conn, payload)
	}
}
