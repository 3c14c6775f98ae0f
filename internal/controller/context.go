package controller

import (
	"context"

	"golang.org/x/time/rate"
)

type contextKey int

const (
	roomIdCtxKey contextKey = iota
	limiterCtxKey
)

func (c controller) getRoomIdFromCtx(ctx context.Context) string {
	roomId, ok := ctx.Value(roomIdCtxKey).(string)
	if !ok {
		return ""
	}

	return roomId
}

func (c controller) getLimiterFromCtx(ctx context.Context) *rate.Limiter {
	limiter, ok := ctx.Value(limiterCtxKey).(*rate.Limiter)
	if !ok {
		return nil
	}

	return limiter
}
