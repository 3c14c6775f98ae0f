package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ytparty/server/internal/service/room"
	"github.com/ytparty/server/pkg/ctxlogger"
	"github.com/ytparty/server/pkg/wsconn"
	"golang.org/x/time/rate"
)

// joinRoom upgrades the request and serves the socket for the lifetime of the
// connection. Sockets without a valid room are closed right after the upgrade.
func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	roomId := r.URL.Query().Get("roomId")
	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("room_id", roomId))

	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to upgrade to websocket", "error", err)
		return
	}

	if roomId == "" {
		c.logger.DebugContext(ctx, "empty room id")
		c.closeImmediately(ws)
		return
	}

	conn := wsconn.New(ws, c.cfg.SendBuffer)
	if err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		RoomId: roomId,
		Conn:   conn,
	}); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			c.logger.DebugContext(ctx, "room does not exist")
		} else {
			c.logger.ErrorContext(ctx, "failed to join room", "error", err)
		}
		c.closeImmediately(ws)
		return
	}
	defer func() {
		if err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
			RoomId: roomId,
			Conn:   conn,
		}); err != nil {
			c.logger.WarnContext(ctx, "failed to leave room", "error", err)
		}
	}()

	ctx = ctxlogger.AppendCtx(ctx, slog.String("conn_id", conn.Id()))
	c.logger.InfoContext(ctx, "socket connected")

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		if err := conn.WritePump(); err != nil {
			c.logger.DebugContext(ctx, "write pump stopped", "error", err)
		}
	}()

	ctx = context.WithValue(ctx, roomIdCtxKey, roomId)
	ctx = context.WithValue(ctx, limiterCtxKey, rate.NewLimiter(c.cfg.MetadataRate, c.cfg.MetadataBurst))

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "socket disconnected", "reason", err)
	}

	conn.Close()
	<-pumpDone
}

func (c controller) closeImmediately(ws *websocket.Conn) {
	ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	ws.Close()
}
