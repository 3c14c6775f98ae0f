package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ytparty/server/internal/service/room"
	"github.com/ytparty/server/pkg/party"
)

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	createRoomResp, err := c.roomService.CreateRoom(r.Context())
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to create room", "error", err)
		c.writeJSON(w, http.StatusInternalServerError, envelope{"error": party.ErrMsgInternalServerError})
		return
	}

	c.writeJSON(w, http.StatusCreated, envelope{"room_id": createRoomResp.RoomId})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	roomResp, err := c.roomService.GetRoom(r.Context(), roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			c.writeJSON(w, http.StatusNotFound, envelope{"error": party.ErrMsgRoomDoesNotExist})
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to get room", "error", err)
		c.writeJSON(w, http.StatusInternalServerError, envelope{"error": party.ErrMsgInternalServerError})
		return
	}

	c.writeJSON(w, http.StatusOK, roomResp)
}
