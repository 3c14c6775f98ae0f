package controller

import (
	"context"
	"errors"

	"github.com/ytparty/server/internal/service/room"
	"github.com/ytparty/server/pkg/party"
	"github.com/ytparty/server/pkg/wsrouter"
)

var errTooManyRequests = errors.New("too many requests")

var errorMessages = []struct {
	err error
	msg string
}{
	{room.ErrRoomNotFound, party.ErrMsgRoomDoesNotExist},
	{room.ErrInvalidVideoId, party.ErrMsgInvalidVideoId},
	{room.ErrFetchFailed, party.ErrMsgFetchFailed},
	{room.ErrIndexOutOfBounds, party.ErrMsgIndexOutOfBounds},
	{errTooManyRequests, party.ErrMsgTooManyRequests},
	{wsrouter.ErrInvalidPayload, party.ErrMsgInvalidPayload},
	{wsrouter.ErrUnknownMessageType, party.ErrMsgUnknownMessageType},
}

// errorReply maps a handler error to the reply sent back to the client.
func (c controller) errorReply(ctx context.Context, err error) any {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return party.Fail(m.msg)
		}
	}

	c.logger.ErrorContext(ctx, "unexpected ws handler error", "error", err)
	return party.Fail(party.ErrMsgInternalServerError)
}
