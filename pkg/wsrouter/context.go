package wsrouter

import "context"

type ctxKey string

const (
	messageTypeKey ctxKey = "message_type"
	ackKey         ctxKey = "ack"
)

func GetMessageTypeFromCtx(ctx context.Context) string {
	messageType, _ := ctx.Value(messageTypeKey).(string)
	return messageType
}

// GetAckFromCtx returns the correlation id of the request being handled,
// zero for fire-and-forget messages.
func GetAckFromCtx(ctx context.Context) int {
	ack, _ := ctx.Value(ackKey).(int)
	return ack
}
