package party

import "encoding/json"

const (
	EventAck                   = "ack"
	EventStateSync             = "state:sync"
	EventStateReport           = "state:report"
	EventCommand               = "command"
	EventQueueSync             = "queue:sync"
	EventQueueAddVideo         = "queue:addVideo"
	EventQueueRemoveVideo      = "queue:removeVideo"
	EventQueueMoveVideo        = "queue:moveVideo"
	EventQueueModified         = "queue:modified"
	EventDownloadVideoMetadata = "api:downloadVideoMetadata"
)

const (
	ErrMsgRoomDoesNotExist    = "Room does not exist."
	ErrMsgInvalidVideoId      = "Invalid video id."
	ErrMsgFetchFailed         = "Failed to fetch video metadata."
	ErrMsgIndexOutOfBounds    = "Index is out of bounds."
	ErrMsgTooManyRequests     = "Too many requests."
	ErrMsgInvalidPayload      = "Invalid payload."
	ErrMsgUnknownMessageType  = "Unknown message type."
	ErrMsgInternalServerError = "Internal server error."
)

const (
	CommandPlay  = "play"
	CommandPause = "pause"
	CommandSeek  = "seek"
)

// Message is one websocket frame. Ack is set on requests that expect a reply
// and on the reply itself.
type Message struct {
	Type    string          `json:"type"`
	Ack     int             `json:"ack,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Command is relayed between sockets without interpretation.
type Command struct {
	Name string          `json:"name"`
	Arg  json.RawMessage `json:"arg,omitempty"`
}

type MoveVideoPayload struct {
	Index       int `json:"index"`
	NewPosition int `json:"newPosition"`
}

type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type StateResponse struct {
	Success bool   `json:"success"`
	State   *State `json:"state"`
}

type DataResponse[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func Ok() Response {
	return Response{Success: true}
}

func Fail(msg string) Response {
	return Response{Success: false, Error: msg}
}
