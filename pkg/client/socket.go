package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/gorilla/websocket"
	"github.com/ytparty/server/pkg/party"
)

var ErrNotConnected = errors.New("socket is not connected")

const writeWait = 10 * time.Second

// RemoteError is a failure reported by the server in an ack.
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Socket is a connection to one room. Requests wait for their ack; pushes
// from the server are queued without bound and delivered to subscribers on a
// separate goroutine, so a subscriber may issue requests of its own.
type Socket struct {
	ws     *websocket.Conn
	roomId string
	logger *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	nextAck int
	pending map[int]chan party.Message
	closed  bool

	inboxMu     sync.Mutex
	inbox       deque.Deque[party.Message]
	inboxClosed bool
	wake        chan struct{}
	done        chan struct{}

	onStateReport   listeners[*party.State]
	onCommand       listeners[party.Command]
	onQueueModified listeners[[]party.VideoMetadata]
	onDisconnect    listeners[error]
}

// Dial connects to the room's socket on the server at serverURL, which may
// use an http(s) or ws(s) scheme.
func Dial(ctx context.Context, serverURL, roomId string, logger *slog.Logger) (*Socket, error) {
	u, err := socketURL(serverURL, roomId)
	if err != nil {
		return nil, err
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", u, err)
	}

	s := &Socket{
		ws:      ws,
		roomId:  roomId,
		logger:  logger.With("room_id", roomId),
		pending: make(map[int]chan party.Message),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	go s.readLoop()
	go s.dispatchLoop()

	return s, nil
}

func socketURL(serverURL, roomId string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server url scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v1/ws"
	u.RawQuery = url.Values{"roomId": {roomId}}.Encode()

	return u.String(), nil
}

func (s *Socket) RoomId() string {
	return s.roomId
}

// Done is closed once the connection is gone.
func (s *Socket) Done() <-chan struct{} {
	return s.done
}

func (s *Socket) readLoop() {
	var err error
	defer func() {
		s.mu.Lock()
		s.closed = true
		for ack, ch := range s.pending {
			close(ch)
			delete(s.pending, ack)
		}
		s.mu.Unlock()

		s.inboxMu.Lock()
		s.inboxClosed = true
		s.inboxMu.Unlock()
		s.signal()
		s.onDisconnect.emit(err)
	}()

	for {
		var data []byte
		_, data, err = s.ws.ReadMessage()
		if err != nil {
			return
		}

		var msg party.Message
		if jsonErr := json.Unmarshal(data, &msg); jsonErr != nil {
			s.logger.Warn("invalid message from server", "error", jsonErr)
			continue
		}

		if msg.Type == party.EventAck {
			s.resolve(msg)
			continue
		}

		s.inboxMu.Lock()
		s.inbox.PushBack(msg)
		s.inboxMu.Unlock()
		s.signal()
	}
}

func (s *Socket) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// next blocks until a push is queued. It reports false once the connection
// is gone and every queued push was delivered.
func (s *Socket) next() (party.Message, bool) {
	for {
		s.inboxMu.Lock()
		if s.inbox.Len() > 0 {
			msg := s.inbox.PopFront()
			s.inboxMu.Unlock()
			return msg, true
		}
		closed := s.inboxClosed
		s.inboxMu.Unlock()

		if closed {
			return party.Message{}, false
		}

		<-s.wake
	}
}

func (s *Socket) resolve(msg party.Message) {
	s.mu.Lock()
	ch, ok := s.pending[msg.Ack]
	delete(s.pending, msg.Ack)
	s.mu.Unlock()

	if !ok {
		s.logger.Debug("ack without pending request", "ack", msg.Ack)
		return
	}

	ch <- msg
}

func (s *Socket) dispatchLoop() {
	defer close(s.done)

	for {
		msg, ok := s.next()
		if !ok {
			return
		}

		switch msg.Type {
		case party.EventStateReport:
			var state *party.State
			if err := json.Unmarshal(msg.Payload, &state); err != nil {
				s.logger.Warn("invalid state report", "error", err)
				continue
			}
			s.onStateReport.emit(state)
		case party.EventCommand:
			var command party.Command
			if err := json.Unmarshal(msg.Payload, &command); err != nil {
				s.logger.Warn("invalid command", "error", err)
				continue
			}
			s.onCommand.emit(command)
		case party.EventQueueModified:
			var queue []party.VideoMetadata
			if err := json.Unmarshal(msg.Payload, &queue); err != nil {
				s.logger.Warn("invalid queue", "error", err)
				continue
			}
			s.onQueueModified.emit(queue)
		default:
			s.logger.Debug("unhandled message", "type", msg.Type)
		}
	}
}

func (s *Socket) write(msg party.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return s.ws.WriteMessage(websocket.TextMessage, data)
}

func encodePayload(payload any) (json.RawMessage, error) {
	if payload == nil {
		return nil, nil
	}

	return json.Marshal(payload)
}

// emit sends a message that expects no reply.
func (s *Socket) emit(messageType string, payload any) error {
	data, err := encodePayload(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrNotConnected
	}

	return s.write(party.Message{Type: messageType, Payload: data})
}

// request sends a message and decodes the ack payload into out. A reply with
// success=false becomes a *RemoteError.
func (s *Socket) request(ctx context.Context, messageType string, payload, out any) error {
	data, err := encodePayload(payload)
	if err != nil {
		return err
	}

	ch := make(chan party.Message, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.nextAck++
	ack := s.nextAck
	s.pending[ack] = ch
	s.mu.Unlock()

	forget := func() {
		s.mu.Lock()
		delete(s.pending, ack)
		s.mu.Unlock()
	}

	if err := s.write(party.Message{Type: messageType, Ack: ack, Payload: data}); err != nil {
		forget()
		return err
	}

	var reply party.Message
	select {
	case <-ctx.Done():
		forget()
		return ctx.Err()
	case msg, ok := <-ch:
		if !ok {
			return ErrNotConnected
		}
		reply = msg
	}

	var resp party.Response
	if err := json.Unmarshal(reply.Payload, &resp); err != nil {
		return fmt.Errorf("invalid %s reply: %w", messageType, err)
	}
	if !resp.Success {
		return &RemoteError{Op: messageType, Message: resp.Error}
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(reply.Payload, out)
}

// SyncState returns the room's playback snapshot, nil if none was reported.
func (s *Socket) SyncState(ctx context.Context) (*party.State, error) {
	var resp party.StateResponse
	if err := s.request(ctx, party.EventStateSync, nil, &resp); err != nil {
		return nil, err
	}

	return resp.State, nil
}

func (s *Socket) ReportState(state *party.State) error {
	return s.emit(party.EventStateReport, state)
}

// SendCommand relays a player command to the other sockets in the room. arg
// may be nil.
func (s *Socket) SendCommand(name string, arg any) error {
	command := party.Command{Name: name}
	if arg != nil {
		data, err := json.Marshal(arg)
		if err != nil {
			return err
		}
		command.Arg = data
	}

	return s.emit(party.EventCommand, command)
}

func (s *Socket) SyncQueue(ctx context.Context) ([]party.VideoMetadata, error) {
	var resp party.DataResponse[[]party.VideoMetadata]
	if err := s.request(ctx, party.EventQueueSync, nil, &resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

func (s *Socket) AddVideo(ctx context.Context, videoId string) error {
	return s.request(ctx, party.EventQueueAddVideo, videoId, nil)
}

func (s *Socket) RemoveVideo(ctx context.Context, index int) error {
	return s.request(ctx, party.EventQueueRemoveVideo, index, nil)
}

func (s *Socket) MoveVideo(ctx context.Context, index, newPosition int) error {
	return s.request(ctx, party.EventQueueMoveVideo, party.MoveVideoPayload{
		Index:       index,
		NewPosition: newPosition,
	}, nil)
}

func (s *Socket) DownloadVideoMetadata(ctx context.Context, videoId string) (party.VideoMetadata, error) {
	var resp party.DataResponse[party.VideoMetadata]
	if err := s.request(ctx, party.EventDownloadVideoMetadata, videoId, &resp); err != nil {
		return party.VideoMetadata{}, err
	}

	return resp.Data, nil
}

func (s *Socket) OnStateReport(fn func(*party.State)) func() {
	return s.onStateReport.add(fn)
}

func (s *Socket) OnCommand(fn func(party.Command)) func() {
	return s.onCommand.add(fn)
}

func (s *Socket) OnQueueModified(fn func([]party.VideoMetadata)) func() {
	return s.onQueueModified.add(fn)
}

// OnDisconnect runs fn with the read error once the connection drops.
func (s *Socket) OnDisconnect(fn func(error)) func() {
	return s.onDisconnect.add(fn)
}

// Close sends a close frame and waits for the server to hang up.
func (s *Socket) Close() error {
	s.writeMu.Lock()
	err := s.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	s.writeMu.Unlock()

	select {
	case <-s.done:
	case <-time.After(writeWait):
	}

	if closeErr := s.ws.Close(); err == nil {
		err = closeErr
	}

	return err
}

// CreateRoom asks the server for a new room and returns its id.
func CreateRoom(ctx context.Context, serverURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(serverURL, "/")+"/api/v1/rooms/", nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		RoomId string `json:"room_id"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode room: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return "", &RemoteError{Op: "create room", Message: body.Error}
	}

	return body.RoomId, nil
}
