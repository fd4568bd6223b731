package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dalemusser/peerhub/internal/app/realtime"
	"github.com/dalemusser/peerhub/internal/app/system/limits"
	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// session is one upgraded socket. readPump runs on the request goroutine
// and owns joined; writePump is the only writer to ws.
type session struct {
	h      *Handler
	ws     *websocket.Conn
	conn   *realtime.Conn
	userID primitive.ObjectID
	joined map[string]bool
	log    *zap.Logger
}

type joinedPayload struct {
	RoomID       string `json:"roomId"`
	TargetUserID string `json:"targetUserId"`
}

var (
	notJoined     = &realtime.ErrorPayload{Message: "Join the conversation before sending"}
	invalidTarget = &realtime.ErrorPayload{Message: "Invalid target user ID"}
)

func reject(msg string) *realtime.ErrorPayload {
	return &realtime.ErrorPayload{Message: msg}
}

func (s *session) readPump(ctx context.Context) {
	defer func() {
		s.h.Router.Disconnect(s.conn)
		_ = s.ws.Close()
	}()

	s.ws.SetReadLimit(limits.MaxChatFrameSize)
	_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env realtime.Envelope
		if err := s.ws.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		if p := s.dispatch(ctx, env); p != nil {
			s.emit(realtime.EventError, *p)
		}
	}
}

// dispatch handles one inbound event and returns the error event to send
// back to the client, if any.
func (s *session) dispatch(ctx context.Context, env realtime.Envelope) *realtime.ErrorPayload {
	switch env.Event {
	case realtime.EventJoinRoom:
		var req realtime.JoinRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return reject("Malformed joinRoom payload")
		}
		return s.join(ctx, req.TargetUserID)

	case realtime.EventSendMessage:
		var m realtime.Message
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return reject("Malformed sendMessage payload")
		}
		return s.send(ctx, m)

	case realtime.EventTyping:
		var t realtime.Typing
		if err := json.Unmarshal(env.Data, &t); err != nil {
			return reject("Malformed typing payload")
		}
		peer, p := s.joinedPeer(t.TargetUserID)
		if p != nil {
			return p
		}
		return s.relayed(s.h.Router.SetTyping(ctx, s.conn, s.conn.UserID, peer, t.IsTyping))

	default:
		return reject("Unknown event: " + env.Event)
	}
}

// peerKey parses a client-supplied user id into the canonical lowercase
// hex form rooms and the joined set are keyed by.
func peerKey(raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// joinedPeer returns the canonical id of raw if this session has joined
// the room shared with it.
func (s *session) joinedPeer(raw string) (string, *realtime.ErrorPayload) {
	id, ok := peerKey(raw)
	if !ok {
		return "", invalidTarget
	}
	if !s.joined[id.Hex()] {
		return "", notJoined
	}
	return id.Hex(), nil
}

// relayed maps a router failure to a client error event.
func (s *session) relayed(err error) *realtime.ErrorPayload {
	if err == nil {
		return nil
	}
	s.log.Warn("chat relay failed", zap.Error(err))
	return reject("Could not deliver event")
}

// join admits the caller to the room shared with peer when the two are
// connected.
func (s *session) join(ctx context.Context, peer string) *realtime.ErrorPayload {
	peerID, ok := peerKey(peer)
	if !ok {
		return invalidTarget
	}

	cctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	connected, err := s.h.Gate.AreConnected(cctx, s.userID, peerID)
	if err != nil {
		s.log.Error("connection check failed", zap.Error(err))
		return reject("Could not verify connection")
	}
	if !connected {
		return reject("You can only chat with your connections")
	}

	room, err := s.h.Router.Join(s.conn, s.conn.UserID, peerID.Hex())
	if err != nil {
		return s.relayed(err)
	}
	s.joined[peerID.Hex()] = true
	s.emit(realtime.EventJoined, joinedPayload{RoomID: room, TargetUserID: peerID.Hex()})
	return nil
}

func (s *session) send(ctx context.Context, m realtime.Message) *realtime.ErrorPayload {
	peer, p := s.joinedPeer(m.ReceiverID)
	if p != nil {
		return p
	}
	m.SenderID = s.conn.UserID
	m.ReceiverID = peer
	m.Text = strings.TrimSpace(m.Text)
	if m.Text == "" {
		return reject("Message text is required")
	}
	if len([]rune(m.Text)) > limits.MaxChatMessageRunes {
		return reject("Message is too long")
	}
	m.ID = uuid.NewString()
	m.SentAt = time.Now().UTC()
	return s.relayed(s.h.Router.SendMessage(ctx, s.conn, m))
}

func (s *session) emit(event string, data any) {
	env, err := realtime.NewEnvelope(event, data)
	if err != nil {
		s.log.Error("encode event", zap.String("event", event), zap.Error(err))
		return
	}
	s.conn.Enqueue(env)
}

// writePump drains the connection queue onto the socket and keeps it alive
// with pings. It closes the socket on exit so readPump unblocks.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.ws.Close()
	}()

	for {
		select {
		case env := <-s.conn.Outbound():
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteJSON(env); err != nil {
				s.log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.conn.Done():
			_ = s.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}
