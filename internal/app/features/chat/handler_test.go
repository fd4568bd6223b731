package chat_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/peerhub/internal/app/features/chat"
	"github.com/dalemusser/peerhub/internal/app/realtime"
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// pairGate connects exactly the two ids it holds.
type pairGate struct{ a, b primitive.ObjectID }

func (g pairGate) AreConnected(_ context.Context, x, y primitive.ObjectID) (bool, error) {
	return (x == g.a && y == g.b) || (x == g.b && y == g.a), nil
}

// asUser signs the request in as the id in X-Test-User.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := primitive.ObjectIDFromHex(r.Header.Get("X-Test-User")); err == nil {
			r = auth.WithTestUser(r, &auth.SessionUser{ID: id})
		}
		next.ServeHTTP(w, r)
	})
}

func newServer(t *testing.T, gate chat.Gate) *httptest.Server {
	t.Helper()
	router := realtime.NewRouter(realtime.NewLocalBus(), zap.NewNop())
	require.NoError(t, router.Start(context.Background()))

	r := chi.NewRouter()
	r.Use(asUser)
	r.Mount("/ws", chat.Routes(chat.NewHandler(router, gate, nil, zap.NewNop())))
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		_ = router.Close()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server, user primitive.ObjectID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	h := http.Header{}
	h.Set("X-Test-User", user.Hex())
	ws, _, err := websocket.DefaultDialer.Dial(url, h)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, event string, data any) {
	t.Helper()
	env, err := realtime.NewEnvelope(event, data)
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(env))
}

func read(t *testing.T, ws *websocket.Conn) realtime.Envelope {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env realtime.Envelope
	require.NoError(t, ws.ReadJSON(&env))
	return env
}

func TestServeWS_RequiresSignIn(t *testing.T) {
	srv := newServer(t, pairGate{})
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWS_ConnectedPeersChat(t *testing.T) {
	ada, grace := primitive.NewObjectID(), primitive.NewObjectID()
	srv := newServer(t, pairGate{ada, grace})
	wsAda, wsGrace := dial(t, srv, ada), dial(t, srv, grace)

	send(t, wsAda, realtime.EventJoinRoom, realtime.JoinRequest{TargetUserID: grace.Hex()})
	assert.Equal(t, realtime.EventJoined, read(t, wsAda).Event)
	send(t, wsGrace, realtime.EventJoinRoom, realtime.JoinRequest{TargetUserID: ada.Hex()})
	assert.Equal(t, realtime.EventJoined, read(t, wsGrace).Event)

	// A forged sender id is replaced by the session's.
	send(t, wsAda, realtime.EventSendMessage, realtime.Message{
		SenderID: primitive.NewObjectID().Hex(), ReceiverID: grace.Hex(), Text: "  hello  ",
	})
	for _, ws := range []*websocket.Conn{wsAda, wsGrace} {
		env := read(t, ws)
		require.Equal(t, realtime.EventReceiveMessage, env.Event)
		var m realtime.Message
		require.NoError(t, json.Unmarshal(env.Data, &m))
		assert.Equal(t, ada.Hex(), m.SenderID)
		assert.Equal(t, "hello", m.Text)
		assert.NotEmpty(t, m.ID)
	}

	send(t, wsGrace, realtime.EventTyping, realtime.Typing{TargetUserID: ada.Hex(), IsTyping: true})
	env := read(t, wsAda)
	require.Equal(t, realtime.EventUserTyping, env.Event)
	var typing realtime.Typing
	require.NoError(t, json.Unmarshal(env.Data, &typing))
	assert.Equal(t, grace.Hex(), typing.UserID)
	assert.True(t, typing.IsTyping)
}

func TestServeWS_Rejections(t *testing.T) {
	ada, grace, eve := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	srv := newServer(t, pairGate{ada, grace})
	wsEve := dial(t, srv, eve)

	errorMessage := func() string {
		env := read(t, wsEve)
		require.Equal(t, realtime.EventError, env.Event)
		var p realtime.ErrorPayload
		require.NoError(t, json.Unmarshal(env.Data, &p))
		return p.Message
	}

	send(t, wsEve, realtime.EventJoinRoom, realtime.JoinRequest{TargetUserID: ada.Hex()})
	assert.Equal(t, "You can only chat with your connections", errorMessage())

	send(t, wsEve, realtime.EventSendMessage, realtime.Message{ReceiverID: ada.Hex(), Text: "hi"})
	assert.Equal(t, "Join the conversation before sending", errorMessage())

	send(t, wsEve, realtime.EventJoinRoom, realtime.JoinRequest{TargetUserID: "nope"})
	assert.Equal(t, "Invalid target user ID", errorMessage())

	send(t, wsEve, "shout", nil)
	assert.Equal(t, "Unknown event: shout", errorMessage())
}

func TestServeWS_UpperCasePeerIDMatchesJoinedRoom(t *testing.T) {
	ada, grace := primitive.NewObjectID(), primitive.NewObjectID()
	srv := newServer(t, pairGate{ada, grace})
	wsAda, wsGrace := dial(t, srv, ada), dial(t, srv, grace)

	send(t, wsAda, realtime.EventJoinRoom, realtime.JoinRequest{TargetUserID: strings.ToUpper(grace.Hex())})
	assert.Equal(t, realtime.EventJoined, read(t, wsAda).Event)
	send(t, wsGrace, realtime.EventJoinRoom, realtime.JoinRequest{TargetUserID: ada.Hex()})
	assert.Equal(t, realtime.EventJoined, read(t, wsGrace).Event)

	send(t, wsAda, realtime.EventSendMessage, realtime.Message{ReceiverID: strings.ToUpper(grace.Hex()), Text: "hi"})
	env := read(t, wsGrace)
	require.Equal(t, realtime.EventReceiveMessage, env.Event)
	var m realtime.Message
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, grace.Hex(), m.ReceiverID)
	assert.Equal(t, realtime.EventReceiveMessage, read(t, wsAda).Event)

	send(t, wsAda, realtime.EventTyping, realtime.Typing{TargetUserID: " " + strings.ToUpper(grace.Hex()), IsTyping: true})
	assert.Equal(t, realtime.EventUserTyping, read(t, wsGrace).Event)
}

func TestServeWS_MessageErrorsKeepClientText(t *testing.T) {
	ada, grace := primitive.NewObjectID(), primitive.NewObjectID()
	srv := newServer(t, pairGate{ada, grace})
	wsAda := dial(t, srv, ada)

	errorMessage := func() string {
		env := read(t, wsAda)
		require.Equal(t, realtime.EventError, env.Event)
		var p realtime.ErrorPayload
		require.NoError(t, json.Unmarshal(env.Data, &p))
		return p.Message
	}

	send(t, wsAda, realtime.EventJoinRoom, realtime.JoinRequest{TargetUserID: grace.Hex()})
	require.Equal(t, realtime.EventJoined, read(t, wsAda).Event)

	send(t, wsAda, realtime.EventSendMessage, realtime.Message{ReceiverID: grace.Hex(), Text: "   "})
	assert.Equal(t, "Message text is required", errorMessage())

	send(t, wsAda, realtime.EventSendMessage, realtime.Message{ReceiverID: "zzz", Text: "hi"})
	assert.Equal(t, "Invalid target user ID", errorMessage())

	send(t, wsAda, realtime.EventTyping, realtime.Typing{TargetUserID: primitive.NewObjectID().Hex(), IsTyping: true})
	assert.Equal(t, "Join the conversation before sending", errorMessage())

	send(t, wsAda, realtime.EventSendMessage, "not an object")
	assert.Equal(t, "Malformed sendMessage payload", errorMessage())
}
