package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/pushp314/agencydesk-backend/internal/realtime"
	"github.com/pushp314/agencydesk-backend/internal/services"
	apperrors "github.com/pushp314/agencydesk-backend/pkg/errors"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
	"github.com/pushp314/agencydesk-backend/pkg/utils"
)

// SocketServer binds the socket.io transport to the dispatcher and chat
// service. Event handlers never panic the server: a failure in one session is
// logged and reported to that session only.
type SocketServer struct {
	server     *socketio.Server
	dispatcher *realtime.Dispatcher
	chat       *services.ChatService
	limiter    SendLimiter
	roles      services.Roles
	timeout    time.Duration
}

func NewSocketServer(dispatcher *realtime.Dispatcher, chat *services.ChatService, limiter SendLimiter, roles services.Roles, timeout time.Duration, origins []string) *SocketServer {
	checkOrigin := allowOrigins(origins)
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&websocket.Transport{CheckOrigin: checkOrigin},
			&polling.Transport{CheckOrigin: checkOrigin},
		},
	})

	s := &SocketServer{
		server:     server,
		dispatcher: dispatcher,
		chat:       chat,
		limiter:    limiter,
		roles:      roles,
		timeout:    timeout,
	}
	s.register()
	return s
}

func (s *SocketServer) register() {
	s.server.OnConnect("/", func(conn socketio.Conn) error {
		u := conn.URL()
		actor, err := authenticateSocket(u.Query().Get("token"), conn.RemoteHeader().Get("Authorization"))
		if err != nil {
			logger.Warn().Err(err).Str("session", conn.ID()).Msg("Socket connection rejected")
			return err
		}
		conn.SetContext(actor)
		return s.connect(conn, actor)
	})

	s.server.OnEvent("/", realtime.EventJoinRoom, func(conn socketio.Conn, req realtime.JoinRoom) (ack realtime.RoomAck) {
		defer s.recoverEvent(conn, realtime.EventJoinRoom)
		actor, ok := conn.Context().(services.Actor)
		if !ok {
			return realtime.RoomAck{RoomKey: req.RoomKey, Error: "not authenticated"}
		}
		return s.join(conn, actor, req)
	})

	s.server.OnEvent("/", realtime.EventLeaveRoom, func(conn socketio.Conn, req realtime.JoinRoom) (ack realtime.RoomAck) {
		defer s.recoverEvent(conn, realtime.EventLeaveRoom)
		return s.leave(conn, req)
	})

	s.server.OnEvent("/", realtime.EventSendMessage, func(conn socketio.Conn, req realtime.SendMessage) {
		defer s.recoverEvent(conn, realtime.EventSendMessage)
		actor, ok := conn.Context().(services.Actor)
		if !ok {
			return
		}
		s.send(conn, actor, req)
	})

	s.server.OnEvent("/", realtime.EventOnlineUsers, func(conn socketio.Conn, _ string) {
		conn.Emit(realtime.EventOnlineUsers, s.dispatcher.Online())
	})

	s.server.OnDisconnect("/", func(conn socketio.Conn, reason string) {
		logger.Debug().Str("session", conn.ID()).Str("reason", reason).Msg("Socket closed")
		s.disconnect(conn.ID())
	})

	s.server.OnError("/", func(conn socketio.Conn, err error) {
		session := ""
		if conn != nil {
			session = conn.ID()
		}
		logger.Warn().Err(err).Str("session", session).Msg("Socket error")
	})
}

// connect registers an authenticated session and announces presence.
func (s *SocketServer) connect(sess realtime.Session, actor services.Actor) error {
	first, err := s.dispatcher.Attach(sess, actor.ID)
	if err != nil {
		return err
	}

	logger.Info().Str("session", sess.ID()).Uint("user_id", actor.ID).Msg("Socket authenticated")

	sess.Emit(realtime.EventOnlineUsers, s.dispatcher.Online())
	if first {
		s.dispatcher.Broadcast(realtime.EventPresence, realtime.Presence{UserID: actor.ID, IsOnline: true})
	}
	return nil
}

func (s *SocketServer) disconnect(sessionID string) {
	actorID, last := s.dispatcher.Drop(sessionID)
	if last {
		s.dispatcher.Broadcast(realtime.EventPresence, realtime.Presence{UserID: actorID, IsOnline: false})
	}
}

// join subscribes a session to a conversation room. Participants may join
// their own rooms; operators may join any room.
func (s *SocketServer) join(sess realtime.Session, actor services.Actor, req realtime.JoinRoom) realtime.RoomAck {
	if err := req.Validate(); err != nil {
		return realtime.RoomAck{RoomKey: req.RoomKey, Error: err.Error()}
	}
	if !realtime.IsParticipant(req.RoomKey, actor.ID) && !s.roles.IsOperator(actor) {
		return realtime.RoomAck{RoomKey: req.RoomKey, Error: "not a participant of this conversation"}
	}

	if _, err := s.dispatcher.Join(sess.ID(), req.RoomKey); err != nil {
		return realtime.RoomAck{RoomKey: req.RoomKey, Error: err.Error()}
	}
	return realtime.RoomAck{OK: true, RoomKey: req.RoomKey}
}

func (s *SocketServer) leave(sess realtime.Session, req realtime.JoinRoom) realtime.RoomAck {
	if err := req.Validate(); err != nil {
		return realtime.RoomAck{RoomKey: req.RoomKey, Error: err.Error()}
	}
	s.dispatcher.Leave(sess.ID(), req.RoomKey)
	return realtime.RoomAck{OK: true, RoomKey: req.RoomKey}
}

// send persists and relays a message. Failures go back to the sending session
// as send_error; an offline peer is not a failure.
func (s *SocketServer) send(sess realtime.Session, actor services.Actor, req realtime.SendMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if !allowSend(ctx, s.limiter, actor.ID) {
		s.sendError(sess, req.RoomKey, apperrors.ErrRateLimit)
		return
	}

	if _, err := s.chat.Send(ctx, actor, req); err != nil {
		logger.Warn().Err(err).Str("session", sess.ID()).Str("room", req.RoomKey).Msg("send_message failed")
		s.sendError(sess, req.RoomKey, err)
	}
}

func (s *SocketServer) sendError(sess realtime.Session, room string, err error) {
	msg := "Failed to send message"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	sess.Emit(realtime.EventSendError, realtime.SendError{
		RoomKey: room,
		Kind:    string(apperrors.KindOf(err)),
		Error:   msg,
	})
}

func (s *SocketServer) recoverEvent(conn socketio.Conn, event string) {
	if r := recover(); r != nil {
		logger.Error().
			Str("session", conn.ID()).
			Str("event", event).
			Str("panic", fmt.Sprintf("%v", r)).
			Msg("Socket event handler panicked")
	}
}

// Serve starts the socket.io event loop; Close stops it and drops all rooms.
func (s *SocketServer) Serve() {
	go func() {
		if err := s.server.Serve(); err != nil {
			logger.Error().Err(err).Msg("Socket server stopped")
		}
	}()
}

func (s *SocketServer) Close() error {
	s.dispatcher.Close()
	return s.server.Close()
}

// Handler exposes the socket.io endpoint to gin.
func (s *SocketServer) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.server.ServeHTTP(c.Writer, c.Request)
	}
}

func authenticateSocket(queryToken, authHeader string) (services.Actor, error) {
	token := queryToken
	if token == "" {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if token == "" {
		return services.Actor{}, fmt.Errorf("authentication required")
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		return services.Actor{}, fmt.Errorf("invalid token")
	}
	return services.Actor{ID: claims.UserID, Role: claims.Role}, nil
}

// allowOrigins accepts requests without an Origin header (native clients) and
// browser requests from the configured origins.
func allowOrigins(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[strings.TrimRight(origin, "/")]
		return ok
	}
}
