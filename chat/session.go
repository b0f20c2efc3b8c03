package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	apperrors "github.com/CUknot/messenger_backend/errors"
	"github.com/CUknot/messenger_backend/models"
)

type State int

const (
	// StateAnonymous is a connection without identity. It stays open but every event is ignored.
	StateAnonymous State = iota
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Session binds one connection to the user that opened it and handles its events one at a time.
type Session struct {
	conn        Conn
	user        *models.User
	registry    *Registry
	resolver    *Resolver
	broadcaster *Broadcaster
	log         *logrus.Entry

	mu        sync.Mutex
	state     State
	closeOnce sync.Once
}

// NewSession creates the session of conn. A nil user makes it anonymous.
func NewSession(conn Conn, user *models.User, registry *Registry, resolver *Resolver, broadcaster *Broadcaster, log *logrus.Entry) *Session {
	s := &Session{
		conn:        conn,
		user:        user,
		registry:    registry,
		resolver:    resolver,
		broadcaster: broadcaster,
		state:       StateAnonymous,
	}
	fields := logrus.Fields{"connection_id": conn.ID()}
	if user != nil {
		s.state = StateConnected
		fields["user_id"] = user.ID
	}
	s.log = log.WithFields(fields)
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) User() *models.User {
	return s.user
}

// Open greets an authenticated connection. Only the connecting client sees the status.
func (s *Session) Open() {
	if s.State() != StateConnected {
		s.log.Debug("Anonymous connection opened")
		return
	}
	if err := s.conn.Send(StatusEnvelope(s.user.Username + " connected")); err != nil {
		s.log.WithError(err).Warn("Send connect status")
	}
}

// HandleFrame decodes a raw frame and dispatches it. Malformed frames are dropped.
func (s *Session) HandleFrame(ctx context.Context, frame []byte) {
	ev, err := Decode(frame)
	if err != nil {
		s.log.WithError(err).Debug("Frame dropped")
		return
	}
	s.Dispatch(ctx, ev)
}

// Dispatch runs the handler of ev. Errors stay inside the event: they are logged and never reach the client.
func (s *Session) Dispatch(ctx context.Context, ev Event) {
	if _, ok := ev.(LogoutEvent); ok {
		if s.State() == StateConnected {
			s.log.Info("Logout")
			s.Close()
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected {
		s.log.WithField("type", ev.EventType()).Debug("Event ignored in state " + s.state.String())
		return
	}

	if err := s.handle(ctx, ev); err != nil {
		entry := s.log.WithError(err).WithField("type", ev.EventType())
		if errors.Is(err, apperrors.ErrStoreUnavailable) {
			entry.Error("Event failed")
		} else {
			entry.Debug("Event dropped")
		}
	}
}

func (s *Session) handle(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case JoinEvent:
		room, err := s.resolver.ResolveRoom(ctx, e.Room)
		if err != nil {
			return err
		}
		ch := RoomChannel(room.Slug)
		s.registry.Join(s.conn, ch)
		s.broadcaster.Notify(ch, StatusEnvelope(s.user.Username+" joined"))
	case LeaveEvent:
		ch := RoomChannel(strings.TrimSpace(e.Room))
		s.registry.Leave(s.conn.ID(), ch)
		s.broadcaster.Notify(ch, StatusEnvelope(s.user.Username+" left"))
	case MessageEvent:
		return s.broadcaster.BroadcastRoomMessage(ctx, *s.user, e.Room, e.Msg)
	case DMJoinEvent:
		ch, err := CanonicalDMChannel(s.user.ID, uint(e.FriendID))
		if err != nil {
			return err
		}
		s.registry.Join(s.conn, ch)
	case DMLeaveEvent:
		ch, err := CanonicalDMChannel(s.user.ID, uint(e.FriendID))
		if err != nil {
			return err
		}
		s.registry.Leave(s.conn.ID(), ch)
	case DMEvent:
		return s.broadcaster.BroadcastDirectMessage(ctx, *s.user, e.To, e.Msg)
	}
	return nil
}

// Close moves the session to StateDisconnected, drops every membership and closes the connection.
// Only the first call has an effect.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()

		left := s.registry.LeaveAll(s.conn.ID())
		if err := s.conn.Close(); err != nil {
			s.log.WithError(err).Debug("Close connection")
		}
		s.log.WithField("channels", len(left)).Info("Session closed")
	})
}
