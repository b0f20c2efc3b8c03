package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	apperrors "github.com/CUknot/messenger_backend/errors"
	"github.com/CUknot/messenger_backend/models"
)

type fakeConn struct {
	id ConnectionID

	mu     sync.Mutex
	got    []Envelope
	full   bool
	closes int
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: ConnectionID(id)}
}

func (c *fakeConn) ID() ConnectionID { return c.id }

func (c *fakeConn) Send(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closes > 0:
		return ErrConnClosed
	case c.full:
		return ErrSendQueueFull
	}
	c.got = append(c.got, env)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *fakeConn) envelopes() []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Envelope(nil), c.got...)
}

func (c *fakeConn) ofType(typ string) []Envelope {
	var out []Envelope
	for _, env := range c.envelopes() {
		if env.Type == typ {
			out = append(out, env)
		}
	}
	return out
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

type fakeDirectory struct {
	rooms map[string]models.Room
	users map[string]models.User
}

func (d fakeDirectory) FindRoomBySlug(_ context.Context, slug string) (models.Room, error) {
	room, ok := d.rooms[slug]
	if !ok {
		return models.Room{}, fmt.Errorf("room %q: %w", slug, apperrors.ErrNotFound)
	}
	return room, nil
}

func (d fakeDirectory) FindUserByCode(_ context.Context, code string) (models.User, error) {
	user, ok := d.users[code]
	if !ok {
		return models.User{}, fmt.Errorf("user %q: %w", code, apperrors.ErrNotFound)
	}
	return user, nil
}

// memoryLog is an in-memory MessageLog whose clock advances one minute per append.
type memoryLog struct {
	mu    sync.Mutex
	now   time.Time
	rooms []models.Message
	dms   []models.DirectMessage
	err   error
}

func newMemoryLog() *memoryLog {
	return &memoryLog{now: time.Date(2026, 10, 16, 21, 4, 0, 0, time.UTC)}
}

func (l *memoryLog) AppendRoomMessage(_ context.Context, roomID, userID uint, content string) (models.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return models.Message{}, l.err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, apperrors.ErrValidation
	}
	l.now = l.now.Add(time.Minute)
	msg := models.Message{ID: uint(len(l.rooms) + 1), RoomID: roomID, UserID: userID, Content: content, CreatedAt: l.now}
	l.rooms = append(l.rooms, msg)
	return msg, nil
}

func (l *memoryLog) AppendDirectMessage(_ context.Context, senderID, receiverID uint, content string) (models.DirectMessage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return models.DirectMessage{}, l.err
	}
	l.now = l.now.Add(time.Minute)
	msg := models.DirectMessage{ID: uint(len(l.dms) + 1), SenderID: senderID, ReceiverID: receiverID, Content: content, CreatedAt: l.now}
	l.dms = append(l.dms, msg)
	return msg, nil
}

func (l *memoryLog) roomMessages() []models.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Message(nil), l.rooms...)
}

func (l *memoryLog) directMessages() []models.DirectMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.DirectMessage(nil), l.dms...)
}

var (
	alice = models.User{ID: 1, Username: "alice", Code: "1234567"}
	bob   = models.User{ID: 2, Username: "bob", Code: "7654321"}
)

type fixture struct {
	registry    *Registry
	resolver    *Resolver
	log         *memoryLog
	broadcaster *Broadcaster
	hook        *test.Hook
	entry       *logrus.Entry
}

func newFixture() *fixture {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	entry := logrus.NewEntry(logger)

	dir := fakeDirectory{
		rooms: map[string]models.Room{
			"general": {ID: 1, Slug: "general", Title: "General"},
			"random":  {ID: 2, Slug: "random", Title: "Random"},
		},
		users: map[string]models.User{alice.Code: alice, bob.Code: bob},
	}
	f := &fixture{
		registry: NewRegistry(),
		resolver: NewResolver(dir),
		log:      newMemoryLog(),
		hook:     hook,
		entry:    entry,
	}
	f.broadcaster = NewBroadcaster(f.registry, f.resolver, f.log, time.UTC, entry)
	return f
}

func (f *fixture) session(conn Conn, user *models.User) *Session {
	return NewSession(conn, user, f.registry, f.resolver, f.broadcaster, f.entry)
}
