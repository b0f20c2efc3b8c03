package chat

import (
	"errors"
	"sync"
)

var (
	ErrConnClosed    = errors.New("connection closed")
	ErrSendQueueFull = errors.New("send queue full")
)

type ConnectionID string

// Conn is one live client connection as seen by the chat core.
// Send must not block: it either queues the envelope or returns an error.
type Conn interface {
	ID() ConnectionID
	Send(env Envelope) error
	Close() error
}

// Registry tracks which connections are members of which channels.
// It lives for the process and holds no history.
type Registry struct {
	mu       sync.RWMutex
	conns    map[ConnectionID]Conn
	members  map[ChannelID]map[ConnectionID]struct{}
	channels map[ConnectionID]map[ChannelID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns:    make(map[ConnectionID]Conn),
		members:  make(map[ChannelID]map[ConnectionID]struct{}),
		channels: make(map[ConnectionID]map[ChannelID]struct{}),
	}
}

// Join adds conn to ch. Joining twice is a no-op.
func (r *Registry) Join(conn Conn, ch ChannelID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := conn.ID()
	r.conns[id] = conn
	if _, ok := r.members[ch]; !ok {
		r.members[ch] = make(map[ConnectionID]struct{})
	}
	r.members[ch][id] = struct{}{}
	if _, ok := r.channels[id]; !ok {
		r.channels[id] = make(map[ChannelID]struct{})
	}
	r.channels[id][ch] = struct{}{}
}

// Leave removes the connection from ch. Leaving a channel it is not in is a no-op.
func (r *Registry) Leave(id ConnectionID, ch ChannelID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leave(id, ch)
}

func (r *Registry) leave(id ConnectionID, ch ChannelID) {
	if members, ok := r.members[ch]; ok {
		delete(members, id)
		// Clean up empty channels
		if len(members) == 0 {
			delete(r.members, ch)
		}
	}
	if channels, ok := r.channels[id]; ok {
		delete(channels, ch)
		if len(channels) == 0 {
			delete(r.channels, id)
			delete(r.conns, id)
		}
	}
}

// LeaveAll drops every membership of the connection and returns the channels it was in.
func (r *Registry) LeaveAll(id ConnectionID) []ChannelID {
	r.mu.Lock()
	defer r.mu.Unlock()

	left := make([]ChannelID, 0, len(r.channels[id]))
	for ch := range r.channels[id] {
		left = append(left, ch)
	}
	for _, ch := range left {
		r.leave(id, ch)
	}
	delete(r.conns, id)
	return left
}

// MembersOf returns a snapshot of the connections in ch, empty for an unknown channel.
func (r *Registry) MembersOf(ch ChannelID) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]Conn, 0, len(r.members[ch]))
	for id := range r.members[ch] {
		members = append(members, r.conns[id])
	}
	return members
}

func (r *Registry) ChannelsOf(id ConnectionID) []ChannelID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]ChannelID, 0, len(r.channels[id]))
	for ch := range r.channels[id] {
		channels = append(channels, ch)
	}
	return channels
}

func (r *Registry) IsMember(id ConnectionID, ch ChannelID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[ch][id]
	return ok
}
