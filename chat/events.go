package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/CUknot/messenger_backend/errors"
)

// Inbound event types.
const (
	TypeJoin    = "join"
	TypeLeave   = "leave"
	TypeDMJoin  = "dm_join"
	TypeDMLeave = "dm_leave"
	TypeLogout  = "logout"
)

// Event types used in both directions or outbound only.
const (
	TypeMessage = "message"
	TypeDM      = "dm"
	TypeStatus  = "status"
)

// Envelope is the frame exchanged over the connection in both directions.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type StatusPayload struct {
	Msg string `json:"msg"`
}

type RoomMessagePayload struct {
	User   string `json:"user"`
	Msg    string `json:"msg"`
	TS     string `json:"ts"`
	UserID uint   `json:"user_id"`
}

type DMPayload struct {
	FromCode string `json:"from_code"`
	FromName string `json:"from_name"`
	Msg      string `json:"msg"`
	TS       string `json:"ts"`
	Date     string `json:"date"`
}

func StatusEnvelope(msg string) Envelope {
	return Envelope{Type: TypeStatus, Payload: StatusPayload{Msg: msg}}
}

// Event is a decoded, validated inbound frame.
type Event interface {
	EventType() string
}

type JoinEvent struct {
	Room string `json:"room" validate:"required,max=50"`
}

type LeaveEvent struct {
	Room string `json:"room" validate:"required,max=50"`
}

type MessageEvent struct {
	Room string `json:"room" validate:"required,max=50"`
	Msg  string `json:"msg" validate:"required"`
}

type DMJoinEvent struct {
	FriendID FriendID `json:"friend_id" validate:"required"`
}

type DMLeaveEvent struct {
	FriendID FriendID `json:"friend_id" validate:"required"`
}

type DMEvent struct {
	To  string `json:"to" validate:"required,numeric,len=7"`
	Msg string `json:"msg" validate:"required"`
}

type LogoutEvent struct{}

// roomEvent is an event naming a room by slug. Decode trims the slug so every handler sees the same name.
type roomEvent interface {
	trimRoom()
}

func (e *JoinEvent) trimRoom()    { e.Room = strings.TrimSpace(e.Room) }
func (e *LeaveEvent) trimRoom()   { e.Room = strings.TrimSpace(e.Room) }
func (e *MessageEvent) trimRoom() { e.Room = strings.TrimSpace(e.Room) }

func (JoinEvent) EventType() string    { return TypeJoin }
func (LeaveEvent) EventType() string   { return TypeLeave }
func (MessageEvent) EventType() string { return TypeMessage }
func (DMJoinEvent) EventType() string  { return TypeDMJoin }
func (DMLeaveEvent) EventType() string { return TypeDMLeave }
func (DMEvent) EventType() string      { return TypeDM }
func (LogoutEvent) EventType() string  { return TypeLogout }

// FriendID is a user id sent either as a JSON number or as a numeric string.
type FriendID uint

func (f *FriendID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(strings.Trim(string(data), `"`))
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("friend_id %s: not a user id", data)
	}
	*f = FriendID(n)
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses a raw frame into its typed event. Every failure wraps ErrValidation.
func Decode(frame []byte) (Event, error) {
	var in inbound
	if err := json.Unmarshal(frame, &in); err != nil {
		return nil, fmt.Errorf("%w: malformed frame: %v", apperrors.ErrValidation, err)
	}

	switch in.Type {
	case TypeJoin:
		return decodePayload[JoinEvent](in.Payload)
	case TypeLeave:
		return decodePayload[LeaveEvent](in.Payload)
	case TypeMessage:
		return decodePayload[MessageEvent](in.Payload)
	case TypeDMJoin:
		return decodePayload[DMJoinEvent](in.Payload)
	case TypeDMLeave:
		return decodePayload[DMLeaveEvent](in.Payload)
	case TypeDM:
		return decodePayload[DMEvent](in.Payload)
	case TypeLogout:
		return LogoutEvent{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", apperrors.ErrValidation, in.Type)
	}
}

func decodePayload[T Event](raw json.RawMessage) (Event, error) {
	var ev T
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: %s payload: %v", apperrors.ErrValidation, ev.EventType(), err)
		}
	}
	if r, ok := any(&ev).(roomEvent); ok {
		r.trimRoom()
	}
	if err := validate.Struct(ev); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %v", apperrors.ErrValidation, ev.EventType(), err)
	}
	return ev, nil
}
