package chat

import (
	"fmt"

	apperrors "github.com/CUknot/messenger_backend/errors"
)

type ChannelKind uint8

const (
	KindRoom ChannelKind = iota + 1
	KindDM
)

// ChannelID names a broadcast group: a public room by slug or a direct conversation by its pair key.
// The zero value is not a valid channel.
type ChannelID struct {
	Kind ChannelKind
	Key  string
}

func RoomChannel(slug string) ChannelID {
	return ChannelID{Kind: KindRoom, Key: slug}
}

// CanonicalDMChannel returns the channel shared by users a and b, the same for either argument order.
func CanonicalDMChannel(a, b uint) (ChannelID, error) {
	if a == 0 || b == 0 || a == b {
		return ChannelID{}, fmt.Errorf("%w: %d and %d", apperrors.ErrInvalidPair, a, b)
	}
	return ChannelID{Kind: KindDM, Key: fmt.Sprintf("dm_%d_%d", min(a, b), max(a, b))}, nil
}

func (c ChannelID) IsRoom() bool { return c.Kind == KindRoom }

func (c ChannelID) IsDM() bool { return c.Kind == KindDM }

func (c ChannelID) String() string {
	switch c.Kind {
	case KindRoom:
		return "room:" + c.Key
	case KindDM:
		return c.Key
	default:
		return "invalid"
	}
}
