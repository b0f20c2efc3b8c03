package chat

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CUknot/messenger_backend/models"
)

const (
	timeLayout = "15:04"
	dateLayout = "2006/01/02"

	lockStripes = 64
)

// MessageLog is the part of the message store the broadcaster writes to.
type MessageLog interface {
	AppendRoomMessage(ctx context.Context, roomID, userID uint, content string) (models.Message, error)
	AppendDirectMessage(ctx context.Context, senderID, receiverID uint, content string) (models.DirectMessage, error)
}

// Broadcaster persists messages and fans them out to the members of their channel.
// Sends to one channel are serialized, so members see them in history order.
type Broadcaster struct {
	registry *Registry
	resolver *Resolver
	messages MessageLog
	loc      *time.Location
	log      *logrus.Entry
	stripes  [lockStripes]sync.Mutex
}

func NewBroadcaster(registry *Registry, resolver *Resolver, messages MessageLog, loc *time.Location, log *logrus.Entry) *Broadcaster {
	if loc == nil {
		loc = time.UTC
	}
	return &Broadcaster{
		registry: registry,
		resolver: resolver,
		messages: messages,
		loc:      loc,
		log:      log,
	}
}

func (b *Broadcaster) lockFor(ch ChannelID) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte{byte(ch.Kind)})
	_, _ = h.Write([]byte(ch.Key))
	return &b.stripes[h.Sum32()%lockStripes]
}

// BroadcastRoomMessage stores content in the room named slug and delivers it to the room's members.
// Nothing is delivered unless the message was stored.
func (b *Broadcaster) BroadcastRoomMessage(ctx context.Context, sender models.User, slug, content string) error {
	room, err := b.resolver.ResolveRoom(ctx, slug)
	if err != nil {
		return err
	}
	ch := RoomChannel(room.Slug)

	mu := b.lockFor(ch)
	mu.Lock()
	defer mu.Unlock()

	message, err := b.messages.AppendRoomMessage(ctx, room.ID, sender.ID, content)
	if err != nil {
		return err
	}
	b.deliver(ch, Envelope{
		Type: TypeMessage,
		Payload: RoomMessagePayload{
			User:   sender.Username,
			Msg:    message.Content,
			TS:     message.CreatedAt.In(b.loc).Format(timeLayout),
			UserID: sender.ID,
		},
	})
	return nil
}

// BroadcastDirectMessage stores content from sender to the user with receiverCode
// and delivers it to the pair's DM channel.
func (b *Broadcaster) BroadcastDirectMessage(ctx context.Context, sender models.User, receiverCode, content string) error {
	receiver, err := b.resolver.ResolveUserByCode(ctx, receiverCode)
	if err != nil {
		return err
	}
	ch, err := CanonicalDMChannel(sender.ID, receiver.ID)
	if err != nil {
		return err
	}

	mu := b.lockFor(ch)
	mu.Lock()
	defer mu.Unlock()

	message, err := b.messages.AppendDirectMessage(ctx, sender.ID, receiver.ID, content)
	if err != nil {
		return err
	}
	createdAt := message.CreatedAt.In(b.loc)
	b.deliver(ch, Envelope{
		Type: TypeDM,
		Payload: DMPayload{
			FromCode: sender.Code,
			FromName: sender.Username,
			Msg:      message.Content,
			TS:       createdAt.Format(timeLayout),
			Date:     createdAt.Format(dateLayout),
		},
	})
	return nil
}

// Notify delivers env to the current members of ch without storing anything.
func (b *Broadcaster) Notify(ch ChannelID, env Envelope) int {
	mu := b.lockFor(ch)
	mu.Lock()
	defer mu.Unlock()
	return b.deliver(ch, env)
}

func (b *Broadcaster) deliver(ch ChannelID, env Envelope) int {
	delivered := 0
	for _, conn := range b.registry.MembersOf(ch) {
		if err := conn.Send(env); err != nil {
			b.log.WithError(err).WithFields(logrus.Fields{
				"connection_id": conn.ID(),
				"channel":       ch.String(),
				"type":          env.Type,
			}).Warn("Delivery failed")
			continue
		}
		delivered++
	}
	return delivered
}
