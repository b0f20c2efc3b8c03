package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/CUknot/messenger_backend/errors"
)

func TestBroadcaster_RoomMessageReachesMembersOnly(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	a, outsider := newFakeConn("a"), newFakeConn("outsider")
	f.registry.Join(a, RoomChannel("general"))
	f.registry.Join(outsider, RoomChannel("random"))

	// When bob, who never joined, sends to general
	req.NoError(f.broadcaster.BroadcastRoomMessage(context.Background(), bob, "general", "hello"))

	// Then alice's connection gets exactly one message event
	got := a.ofType(TypeMessage)
	req.Len(got, 1)
	req.Equal(RoomMessagePayload{User: "bob", Msg: "hello", TS: "21:05", UserID: 2}, got[0].Payload)
	req.Empty(outsider.envelopes())

	stored := f.log.roomMessages()
	req.Len(stored, 1)
	req.Equal(uint(1), stored[0].RoomID)
}

func TestBroadcaster_RoomMessageUsesDisplayZone(t *testing.T) {
	f := newFixture()
	tehran, err := time.LoadLocation("Asia/Tehran")
	require.NoError(t, err)
	b := NewBroadcaster(f.registry, f.resolver, f.log, tehran, f.entry)
	a := newFakeConn("a")
	f.registry.Join(a, RoomChannel("general"))

	require.NoError(t, b.BroadcastRoomMessage(context.Background(), bob, "general", "hello"))

	// 21:05 UTC is 00:35 the next day in Tehran
	assert.Equal(t, "00:35", a.ofType(TypeMessage)[0].Payload.(RoomMessagePayload).TS)
}

func TestBroadcaster_NothingDeliveredWithoutPersist(t *testing.T) {
	f := newFixture()
	a := newFakeConn("a")
	f.registry.Join(a, RoomChannel("general"))
	ctx := context.Background()

	err := f.broadcaster.BroadcastRoomMessage(ctx, bob, "general", "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = f.broadcaster.BroadcastRoomMessage(ctx, bob, "lobby", "hello")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	f.log.err = fmt.Errorf("append: %w", apperrors.ErrStoreUnavailable)
	err = f.broadcaster.BroadcastRoomMessage(ctx, bob, "general", "hello")
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)

	assert.Empty(t, a.envelopes())
}

func TestBroadcaster_SaturatedRecipientDoesNotAffectOthers(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	slow, fast := newFakeConn("slow"), newFakeConn("fast")
	slow.full = true
	f.registry.Join(slow, RoomChannel("general"))
	f.registry.Join(fast, RoomChannel("general"))

	req.NoError(f.broadcaster.BroadcastRoomMessage(context.Background(), bob, "general", "hello"))

	req.Len(fast.ofType(TypeMessage), 1)
	req.Empty(slow.envelopes())
	entry := f.hook.LastEntry()
	req.NotNil(entry)
	req.Equal(logrus.WarnLevel, entry.Level)
	req.Equal("Delivery failed", entry.Message)
	req.Equal(ConnectionID("slow"), entry.Data["connection_id"])
	req.True(errors.Is(entry.Data[logrus.ErrorKey].(error), ErrSendQueueFull))
}

func TestBroadcaster_DirectMessage(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	a, b := newFakeConn("a"), newFakeConn("b")

	// Given both sides joined the conversation, in opposite argument orders
	dmAB, err := CanonicalDMChannel(alice.ID, bob.ID)
	req.NoError(err)
	dmBA, err := CanonicalDMChannel(bob.ID, alice.ID)
	req.NoError(err)
	f.registry.Join(a, dmAB)
	f.registry.Join(b, dmBA)

	// When bob writes to alice's code
	req.NoError(f.broadcaster.BroadcastDirectMessage(context.Background(), bob, alice.Code, "hi"))

	// Then both ends receive one dm from bob
	want := DMPayload{FromCode: bob.Code, FromName: "bob", Msg: "hi", TS: "21:05", Date: "2026/10/16"}
	for _, conn := range []*fakeConn{a, b} {
		got := conn.ofType(TypeDM)
		req.Len(got, 1)
		req.Equal(want, got[0].Payload)
	}
	stored := f.log.directMessages()
	req.Len(stored, 1)
	req.Equal(bob.ID, stored[0].SenderID)
	req.Equal(alice.ID, stored[0].ReceiverID)
}

func TestBroadcaster_DirectMessageDropped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.broadcaster.BroadcastDirectMessage(ctx, bob, "0000000", "hi")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = f.broadcaster.BroadcastDirectMessage(ctx, bob, "not-a-code", "hi")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = f.broadcaster.BroadcastDirectMessage(ctx, bob, bob.Code, "note to self")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPair)

	assert.Empty(t, f.log.directMessages())
}

func TestBroadcaster_LiveOrderMatchesHistory(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	watchers := []*fakeConn{newFakeConn("w1"), newFakeConn("w2")}
	for _, w := range watchers {
		f.registry.Join(w, RoomChannel("general"))
	}

	// When two senders race on the same room
	var wg sync.WaitGroup
	for _, sender := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()
			user := alice
			if sender == "bob" {
				user = bob
			}
			for i := 0; i < 50; i++ {
				_ = f.broadcaster.BroadcastRoomMessage(context.Background(), user, "general", fmt.Sprintf("%s %d", sender, i))
			}
		}(sender)
	}
	wg.Wait()

	// Then every watcher saw the messages in the order they were stored
	var history []string
	for _, m := range f.log.roomMessages() {
		history = append(history, m.Content)
	}
	req.Len(history, 100)
	for _, w := range watchers {
		var live []string
		for _, env := range w.ofType(TypeMessage) {
			live = append(live, env.Payload.(RoomMessagePayload).Msg)
		}
		req.Equal(history, live)
	}
}

func TestBroadcaster_Notify(t *testing.T) {
	f := newFixture()
	a, b := newFakeConn("a"), newFakeConn("b")
	f.registry.Join(a, RoomChannel("general"))
	f.registry.Join(b, RoomChannel("general"))

	n := f.broadcaster.Notify(RoomChannel("general"), StatusEnvelope("alice joined"))

	assert.Equal(t, 2, n)
	assert.Equal(t, []Envelope{StatusEnvelope("alice joined")}, a.envelopes())
	assert.Zero(t, f.broadcaster.Notify(RoomChannel("nowhere"), StatusEnvelope("x")))
	assert.Empty(t, f.log.roomMessages())
}
