// internal/messaging/service_test.go

package messaging

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newTestService(repo *fakeMsgRepo, broadcaster *recordingBroadcaster, push PushService) Service {
    return NewService(repo, broadcaster, push, time.Second)
}

func sendReq(matchID, receiverID int64, text string) *SendMessageRequest {
    return &SendMessageRequest{MatchID: matchID, ReceiverID: receiverID, Text: text}
}

func TestSendMessageToOfflineReceiver(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    broadcaster := newRecordingBroadcaster()
    push := newFakePush()
    svc := newTestService(repo, broadcaster, push)

    msg, err := svc.SendMessage(context.Background(), 1, sendReq(10, 2, "hi"))
    require.NoError(t, err)

    assert.Equal(t, StatusSent, msg.Status)
    require.NotNil(t, msg.Text)
    assert.Equal(t, "hi", *msg.Text)

    // One room frame for the message itself, then a push fallback
    assert.Equal(t, []string{string(WSTypeMessage)}, broadcaster.eventTypes())
    push.wait(t)
    assert.Equal(t, 1, push.sentCount())
}

func TestSendMessageToOnlineReceiver(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    broadcaster := newRecordingBroadcaster()
    broadcaster.setOnline(2, true)
    push := newFakePush()
    svc := newTestService(repo, broadcaster, push)

    msg, err := svc.SendMessage(context.Background(), 1, sendReq(10, 2, "hi"))
    require.NoError(t, err)

    assert.Equal(t, StatusDelivered, msg.Status)
    assert.Equal(t, StatusDelivered, repo.status(msg.ID))

    // Message frame first, then the delivered transition, no push
    assert.Equal(t, []string{string(WSTypeMessage), string(WSTypeDelivered)}, broadcaster.eventTypes())
    assert.Zero(t, push.sentCount())
}

func TestSendMessageValidationOrder(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    repo.addMatch(11, 1, 3, false)
    broadcaster := newRecordingBroadcaster()
    svc := newTestService(repo, broadcaster, nil)
    ctx := context.Background()

    _, err := svc.SendMessage(ctx, 1, sendReq(0, 2, "hi"))
    assert.ErrorIs(t, err, ErrInvalidMatchID)

    _, err = svc.SendMessage(ctx, 1, sendReq(99, 2, "hi"))
    assert.ErrorIs(t, err, ErrMatchNotFound)

    _, err = svc.SendMessage(ctx, 5, sendReq(10, 2, "hi"))
    assert.ErrorIs(t, err, ErrAccessDenied)

    _, err = svc.SendMessage(ctx, 1, sendReq(11, 3, "hi"))
    assert.ErrorIs(t, err, ErrChatDisabled)

    _, err = svc.SendMessage(ctx, 1, sendReq(10, 7, "hi"))
    assert.ErrorIs(t, err, ErrReceiverMismatch)

    _, err = svc.SendMessage(ctx, 1, sendReq(10, 2, ""))
    assert.ErrorIs(t, err, ErrEmptyMessage)

    // None of the rejected sends persisted anything or reached the room
    assert.Zero(t, repo.messageCount(10))
    assert.Zero(t, repo.messageCount(11))
    assert.Zero(t, broadcaster.eventCount())
}

func TestSendMessageBlockedEitherDirection(t *testing.T) {
    ctx := context.Background()

    for name, setup := range map[string]func(*fakeMsgRepo){
        "sender blocked receiver": func(r *fakeMsgRepo) { r.InsertBlock(ctx, 1, 2) },
        "receiver blocked sender": func(r *fakeMsgRepo) { r.InsertBlock(ctx, 2, 1) },
    } {
        t.Run(name, func(t *testing.T) {
            repo := newFakeMsgRepo()
            repo.addMatch(10, 1, 2, true)
            setup(repo)
            svc := newTestService(repo, newRecordingBroadcaster(), nil)

            _, err := svc.SendMessage(ctx, 1, sendReq(10, 2, "hi"))
            assert.ErrorIs(t, err, ErrBlocked)
            assert.Zero(t, repo.messageCount(10))
        })
    }
}

func TestBlockDisablesMatchChat(t *testing.T) {
    ctx := context.Background()
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    svc := newTestService(repo, newRecordingBroadcaster(), nil)

    require.NoError(t, svc.BlockUser(ctx, 1, 2))

    match, err := repo.GetMatch(ctx, 10)
    require.NoError(t, err)
    assert.False(t, match.ChatEnabled)

    _, err = svc.SendMessage(ctx, 1, sendReq(10, 2, "hi"))
    assert.ErrorIs(t, err, ErrChatDisabled)
}

func TestSendMessageMediaOnly(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    svc := newTestService(repo, newRecordingBroadcaster(), nil)

    msg, err := svc.SendMessage(context.Background(), 1, &SendMessageRequest{
        MatchID:    10,
        ReceiverID: 2,
        MediaURL:   "https://cdn.example.com/pic.jpg",
    })
    require.NoError(t, err)

    assert.Nil(t, msg.Text)
    require.NotNil(t, msg.MediaURL)
    assert.Equal(t, "https://cdn.example.com/pic.jpg", *msg.MediaURL)
}

func TestSendMessagePushFailureDoesNotFailSend(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    push := newFakePush()
    push.failWith = errPushDown
    svc := newTestService(repo, newRecordingBroadcaster(), push)

    msg, err := svc.SendMessage(context.Background(), 1, sendReq(10, 2, "hi"))
    require.NoError(t, err)
    assert.Equal(t, StatusSent, msg.Status)
    assert.Equal(t, 1, repo.messageCount(10))

    push.wait(t)
}

func TestMarkSeenBulkAndIdempotent(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    broadcaster := newRecordingBroadcaster()
    svc := newTestService(repo, broadcaster, nil)
    ctx := context.Background()

    m1, err := svc.SendMessage(ctx, 1, sendReq(10, 2, "one"))
    require.NoError(t, err)
    m2, err := svc.SendMessage(ctx, 1, sendReq(10, 2, "two"))
    require.NoError(t, err)

    updated, err := svc.MarkSeen(ctx, 2, 10)
    require.NoError(t, err)
    assert.Equal(t, int64(2), updated)
    assert.Equal(t, StatusSeen, repo.status(m1.ID))
    assert.Equal(t, StatusSeen, repo.status(m2.ID))

    // Exactly one seen event for the whole batch
    types := broadcaster.eventTypes()
    seen := 0
    for _, typ := range types {
        if typ == string(WSTypeSeen) {
            seen++
        }
    }
    assert.Equal(t, 1, seen)

    // Second call advances nothing and emits nothing
    before := broadcaster.eventCount()
    updated, err = svc.MarkSeen(ctx, 2, 10)
    require.NoError(t, err)
    assert.Zero(t, updated)
    assert.Equal(t, before, broadcaster.eventCount())
}

func TestMarkSeenOnlyAddressedMessages(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    svc := newTestService(repo, newRecordingBroadcaster(), nil)
    ctx := context.Background()

    toTwo, err := svc.SendMessage(ctx, 1, sendReq(10, 2, "for you"))
    require.NoError(t, err)
    toOne, err := svc.SendMessage(ctx, 2, sendReq(10, 1, "reply"))
    require.NoError(t, err)

    updated, err := svc.MarkSeen(ctx, 2, 10)
    require.NoError(t, err)
    assert.Equal(t, int64(1), updated)
    assert.Equal(t, StatusSeen, repo.status(toTwo.ID))
    assert.Equal(t, StatusSent, repo.status(toOne.ID), "the sender's own inbound message is untouched")
}

func TestMarkSeenRequiresMembership(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    svc := newTestService(repo, newRecordingBroadcaster(), nil)

    _, err := svc.MarkSeen(context.Background(), 5, 10)
    assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestStatusNeverMovesBackward(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    svc := newTestService(repo, newRecordingBroadcaster(), nil)
    ctx := context.Background()

    msg, err := svc.SendMessage(ctx, 1, sendReq(10, 2, "hi"))
    require.NoError(t, err)

    _, err = svc.MarkSeen(ctx, 2, 10)
    require.NoError(t, err)
    require.Equal(t, StatusSeen, repo.status(msg.ID))

    // A late delivered transition must not demote a seen message
    advanced, err := repo.MarkDelivered(ctx, msg.ID)
    require.NoError(t, err)
    assert.False(t, advanced)
    assert.Equal(t, StatusSeen, repo.status(msg.ID))
}

func TestTypingRelaysToOtherMembers(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    broadcaster := newRecordingBroadcaster()
    svc := newTestService(repo, broadcaster, nil)
    ctx := context.Background()

    svc.Typing(ctx, 1, 10, true)
    svc.Typing(ctx, 1, 10, false)

    require.Equal(t, 2, broadcaster.eventCount())
    assert.Equal(t, []string{string(WSTypeTyping), string(WSTypeStopTyping)}, broadcaster.eventTypes())
    assert.Equal(t, "room_except", broadcaster.events[0].target)
    assert.Equal(t, int64(1), broadcaster.events[0].userID, "sender is excluded from the relay")
}

func TestTypingIgnoredForNonMember(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    broadcaster := newRecordingBroadcaster()
    svc := newTestService(repo, broadcaster, nil)

    svc.Typing(context.Background(), 5, 10, true)
    assert.Zero(t, broadcaster.eventCount())
}

func TestDeleteMessageSenderOnly(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    svc := newTestService(repo, newRecordingBroadcaster(), nil)
    ctx := context.Background()

    msg, err := svc.SendMessage(ctx, 1, sendReq(10, 2, "oops"))
    require.NoError(t, err)

    err = svc.DeleteMessage(ctx, 2, msg.ID)
    assert.ErrorIs(t, err, ErrNotMessageSender)
    assert.Equal(t, 1, repo.messageCount(10))

    require.NoError(t, svc.DeleteMessage(ctx, 1, msg.ID))
    assert.Zero(t, repo.messageCount(10))

    err = svc.DeleteMessage(ctx, 1, msg.ID)
    assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestGetMessagesRequiresMembership(t *testing.T) {
    repo := newFakeMsgRepo()
    repo.addMatch(10, 1, 2, true)
    svc := newTestService(repo, newRecordingBroadcaster(), nil)
    ctx := context.Background()

    _, err := svc.SendMessage(ctx, 1, sendReq(10, 2, "hi"))
    require.NoError(t, err)

    _, err = svc.GetMessages(ctx, 5, 10, 0, 0)
    assert.ErrorIs(t, err, ErrAccessDenied)

    messages, err := svc.GetMessages(ctx, 2, 10, 0, 0)
    require.NoError(t, err)
    assert.Len(t, messages, 1)
}
