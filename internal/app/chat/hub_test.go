package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubble/internal/app/store"
	"hubble/internal/app/user"
	"hubble/internal/configs"
	"hubble/internal/pkg/errs"
)

// fakeEmitter records every emitted event in order.
type fakeEmitter struct {
	mu       sync.Mutex
	events   []Envelope
	shutdown bool
}

func (f *fakeEmitter) Emit(event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, Envelope{Type: event, Payload: payload})
}

func (f *fakeEmitter) Shutdown(string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown = true
}

func (f *fakeEmitter) received(event string) []Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Envelope
	for _, e := range f.events {
		if e.Type == event {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeEmitter) wasShutdown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdown
}

func testConfig() *configs.AppConfig {
	return &configs.AppConfig{
		Environment:       "development",
		MessageRateLimit:  3,
		MessageRateWindow: 4 * time.Second,
		RoomCreateLimit:   3,
		RoomCreateWindow:  30 * time.Second,
		HistoryLimit:      5,
		MaxMessageLength:  500,
	}
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(testConfig(), store.NewNop())
}

// attach wires a fake emitter and identifies it in one step.
func attach(t *testing.T, h *Hub, connID, username string, role user.Role) *fakeEmitter {
	t.Helper()

	e := &fakeEmitter{}
	h.Attach(connID, e)

	_, customErr := h.Identify(connID, username, role)
	require.Nil(t, customErr)
	return e
}

func TestIdentifyRequired(t *testing.T) {
	h := newTestHub(t)
	h.Attach("c1", &fakeEmitter{})

	_, customErr := h.Post("c1", "hello", "")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrNotIdentified, customErr.Code)

	_, customErr = h.CreateRoom("c1", "lobby", "", nil)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrNotIdentified, customErr.Code)
}

func TestPostRequiresRoom(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)

	_, customErr := h.Post("c1", "hello", "")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrNoCurrentRoom, customErr.Code)
}

func TestPostFansOutToRoomOnly(t *testing.T) {
	h := newTestHub(t)
	alice := attach(t, h, "c1", "alice", user.RoleMember)
	bob := attach(t, h, "c2", "bob", user.RoleMember)
	carol := attach(t, h, "c3", "carol", user.RoleMember)

	_, customErr := h.JoinRoom("c1", "lobby", "")
	require.Nil(t, customErr)
	_, customErr = h.JoinRoom("c2", "lobby", "")
	require.Nil(t, customErr)
	_, customErr = h.JoinRoom("c3", "other", "")
	require.Nil(t, customErr)

	msg, postErr := h.Post("c1", "hello room", "")
	require.Nil(t, postErr)
	assert.Equal(t, "alice", msg.Author)
	assert.Equal(t, KindText, msg.Kind)
	assert.NotEmpty(t, msg.ID)

	// sender and roommate both receive it, the outsider does not
	require.Len(t, alice.received(EvMsgNew), 1)
	require.Len(t, bob.received(EvMsgNew), 1)
	assert.Empty(t, carol.received(EvMsgNew))

	delivered := bob.received(EvMsgNew)[0].Payload.(Message)
	assert.Equal(t, msg.ID, delivered.ID)
	assert.Equal(t, "hello room", delivered.Body)
}

func TestPostValidation(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)
	_, customErr := h.JoinRoom("c1", "lobby", "")
	require.Nil(t, customErr)

	_, postErr := h.Post("c1", "", "")
	require.NotNil(t, postErr)
	assert.Equal(t, errs.ErrEmptyMessage, postErr.Code)

	_, postErr = h.Post("c1", "hello", "hologram")
	require.NotNil(t, postErr)
	assert.Equal(t, errs.ErrMessageKindInvalid, postErr.Code)

	long := make([]rune, 501)
	for i := range long {
		long[i] = 'x'
	}
	_, postErr = h.Post("c1", string(long), "")
	require.NotNil(t, postErr)
	assert.Equal(t, errs.ErrMessageTooLong, postErr.Code)

	// non-text kinds may carry an empty body (a bare attachment reference)
	_, postErr = h.Post("c1", "", "image")
	require.Nil(t, postErr)
}

func TestPostRateLimit(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)
	_, customErr := h.JoinRoom("c1", "lobby", "")
	require.Nil(t, customErr)

	for i := 0; i < 3; i++ {
		_, postErr := h.Post("c1", fmt.Sprintf("msg %d", i), "")
		require.Nil(t, postErr)
	}

	_, postErr := h.Post("c1", "one too many", "")
	require.NotNil(t, postErr)
	assert.Equal(t, errs.ErrRateLimited, postErr.Code)

	// the rejected message never reached the room history
	payload, histErr := h.RoomHistory("c1")
	require.Nil(t, histErr)
	assert.Len(t, payload.Messages, 3)
}

func TestMutedSenderRejected(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)
	attach(t, h, "c2", "mod", user.RoleModerator)
	_, customErr := h.JoinRoom("c1", "lobby", "")
	require.Nil(t, customErr)

	require.Nil(t, h.Mute("c2", "alice"))

	_, postErr := h.Post("c1", "silenced", "")
	require.NotNil(t, postErr)
	assert.Equal(t, errs.ErrMuted, postErr.Code)

	// the mute also blocks direct messages
	_, dmErr := h.SendDM("c1", "mod", "psst")
	require.NotNil(t, dmErr)
	assert.Equal(t, errs.ErrMuted, dmErr.Code)

	require.Nil(t, h.Unmute("c2", "alice"))
	_, postErr = h.Post("c1", "free again", "")
	require.Nil(t, postErr)
}

func TestJoinEmitsNoticesAndHistory(t *testing.T) {
	h := newTestHub(t)
	alice := attach(t, h, "c1", "alice", user.RoleMember)
	bob := attach(t, h, "c2", "bob", user.RoleMember)

	_, customErr := h.JoinRoom("c1", "lobby", "")
	require.Nil(t, customErr)

	_, postErr := h.Post("c1", "early message", "")
	require.Nil(t, postErr)

	_, customErr = h.JoinRoom("c2", "lobby", "")
	require.Nil(t, customErr)

	// the existing member saw the join notice
	notices := alice.received(EvRoomSystem)
	require.NotEmpty(t, notices)
	last := notices[len(notices)-1].Payload.(SystemNotice)
	assert.Equal(t, "bob joined", last.Text)

	// the late joiner got the room's recent history
	histories := bob.received(EvMsgHistory)
	require.Len(t, histories, 1)
	payload := histories[0].Payload.(MsgHistoryPayload)
	require.Len(t, payload.Messages, 1)
	assert.Equal(t, "early message", payload.Messages[0].Body)
}

func TestSingleRoomInvariant(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)

	_, customErr := h.JoinRoom("c1", "first", "")
	require.Nil(t, customErr)
	_, customErr = h.JoinRoom("c1", "second", "")
	require.Nil(t, customErr)

	sess, ok := h.Session("c1")
	require.True(t, ok)
	assert.Equal(t, "second", sess.Room)

	first, infoErr := h.RoomInfo("first")
	require.Nil(t, infoErr)
	assert.Equal(t, 0, first.Online)

	second, infoErr := h.RoomInfo("second")
	require.Nil(t, infoErr)
	assert.Equal(t, 1, second.Online)
}

func TestHistoryBound(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "mod", user.RoleModerator) // elevated, bypasses rate limits
	_, customErr := h.JoinRoom("c1", "lobby", "")
	require.Nil(t, customErr)

	for i := 0; i < 8; i++ {
		_, postErr := h.Post("c1", fmt.Sprintf("msg %d", i), "")
		require.Nil(t, postErr)
	}

	payload, histErr := h.RoomHistory("c1")
	require.Nil(t, histErr)
	require.Len(t, payload.Messages, 5)
	assert.Equal(t, "msg 3", payload.Messages[0].Body)
	assert.Equal(t, "msg 7", payload.Messages[4].Body)
}

func TestEditAndDeletePermissions(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)
	attach(t, h, "c2", "bob", user.RoleMember)

	_, customErr := h.CreateRoom("c1", "lobby", "", nil)
	require.Nil(t, customErr)
	_, customErr = h.JoinRoom("c1", "lobby", "")
	require.Nil(t, customErr)
	_, customErr = h.JoinRoom("c2", "lobby", "")
	require.Nil(t, customErr)

	msg, postErr := h.Post("c2", "bob's message", "")
	require.Nil(t, postErr)

	// bob edits his own message
	edited, editErr := h.EditMessage("c2", msg.ID, "bob's edit")
	require.Nil(t, editErr)
	assert.True(t, edited.Edited)
	assert.Equal(t, "bob's edit", edited.Body)

	// alice owns the room, so she may delete bob's message
	require.Nil(t, h.DeleteMessage("c1", msg.ID))

	// and bob cannot touch a message of alice's
	aliceMsg, postErr := h.Post("c1", "alice's message", "")
	require.Nil(t, postErr)
	_, editErr = h.EditMessage("c2", aliceMsg.ID, "vandalism")
	require.NotNil(t, editErr)
	assert.Equal(t, errs.ErrPermissionDenied, editErr.Code)
}

func TestEditMissingMessage(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)
	_, customErr := h.JoinRoom("c1", "lobby", "")
	require.Nil(t, customErr)

	_, editErr := h.EditMessage("c1", "no-such-id", "body")
	require.NotNil(t, editErr)
	assert.Equal(t, errs.ErrMessageNotFound, editErr.Code)
}

func TestDirectMessageDelivery(t *testing.T) {
	h := newTestHub(t)
	alice := attach(t, h, "c1", "alice", user.RoleMember)
	bob1 := attach(t, h, "c2", "bob", user.RoleMember)
	bob2 := attach(t, h, "c3", "bob", user.RoleMember)
	carol := attach(t, h, "c4", "carol", user.RoleMember)

	msg, dmErr := h.SendDM("c1", "bob", "hi bob")
	require.Nil(t, dmErr)
	assert.Equal(t, "alice", msg.From)

	// sender echo on all of alice's connections, receive on all of bob's
	require.Len(t, alice.received(EvDmSent), 1)
	require.Len(t, bob1.received(EvDmReceive), 1)
	require.Len(t, bob2.received(EvDmReceive), 1)
	assert.Empty(t, carol.received(EvDmReceive))

	// the thread reads the same from both ends
	assert.Len(t, h.DMHistory("alice", "bob"), 1)
	assert.Equal(t, h.DMHistory("alice", "bob"), h.DMHistory("bob", "alice"))
}

func TestOfflineRecipientStillRecorded(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)

	_, dmErr := h.SendDM("c1", "offline-bob", "read this later")
	require.Nil(t, dmErr)

	assert.Len(t, h.DMHistory("alice", "offline-bob"), 1)
}

func TestOwnerSeesDMTraffic(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)
	attach(t, h, "c2", "bob", user.RoleMember)
	watcher := attach(t, h, "c3", "admin", user.RoleOwner)

	_, dmErr := h.SendDM("c1", "bob", "between us")
	require.Nil(t, dmErr)

	watched := watcher.received(EvDmWatch)
	require.Len(t, watched, 1)
	payload := watched[0].Payload.(DmWatchPayload)
	assert.Equal(t, "between us", payload.Message.Body)
}

func TestBanBlocksJoin(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)
	attach(t, h, "c2", "admin", user.RoleOwner)

	require.Nil(t, h.Ban("c2", "alice"))

	_, joinErr := h.JoinRoom("c1", "lobby", "")
	require.NotNil(t, joinErr)
	assert.Equal(t, errs.ErrBannedFromRoom, joinErr.Code)

	require.Nil(t, h.Unban("c2", "alice"))
	_, joinErr = h.JoinRoom("c1", "lobby", "")
	require.Nil(t, joinErr)
}

func TestBanIsOwnerOnlyThroughHub(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "mod", user.RoleModerator)

	banErr := h.Ban("c1", "alice")
	require.NotNil(t, banErr)
	assert.Equal(t, errs.ErrPermissionDenied, banErr.Code)

	// the same moderator may mute
	require.Nil(t, h.Mute("c1", "alice"))
}

func TestKick(t *testing.T) {
	h := newTestHub(t)
	target := attach(t, h, "c1", "alice", user.RoleMember)
	mod := attach(t, h, "c2", "mod", user.RoleModerator)

	_, customErr := h.JoinRoom("c1", "lobby", "")
	require.Nil(t, customErr)
	_, customErr = h.JoinRoom("c2", "lobby", "")
	require.Nil(t, customErr)

	require.Nil(t, h.Kick("c2", "alice"))

	// the target learned why, then lost its connection and session
	require.Len(t, target.received(EvKicked), 1)
	assert.True(t, target.wasShutdown())
	_, ok := h.Session("c1")
	assert.False(t, ok)

	// the room heard about it
	var sawKickNotice bool
	for _, e := range mod.received(EvRoomSystem) {
		if e.Payload.(SystemNotice).Text == "alice was kicked by mod" {
			sawKickNotice = true
		}
	}
	assert.True(t, sawKickNotice)

	summary, infoErr := h.RoomInfo("lobby")
	require.Nil(t, infoErr)
	assert.Equal(t, 1, summary.Online)
}

func TestKickRequiresModerator(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)
	attach(t, h, "c2", "bob", user.RoleMember)

	kickErr := h.Kick("c1", "bob")
	require.NotNil(t, kickErr)
	assert.Equal(t, errs.ErrPermissionDenied, kickErr.Code)
}

func TestKickOfflineTarget(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "mod", user.RoleModerator)

	kickErr := h.Kick("c1", "nobody")
	require.NotNil(t, kickErr)
	assert.Equal(t, errs.ErrUserNotOnline, kickErr.Code)
}

func TestDeleteRoomEvictsMembers(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)
	member := attach(t, h, "c2", "bob", user.RoleMember)

	_, customErr := h.CreateRoom("c1", "doomed", "", nil)
	require.Nil(t, customErr)
	_, customErr = h.JoinRoom("c2", "doomed", "")
	require.Nil(t, customErr)

	require.Nil(t, h.DeleteRoom("c1", "doomed"))

	require.Len(t, member.received(EvRoomDeleted), 1)
	sess, ok := h.Session("c2")
	require.True(t, ok)
	assert.Empty(t, sess.Room)

	_, infoErr := h.RoomInfo("doomed")
	require.NotNil(t, infoErr)
	assert.Equal(t, errs.ErrRoomNotFound, infoErr.Code)
}

func TestDisconnectCleansUp(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)
	roommate := attach(t, h, "c2", "bob", user.RoleMember)

	_, customErr := h.JoinRoom("c1", "lobby", "")
	require.Nil(t, customErr)
	_, customErr = h.JoinRoom("c2", "lobby", "")
	require.Nil(t, customErr)

	h.Disconnect("c1")

	_, ok := h.Session("c1")
	assert.False(t, ok)

	summary, infoErr := h.RoomInfo("lobby")
	require.Nil(t, infoErr)
	assert.Equal(t, 1, summary.Online)

	var sawLeave bool
	for _, e := range roommate.received(EvRoomSystem) {
		if e.Payload.(SystemNotice).Text == "alice left" {
			sawLeave = true
		}
	}
	assert.True(t, sawLeave)

	// a second disconnect is harmless
	h.Disconnect("c1")
}

func TestTypingExcludesSender(t *testing.T) {
	h := newTestHub(t)
	alice := attach(t, h, "c1", "alice", user.RoleMember)
	bob := attach(t, h, "c2", "bob", user.RoleMember)

	_, customErr := h.JoinRoom("c1", "lobby", "")
	require.Nil(t, customErr)
	_, customErr = h.JoinRoom("c2", "lobby", "")
	require.Nil(t, customErr)

	require.Nil(t, h.Typing("c1"))

	assert.Empty(t, alice.received(EvMsgTyping))
	require.Len(t, bob.received(EvMsgTyping), 1)
	notice := bob.received(EvMsgTyping)[0].Payload.(TypingNotice)
	assert.Equal(t, "alice", notice.Username)
}

func TestPostBumpsRoomScore(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)

	_, customErr := h.JoinRoom("c1", "lobby", "")
	require.Nil(t, customErr)

	before, infoErr := h.RoomInfo("lobby")
	require.Nil(t, infoErr)

	_, postErr := h.Post("c1", "activity", "")
	require.Nil(t, postErr)

	// message traffic counts toward the trending score, same as joins
	after, infoErr := h.RoomInfo("lobby")
	require.Nil(t, infoErr)
	assert.Greater(t, after.Score, before.Score)
}

func TestMessageTrafficDrivesTrendingOrder(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)
	attach(t, h, "c2", "bob", user.RoleMember)

	_, customErr := h.JoinRoom("c1", "quiet", "")
	require.Nil(t, customErr)
	_, customErr = h.JoinRoom("c2", "busy", "")
	require.Nil(t, customErr)

	for i := 0; i < 2; i++ {
		_, postErr := h.Post("c2", fmt.Sprintf("msg %d", i), "")
		require.Nil(t, postErr)
	}

	list := h.ListRooms()
	require.Len(t, list, 2)
	assert.Equal(t, "busy", list[0].Name)
	assert.Equal(t, "quiet", list[1].Name)
}

func TestRoomCreateRateLimit(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)

	for i := 0; i < 3; i++ {
		_, customErr := h.CreateRoom("c1", fmt.Sprintf("room-%d", i), "", nil)
		require.Nil(t, customErr)
	}

	_, customErr := h.CreateRoom("c1", "room-3", "", nil)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrRateLimited, customErr.Code)
}

func TestRejectedCreateDoesNotConsumeAllowance(t *testing.T) {
	h := newTestHub(t)
	attach(t, h, "c1", "alice", user.RoleMember)

	// an unusable name fails validation before the window is charged
	_, customErr := h.CreateRoom("c1", "  /\\?#  ", "", nil)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrEmptyRoomName, customErr.Code)

	// the full allowance is still available afterwards
	for i := 0; i < 3; i++ {
		_, customErr := h.CreateRoom("c1", fmt.Sprintf("room-%d", i), "", nil)
		require.Nil(t, customErr)
	}
}
