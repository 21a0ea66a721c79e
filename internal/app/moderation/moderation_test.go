package moderation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubble/internal/app/user"
	"hubble/internal/pkg/errs"
)

func newTestEnforcer() *Enforcer {
	limiter := NewSlidingLimiter(map[Action]Limit{
		ActionMessage:    {Count: 3, Window: 4 * time.Second},
		ActionRoomCreate: {Count: 2, Window: 30 * time.Second},
	})
	return NewEnforcer(limiter)
}

func TestMuteRequiresModerator(t *testing.T) {
	e := newTestEnforcer()

	customErr := e.Mute("alice", user.RoleMember)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrPermissionDenied, customErr.Code)
	assert.False(t, e.IsMuted("alice"))

	require.Nil(t, e.Mute("alice", user.RoleModerator))
	assert.True(t, e.IsMuted("alice"))

	require.Nil(t, e.Unmute("alice", user.RoleModerator))
	assert.False(t, e.IsMuted("alice"))
}

func TestBanIsOwnerOnly(t *testing.T) {
	e := newTestEnforcer()

	// a moderator can mute but not ban
	customErr := e.Ban("alice", user.RoleModerator)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrPermissionDenied, customErr.Code)

	require.Nil(t, e.Ban("alice", user.RoleOwner))
	assert.True(t, e.IsBanned("alice"))

	customErr = e.Unban("alice", user.RoleModerator)
	require.NotNil(t, customErr)
	assert.True(t, e.IsBanned("alice"))

	require.Nil(t, e.Unban("alice", user.RoleOwner))
	assert.False(t, e.IsBanned("alice"))
}

func TestMuteIsIdempotent(t *testing.T) {
	e := newTestEnforcer()

	require.Nil(t, e.Mute("alice", user.RoleOwner))
	require.Nil(t, e.Mute("alice", user.RoleOwner))
	assert.True(t, e.IsMuted("alice"))

	require.Nil(t, e.Unmute("alice", user.RoleOwner))
	require.Nil(t, e.Unmute("alice", user.RoleOwner))
	assert.False(t, e.IsMuted("alice"))
}

func TestSlidingWindowAllowance(t *testing.T) {
	now := time.Now()
	limiter := NewSlidingLimiter(map[Action]Limit{
		ActionMessage: {Count: 3, Window: 4 * time.Second},
	})
	limiter.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("alice", ActionMessage), "send %d inside allowance", i)
	}
	assert.False(t, limiter.Allow("alice", ActionMessage))

	// rejections are not recorded: once the window slides past the original
	// three sends the allowance resets in full
	now = now.Add(4*time.Second + time.Millisecond)
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("alice", ActionMessage), "send %d after window", i)
	}
	assert.False(t, limiter.Allow("alice", ActionMessage))
}

func TestSlidingWindowPerIdentity(t *testing.T) {
	now := time.Now()
	limiter := NewSlidingLimiter(map[Action]Limit{
		ActionMessage: {Count: 1, Window: time.Second},
	})
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("alice", ActionMessage))
	assert.False(t, limiter.Allow("alice", ActionMessage))

	// bob's window is independent
	assert.True(t, limiter.Allow("bob", ActionMessage))
}

func TestUnconfiguredActionAlwaysAllowed(t *testing.T) {
	limiter := NewSlidingLimiter(nil)

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow("alice", ActionMessage))
	}
}

func TestElevatedRolesBypassLimits(t *testing.T) {
	e := newTestEnforcer()

	for i := 0; i < 10; i++ {
		assert.True(t, e.Allow("mod", ActionMessage, user.RoleModerator))
	}

	// members are throttled after the allowance
	for i := 0; i < 3; i++ {
		assert.True(t, e.Allow("alice", ActionMessage, user.RoleMember))
	}
	assert.False(t, e.Allow("alice", ActionMessage, user.RoleMember))
}

func TestForgetClearsFlagsAndWindows(t *testing.T) {
	e := newTestEnforcer()

	require.Nil(t, e.Mute("alice", user.RoleOwner))
	require.Nil(t, e.Ban("alice", user.RoleOwner))
	e.Forget("alice")

	// moderation flags survive disconnects
	assert.True(t, e.IsMuted("alice"))
	assert.True(t, e.IsBanned("alice"))
}
