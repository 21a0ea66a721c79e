package room

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubble/internal/app/user"
	"hubble/internal/pkg/errs"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "lobby", NormalizeName("  lobby  "))
	assert.Equal(t, "abc", NormalizeName("a/b\\c"))
	assert.Equal(t, "qna", NormalizeName("q?n#a"))
	assert.Equal(t, "", NormalizeName("  /\\?#  "))

	long := make([]byte, 120)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, NormalizeName(string(long)), MaxNameLength)
}

func TestNormalizeNameCapsOnRuneBoundary(t *testing.T) {
	// 100 two-byte runes; a byte-wise cap would cut the 40th rune in half
	name := NormalizeName(strings.Repeat("é", 100))

	assert.True(t, utf8.ValidString(name))
	assert.Equal(t, MaxNameLength, utf8.RuneCountInString(name))
	assert.Equal(t, strings.Repeat("é", MaxNameLength), name)
}

func TestCreateClaimsOwnership(t *testing.T) {
	d := NewDirectory()

	summary, customErr := d.Create("lobby", "alice", "", nil)
	require.Nil(t, customErr)
	assert.Equal(t, "lobby", summary.Name)
	assert.Equal(t, "alice", summary.Owner)
	assert.Equal(t, int64(1), summary.Score)

	// re-creating never steals ownership, but still counts as activity
	summary, customErr = d.Create("lobby", "bob", "", nil)
	require.Nil(t, customErr)
	assert.Equal(t, "alice", summary.Owner)
	assert.Equal(t, int64(2), summary.Score)
}

func TestCreateRejectsEmptyName(t *testing.T) {
	d := NewDirectory()

	_, customErr := d.Create("  ?#  ", "alice", "", nil)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrEmptyRoomName, customErr.Code)
}

func TestJoinCreatesOnFirstReference(t *testing.T) {
	d := NewDirectory()

	summary, prevOnline, customErr := d.Join("fresh", "c1", "alice", user.RoleMember, "", "")
	require.Nil(t, customErr)
	assert.Equal(t, -1, prevOnline)
	assert.Equal(t, 1, summary.Online)

	// joining without an explicit create leaves the room unowned
	assert.Empty(t, summary.Owner)
}

func TestJoinMovesBetweenRooms(t *testing.T) {
	d := NewDirectory()

	_, _, customErr := d.Join("first", "c1", "alice", user.RoleMember, "", "")
	require.Nil(t, customErr)

	summary, prevOnline, customErr := d.Join("second", "c1", "alice", user.RoleMember, "", "first")
	require.Nil(t, customErr)
	assert.Equal(t, 0, prevOnline)
	assert.Equal(t, 1, summary.Online)
	assert.Equal(t, 0, d.Online("first"))
}

func TestJoinLockedRoom(t *testing.T) {
	d := NewDirectory()

	_, customErr := d.Create("vault", "alice", "", nil)
	require.Nil(t, customErr)
	_, customErr = d.Lock("vault", "alice", user.RoleMember, true)
	require.Nil(t, customErr)

	_, _, customErr = d.Join("vault", "c1", "bob", user.RoleMember, "", "")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrRoomLocked, customErr.Code)

	// the owner and elevated roles pass the lock
	_, _, customErr = d.Join("vault", "c2", "alice", user.RoleMember, "", "")
	require.Nil(t, customErr)
	_, _, customErr = d.Join("vault", "c3", "mod", user.RoleModerator, "", "")
	require.Nil(t, customErr)
}

func TestJoinPasswordRoom(t *testing.T) {
	d := NewDirectory()

	_, customErr := d.Create("secret", "alice", "hunter2", nil)
	require.Nil(t, customErr)

	_, _, customErr = d.Join("secret", "c1", "bob", user.RoleMember, "wrong", "")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrWrongPassword, customErr.Code)

	_, _, customErr = d.Join("secret", "c1", "bob", user.RoleMember, "hunter2", "")
	require.Nil(t, customErr)
}

func TestJoinRespectsRoomBanList(t *testing.T) {
	d := NewDirectory()

	_, customErr := d.Create("lobby", "alice", "", nil)
	require.Nil(t, customErr)
	_, customErr = d.SetBanned("lobby", "alice", user.RoleMember, "bob", true)
	require.Nil(t, customErr)

	_, _, customErr = d.Join("lobby", "c1", "bob", user.RoleMember, "", "")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrBannedFromRoom, customErr.Code)

	_, customErr = d.SetBanned("lobby", "alice", user.RoleMember, "bob", false)
	require.Nil(t, customErr)
	_, _, customErr = d.Join("lobby", "c1", "bob", user.RoleMember, "", "")
	require.Nil(t, customErr)
}

func TestLeave(t *testing.T) {
	d := NewDirectory()

	_, _, customErr := d.Join("lobby", "c1", "alice", user.RoleMember, "", "")
	require.Nil(t, customErr)
	_, _, customErr = d.Join("lobby", "c2", "bob", user.RoleMember, "", "")
	require.Nil(t, customErr)

	remaining, left := d.Leave("lobby", "c1")
	assert.True(t, left)
	assert.Equal(t, 1, remaining)

	// leaving twice reports absence
	remaining, left = d.Leave("lobby", "c1")
	assert.False(t, left)
	assert.Equal(t, 1, remaining)

	_, left = d.Leave("nowhere", "c1")
	assert.False(t, left)
}

func TestDeleteAuthorization(t *testing.T) {
	d := NewDirectory()

	_, customErr := d.Create("lobby", "alice", "", nil)
	require.Nil(t, customErr)
	_, _, customErr = d.Join("lobby", "c1", "bob", user.RoleMember, "", "")
	require.Nil(t, customErr)

	_, delErr := d.Delete("lobby", "bob", user.RoleMember)
	require.NotNil(t, delErr)
	assert.Equal(t, errs.ErrNotRoomOwner, delErr.Code)

	evicted, delErr := d.Delete("lobby", "alice", user.RoleMember)
	require.Nil(t, delErr)
	assert.Equal(t, []string{"c1"}, evicted)

	_, infoErr := d.Info("lobby")
	require.NotNil(t, infoErr)
	assert.Equal(t, errs.ErrRoomNotFound, infoErr.Code)
}

func TestDeleteByElevatedRole(t *testing.T) {
	d := NewDirectory()

	_, customErr := d.Create("lobby", "alice", "", nil)
	require.Nil(t, customErr)

	_, delErr := d.Delete("lobby", "mod", user.RoleModerator)
	require.Nil(t, delErr)
}

func TestDeleteMissingRoom(t *testing.T) {
	d := NewDirectory()

	_, delErr := d.Delete("ghost", "alice", user.RoleOwner)
	require.NotNil(t, delErr)
	assert.Equal(t, errs.ErrRoomNotFound, delErr.Code)
}

func TestListOrderingContract(t *testing.T) {
	d := NewDirectory()

	// zulu gets 3 activity points, alpha and beta get 1 each
	for i := 0; i < 3; i++ {
		_, customErr := d.Create("zulu", "alice", "", nil)
		require.Nil(t, customErr)
	}
	_, customErr := d.Create("beta", "alice", "", nil)
	require.Nil(t, customErr)
	_, customErr = d.Create("alpha", "alice", "", nil)
	require.Nil(t, customErr)

	list := d.List()
	require.Len(t, list, 3)

	// descending score first, ties by ascending name
	assert.Equal(t, "zulu", list[0].Name)
	assert.Equal(t, "alpha", list[1].Name)
	assert.Equal(t, "beta", list[2].Name)
}

func TestOwnershipTransfer(t *testing.T) {
	d := NewDirectory()

	_, customErr := d.Create("lobby", "alice", "", nil)
	require.Nil(t, customErr)

	_, customErr = d.SetOwner("lobby", "bob", user.RoleMember, "bob")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrNotRoomOwner, customErr.Code)

	summary, customErr := d.SetOwner("lobby", "alice", user.RoleMember, "bob")
	require.Nil(t, customErr)
	assert.Equal(t, "bob", summary.Owner)

	// the previous owner lost admin rights with the transfer
	_, customErr = d.Lock("lobby", "alice", user.RoleMember, true)
	require.NotNil(t, customErr)
}

func TestSummaryHidesPassword(t *testing.T) {
	d := NewDirectory()

	summary, customErr := d.Create("secret", "alice", "hunter2", nil)
	require.Nil(t, customErr)
	assert.True(t, summary.HasPassword)

	summary, customErr = d.SetPassword("secret", "alice", user.RoleMember, "")
	require.Nil(t, customErr)
	assert.False(t, summary.HasPassword)
}

func TestExportRestoreRoundTrip(t *testing.T) {
	d := NewDirectory()

	_, customErr := d.Create("lobby", "alice", "pw", map[string]string{"topic": "general"})
	require.Nil(t, customErr)
	_, customErr = d.Lock("lobby", "alice", user.RoleMember, true)
	require.Nil(t, customErr)
	_, customErr = d.SetBanned("lobby", "alice", user.RoleMember, "mallory", true)
	require.Nil(t, customErr)

	rec, ok := d.Export("lobby")
	require.True(t, ok)

	restored := NewDirectory()
	restored.Restore([]Record{rec})

	summary, infoErr := restored.Info("lobby")
	require.Nil(t, infoErr)
	assert.Equal(t, "alice", summary.Owner)
	assert.True(t, summary.Locked)
	assert.True(t, summary.HasPassword)
	assert.Equal(t, "general", summary.Meta["topic"])

	// member sets never survive a restart, the ban list does
	assert.Equal(t, 0, summary.Online)
	_, _, joinErr := restored.Join("lobby", "c1", "mallory", user.RoleMember, "pw", "")
	require.NotNil(t, joinErr)
	assert.Equal(t, errs.ErrBannedFromRoom, joinErr.Code)
}
