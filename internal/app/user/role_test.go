package user

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleGuest, ParseRole("guest"))
	assert.Equal(t, RoleMember, ParseRole("member"))
	assert.Equal(t, RoleModerator, ParseRole("moderator"))
	assert.Equal(t, RoleOwner, ParseRole("owner"))

	// legacy alias
	assert.Equal(t, RoleModerator, ParseRole("admin"))

	// unrecognized names degrade to guest
	assert.Equal(t, RoleGuest, ParseRole(""))
	assert.Equal(t, RoleGuest, ParseRole("superuser"))
}

func TestRoleTiers(t *testing.T) {
	assert.False(t, RoleGuest.CanModerate())
	assert.False(t, RoleMember.CanModerate())
	assert.True(t, RoleModerator.CanModerate())
	assert.True(t, RoleOwner.CanModerate())

	// banning stays owner-only
	assert.False(t, RoleModerator.CanBan())
	assert.True(t, RoleOwner.CanBan())

	assert.False(t, RoleMember.Elevated())
	assert.True(t, RoleModerator.Elevated())
}

func TestRoleJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, `"moderator"`, string(data))

	var parsed Role
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, RoleModerator, parsed)
}
