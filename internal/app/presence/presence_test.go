package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnlineOfflineLifecycle(t *testing.T) {
	d := NewDirectory()

	assert.False(t, d.IsOnline("alice"))

	d.MarkOnline("alice", "c1")
	assert.True(t, d.IsOnline("alice"))

	d.MarkOffline("alice", "c1")
	assert.False(t, d.IsOnline("alice"))
}

func TestUserStaysOnlineUntilLastConnection(t *testing.T) {
	d := NewDirectory()

	d.MarkOnline("alice", "c1")
	d.MarkOnline("alice", "c2")

	d.MarkOffline("alice", "c1")
	assert.True(t, d.IsOnline("alice"))

	d.MarkOffline("alice", "c2")
	assert.False(t, d.IsOnline("alice"))
}

func TestConnectionsFor(t *testing.T) {
	d := NewDirectory()

	d.MarkOnline("alice", "c1")
	d.MarkOnline("alice", "c2")
	d.MarkOnline("bob", "c3")

	assert.ElementsMatch(t, []string{"c1", "c2"}, d.ConnectionsFor("alice"))
	assert.ElementsMatch(t, []string{"c3"}, d.ConnectionsFor("bob"))
	assert.Empty(t, d.ConnectionsFor("nobody"))
}

func TestMarkOfflineUnknownIsNoop(t *testing.T) {
	d := NewDirectory()

	d.MarkOffline("ghost", "c1")
	assert.False(t, d.IsOnline("ghost"))
	assert.Equal(t, 0, d.OnlineCount())
}

func TestOnlineCount(t *testing.T) {
	d := NewDirectory()

	d.MarkOnline("alice", "c1")
	d.MarkOnline("alice", "c2")
	d.MarkOnline("bob", "c3")

	// counts distinct usernames, not connections
	assert.Equal(t, 2, d.OnlineCount())
}
