/*
Package chat contains the coordinating hub for the chat system.

This file defines the Hub struct, which routes every inbound event through
moderation checks, the session/presence/room directories, and finally the
fan-out fan to affected connections. The hub is the only component that
touches more than one directory, so cross-component invariants (presence
mirrors sessions, membership mirrors Session.Room) hold after every method
returns.
*/
package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"hubble/internal/app/dm"
	"hubble/internal/app/moderation"
	"hubble/internal/app/presence"
	"hubble/internal/app/room"
	"hubble/internal/app/session"
	"hubble/internal/app/store"
	"hubble/internal/app/user"
	"hubble/internal/configs"
	"hubble/internal/pkg/errs"
	"hubble/internal/pkg/logx"
)

// Emitter is the hub's view of one attached connection. The transport
// adapter implements it; tests substitute fakes.
type Emitter interface {
	// Emit queues one named event for delivery. It must never block.
	Emit(event string, payload any)

	// Shutdown closes the underlying connection with a reason, used when a
	// moderator kicks the session.
	Shutdown(reason string)
}

// Hub coordinates sessions, presence, rooms, messages, direct messages, and
// moderation for one process.
type Hub struct {
	cfg *configs.AppConfig

	sessions *session.Registry
	presence *presence.Directory
	rooms    *room.Directory
	dms      *dm.Router
	enforcer *moderation.Enforcer
	store    store.Store

	// connsMu guards conns.
	connsMu sync.RWMutex
	conns   map[string]Emitter

	// historiesMu guards histories; each room's buffer has its own lock.
	historiesMu sync.Mutex
	histories   map[string]*history

	logger zerolog.Logger
}

// NewHub wires the coordinator components together. The store may be the
// no-op implementation; the hub never depends on persistence succeeding.
func NewHub(cfg *configs.AppConfig, st store.Store) *Hub {
	limiter := moderation.NewSlidingLimiter(map[moderation.Action]moderation.Limit{
		moderation.ActionMessage:    {Count: cfg.MessageRateLimit, Window: cfg.MessageRateWindow},
		moderation.ActionRoomCreate: {Count: cfg.RoomCreateLimit, Window: cfg.RoomCreateWindow},
	})

	return &Hub{
		cfg:       cfg,
		sessions:  session.NewRegistry(cfg.StrictUsernames),
		presence:  presence.NewDirectory(),
		rooms:     room.NewDirectory(),
		dms:       dm.NewRouter(cfg.HistoryLimit),
		enforcer:  moderation.NewEnforcer(limiter),
		store:     st,
		conns:     make(map[string]Emitter),
		histories: make(map[string]*history),
		logger:    logx.Logger().With().Str("component", "hub").Logger(),
	}
}

// RestoreRooms loads persisted rooms into the directory, called once at
// startup before any connection attaches.
func (h *Hub) RestoreRooms(ctx context.Context) {
	records, err := h.store.LoadRooms(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to load rooms from store; starting empty.")
		return
	}
	if len(records) > 0 {
		h.rooms.Restore(records)
	}
}

// Attach registers a new transport connection and creates its anonymous
// session. Idempotent per connection ID.
func (h *Hub) Attach(connID string, e Emitter) {
	h.connsMu.Lock()
	h.conns[connID] = e
	h.connsMu.Unlock()

	h.sessions.Register(connID)
	h.logger.Debug().Str("conn_id", connID).Msg("Connection attached.")
}

// Disconnect tears down a connection: session, presence, and room membership
// are cleaned up before the method returns, so no later event from this
// connection can observe stale state. Safe to call more than once.
func (h *Hub) Disconnect(connID string) {
	h.connsMu.Lock()
	delete(h.conns, connID)
	h.connsMu.Unlock()

	sess, ok := h.sessions.Terminate(connID)
	if !ok {
		return
	}

	if sess.Username != "" {
		h.presence.MarkOffline(sess.Username, connID)
		if !h.presence.IsOnline(sess.Username) {
			h.enforcer.Forget(sess.Username)
		}
	}

	if sess.Room != "" {
		online, left := h.rooms.Leave(sess.Room, connID)
		if left {
			h.emitToRoom(sess.Room, EvRoomSystem, SystemNotice{Room: sess.Room, Text: fmt.Sprintf("%s left", sess.Username)})
			h.emitToRoom(sess.Room, EvRoomOnline, RoomOnline{Room: sess.Room, Count: online})
			h.broadcastRoomList()
		}
	}

	h.logger.Info().Str("conn_id", connID).Str("username", sess.Username).Msg("Connection disconnected.")
}

// Identify binds a username and role to the connection and marks it online.
func (h *Hub) Identify(connID, username string, role user.Role) (IdentifyResult, *errs.CustomError) {
	prev, _ := h.sessions.Lookup(connID)

	sess, customErr := h.sessions.Identify(connID, username, role)
	if customErr != nil {
		return IdentifyResult{}, customErr
	}

	if prev.Username != "" && prev.Username != username {
		h.presence.MarkOffline(prev.Username, connID)
	}
	h.presence.MarkOnline(username, connID)

	return IdentifyResult{User: sess.User()}, nil
}

// Session returns the current session snapshot for a connection.
func (h *Hub) Session(connID string) (session.Session, bool) {
	return h.sessions.Lookup(connID)
}

// requireIdentified resolves the session and rejects anonymous connections.
func (h *Hub) requireIdentified(connID string) (session.Session, *errs.CustomError) {
	sess, ok := h.sessions.Lookup(connID)
	if !ok || !sess.Identified() {
		return session.Session{}, errs.New(errs.ErrNotIdentified)
	}
	return sess, nil
}

// --- room operations ---

// CreateRoom ensures a room exists with the requester as owner, subject to
// the room-creation rate limit. Creating an existing room refreshes its
// password and metadata instead of failing.
func (h *Hub) CreateRoom(connID, name, password string, meta map[string]string) (room.Summary, *errs.CustomError) {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return room.Summary{}, customErr
	}

	// A request rejected on validation must not consume the allowance, so
	// the name is checked before the rate window is charged.
	name = room.NormalizeName(name)
	if name == "" {
		return room.Summary{}, errs.New(errs.ErrEmptyRoomName)
	}

	if !h.enforcer.Allow(sess.Username, moderation.ActionRoomCreate, sess.Role) {
		return room.Summary{}, errs.New(errs.ErrRateLimited)
	}

	summary, customErr := h.rooms.Create(name, sess.Username, password, meta)
	if customErr != nil {
		return room.Summary{}, customErr
	}

	h.persistRoom(summary.Name)
	h.broadcastRoomList()
	h.emitAll(EvRoomSystem, SystemNotice{Room: summary.Name, Text: fmt.Sprintf("Room %q created.", summary.Name)})

	return summary, nil
}

// JoinRoom moves the session into the named room after the process-wide ban
// check and the room's own eligibility checks. Any previous room is left in
// the same step and notified.
func (h *Hub) JoinRoom(connID, name, password string) (room.Summary, *errs.CustomError) {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return room.Summary{}, customErr
	}

	if h.enforcer.IsBanned(sess.Username) {
		return room.Summary{}, errs.New(errs.ErrBannedFromRoom)
	}

	summary, prevOnline, customErr := h.rooms.Join(name, connID, sess.Username, sess.Role, password, sess.Room)
	if customErr != nil {
		return room.Summary{}, customErr
	}

	h.sessions.SetRoom(connID, summary.Name)

	if prevOnline >= 0 {
		h.emitToRoom(sess.Room, EvRoomSystem, SystemNotice{Room: sess.Room, Text: fmt.Sprintf("%s left", sess.Username)})
		h.emitToRoom(sess.Room, EvRoomOnline, RoomOnline{Room: sess.Room, Count: prevOnline})
	}

	h.emitToRoom(summary.Name, EvRoomSystem, SystemNotice{Room: summary.Name, Text: fmt.Sprintf("%s joined", sess.Username)})
	h.emitToRoom(summary.Name, EvRoomOnline, RoomOnline{Room: summary.Name, Count: summary.Online})
	h.broadcastRoomList()
	h.persistRoom(summary.Name)

	// Late joiners receive the room's recent history.
	h.emitTo(connID, EvMsgHistory, MsgHistoryPayload{Room: summary.Name, Messages: h.historyFor(summary.Name).list()})

	return summary, nil
}

// LeaveRoom removes the session from its current room. Leaving while
// roomless is a no-op, not an error, and emits nothing.
func (h *Hub) LeaveRoom(connID string) *errs.CustomError {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return customErr
	}

	if sess.Room == "" {
		return nil
	}

	online, left := h.rooms.Leave(sess.Room, connID)
	h.sessions.SetRoom(connID, "")

	if left {
		h.emitToRoom(sess.Room, EvRoomSystem, SystemNotice{Room: sess.Room, Text: fmt.Sprintf("%s left", sess.Username)})
		h.emitToRoom(sess.Room, EvRoomOnline, RoomOnline{Room: sess.Room, Count: online})
		h.broadcastRoomList()
	}

	return nil
}

// DeleteRoom removes a room after evicting every member. Only the room's
// owner or an elevated role may delete.
func (h *Hub) DeleteRoom(connID, name string) *errs.CustomError {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return customErr
	}

	normalized := room.NormalizeName(name)

	evicted, customErr := h.rooms.Delete(normalized, sess.Username, sess.Role)
	if customErr != nil {
		return customErr
	}

	for _, member := range evicted {
		h.sessions.SetRoom(member, "")
		h.emitTo(member, EvRoomDeleted, RoomDeleted{Room: normalized})
	}

	h.dropHistory(normalized)
	h.persistRoomDelete(normalized)
	h.emitAll(EvRoomSystem, SystemNotice{Room: normalized, Text: fmt.Sprintf("Room %q deleted by %s", normalized, sess.Username)})
	h.broadcastRoomList()

	return nil
}

// LockRoom sets or clears the room's locked flag.
func (h *Hub) LockRoom(connID, name string, lock bool) (room.Summary, *errs.CustomError) {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return room.Summary{}, customErr
	}

	summary, customErr := h.rooms.Lock(name, sess.Username, sess.Role, lock)
	if customErr != nil {
		return room.Summary{}, customErr
	}

	state := "unlocked"
	if lock {
		state = "locked"
	}
	h.emitToRoom(summary.Name, EvRoomSystem, SystemNotice{Room: summary.Name, Text: fmt.Sprintf("Room %s by %s", state, sess.Username)})
	h.broadcastRoomList()
	h.persistRoom(summary.Name)

	return summary, nil
}

// SetRoomPassword sets or clears the room's password.
func (h *Hub) SetRoomPassword(connID, name, password string) (room.Summary, *errs.CustomError) {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return room.Summary{}, customErr
	}

	summary, customErr := h.rooms.SetPassword(name, sess.Username, sess.Role, password)
	if customErr != nil {
		return room.Summary{}, customErr
	}

	state := "cleared"
	if password != "" {
		state = "set"
	}
	h.emitToRoom(summary.Name, EvRoomSystem, SystemNotice{Room: summary.Name, Text: fmt.Sprintf("Room password %s by %s", state, sess.Username)})
	h.broadcastRoomList()
	h.persistRoom(summary.Name)

	return summary, nil
}

// SetRoomOwner transfers room ownership.
func (h *Hub) SetRoomOwner(connID, name, newOwner string) (room.Summary, *errs.CustomError) {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return room.Summary{}, customErr
	}

	summary, customErr := h.rooms.SetOwner(name, sess.Username, sess.Role, newOwner)
	if customErr != nil {
		return room.Summary{}, customErr
	}

	h.emitToRoom(summary.Name, EvRoomSystem, SystemNotice{Room: summary.Name, Text: fmt.Sprintf("Owner changed to %s by %s", newOwner, sess.Username)})
	h.broadcastRoomList()
	h.persistRoom(summary.Name)

	return summary, nil
}

// SetRoomBan adds or removes a username on the room's own ban list.
func (h *Hub) SetRoomBan(connID, name, target string, banned bool) (room.Summary, *errs.CustomError) {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return room.Summary{}, customErr
	}

	summary, customErr := h.rooms.SetBanned(name, sess.Username, sess.Role, target, banned)
	if customErr != nil {
		return room.Summary{}, customErr
	}

	h.persistRoom(summary.Name)
	return summary, nil
}

// ListRooms returns every room in trending order.
func (h *Hub) ListRooms() []room.Summary {
	return h.rooms.List()
}

// RoomInfo returns one room's summary.
func (h *Hub) RoomInfo(name string) (room.Summary, *errs.CustomError) {
	return h.rooms.Info(name)
}

// --- direct messages ---

// SendDM appends a direct message to the canonical pair thread and delivers
// it to every online connection of both parties. The recipient may be
// offline; the thread still records the message.
func (h *Hub) SendDM(connID, to, body string) (dm.DirectMessage, *errs.CustomError) {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return dm.DirectMessage{}, customErr
	}

	if body == "" {
		return dm.DirectMessage{}, errs.New(errs.ErrEmptyMessage)
	}
	if len([]rune(body)) > h.cfg.MaxMessageLength {
		return dm.DirectMessage{}, errs.New(errs.ErrMessageTooLong)
	}
	if h.enforcer.IsMuted(sess.Username) {
		return dm.DirectMessage{}, errs.New(errs.ErrMuted)
	}

	msg := h.dms.Append(sess.Username, to, body)
	h.persistDM(msg)

	delivered := make(map[string]struct{})
	for _, c := range h.presence.ConnectionsFor(sess.Username) {
		h.emitTo(c, EvDmSent, msg)
		delivered[c] = struct{}{}
	}
	for _, c := range h.presence.ConnectionsFor(to) {
		if _, done := delivered[c]; done {
			continue
		}
		h.emitTo(c, EvDmReceive, msg)
		delivered[c] = struct{}{}
	}

	// Owner-tier sessions see every direct message.
	for _, c := range h.sessionsWithRole(user.RoleOwner) {
		if _, done := delivered[c]; done {
			continue
		}
		h.emitTo(c, EvDmWatch, DmWatchPayload{Message: msg})
	}

	return msg, nil
}

// OpenDM returns the conversation thread between the session and other.
func (h *Hub) OpenDM(connID, other string) (DmHistoryPayload, *errs.CustomError) {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return DmHistoryPayload{}, customErr
	}

	payload := DmHistoryPayload{With: other, Messages: h.dms.History(sess.Username, other)}
	h.emitTo(connID, EvDmHistory, payload)
	return payload, nil
}

// DMHistory returns the thread for an arbitrary pair, used by the REST
// surface. Lookup is symmetric in its arguments.
func (h *Hub) DMHistory(a, b string) []dm.DirectMessage {
	return h.dms.History(a, b)
}

// --- moderation ---

// Mute flags target as muted, process-wide.
func (h *Hub) Mute(connID, target string) *errs.CustomError {
	return h.moderationFlag(connID, target, "%s has been muted", h.enforcer.Mute)
}

// Unmute clears target's muted flag.
func (h *Hub) Unmute(connID, target string) *errs.CustomError {
	return h.moderationFlag(connID, target, "%s has been unmuted", h.enforcer.Unmute)
}

// Ban flags target as banned, process-wide. Owner tier only.
func (h *Hub) Ban(connID, target string) *errs.CustomError {
	return h.moderationFlag(connID, target, "%s has been banned", h.enforcer.Ban)
}

// Unban clears target's banned flag. Owner tier only.
func (h *Hub) Unban(connID, target string) *errs.CustomError {
	return h.moderationFlag(connID, target, "%s has been unbanned", h.enforcer.Unban)
}

func (h *Hub) moderationFlag(connID, target, noticeFormat string, apply func(string, user.Role) *errs.CustomError) *errs.CustomError {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return customErr
	}

	if customErr := apply(target, sess.Role); customErr != nil {
		return customErr
	}

	h.emitAll(EvModNotice, SystemNotice{Text: fmt.Sprintf(noticeFormat, target)})
	return nil
}

// Kick forcibly disconnects every live connection of target, evicting it
// from its room. Requires moderator or above.
func (h *Hub) Kick(connID, target string) *errs.CustomError {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return customErr
	}

	if !sess.Role.CanModerate() {
		return errs.New(errs.ErrPermissionDenied)
	}

	conns := h.presence.ConnectionsFor(target)
	if len(conns) == 0 {
		return errs.New(errs.ErrUserNotOnline)
	}

	// The room notice goes out before eviction so remaining members learn
	// why the member vanished.
	if targetSess, ok := h.sessionOfUser(target, conns); ok && targetSess.Room != "" {
		h.emitToRoom(targetSess.Room, EvRoomSystem, SystemNotice{
			Room: targetSess.Room,
			Text: fmt.Sprintf("%s was kicked by %s", target, sess.Username),
		})
	}

	for _, c := range conns {
		h.connsMu.RLock()
		e, ok := h.conns[c]
		h.connsMu.RUnlock()

		if ok {
			e.Emit(EvKicked, KickedPayload{Reason: fmt.Sprintf("Kicked by %s", sess.Username)})
		}

		h.Disconnect(c)

		if ok {
			e.Shutdown(fmt.Sprintf("kicked by %s", sess.Username))
		}
	}

	h.logger.Info().Str("target", target).Str("requester", sess.Username).Msg("User kicked.")
	return nil
}

// sessionOfUser returns the session of the first of target's connections
// that still resolves.
func (h *Hub) sessionOfUser(target string, conns []string) (session.Session, bool) {
	for _, c := range conns {
		if sess, ok := h.sessions.Lookup(c); ok && sess.Username == target {
			return sess, true
		}
	}
	return session.Session{}, false
}

// sessionsWithRole returns the connection IDs of sessions holding exactly
// the given role.
func (h *Hub) sessionsWithRole(role user.Role) []string {
	h.connsMu.RLock()
	defer h.connsMu.RUnlock()

	var out []string
	for connID := range h.conns {
		if sess, ok := h.sessions.Lookup(connID); ok && sess.Role == role {
			out = append(out, connID)
		}
	}
	return out
}

// --- fan-out helpers ---

func (h *Hub) emitTo(connID, event string, payload any) {
	h.connsMu.RLock()
	e, ok := h.conns[connID]
	h.connsMu.RUnlock()

	if ok {
		e.Emit(event, payload)
	}
}

// emitToRoom delivers one event to every member of the room, observing the
// membership as it existed when the snapshot was taken.
func (h *Hub) emitToRoom(name, event string, payload any, exclude ...string) {
	members := h.rooms.Members(name)

	skip := make(map[string]struct{}, len(exclude))
	for _, c := range exclude {
		skip[c] = struct{}{}
	}

	for _, member := range members {
		if _, excluded := skip[member]; excluded {
			continue
		}
		h.emitTo(member, event, payload)
	}
}

func (h *Hub) emitAll(event string, payload any) {
	h.connsMu.RLock()
	targets := make([]Emitter, 0, len(h.conns))
	for _, e := range h.conns {
		targets = append(targets, e)
	}
	h.connsMu.RUnlock()

	for _, e := range targets {
		e.Emit(event, payload)
	}
}

func (h *Hub) broadcastRoomList() {
	h.emitAll(EvRoomsList, RoomListPayload{Rooms: h.rooms.List()})
}

// --- history plumbing ---

func (h *Hub) historyFor(name string) *history {
	h.historiesMu.Lock()
	defer h.historiesMu.Unlock()

	buf, ok := h.histories[name]
	if !ok {
		buf = newHistory(h.cfg.HistoryLimit)
		h.histories[name] = buf
	}
	return buf
}

func (h *Hub) dropHistory(name string) {
	h.historiesMu.Lock()
	defer h.historiesMu.Unlock()
	delete(h.histories, name)
}

// --- fire-and-forget persistence ---
// Store failures are logged and swallowed: the in-memory state is
// authoritative and fan-out never waits on the database.

func (h *Hub) persistRoom(name string) {
	rec, ok := h.rooms.Export(name)
	if !ok {
		return
	}
	go func() {
		if err := h.store.SaveRoom(context.Background(), rec); err != nil {
			h.logger.Warn().Err(err).Str("room", name).Msg("Failed to persist room.")
		}
	}()
}

func (h *Hub) persistRoomDelete(name string) {
	go func() {
		if err := h.store.DeleteRoom(context.Background(), name); err != nil {
			h.logger.Warn().Err(err).Str("room", name).Msg("Failed to delete persisted room.")
		}
	}()
}

func (h *Hub) persistMessage(msg Message) {
	go func() {
		rec := store.MessageRecord{
			ID:        msg.ID,
			Room:      msg.Room,
			Author:    msg.Author,
			Body:      msg.Body,
			Kind:      string(msg.Kind),
			Edited:    msg.Edited,
			CreatedAt: msg.Time,
		}
		if err := h.store.SaveMessage(context.Background(), rec); err != nil {
			h.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("Failed to persist message.")
		}
	}()
}

func (h *Hub) persistMessageDelete(id string) {
	go func() {
		if err := h.store.DeleteMessage(context.Background(), id); err != nil {
			h.logger.Warn().Err(err).Str("message_id", id).Msg("Failed to delete persisted message.")
		}
	}()
}

func (h *Hub) persistDM(msg dm.DirectMessage) {
	go func() {
		if err := h.store.SaveDirectMessage(context.Background(), msg); err != nil {
			h.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("Failed to persist direct message.")
		}
	}()
}
