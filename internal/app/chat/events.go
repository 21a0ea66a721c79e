package chat

import (
	"hubble/internal/app/dm"
	"hubble/internal/app/room"
	"hubble/internal/app/user"
)

// Inbound event names, one per core operation. The transport adapter maps
// these 1:1 onto hub methods.
const (
	EvIdentify = "identify"

	EvRoomsCreate      = "rooms:create"
	EvRoomsJoin        = "rooms:join"
	EvRoomsLeave       = "rooms:leave"
	EvRoomsDelete      = "rooms:delete"
	EvRoomsLock        = "rooms:lock"
	EvRoomsSetPassword = "rooms:setPassword"
	EvRoomsSetOwner    = "rooms:setOwner"
	EvRoomsBan         = "rooms:ban"
	EvRoomsInfo        = "rooms:info"
	EvRoomsGet         = "rooms:get"

	EvMsgSend   = "msg:send"
	EvMsgEdit   = "msg:edit"
	EvMsgDelete = "msg:delete"
	EvMsgTyping = "msg:typing"
	EvMsgRead   = "msg:read"
	EvMsgGet    = "msg:get"

	EvDmOpen = "dm:open"
	EvDmSend = "dm:send"

	EvModMute   = "mod:mute"
	EvModUnmute = "mod:unmute"
	EvModBan    = "mod:ban"
	EvModUnban  = "mod:unban"
	EvModKick   = "mod:kick"
)

// Outbound event names.
const (
	EvAck = "ack"

	EvMsgNew     = "msg:new"
	EvMsgEdited  = "msg:edited"
	EvMsgDeleted = "msg:deleted"
	EvMsgHistory = "msg:history"

	EvRoomSystem  = "room:system"
	EvRoomOnline  = "room:online"
	EvRoomsList   = "rooms:list"
	EvRoomDeleted = "room:deleted"

	EvDmReceive = "dm:receive"
	EvDmSent    = "dm:sent"
	EvDmHistory = "dm:history"
	EvDmWatch   = "dm:watch"

	EvModNotice = "mod:notice"
	EvKicked    = "kicked"
)

// Envelope is the outbound wire frame: an event name and its payload.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// AckPayload is the result envelope answering an inbound event that carried
// a request ID.
type AckPayload struct {
	RequestID string `json:"reqId"`
	OK        bool   `json:"ok"`
	Code      int    `json:"code,omitempty"`
	Error     string `json:"error,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// SystemNotice is a room-scoped system line ("alice joined", "room locked
// by bob").
type SystemNotice struct {
	Room string `json:"room,omitempty"`
	Text string `json:"text"`
}

// RoomOnline carries a room's updated member count.
type RoomOnline struct {
	Room  string `json:"room"`
	Count int    `json:"count"`
}

// RoomDeleted notifies an evicted member that their room is gone.
type RoomDeleted struct {
	Room string `json:"room"`
}

// TypingNotice is the fire-and-forget typing indicator.
type TypingNotice struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// ReadNotice is the fire-and-forget read receipt.
type ReadNotice struct {
	Room      string `json:"room"`
	MessageID string `json:"id"`
	Username  string `json:"username"`
}

// MessageDeleted carries only the identifier of a removed message.
type MessageDeleted struct {
	Room string `json:"room"`
	ID   string `json:"id"`
}

// IdentifyResult acknowledges a successful identify.
type IdentifyResult struct {
	User user.User `json:"user"`
}

// DmHistoryPayload carries one conversation thread.
type DmHistoryPayload struct {
	With     string             `json:"with"`
	Messages []dm.DirectMessage `json:"messages"`
}

// DmWatchPayload is the copy of a direct message delivered to owner-tier
// sessions for oversight.
type DmWatchPayload struct {
	Message dm.DirectMessage `json:"message"`
}

// MsgHistoryPayload carries a room's recent messages, oldest first.
type MsgHistoryPayload struct {
	Room     string    `json:"room"`
	Messages []Message `json:"messages"`
}

// RoomListPayload carries the trending-ordered room summaries.
type RoomListPayload struct {
	Rooms []room.Summary `json:"rooms"`
}

// KickedPayload tells a connection why it is about to be closed.
type KickedPayload struct {
	Reason string `json:"reason"`
}
