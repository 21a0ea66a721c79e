package chat

import (
	"time"

	"hubble/internal/app/moderation"
	"hubble/internal/pkg/errs"
	"hubble/internal/pkg/randx"
)

// Post validates and fans out a message to the session's current room.
// Checks run cheapest-first; a rejected message is never recorded against
// the sender's rate window.
func (h *Hub) Post(connID, body, kindName string) (Message, *errs.CustomError) {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return Message{}, customErr
	}
	if sess.Room == "" {
		return Message{}, errs.New(errs.ErrNoCurrentRoom)
	}

	kind, ok := ParseKind(kindName)
	if !ok {
		return Message{}, errs.New(errs.ErrMessageKindInvalid)
	}
	if kind == KindText && body == "" {
		return Message{}, errs.New(errs.ErrEmptyMessage)
	}
	if len([]rune(body)) > h.cfg.MaxMessageLength {
		return Message{}, errs.New(errs.ErrMessageTooLong)
	}

	if h.enforcer.IsMuted(sess.Username) {
		return Message{}, errs.New(errs.ErrMuted)
	}
	if !h.enforcer.Allow(sess.Username, moderation.ActionMessage, sess.Role) {
		return Message{}, errs.New(errs.ErrRateLimited)
	}

	msg := Message{
		ID:     randx.MessageID(),
		Room:   sess.Room,
		Author: sess.Username,
		Body:   body,
		Kind:   kind,
		Time:   time.Now().UTC(),
	}

	h.historyFor(sess.Room).append(msg)
	h.rooms.BumpScore(sess.Room)
	h.emitToRoom(sess.Room, EvMsgNew, msg)
	h.persistMessage(msg)

	return msg, nil
}

// EditMessage replaces the body of a message in the current room's history.
// Permitted to the author, the room owner, and elevated roles.
func (h *Hub) EditMessage(connID, id, body string) (Message, *errs.CustomError) {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return Message{}, customErr
	}
	if sess.Room == "" {
		return Message{}, errs.New(errs.ErrNoCurrentRoom)
	}

	if body == "" {
		return Message{}, errs.New(errs.ErrEmptyMessage)
	}
	if len([]rune(body)) > h.cfg.MaxMessageLength {
		return Message{}, errs.New(errs.ErrMessageTooLong)
	}

	buf := h.historyFor(sess.Room)

	msg, found := buf.find(id)
	if !found {
		return Message{}, errs.New(errs.ErrMessageNotFound)
	}
	if customErr := h.canTouchMessage(sess.Username, sess.Room, msg, sess.Role.Elevated()); customErr != nil {
		return Message{}, customErr
	}

	edited, _ := buf.edit(id, body)
	h.emitToRoom(sess.Room, EvMsgEdited, edited)
	h.persistMessage(edited)

	return edited, nil
}

// DeleteMessage removes a message from the current room's history. Same
// permission rule as EditMessage.
func (h *Hub) DeleteMessage(connID, id string) *errs.CustomError {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return customErr
	}
	if sess.Room == "" {
		return errs.New(errs.ErrNoCurrentRoom)
	}

	buf := h.historyFor(sess.Room)

	msg, found := buf.find(id)
	if !found {
		return errs.New(errs.ErrMessageNotFound)
	}
	if customErr := h.canTouchMessage(sess.Username, sess.Room, msg, sess.Role.Elevated()); customErr != nil {
		return customErr
	}

	buf.remove(id)
	h.emitToRoom(sess.Room, EvMsgDeleted, MessageDeleted{Room: sess.Room, ID: id})
	h.persistMessageDelete(id)

	return nil
}

// canTouchMessage decides whether username may edit or delete msg.
func (h *Hub) canTouchMessage(username, roomName string, msg Message, elevated bool) *errs.CustomError {
	if msg.Author == username || elevated {
		return nil
	}
	if summary, err := h.rooms.Info(roomName); err == nil && summary.Owner == username {
		return nil
	}
	return errs.New(errs.ErrPermissionDenied)
}

// Typing relays a typing indicator to the rest of the session's room.
// Indicators are ephemeral and never recorded.
func (h *Hub) Typing(connID string) *errs.CustomError {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return customErr
	}
	if sess.Room == "" {
		return errs.New(errs.ErrNoCurrentRoom)
	}

	h.emitToRoom(sess.Room, EvMsgTyping, TypingNotice{Room: sess.Room, Username: sess.Username}, connID)
	return nil
}

// ReadReceipt relays a read receipt for one message to the rest of the
// session's room.
func (h *Hub) ReadReceipt(connID, messageID string) *errs.CustomError {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return customErr
	}
	if sess.Room == "" {
		return errs.New(errs.ErrNoCurrentRoom)
	}

	h.emitToRoom(sess.Room, EvMsgRead, ReadNotice{Room: sess.Room, MessageID: messageID, Username: sess.Username}, connID)
	return nil
}

// RoomHistory returns the current room's retained messages, oldest first.
func (h *Hub) RoomHistory(connID string) (MsgHistoryPayload, *errs.CustomError) {
	sess, customErr := h.requireIdentified(connID)
	if customErr != nil {
		return MsgHistoryPayload{}, customErr
	}
	if sess.Room == "" {
		return MsgHistoryPayload{}, errs.New(errs.ErrNoCurrentRoom)
	}

	payload := MsgHistoryPayload{Room: sess.Room, Messages: h.historyFor(sess.Room).list()}
	h.emitTo(connID, EvMsgHistory, payload)
	return payload, nil
}
