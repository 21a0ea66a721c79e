/*
Package chat contains the coordinating hub for the chat system: connection
attachment, room message broadcast, direct-message delivery, and moderation
orchestration over the session, presence, room, dm, and moderation
components.

This file defines the room-scoped Message and its kinds.
*/
package chat

import "time"

// Kind classifies a room message body.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// ParseKind maps a wire kind to its Kind. An empty string defaults to text.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case "":
		return KindText, true
	case KindText, KindImage, KindAudio, KindVideo:
		return Kind(s), true
	default:
		return "", false
	}
}

// Message is one room-scoped chat message. Immutable once created except for
// Body and Edited, which change only through an explicit edit.
type Message struct {
	ID     string    `json:"id"`
	Room   string    `json:"room"`
	Author string    `json:"author"`
	Body   string    `json:"body"`
	Kind   Kind      `json:"kind"`
	Edited bool      `json:"edited"`
	Time   time.Time `json:"time"`
}
