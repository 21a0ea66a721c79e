/*
Package errs provides the coordinator's error types and application-level
error code constants.

These codes identify specific business or system failures both internally and
in the result envelopes sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimited indicates that the caller exceeded a configured rate limit.
	ErrRateLimited = 1005
)

// 2xxx: Room Business Logic Errors
const (
	// ErrEmptyRoomName indicates that a room name normalized to the empty string.
	ErrEmptyRoomName = 2101

	// ErrRoomNotFound indicates that the named room does not exist.
	ErrRoomNotFound = 2102

	// ErrRoomLocked indicates a join attempt against a locked room.
	ErrRoomLocked = 2103

	// ErrWrongPassword indicates that the supplied room password did not match.
	ErrWrongPassword = 2104

	// ErrBannedFromRoom indicates that the room's ban list names the requester.
	ErrBannedFromRoom = 2105

	// ErrNotRoomOwner indicates a room administration attempt by a non-owner.
	ErrNotRoomOwner = 2106

	// ErrNoCurrentRoom indicates a room-scoped action from a session that has not joined a room.
	ErrNoCurrentRoom = 2107
)

// 22xx: Message Content Errors
const (
	// ErrEmptyMessage indicates an empty body on a text message.
	ErrEmptyMessage = 2201

	// ErrMessageTooLong indicates that the message body exceeded the length cap.
	ErrMessageTooLong = 2202

	// ErrMessageNotFound indicates that the referenced message is not in room history.
	ErrMessageNotFound = 2203

	// ErrMessageKindInvalid indicates an unrecognized message kind.
	ErrMessageKindInvalid = 2204
)

// 3xxx: Session, Identity, and Permission Errors
const (
	// ErrNotIdentified indicates an action from a connection that never identified.
	ErrNotIdentified = 3001

	// ErrDuplicateIdentity indicates an identify attempt for a username that is
	// already bound to another session while strict usernames are enabled.
	ErrDuplicateIdentity = 3002

	// ErrMuted indicates a message send from a muted username.
	ErrMuted = 3003

	// ErrPermissionDenied indicates an action reserved for a higher role tier.
	ErrPermissionDenied = 3004

	// ErrSessionKicked indicates that a moderator terminated the connection.
	ErrSessionKicked = 3005

	// ErrUnauthorized indicates a missing or invalid identity token.
	ErrUnauthorized = 3006

	// ErrUserNotOnline indicates that the target username has no live connection.
	ErrUserNotOnline = 3007
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server fault.
	ErrUnknown = 5000
)
