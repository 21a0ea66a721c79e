/*
Package errs provides the coordinator's error types and application-level
error code constants.

This file maps every code to its CustomError template, used to standardize
HTTP responses and event result envelopes.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Kind: KindValidation, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Kind: KindValidation, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Kind: KindValidation, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Kind: KindValidation, Message: "Request contains unexpected data."},
	ErrRateLimited:          {Code: ErrRateLimited, Kind: KindRateLimited, Message: "Too many requests. Please slow down.", Status: http.StatusTooManyRequests},

	// 2xxx: Room Business Logic Errors
	ErrEmptyRoomName:  {Code: ErrEmptyRoomName, Kind: KindValidation, Message: "Room name cannot be empty."},
	ErrRoomNotFound:   {Code: ErrRoomNotFound, Kind: KindNotFound, Message: "Room not found.", Status: http.StatusNotFound},
	ErrRoomLocked:     {Code: ErrRoomLocked, Kind: KindPermission, Message: "This room is locked."},
	ErrWrongPassword:  {Code: ErrWrongPassword, Kind: KindPermission, Message: "Incorrect room password."},
	ErrBannedFromRoom: {Code: ErrBannedFromRoom, Kind: KindPermission, Message: "You are banned from this room."},
	ErrNotRoomOwner:   {Code: ErrNotRoomOwner, Kind: KindPermission, Message: "Only the room owner can do that."},
	ErrNoCurrentRoom:  {Code: ErrNoCurrentRoom, Kind: KindValidation, Message: "Join a room first."},

	// 22xx: Message Content Errors
	ErrEmptyMessage:       {Code: ErrEmptyMessage, Kind: KindValidation, Message: "Message cannot be empty."},
	ErrMessageTooLong:     {Code: ErrMessageTooLong, Kind: KindValidation, Message: "Message is too long."},
	ErrMessageNotFound:    {Code: ErrMessageNotFound, Kind: KindNotFound, Message: "Message not found.", Status: http.StatusNotFound},
	ErrMessageKindInvalid: {Code: ErrMessageKindInvalid, Kind: KindValidation, Message: "Unsupported message type."},

	// 3xxx: Session, Identity, and Permission Errors
	ErrNotIdentified:     {Code: ErrNotIdentified, Kind: KindPermission, Message: "Identify before sending."},
	ErrDuplicateIdentity: {Code: ErrDuplicateIdentity, Kind: KindPermission, Message: "Username is already connected."},
	ErrMuted:             {Code: ErrMuted, Kind: KindPermission, Message: "You are muted."},
	ErrPermissionDenied:  {Code: ErrPermissionDenied, Kind: KindPermission, Message: "You do not have permission to do that."},
	ErrSessionKicked:     {Code: ErrSessionKicked, Kind: KindPermission, Message: "You were removed by a moderator."},
	ErrUnauthorized:      {Code: ErrUnauthorized, Kind: KindPermission, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrUserNotOnline:     {Code: ErrUserNotOnline, Kind: KindNotFound, Message: "That user is not online.", Status: http.StatusNotFound},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Kind: KindException, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
