/*
Package handler provides the HTTP handlers and routing setup for the chat
coordinator.

This file exposes the read-only room directory over REST: the trending list
and individual room summaries.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hubble/internal/pkg/errs"
	"hubble/internal/pkg/resp"
)

// HandleListRooms returns every room, ordered by score then name.
func HandleListRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Hub.ListRooms())
	}
}

// HandleRoomInfo returns one room's summary by name.
func HandleRoomInfo(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" {
			resp.RespondError(w, r, errs.New(errs.ErrInvalidParams, "missing room name"))
			return
		}

		summary, customErr := deps.Hub.RoomInfo(name)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, summary)
	}
}
