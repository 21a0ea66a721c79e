/*
Package handler provides the HTTP handlers and routing setup for the chat
coordinator.

This file exposes direct-message threads over REST for signed-in users.
*/
package handler

import (
	"net/http"

	"hubble/internal/app/user"
	"hubble/internal/pkg/auth/jwt"
	"hubble/internal/pkg/errs"
	"hubble/internal/pkg/resp"
)

// HandleDMHistory returns the caller's conversation thread with another
// user. Owner-tier tokens may instead name both ends of an arbitrary pair.
func HandleDMHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.FromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.New(errs.ErrUnauthorized))
			return
		}

		query := r.URL.Query()

		a := identity.Username
		b := query.Get("with")

		if pairA, pairB := query.Get("a"), query.Get("b"); pairA != "" && pairB != "" {
			if !user.ParseRole(identity.Role).CanBan() {
				resp.RespondError(w, r, errs.New(errs.ErrPermissionDenied))
				return
			}
			a, b = pairA, pairB
		}

		if b == "" {
			resp.RespondError(w, r, errs.New(errs.ErrInvalidParams, "missing 'with' query parameter"))
			return
		}

		resp.RespondSuccess(w, r, deps.Hub.DMHistory(a, b))
	}
}
