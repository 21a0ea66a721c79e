/*
Package handler provides the HTTP handlers and routing setup for the chat
coordinator.

This file implements identity token issuance. A client obtains a signed
token here, then presents it in the identify event over the WebSocket.
*/
package handler

import (
	"net/http"
	"strings"
	"time"

	"hubble/internal/app/user"
	"hubble/internal/pkg/auth/jwt"
	"hubble/internal/pkg/errs"
	"hubble/internal/pkg/logx"
	"hubble/internal/pkg/req"
	"hubble/internal/pkg/resp"
)

// MaxUsernameLength caps usernames at issuance time.
const MaxUsernameLength = 32

type issueIdentityRequest struct {
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
	AdminKey string `json:"adminKey,omitempty"`
}

type issueIdentityResponse struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	Role     user.Role `json:"role"`
	Expires  int64     `json:"expires"`
}

// HandleIssueIdentity creates an HTTP HandlerFunc that signs identity
// tokens. Member tokens are open; moderator and owner tokens require the
// configured admin key.
func HandleIssueIdentity(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request issueIdentityRequest
		if customErr := req.BindJSON(r, &request); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		username := strings.TrimSpace(request.Username)
		if username == "" || len([]rune(username)) > MaxUsernameLength {
			resp.RespondError(w, r, errs.New(errs.ErrInvalidParams, "username must be 1-32 characters"))
			return
		}

		role := user.RoleMember
		if request.Role != "" {
			role = user.ParseRole(request.Role)
		}

		if role.Elevated() {
			if deps.Config.AdminKey == "" || request.AdminKey != deps.Config.AdminKey {
				logx.Warn("Elevated identity request rejected.", "username", username, "role", role.String())
				resp.RespondError(w, r, errs.New(errs.ErrPermissionDenied))
				return
			}
		}

		payload := &jwt.Payload{
			Username: username,
			Role:     role.String(),
		}

		token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.IdentityExpiration)
		if err != nil {
			logx.Error(err, "Failed to sign identity token", "username", username)
			resp.RespondError(w, r, errs.New(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, issueIdentityResponse{
			Token:    token,
			Username: username,
			Role:     role,
			Expires:  time.Now().Add(jwt.IdentityExpiration).Unix(),
		})
	}
}
