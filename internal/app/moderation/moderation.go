/*
Package moderation implements the moderation enforcer: process-wide mute and
ban flags plus per-identity sliding-window rate limits.

The enforcer is consulted before broadcast, DM, and room actions are allowed.
Mute is available to moderators and above; ban is reserved for the owner
tier. Flags are keyed by username and independent of any room.
*/
package moderation

import (
	"github.com/rs/zerolog"

	"hubble/internal/app/user"
	"hubble/internal/pkg/errs"
	"hubble/internal/pkg/logx"
)

// Enforcer holds mute/ban state and the action rate limiter.
type Enforcer struct {
	limiter *SlidingLimiter

	mu     muteBanState
	logger zerolog.Logger
}

// NewEnforcer returns an enforcer using the given rate limiter.
func NewEnforcer(limiter *SlidingLimiter) *Enforcer {
	return &Enforcer{
		limiter: limiter,
		mu:      newMuteBanState(),
		logger:  logx.Logger().With().Str("component", "moderation").Logger(),
	}
}

// Mute flags target as muted. Requires a moderator or above.
func (e *Enforcer) Mute(target string, requester user.Role) *errs.CustomError {
	if !requester.CanModerate() {
		return errs.New(errs.ErrPermissionDenied)
	}

	e.mu.setMuted(target, true)
	e.logger.Info().Str("target", target).Msg("User muted.")
	return nil
}

// Unmute clears target's muted flag. Requires a moderator or above.
func (e *Enforcer) Unmute(target string, requester user.Role) *errs.CustomError {
	if !requester.CanModerate() {
		return errs.New(errs.ErrPermissionDenied)
	}

	e.mu.setMuted(target, false)
	e.logger.Info().Str("target", target).Msg("User unmuted.")
	return nil
}

// Ban flags target as banned. Reserved for the owner tier; moderators can
// mute and kick but not ban.
func (e *Enforcer) Ban(target string, requester user.Role) *errs.CustomError {
	if !requester.CanBan() {
		return errs.New(errs.ErrPermissionDenied)
	}

	e.mu.setBanned(target, true)
	e.logger.Info().Str("target", target).Msg("User banned.")
	return nil
}

// Unban clears target's banned flag. Reserved for the owner tier.
func (e *Enforcer) Unban(target string, requester user.Role) *errs.CustomError {
	if !requester.CanBan() {
		return errs.New(errs.ErrPermissionDenied)
	}

	e.mu.setBanned(target, false)
	e.logger.Info().Str("target", target).Msg("User unbanned.")
	return nil
}

// IsMuted reports whether username may not send messages.
func (e *Enforcer) IsMuted(username string) bool {
	return e.mu.muted(username)
}

// IsBanned reports whether username may not join rooms.
func (e *Enforcer) IsBanned(username string) bool {
	return e.mu.banned(username)
}

// Allow reports whether identity may perform one more action of the given
// class right now. Elevated roles bypass all action limits.
func (e *Enforcer) Allow(identity string, action Action, role user.Role) bool {
	if role.Elevated() {
		return true
	}
	return e.limiter.Allow(identity, action)
}

// Forget drops all rate-limit state for identity, called when its last
// connection goes away.
func (e *Enforcer) Forget(identity string) {
	e.limiter.Forget(identity)
}
