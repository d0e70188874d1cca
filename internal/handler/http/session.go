package http

import (
	"net/http"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/presence-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type SessionHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Heartbeat(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	ForceLogout(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
}

type sessionHandlerImpl struct {
	sessionService session.SessionService
	jwtService     jwt.Service
}

func NewSessionHandler(sessionService session.SessionService, jwtService jwt.Service) SessionHandler {
	return &sessionHandlerImpl{
		sessionService: sessionService,
		jwtService:     jwtService,
	}
}

// Login implements SessionHandler. The caller is already authenticated by
// the identity provider; this only opens the audit ledger entry.
func (h *sessionHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ident, err := identityFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.sessionService.RecordLogin(r.Context(), ident.UserID, ident.Role)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Session recorded", result)
}

// Heartbeat implements SessionHandler. Clients call this at an interval well
// under the inactivity threshold; a missed beat eventually closes the
// session.
func (h *sessionHandlerImpl) Heartbeat(w http.ResponseWriter, r *http.Request) {
	ident, err := identityFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.sessionService.RecordHeartbeat(r.Context(), ident.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Logout implements SessionHandler. Also reached by the client's
// beacon-on-unload.
func (h *sessionHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ident, err := identityFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.sessionService.RecordLogout(r.Context(), ident.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Session closed", result)
}

// ForceLogout implements SessionHandler. Admin only (enforced by routing
// middleware).
func (h *sessionHandlerImpl) ForceLogout(w http.ResponseWriter, r *http.Request) {
	ident, err := identityFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	targetUserID := chi.URLParam(r, "userID")
	if !validator.IsValidUUID(targetUserID) {
		response.BadRequest(w, "userID path parameter must be a valid UUID", nil)
		return
	}

	results, err := h.sessionService.ForceLogout(r.Context(), targetUserID, ident.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Sessions force-closed", results)
}

// Refresh implements SessionHandler: exchanges a valid refresh-token cookie
// for a fresh access token, re-asserting the identity claims it carries.
func (h *sessionHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		response.Unauthorized(w, "Missing refresh token")
		return
	}

	userID, role, tz, err := h.jwtService.ParseRefreshToken(cookie.Value)
	if err != nil {
		response.Unauthorized(w, "Invalid refresh token")
		return
	}

	accessToken, accessExpiresAt, err := h.jwtService.GenerateAccessToken(userID, role, tz)
	if err != nil {
		response.InternalServerError(w, "Failed to issue access token")
		return
	}

	refreshToken, refreshExpiresAt, err := h.jwtService.GenerateRefreshToken(userID, role, tz)
	if err != nil {
		response.InternalServerError(w, "Failed to issue refresh token")
		return
	}
	http.SetCookie(w, h.jwtService.RefreshTokenCookie(refreshToken, refreshExpiresAt))

	response.Success(w, map[string]interface{}{
		"access_token": accessToken,
		"expires_at":   accessExpiresAt,
	})
}
