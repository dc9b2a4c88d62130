package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/lasttodo/lasttodo/auth"
	"github.com/lasttodo/lasttodo/config"
	"github.com/lasttodo/lasttodo/log"
)

const (
	// sessionCookieName is the cookie name for auth sessions
	sessionCookieName = "session"
	// sessionCookieMaxAge is 30 days in seconds
	sessionCookieMaxAge = 30 * 24 * 60 * 60
)

// SignUp handles POST /api/auth/signup
func (h *Handlers) SignUp(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.auth.SignUp(body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			RespondConflict(c, err.Error())
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrEmailRequired):
			RespondValidationError(c, err.Error())
		default:
			log.Error().Err(err).Msg("sign-up failed")
			RespondInternalError(c, "sign-up failed")
		}
		return
	}

	RespondCreated(c, user)
}

// SignIn handles POST /api/auth/signin
func (h *Handlers) SignIn(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	token, err := h.auth.SignIn(body.Email, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			RespondUnauthorized(c, err.Error())
			return
		}
		log.Error().Err(err).Msg("sign-in failed")
		RespondInternalError(c, "sign-in failed")
		return
	}

	// Set session cookie
	secure := !config.Get().IsDevelopment()
	c.SetCookie(sessionCookieName, token, sessionCookieMaxAge, "/", "", secure, true)

	RespondData(c, gin.H{"token": token})
}

// SignOut handles POST /api/auth/signout.
// Tears down the session's coordinator, cancelling its live alarms.
func (h *Handlers) SignOut(c *gin.Context) {
	token := sessionToken(c)
	if token != "" {
		h.manager.Logout(token)
	}

	// Clear session cookie
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)

	RespondNoContent(c)
}
