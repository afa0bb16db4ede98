package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/erpshell/internal/domain/session"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Login          string                 `json:"login" binding:"required"`
	Password       string                 `json:"password" binding:"required"`
	ConflictAction session.ConflictAction `json:"conflictAction"`
}

// Login signs in through the session store. Success answers 200, an
// existing session 409 and a rejection 401; the body is the login result.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "login and password are required"})
		return
	}

	res, err := h.session.Login(c.Request.Context(), req.Login, req.Password, req.ConflictAction)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusOK
	switch {
	case res.Conflict():
		status = http.StatusConflict
	case !res.Success():
		status = http.StatusUnauthorized
	}
	c.JSON(status, res)
}

// Logout ends the session. It always succeeds locally.
func (h *Handlers) Logout(c *gin.Context) {
	h.session.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session returns the current session without its token.
func (h *Handlers) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.State().Redacted())
}

// Validate re-checks the token with the backend.
func (h *Handlers) Validate(c *gin.Context) {
	valid := h.session.Validate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}
