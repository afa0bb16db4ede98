package client

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Action   string `json:"action,omitempty"`
}

// LoginResponse is the raw backend answer to a login attempt. The session
// store turns it into a tagged result.
type LoginResponse struct {
	Success         bool        `json:"success"`
	Token           string      `json:"token,omitempty"`
	User            *types.User `json:"user,omitempty"`
	SessionConflict bool        `json:"session_conflict,omitempty"`
	ActiveSessions  int         `json:"active_sessions,omitempty"`
	Message         string      `json:"message,omitempty"`
}

// ValidateResponse is the answer of GET /auth/validate.
type ValidateResponse struct {
	Valid bool        `json:"valid"`
	User  *types.User `json:"user,omitempty"`
}

// HealthResponse is the answer of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Login posts credentials. Rejections (401, 403) and conflicts (409) are
// decoded into the response rather than returned as errors; only transport
// failures and unexpected statuses are errors.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	resp, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/auth/login",
		path:   "/auth/login",
		body:   req,
		out:    &out,
		accept: []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict},
	})
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode() {
	case http.StatusConflict:
		out.Success = false
		out.SessionConflict = true
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		out.Success = false
		if out.Message == "" {
			out.Message = "invalid credentials"
		}
	}
	return &out, nil
}

// Validate asks the backend whether the current token is still valid. A
// 401 is an explicit "invalid", not an error.
func (c *Client) Validate(ctx context.Context) (*ValidateResponse, error) {
	var out ValidateResponse
	resp, err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/auth/validate",
		path:   "/auth/validate",
		out:    &out,
		accept: []int{http.StatusUnauthorized, http.StatusForbidden},
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		out.Valid = false
	}
	return &out, nil
}

// Logout invalidates the current token on the backend.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/auth/logout",
		path:   "/auth/logout",
	})
	return err
}

// Health checks backend availability.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if _, err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/health",
		path:   "/health",
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}
