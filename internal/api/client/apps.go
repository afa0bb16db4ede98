package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

// ListApps returns the apps registry.
func (c *Client) ListApps(ctx context.Context) ([]types.App, error) {
	var out []types.App
	if err := c.list(ctx, "/apps", "/apps", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetApp fetches one app by code.
func (c *Client) GetApp(ctx context.Context, code string) (*types.App, error) {
	var out types.App
	if _, err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/apps/{code}",
		path:   "/apps/" + url.PathEscape(code),
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// AppRoutes lists the routes an app exposes.
func (c *Client) AppRoutes(ctx context.Context, code string) ([]types.AppRoute, error) {
	var out []types.AppRoute
	if err := c.list(ctx, "/apps/{code}/routes", "/apps/"+url.PathEscape(code)+"/routes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActivateApp enables an app.
func (c *Client) ActivateApp(ctx context.Context, code string) error {
	_, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/apps/{code}/activate",
		path:   "/apps/" + url.PathEscape(code) + "/activate",
	})
	return err
}

// DeactivateApp disables an app.
func (c *Client) DeactivateApp(ctx context.Context, code string) error {
	_, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/apps/{code}/deactivate",
		path:   "/apps/" + url.PathEscape(code) + "/deactivate",
	})
	return err
}

// RediscoverApps asks the backend to rescan its app directory.
func (c *Client) RediscoverApps(ctx context.Context) error {
	_, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/apps/rediscover",
		path:   "/apps/rediscover",
	})
	return err
}
