package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/GriffinCanCode/erpshell/internal/shared/types"
	"github.com/GriffinCanCode/erpshell/internal/shared/utils"
)

// ModuleTree returns the backend's module hierarchy.
func (c *Client) ModuleTree(ctx context.Context) ([]types.Module, error) {
	var out []types.Module
	if err := c.list(ctx, "/modules/tree", "/modules/tree", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListModules returns the flat module list.
func (c *Client) ListModules(ctx context.Context) ([]types.Module, error) {
	var out []types.Module
	if err := c.list(ctx, "/modules", "/modules", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetModule fetches one module by id.
func (c *Client) GetModule(ctx context.Context, moduleID string) (*types.Module, error) {
	var out types.Module
	if _, err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/modules/{id}",
		path:   "/modules/" + url.PathEscape(moduleID),
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateModule creates a module.
func (c *Client) CreateModule(ctx context.Context, m types.Module) (*types.Module, error) {
	if err := utils.ValidateStruct(m); err != nil {
		return nil, err
	}
	var out types.Module
	if _, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/modules",
		path:   "/modules",
		body:   m,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateModule replaces a module.
func (c *Client) UpdateModule(ctx context.Context, moduleID string, m types.Module) (*types.Module, error) {
	if err := utils.ValidateStruct(m); err != nil {
		return nil, err
	}
	var out types.Module
	if _, err := c.do(ctx, call{
		method: http.MethodPut,
		route:  "/modules/{id}",
		path:   "/modules/" + url.PathEscape(moduleID),
		body:   m,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteModule removes a module.
func (c *Client) DeleteModule(ctx context.Context, moduleID string) error {
	_, err := c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/modules/{id}",
		path:   "/modules/" + url.PathEscape(moduleID),
	})
	return err
}
