package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/erpshell/internal/shared/types"
	"github.com/GriffinCanCode/erpshell/internal/shared/utils"
)

// MaxUploadSize bounds a single multipart upload.
const MaxUploadSize = 10 * 1024 * 1024

// list decodes either a bare JSON array or a {"data": [...]} envelope.
func (c *Client) list(ctx context.Context, route, path string, query map[string]string, out any) error {
	resp, err := c.do(ctx, call{
		method: http.MethodGet,
		route:  route,
		path:   path,
		query:  query,
	})
	if err != nil {
		return err
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return nil
	}
	if body[0] == '[' {
		return sonic.Unmarshal(body, out)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode %s list: %w", route, err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	return sonic.Unmarshal(envelope.Data, out)
}

// Resource is a uniform list/get/create/update/delete endpoint group.
type Resource[T any] struct {
	client *Client
	route  string
	path   string
}

// NewResource binds a record type to a collection path such as
// "/materials". route is the metrics label; it defaults to path.
func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, route: path, path: path}
}

func (r *Resource[T]) withRoute(route string) *Resource[T] {
	r.route = route
	return r
}

// Path returns the collection path.
func (r *Resource[T]) Path() string { return r.path }

// List returns the collection, optionally filtered by query parameters.
func (r *Resource[T]) List(ctx context.Context, query map[string]string) ([]T, error) {
	var out []T
	if err := r.client.list(ctx, r.route, r.path, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one record.
func (r *Resource[T]) Get(ctx context.Context, recordID string) (*T, error) {
	var out T
	if _, err := r.client.do(ctx, call{
		method: http.MethodGet,
		route:  r.route + "/{id}",
		path:   r.path + "/" + url.PathEscape(recordID),
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create validates and posts a new record.
func (r *Resource[T]) Create(ctx context.Context, record T) (*T, error) {
	if err := utils.ValidateStruct(record); err != nil {
		return nil, err
	}
	var out T
	if _, err := r.client.do(ctx, call{
		method: http.MethodPost,
		route:  r.route,
		path:   r.path,
		body:   record,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update validates and replaces a record.
func (r *Resource[T]) Update(ctx context.Context, recordID string, record T) (*T, error) {
	if err := utils.ValidateStruct(record); err != nil {
		return nil, err
	}
	var out T
	if _, err := r.client.do(ctx, call{
		method: http.MethodPut,
		route:  r.route + "/{id}",
		path:   r.path + "/" + url.PathEscape(recordID),
		body:   record,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a record.
func (r *Resource[T]) Delete(ctx context.Context, recordID string) error {
	_, err := r.client.do(ctx, call{
		method: http.MethodDelete,
		route:  r.route + "/{id}",
		path:   r.path + "/" + url.PathEscape(recordID),
	})
	return err
}

// UploadResult is the backend answer to a file upload.
type UploadResult struct {
	URL      string `json:"url,omitempty"`
	Imported int    `json:"imported,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Upload sends a file as multipart form data to "<path>/<action>", e.g.
// "/materials/import" for a CSV or "/company/logo" for an image. The
// content type is sniffed from the payload.
func (r *Resource[T]) Upload(ctx context.Context, action, fileName string, content io.Reader, fields map[string]string) (*UploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(content, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("upload exceeds %d bytes", MaxUploadSize)
	}

	mtype := mimetype.Detect(data)

	var out UploadResult
	if _, err := r.client.do(ctx, call{
		method: http.MethodPost,
		route:  r.route + "/" + action,
		path:   r.path + "/" + action,
		out:    &out,
		prepare: func(req *resty.Request) {
			req.SetMultipartField("file", fileName, mtype.String(), bytes.NewReader(data))
			if len(fields) > 0 {
				req.SetMultipartFormData(fields)
			}
		},
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Domain resources.

func (c *Client) Company() *Resource[types.Company] {
	return NewResource[types.Company](c, "/company")
}

func (c *Client) Ranges() *Resource[types.Range] {
	return NewResource[types.Range](c, "/ranges")
}

func (c *Client) MaterialGroups() *Resource[types.MaterialGroup] {
	return NewResource[types.MaterialGroup](c, "/material-groups")
}

func (c *Client) Materials() *Resource[types.Material] {
	return NewResource[types.Material](c, "/materials")
}

func (c *Client) Suppliers() *Resource[types.Supplier] {
	return NewResource[types.Supplier](c, "/suppliers")
}

// SupplierAddresses is the nested address collection of one supplier.
func (c *Client) SupplierAddresses(supplierID string) *Resource[types.Address] {
	return NewResource[types.Address](c, "/suppliers/"+url.PathEscape(supplierID)+"/addresses").
		withRoute("/suppliers/{id}/addresses")
}

// SupplierContacts is the nested contact collection of one supplier.
func (c *Client) SupplierContacts(supplierID string) *Resource[types.Contact] {
	return NewResource[types.Contact](c, "/suppliers/"+url.PathEscape(supplierID)+"/contacts").
		withRoute("/suppliers/{id}/contacts")
}

func (c *Client) Deposits() *Resource[types.Deposit] {
	return NewResource[types.Deposit](c, "/deposits")
}

func (c *Client) Positions() *Resource[types.Position] {
	return NewResource[types.Position](c, "/positions")
}

func (c *Client) Users() *Resource[types.UserAccount] {
	return NewResource[types.UserAccount](c, "/users")
}

func (c *Client) Logs() *Resource[types.LogEntry] {
	return NewResource[types.LogEntry](c, "/logs")
}
