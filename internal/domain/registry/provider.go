package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

var (
	// ErrUnknownModule means no provider knows the key.
	ErrUnknownModule = errors.New("unknown module")
	// ErrModuleInactive means the backend knows the app but has it disabled.
	ErrModuleInactive = errors.New("module is inactive")
)

// Provider fetches the implementation of a module by key.
type Provider interface {
	Fetch(ctx context.Context, key string) (Component, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, key string) (Component, error)

func (f ProviderFunc) Fetch(ctx context.Context, key string) (Component, error) {
	return f(ctx, key)
}

// ManifestProvider serves modules registered in a Catalog.
type ManifestProvider struct {
	catalog *Catalog
}

// NewManifestProvider creates a provider over catalog.
func NewManifestProvider(catalog *Catalog) *ManifestProvider {
	return &ManifestProvider{catalog: catalog}
}

func (p *ManifestProvider) Fetch(_ context.Context, key string) (Component, error) {
	d, ok := p.catalog.Get(key)
	if !ok {
		return Component{}, fmt.Errorf("%w: %s", ErrUnknownModule, key)
	}
	return Component{Key: key, Descriptor: d, Source: SourceManifest}, nil
}

// AppsAPI is the part of the REST client the backend provider needs.
type AppsAPI interface {
	GetApp(ctx context.Context, code string) (*types.App, error)
	AppRoutes(ctx context.Context, code string) ([]types.AppRoute, error)
}

// BackendProvider resolves a key through the backend apps registry:
// GET /apps/{code} for metadata and GET /apps/{code}/routes for its routes.
type BackendProvider struct {
	api AppsAPI
}

// NewBackendProvider creates a provider over the apps endpoints.
func NewBackendProvider(api AppsAPI) *BackendProvider {
	return &BackendProvider{api: api}
}

func (p *BackendProvider) Fetch(ctx context.Context, key string) (Component, error) {
	app, err := p.api.GetApp(ctx, key)
	if err != nil {
		return Component{}, fmt.Errorf("fetch app %s: %w", key, err)
	}
	if !app.Active {
		return Component{}, fmt.Errorf("%w: %s", ErrModuleInactive, key)
	}

	routes, err := p.api.AppRoutes(ctx, key)
	if err != nil {
		return Component{}, fmt.Errorf("fetch routes of %s: %w", key, err)
	}

	return Component{
		Key:        key,
		Descriptor: app.Descriptor(),
		Routes:     routes,
		Source:     SourceBackend,
	}, nil
}

// ChainProvider tries providers in order and returns the first success.
type ChainProvider []Provider

func (c ChainProvider) Fetch(ctx context.Context, key string) (Component, error) {
	if len(c) == 0 {
		return Component{}, fmt.Errorf("%w: %s", ErrUnknownModule, key)
	}

	var errs []error
	for _, p := range c {
		comp, err := p.Fetch(ctx, key)
		if err == nil {
			return comp, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return Component{}, errors.Join(errs...)
}

// AppsLister lists the backend apps registry.
type AppsLister interface {
	ListApps(ctx context.Context) ([]types.App, error)
}

// SyncApps adds the backend's active apps to catalog so they show up as
// tiles. Keys already in the catalog keep their local metadata. It returns
// the number of apps added.
func SyncApps(ctx context.Context, catalog *Catalog, api AppsLister) (int, error) {
	apps, err := api.ListApps(ctx)
	if err != nil {
		return 0, fmt.Errorf("list apps: %w", err)
	}

	added := 0
	for _, app := range apps {
		if !app.Active {
			continue
		}
		if _, ok := catalog.Get(app.Code); ok {
			continue
		}
		if err := catalog.Register(app.Descriptor()); err != nil {
			continue
		}
		added++
	}
	return added, nil
}
