// Package registry is the module registry and dynamic loader of the shell.
//
// A component key ("materials", "material-groups") resolves to a *Lazy: a
// deferred reference that fetches the module through a Provider the first
// time it is loaded. Resolutions are cached per key until evicted, so the
// same key always yields the same reference and is fetched at most once.
//
// Components:
//   - Registry: Resolve, Evict, ListResolved over the in-memory cache
//   - Lazy: single-flight Load with NotFound placeholder on failure
//   - Catalog: key -> display metadata, seeded from Builtins and manifests
//   - Providers: ManifestProvider (catalog), BackendProvider (GET /apps/{code}),
//     ChainProvider (first success wins)
//   - Seeder: reads **/*.{yaml,yml,toml,json} manifests into the catalog
//
// A module that cannot be loaded is never an error for the caller: Load
// returns the placeholder and the rest of the shell keeps working.
//
// Example Usage:
//
//	catalog := registry.NewCatalog()
//	registry.RegisterBuiltins(catalog)
//	registry.NewSeeder(catalog, "modules", log).Seed()
//	reg := registry.New(catalog, registry.ChainProvider{
//	    registry.NewManifestProvider(catalog),
//	    registry.NewBackendProvider(apiClient),
//	})
//	comp := reg.Resolve("materials").Load(ctx)
package registry
