// Package types provides the data structures shared by the shell's stores,
// the REST client and the HTTP surface.
//
// Core Types:
//   - User, SessionState: who is logged in
//   - Tab, TabsState: the navigation stack
//   - ModuleDescriptor: display metadata of a module
//   - Module, App, AppRoute: backend module tree and apps registry
//   - Company, Material, Supplier, ...: ERP records passed through to modules
//   - WSMessage: live update envelope
//
// Snapshots (SessionState, TabsState) are what the stores persist; Clone
// exists so a store never hands out references to its own slices or maps.
package types
