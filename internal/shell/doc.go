// Package shell connects the session, the tabs store and the module registry.
//
// Navigation is only available while a session is authenticated. Opening a
// module tile, activating or closing a tab and the keyboard shortcuts
// (alt+h, alt+t, alt+w, alt+left, ctrl+k) map one to one onto tabs store
// operations; the active tab's component key is mounted through the
// registry.
package shell
