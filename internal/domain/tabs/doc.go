// Package tabs implements the navigation stack of the shell.
//
// The store keeps an ordered list of open tabs headed by a permanent Home
// tab, the active tab id, the six most recently opened module keys and a
// back history of focused tab ids. Each component key is open at most once:
// opening it again focuses the existing tab. The state is persisted under
// the "erp-tabs-storage" namespace after every mutation and repaired on
// restore when a snapshot violates these rules.
package tabs
