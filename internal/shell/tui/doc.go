// Package tui renders the shell in a terminal with bubbletea.
//
// The screen shows the tab strip, the module catalog with a search box and
// the component mounted in the active tab. Module loads run as commands so a
// slow backend never blocks key handling.
package tui
