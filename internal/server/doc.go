// Package server wires the shell runtime and serves it over HTTP.
//
// NewRuntime opens storage, builds the REST client, restores the session and
// tabs stores, seeds the module catalog and assembles the shell. The CLI
// commands and the terminal UI use a Runtime directly; New puts the gin
// router in front of it.
package server
