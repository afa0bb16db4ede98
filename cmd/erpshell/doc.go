// Command erpshell runs the ERP shell.
//
// Usage:
//
//	# HTTP/WebSocket shell on 127.0.0.1:8000
//	erpshell serve
//
//	# Terminal workspace
//	erpshell tui
//
//	# Session and tabs from the command line
//	erpshell login -u admin
//	erpshell open materials --param filter=active
//	erpshell tabs
//	erpshell back
//	erpshell logout
//
// Configuration comes from the environment (ERP_API_URL, STORAGE_DRIVER,
// LOG_LEVEL and friends), optionally loaded from a .env file. Global flags
// override individual settings.
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown of "serve"
package main
