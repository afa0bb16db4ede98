// Package paths names the files the shell keeps on disk.
//
// Everything lives under the storage root (STORAGE_PATH):
//
//	<root>/
//	  ├── erp-auth-storage.json   (file driver, one per namespace)
//	  ├── erp-tabs-storage.json
//	  ├── erpshell.db             (sqlite driver)
//	  └── logs/
//	      └── tui.log
//
// A leading "~" in the root is expanded to the home directory.
package paths
