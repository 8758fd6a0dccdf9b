// Package backup snapshots install directories and settings files
// before swb modifies or removes them.
//
// Snapshots live under the backup root (paths.BackupsDir() by default),
// grouped by what they capture:
//
//	backups/
//	  plugin/
//	    20260123T100712/
//	      manifest.json
//	      content/...
//	  skill/
//	  settings/
//
// Each snapshot carries a manifest recording every file's original
// location, permissions, and SHA256 hash. Restore verifies all hashes
// before writing anything back, and Prune keeps history bounded.
package backup
