// Package all wires every built-in storage backend into the storage factory.
//
// Importing it (as a blank import) runs the init functions that register:
//
//   - "postgres" (reportmerge/internal/storage/postgres)
//   - "mssql"    (reportmerge/internal/storage/mssql)
//   - "sqlite"   (reportmerge/internal/storage/sqlite)
//
// Binaries that need only a subset can import the backends individually.
package all

import (
	_ "reportmerge/internal/storage/mssql"
	_ "reportmerge/internal/storage/postgres"
	_ "reportmerge/internal/storage/sqlite"
)
