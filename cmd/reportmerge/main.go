// Command reportmerge merges the XTM, TOS and edit distance exports into a
// fixed-schema report and publishes it.
package main

import (
	// register every sink and SQL backend; the config picks one at runtime.
	_ "reportmerge/internal/publish/sheets"
	_ "reportmerge/internal/publish/sqlsink"
	_ "reportmerge/internal/publish/xlsx"
	_ "reportmerge/internal/storage/all"
)

func main() {
	Execute()
}
