package migrations

import "embed"

// FS holds one directory of migrations per database type: postgres, mysql
// and sqllite3.
//
//go:embed postgres mysql sqllite3
var FS embed.FS
