package repository

import (
	"fmt"

	"github.com/RealZimboGuy/gopherflow-designer/internal/config"
)

// placeholder returns the correct bind variable for the given index based on DB type.
// Postgres uses $1, $2... while MySQL and SQLite use ?
func placeholder(i int) string {
	db := config.GetSystemSettingString(config.DATABASE_TYPE)
	if db == config.DATABASE_TYPE_POSTGRES {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

// upsertDocumentQuery builds the insert-or-update statement for the
// configured database. Postgres and SQLite share ON CONFLICT, MySQL uses
// ON DUPLICATE KEY.
func upsertDocumentQuery() (string, error) {
	values := `VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `)`
	db := config.GetSystemSettingString(config.DATABASE_TYPE)
	switch db {
	case config.DATABASE_TYPE_POSTGRES, config.DATABASE_TYPE_SQLLITE:
		return `
		INSERT INTO designer_documents (doc_key, payload, created, updated)
		` + values + `
		ON CONFLICT (doc_key)
		DO UPDATE SET payload = EXCLUDED.payload,
			updated = EXCLUDED.updated
	`, nil
	case config.DATABASE_TYPE_MYSQL:
		return `
		INSERT INTO designer_documents (doc_key, payload, created, updated)
		` + values + `
		ON DUPLICATE KEY UPDATE payload = VALUES(payload),
			updated = VALUES(updated)
	`, nil
	default:
		return "", fmt.Errorf("unknown database type %q trying to save document", db)
	}
}
