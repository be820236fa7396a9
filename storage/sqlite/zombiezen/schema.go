package zombiezen

import (
	"context"
	"embed"
	"fmt"
	"path"

	"zombiezen.com/go/sqlite/sqlitex"
)

// sqlFiles embeds all SQL scripts from the sql/ subdirectory.
//
//go:embed sql/*.sql
var sqlFiles embed.FS

// Schemas are the scripts creating the pipeline tables.
var Schemas = []string{"lines.sql", "records.sql", "fits.sql", "written.sql"}

// CreateSchemas executes the named embedded SQL scripts (e.g. "records.sql").
func CreateSchemas(pool *sqlitex.Pool, schemaNames ...string) error {
	conn, err := pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer pool.Put(conn)

	for _, name := range schemaNames {
		scriptPath := path.Join("sql", name)
		script, err := sqlFiles.ReadFile(scriptPath)
		if err != nil {
			return fmt.Errorf("failed to read embedded sql file %s: %w", scriptPath, err)
		}

		// ExecuteScript handles multi-statement strings.
		if err := sqlitex.ExecuteScript(conn, string(script), nil); err != nil {
			return fmt.Errorf("failed to execute script %s: %w", name, err)
		}
	}

	return nil
}
