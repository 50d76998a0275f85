package store

import (
	"context"
	"embed"
	"strings"

	"github.com/pkg/errors"
)

// Migration files live in migration/{driver}/LATEST.sql and hold the full
// schema. They are idempotent and applied when the booking table is missing.

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the name of the latest schema file.
const LatestSchemaFileName = "LATEST.sql"

// Migrate creates the schema on a fresh database. Drivers without a SQL
// database are left untouched.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.driver.GetDB()
	if db == nil {
		return nil
	}

	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	filePath := "migration/" + s.profile.Driver + "/" + LatestSchemaFileName
	schema, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read schema file %s", filePath)
	}

	for _, stmt := range splitStatements(string(schema)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to apply schema statement: %s", stmt)
		}
	}
	s.logger.Info("applied latest schema", "driver", s.profile.Driver)
	return nil
}

func splitStatements(schema string) []string {
	var stmts []string
	for _, part := range strings.Split(schema, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
