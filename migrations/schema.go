package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// TableCheck describes a table and the columns the application reads.
type TableCheck struct {
	Table   string
	Columns []string
}

// DefaultTableChecks lists the tables the worklog repositories depend on.
var DefaultTableChecks = []TableCheck{
	{Table: "organizations", Columns: []string{"id", "name"}},
	{Table: "roles", Columns: []string{"id", "organization_id", "name", "role_level"}},
	{Table: "profiles", Columns: []string{"id", "email", "is_admin", "is_superuser", "organization_id", "parent_id", "role_id", "personal"}},
	{Table: "report_formats", Columns: []string{"id", "user_id", "name", "content"}},
	{Table: "purposes", Columns: []string{"id", "user_id", "name", "format_id", "insights"}},
	{Table: "reports", Columns: []string{"id", "user_id", "purpose_id", "content", "report_date"}},
	{Table: "images", Columns: []string{"id", "user_id", "report_id", "mime_type", "data"}},
	{Table: "activity_log", Columns: []string{"id", "actor_id", "organization_id", "verb", "data"}},
}

// SchemaValidationError summarizes missing tables and columns.
type SchemaValidationError struct {
	MissingTables  []string
	MissingColumns map[string][]string
}

func (e *SchemaValidationError) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if len(e.MissingTables) > 0 {
		parts = append(parts, "missing tables: "+strings.Join(e.MissingTables, ", "))
	}
	if len(e.MissingColumns) > 0 {
		tables := make([]string, 0, len(e.MissingColumns))
		for table := range e.MissingColumns {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		cols := make([]string, 0, len(tables))
		for _, table := range tables {
			missing := append([]string(nil), e.MissingColumns[table]...)
			sort.Strings(missing)
			cols = append(cols, fmt.Sprintf("%s(%s)", table, strings.Join(missing, ", ")))
		}
		parts = append(parts, "missing columns: "+strings.Join(cols, "; "))
	}
	if len(parts) == 0 {
		return "schema validation failed"
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// ValidateSchema checks that the migrated database exposes every table and
// column in checks (DefaultTableChecks when none are given).
func ValidateSchema(ctx context.Context, db *sql.DB, dialect string, checks ...TableCheck) error {
	if db == nil {
		return errors.New("migrations: db required")
	}
	normalized, err := normalizeDialect(dialect)
	if err != nil {
		return err
	}
	if len(checks) == 0 {
		checks = DefaultTableChecks
	}

	var missingTables []string
	missingColumns := make(map[string][]string)
	for _, check := range checks {
		if strings.TrimSpace(check.Table) == "" {
			continue
		}
		cols, err := fetchColumns(ctx, db, normalized, check.Table)
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			missingTables = append(missingTables, check.Table)
			continue
		}
		for _, col := range check.Columns {
			col = strings.ToLower(strings.TrimSpace(col))
			if col != "" && !cols[col] {
				missingColumns[check.Table] = append(missingColumns[check.Table], col)
			}
		}
	}
	if len(missingTables) == 0 && len(missingColumns) == 0 {
		return nil
	}
	sort.Strings(missingTables)
	return &SchemaValidationError{
		MissingTables:  missingTables,
		MissingColumns: missingColumns,
	}
}

func normalizeDialect(dialect string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql", "pg":
		return "postgres", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
}

func fetchColumns(ctx context.Context, db *sql.DB, dialect, table string) (map[string]bool, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if dialect == "postgres" {
		rows, err = db.QueryContext(ctx, `
			SELECT column_name
			FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = $1
		`, table)
	} else {
		rows, err = db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}
