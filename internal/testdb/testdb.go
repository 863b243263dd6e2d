// Package testdb opens throwaway SQLite databases with the worklog schema
// applied, for repository tests.
package testdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// New returns an isolated in-memory database with every SQLite migration
// applied and foreign keys enforced.
func New(t testing.TB) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	sqldb, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	Migrate(t, db)
	return db
}

// Migrate executes the SQLite up migrations in file order.
func Migrate(t testing.TB, db *bun.DB) {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(migrationsDir(), "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "no sqlite migrations found")
	sort.Strings(files)
	for _, file := range files {
		content, err := os.ReadFile(file)
		require.NoError(t, err)
		for _, stmt := range SplitStatements(string(content)) {
			_, err := db.Exec(stmt)
			require.NoError(t, err, "executing statement %q", stmt)
		}
	}
}

// SplitStatements breaks a SQL script into statements, dropping comments.
func SplitStatements(script string) []string {
	var (
		builder    strings.Builder
		statements []string
	)
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSuffix(strings.TrimSpace(builder.String()), ";"))
			builder.Reset()
			continue
		}
		builder.WriteString(" ")
	}
	if rest := strings.TrimSpace(builder.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "data", "sql", "migrations", "sqlite")
}
