package main

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// recordingExec records every statement; fail, when set, decides per call
// whether the statement is rejected.
type recordingExec struct {
	stmts []string
	args  [][]any
	fail  func(query string, call int) error
}

func (r *recordingExec) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	r.stmts = append(r.stmts, query)
	r.args = append(r.args, args)
	if r.fail != nil {
		if err := r.fail(query, len(r.stmts)); err != nil {
			return nil, err
		}
	}
	return driver.RowsAffected(1), nil
}

func (r *recordingExec) withPrefix(prefix string) []string {
	var out []string
	for _, s := range r.stmts {
		if strings.HasPrefix(s, prefix) {
			out = append(out, s)
		}
	}
	return out
}

// failingExec wraps a real executor, records statements and rejects the
// ones fail picks.
type failingExec struct {
	Executor
	stmts []string
	fail  func(query string, call int) error
}

func (f *failingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.stmts = append(f.stmts, query)
	if f.fail != nil {
		if err := f.fail(query, len(f.stmts)); err != nil {
			return nil, err
		}
	}
	return f.Executor.ExecContext(ctx, query, args...)
}

func (f *failingExec) withPrefix(prefix string) []string {
	var out []string
	for _, s := range f.stmts {
		if strings.HasPrefix(s, prefix) {
			out = append(out, s)
		}
	}
	return out
}

func newTestLog() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(logger), hook
}

// logMessages returns the messages logged at level.
func logMessages(hook *test.Hook, level logrus.Level) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// newSQLiteDB creates a SQLite file in a temp dir and runs the setup statements.
func newSQLiteDB(t *testing.T, name string, stmts ...string) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
	return db, path
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM "+sqliteQuoteIdent(table)).Scan(&n))
	return n
}
