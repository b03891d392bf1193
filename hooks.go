package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// runHooks reads each SQL file, expands {{database}}, and executes every
// statement against the target. Unlike per-batch failures, a failing hook
// statement stops the run: hooks usually prepare state later steps rely on.
func runHooks(ctx context.Context, exec Executor, cfg *MigrationConfig, files []string, phase string, log *logrus.Entry) error {
	if len(files) == 0 {
		return nil
	}
	log.Infof("running %s hooks (%d files)", phase, len(files))

	for _, f := range files {
		data, err := os.ReadFile(cfg.resolvePath(f))
		if err != nil {
			return fmt.Errorf("hook %s: read %s: %w", phase, f, err)
		}

		sql := strings.ReplaceAll(string(data), "{{database}}", cfg.Target.Database)
		stmts := splitStatements(sql)

		log.Infof("  %s: %d statements", f, len(stmts))
		for i, stmt := range stmts {
			if err := execSQL(ctx, exec, fmt.Sprintf("hook %s: %s: statement %d", phase, f, i+1), stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitStatements splits SQL text on semicolons, ignoring empty statements
// and semicolons inside quotes, comments or dollar-quoted bodies.
func splitStatements(sql string) []string {
	var stmts []string
	start := 0
	emit := func(end int) {
		if s := strings.TrimSpace(sql[start:end]); s != "" {
			stmts = append(stmts, s)
		}
	}

	for i := 0; i < len(sql); i++ {
		switch c := sql[i]; {
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(sql, i, c)
		case c == '-' && strings.HasPrefix(sql[i:], "--"), c == '#':
			i = skipUntil(sql, i, "\n") - 1
		case c == '/' && strings.HasPrefix(sql[i:], "/*"):
			i = skipBlockComment(sql, i) - 1
		case c == '$':
			if tag, ok := parseDollarTag(sql, i); ok {
				i = skipUntil(sql, i+len(tag), tag) - 1
			}
		case c == ';':
			emit(i)
			start = i + 1
		}
	}
	emit(len(sql))
	return stmts
}

// skipQuoted returns the index of the quote closing the one at sql[i].
// Doubled quotes are escapes.
func skipQuoted(sql string, i int, q byte) int {
	for j := i + 1; j < len(sql); j++ {
		if sql[j] != q {
			continue
		}
		if j+1 < len(sql) && sql[j+1] == q {
			j++
			continue
		}
		return j
	}
	return len(sql) - 1
}

// skipUntil returns the index just past the first end found after i, or len(sql).
func skipUntil(sql string, i int, end string) int {
	if k := strings.Index(sql[i:], end); k >= 0 {
		return i + k + len(end)
	}
	return len(sql)
}

// skipBlockComment handles nested /* */ comments starting at sql[i].
func skipBlockComment(sql string, i int) int {
	depth := 0
	for j := i; j < len(sql)-1; j++ {
		switch sql[j : j+2] {
		case "/*":
			depth++
			j++
		case "*/":
			depth--
			j++
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(sql)
}

// parseDollarTag recognizes $$ and $tag$ openers of PostgreSQL dollar quoting.
func parseDollarTag(sql string, i int) (string, bool) {
	j := i + 1
	for j < len(sql) && (sql[j] == '_' || isWordStart(sql[j]) || (j > i+1 && isDigit(sql[j]))) {
		j++
	}
	if j < len(sql) && sql[j] == '$' {
		return sql[i : j+1], true
	}
	return "", false
}
