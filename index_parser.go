package main

import (
	"fmt"
	"strings"
)

// parseIndex builds an IndexDescriptor from a CREATE INDEX statement.
// Uniqueness is the presence of a UNIQUE keyword anywhere in the text; the
// key parts come from the first parenthesized group.
func parseIndex(name, createIndexSQL string) (IndexDescriptor, error) {
	idx := IndexDescriptor{Name: name}

	toks, err := lexDDL(createIndexSQL)
	if err != nil {
		return idx, fmt.Errorf("lex index %s: %w", name, err)
	}

	open := -1
	for i, t := range toks {
		if t.isKeyword("UNIQUE") {
			idx.Unique = true
		}
		if open < 0 && t.isPunct('(') {
			open = i
		}
	}
	if open < 0 {
		return idx, fmt.Errorf("index %s: no column list", name)
	}
	close := matchParen(toks, open)
	if close < 0 {
		return idx, fmt.Errorf("index %s: unterminated column list", name)
	}

	for n, part := range splitTopLevel(toks[open+1 : close]) {
		if len(part) == 0 {
			return idx, fmt.Errorf("index %s: empty key part %d", name, n+1)
		}
		col, desc, ok := parseIndexedColumn(part)
		if !ok {
			idx.Expression = true
			col = tokenSpan(createIndexSQL, part)
		}
		idx.Columns = append(idx.Columns, col)
		idx.Descending = append(idx.Descending, desc)
	}

	for _, t := range toks[close+1:] {
		if t.isKeyword("WHERE") {
			idx.Partial = true
			break
		}
	}
	return idx, nil
}

// parseIndexedColumn accepts `name [COLLATE collation] [ASC|DESC]`.
func parseIndexedColumn(toks []token) (name string, desc bool, ok bool) {
	if toks[0].kind != tokWord && toks[0].kind != tokQuoted {
		return "", false, false
	}
	name = toks[0].text
	rest := toks[1:]
	if len(rest) >= 2 && rest[0].isKeyword("COLLATE") &&
		(rest[1].kind == tokWord || rest[1].kind == tokQuoted) {
		rest = rest[2:]
	}
	if len(rest) == 1 {
		switch {
		case rest[0].isKeyword("ASC"):
			rest = rest[1:]
		case rest[0].isKeyword("DESC"):
			desc = true
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		return "", false, false
	}
	return name, desc, true
}

// indexColumnsText renders key parts for logging.
func indexColumnsText(idx IndexDescriptor) string {
	return strings.Join(idx.Columns, ", ")
}
