package main

import (
	"fmt"
	"strings"
)

type clauseKind int

const (
	clauseColumn clauseKind = iota
	clauseConstraint
	clauseMalformed
)

// ddlClause is one comma-separated entry of a CREATE TABLE column list.
type ddlClause struct {
	kind   clauseKind
	column ColumnDescriptor // clauseColumn only; TargetType is left unset
	text   string
	reason string // clauseMalformed only
}

// ParseIssue describes a column-list clause that could not be understood.
type ParseIssue struct {
	Clause int // 1-based position in the column list
	Text   string
	Reason string
}

func (p ParseIssue) String() string {
	return fmt.Sprintf("clause %d %q: %s", p.Clause, p.Text, p.Reason)
}

// ParseResult is the outcome of parsing a CREATE TABLE statement.
type ParseResult struct {
	Columns     []ColumnDescriptor
	Constraints []string // table-level constraint clauses, dropped
	Issues      []ParseIssue
}

// columnConstraintKeywords start a column constraint and so end a type name.
var columnConstraintKeywords = []string{
	"CONSTRAINT", "PRIMARY", "NOT", "NULL", "UNIQUE", "CHECK", "DEFAULT",
	"COLLATE", "REFERENCES", "GENERATED", "AS",
}

func isColumnConstraintStart(t token) bool {
	for _, kw := range columnConstraintKeywords {
		if t.isKeyword(kw) {
			return true
		}
	}
	return false
}

// parseColumns extracts the ordered column list of a CREATE TABLE statement.
// Table constraints are dropped; clauses that are neither a column nor a
// constraint are returned as issues. A statement without a parenthesized
// group yields an empty result.
func parseColumns(createTableSQL string) ParseResult {
	var res ParseResult
	clauses, err := parseCreateTable(createTableSQL)
	if err != nil {
		res.Issues = append(res.Issues, ParseIssue{Text: createTableSQL, Reason: err.Error()})
		return res
	}
	for i, c := range clauses {
		switch c.kind {
		case clauseColumn:
			res.Columns = append(res.Columns, c.column)
		case clauseConstraint:
			res.Constraints = append(res.Constraints, c.text)
		case clauseMalformed:
			res.Issues = append(res.Issues, ParseIssue{Clause: i + 1, Text: c.text, Reason: c.reason})
		}
	}
	return res
}

// parseCreateTable parses the column list between the first '(' and its
// matching ')' into typed clauses.
func parseCreateTable(src string) ([]ddlClause, error) {
	toks, err := lexDDL(src)
	if err != nil {
		return nil, err
	}

	open := -1
	for i, t := range toks {
		if t.isPunct('(') {
			open = i
			break
		}
	}
	if open < 0 {
		return nil, nil
	}
	close := matchParen(toks, open)
	if close < 0 {
		return nil, fmt.Errorf("unterminated column list")
	}

	parts := splitTopLevel(toks[open+1 : close])
	clauses := make([]ddlClause, 0, len(parts))
	for _, part := range parts {
		clauses = append(clauses, parseClause(src, part))
	}
	return clauses, nil
}

func parseClause(src string, toks []token) ddlClause {
	text := tokenSpan(src, toks)
	if len(toks) == 0 {
		return ddlClause{kind: clauseMalformed, reason: "empty clause"}
	}

	if isTableConstraintStart(toks) {
		return ddlClause{kind: clauseConstraint, text: text}
	}

	name := toks[0]
	if name.kind != tokWord && name.kind != tokQuoted {
		return ddlClause{kind: clauseMalformed, text: text,
			reason: fmt.Sprintf("expected column name, found %q", name.text)}
	}

	typeName, rest, err := parseTypeName(toks[1:])
	if err != nil {
		return ddlClause{kind: clauseMalformed, text: text, reason: err.Error()}
	}
	if len(rest) > 0 && !isColumnConstraintStart(rest[0]) {
		return ddlClause{kind: clauseMalformed, text: text,
			reason: fmt.Sprintf("unexpected %q after column type", rest[0].text)}
	}

	col := ColumnDescriptor{Name: name.text, SourceType: typeName}
	scanColumnConstraints(rest, &col)
	return ddlClause{kind: clauseColumn, column: col, text: text}
}

// scanColumnConstraints records the COLLATE and GENERATED parts of a column
// definition. Everything else in the constraint list is ignored.
func scanColumnConstraints(toks []token, col *ColumnDescriptor) {
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.isPunct('('):
			if j := matchParen(toks, i); j > 0 {
				i = j
			}
		case t.isKeyword("COLLATE") && i+1 < len(toks):
			if next := toks[i+1]; next.kind == tokWord || next.kind == tokQuoted {
				col.Collation = next.text
				i++
			}
		case t.isKeyword("AS"):
			if col.Generated == "" {
				col.Generated = "VIRTUAL"
			}
		case t.isKeyword("STORED") && col.Generated != "":
			col.Generated = "STORED"
		}
	}
}

func isTableConstraintStart(toks []token) bool {
	first := toks[0]
	switch {
	case first.isKeyword("CONSTRAINT"), first.isKeyword("UNIQUE"), first.isKeyword("CHECK"):
		return true
	case first.isKeyword("PRIMARY"), first.isKeyword("FOREIGN"):
		return len(toks) > 1 && toks[1].isKeyword("KEY")
	}
	return false
}

// parseTypeName consumes a SQLite type name: one or more words optionally
// followed by a parenthesized argument list. Quoted identifiers and string
// literals count as words, as SQLite accepts [nvarchar](50) or "int". It
// returns the normalized type text and the unconsumed tokens.
func parseTypeName(toks []token) (string, []token, error) {
	var words []string
	i := 0
	for i < len(toks) {
		w, ok := typeNameWord(toks[i])
		if !ok {
			break
		}
		words = append(words, w)
		i++
	}
	if len(words) == 0 {
		return "", toks, nil
	}

	typeName := strings.Join(words, " ")
	if i < len(toks) && toks[i].isPunct('(') {
		close := matchParen(toks, i)
		if close < 0 {
			return "", nil, fmt.Errorf("unterminated type arguments")
		}
		var args strings.Builder
		for _, t := range toks[i+1 : close] {
			args.WriteString(t.text)
		}
		typeName += "(" + args.String() + ")"
		i = close + 1
	}
	return typeName, toks[i:], nil
}

func typeNameWord(t token) (string, bool) {
	switch t.kind {
	case tokWord:
		return t.text, !isColumnConstraintStart(t)
	case tokQuoted:
		return t.text, true
	case tokString:
		return unquoteString(t.text), true
	}
	return "", false
}

// unquoteString strips the quotes of a 'literal' and collapses doubled quotes.
func unquoteString(raw string) string {
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		raw = raw[1 : len(raw)-1]
	}
	return strings.ReplaceAll(raw, "''", "'")
}
