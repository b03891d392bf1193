package main

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokWord   tokenKind = iota // bare identifier or keyword
	tokQuoted                  // "ident", `ident` or [ident]
	tokString                  // 'literal'
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string // unquoted value for tokQuoted, raw text otherwise
	pos  int    // byte offsets into the lexed input
	end  int
}

func (t token) isPunct(c byte) bool {
	return t.kind == tokPunct && len(t.text) == 1 && t.text[0] == c
}

// isKeyword reports whether t is the bare word kw (case-insensitive).
// Quoted identifiers never match keywords.
func (t token) isKeyword(kw string) bool {
	return t.kind == tokWord && strings.EqualFold(t.text, kw)
}

// lexDDL splits SQLite DDL text into tokens, dropping whitespace and comments.
func lexDDL(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			i++

		case c == '-' && i+1 < len(src) && src[i+1] == '-':
			for i < len(src) && src[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				// SQLite accepts an unterminated block comment at end of input
				i = len(src)
			} else {
				i += end + 4
			}

		case c == '"' || c == '`':
			text, next, err := lexDelimited(src, i, c, c)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokQuoted, text: text, pos: i, end: next})
			i = next

		case c == '[':
			text, next, err := lexDelimited(src, i, '[', ']')
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokQuoted, text: text, pos: i, end: next})
			i = next

		case c == '\'':
			_, next, err := lexDelimited(src, i, '\'', '\'')
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: src[i:next], pos: i, end: next})
			i = next

		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			j := i
			for j < len(src) && (isDigit(src[j]) || src[j] == '.' || isWordChar(src[j])) {
				if (src[j] == 'e' || src[j] == 'E') && j+1 < len(src) && (src[j+1] == '+' || src[j+1] == '-') {
					j++
				}
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: src[i:j], pos: i, end: j})
			i = j

		case isWordStart(c):
			j := i + 1
			for j < len(src) && isWordChar(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: src[i:j], pos: i, end: j})
			i = j

		default:
			toks = append(toks, token{kind: tokPunct, text: src[i : i+1], pos: i, end: i + 1})
			i++
		}
	}
	return toks, nil
}

// lexDelimited scans a token opened by open at src[start] and returns its
// unescaped body and the offset just past the closing delimiter. A doubled
// closing delimiter inside the body is an escaped literal, except for [].
func lexDelimited(src string, start int, open, close byte) (string, int, error) {
	var body []byte
	for i := start + 1; i < len(src); i++ {
		if src[i] != close {
			body = append(body, src[i])
			continue
		}
		if open == close && i+1 < len(src) && src[i+1] == close {
			body = append(body, close)
			i++
			continue
		}
		return string(body), i + 1, nil
	}
	return "", 0, fmt.Errorf("unterminated %c at offset %d", open, start)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isWordChar(c byte) bool {
	return isWordStart(c) || isDigit(c) || c == '$'
}

// matchParen returns the index of the ')' closing the '(' at toks[open], or -1.
func matchParen(toks []token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].isPunct('('):
			depth++
		case toks[i].isPunct(')'):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits toks on commas that are not nested inside parentheses.
func splitTopLevel(toks []token) [][]token {
	var parts [][]token
	depth, start := 0, 0
	for i, t := range toks {
		switch {
		case t.isPunct('('):
			depth++
		case t.isPunct(')'):
			depth--
		case t.isPunct(',') && depth == 0:
			parts = append(parts, toks[start:i])
			start = i + 1
		}
	}
	return append(parts, toks[start:])
}

// tokenSpan returns the source text covered by toks.
func tokenSpan(src string, toks []token) string {
	if len(toks) == 0 {
		return ""
	}
	return src[toks[0].pos:toks[len(toks)-1].end]
}
