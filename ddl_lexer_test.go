package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexDDL(t *testing.T) {
	toks, err := lexDDL("CREATE TABLE \"my \"\"t\"\" \" ([a b], `c`, d DEFAULT 'it''s', e REAL DEFAULT 1.5e-3) -- trailing\n/* block */")
	require.NoError(t, err)

	type tok struct {
		kind tokenKind
		text string
	}
	var got []tok
	for _, tk := range toks {
		got = append(got, tok{tk.kind, tk.text})
	}
	assert.Equal(t, []tok{
		{tokWord, "CREATE"},
		{tokWord, "TABLE"},
		{tokQuoted, `my "t" `},
		{tokPunct, "("},
		{tokQuoted, "a b"},
		{tokPunct, ","},
		{tokQuoted, "c"},
		{tokPunct, ","},
		{tokWord, "d"},
		{tokWord, "DEFAULT"},
		{tokString, "'it''s'"},
		{tokPunct, ","},
		{tokWord, "e"},
		{tokWord, "REAL"},
		{tokWord, "DEFAULT"},
		{tokNumber, "1.5e-3"},
		{tokPunct, ")"},
	}, got)
}

func TestLexDDLUnterminated(t *testing.T) {
	for _, src := range []string{`CREATE TABLE "t (a)`, "CREATE TABLE t (a DEFAULT 'x)", "CREATE TABLE [t (a)"} {
		_, err := lexDDL(src)
		assert.Error(t, err, src)
	}
}

func TestTokenKeyword(t *testing.T) {
	toks, err := lexDDL(`unique "UNIQUE" unique_code`)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.True(t, toks[0].isKeyword("UNIQUE"))
	assert.False(t, toks[1].isKeyword("UNIQUE"), "quoted identifiers are never keywords")
	assert.False(t, toks[2].isKeyword("UNIQUE"))
}

func TestSplitTopLevel(t *testing.T) {
	src := "a DECIMAL(10,2), b, CHECK (b IN (1,2))"
	toks, err := lexDDL(src)
	require.NoError(t, err)

	parts := splitTopLevel(toks)
	require.Len(t, parts, 3)
	assert.Equal(t, "a DECIMAL(10,2)", tokenSpan(src, parts[0]))
	assert.Equal(t, "b", tokenSpan(src, parts[1]))
	assert.Equal(t, "CHECK (b IN (1,2))", tokenSpan(src, parts[2]))
}

func TestMatchParen(t *testing.T) {
	toks, err := lexDDL("( a ( b ) c ) d")
	require.NoError(t, err)
	assert.Equal(t, 6, matchParen(toks, 0))
	assert.Equal(t, 4, matchParen(toks, 2))

	toks, err = lexDDL("( a ( b )")
	require.NoError(t, err)
	assert.Equal(t, -1, matchParen(toks, 0))
}
