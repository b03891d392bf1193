package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want IndexDescriptor
	}{
		{
			name: "unique composite",
			sql:  "CREATE UNIQUE INDEX idx ON t(x, y)",
			want: IndexDescriptor{Name: "idx", Unique: true, Columns: []string{"x", "y"}, Descending: []bool{false, false}},
		},
		{
			name: "plain index",
			sql:  "CREATE INDEX idx ON users (name)",
			want: IndexDescriptor{Name: "idx", Columns: []string{"name"}, Descending: []bool{false}},
		},
		{
			name: "lowercase and if not exists",
			sql:  "create unique index if not exists idx on t (a)",
			want: IndexDescriptor{Name: "idx", Unique: true, Columns: []string{"a"}, Descending: []bool{false}},
		},
		{
			name: "quoted columns and order",
			sql:  "CREATE INDEX idx ON t (\"b\" DESC, `a` ASC, [c d] COLLATE NOCASE DESC)",
			want: IndexDescriptor{Name: "idx", Columns: []string{"b", "a", "c d"}, Descending: []bool{true, false, true}},
		},
		{
			name: "unique in a quoted name does not count",
			sql:  `CREATE INDEX "unique_idx" ON "unique" (a)`,
			want: IndexDescriptor{Name: "idx", Columns: []string{"a"}, Descending: []bool{false}},
		},
		{
			name: "expression key part",
			sql:  "CREATE INDEX idx ON t (lower(email), id)",
			want: IndexDescriptor{Name: "idx", Columns: []string{"lower(email)", "id"}, Descending: []bool{false, false}, Expression: true},
		},
		{
			name: "partial index",
			sql:  "CREATE INDEX idx ON t (a) WHERE a IS NOT NULL",
			want: IndexDescriptor{Name: "idx", Columns: []string{"a"}, Descending: []bool{false}, Partial: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIndex("idx", tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIndexErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"no column list", "CREATE INDEX idx ON t"},
		{"unterminated list", "CREATE INDEX idx ON t (a, b"},
		{"empty key part", "CREATE INDEX idx ON t (a, )"},
		{"unterminated quote", `CREATE INDEX idx ON t ("a)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseIndex("idx", tt.sql)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "idx")
		})
	}
}

func TestIndexUnsupportedReason(t *testing.T) {
	tests := []struct {
		name        string
		idx         IndexDescriptor
		unsupported bool
	}{
		{"plain", IndexDescriptor{Columns: []string{"a"}}, false},
		{"expression", IndexDescriptor{Columns: []string{"lower(a)"}, Expression: true}, true},
		{"partial", IndexDescriptor{Columns: []string{"a"}, Partial: true}, true},
		{"no columns", IndexDescriptor{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, unsupported := indexUnsupportedReason(tt.idx)
			assert.Equal(t, tt.unsupported, unsupported)
			if unsupported {
				assert.NotEmpty(t, reason)
			}
		})
	}
}
