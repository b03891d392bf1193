package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// IndexStatement is a translated index; SkipReason is set when the index
// cannot be expressed on the target and SQL is empty.
type IndexStatement struct {
	Index      IndexDescriptor
	SQL        string
	SkipReason string
}

// TranslatedTable holds the target DDL for one source table.
type TranslatedTable struct {
	Table   string
	Drop    string
	Create  string
	Indexes []IndexStatement
}

// IndexResult is the outcome of applying one index statement.
type IndexResult struct {
	Name      string
	Statement string
	Skipped   bool
	Err       error // set when the target rejected the statement, or the reason it was skipped
}

// translateTable produces the drop, create and index statements for t.
func translateTable(t TableDescriptor, d Dialect) TranslatedTable {
	tt := TranslatedTable{
		Table:  t.Name,
		Drop:   fmt.Sprintf("DROP TABLE IF EXISTS %s", d.QuoteIdent(t.Name)),
		Create: generateCreateTable(t, d),
	}
	for _, idx := range t.Indexes {
		if reason, unsupported := indexUnsupportedReason(idx); unsupported {
			tt.Indexes = append(tt.Indexes, IndexStatement{Index: idx, SkipReason: reason})
			continue
		}
		tt.Indexes = append(tt.Indexes, IndexStatement{Index: idx, SQL: generateCreateIndex(t.Name, idx, d)})
	}
	return tt
}

// generateCreateTable produces a CREATE TABLE IF NOT EXISTS statement with
// bare column types: lengths, defaults and NOT NULL are not carried over.
func generateCreateTable(t TableDescriptor, d Dialect) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (", d.QuoteIdent(t.Name))
	for i, col := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", d.QuoteIdent(col.Name), d.RenderType(col.TargetType))
	}
	b.WriteString(")")
	return b.String()
}

func generateCreateIndex(table string, idx IndexDescriptor, d Dialect) string {
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = d.QuoteIdent(c)
		if i < len(idx.Descending) && idx.Descending[i] {
			cols[i] += " DESC"
		}
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		unique, d.QuoteIdent(idx.Name), d.QuoteIdent(table), strings.Join(cols, ", "))
}

// applySchema recreates the table on the target and then attempts each of its
// indexes. Drop or create failures are returned; index failures are logged
// as warnings and recorded in the results without stopping the table.
func applySchema(ctx context.Context, exec Executor, tt TranslatedTable, log *logrus.Entry) ([]IndexResult, error) {
	log.Infof("creating table %s", tt.Table)
	if err := execSQL(ctx, exec, "drop table "+tt.Table, tt.Drop); err != nil {
		return nil, err
	}
	if err := execSQL(ctx, exec, "create table "+tt.Table, tt.Create); err != nil {
		return nil, err
	}

	results := make([]IndexResult, 0, len(tt.Indexes))
	for _, is := range tt.Indexes {
		ilog := log.WithField("index", is.Index.Name)
		if is.SkipReason != "" {
			ilog.Warnf("skipping index %s (%s): %s", is.Index.Name, indexColumnsText(is.Index), is.SkipReason)
			results = append(results, IndexResult{
				Name:    is.Index.Name,
				Skipped: true,
				Err:     errors.New(is.SkipReason),
			})
			continue
		}

		ilog.Infof("creating index on %s: %s", tt.Table, is.SQL)
		res := IndexResult{Name: is.Index.Name, Statement: is.SQL}
		if err := execSQL(ctx, exec, "create index "+is.Index.Name, is.SQL); err != nil {
			ilog.Warnf("could not create index %s: %v", is.Index.Name, err)
			res.Err = err
		}
		results = append(results, res)
	}
	return results, nil
}
