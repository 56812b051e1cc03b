package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"fqc_viz_go/collection"
	fqc "fqc_viz_go/fastqc_report"
	"fqc_viz_go/transform"
	common "fqc_viz_go/utils"
)

// WriteSQLite stores the collection in a SQLite database at path: a reports table, one
// table per module and a statuses table. Existing tables of the same name are replaced.
func WriteSQLite(ctx context.Context, path string, c *collection.Collection, modules []string, statuses []transform.StatusRecord) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	if err := writeReports(ctx, tx, c); err != nil {
		return err
	}
	for _, name := range modules {
		mt := c.Module(name)
		if mt.Fields == nil {
			slog.Debug("no schema for module, not exported", "module", name)
			continue
		}
		if err := writeModule(ctx, tx, mt); err != nil {
			return errors.Wrapf(err, "module %s", name)
		}
	}
	if err := writeStatuses(ctx, tx, statuses); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit")
}

func writeReports(ctx context.Context, tx *sql.Tx, c *collection.Collection) error {
	stmts := []string{
		`DROP TABLE IF EXISTS reports`,
		`CREATE TABLE reports (filename TEXT PRIMARY KEY, sample TEXT NOT NULL, version TEXT NOT NULL, layout TEXT NOT NULL, total_sequences INTEGER)`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return errors.Wrap(err, "create reports table")
		}
	}
	for _, r := range c.Reports() {
		var total any
		if v, ok := r.BasicStatistic("Total Sequences"); ok {
			total = v
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO reports (filename, sample, version, layout, total_sequences) VALUES (?, ?, ?, ?, ?)`,
			r.Filename, common.SampleName(r.Filename), r.Version, r.Layout.Name, total)
		if err != nil {
			return errors.Wrapf(err, "insert report %s", r.Filename)
		}
	}
	return nil
}

func writeModule(ctx context.Context, tx *sql.Tx, mt *collection.ModuleTable) error {
	table := TableName(mt.Module)
	cols := []string{`"filename" TEXT NOT NULL`}
	names := []string{`"filename"`}
	for _, f := range mt.Fields {
		col := ColumnName(f.Name)
		switch f.Kind {
		case fqc.KindInt:
			cols = append(cols, quote(col)+" INTEGER")
			names = append(names, quote(col))
		case fqc.KindFloat:
			cols = append(cols, quote(col)+" REAL")
			names = append(names, quote(col))
		case fqc.KindRange:
			cols = append(cols, quote(col)+" TEXT", quote(col+"_start")+" INTEGER", quote(col+"_end")+" INTEGER")
			names = append(names, quote(col), quote(col+"_start"), quote(col+"_end"))
		default:
			cols = append(cols, quote(col)+" TEXT")
			names = append(names, quote(col))
		}
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(table)); err != nil {
		return errors.Wrap(err, "drop table")
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quote(table), strings.Join(cols, ", "))); err != nil {
		return errors.Wrap(err, "create table")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(table), strings.Join(names, ", "), placeholders))
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for _, r := range mt.Rows {
		args := make([]any, 0, len(names))
		args = append(args, r.Filename)
		for i, c := range r.Cells {
			switch mt.Fields[i].Kind {
			case fqc.KindInt:
				args = append(args, int64(c.Num))
			case fqc.KindFloat:
				args = append(args, c.Num)
			case fqc.KindRange:
				args = append(args, c.Text, int64(c.Num), int64(c.End))
			default:
				args = append(args, c.Text)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "insert row of %s", r.Filename)
		}
	}
	slog.Debug("exported module", "module", mt.Module, "table", table, "rows", len(mt.Rows))
	return nil
}

func writeStatuses(ctx context.Context, tx *sql.Tx, records []transform.StatusRecord) error {
	stmts := []string{
		`DROP TABLE IF EXISTS statuses`,
		`CREATE TABLE statuses (filename TEXT NOT NULL, module TEXT NOT NULL, verdict TEXT NOT NULL, metric REAL NOT NULL,
			warn REAL NOT NULL, fail REAL NOT NULL, direction TEXT NOT NULL, reported TEXT, PRIMARY KEY (filename, module))`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return errors.Wrap(err, "create statuses table")
		}
	}
	for _, r := range records {
		_, err := tx.ExecContext(ctx, `INSERT INTO statuses VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Filename, r.Module, string(r.Verdict), r.Metric, r.Thresholds.Warn, r.Thresholds.Fail,
			r.Thresholds.Direction.String(), string(r.Reported))
		if err != nil {
			return errors.Wrapf(err, "insert status %s/%s", r.Filename, r.Module)
		}
	}
	return nil
}

// TableName is the SQL table of a module: "Per_base_N_content" -> "per_base_n_content".
func TableName(module string) string {
	return ColumnName(module)
}

// ColumnName lower-cases a field name and replaces everything outside [a-z0-9] with '_':
// "Illumina Small RNA 3' Adapter" -> "illumina_small_rna_3_adapter".
func ColumnName(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
