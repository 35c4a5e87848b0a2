package index

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leapstack-labs/njkast/pkg/ast"
)

// RecordTemplate replaces the indexed directives of path with those in
// root. It runs in a single transaction.
func (s *Store) RecordTemplate(ctx context.Context, scanID, path string, root *ast.Root) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertTemplate(ctx, tx, scanID, path, ""); err != nil {
		return err
	}

	for _, child := range root.Children {
		switch n := child.(type) {
		case *ast.ImportNode:
			if err := insertImport(ctx, tx, path, n); err != nil {
				return err
			}
		case *ast.IncludeTemplateNode:
			if err := insertInclude(ctx, tx, path, n); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit template %s: %w", path, err)
	}
	return nil
}

// RecordFailure records that path failed to parse and clears its
// directives.
func (s *Store) RecordFailure(ctx context.Context, scanID, path string, parseErr error) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertTemplate(ctx, tx, scanID, path, parseErr.Error()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit template %s: %w", path, err)
	}
	return nil
}

// upsertTemplate inserts or refreshes the template row and deletes its
// previous directives.
func upsertTemplate(ctx context.Context, tx *sql.Tx, scanID, path, parseErr string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO templates (path, scan_id, parse_error, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			scan_id = excluded.scan_id,
			parse_error = excluded.parse_error,
			updated_at = excluded.updated_at
	`, path, scanID, nullString(parseErr), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record template %s: %w", path, err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM import_names WHERE import_id IN (SELECT id FROM imports WHERE template_path = ?)`, path)
	if err != nil {
		return fmt.Errorf("failed to clear import names for %s: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM imports WHERE template_path = ?`, path); err != nil {
		return fmt.Errorf("failed to clear imports for %s: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM includes WHERE template_path = ?`, path); err != nil {
		return fmt.Errorf("failed to clear includes for %s: %w", path, err)
	}
	return nil
}

func insertImport(ctx context.Context, tx *sql.Tx, path string, n *ast.ImportNode) error {
	var alias string
	if target := n.Target(); target != nil {
		alias = target.Value
	}
	line, col := startOf(n)

	res, err := tx.ExecContext(ctx,
		`INSERT INTO imports (template_path, target, alias, with_context, line, col) VALUES (?, ?, ?, ?, ?, ?)`,
		path, n.Template.Value, nullString(alias), boolToInt(n.WithContext), line, col,
	)
	if err != nil {
		return fmt.Errorf("failed to record import in %s: %w", path, err)
	}

	names := n.Names()
	if names == nil {
		return nil
	}
	importID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get import id: %w", err)
	}

	for i, name := range names.Children {
		var alias string
		if isAlias(name) {
			alias = name.Local()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO import_names (import_id, ordinal, name, alias) VALUES (?, ?, ?, ?)`,
			importID, i, name.Imported(), nullString(alias),
		)
		if err != nil {
			return fmt.Errorf("failed to record imported name %s: %w", name.Imported(), err)
		}
	}
	return nil
}

func insertInclude(ctx context.Context, tx *sql.Tx, path string, n *ast.IncludeTemplateNode) error {
	var variable string
	if expr := n.Expression(); expr != nil {
		variable = expr.Left.Value
	}
	line, col := startOf(n)

	_, err := tx.ExecContext(ctx,
		`INSERT INTO includes (template_path, target, variable, ignore_missing, line, col) VALUES (?, ?, ?, ?, ?, ?)`,
		path, n.Value.Literal(), nullString(variable), boolToInt(n.IgnoreMissing), line, col,
	)
	if err != nil {
		return fmt.Errorf("failed to record include in %s: %w", path, err)
	}
	return nil
}

func isAlias(name ast.ImportName) bool {
	_, ok := name.(*ast.ImportNameAliasNode)
	return ok
}

func startOf(n ast.Node) (line, col int) {
	if p := n.Pos(); p != nil {
		return p.Start.Line, p.Start.Column
	}
	return 0, 0
}
