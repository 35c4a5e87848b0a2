package index

import (
	"context"
	"database/sql"
	"fmt"
)

// Imports returns the import directives of a template in source order.
func (s *Store) Imports(ctx context.Context, path string) ([]Import, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, template_path, target, alias, with_context, line, col
		FROM imports
		WHERE template_path = ?
		ORDER BY line, col
	`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		imports []Import
		ids     []int64
	)
	for rows.Next() {
		var (
			imp         Import
			id          int64
			alias       sql.NullString
			withContext int
		)
		if err := rows.Scan(&id, &imp.Template, &imp.Target, &alias, &withContext, &imp.Line, &imp.Column); err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		imp.Alias = alias.String
		imp.WithContext = withContext == 1
		imports = append(imports, imp)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating imports: %w", err)
	}

	for i, id := range ids {
		names, err := s.importedNames(ctx, id)
		if err != nil {
			return nil, err
		}
		imports[i].Names = names
	}
	return imports, nil
}

func (s *Store) importedNames(ctx context.Context, importID int64) ([]ImportedName, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, alias FROM import_names WHERE import_id = ? ORDER BY ordinal`, importID)
	if err != nil {
		return nil, fmt.Errorf("failed to query imported names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []ImportedName
	for rows.Next() {
		var (
			name  ImportedName
			alias sql.NullString
		)
		if err := rows.Scan(&name.Name, &alias); err != nil {
			return nil, fmt.Errorf("failed to scan imported name: %w", err)
		}
		name.Alias = alias.String
		names = append(names, name)
	}
	return names, rows.Err()
}

// Includes returns the include directives of a template in source order.
func (s *Store) Includes(ctx context.Context, path string) ([]Include, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT template_path, target, variable, ignore_missing, line, col
		FROM includes
		WHERE template_path = ?
		ORDER BY line, col
	`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query includes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var includes []Include
	for rows.Next() {
		var (
			inc           Include
			variable      sql.NullString
			ignoreMissing int
		)
		if err := rows.Scan(&inc.Template, &inc.Target, &variable, &ignoreMissing, &inc.Line, &inc.Column); err != nil {
			return nil, fmt.Errorf("failed to scan include: %w", err)
		}
		inc.Variable = variable.String
		inc.IgnoreMissing = ignoreMissing == 1
		includes = append(includes, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating includes: %w", err)
	}
	return includes, nil
}

// Dependents returns every template that imports or includes target,
// ordered by template path then position.
func (s *Store) Dependents(ctx context.Context, target string) ([]Dependent, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT template_path, 'import' AS kind, line, col FROM imports WHERE target = ?
		UNION ALL
		SELECT template_path, 'include' AS kind, line, col FROM includes WHERE target = ?
		ORDER BY 1, 3, 4
	`, target, target)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var deps []Dependent
	for rows.Next() {
		var d Dependent
		if err := rows.Scan(&d.Template, &d.Kind, &d.Line, &d.Column); err != nil {
			return nil, fmt.Errorf("failed to scan dependent: %w", err)
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dependents: %w", err)
	}
	return deps, nil
}

// Failures returns the templates whose last parse failed, keyed by path.
func (s *Store) Failures(ctx context.Context) (map[string]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, parse_error FROM templates WHERE parse_error IS NOT NULL ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	failures := make(map[string]string)
	for rows.Next() {
		var path, msg string
		if err := rows.Scan(&path, &msg); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		failures[path] = msg
	}
	return failures, rows.Err()
}

// Templates returns the paths of every recorded template, sorted.
func (s *Store) Templates(ctx context.Context) ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT path FROM templates ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// References returns every import and include edge in the index, ordered
// by template path then position.
func (s *Store) References(ctx context.Context) ([]Reference, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT template_path, target, 'import' AS kind, 0 AS dynamic, 0 AS optional, line, col FROM imports
		UNION ALL
		SELECT template_path, target, 'include' AS kind, variable IS NOT NULL, ignore_missing, line, col FROM includes
		ORDER BY 1, 6, 7
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query references: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var refs []Reference
	for rows.Next() {
		var (
			ref               Reference
			dynamic, optional int
		)
		if err := rows.Scan(&ref.Template, &ref.Target, &ref.Kind, &dynamic, &optional, &ref.Line, &ref.Column); err != nil {
			return nil, fmt.Errorf("failed to scan reference: %w", err)
		}
		ref.Dynamic = dynamic == 1
		ref.Optional = optional == 1
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating references: %w", err)
	}
	return refs, nil
}
