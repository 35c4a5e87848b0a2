package index

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/njkast/pkg/ast"
	"github.com/leapstack-labs/njkast/pkg/parser"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate())
	return store
}

func mustParse(t *testing.T, input string) *ast.Root {
	t.Helper()
	root, err := parser.ParseString(input)
	require.NoError(t, err)
	return root
}

func TestStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"scans", "templates", "imports", "import_names", "includes"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if assert.NoError(t, err, "table %s", table) {
			_ = rows.Close()
		}
	}
}

func TestStore_ScanLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	scan, err := store.BeginScan(ctx, "/site")
	require.NoError(t, err)
	assert.NotEmpty(t, scan.ID)

	got, err := store.GetScan(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, "/site", got.Root)
	assert.Nil(t, got.CompletedAt)

	require.NoError(t, store.CompleteScan(ctx, scan.ID, 12, 2))

	got, err = store.LatestScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, scan.ID, got.ID)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, 12, got.Templates)
	assert.Equal(t, 2, got.Errors)

	_, err = store.GetScan(ctx, "missing")
	assert.EqualError(t, err, "scan not found: missing")
	assert.EqualError(t, store.CompleteScan(ctx, "missing", 0, 0), "scan not found: missing")
}

func TestStore_RecordTemplate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	scan, err := store.BeginScan(ctx, "/site")
	require.NoError(t, err)

	root := mustParse(t, `{% from "forms.njk" import field as f, label with context %}
{% import "macros.njk" as m %}
{% include "partials/" + name ignore missing %}
{% include "footer.html" %}`)
	require.NoError(t, store.RecordTemplate(ctx, scan.ID, "page.njk", root))

	imports, err := store.Imports(ctx, "page.njk")
	require.NoError(t, err)
	assert.Equal(t, []Import{
		{
			Template:    "page.njk",
			Target:      "forms.njk",
			WithContext: true,
			Names: []ImportedName{
				{Name: "field", Alias: "f"},
				{Name: "label"},
			},
			Line:   1,
			Column: 1,
		},
		{
			Template: "page.njk",
			Target:   "macros.njk",
			Alias:    "m",
			Line:     2,
			Column:   1,
		},
	}, imports)

	includes, err := store.Includes(ctx, "page.njk")
	require.NoError(t, err)
	assert.Equal(t, []Include{
		{Template: "page.njk", Target: "partials/", Variable: "name", IgnoreMissing: true, Line: 3, Column: 1},
		{Template: "page.njk", Target: "footer.html", Line: 4, Column: 1},
	}, includes)
}

func TestStore_RecordTemplateReplaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	scan, err := store.BeginScan(ctx, "/site")
	require.NoError(t, err)

	require.NoError(t, store.RecordTemplate(ctx, scan.ID, "page.njk",
		mustParse(t, `{% from "a.njk" import x %}{% include "b.html" %}`)))
	require.NoError(t, store.RecordTemplate(ctx, scan.ID, "page.njk",
		mustParse(t, `{% include "c.html" %}`)))

	imports, err := store.Imports(ctx, "page.njk")
	require.NoError(t, err)
	assert.Empty(t, imports)

	includes, err := store.Includes(ctx, "page.njk")
	require.NoError(t, err)
	require.Len(t, includes, 1)
	assert.Equal(t, "c.html", includes[0].Target)

	var orphans int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM import_names").Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestStore_RecordFailure(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	scan, err := store.BeginScan(ctx, "/site")
	require.NoError(t, err)

	require.NoError(t, store.RecordTemplate(ctx, scan.ID, "page.njk", mustParse(t, `{% include "a.html" %}`)))
	require.NoError(t, store.RecordFailure(ctx, scan.ID, "page.njk", errors.New("1:4: missing template")))

	includes, err := store.Includes(ctx, "page.njk")
	require.NoError(t, err)
	assert.Empty(t, includes, "failure clears previous directives")

	failures, err := store.Failures(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"page.njk": "1:4: missing template"}, failures)

	require.NoError(t, store.RecordTemplate(ctx, scan.ID, "page.njk", mustParse(t, ``)))
	failures, err = store.Failures(ctx)
	require.NoError(t, err)
	assert.Empty(t, failures)
}

func TestStore_Dependents(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	scan, err := store.BeginScan(ctx, "/site")
	require.NoError(t, err)

	templates := map[string]string{
		"b.njk": "{# b #}\n{% include \"forms.njk\" %}",
		"a.njk": `{% import "forms.njk" as forms %}{% include "other.html" %}`,
		"c.njk": `{% from "forms.njk" import field %}`,
		"d.njk": `{% include "unrelated.njk" %}`,
	}
	for path, src := range templates {
		require.NoError(t, store.RecordTemplate(ctx, scan.ID, path, mustParse(t, src)))
	}

	deps, err := store.Dependents(ctx, "forms.njk")
	require.NoError(t, err)
	assert.Equal(t, []Dependent{
		{Template: "a.njk", Kind: "import", Line: 1, Column: 1},
		{Template: "b.njk", Kind: "include", Line: 2, Column: 1},
		{Template: "c.njk", Kind: "import", Line: 1, Column: 1},
	}, deps)

	deps, err = store.Dependents(ctx, "nothing.njk")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestStore_References(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	scan, err := store.BeginScan(ctx, "/site")
	require.NoError(t, err)

	require.NoError(t, store.RecordTemplate(ctx, scan.ID, "page.njk", mustParse(t,
		"{% include \"partials/\" + variant ignore missing %}\n{% import \"forms.njk\" as forms %}")))
	require.NoError(t, store.RecordTemplate(ctx, scan.ID, "forms.njk", mustParse(t, `{% include "label.njk" %}`)))
	require.NoError(t, store.RecordFailure(ctx, scan.ID, "broken.njk", assert.AnError))

	paths, err := store.Templates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"broken.njk", "forms.njk", "page.njk"}, paths)

	refs, err := store.References(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Reference{
		{Template: "forms.njk", Target: "label.njk", Kind: "include", Line: 1, Column: 1},
		{Template: "page.njk", Target: "partials/", Kind: "include", Dynamic: true, Optional: true, Line: 1, Column: 1},
		{Template: "page.njk", Target: "forms.njk", Kind: "import", Line: 2, Column: 1},
	}, refs)
}

func TestStore_PruneScan(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.BeginScan(ctx, "/site")
	require.NoError(t, err)
	require.NoError(t, store.RecordTemplate(ctx, first.ID, "old.njk", mustParse(t, `{% include "gone.html" %}`)))
	require.NoError(t, store.RecordTemplate(ctx, first.ID, "keep.njk", mustParse(t, `{% import "forms.njk" as forms %}`)))
	removed, err := store.PruneScan(ctx, first.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)
	require.NoError(t, store.CompleteScan(ctx, first.ID, 2, 0))

	// old.njk was deleted from disk before the second scan.
	second, err := store.BeginScan(ctx, "/site")
	require.NoError(t, err)
	require.NoError(t, store.RecordTemplate(ctx, second.ID, "keep.njk", mustParse(t, `{% import "forms.njk" as forms %}`)))
	removed, err = store.PruneScan(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	require.NoError(t, store.CompleteScan(ctx, second.ID, 1, 0))

	paths, err := store.Templates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.njk"}, paths)

	deps, err := store.Dependents(ctx, "gone.html")
	require.NoError(t, err)
	assert.Empty(t, deps)

	refs, err := store.References(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Reference{
		{Template: "keep.njk", Target: "forms.njk", Kind: "import", Line: 1, Column: 1},
	}, refs)

	var orphans int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM includes").Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestStore_NotOpened(t *testing.T) {
	ctx := context.Background()
	store := &Store{}

	tests := []struct {
		name string
		call func() error
	}{
		{"migrate", func() error { return store.Migrate() }},
		{"begin scan", func() error { _, err := store.BeginScan(ctx, "/"); return err }},
		{"complete scan", func() error { return store.CompleteScan(ctx, "id", 0, 0) }},
		{"prune scan", func() error { _, err := store.PruneScan(ctx, "id"); return err }},
		{"record template", func() error { return store.RecordTemplate(ctx, "id", "p", ast.NewRoot(nil, nil)) }},
		{"record failure", func() error { return store.RecordFailure(ctx, "id", "p", assert.AnError) }},
		{"imports", func() error { _, err := store.Imports(ctx, "p"); return err }},
		{"includes", func() error { _, err := store.Includes(ctx, "p"); return err }},
		{"dependents", func() error { _, err := store.Dependents(ctx, "p"); return err }},
		{"templates", func() error { _, err := store.Templates(ctx); return err }},
		{"references", func() error { _, err := store.References(ctx); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.call(), "database not opened")
		})
	}
}

func TestStore_RecordTemplateErrors(t *testing.T) {
	root := ast.NewRoot([]ast.Node{
		ast.NewInclude(false, ast.NewIncludeValue("a.html", nil), nil),
	}, nil)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		errMsg    string
	}{
		{
			name: "begin fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(assert.AnError)
			},
			errMsg: "failed to begin transaction",
		},
		{
			name: "template upsert fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO templates").WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			errMsg: "failed to record template page.njk",
		},
		{
			name: "include insert fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO templates").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("DELETE FROM import_names").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("DELETE FROM imports").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("DELETE FROM includes").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO includes").WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			errMsg: "failed to record include in page.njk",
		},
		{
			name: "commit fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO templates").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("DELETE FROM import_names").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("DELETE FROM imports").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("DELETE FROM includes").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO includes").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit().WillReturnError(assert.AnError)
			},
			errMsg: "failed to commit template page.njk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.setupMock(mock)
			store := NewWithDB(db)

			err = store.RecordTemplate(context.Background(), "scan", "page.njk", root)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.ErrorIs(t, err, assert.AnError)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_QueryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM imports").WillReturnError(assert.AnError)
	mock.ExpectQuery("FROM includes").WillReturnError(assert.AnError)
	mock.ExpectQuery("UNION ALL").WillReturnError(assert.AnError)
	mock.ExpectExec("DELETE FROM templates").WillReturnError(assert.AnError)

	store := NewWithDB(db)
	ctx := context.Background()

	_, err = store.Imports(ctx, "page.njk")
	assert.ErrorIs(t, err, assert.AnError)
	_, err = store.Includes(ctx, "page.njk")
	assert.ErrorIs(t, err, assert.AnError)
	_, err = store.Dependents(ctx, "page.njk")
	assert.ErrorIs(t, err, assert.AnError)
	_, err = store.PruneScan(ctx, "scan")
	assert.ErrorContains(t, err, "failed to prune templates")

	assert.NoError(t, mock.ExpectationsWereMet())
}
