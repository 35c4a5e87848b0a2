package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BeginScan records the start of an indexing run over root.
func (s *Store) BeginScan(ctx context.Context, root string) (*Scan, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	scan := &Scan{
		ID:        generateID(),
		Root:      root,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (id, root, started_at) VALUES (?, ?, ?)`,
		scan.ID, scan.Root, scan.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to begin scan: %w", err)
	}
	return scan, nil
}

// CompleteScan marks a scan as finished with its template and error counts.
func (s *Store) CompleteScan(ctx context.Context, id string, templates, errs int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE scans SET completed_at = ?, template_count = ?, error_count = ? WHERE id = ?`,
		time.Now().UTC(), templates, errs, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete scan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("scan not found: %s", id)
	}
	return nil
}

// PruneScan deletes every template not recorded by scan id, with its
// imports and includes, and returns how many were removed. Call it after the
// scan has recorded all templates it found.
func (s *Store) PruneScan(ctx context.Context, id string) (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE scan_id <> ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to prune templates: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune templates: %w", err)
	}
	return n, nil
}

// GetScan retrieves a scan by ID.
func (s *Store) GetScan(ctx context.Context, id string) (*Scan, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.scanRow(s.db.QueryRowContext(ctx,
		`SELECT id, root, started_at, completed_at, template_count, error_count
		 FROM scans WHERE id = ?`, id,
	), id)
}

// LatestScan returns the most recently started scan.
func (s *Store) LatestScan(ctx context.Context) (*Scan, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.scanRow(s.db.QueryRowContext(ctx,
		`SELECT id, root, started_at, completed_at, template_count, error_count
		 FROM scans ORDER BY started_at DESC LIMIT 1`,
	), "latest")
}

func (s *Store) scanRow(row *sql.Row, id string) (*Scan, error) {
	scan := &Scan{}
	var completedAt sql.NullTime

	err := row.Scan(&scan.ID, &scan.Root, &scan.StartedAt, &completedAt, &scan.Templates, &scan.Errors)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	if completedAt.Valid {
		scan.CompletedAt = &completedAt.Time
	}
	return scan, nil
}
