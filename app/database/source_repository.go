package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bckpockets/droppy-scraper/app/drops"
)

type sourceRepository struct {
	db *DB
}

func NewSourceRepository(db *DB) SourceRepository {
	return &sourceRepository{db: db}
}

// SaveSource replaces the stored drops of a source with the given records,
// keeping their order.
func (r *sourceRepository) SaveSource(ctx context.Context, id string, source drops.Source, scrapedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sources (id, name, drop_count, scraped_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			drop_count = excluded.drop_count,
			scraped_at = excluded.scraped_at,
			updated_at = excluded.updated_at
	`, id, source.Name, len(source.Drops), scrapedAt.Unix(), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM drops WHERE source_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear drops: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO drops (source_id, position, name, rate, rate_display, item_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare drop insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range source.Drops {
		if _, err := stmt.ExecContext(ctx, id, i, d.Name, d.Rate, d.RateDisplay, d.ItemID); err != nil {
			return fmt.Errorf("failed to store drop %q: %w", d.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit source: %w", err)
	}

	return nil
}

// GetSource returns nil when no source with id has been stored.
func (r *sourceRepository) GetSource(ctx context.Context, id string) (*Source, error) {
	var (
		source    Source
		scrapedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, scraped_at FROM sources WHERE id = ?
	`, id).Scan(&source.ID, &source.Name, &scrapedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	source.ScrapedAt = time.Unix(scrapedAt, 0).UTC()

	rows, err := r.db.QueryContext(ctx, `
		SELECT name, rate, rate_display, item_id
		FROM drops
		WHERE source_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get drops: %w", err)
	}
	defer rows.Close()

	source.Drops = []drops.Record{}
	for rows.Next() {
		var d drops.Record
		if err := rows.Scan(&d.Name, &d.Rate, &d.RateDisplay, &d.ItemID); err != nil {
			return nil, fmt.Errorf("failed to scan drop row: %w", err)
		}
		source.Drops = append(source.Drops, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drop rows: %w", err)
	}

	return &source, nil
}

func (r *sourceRepository) ListSources(ctx context.Context) ([]SourceSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, drop_count, scraped_at
		FROM sources
		ORDER BY name COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	sources := []SourceSummary{}
	for rows.Next() {
		var (
			s         SourceSummary
			scrapedAt int64
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.DropCount, &scrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		s.ScrapedAt = time.Unix(scrapedAt, 0).UTC()
		sources = append(sources, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

func (r *sourceRepository) GetSourceCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sources").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

func (r *sourceRepository) GetDropCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM drops").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get drop count: %w", err)
	}
	return count, nil
}

// ReplaceAliases swaps the whole alias table in one transaction.
func (r *sourceRepository) ReplaceAliases(ctx context.Context, aliases map[string][]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM aliases`); err != nil {
		return fmt.Errorf("failed to clear aliases: %w", err)
	}

	for alias, ids := range aliases {
		for i, id := range ids {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO aliases (alias, position, source_id) VALUES (?, ?, ?)
			`, alias, i, id)
			if err != nil {
				return fmt.Errorf("failed to store alias %q: %w", alias, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit aliases: %w", err)
	}

	return nil
}

// PruneSources deletes every stored source whose id is not in keep, along
// with its drops, and returns the deleted ids.
func (r *sourceRepository) PruneSources(ctx context.Context, keep []string) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list source ids: %w", err)
	}

	kept := make(map[string]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}

	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan source id: %w", err)
		}
		if !kept[id] {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating source ids: %w", err)
	}
	rows.Close()

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM drops WHERE source_id = ?`, id); err != nil {
			return nil, fmt.Errorf("failed to delete drops of %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("failed to delete source %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit prune: %w", err)
	}

	return stale, nil
}

func (r *sourceRepository) GetAliases(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT alias, source_id FROM aliases ORDER BY alias, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get aliases: %w", err)
	}
	defer rows.Close()

	aliases := map[string][]string{}
	for rows.Next() {
		var alias, id string
		if err := rows.Scan(&alias, &id); err != nil {
			return nil, fmt.Errorf("failed to scan alias row: %w", err)
		}
		aliases[alias] = append(aliases[alias], id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alias rows: %w", err)
	}

	return aliases, nil
}
