package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"watchlist-gateway/internal/models"
)

// WatchListRepository executes watch list SQL against an authenticated pool.
// Values are always bound through placeholders, never interpolated.
type WatchListRepository struct {
	db *sql.DB
}

// NewWatchListRepository creates a new WatchListRepository.
func NewWatchListRepository(db *sql.DB) *WatchListRepository {
	return &WatchListRepository{db: db}
}

// ListItems returns up to limit rows ordered by id ascending. A malformed
// row is logged and skipped; it never fails the whole call. Unrecognized
// media type tags are normalized to movie with a logged warning.
func (r *WatchListRepository) ListItems(ctx context.Context, limit int) ([]models.WatchListItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, media_type, name, rating, would_watch_again
		FROM watch_list
		ORDER BY id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list query failed: %w", err)
	}
	defer rows.Close()

	items := make([]models.WatchListItem, 0)
	for rows.Next() {
		var (
			id        int
			mediaType string
			item      models.WatchListItem
		)
		if err := rows.Scan(&id, &mediaType, &item.Name, &item.Rating, &item.WouldWatchAgain); err != nil {
			slog.Error("failed to scan watch list row", "error", err)
			continue
		}

		mt, ok := models.NormalizeMediaType(mediaType)
		if !ok {
			slog.Warn("unknown media type in storage, treating as movie", "id", id, "media_type", mediaType)
		}
		item.ID = &id
		item.MediaType = mt
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rows failed: %w", err)
	}

	return items, nil
}

// ItemExists reports whether an item with the same case-insensitive trimmed
// name and media type is already stored. Uniqueness is enforced here, at the
// application layer; the table carries no constraint for it.
func (r *WatchListRepository) ItemExists(ctx context.Context, name string, mediaType models.MediaType) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM watch_list
			WHERE LOWER(TRIM(name)) = LOWER(TRIM($1))
			AND media_type = $2
		)
	`, name, string(mediaType)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("duplicate check failed: %w", err)
	}
	return exists, nil
}

// InsertItem stores a new item and returns the number of rows affected.
func (r *WatchListRepository) InsertItem(ctx context.Context, item models.WatchListItem) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO watch_list (media_type, name, rating, would_watch_again)
		VALUES ($1, $2, $3, $4)
	`, string(item.MediaType), item.Name, item.Rating, item.WouldWatchAgain)
	if err != nil {
		return 0, fmt.Errorf("insert failed: %w", err)
	}
	return res.RowsAffected()
}

// DeleteItems removes the rows matching ids in a single statement. Rows that
// do not exist simply do not count towards the result.
func (r *WatchListRepository) DeleteItems(ctx context.Context, ids []int) (int64, error) {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := r.db.ExecContext(ctx, deleteQuery(len(ids)), args...)
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying pool.
func (r *WatchListRepository) Close() error {
	return r.db.Close()
}

// deleteQuery builds a multi-id delete with one placeholder per id.
func deleteQuery(n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("DELETE FROM watch_list WHERE id IN (%s)", strings.Join(placeholders, ", "))
}
