package heritage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by mutating operations targeting a missing item.
var ErrNotFound = errors.New("heritage item not found")

// NewItem inserts a freshly uploaded heritage item in pending status.
func (s *Store) NewItem(ctx context.Context, draft Draft) (*Item, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, errors.New("item title required")
	}
	if _, ok := ParseItemType(string(draft.Type)); !ok {
		return nil, fmt.Errorf("unknown item type %q", draft.Type)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	tagsJSON, err := encodeTags(draft.Tags)
	if err != nil {
		return nil, err
	}

	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO heritage_items (
            id, type, title, description, region, language, tags_json,
            audio_url, text_content, processing_status, views_count,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		id,
		string(draft.Type),
		strings.TrimSpace(draft.Title),
		nullableString(draft.Description),
		nullableString(draft.Region),
		nullableString(draft.Language),
		nullableString(tagsJSON),
		nullableString(draft.AudioURL),
		nullableString(draft.TextContent),
		StatusPending,
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a heritage item by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM heritage_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing heritage item and refreshes its
// updated_at timestamp.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()

	tagsJSON, err := encodeTags(item.Tags)
	if err != nil {
		return err
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE heritage_items
         SET type = ?, title = ?, description = ?, region = ?, language = ?,
             tags_json = ?, audio_url = ?, text_content = ?, transcription = ?,
             ai_analysis_json = ?, processing_status = ?, error_message = ?,
             views_count = ?, updated_at = ?
         WHERE id = ?`,
		string(item.Type),
		item.Title,
		nullableString(item.Description),
		nullableString(item.Region),
		nullableString(item.Language),
		nullableString(tagsJSON),
		nullableString(item.AudioURL),
		nullableString(item.TextContent),
		nullableString(item.Transcription),
		nullableString(item.AIAnalysisJSON),
		item.ProcessingStatus,
		nullableString(item.ErrorMessage),
		item.ViewsCount,
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus writes only the processing status (and optional error
// message) of an item, touching updated_at. Used by the pipeline for the
// observable pending→processing and →failed transitions.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status, errorMessage string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE heritage_items SET processing_status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status,
		nullableString(errorMessage),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns items filtered by status set (or all items when no status is
// provided), newest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM heritage_items`
	orderClause := ` ORDER BY created_at DESC`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE processing_status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NextForStatuses returns the oldest item matching any of the provided statuses.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}

	query := `SELECT ` + itemColumns + ` FROM heritage_items WHERE processing_status IN (` + placeholders + `) ORDER BY created_at LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// IncrementViews bumps the view counter. View tracking happens outside the
// processing pipeline and never decreases.
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE heritage_items SET views_count = views_count + 1 WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RetryFailed moves failed items back to pending for reprocessing. With no
// ids, all failed items are retried.
func (s *Store) RetryFailed(ctx context.Context, ids ...string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE heritage_items SET processing_status = ?, error_message = NULL, updated_at = ? WHERE processing_status = ?`,
			StatusPending,
			now,
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed items: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+3)
	args = append(args, StatusPending, now, StatusFailed)
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE heritage_items SET processing_status = ?, error_message = NULL, updated_at = ?
        WHERE processing_status = ? AND id IN (` + placeholders + `)`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected items: %w", err)
	}
	return res.RowsAffected()
}

// Remove deletes an item by identifier.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM heritage_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes all items from the catalog.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM heritage_items`)
	if err != nil {
		return 0, fmt.Errorf("clear catalog: %w", err)
	}
	return res.RowsAffected()
}

// Health returns aggregated item counts per lifecycle state.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	var summary HealthSummary
	rows, err := s.db.QueryContext(ctx, `SELECT processing_status, COUNT(1) FROM heritage_items GROUP BY processing_status`)
	if err != nil {
		return summary, fmt.Errorf("query health: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return summary, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch Status(status) {
		case StatusPending:
			summary.Pending = count
		case StatusProcessing:
			summary.Processing = count
		case StatusCompleted:
			summary.Completed = count
		case StatusFailed:
			summary.Failed = count
		}
	}
	return summary, rows.Err()
}
