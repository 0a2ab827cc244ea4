package sqlite

import (
	"context"
	"fmt"

	"github.com/connectapp/connect-server/internal/domain"
	"github.com/connectapp/connect-server/internal/store"
)

// suggestionColumns is the ordered list of columns selected in suggestion queries.
// Must match the scan order in scanSuggestion.
const suggestionColumns = `user_id, suggested_user_id, similarity_score, domain, run_id, created_at, updated_at`

// scanSuggestion scans a sql.Row (or sql.Rows via its Scan method) into a domain.Suggestion.
func scanSuggestion(scanner interface{ Scan(dest ...any) error }) (*domain.Suggestion, error) {
	var (
		sg        domain.Suggestion
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&sg.UserID,
		&sg.SuggestedUserID,
		&sg.SimilarityScore,
		&sg.Domain,
		&sg.RunID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	sg.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	sg.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &sg, nil
}

// UpsertSuggestions writes the batch in a single transaction. Each row is
// inserted, or overwritten in place when the (user, suggested user) pair
// already exists; created_at of an existing row is preserved. Any failure
// rolls back the whole batch.
func (s *Store) UpsertSuggestions(ctx context.Context, suggestions []domain.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO suggestions (user_id, suggested_user_id, similarity_score, domain, run_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, suggested_user_id) DO UPDATE SET
			similarity_score = excluded.similarity_score,
			domain = excluded.domain,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, sg := range suggestions {
		_, err := stmt.ExecContext(ctx,
			sg.UserID,
			sg.SuggestedUserID,
			sg.SimilarityScore,
			sg.Domain,
			sg.RunID,
			formatTime(sg.CreatedAt),
			formatTime(sg.UpdatedAt),
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("upsert suggestion %d->%d: %w",
					sg.UserID, sg.SuggestedUserID, store.ErrNotFound.WithCause(err))
			}
			return fmt.Errorf("upsert suggestion %d->%d: %w", sg.UserID, sg.SuggestedUserID, err)
		}
	}

	return tx.Commit()
}

// ListSuggestions returns the stored suggestions for a user, best first.
func (s *Store) ListSuggestions(ctx context.Context, userID int64) ([]*domain.Suggestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+suggestionColumns+`
		FROM suggestions
		WHERE user_id = ?
		ORDER BY similarity_score DESC, suggested_user_id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Suggestion
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
