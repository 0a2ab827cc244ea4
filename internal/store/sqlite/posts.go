package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/connectapp/connect-server/internal/domain"
	"github.com/connectapp/connect-server/internal/store"
)

// postColumns is the ordered list of columns selected in post queries.
// Must match the scan order in scanPost.
const postColumns = `id, user_id, content, tags, created_at`

// scanPost scans a sql.Row (or sql.Rows via its Scan method) into a domain.Post.
func scanPost(scanner interface{ Scan(dest ...any) error }) (*domain.Post, error) {
	var (
		p         domain.Post
		tags      sql.NullString
		createdAt string
	)

	err := scanner.Scan(
		&p.ID,
		&p.UserID,
		&p.Content,
		&tags,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	p.Tags, err = decodeTags(tags)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreatePost inserts a post and sets post.ID.
// Returns store.ErrNotFound if the author does not exist.
func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	tags, err := encodeTags(post.Tags)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, user_id, content, tags, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		nullInt64(post.ID),
		post.UserID,
		post.Content,
		tags,
		formatTime(post.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound.WithCause(err)
		}
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("insert post: %w", err)
	}

	if post.ID == 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read post id: %w", err)
		}
		post.ID = id
	}
	return nil
}

// ListPostsByUser returns a user's posts ordered by id.
func (s *Store) ListPostsByUser(ctx context.Context, userID int64) ([]*domain.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}
