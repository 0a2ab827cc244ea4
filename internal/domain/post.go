package domain

import "time"

// Post is a piece of user content. Tags are free text chosen by the author.
type Post struct {
	ID        int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"` // nil when the post was created without tags
	CreatedAt time.Time `json:"created_at"`
}
