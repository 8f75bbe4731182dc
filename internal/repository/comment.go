package repository

import (
	"database/sql"
	"fmt"

	"github.com/vtarasov/blog-service/internal/apperr"
	"github.com/vtarasov/blog-service/internal/models"
)

// AddComment appends a comment to a post
func (r *Repository) AddComment(comment *models.Comment) error {
	query := `
		INSERT INTO blog.post_comments (post_id, author_id, body, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, comment.PostID, comment.AuthorID, comment.Text).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

// FindComment retrieves a comment belonging to the given post
func (r *Repository) FindComment(postID, commentID int64) (*models.Comment, error) {
	comment := &models.Comment{}
	query := `
		SELECT c.id, c.post_id, c.author_id, u.username, c.body, c.created_at
		FROM blog.post_comments c
		JOIN blog.users u ON u.id = c.author_id
		WHERE c.id = $1 AND c.post_id = $2`
	err := r.db.QueryRow(query, commentID, postID).Scan(&comment.ID, &comment.PostID,
		&comment.AuthorID, &comment.AuthorName, &comment.Text, &comment.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("comment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes a single comment
func (r *Repository) DeleteComment(commentID int64) error {
	res, err := r.db.Exec(`DELETE FROM blog.post_comments WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("comment not found")
	}
	return nil
}

// postComments loads a post's comments in insertion order
func (r *Repository) postComments(postID int64) ([]models.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, u.username, c.body, c.created_at
		FROM blog.post_comments c
		JOIN blog.users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at, c.id`
	rows, err := r.db.Query(query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		comment := models.Comment{}
		err := rows.Scan(&comment.ID, &comment.PostID, &comment.AuthorID,
			&comment.AuthorName, &comment.Text, &comment.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	return comments, nil
}
