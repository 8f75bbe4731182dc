package repository

import "fmt"

// AddLike records that the user likes the post. Returns false when the like
// was already present. The insert is atomic, so two racing likes from the
// same user cannot double-count.
func (r *Repository) AddLike(postID, userID int64) (bool, error) {
	query := `
		INSERT INTO blog.post_likes (post_id, user_id, created_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (post_id, user_id) DO NOTHING`
	res, err := r.db.Exec(query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to add like: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to add like: %w", err)
	}
	return n > 0, nil
}

// RemoveLike removes the user's like. Returns false when no like was present.
func (r *Repository) RemoveLike(postID, userID int64) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM blog.post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	return n > 0, nil
}

// CountLikes returns the number of likes on a post
func (r *Repository) CountLikes(postID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM blog.post_likes WHERE post_id = $1`, postID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}
