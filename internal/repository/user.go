package repository

import (
	"database/sql"
	"fmt"

	"github.com/vtarasov/blog-service/internal/apperr"
	"github.com/vtarasov/blog-service/internal/models"
)

const userColumns = "id, username, email, COALESCE(password_hash, ''), COALESCE(google_id, ''), bio, is_admin, created_at, updated_at"

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.GoogleID, &user.Bio, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO blog.users (username, email, password_hash, google_id, bio, is_admin, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash, user.GoogleID, user.Bio, user.IsAdmin).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if constraint, ok := uniqueViolation(err); ok {
		if constraint == "users_username_key" {
			return apperr.Conflictf("username is already taken")
		}
		return apperr.Conflictf("user with this email already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM blog.users WHERE email = $1`, userColumns)
	return scanUser(r.db.QueryRow(query, email))
}

// FindUserByID retrieves a user by ID
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM blog.users WHERE id = $1`, userColumns)
	return scanUser(r.db.QueryRow(query, id))
}

// FindUserByGoogleID retrieves an externally-authenticated user
func (r *Repository) FindUserByGoogleID(googleID string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM blog.users WHERE google_id = $1`, userColumns)
	return scanUser(r.db.QueryRow(query, googleID))
}

// UpdateUserProfile updates username and bio for a user
func (r *Repository) UpdateUserProfile(user *models.User) error {
	query := `
		UPDATE blog.users
		SET username = $1, bio = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING updated_at`
	err := r.db.QueryRow(query, user.Username, user.Bio, user.ID).Scan(&user.UpdatedAt)
	if _, ok := uniqueViolation(err); ok {
		return apperr.Conflictf("username is already taken")
	}
	if err == sql.ErrNoRows {
		return apperr.NotFoundf("user not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SetAdminByEmail promotes the user with the given email to admin
func (r *Repository) SetAdminByEmail(email string) (*models.User, error) {
	query := fmt.Sprintf(`
		UPDATE blog.users
		SET is_admin = true, updated_at = CURRENT_TIMESTAMP
		WHERE email = $1
		RETURNING %s`, userColumns)
	return scanUser(r.db.QueryRow(query, email))
}

// ListUsers retrieves all users, newest first
func (r *Repository) ListUsers() ([]*models.User, error) {
	return r.listUsers(0)
}

// RecentUsers retrieves the newest registered users
func (r *Repository) RecentUsers(limit int) ([]*models.User, error) {
	return r.listUsers(limit)
}

func (r *Repository) listUsers(limit int) ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM blog.users ORDER BY created_at DESC, id DESC`, userColumns)
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&user.GoogleID, &user.Bio, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// DeleteUser removes a user; their posts, likes and comments cascade
func (r *Repository) DeleteUser(id int64) error {
	res, err := r.db.Exec(`DELETE FROM blog.users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("user not found")
	}
	return nil
}
