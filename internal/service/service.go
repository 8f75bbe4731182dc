package service

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vtarasov/blog-service/internal/models"
	"github.com/vtarasov/blog-service/internal/token"
)

// Store is the persistence surface the service depends on
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id int64) (*models.User, error)
	FindUserByGoogleID(googleID string) (*models.User, error)
	UpdateUserProfile(user *models.User) error
	SetAdminByEmail(email string) (*models.User, error)
	ListUsers() ([]*models.User, error)
	RecentUsers(limit int) ([]*models.User, error)
	DeleteUser(id int64) error

	CreatePost(post *models.Post) error
	FindPostByID(id int64) (*models.Post, error)
	ListPosts(filter models.PostFilter) ([]*models.Post, error)
	RecentPosts(limit int) ([]*models.Post, error)
	UpdatePost(post *models.Post) error
	DeletePost(id int64) error
	PublishDue(now time.Time) (int64, error)

	AddLike(postID, userID int64) (bool, error)
	RemoveLike(postID, userID int64) (bool, error)
	CountLikes(postID int64) (int64, error)

	AddComment(comment *models.Comment) error
	FindComment(postID, commentID int64) (*models.Comment, error)
	DeleteComment(commentID int64) error

	Stats() (*models.Stats, error)
}

// Mailer sends user-facing notification emails
type Mailer interface {
	SendWelcome(to, username string) error
	SendCommentNotification(to, username, postTitle, commenter, text string) error
}

// Service handles business logic
type Service struct {
	store  Store
	log    *logrus.Logger
	tokens *token.Manager
	mailer Mailer // nil when SMTP is not configured
}

// NewService initializes a new service
func NewService(store Store, log *logrus.Logger, tokens *token.Manager, mailer Mailer) *Service {
	return &Service{store: store, log: log, tokens: tokens, mailer: mailer}
}
