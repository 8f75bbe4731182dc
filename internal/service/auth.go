package service

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/vtarasov/blog-service/internal/apperr"
	"github.com/vtarasov/blog-service/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult is the outcome of a successful registration or login
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new user with hashed password and issues a token
func (s *Service) Register(username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, apperr.Validationf("all fields are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validationf("invalid email address")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	// Uniqueness is enforced by the store, so two racing registrations
	// with the same email cannot both succeed.
	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	tokenString, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	s.sendWelcome(user)
	user.PasswordHash = ""
	return &AuthResult{Token: tokenString, User: user}, nil
}

// Login authenticates a user and returns a signed token. Unknown email and
// wrong password are deliberately indistinguishable.
func (s *Service) Login(email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, apperr.Validationf("invalid credentials")
	}
	if user.PasswordHash == "" {
		// External account with no password set
		return nil, apperr.Validationf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Validationf("invalid credentials")
	}

	tokenString, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Infof("User logged in: %s", user.Email)
	user.PasswordHash = ""
	return &AuthResult{Token: tokenString, User: user}, nil
}

// LoginExternal finds or creates a user for an external identity and
// issues a token. Externally-created accounts have no password.
func (s *Service) LoginExternal(googleID, email, name string) (*AuthResult, error) {
	if googleID == "" || email == "" {
		return nil, apperr.Validationf("incomplete identity from provider")
	}
	email = strings.ToLower(email)

	user, err := s.store.FindUserByGoogleID(googleID)
	if apperr.KindOf(err) == apperr.NotFound {
		user, err = s.createExternalUser(googleID, email, name)
	}
	if err != nil {
		return nil, err
	}

	tokenString, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Infof("External login: %s", user.Email)
	user.PasswordHash = ""
	return &AuthResult{Token: tokenString, User: user}, nil
}

func (s *Service) createExternalUser(googleID, email, name string) (*models.User, error) {
	username := strings.TrimSpace(name)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	user := &models.User{Username: username, Email: email, GoogleID: googleID}
	err := s.store.CreateUser(user)
	if apperr.KindOf(err) == apperr.Conflict {
		// Username collision with an existing account
		user.Username = fmt.Sprintf("%s-%s", username, uuid.NewString()[:8])
		err = s.store.CreateUser(user)
	}
	if err != nil {
		return nil, err
	}

	s.log.Infof("User registered via external provider: %s", user.Email)
	s.sendWelcome(user)
	return user, nil
}

// UpdateProfile updates the user's username and bio
func (s *Service) UpdateProfile(user *models.User, username, bio string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username != "" {
		user.Username = username
	}
	user.Bio = bio

	if err := s.store.UpdateUserProfile(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns a public user profile by ID
func (s *Service) GetUser(id int64) (*models.User, error) {
	return s.store.FindUserByID(id)
}

func (s *Service) sendWelcome(user *models.User) {
	if s.mailer == nil {
		return
	}
	go func() {
		if err := s.mailer.SendWelcome(user.Email, user.Username); err != nil {
			s.log.Errorf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}()
}
