package service

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/inferno/inferno-bank/internal/apperrors"
	"github.com/inferno/inferno-bank/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login when the email is unknown
// or the password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore persists user records
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUUID(ctx context.Context, uuid string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	DocumentNumberExists(ctx context.Context, documentNumber string) (bool, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// AvatarStore uploads avatar images and returns a presigned URL for
// reading them back.
type AvatarStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// WelcomeNotifier sends the registration welcome email
type WelcomeNotifier interface {
	SendWelcome(to, name string) error
}

// RegisterRequest carries a registration payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	LastName string `json:"lastName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Document string `json:"document" validate:"required,numeric"`
}

// UserService handles registration, authentication and profiles
type UserService struct {
	store     UserStore
	avatars   AvatarStore
	notifier  WelcomeNotifier
	validate  *validator.Validate
	jwtSecret string
	log       *logrus.Logger
}

// NewUserService initializes a new user service. avatars and notifier
// are optional; the corresponding operations fail or no-op when absent.
func NewUserService(store UserStore, avatars AvatarStore, notifier WelcomeNotifier, jwtSecret string, log *logrus.Logger) *UserService {
	return &UserService{
		store:     store,
		avatars:   avatars,
		notifier:  notifier,
		validate:  validator.New(),
		jwtSecret: jwtSecret,
		log:       log,
	}
}

// Register creates a new user with a hashed password. Email and
// document number must be unique.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.Validation, "invalid registration request", err)
	}

	emailTaken, err := s.store.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		return nil, apperrors.New(apperrors.Conflict, "email already exists")
	}

	docTaken, err := s.store.DocumentNumberExists(ctx, req.Document)
	if err != nil {
		return nil, err
	}
	if docTaken {
		return nil, apperrors.New(apperrors.Conflict, "document number already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to hash password", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	user := &models.User{
		UUID:           uuid.NewString(),
		Name:           req.Name,
		LastName:       req.LastName,
		Email:          req.Email,
		PasswordHash:   string(hashed),
		DocumentNumber: req.Document,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.SendWelcome(user.Email, user.Name); err != nil {
			s.log.Errorf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	s.log.Infof("User registered: %s", user.UUID)
	return user, nil
}

// Login authenticates a user and returns a signed JWT valid for one hour
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if apperrors.IsKind(err, apperrors.NotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.UUID,
		"email": user.Email,
		"role":  "USER",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", apperrors.Wrap(apperrors.Dependency, "failed to sign token", err)
	}

	s.log.Infof("User logged in: %s", user.UUID)
	return signed, nil
}

// GetProfile retrieves a user profile by identifier
func (s *UserService) GetProfile(ctx context.Context, userUUID string) (*models.User, error) {
	return s.store.FindUserByUUID(ctx, userUUID)
}

// UpdateProfile updates the allowed profile fields (name and last name)
func (s *UserService) UpdateProfile(ctx context.Context, userUUID, name, lastName string) (*models.User, error) {
	user, err := s.store.FindUserByUUID(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if lastName != "" {
		user.LastName = lastName
	}
	user.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User updated: %s", user.UUID)
	return user, nil
}

// UploadAvatar stores a base64-encoded PNG for the user and writes the
// presigned URL back onto the profile.
func (s *UserService) UploadAvatar(ctx context.Context, userUUID, imageBase64 string) (string, error) {
	if s.avatars == nil {
		return "", apperrors.New(apperrors.Dependency, "avatar storage is not configured")
	}

	user, err := s.store.FindUserByUUID(ctx, userUUID)
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return "", apperrors.Wrap(apperrors.Validation, "invalid image encoding", err)
	}

	key := user.UUID + "/" + user.Name + ".png"
	url, err := s.avatars.Upload(ctx, key, data, "image/png")
	if err != nil {
		return "", apperrors.Wrap(apperrors.Dependency, "failed to store avatar", err)
	}

	user.ImageURL = url
	user.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return "", err
	}

	s.log.Infof("Avatar uploaded for user %s", user.UUID)
	return url, nil
}
