package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/inferno/inferno-bank/internal/apperrors"
	"github.com/inferno/inferno-bank/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	byUUID  map[string]*models.User
	byEmail map[string]*models.User
	updates int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byUUID:  make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (s *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	copied := *user
	s.byUUID[user.UUID] = &copied
	s.byEmail[user.Email] = &copied
	return nil
}

func (s *fakeUserStore) FindUserByUUID(_ context.Context, uuid string) (*models.User, error) {
	if user, ok := s.byUUID[uuid]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperrors.New(apperrors.NotFound, "user not found")
}

func (s *fakeUserStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperrors.New(apperrors.NotFound, "user not found")
}

func (s *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *fakeUserStore) DocumentNumberExists(_ context.Context, documentNumber string) (bool, error) {
	for _, user := range s.byUUID {
		if user.DocumentNumber == documentNumber {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) UpdateUser(_ context.Context, user *models.User) error {
	s.updates++
	copied := *user
	s.byUUID[user.UUID] = &copied
	s.byEmail[user.Email] = &copied
	return nil
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Name:     "Jane",
		LastName: "Doe",
		Email:    "jane@example.com",
		Password: "hunter22pass",
		Document: "12345678",
	}
}

func newTestUserService(store *fakeUserStore) *UserService {
	return NewUserService(store, nil, nil, "test-secret", quietLogger())
}

func TestRegisterCreatesUser(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestUserService(store)

	user, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.UUID == "" || user.CreatedAt == "" {
		t.Error("expected generated uuid and timestamps")
	}
	if user.PasswordHash == "hunter22pass" {
		t.Error("password must be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22pass")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestRegisterRejectsInvalidRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *RegisterRequest) { r.Password = "short" }},
		{"non-numeric document", func(r *RegisterRequest) { r.Document = "AB123" }},
		{"missing name", func(r *RegisterRequest) { r.Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestUserService(newFakeUserStore())
			req := validRegistration()
			tt.mutate(&req)
			_, err := svc.Register(context.Background(), req)
			if !apperrors.IsKind(err, apperrors.Validation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestUserService(store)

	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	dup := validRegistration()
	dup.Document = "87654321"
	_, err := svc.Register(context.Background(), dup)
	if !apperrors.IsKind(err, apperrors.Conflict) {
		t.Fatalf("err = %v, want conflict error", err)
	}
}

func TestRegisterRejectsDuplicateDocument(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestUserService(store)

	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	dup := validRegistration()
	dup.Email = "other@example.com"
	_, err := svc.Register(context.Background(), dup)
	if !apperrors.IsKind(err, apperrors.Conflict) {
		t.Fatalf("err = %v, want conflict error", err)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestUserService(store)

	user, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	tokenString, err := svc.Login(context.Background(), "jane@example.com", "hunter22pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token does not parse: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != user.UUID {
		t.Errorf("sub = %v, want %s", claims["sub"], user.UUID)
	}
	if claims["role"] != "USER" {
		t.Errorf("role = %v, want USER", claims["role"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestUserService(store)

	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(context.Background(), "jane@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "hunter22pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestUpdateProfileChangesOnlyProvidedFields(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestUserService(store)

	user, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateProfile(context.Background(), user.UUID, "Janet", "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Janet" {
		t.Errorf("name = %s, want Janet", updated.Name)
	}
	if updated.LastName != "Doe" {
		t.Errorf("last name = %s, want unchanged Doe", updated.LastName)
	}
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc := newTestUserService(newFakeUserStore())

	_, err := svc.UpdateProfile(context.Background(), "ghost", "X", "Y")
	if !apperrors.IsKind(err, apperrors.NotFound) {
		t.Fatalf("err = %v, want not-found error", err)
	}
}
