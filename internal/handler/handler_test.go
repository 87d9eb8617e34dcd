package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/inferno/inferno-bank/internal/apperrors"
	"github.com/inferno/inferno-bank/internal/models"
	"github.com/inferno/inferno-bank/internal/service"
	"github.com/sirupsen/logrus"
)

type stubCards struct {
	count int
	err   error
	users []string
}

func (s *stubCards) ActivateAllPendingCards(_ context.Context, userID string) (int, error) {
	s.users = append(s.users, userID)
	return s.count, s.err
}

type stubUsers struct {
	user     *models.User
	err      error
	token    string
	loginErr error
}

func (s *stubUsers) Register(_ context.Context, _ service.RegisterRequest) (*models.User, error) {
	return s.user, s.err
}

func (s *stubUsers) Login(_ context.Context, _, _ string) (string, error) {
	return s.token, s.loginErr
}

func (s *stubUsers) GetProfile(_ context.Context, _ string) (*models.User, error) {
	return s.user, s.err
}

func (s *stubUsers) UpdateProfile(_ context.Context, _, _, _ string) (*models.User, error) {
	return s.user, s.err
}

func (s *stubUsers) UploadAvatar(_ context.Context, _, _ string) (string, error) {
	return "", s.err
}

type stubPublisher struct {
	topics   []string
	payloads []any
	err      error
}

func (p *stubPublisher) PublishJSON(_ context.Context, topic, _ string, value any) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, value)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestHandler(cards *stubCards, users *stubUsers, pub *stubPublisher) *Handler {
	return NewHandler(cards, users, pub, "cards.requests", nil, quietLogger())
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestActivateCardsSuccess(t *testing.T) {
	cards := &stubCards{count: 2}
	h := newTestHandler(cards, &stubUsers{}, &stubPublisher{})

	rr := postJSON(t, h.ActivateCards, `{"userId": "u1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "2") {
		t.Errorf("body %q should carry the activated count", rr.Body.String())
	}
	if len(cards.users) != 1 || cards.users[0] != "u1" {
		t.Errorf("workflow called with %v, want [u1]", cards.users)
	}
}

func TestActivateCardsNothingToActivate(t *testing.T) {
	h := newTestHandler(&stubCards{count: 0}, &stubUsers{}, &stubPublisher{})

	rr := postJSON(t, h.ActivateCards, `{"userId": "u1"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for zero pending cards", rr.Code)
	}
}

func TestActivateCardsMissingUserID(t *testing.T) {
	cards := &stubCards{}
	h := newTestHandler(cards, &stubUsers{}, &stubPublisher{})

	rr := postJSON(t, h.ActivateCards, `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if len(cards.users) != 0 {
		t.Error("workflow must not be reached without a userId")
	}
}

func TestActivateCardsDependencyFailure(t *testing.T) {
	cards := &stubCards{err: apperrors.New(apperrors.Dependency, "store down")}
	h := newTestHandler(cards, &stubUsers{}, &stubPublisher{})

	rr := postJSON(t, h.ActivateCards, `{"userId": "u1"}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 for a dependency failure", rr.Code)
	}
}

func TestCreateCardRejectsInvalidType(t *testing.T) {
	pub := &stubPublisher{}
	h := newTestHandler(&stubCards{}, &stubUsers{}, pub)

	rr := postJSON(t, h.CreateCard, `{"userId": "u1", "request": "PLATINUM"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if len(pub.topics) != 0 {
		t.Error("invalid type must never reach the queue")
	}
}

func TestCreateCardEnqueuesNormalizedRequest(t *testing.T) {
	pub := &stubPublisher{}
	h := newTestHandler(&stubCards{}, &stubUsers{}, pub)

	rr := postJSON(t, h.CreateCard, `{"userId": "u1", "request": "debit"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if len(pub.topics) != 1 || pub.topics[0] != "cards.requests" {
		t.Fatalf("published to %v, want [cards.requests]", pub.topics)
	}
	payload, _ := json.Marshal(pub.payloads[0])
	if !strings.Contains(string(payload), "DEBIT") {
		t.Errorf("payload %s should carry the normalized type", payload)
	}
}

func TestCreateCardPublishFailure(t *testing.T) {
	pub := &stubPublisher{err: io.ErrClosedPipe}
	h := newTestHandler(&stubCards{}, &stubUsers{}, pub)

	rr := postJSON(t, h.CreateCard, `{"userId": "u1", "request": "CREDIT"}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	users := &stubUsers{loginErr: service.ErrInvalidCredentials}
	h := newTestHandler(&stubCards{}, users, &stubPublisher{})

	rr := postJSON(t, h.Login, `{"email": "a@b.c", "password": "nope"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	users := &stubUsers{err: apperrors.New(apperrors.NotFound, "user not found")}
	h := newTestHandler(&stubCards{}, users, &stubPublisher{})

	req := httptest.NewRequest("GET", "/users/profile/ghost", nil)
	req = mux.SetURLVars(req, map[string]string{"uuid": "ghost"})
	rr := httptest.NewRecorder()
	h.GetProfile(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}
