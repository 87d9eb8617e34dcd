package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/inferno/inferno-bank/internal/apperrors"
	"github.com/inferno/inferno-bank/internal/consumer"
	"github.com/inferno/inferno-bank/internal/metrics"
	"github.com/inferno/inferno-bank/internal/models"
	"github.com/inferno/inferno-bank/internal/queue"
	"github.com/inferno/inferno-bank/internal/service"
	"github.com/sirupsen/logrus"
)

// CardWorkflow is the slice of the card service the gateway drives
type CardWorkflow interface {
	ActivateAllPendingCards(ctx context.Context, userID string) (int, error)
}

// UserAccounts is the slice of the user service the gateway drives
type UserAccounts interface {
	Register(ctx context.Context, req service.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetProfile(ctx context.Context, userUUID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userUUID, name, lastName string) (*models.User, error)
	UploadAvatar(ctx context.Context, userUUID, imageBase64 string) (string, error)
}

// ActivationNotifier sends the bulk-activation summary email
type ActivationNotifier interface {
	SendCardsActivated(to, name string, count int) error
}

// Handler maps HTTP requests onto the services
type Handler struct {
	cards     CardWorkflow
	users     UserAccounts
	publisher queue.Publisher
	topic     string
	notifier  ActivationNotifier
	log       *logrus.Logger
}

// NewHandler initializes the HTTP handler. publisher and notifier are
// optional; without a publisher card requests are rejected.
func NewHandler(cards CardWorkflow, users UserAccounts, publisher queue.Publisher, topic string, notifier ActivationNotifier, log *logrus.Logger) *Handler {
	return &Handler{
		cards:     cards,
		users:     users,
		publisher: publisher,
		topic:     topic,
		notifier:  notifier,
		log:       log,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps an error kind onto an HTTP status. Dependency
// failures are reported as 503 so callers know to retry.
func statusFor(err error) int {
	kind, ok := apperrors.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case apperrors.Validation:
		return http.StatusBadRequest
	case apperrors.NotFound:
		return http.StatusNotFound
	case apperrors.Conflict:
		return http.StatusConflict
	case apperrors.Dependency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		h.log.Warnf("Registration failed: %v", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Errorf("Login failed: %v", err)
		writeError(w, statusFor(err), "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetProfile returns a user profile by UUID
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	uuid := mux.Vars(r)["uuid"]
	if uuid == "" {
		writeError(w, http.StatusBadRequest, "user UUID is required in path")
		return
	}

	user, err := h.users.GetProfile(r.Context(), uuid)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile updates the allowed profile fields
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uuid := mux.Vars(r)["uuid"]

	var req struct {
		Name     string `json:"name"`
		LastName string `json:"lastName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), uuid, req.Name, req.LastName)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UploadAvatar stores a base64-encoded avatar image for the user
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	uuid := mux.Vars(r)["uuid"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	url, err := h.users.UploadAvatar(r.Context(), uuid, string(body))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatarUrl": url})
}

// CreateCard validates a card request and enqueues it for asynchronous
// issuance. Invalid types are rejected here and never reach the queue.
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req consumer.CardRequestMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Request = strings.ToUpper(req.Request)
	if req.Request != models.CardTypeCredit && req.Request != models.CardTypeDebit {
		writeMessage(w, http.StatusBadRequest, "Invalid request type. Must be CREDIT or DEBIT")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing required field: userId")
		return
	}

	if h.publisher == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Card issuance is unavailable")
		return
	}

	if err := h.publisher.PublishJSON(r.Context(), h.topic, req.UserID, req); err != nil {
		h.log.Errorf("Failed to enqueue card request: %v", err)
		writeMessage(w, http.StatusServiceUnavailable, "Failed to enqueue card request")
		return
	}

	writeMessage(w, http.StatusOK, "Card request sent for processing")
}

// ActivateCards activates all pending cards for a user. Zero pending
// cards is reported as 404, not as success.
func (h *Handler) ActivateCards(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing required field: userId")
		return
	}

	activated, err := h.cards.ActivateAllPendingCards(r.Context(), req.UserID)
	if err != nil {
		h.log.Errorf("Card activation failed for user %s: %v", req.UserID, err)
		writeMessage(w, statusFor(err), "Card activation failed")
		return
	}

	if activated == 0 {
		writeMessage(w, http.StatusNotFound, "No pending cards found for user: "+req.UserID)
		return
	}

	metrics.CardsActivated.Add(float64(activated))
	h.notifyActivation(r.Context(), req.UserID, activated)

	writeMessage(w, http.StatusOK,
		fmt.Sprintf("Successfully activated %d cards for user: %s", activated, req.UserID))
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) notifyActivation(ctx context.Context, userID string, count int) {
	if h.notifier == nil {
		return
	}
	user, err := h.users.GetProfile(ctx, userID)
	if err != nil {
		h.log.Warnf("Could not resolve user %s for activation email: %v", userID, err)
		return
	}
	if err := h.notifier.SendCardsActivated(user.Email, user.Name, count); err != nil {
		h.log.Errorf("Failed to send activation email to %s: %v", user.Email, err)
	}
}
