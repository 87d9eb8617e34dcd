package consumer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/IBM/sarama"
	"github.com/inferno/inferno-bank/internal/apperrors"
	"github.com/inferno/inferno-bank/internal/metrics"
	"github.com/inferno/inferno-bank/internal/models"
	"github.com/sirupsen/logrus"
)

// CardRequestMessage is the queued issuance request
type CardRequestMessage struct {
	UserID  string `json:"userId"`
	Request string `json:"request"`
}

// CardCreator is the slice of the card workflow the worker drives
type CardCreator interface {
	CreateCard(ctx context.Context, userID, requestedType string) (*models.Card, error)
}

// ProfileLookup resolves a user identifier to a profile, used to
// address the card-issued notification.
type ProfileLookup interface {
	GetProfile(ctx context.Context, userUUID string) (*models.User, error)
}

// IssuanceNotifier sends the card-issued email
type IssuanceNotifier interface {
	SendCardIssued(to, name string, card *models.Card) error
}

// IssuanceHandler consumes card issuance requests. Malformed messages
// and failed creations are logged and the message is still considered
// consumed; redelivery policy belongs to the queue infrastructure, not
// to this handler.
type IssuanceHandler struct {
	cards    CardCreator
	profiles ProfileLookup
	notifier IssuanceNotifier
	log      *logrus.Logger
}

// NewIssuanceHandler creates the worker-side message handler. profiles
// and notifier are optional; without them no email is sent.
func NewIssuanceHandler(cards CardCreator, profiles ProfileLookup, notifier IssuanceNotifier, log *logrus.Logger) *IssuanceHandler {
	return &IssuanceHandler{cards: cards, profiles: profiles, notifier: notifier, log: log}
}

// HandleMessage processes one queued issuance request
func (h *IssuanceHandler) HandleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var req CardRequestMessage
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		h.log.Warnf("Skipping malformed card request at %s[%d]@%d: %v", msg.Topic, msg.Partition, msg.Offset, err)
		return nil
	}

	cardType := strings.ToUpper(req.Request)
	h.log.Infof("Processing %s card request for user %s", cardType, req.UserID)

	card, err := h.cards.CreateCard(ctx, req.UserID, cardType)
	if err != nil {
		kind := "unknown"
		if k, ok := apperrors.KindOf(err); ok {
			kind = k.String()
		}
		metrics.CardsIssued.WithLabelValues(cardType, "error").Inc()
		h.log.Warnf("Failed to create %s card for user %s (%s): %v", cardType, req.UserID, kind, err)
		return nil
	}

	metrics.CardsIssued.WithLabelValues(card.Type, "success").Inc()

	if h.notifier != nil && h.profiles != nil {
		if user, perr := h.profiles.GetProfile(ctx, card.UserID); perr == nil {
			if nerr := h.notifier.SendCardIssued(user.Email, user.Name, card); nerr != nil {
				h.log.Errorf("Failed to send card-issued email to %s: %v", user.Email, nerr)
			}
		} else {
			h.log.Warnf("Could not resolve user %s for notification: %v", card.UserID, perr)
		}
	}

	return nil
}
