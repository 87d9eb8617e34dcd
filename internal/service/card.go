package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inferno/inferno-bank/internal/apperrors"
	"github.com/inferno/inferno-bank/internal/models"
	"github.com/sirupsen/logrus"
)

// CardStore persists card records keyed by their identifier.
type CardStore interface {
	PutCard(ctx context.Context, card *models.Card) error
	ScanAllCards(ctx context.Context) ([]models.Card, error)
	UpdateCard(ctx context.Context, card *models.Card) error
}

// UserDirectory answers whether a user identifier is known. A false
// result and a transport error are distinct outcomes: Exists must
// return an error (not false) when the check itself cannot complete.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// ScoreSource draws credit scores. *math/rand.Rand satisfies it;
// tests inject fixed values.
type ScoreSource interface {
	Intn(n int) int
}

// CardService orchestrates card issuance and activation
type CardService struct {
	store  CardStore
	users  UserDirectory
	scores ScoreSource
	log    *logrus.Logger
}

// NewCardService initializes the card workflow with its collaborators
func NewCardService(store CardStore, users UserDirectory, scores ScoreSource, log *logrus.Logger) *CardService {
	return &CardService{store: store, users: users, scores: scores, log: log}
}

// computeCreditLimit maps a score in [0,100] onto [100, 10_000_000],
// rounded to the nearest integer.
func computeCreditLimit(score int) int64 {
	amount := 100 + (float64(score)/100.0)*(10_000_000-100)
	return int64(math.Round(amount))
}

// CreateCard issues a new card for the user. DEBIT cards are born
// ACTIVATED with a zero balance; CREDIT cards are born PENDING with a
// random score and a limit derived from it. The user must exist in the
// directory at call time; the check is point-in-time, not transactional.
func (s *CardService) CreateCard(ctx context.Context, userID, requestedType string) (*models.Card, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.New(apperrors.Validation, "user id is required")
	}

	cardType := strings.ToUpper(strings.TrimSpace(requestedType))
	if cardType != models.CardTypeCredit && cardType != models.CardTypeDebit {
		return nil, apperrors.New(apperrors.Validation, fmt.Sprintf("invalid card type: %q", requestedType))
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to verify user existence", err)
	}
	if !exists {
		return nil, apperrors.New(apperrors.NotFound, "user does not exist: "+userID)
	}

	card := &models.Card{
		UUID:      uuid.NewString(),
		UserID:    userID,
		Type:      cardType,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	switch cardType {
	case models.CardTypeDebit:
		card.Status = models.CardStatusActivated
		card.Balance = 0
		card.Score = 0
	case models.CardTypeCredit:
		score := s.scores.Intn(101)
		card.Status = models.CardStatusPending
		card.Score = score
		card.Limit = computeCreditLimit(score)
		card.UsedBalance = 0
		card.Balance = 0
	}

	if err := s.store.PutCard(ctx, card); err != nil {
		return nil, err
	}

	s.log.Infof("Card created for user %s: %s %s (%s)", userID, card.Type, card.UUID, card.Status)
	return card, nil
}

// FindPendingCardsByUser returns the user's PENDING cards. The store is
// scanned in full and filtered here; ordering is unspecified and an
// empty result is not an error.
func (s *CardService) FindPendingCardsByUser(ctx context.Context, userID string) ([]models.Card, error) {
	cards, err := s.store.ScanAllCards(ctx)
	if err != nil {
		return nil, err
	}

	pending := []models.Card{}
	for _, card := range cards {
		if card.UserID == userID && card.Status == models.CardStatusPending {
			pending = append(pending, card)
		}
	}

	s.log.Debugf("Found %d pending cards for user %s", len(pending), userID)
	return pending, nil
}

// ActivateCard sets the card ACTIVATED and persists it. The write is
// unconditional: activating an already-ACTIVATED card is a harmless
// idempotent overwrite.
func (s *CardService) ActivateCard(ctx context.Context, card *models.Card) error {
	card.Status = models.CardStatusActivated
	if err := s.store.UpdateCard(ctx, card); err != nil {
		return err
	}
	s.log.Infof("Card activated: %s", card.UUID)
	return nil
}

// ActivateAllPendingCards activates every PENDING card of the user in
// sequence and returns how many were activated. The batch is not
// atomic: a failure mid-sequence leaves earlier activations in place
// and returns the count so far alongside the error. Retrying the whole
// batch is safe because single-card activation is idempotent.
func (s *CardService) ActivateAllPendingCards(ctx context.Context, userID string) (int, error) {
	pending, err := s.FindPendingCardsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	activated := 0
	for i := range pending {
		if err := s.ActivateCard(ctx, &pending[i]); err != nil {
			return activated, err
		}
		activated++
	}

	s.log.Infof("Activated %d cards for user %s", activated, userID)
	return activated, nil
}
