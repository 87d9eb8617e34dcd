package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/inferno/inferno-bank/internal/apperrors"
	"github.com/inferno/inferno-bank/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// PutCard inserts a card, overwriting any existing record with the same
// identifier. All card fields are written in a single statement.
func (r *Repository) PutCard(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO bank.cards (uuid, user_id, type, status, balance, credit_limit, used_balance, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (uuid) DO UPDATE SET
			status = EXCLUDED.status,
			balance = EXCLUDED.balance,
			credit_limit = EXCLUDED.credit_limit,
			used_balance = EXCLUDED.used_balance,
			score = EXCLUDED.score`
	_, err := r.db.ExecContext(ctx, query,
		card.UUID, card.UserID, card.Type, card.Status,
		card.Balance, card.Limit, card.UsedBalance, card.Score, card.CreatedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.Dependency, "failed to store card", err)
	}
	return nil
}

// ScanAllCards returns every card in the store. Callers filter; no
// ordering is guaranteed.
func (r *Repository) ScanAllCards(ctx context.Context) ([]models.Card, error) {
	query := `
		SELECT uuid, user_id, type, status, balance, credit_limit, used_balance, score, created_at
		FROM bank.cards`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to scan cards", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var card models.Card
		if err := rows.Scan(&card.UUID, &card.UserID, &card.Type, &card.Status,
			&card.Balance, &card.Limit, &card.UsedBalance, &card.Score, &card.CreatedAt); err != nil {
			return nil, apperrors.Wrap(apperrors.Dependency, "failed to scan card row", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to iterate cards", err)
	}
	return cards, nil
}

// UpdateCard persists the mutable fields of an existing card.
func (r *Repository) UpdateCard(ctx context.Context, card *models.Card) error {
	query := `
		UPDATE bank.cards
		SET status = $2, balance = $3, credit_limit = $4, used_balance = $5, score = $6
		WHERE uuid = $1`
	_, err := r.db.ExecContext(ctx, query,
		card.UUID, card.Status, card.Balance, card.Limit, card.UsedBalance, card.Score)
	if err != nil {
		return apperrors.Wrap(apperrors.Dependency, "failed to update card", err)
	}
	return nil
}

// isNoRows reports whether err means the query matched nothing.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
