package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"custodial_swap_back/models"
)

var ErrNoSubscription = errors.New("no subscription")

type SubscriptionPostgres struct {
	db *sqlx.DB
}

func NewSubscriptionPostgres(db *sqlx.DB) *SubscriptionPostgres {
	return &SubscriptionPostgres{db: db}
}

func (r *SubscriptionPostgres) GetUserSubscription(ctx context.Context, userID int64) (models.UserSubscription, error) {
	var sub models.UserSubscription
	query := `SELECT user_id, tier, status FROM user_subscriptions WHERE user_id = $1`
	err := r.db.GetContext(ctx, &sub, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return sub, ErrNoSubscription
	}
	return sub, err
}
