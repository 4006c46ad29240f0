package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"custodial_swap_back/models"
)

type Wallet interface {
	GetAssignedWallet(ctx context.Context, userID int64) (models.ManagedWallet, error)
	ClaimAvailableWallet(ctx context.Context, userID int64) (models.ManagedWallet, error)
	ListUserWallets(ctx context.Context, userID int64) ([]models.ManagedWallet, error)
	CreateWallet(ctx context.Context, w models.ManagedWallet) error
	RetireWallet(ctx context.Context, publicKey string) error
}

type Subscription interface {
	GetUserSubscription(ctx context.Context, userID int64) (models.UserSubscription, error)
}

type Repository struct {
	Wallet
	Subscription
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Wallet:       NewWalletPostgres(db),
		Subscription: NewSubscriptionPostgres(db),
	}
}
