package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"custodial_swap_back/models"
)

// ErrNoAvailableWallet means the provisioning pool is empty, not that
// anything went wrong.
var ErrNoAvailableWallet = errors.New("no available wallet")

// ErrWalletNotFound is returned when a user has no assigned wallet.
var ErrWalletNotFound = errors.New("wallet not found")

const walletColumns = `public_key, encrypted_private_key, status, label, metadata, assigned_user_id, assigned_at, created_at`

type WalletPostgres struct {
	db *sqlx.DB
}

func NewWalletPostgres(db *sqlx.DB) *WalletPostgres {
	return &WalletPostgres{db: db}
}

func (r *WalletPostgres) GetAssignedWallet(ctx context.Context, userID int64) (models.ManagedWallet, error) {
	var w models.ManagedWallet
	query := fmt.Sprintf(`SELECT %s FROM managed_wallets
		WHERE assigned_user_id = $1 AND status = $2
		ORDER BY assigned_at ASC LIMIT 1`, walletColumns)
	err := r.db.GetContext(ctx, &w, query, userID, models.WalletAssigned)
	if errors.Is(err, sql.ErrNoRows) {
		return w, ErrWalletNotFound
	}
	return w, err
}

// ClaimAvailableWallet assigns one available wallet to the user inside a
// serializable transaction. SKIP LOCKED keeps concurrent claimers off each
// other's candidate row, so N allocators drain the pool without blocking;
// the public_key primary key is the backstop if locking is misconfigured.
func (r *WalletPostgres) ClaimAvailableWallet(ctx context.Context, userID int64) (models.ManagedWallet, error) {
	var w models.ManagedWallet

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return w, err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`SELECT %s FROM managed_wallets
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, walletColumns)
	err = tx.GetContext(ctx, &w, query, models.WalletAvailable)
	if errors.Is(err, sql.ErrNoRows) {
		// Pool is empty; nothing to roll back.
		if cerr := tx.Commit(); cerr != nil {
			return w, cerr
		}
		return w, ErrNoAvailableWallet
	}
	if err != nil {
		return w, err
	}

	res, err := tx.ExecContext(ctx, `UPDATE managed_wallets
		SET status = $1, assigned_user_id = $2, assigned_at = NOW()
		WHERE public_key = $3 AND status = $4`,
		models.WalletAssigned, userID, w.PublicKey, models.WalletAvailable)
	if err != nil {
		return w, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return w, err
	}
	if affected != 1 {
		return w, fmt.Errorf("wallet %s claimed concurrently", w.PublicKey)
	}

	if err := tx.Commit(); err != nil {
		return w, err
	}

	w.Status = models.WalletAssigned
	w.AssignedUserID = sql.NullInt64{Int64: userID, Valid: true}
	return w, nil
}

func (r *WalletPostgres) ListUserWallets(ctx context.Context, userID int64) ([]models.ManagedWallet, error) {
	var wallets []models.ManagedWallet
	query := fmt.Sprintf(`SELECT %s FROM managed_wallets
		WHERE assigned_user_id = $1 AND status = $2
		ORDER BY assigned_at ASC`, walletColumns)
	err := r.db.SelectContext(ctx, &wallets, query, userID, models.WalletAssigned)
	return wallets, err
}

func (r *WalletPostgres) CreateWallet(ctx context.Context, w models.ManagedWallet) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO managed_wallets
		(public_key, encrypted_private_key, status, label, metadata)
		VALUES ($1, $2, $3, $4, $5)`,
		w.PublicKey, w.EncryptedPrivateKey, w.Status, w.Label, w.Metadata)
	return err
}

func (r *WalletPostgres) RetireWallet(ctx context.Context, publicKey string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE managed_wallets SET status = $1 WHERE public_key = $2`,
		models.WalletRetired, publicKey)
	return err
}
