package service

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"custodial_swap_back/internal/custody"
	"custodial_swap_back/internal/wallet"
	"custodial_swap_back/models"
	"custodial_swap_back/pkg/repository"
)

type WalletService struct {
	repos     *repository.Repository
	store     *custody.Store
	walletCap int
}

func NewWalletService(repos *repository.Repository, store *custody.Store, walletCap int) *WalletService {
	return &WalletService{
		repos:     repos,
		store:     store,
		walletCap: walletCap,
	}
}

// EnsureUserWallet returns the user's assigned wallet, claiming one from the
// available pool if they have none. The derived signing key is returned for
// immediate use and must not be cached by the caller.
func (s *WalletService) EnsureUserWallet(ctx context.Context, userID int64, email string) (models.ManagedWallet, *wallet.Keypair, error) {
	w, err := s.repos.Wallet.GetAssignedWallet(ctx, userID)
	if err == nil {
		kp, kerr := s.SigningKey(w)
		if kerr != nil {
			return models.ManagedWallet{}, nil, kerr
		}
		return w, kp, nil
	}
	if !errors.Is(err, repository.ErrWalletNotFound) {
		return models.ManagedWallet{}, nil, integrationErr("wallet lookup", err)
	}

	w, err = s.claimWithRetry(ctx, userID)
	if err != nil {
		return models.ManagedWallet{}, nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"email":   email,
		"wallet":  w.PublicKey,
	}).Info("assigned managed wallet")

	kp, err := s.SigningKey(w)
	if err != nil {
		return models.ManagedWallet{}, nil, err
	}
	return w, kp, nil
}

// claimWithRetry retries the whole claim attempt once after a serialization
// abort; a second failure surfaces as a transient integration error.
func (s *WalletService) claimWithRetry(ctx context.Context, userID int64) (models.ManagedWallet, error) {
	w, err := s.repos.Wallet.ClaimAvailableWallet(ctx, userID)
	if isSerializationFailure(err) {
		logrus.WithField("user_id", userID).Warn("wallet claim serialization conflict, retrying once")
		w, err = s.repos.Wallet.ClaimAvailableWallet(ctx, userID)
	}
	switch {
	case err == nil:
		return w, nil
	case errors.Is(err, repository.ErrNoAvailableWallet):
		return models.ManagedWallet{}, ErrNoWalletAvailable
	default:
		return models.ManagedWallet{}, integrationErr("wallet allocation", err)
	}
}

// SigningKey decrypts the wallet's seed and derives its keypair. The derived
// public key must match the stored one; a mismatch means corrupted key
// material and is a custody failure, not a validation failure.
func (s *WalletService) SigningKey(w models.ManagedWallet) (*wallet.Keypair, error) {
	env, err := models.DecodeSeedEnvelope(w.EncryptedPrivateKey)
	if err != nil {
		return nil, &custody.CustodyError{Code: "decrypt_failed", Err: err}
	}
	seed, err := s.store.Decrypt(env)
	if err != nil {
		return nil, err
	}
	kp, err := wallet.FromSeed(seed)
	if err != nil {
		return nil, &custody.CustodyError{Code: "bad_seed", Err: err}
	}
	if kp.Address != w.PublicKey {
		return nil, &custody.CustodyError{Code: "key_mismatch", Err: errors.New("derived public key does not match stored key")}
	}
	return kp, nil
}

func (s *WalletService) ListWallets(ctx context.Context, userID int64) ([]models.WalletResponse, error) {
	wallets, err := s.repos.Wallet.ListUserWallets(ctx, userID)
	if err != nil {
		return nil, integrationErr("wallet list", err)
	}
	out := make([]models.WalletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, models.WalletResponse{
			PublicKey: w.PublicKey,
			Label:     w.Label,
			Status:    w.Status,
		})
	}
	return out, nil
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "40001"
}
