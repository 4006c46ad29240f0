package service

import (
	"context"
	"errors"

	"custodial_swap_back/models"
	"custodial_swap_back/pkg/repository"
)

// ResolveWallet decides which of the user's wallets a request may act on,
// based on subscription tier. Free tier reaches exactly the default wallet;
// pro tier reaches any linked wallet up to the cap.
func (s *WalletService) ResolveWallet(ctx context.Context, userID int64, requestedAddress string) (models.ManagedWallet, error) {
	wallets, err := s.repos.Wallet.ListUserWallets(ctx, userID)
	if err != nil {
		return models.ManagedWallet{}, integrationErr("wallet list", err)
	}
	if len(wallets) == 0 {
		return models.ManagedWallet{}, ErrNoWalletAssigned
	}

	tier := models.TierFree
	sub, err := s.repos.Subscription.GetUserSubscription(ctx, userID)
	switch {
	case err == nil:
		if sub.Active() {
			tier = sub.Tier
		}
	case errors.Is(err, repository.ErrNoSubscription):
		// no row means free
	default:
		return models.ManagedWallet{}, integrationErr("subscription lookup", err)
	}

	if tier != models.TierPro {
		def := defaultWallet(wallets)
		if requestedAddress != "" && requestedAddress != def.PublicKey {
			return models.ManagedWallet{}, validationErr(CodeWalletNotAllowedFree,
				"free tier may only use wallet %s", def.PublicKey)
		}
		return def, nil
	}

	if len(wallets) > s.walletCap {
		return models.ManagedWallet{}, validationErr(CodeWalletLimitExceeded,
			"%d wallets linked, cap is %d", len(wallets), s.walletCap)
	}
	if requestedAddress == "" {
		return defaultWallet(wallets), nil
	}
	for _, w := range wallets {
		if w.PublicKey == requestedAddress {
			return w, nil
		}
	}
	return models.ManagedWallet{}, validationErr(CodeWalletNotLinked,
		"wallet %s is not linked to this account", requestedAddress)
}

// defaultWallet prefers the wallet labeled "default"; otherwise the list is
// already ordered by assigned_at, so the earliest wins.
func defaultWallet(wallets []models.ManagedWallet) models.ManagedWallet {
	for _, w := range wallets {
		if w.Label == "default" {
			return w
		}
	}
	return wallets[0]
}
