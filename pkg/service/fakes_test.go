package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/big"
	"time"

	solana "github.com/gagliardetto/solana-go"

	"custodial_swap_back/models"
	"custodial_swap_back/pkg/aggclient"
	"custodial_swap_back/pkg/repository"
)

type fakeWalletRepo struct {
	assigned    *models.ManagedWallet
	available   []models.ManagedWallet
	linked      []models.ManagedWallet
	claimErrs   []error // popped per ClaimAvailableWallet call
	claimCalls  int
	createdRows []models.ManagedWallet
}

func (f *fakeWalletRepo) GetAssignedWallet(ctx context.Context, userID int64) (models.ManagedWallet, error) {
	if f.assigned != nil {
		return *f.assigned, nil
	}
	return models.ManagedWallet{}, repository.ErrWalletNotFound
}

func (f *fakeWalletRepo) ClaimAvailableWallet(ctx context.Context, userID int64) (models.ManagedWallet, error) {
	f.claimCalls++
	if len(f.claimErrs) > 0 {
		err := f.claimErrs[0]
		f.claimErrs = f.claimErrs[1:]
		if err != nil {
			return models.ManagedWallet{}, err
		}
	}
	if len(f.available) == 0 {
		return models.ManagedWallet{}, repository.ErrNoAvailableWallet
	}
	w := f.available[0]
	f.available = f.available[1:]
	w.Status = models.WalletAssigned
	w.AssignedUserID = sql.NullInt64{Int64: userID, Valid: true}
	w.AssignedAt = sql.NullTime{Time: time.Now(), Valid: true}
	return w, nil
}

func (f *fakeWalletRepo) ListUserWallets(ctx context.Context, userID int64) ([]models.ManagedWallet, error) {
	return f.linked, nil
}

func (f *fakeWalletRepo) CreateWallet(ctx context.Context, w models.ManagedWallet) error {
	f.createdRows = append(f.createdRows, w)
	return nil
}

func (f *fakeWalletRepo) RetireWallet(ctx context.Context, publicKey string) error { return nil }

type fakeSubRepo struct {
	sub *models.UserSubscription
}

func (f *fakeSubRepo) GetUserSubscription(ctx context.Context, userID int64) (models.UserSubscription, error) {
	if f.sub == nil {
		return models.UserSubscription{}, repository.ErrNoSubscription
	}
	return *f.sub, nil
}

func newFakeRepos(w *fakeWalletRepo, s *fakeSubRepo) *repository.Repository {
	return &repository.Repository{Wallet: w, Subscription: s}
}

type fakeAgg struct {
	quote      *aggclient.Quote
	quoteErr   error
	lastQuote  aggclient.QuoteParams
	swapTxB64  string
	buildErr   error
	lastBuild  aggclient.SwapBuildParams
	prices     map[string]json.Number
	pricesErr  error
	quoteCalls int
}

func (f *fakeAgg) GetQuote(ctx context.Context, p aggclient.QuoteParams) (*aggclient.Quote, error) {
	f.quoteCalls++
	f.lastQuote = p
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return f.quote, nil
}

func (f *fakeAgg) BuildSwap(ctx context.Context, p aggclient.SwapBuildParams) (string, error) {
	f.lastBuild = p
	if f.buildErr != nil {
		return "", f.buildErr
	}
	return f.swapTxB64, nil
}

func (f *fakeAgg) GetPrices(ctx context.Context, mints []string) (map[string]json.Number, error) {
	if f.pricesErr != nil {
		return nil, f.pricesErr
	}
	return f.prices, nil
}

type fakeChain struct {
	solBalance    *big.Int
	tokenBalance  *big.Int
	decimals      map[string]uint8
	decimalsCalls int
	sentTx        *solana.Transaction
	sendErr       error
	sig           solana.Signature
	confirmed     bool
	confirmErr    error
}

func (f *fakeChain) GetSolBalance(ctx context.Context, owner string) (*big.Int, error) {
	return f.solBalance, nil
}

func (f *fakeChain) GetTokenBalance(ctx context.Context, owner, mint string) (*big.Int, error) {
	return f.tokenBalance, nil
}

func (f *fakeChain) GetMintDecimals(ctx context.Context, mint string) (uint8, error) {
	f.decimalsCalls++
	return f.decimals[mint], nil
}

func (f *fakeChain) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	f.sentTx = tx
	return f.sig, nil
}

func (f *fakeChain) WaitForConfirmation(ctx context.Context, sig solana.Signature) (bool, error) {
	if f.confirmErr != nil {
		return false, f.confirmErr
	}
	return f.confirmed, nil
}
