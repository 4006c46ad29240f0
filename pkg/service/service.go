package service

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	solana "github.com/gagliardetto/solana-go"

	"custodial_swap_back/internal/custody"
	"custodial_swap_back/internal/wallet"
	"custodial_swap_back/models"
	"custodial_swap_back/pkg/aggclient"
	"custodial_swap_back/pkg/cache"
	"custodial_swap_back/pkg/repository"
)

// Aggregator is the swap-quote/build/price surface the pipeline consumes.
// *aggclient.Client satisfies it; tests substitute fakes.
type Aggregator interface {
	GetQuote(ctx context.Context, p aggclient.QuoteParams) (*aggclient.Quote, error)
	BuildSwap(ctx context.Context, p aggclient.SwapBuildParams) (string, error)
	GetPrices(ctx context.Context, mints []string) (map[string]json.Number, error)
}

// ChainClient is the RPC surface the pipeline consumes. *solclient.Client
// satisfies it.
type ChainClient interface {
	GetSolBalance(ctx context.Context, owner string) (*big.Int, error)
	GetTokenBalance(ctx context.Context, owner, mint string) (*big.Int, error)
	GetMintDecimals(ctx context.Context, mint string) (uint8, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	WaitForConfirmation(ctx context.Context, sig solana.Signature) (bool, error)
}

type Wallet interface {
	EnsureUserWallet(ctx context.Context, userID int64, email string) (models.ManagedWallet, *wallet.Keypair, error)
	ResolveWallet(ctx context.Context, userID int64, requestedAddress string) (models.ManagedWallet, error)
	ListWallets(ctx context.Context, userID int64) ([]models.WalletResponse, error)
	SigningKey(w models.ManagedWallet) (*wallet.Keypair, error)
}

type Swap interface {
	Quote(ctx context.Context, userID int64, req models.SwapRequest) (*models.QuotePreview, error)
	Execute(ctx context.Context, userID int64, req models.SwapRequest) (*models.TradeResult, error)
}

// Config carries the swap-pipeline tunables read from configs/config.yml.
type Config struct {
	MaxLinkedWallets              int
	FeeReserveLamports            int64
	ComputeUnitPriceMicroLamports uint64
	DecimalsCacheTTL              time.Duration
}

type Service struct {
	Wallet
	Swap
}

func NewService(repos *repository.Repository, store *custody.Store, agg Aggregator, chain ChainClient, cfg Config) *Service {
	if cfg.MaxLinkedWallets <= 0 {
		cfg.MaxLinkedWallets = 10
	}
	if cfg.DecimalsCacheTTL <= 0 {
		cfg.DecimalsCacheTTL = 10 * time.Minute
	}

	wallets := NewWalletService(repos, store, cfg.MaxLinkedWallets)
	engine := newQuoteEngine(agg, chain, cache.NewDecimalsCache(cfg.DecimalsCacheTTL))
	validator := NewValidator(chain, big.NewInt(cfg.FeeReserveLamports))
	swaps := NewSwapService(wallets, engine, validator, agg, chain, NoopFee{}, cfg)

	return &Service{
		Wallet: wallets,
		Swap:   swaps,
	}
}
