package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"sync"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"custodial_swap_back/models"
	"custodial_swap_back/pkg/aggclient"
	"custodial_swap_back/pkg/utils"
)

type SwapState string

const (
	StatePreparing SwapState = "preparing"
	StateQuoted    SwapState = "quoted"
	StateValidated SwapState = "validated"
	StateSigned    SwapState = "signed"
	StateSubmitted SwapState = "submitted"
	StateConfirmed SwapState = "confirmed"
	StateFailed    SwapState = "failed"
)

type SwapService struct {
	wallets   Wallet
	engine    *quoteEngine
	validator *Validator
	agg       Aggregator
	chain     ChainClient
	fee       FeeHook
	cfg       Config
	locks     walletLocks
}

func NewSwapService(wallets Wallet, engine *quoteEngine, validator *Validator, agg Aggregator, chain ChainClient, fee FeeHook, cfg Config) *SwapService {
	return &SwapService{
		wallets:   wallets,
		engine:    engine,
		validator: validator,
		agg:       agg,
		chain:     chain,
		fee:       fee,
		cfg:       cfg,
	}
}

// Quote is the dry-run path: resolve wallet, normalize, fetch a route. No
// signing key is loaded and nothing touches the chain.
func (s *SwapService) Quote(ctx context.Context, userID int64, req models.SwapRequest) (*models.QuotePreview, error) {
	w, err := s.wallets.ResolveWallet(ctx, userID, req.WalletAddress)
	if err != nil {
		return nil, err
	}
	sc, err := s.engine.BuildContext(ctx, w.PublicKey, req)
	if err != nil {
		return nil, err
	}
	quote, err := s.engine.RequestQuote(ctx, sc)
	if err != nil {
		return nil, err
	}
	return &models.QuotePreview{
		WalletAddress:  sc.WalletAddress,
		Direction:      sc.Direction,
		Mode:           sc.Mode,
		Input:          s.breakdown(sc.RawInAmount, sc.InputDecimals),
		Output:         s.breakdown(sc.RawOutAmount, sc.OutputDecimals),
		PriceImpactPct: quote.PriceImpactPct,
		Warnings:       sc.Warnings,
	}, nil
}

// Execute runs the full swap state machine. Once a transaction has been
// submitted the same signed bytes may be retried by the RPC layer, but this
// method never signs a second transaction for the same request: an unknown
// confirmation outcome is returned as submitted-unconfirmed, not retried.
func (s *SwapService) Execute(ctx context.Context, userID int64, req models.SwapRequest) (*models.TradeResult, error) {
	w, err := s.wallets.ResolveWallet(ctx, userID, req.WalletAddress)
	if err != nil {
		return nil, err
	}

	// Serialize concurrent swaps on the same wallet; two racing spends would
	// both pass the balance gate otherwise.
	unlock := s.locks.lock(w.PublicKey)
	defer unlock()

	log := logrus.WithFields(logrus.Fields{"user_id": userID, "wallet": w.PublicKey})
	log.WithField("state", StatePreparing).Info("swap started")

	sc, err := s.engine.BuildContext(ctx, w.PublicKey, req)
	if err != nil {
		return nil, err
	}
	quote, err := s.engine.RequestQuote(ctx, sc)
	if err != nil {
		return nil, err
	}
	log.WithField("state", StateQuoted).Info("quote received")

	vres, err := s.validator.Validate(ctx, sc)
	if err != nil {
		return nil, err
	}
	if !vres.OK() {
		log.WithField("state", StateFailed).Warnf("validation blocked swap: %v", vres.Errors[0])
		return nil, vres.Errors[0]
	}
	sc.Warnings = append(sc.Warnings, vres.Warnings...)
	log.WithField("state", StateValidated).Info("swap validated")

	kp, err := s.wallets.SigningKey(w)
	if err != nil {
		return nil, err
	}

	txBase64, err := s.agg.BuildSwap(ctx, aggclient.SwapBuildParams{
		Quote:                         quote,
		UserPublicKey:                 kp.Address,
		WrapAndUnwrapSol:              true,
		ComputeUnitPriceMicroLamports: s.cfg.ComputeUnitPriceMicroLamports,
	})
	if err != nil {
		return nil, integrationErr("swap build", err)
	}
	rawTx, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return nil, integrationErr("swap build", errors.Wrap(err, "decode transaction"))
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(rawTx))
	if err != nil {
		return nil, integrationErr("swap build", errors.Wrap(err, "unmarshal transaction"))
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(kp.PrivateKey.PublicKey()) {
			return &kp.PrivateKey
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "sign transaction")
	}
	log.WithField("state", StateSigned).Info("transaction signed")

	sig, err := s.chain.SendTransaction(ctx, tx)
	if err != nil {
		return nil, integrationErr("submit", err)
	}
	log.WithFields(logrus.Fields{"state": StateSubmitted, "signature": sig.String()}).Info("transaction submitted")

	confirmed, err := s.chain.WaitForConfirmation(ctx, sig)
	if err != nil {
		return nil, integrationErr("confirm", err)
	}

	result := s.buildResult(ctx, sc, quote, sig.String(), confirmed)
	state := StateConfirmed
	if !confirmed {
		state = StateSubmitted
	}
	log.WithFields(logrus.Fields{"state": state, "signature": result.Signature}).Info("swap finished")

	if ferr := s.fee.Collect(ctx, sc, result); ferr != nil {
		log.WithError(ferr).Warn("post-trade fee hook failed; swap result unaffected")
	}
	return result, nil
}

func (s *SwapService) buildResult(ctx context.Context, sc *models.SwapContext, quote *aggclient.Quote, signature string, confirmed bool) *models.TradeResult {
	result := &models.TradeResult{
		Signature:     signature,
		WalletAddress: sc.WalletAddress,
		Input:         s.breakdown(sc.RawInAmount, sc.InputDecimals),
		Output:        s.breakdown(sc.RawOutAmount, sc.OutputDecimals),
		SolscanURL:    "https://solscan.io/tx/" + signature,
		Confirmed:     confirmed,
		Status:        "submitted",
		Warnings:      sc.Warnings,
	}
	if confirmed {
		result.Status = "confirmed"
	}
	result.NetOutput = result.Output

	result.PriceImpactPct = quote.PriceImpactPct

	prices, err := s.agg.GetPrices(ctx, []string{sc.InputMint, sc.OutputMint})
	if err != nil {
		result.Warnings = append(result.Warnings, "usd valuation unavailable")
		return result
	}
	result.Input.AmountUSD = usdValue(result.Input.AmountUI, prices[sc.InputMint])
	result.Output.AmountUSD = usdValue(result.Output.AmountUI, prices[sc.OutputMint])
	result.NetOutput.AmountUSD = result.Output.AmountUSD
	return result
}

func (s *SwapService) breakdown(raw *big.Int, decimals uint8) models.AmountBreakdown {
	return models.AmountBreakdown{
		AmountRaw: raw.String(),
		AmountUI:  utils.ToUI(raw, decimals),
		Decimals:  decimals,
	}
}

// usdValue is presentational only; exactness rules apply to raw amounts,
// not valuations.
func usdValue(ui string, price json.Number) string {
	if price == "" {
		return ""
	}
	amount, _, err := big.ParseFloat(ui, 10, 128, big.ToNearestEven)
	if err != nil {
		return ""
	}
	p, _, err := big.ParseFloat(price.String(), 10, 128, big.ToNearestEven)
	if err != nil {
		return ""
	}
	return new(big.Float).Mul(amount, p).Text('f', 2)
}

// walletLocks hands out one mutex per wallet address.
type walletLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *walletLocks) lock(address string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[address]
	if !ok {
		m = &sync.Mutex{}
		l.locks[address] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
