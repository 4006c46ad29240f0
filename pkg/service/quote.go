package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"custodial_swap_back/models"
	"custodial_swap_back/pkg/aggclient"
	"custodial_swap_back/pkg/cache"
	"custodial_swap_back/pkg/utils"
)

// WrappedSolMint is the canonical mint every SOL-side leg is quoted
// against. Callers may say "SOL" or the native sentinel instead.
const (
	WrappedSolMint    = "So11111111111111111111111111111111111111112"
	nativeSolSentinel = "11111111111111111111111111111111"
	solDecimals       = 9
)

type quoteEngine struct {
	agg      Aggregator
	chain    ChainClient
	decimals *cache.DecimalsCache
}

func newQuoteEngine(agg Aggregator, chain ChainClient, decimals *cache.DecimalsCache) *quoteEngine {
	return &quoteEngine{agg: agg, chain: chain, decimals: decimals}
}

func normalizeMint(m string) string {
	t := strings.TrimSpace(m)
	if strings.EqualFold(t, "sol") || t == nativeSolSentinel {
		return WrappedSolMint
	}
	return t
}

// BuildContext normalizes the caller's request into a SwapContext with
// resolved mints, decimals, and an exact raw amount.
func (e *quoteEngine) BuildContext(ctx context.Context, walletAddress string, req models.SwapRequest) (*models.SwapContext, error) {
	inputMint := normalizeMint(req.InputMint)
	outputMint := normalizeMint(req.OutputMint)
	if inputMint == "" || outputMint == "" {
		return nil, validationErr(CodeInvalidMint, "input and output mint are required")
	}
	if inputMint == outputMint {
		return nil, validationErr(CodeInvalidMint, "input and output mint are identical")
	}

	var mode models.SwapMode
	switch req.Mode {
	case "", string(models.ExactIn):
		mode = models.ExactIn
	case string(models.ExactOut):
		mode = models.ExactOut
	default:
		return nil, validationErr(CodeInvalidMode, "unknown swap mode %q", req.Mode)
	}

	direction := models.TokenToToken
	switch {
	case inputMint == WrappedSolMint:
		direction = models.SolToToken
	case outputMint == WrappedSolMint:
		direction = models.TokenToSol
	}

	inputDecimals, err := e.resolveDecimals(ctx, inputMint)
	if err != nil {
		return nil, err
	}
	outputDecimals, err := e.resolveDecimals(ctx, outputMint)
	if err != nil {
		return nil, err
	}

	sc := &models.SwapContext{
		WalletAddress:  walletAddress,
		Direction:      direction,
		Mode:           mode,
		InputMint:      inputMint,
		OutputMint:     outputMint,
		InputDecimals:  inputDecimals,
		OutputDecimals: outputDecimals,
		SlippageBps:    req.SlippageBps,
	}

	amountDecimals := inputDecimals
	if mode == models.ExactOut {
		amountDecimals = outputDecimals
	}
	raw, err := utils.ToRaw(req.Amount, amountDecimals)
	if err != nil {
		return nil, validationErr(CodeInvalidAmount, "cannot parse amount %q", req.Amount)
	}
	if raw.Sign() <= 0 {
		return nil, validationErr(CodeInvalidAmount, "amount must be positive")
	}
	if mode == models.ExactOut {
		sc.RawOutAmount = raw
	} else {
		sc.RawInAmount = raw
	}
	return sc, nil
}

// RequestQuote asks the aggregator for a route and folds the answer back
// into the context: ExactIn learns the output amount, ExactOut learns the
// input amount the route actually needs.
func (e *quoteEngine) RequestQuote(ctx context.Context, sc *models.SwapContext) (*aggclient.Quote, error) {
	amount := sc.RawInAmount
	if sc.Mode == models.ExactOut {
		amount = sc.RawOutAmount
	}

	quote, err := e.agg.GetQuote(ctx, aggclient.QuoteParams{
		InputMint:   sc.InputMint,
		OutputMint:  sc.OutputMint,
		Amount:      amount.String(),
		SlippageBps: sc.SlippageBps,
		SwapMode:    string(sc.Mode),
	})
	if err != nil {
		return nil, integrationErr("quote", err)
	}

	outAmount, ok := new(big.Int).SetString(quote.OutAmount, 10)
	if !ok || outAmount.Sign() <= 0 {
		return nil, integrationErr("quote", fmt.Errorf("aggregator returned non-positive output amount %q", quote.OutAmount))
	}
	inAmount, ok := new(big.Int).SetString(quote.InAmount, 10)
	if !ok || inAmount.Sign() <= 0 {
		return nil, integrationErr("quote", fmt.Errorf("aggregator returned non-positive input amount %q", quote.InAmount))
	}

	sc.RawOutAmount = outAmount
	sc.RawInAmount = inAmount
	return quote, nil
}

func (e *quoteEngine) resolveDecimals(ctx context.Context, mint string) (uint8, error) {
	if mint == WrappedSolMint {
		return solDecimals, nil
	}
	if d, ok := e.decimals.Get(mint); ok {
		return d, nil
	}
	d, err := e.chain.GetMintDecimals(ctx, mint)
	if err != nil {
		return 0, integrationErr("decimals lookup", err)
	}
	e.decimals.Set(mint, d)
	return d, nil
}
