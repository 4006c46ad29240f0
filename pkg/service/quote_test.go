package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodial_swap_back/models"
	"custodial_swap_back/pkg/aggclient"
	"custodial_swap_back/pkg/cache"
)

const (
	testUSDC   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	testWallet = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

func newTestEngine(agg *fakeAgg, chain *fakeChain) *quoteEngine {
	return newQuoteEngine(agg, chain, cache.NewDecimalsCache(time.Minute))
}

func TestBuildContextNormalizesSolSentinels(t *testing.T) {
	chain := &fakeChain{decimals: map[string]uint8{testUSDC: 6}}
	engine := newTestEngine(&fakeAgg{}, chain)

	for _, input := range []string{"SOL", "sol", nativeSolSentinel, WrappedSolMint} {
		sc, err := engine.BuildContext(context.Background(), testWallet, models.SwapRequest{
			InputMint:   input,
			OutputMint:  testUSDC,
			Amount:      "0.1",
			SlippageBps: 100,
		})
		require.NoError(t, err, input)
		assert.Equal(t, WrappedSolMint, sc.InputMint)
		assert.Equal(t, models.SolToToken, sc.Direction)
		assert.Equal(t, uint8(9), sc.InputDecimals)
		assert.Equal(t, "100000000", sc.RawInAmount.String())
	}
}

func TestBuildContextRejectsIdenticalMints(t *testing.T) {
	engine := newTestEngine(&fakeAgg{}, &fakeChain{})
	_, err := engine.BuildContext(context.Background(), testWallet, models.SwapRequest{
		InputMint:  "SOL",
		OutputMint: WrappedSolMint,
		Amount:     "1",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidMint, verr.Code)
}

func TestBuildContextRejectsBadAmounts(t *testing.T) {
	chain := &fakeChain{decimals: map[string]uint8{testUSDC: 6}}
	engine := newTestEngine(&fakeAgg{}, chain)

	for _, amount := range []string{"0", "abc", "-1", ""} {
		_, err := engine.BuildContext(context.Background(), testWallet, models.SwapRequest{
			InputMint:  "SOL",
			OutputMint: testUSDC,
			Amount:     amount,
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "amount %q", amount)
		assert.Equal(t, CodeInvalidAmount, verr.Code)
	}
}

func TestBuildContextRejectsUnknownMode(t *testing.T) {
	chain := &fakeChain{decimals: map[string]uint8{testUSDC: 6}}
	engine := newTestEngine(&fakeAgg{}, chain)

	_, err := engine.BuildContext(context.Background(), testWallet, models.SwapRequest{
		InputMint:  "SOL",
		OutputMint: testUSDC,
		Amount:     "1",
		Mode:       "ExactlyWrong",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidMode, verr.Code)
}

func TestDecimalsLookupIsCached(t *testing.T) {
	chain := &fakeChain{decimals: map[string]uint8{testUSDC: 6}}
	engine := newTestEngine(&fakeAgg{}, chain)

	for i := 0; i < 3; i++ {
		_, err := engine.BuildContext(context.Background(), testWallet, models.SwapRequest{
			InputMint:  "SOL",
			OutputMint: testUSDC,
			Amount:     "1",
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, chain.decimalsCalls)
}

func TestRequestQuoteExactIn(t *testing.T) {
	agg := &fakeAgg{quote: &aggclient.Quote{InAmount: "100000000", OutAmount: "5000000"}}
	chain := &fakeChain{decimals: map[string]uint8{testUSDC: 6}}
	engine := newTestEngine(agg, chain)

	sc, err := engine.BuildContext(context.Background(), testWallet, models.SwapRequest{
		InputMint:   "SOL",
		OutputMint:  testUSDC,
		Amount:      "0.1",
		SlippageBps: 100,
	})
	require.NoError(t, err)

	_, err = engine.RequestQuote(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, "100000000", agg.lastQuote.Amount)
	assert.Equal(t, "ExactIn", agg.lastQuote.SwapMode)
	assert.Equal(t, "5000000", sc.RawOutAmount.String())
}

func TestRequestQuoteExactOutReadsBackInputAmount(t *testing.T) {
	agg := &fakeAgg{quote: &aggclient.Quote{InAmount: "103000000", OutAmount: "5000000"}}
	chain := &fakeChain{decimals: map[string]uint8{testUSDC: 6}}
	engine := newTestEngine(agg, chain)

	sc, err := engine.BuildContext(context.Background(), testWallet, models.SwapRequest{
		InputMint:   "SOL",
		OutputMint:  testUSDC,
		Amount:      "5",
		Mode:        string(models.ExactOut),
		SlippageBps: 100,
	})
	require.NoError(t, err)
	require.Equal(t, "5000000", sc.RawOutAmount.String())

	_, err = engine.RequestQuote(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, "5000000", agg.lastQuote.Amount)
	assert.Equal(t, "ExactOut", agg.lastQuote.SwapMode)
	assert.Equal(t, "103000000", sc.RawInAmount.String())
}

func TestRequestQuoteRejectsNonPositiveOutput(t *testing.T) {
	agg := &fakeAgg{quote: &aggclient.Quote{InAmount: "100000000", OutAmount: "0"}}
	chain := &fakeChain{decimals: map[string]uint8{testUSDC: 6}}
	engine := newTestEngine(agg, chain)

	sc, err := engine.BuildContext(context.Background(), testWallet, models.SwapRequest{
		InputMint:   "SOL",
		OutputMint:  testUSDC,
		Amount:      "0.1",
		SlippageBps: 100,
	})
	require.NoError(t, err)

	_, err = engine.RequestQuote(context.Background(), sc)
	var ierr *IntegrationError
	require.ErrorAs(t, err, &ierr)
}
