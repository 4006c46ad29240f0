package aggclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteBody() string {
	return `{"inputMint":"So11111111111111111111111111111111111111112","outputMint":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v","inAmount":"100000000","outAmount":"5000000","otherAmountThreshold":"4950000","swapMode":"ExactIn","slippageBps":100,"priceImpactPct":"0.01","routePlan":[]}`
}

func TestGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap/v1/quote", r.URL.Path)
		assert.Equal(t, "100000000", r.URL.Query().Get("amount"))
		assert.Equal(t, "100", r.URL.Query().Get("slippageBps"))
		assert.Equal(t, "ExactIn", r.URL.Query().Get("swapMode"))
		_, _ = w.Write([]byte(quoteBody()))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", 5*time.Second)
	quote, err := client.GetQuote(context.Background(), QuoteParams{
		InputMint:   "So11111111111111111111111111111111111111112",
		OutputMint:  "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Amount:      "100000000",
		SlippageBps: 100,
		SwapMode:    "ExactIn",
	})
	require.NoError(t, err)
	assert.Equal(t, "5000000", quote.OutAmount)
	assert.JSONEq(t, quoteBody(), string(quote.Raw))
}

func TestGetQuoteFallsBackOnAuthRejection(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"401", http.StatusUnauthorized, ""},
		{"403", http.StatusForbidden, ""},
		{"400 not authorized", http.StatusBadRequest, `{"error":"Not Authorized to access this route"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte(c.body))
			}))
			defer primary.Close()

			fallbackHits := 0
			fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fallbackHits++
				_, _ = w.Write([]byte(quoteBody()))
			}))
			defer fallback.Close()

			client := NewClient(primary.URL, fallback.URL, "", 5*time.Second)
			quote, err := client.GetQuote(context.Background(), QuoteParams{SwapMode: "ExactIn"})
			require.NoError(t, err)
			assert.Equal(t, 1, fallbackHits)
			assert.Equal(t, "5000000", quote.OutAmount)
		})
	}
}

func TestGetQuoteDoesNotFallBackOnOtherFailures(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("fallback must not be called on a 500")
	}))
	defer fallback.Close()

	client := NewClient(primary.URL, fallback.URL, "", 5*time.Second)
	_, err := client.GetQuote(context.Background(), QuoteParams{SwapMode: "ExactIn"})
	require.Error(t, err)
}

func TestBuildSwapEchoesQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap/v1/swap", r.URL.Path)
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, quoteBody(), string(body["quoteResponse"]))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"swapTransaction":"dGVzdA=="}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", 5*time.Second)
	quote := &Quote{Raw: json.RawMessage(quoteBody())}
	tx, err := client.BuildSwap(context.Background(), SwapBuildParams{
		Quote:            quote,
		UserPublicKey:    "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		WrapAndUnwrapSol: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "dGVzdA==", tx)
}

func TestGetPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("ids"), "So11111111111111111111111111111111111111112")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"So11111111111111111111111111111111111111112":{"price":"150.25"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", server.URL+"/price", 5*time.Second)
	prices, err := client.GetPrices(context.Background(), []string{"So11111111111111111111111111111111111111112"})
	require.NoError(t, err)
	assert.Equal(t, json.Number("150.25"), prices["So11111111111111111111111111111111111111112"])
}
