// Package aggclient talks to the swap aggregator (quote + transaction
// build) and its price feed over HTTP.
package aggclient

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Quote is the aggregator's route/price answer. Raw keeps the untouched
// response body because the swap-build endpoint wants it echoed back
// verbatim as quoteResponse.
type Quote struct {
	InputMint            string          `json:"inputMint"`
	OutputMint           string          `json:"outputMint"`
	InAmount             string          `json:"inAmount"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	SlippageBps          int             `json:"slippageBps"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            json.RawMessage `json:"routePlan"`
	Raw                  json.RawMessage `json:"-"`
}

type QuoteParams struct {
	InputMint   string
	OutputMint  string
	Amount      string // raw integer string; input for ExactIn, output for ExactOut
	SlippageBps int
	SwapMode    string
}

type SwapBuildParams struct {
	Quote                         *Quote
	UserPublicKey                 string
	WrapAndUnwrapSol              bool
	ComputeUnitPriceMicroLamports uint64
}

type Client struct {
	primary  string
	fallback string
	priceURL string
	http     *resty.Client
}

func NewClient(primary, fallback, priceURL string, timeout time.Duration) *Client {
	return &Client{
		primary:  strings.TrimRight(primary, "/"),
		fallback: strings.TrimRight(fallback, "/"),
		priceURL: priceURL,
		http:     resty.New().SetTimeout(timeout),
	}
}

// GetQuote fetches a route quote. Only auth-style rejections from the
// primary host (401, 403, or the aggregator's "not authorized" 400) move
// the request to the fallback host; any other failure is fatal as-is.
func (c *Client) GetQuote(ctx context.Context, p QuoteParams) (*Quote, error) {
	quote, err := c.quoteFrom(ctx, c.primary, p)
	if err == nil {
		return quote, nil
	}
	if c.fallback == "" || !isAuthRejection(err) {
		return nil, err
	}
	return c.quoteFrom(ctx, c.fallback, p)
}

func (c *Client) quoteFrom(ctx context.Context, host string, p QuoteParams) (*Quote, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":   p.InputMint,
			"outputMint":  p.OutputMint,
			"amount":      p.Amount,
			"slippageBps": strconv.Itoa(p.SlippageBps),
			"swapMode":    p.SwapMode,
		}).
		Get(host + "/swap/v1/quote")
	if err != nil {
		return nil, errors.Wrap(err, "aggregator quote request")
	}
	if resp.IsError() {
		return nil, &statusError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}

	var quote Quote
	if err := json.Unmarshal(resp.Body(), &quote); err != nil {
		return nil, errors.Wrap(err, "decode aggregator quote")
	}
	quote.Raw = json.RawMessage(resp.Body())
	return &quote, nil
}

// BuildSwap asks the aggregator for an unsigned transaction for the quote.
func (c *Client) BuildSwap(ctx context.Context, p SwapBuildParams) (string, error) {
	body := map[string]interface{}{
		"quoteResponse":                 p.Quote.Raw,
		"userPublicKey":                 p.UserPublicKey,
		"wrapAndUnwrapSol":              p.WrapAndUnwrapSol,
		"computeUnitPriceMicroLamports": p.ComputeUnitPriceMicroLamports,
	}

	var result struct {
		SwapTransaction string `json:"swapTransaction"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		Post(c.primary + "/swap/v1/swap")
	if err != nil {
		return "", errors.Wrap(err, "aggregator swap build request")
	}
	if resp.IsError() {
		return "", &statusError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	if result.SwapTransaction == "" {
		return "", errors.New("aggregator returned empty swap transaction")
	}
	return result.SwapTransaction, nil
}

// GetPrices queries the price feed for USD prices keyed by mint.
func (c *Client) GetPrices(ctx context.Context, mints []string) (map[string]json.Number, error) {
	var result struct {
		Data map[string]struct {
			Price json.Number `json:"price"`
		} `json:"data"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("ids", strings.Join(mints, ",")).
		SetResult(&result).
		Get(c.priceURL)
	if err != nil {
		return nil, errors.Wrap(err, "price feed request")
	}
	if resp.IsError() {
		return nil, &statusError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}

	prices := make(map[string]json.Number, len(result.Data))
	for mint, entry := range result.Data {
		prices[mint] = entry.Price
	}
	return prices, nil
}

type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return "aggregator status " + strconv.Itoa(e.Status)
}

func isAuthRejection(err error) bool {
	var se *statusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.Status {
	case 401, 403:
		return true
	case 400:
		return strings.Contains(strings.ToLower(se.Body), "not authorized")
	}
	return false
}
