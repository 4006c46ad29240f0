// Package solclient wraps the Solana JSON-RPC client with the few calls
// the swap pipeline needs: balances, mint decimals, submit, confirm.
package solclient

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	URL             string
	Commitment      string
	SendRetries     int
	SendRetryPause  time.Duration
	ConfirmAttempts int
	ConfirmInterval time.Duration
}

type Client struct {
	rpc *rpc.Client
	cfg Config
}

func New(cfg Config) *Client {
	if cfg.SendRetries <= 0 {
		cfg.SendRetries = 3
	}
	if cfg.SendRetryPause <= 0 {
		cfg.SendRetryPause = time.Second
	}
	if cfg.ConfirmAttempts <= 0 {
		cfg.ConfirmAttempts = 30
	}
	if cfg.ConfirmInterval <= 0 {
		cfg.ConfirmInterval = 2 * time.Second
	}
	return &Client{rpc: rpc.New(cfg.URL), cfg: cfg}
}

func (c *Client) commitment() rpc.CommitmentType {
	switch c.cfg.Commitment {
	case "processed":
		return rpc.CommitmentProcessed
	case "finalized":
		return rpc.CommitmentFinalized
	}
	return rpc.CommitmentConfirmed
}

func (c *Client) GetSolBalance(ctx context.Context, owner string) (*big.Int, error) {
	pk, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, errors.Wrap(err, "parse owner")
	}
	res, err := c.rpc.GetBalance(ctx, pk, c.commitment())
	if err != nil {
		return nil, errors.Wrap(err, "get balance")
	}
	return new(big.Int).SetUint64(res.Value), nil
}

// GetTokenBalance sums the raw balance over all of the owner's token
// accounts for the mint.
func (c *Client) GetTokenBalance(ctx context.Context, owner, mint string) (*big.Int, error) {
	ownerPk, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, errors.Wrap(err, "parse owner")
	}
	mintPk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, errors.Wrap(err, "parse mint")
	}

	res, err := c.rpc.GetTokenAccountsByOwner(ctx, ownerPk,
		&rpc.GetTokenAccountsConfig{Mint: &mintPk},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingJSONParsed})
	if err != nil {
		return nil, errors.Wrap(err, "get token accounts")
	}

	total := new(big.Int)
	for _, acct := range res.Value {
		var parsed struct {
			Parsed struct {
				Info struct {
					TokenAmount struct {
						Amount string `json:"amount"`
					} `json:"tokenAmount"`
				} `json:"info"`
			} `json:"parsed"`
		}
		if err := json.Unmarshal(acct.Account.Data.GetRawJSON(), &parsed); err != nil {
			return nil, errors.Wrap(err, "decode token account")
		}
		amount, ok := new(big.Int).SetString(parsed.Parsed.Info.TokenAmount.Amount, 10)
		if !ok {
			return nil, errors.Errorf("bad token amount %q", parsed.Parsed.Info.TokenAmount.Amount)
		}
		total.Add(total, amount)
	}
	return total, nil
}

func (c *Client) GetMintDecimals(ctx context.Context, mint string) (uint8, error) {
	mintPk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, errors.Wrap(err, "parse mint")
	}
	res, err := c.rpc.GetTokenSupply(ctx, mintPk, c.commitment())
	if err != nil {
		return 0, errors.Wrap(err, "get token supply")
	}
	if res.Value == nil {
		return 0, errors.New("empty token supply response")
	}
	return res.Value.Decimals, nil
}

// SendTransaction submits a signed transaction, retrying the same bytes a
// bounded number of times. The embedded blockhash makes a duplicate of the
// same signed transaction idempotent; the caller never re-signs.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	opts := rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: c.commitment(),
	}

	var sig solana.Signature
	var err error
	for attempt := 1; attempt <= c.cfg.SendRetries; attempt++ {
		sig, err = c.rpc.SendTransactionWithOpts(ctx, tx, opts)
		if err == nil {
			return sig, nil
		}
		logrus.WithError(err).Warnf("send transaction attempt %d/%d failed", attempt, c.cfg.SendRetries)
		if attempt < c.cfg.SendRetries {
			select {
			case <-ctx.Done():
				return sig, ctx.Err()
			case <-time.After(c.cfg.SendRetryPause):
			}
		}
	}
	return sig, errors.Wrap(err, "send transaction")
}

// WaitForConfirmation polls signature status for a bounded number of
// attempts. Returning (false, nil) means the transaction is submitted but
// unconfirmed; it is not an error and must not trigger a resubmission.
func (c *Client) WaitForConfirmation(ctx context.Context, sig solana.Signature) (bool, error) {
	for attempt := 0; attempt < c.cfg.ConfirmAttempts; attempt++ {
		res, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
		if err == nil && len(res.Value) > 0 && res.Value[0] != nil {
			st := res.Value[0]
			if st.Err != nil {
				return false, errors.Errorf("transaction failed on chain: %v", st.Err)
			}
			switch st.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return true, nil
			}
		}

		select {
		case <-ctx.Done():
			return false, nil
		case <-time.After(c.cfg.ConfirmInterval):
		}
	}
	return false, nil
}
