package service

import (
	"context"
	"math/big"

	"github.com/mr-tron/base58"

	"custodial_swap_back/models"
)

// Slippage must sit in [1, 500] bps; anything above 200 is allowed but
// flagged so the caller sees what they asked for.
const (
	minSlippageBps  = 1
	maxSlippageBps  = 500
	warnSlippageBps = 200
)

// ValidationResult separates fatal errors (any one blocks the swap) from
// warnings (surfaced but non-blocking).
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []string
}

func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

type Validator struct {
	chain      ChainClient
	feeReserve *big.Int
}

func NewValidator(chain ChainClient, feeReserve *big.Int) *Validator {
	if feeReserve == nil || feeReserve.Sign() < 0 {
		feeReserve = big.NewInt(0)
	}
	return &Validator{chain: chain, feeReserve: feeReserve}
}

// Validate gates a quoted swap before anything touches the chain. The
// returned error is reserved for lookup failures (integration errors);
// verdicts about the swap itself go into the result.
func (v *Validator) Validate(ctx context.Context, sc *models.SwapContext) (ValidationResult, error) {
	var res ValidationResult

	for _, mint := range []string{sc.InputMint, sc.OutputMint} {
		if !wellFormedMint(mint) {
			res.Errors = append(res.Errors, validationErr(CodeInvalidMint, "malformed mint %q", mint))
		}
	}

	switch {
	case sc.SlippageBps < minSlippageBps || sc.SlippageBps > maxSlippageBps:
		res.Errors = append(res.Errors, validationErr(CodeInvalidSlippage,
			"slippage %d bps outside [%d, %d]", sc.SlippageBps, minSlippageBps, maxSlippageBps))
	case sc.SlippageBps > warnSlippageBps:
		res.Warnings = append(res.Warnings, "slippage above 200 bps")
	}

	if !res.OK() {
		return res, nil
	}

	if sc.Direction == models.SolToToken {
		balance, err := v.chain.GetSolBalance(ctx, sc.WalletAddress)
		if err != nil {
			return res, integrationErr("balance lookup", err)
		}
		remaining := new(big.Int).Sub(balance, sc.RawInAmount)
		switch {
		case remaining.Sign() < 0:
			res.Errors = append(res.Errors, validationErr(CodeInsufficientBalance,
				"spend of %s lamports exceeds balance %s", sc.RawInAmount, balance))
		case remaining.Cmp(v.feeReserve) < 0:
			res.Warnings = append(res.Warnings, "remaining balance below fee reserve")
		}
	} else {
		balance, err := v.chain.GetTokenBalance(ctx, sc.WalletAddress, sc.InputMint)
		if err != nil {
			return res, integrationErr("token balance lookup", err)
		}
		if sc.RawInAmount.Cmp(balance) > 0 {
			res.Errors = append(res.Errors, validationErr(CodeInsufficientBalance,
				"sell amount %s exceeds token balance %s", sc.RawInAmount, balance))
		}
	}

	return res, nil
}

func wellFormedMint(mint string) bool {
	raw, err := base58.Decode(mint)
	return err == nil && len(raw) == 32
}
