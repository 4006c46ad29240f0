package service

import (
	"context"

	"custodial_swap_back/models"
)

// FeeHook runs after a successful swap. The platform currently charges
// nothing, but the hook stays wired through the pipeline so a real fee
// transfer can be dropped in without touching the executor. A hook failure
// is logged and never rolled back; the swap already happened.
type FeeHook interface {
	Collect(ctx context.Context, sc *models.SwapContext, result *models.TradeResult) error
}

type NoopFee struct{}

func (NoopFee) Collect(ctx context.Context, sc *models.SwapContext, result *models.TradeResult) error {
	return nil
}
