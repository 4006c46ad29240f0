package models

import "math/big"

type SwapDirection string

const (
	SolToToken   SwapDirection = "SOL_TO_TOKEN"
	TokenToSol   SwapDirection = "TOKEN_TO_SOL"
	TokenToToken SwapDirection = "TOKEN_TO_TOKEN"
)

type SwapMode string

const (
	ExactIn  SwapMode = "ExactIn"
	ExactOut SwapMode = "ExactOut"
)

// SwapRequest is what a caller submits. Amount is a UI decimal string;
// conversion to raw units happens against the resolved mint decimals.
type SwapRequest struct {
	InputMint     string `json:"input_mint" binding:"required"`
	OutputMint    string `json:"output_mint" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	Mode          string `json:"mode"`
	SlippageBps   int    `json:"slippage_bps"`
	WalletAddress string `json:"wallet_address"`
}

// SwapContext carries the per-request swap state. It is never persisted
// and all amounts stay raw big integers until presentation.
type SwapContext struct {
	WalletAddress  string
	Direction      SwapDirection
	Mode           SwapMode
	InputMint      string
	OutputMint     string
	InputDecimals  uint8
	OutputDecimals uint8
	RawInAmount    *big.Int
	RawOutAmount   *big.Int
	SlippageBps    int
	Warnings       []string
}

// AmountBreakdown presents one raw amount alongside its UI form.
type AmountBreakdown struct {
	AmountRaw string `json:"amountRaw"`
	AmountUI  string `json:"amountUi"`
	Decimals  uint8  `json:"decimals"`
	AmountUSD string `json:"amountUsd,omitempty"`
}

type FeeBreakdown struct {
	Mint      string `json:"mint"`
	AmountRaw string `json:"amountRaw"`
	AmountUI  string `json:"amountUi"`
	Bps       int    `json:"bps"`
}

// QuotePreview is the dry-run answer for a swap the caller has not
// committed to yet.
type QuotePreview struct {
	WalletAddress  string          `json:"wallet_address"`
	Direction      SwapDirection   `json:"direction"`
	Mode           SwapMode        `json:"mode"`
	Input          AmountBreakdown `json:"input"`
	Output         AmountBreakdown `json:"output"`
	PriceImpactPct string          `json:"price_impact_pct,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`
}

// TradeResult is the caller-facing outcome of one swap. A present signature
// with Confirmed=false means the transaction was submitted but confirmation
// timed out; the caller reconciles out of band instead of resubmitting.
type TradeResult struct {
	Signature      string          `json:"signature"`
	WalletAddress  string          `json:"wallet_address"`
	Input          AmountBreakdown `json:"input"`
	Output         AmountBreakdown `json:"output"`
	NetOutput      AmountBreakdown `json:"net_output"`
	Fee            *FeeBreakdown   `json:"fee,omitempty"`
	PriceImpactPct string          `json:"price_impact_pct,omitempty"`
	SolscanURL     string          `json:"solscan_url"`
	Confirmed      bool            `json:"confirmed"`
	Status         string          `json:"status"`
	Warnings       []string        `json:"warnings,omitempty"`
}
