package quote

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"ammCore/internal/model"
)

// Breakdown exposes every intermediate of a constant-product quote.
type Breakdown struct {
	AmountIn         uint64 `json:"amount_in,string"`
	FeeAmount        uint64 `json:"fee_amount,string"`
	AmountInAfterFee uint64 `json:"amount_in_after_fee,string"`
	K                string `json:"k"`
	NewReserveIn     uint64 `json:"new_reserve_in,string"`
	NewReserveOut    uint64 `json:"new_reserve_out,string"`
	AmountOut        uint64 `json:"amount_out,string"`
}

// SwapOutput prices amountIn against the reserves. The fee is skimmed from
// the input first; the remaining input moves the curve. The post-trade
// output reserve is floor(k/newReserveIn) and must stay positive.
func SwapOutput(reserveIn, reserveOut, amountIn, feeNum, feeDen uint64) (Breakdown, error) {
	if amountIn == 0 {
		return Breakdown{}, model.ErrInvalidAmount
	}
	if reserveIn == 0 || reserveOut == 0 {
		return Breakdown{}, model.ErrInsufficientPoolReserves
	}
	if err := model.ValidateFee(feeNum, feeDen); err != nil {
		return Breakdown{}, err
	}

	fee, err := mulDiv(amountIn, feeNum, feeDen)
	if err != nil {
		return Breakdown{}, err
	}
	afterFee := amountIn - fee

	k := mul(reserveIn, reserveOut)
	newIn := new(uint256.Int).AddUint64(u256(reserveIn), afterFee)
	newOut := new(uint256.Int).Div(k, newIn)

	newReserveIn, err := narrow(newIn)
	if err != nil {
		return Breakdown{}, err
	}
	newReserveOut, err := narrow(newOut)
	if err != nil {
		return Breakdown{}, err
	}
	if newReserveOut == 0 || newReserveOut > reserveOut {
		return Breakdown{}, model.ErrInsufficientLiquidity
	}

	return Breakdown{
		AmountIn:         amountIn,
		FeeAmount:        fee,
		AmountInAfterFee: afterFee,
		K:                k.Dec(),
		NewReserveIn:     newReserveIn,
		NewReserveOut:    newReserveOut,
		AmountOut:        reserveOut - newReserveOut,
	}, nil
}

// SwapQuote is what a trade preview shows.
type SwapQuote struct {
	Pool            model.Pubkey    `json:"pool"`
	IsAToB          bool            `json:"is_a_to_b"`
	SellMint        model.Pubkey    `json:"sell_mint"`
	BuyMint         model.Pubkey    `json:"buy_mint"`
	Breakdown       Breakdown       `json:"breakdown"`
	PriceImpact     decimal.Decimal `json:"price_impact_pct"`
	MinimumReceived uint64          `json:"minimum_received,string"`
	SpotPrice       uint64          `json:"spot_price,string"`
	ExecutionPrice  uint64          `json:"execution_price,string"`
	SlippageBps     uint64          `json:"slippage_bps"`
}

// Quote previews a swap of amountIn against pool with a slippage allowance.
func Quote(pool model.Pool, aToB bool, amountIn, slippageBps uint64) (SwapQuote, error) {
	reserveIn, reserveOut := pool.Reserves(aToB)
	b, err := SwapOutput(reserveIn, reserveOut, amountIn, pool.FeeNumerator, pool.FeeDenominator)
	if err != nil {
		return SwapQuote{}, err
	}
	impact, err := PriceImpact(reserveIn, reserveOut, amountIn, b.AmountOut)
	if err != nil {
		return SwapQuote{}, err
	}
	minimum, err := MinimumReceived(b.AmountOut, slippageBps)
	if err != nil {
		return SwapQuote{}, err
	}
	spot, err := mulDiv(reserveOut, PriceScale, reserveIn)
	if err != nil {
		return SwapQuote{}, err
	}
	execution, err := ExecutionPrice(amountIn, b.AmountOut)
	if err != nil {
		return SwapQuote{}, err
	}
	sell, buy := pool.MintsFor(aToB)
	return SwapQuote{
		Pool:            pool.Address,
		IsAToB:          aToB,
		SellMint:        sell,
		BuyMint:         buy,
		Breakdown:       b,
		PriceImpact:     impact,
		MinimumReceived: minimum,
		SpotPrice:       spot,
		ExecutionPrice:  execution,
		SlippageBps:     slippageBps,
	}, nil
}
