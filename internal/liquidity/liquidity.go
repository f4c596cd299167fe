// Package liquidity applies deposits and withdrawals to a pool and the
// depositor's position. Functions take records by value and return the
// new records; on error the inputs are untouched.
package liquidity

import (
	"fmt"
	"time"

	"ammCore/internal/model"
	"ammCore/internal/quote"
)

// Default fee: 0.3% of the input.
const (
	DefaultFeeNumerator   = 3
	DefaultFeeDenominator = 1000
)

// InitializeParams describes a new pool. Mints may come in either order.
type InitializeParams struct {
	Authority      model.Pubkey
	MintA          model.Pubkey
	MintB          model.Pubkey
	DepositA       uint64
	DepositB       uint64
	FeeNumerator   uint64
	FeeDenominator uint64
	Now            time.Time
}

// AddResult carries the committed pool and position of a deposit.
type AddResult struct {
	Pool     model.Pool
	Position model.Position
	AmountA  uint64
	AmountB  uint64
	Minted   uint64
}

// RemoveResult carries the committed pool and position of a withdrawal.
type RemoveResult struct {
	Pool     model.Pool
	Position model.Position
	AmountA  uint64
	AmountB  uint64
	Burned   uint64
}

// Initialize builds the pool record and applies the bootstrap deposit.
func Initialize(p InitializeParams) (AddResult, error) {
	if p.DepositA == 0 || p.DepositB == 0 {
		return AddResult{}, model.ErrInvalidInitialDeposit
	}
	mintA, mintB, err := model.CanonicalMints(p.MintA, p.MintB)
	if err != nil {
		return AddResult{}, err
	}
	depositA, depositB := p.DepositA, p.DepositB
	if mintA != p.MintA {
		depositA, depositB = depositB, depositA
	}

	num, den := p.FeeNumerator, p.FeeDenominator
	if num == 0 && den == 0 {
		num, den = DefaultFeeNumerator, DefaultFeeDenominator
	}
	if err := model.ValidateFee(num, den); err != nil {
		return AddResult{}, err
	}

	address, err := model.DerivePool(mintA, mintB)
	if err != nil {
		return AddResult{}, err
	}
	pool := model.Pool{
		Address:        address,
		Authority:      p.Authority,
		TokenAMint:     mintA,
		TokenBMint:     mintB,
		TokenAVault:    model.DeriveVault(address, mintA),
		TokenBVault:    model.DeriveVault(address, mintB),
		LpMint:         model.DeriveLpMint(address),
		FeeNumerator:   num,
		FeeDenominator: den,
	}
	return Add(pool, model.NewPosition(address, p.Authority), depositA, depositB, 0, p.Now)
}

// Add deposits (amountA, amountB) and mints shares to position. An empty
// pool accepts any positive pair; otherwise the pair must match the pool
// ratio within quote.RatioTolerancePct.
func Add(pool model.Pool, position model.Position, amountA, amountB, minLp uint64, now time.Time) (AddResult, error) {
	if position.Pool != pool.Address {
		return AddResult{}, fmt.Errorf("position pool %s does not match pool %s", position.Pool, pool.Address)
	}
	bootstrap := pool.TotalLpSupply == 0
	if amountA == 0 || amountB == 0 {
		if bootstrap {
			return AddResult{}, model.ErrInvalidInitialDeposit
		}
		return AddResult{}, model.ErrInvalidAmount
	}
	if !bootstrap {
		if err := quote.CheckRatio(amountA, amountB, pool.ReserveA, pool.ReserveB); err != nil {
			return AddResult{}, err
		}
	}

	minted, err := quote.LpTokensForDeposit(amountA, amountB, pool.ReserveA, pool.ReserveB, pool.TotalLpSupply)
	if err != nil {
		return AddResult{}, err
	}
	if minted == 0 || minted < minLp {
		return AddResult{}, model.ErrSlippageTooHigh
	}

	next := pool
	if next.ReserveA, err = quote.AddU64(pool.ReserveA, amountA); err != nil {
		return AddResult{}, err
	}
	if next.ReserveB, err = quote.AddU64(pool.ReserveB, amountB); err != nil {
		return AddResult{}, err
	}
	if next.TotalLpSupply, err = quote.AddU64(pool.TotalLpSupply, minted); err != nil {
		return AddResult{}, err
	}

	pos := position
	if pos.LpTokens, err = quote.AddU64(position.LpTokens, minted); err != nil {
		return AddResult{}, err
	}
	if position.LpTokens == 0 {
		pos.DepositTimestamp = now.Unix()
		if pos.LastClaimTimestamp == 0 {
			pos.LastClaimTimestamp = now.Unix()
		}
	}

	return AddResult{
		Pool:     next,
		Position: pos,
		AmountA:  amountA,
		AmountB:  amountB,
		Minted:   minted,
	}, nil
}

// Remove burns lp shares from position and releases the proportional reserves.
func Remove(pool model.Pool, position model.Position, lp, minA, minB uint64) (RemoveResult, error) {
	if position.Pool != pool.Address {
		return RemoveResult{}, fmt.Errorf("position pool %s does not match pool %s", position.Pool, pool.Address)
	}
	if lp == 0 || lp > position.LpTokens || lp > pool.TotalLpSupply {
		return RemoveResult{}, model.ErrInsufficientLpBalance
	}

	amountA, amountB, err := quote.WithdrawAmounts(lp, pool.ReserveA, pool.ReserveB, pool.TotalLpSupply)
	if err != nil {
		return RemoveResult{}, err
	}
	if amountA < minA || amountB < minB {
		return RemoveResult{}, model.ErrSlippageTooHigh
	}

	next := pool
	next.ReserveA = pool.ReserveA - amountA
	next.ReserveB = pool.ReserveB - amountB
	next.TotalLpSupply = pool.TotalLpSupply - lp

	pos := position
	pos.LpTokens = position.LpTokens - lp

	return RemoveResult{
		Pool:     next,
		Position: pos,
		AmountA:  amountA,
		AmountB:  amountB,
		Burned:   lp,
	}, nil
}
