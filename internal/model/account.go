package model

// TokenAccount is an owner's available balance of one mint.
type TokenAccount struct {
	Owner   Pubkey `json:"owner"`
	Mint    Pubkey `json:"mint"`
	Balance uint64 `json:"balance,string"`
}

// Debit removes amount or fails with ErrInsufficientBalance.
func (a TokenAccount) Debit(amount uint64) (TokenAccount, error) {
	if amount > a.Balance {
		return a, ErrInsufficientBalance
	}
	a.Balance -= amount
	return a, nil
}

// Credit adds amount or fails with ErrCalculationOverflow.
func (a TokenAccount) Credit(amount uint64) (TokenAccount, error) {
	sum := a.Balance + amount
	if sum < a.Balance {
		return a, ErrCalculationOverflow
	}
	a.Balance = sum
	return a, nil
}
