package model

// Pool is the ledger record for one token pair. Vault balances equal the
// reserves; the LP mint supply equals TotalLpSupply.
type Pool struct {
	Address        Pubkey `json:"address"`
	Authority      Pubkey `json:"authority"`
	TokenAMint     Pubkey `json:"token_a_mint"`
	TokenBMint     Pubkey `json:"token_b_mint"`
	TokenAVault    Pubkey `json:"token_a_vault"`
	TokenBVault    Pubkey `json:"token_b_vault"`
	LpMint         Pubkey `json:"lp_mint"`
	ReserveA       uint64 `json:"reserve_a,string"`
	ReserveB       uint64 `json:"reserve_b,string"`
	TotalLpSupply  uint64 `json:"total_lp_supply,string"`
	FeeNumerator   uint64 `json:"fee_numerator"`
	FeeDenominator uint64 `json:"fee_denominator"`
	Bump           uint8  `json:"bump"`
}

// Side names a token position within a pool.
type Side uint8

const (
	SideNone Side = iota
	SideA
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "a"
	case SideB:
		return "b"
	default:
		return "none"
	}
}

// ValidateFee checks a fee fraction: 0 <= num < den.
func ValidateFee(num, den uint64) error {
	if den == 0 || num >= den {
		return ErrInvalidFeeParameters
	}
	return nil
}

// Validate checks structural invariants of a stored pool.
func (p Pool) Validate() error {
	if !p.TokenAMint.Less(p.TokenBMint) {
		return ErrIdenticalMints
	}
	if err := ValidateFee(p.FeeNumerator, p.FeeDenominator); err != nil {
		return err
	}
	empty := p.ReserveA == 0 && p.ReserveB == 0
	if (p.TotalLpSupply == 0) != empty {
		return ErrInsufficientPoolReserves
	}
	if !empty && (p.ReserveA == 0 || p.ReserveB == 0) {
		return ErrInsufficientPoolReserves
	}
	return nil
}

// Reserves returns (input, output) reserves for a swap direction.
func (p Pool) Reserves(aToB bool) (uint64, uint64) {
	if aToB {
		return p.ReserveA, p.ReserveB
	}
	return p.ReserveB, p.ReserveA
}

// MintsFor returns (sell, buy) mints for a swap direction.
func (p Pool) MintsFor(aToB bool) (Pubkey, Pubkey) {
	if aToB {
		return p.TokenAMint, p.TokenBMint
	}
	return p.TokenBMint, p.TokenAMint
}

func (p Pool) SideOf(mint Pubkey) Side {
	switch mint {
	case p.TokenAMint:
		return SideA
	case p.TokenBMint:
		return SideB
	default:
		return SideNone
	}
}

// DirectionFor maps a sell mint to the aToB flag.
func (p Pool) DirectionFor(sellMint Pubkey) (bool, error) {
	switch p.SideOf(sellMint) {
	case SideA:
		return true, nil
	case SideB:
		return false, nil
	default:
		return false, ErrInvalidTokenMint
	}
}
