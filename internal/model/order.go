package model

import (
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of a limit order.
type OrderStatus uint8

const (
	OrderPending OrderStatus = iota
	OrderExecuted
	OrderCancelled
	OrderExpired
)

func (s OrderStatus) String() string {
	switch s {
	case OrderPending:
		return "pending"
	case OrderExecuted:
		return "executed"
	case OrderCancelled:
		return "cancelled"
	case OrderExpired:
		return "expired"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderPending:
		return false
	case OrderExecuted, OrderCancelled, OrderExpired:
		return true
	default:
		panic(fmt.Sprintf("unknown order status %d", uint8(s)))
	}
}

// ParseOrderStatus is the inverse of String.
func ParseOrderStatus(input string) (OrderStatus, error) {
	switch input {
	case "pending":
		return OrderPending, nil
	case "executed":
		return OrderExecuted, nil
	case "cancelled":
		return OrderCancelled, nil
	case "expired":
		return OrderExpired, nil
	default:
		return 0, fmt.Errorf("unknown order status %q", input)
	}
}

func (s OrderStatus) MarshalText() ([]byte, error) {
	if s > OrderExpired {
		return nil, fmt.Errorf("unknown order status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *OrderStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// LimitOrder escrows SellAmount of SellToken until the pool pays at least
// TargetPrice (6-decimal fixed point, buy units per sell unit).
type LimitOrder struct {
	ID             string      `json:"id"`
	Address        Pubkey      `json:"address"`
	Owner          Pubkey      `json:"owner"`
	Pool           Pubkey      `json:"pool"`
	SellToken      Pubkey      `json:"sell_token"`
	BuyToken       Pubkey      `json:"buy_token"`
	SellAmount     uint64      `json:"sell_amount,string"`
	TargetPrice    uint64      `json:"target_price,string"`
	MinimumReceive uint64      `json:"minimum_receive,string"`
	CreatedAt      int64       `json:"created_at"`
	ExpiresAt      int64       `json:"expires_at"`
	Status         OrderStatus `json:"status"`
	ReceivedAmount uint64      `json:"received_amount,string"`
	Bump           uint8       `json:"bump"`
}

// ExpiredAt reports whether the order is past its expiry at now.
func (o LimitOrder) ExpiredAt(now time.Time) bool {
	return now.Unix() > o.ExpiresAt
}
