// Package limitorder implements the lifecycle of escrowed limit orders:
// Pending moves to exactly one of Executed, Cancelled or Expired.
package limitorder

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"ammCore/internal/model"
	"ammCore/internal/quote"
	"ammCore/internal/swap"
)

// CreateRequest describes a new order. An empty ID gets a fresh uuid.
type CreateRequest struct {
	ID             string
	Owner          model.Pubkey
	Pool           model.Pool
	SellToken      model.Pubkey
	SellAmount     uint64
	TargetPrice    uint64
	MinimumReceive uint64
	Expiry         time.Duration
}

// Outcome is a committed order transition. Swap is set only on execution;
// Refund is the escrow returned to the owner on cancel or expiry.
type Outcome struct {
	Order          model.LimitOrder
	Swap           *swap.Result
	Refund         uint64
	ExecutionPrice uint64
}

// Create validates req and returns a Pending order. Escrowing SellAmount
// is the caller's job.
func Create(req CreateRequest, now time.Time) (model.LimitOrder, error) {
	if req.SellAmount == 0 || req.TargetPrice == 0 {
		return model.LimitOrder{}, model.ErrInvalidAmount
	}
	if req.Expiry <= 0 {
		return model.LimitOrder{}, model.ErrInvalidExpiryTime
	}
	aToB, err := swap.Direction(req.Pool, req.SellToken)
	if err != nil {
		return model.LimitOrder{}, err
	}
	_, buy := req.Pool.MintsFor(aToB)

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return model.LimitOrder{}, fmt.Errorf("order id %q: %w", id, err)
	}

	return model.LimitOrder{
		ID:             id,
		Address:        model.DeriveOrder(req.Pool.Address, req.Owner, id),
		Owner:          req.Owner,
		Pool:           req.Pool.Address,
		SellToken:      req.SellToken,
		BuyToken:       buy,
		SellAmount:     req.SellAmount,
		TargetPrice:    req.TargetPrice,
		MinimumReceive: req.MinimumReceive,
		CreatedAt:      now.Unix(),
		ExpiresAt:      now.Add(req.Expiry).Unix(),
		Status:         model.OrderPending,
	}, nil
}

func requirePending(status model.OrderStatus) error {
	switch status {
	case model.OrderPending:
		return nil
	case model.OrderExecuted, model.OrderCancelled, model.OrderExpired:
		return model.ErrInvalidOrderStatus
	default:
		panic(fmt.Sprintf("unknown order status %d", uint8(status)))
	}
}

// Cancel lets the owner withdraw a pending order and its escrow.
func Cancel(order model.LimitOrder, requester model.Pubkey) (Outcome, error) {
	if err := requirePending(order.Status); err != nil {
		return Outcome{}, err
	}
	if order.Owner != requester {
		return Outcome{}, model.ErrUnauthorizedOrderOwner
	}
	order.Status = model.OrderCancelled
	return Outcome{Order: order, Refund: order.SellAmount}, nil
}

// TryExecute fills order against pool if the price condition holds. An
// order found past its expiry is moved to Expired and reported without
// error so the caller can commit the refund. Any rejection leaves both
// records untouched.
func TryExecute(order model.LimitOrder, pool model.Pool, now time.Time) (Outcome, error) {
	if err := requirePending(order.Status); err != nil {
		return Outcome{}, err
	}
	if order.ExpiredAt(now) {
		order.Status = model.OrderExpired
		return Outcome{Order: order, Refund: order.SellAmount}, nil
	}
	if order.Pool != pool.Address {
		return Outcome{}, fmt.Errorf("order %s belongs to pool %s, not %s", order.ID, order.Pool, pool.Address)
	}
	aToB, err := swap.Direction(pool, order.SellToken)
	if err != nil {
		return Outcome{}, err
	}

	res, err := swap.Execute(pool, aToB, order.SellAmount, 0)
	if err != nil {
		return Outcome{}, err
	}
	ok, err := quote.MeetsTarget(order.SellAmount, res.AmountOut, order.TargetPrice)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, model.ErrPriceConditionNotMet
	}
	if res.AmountOut < order.MinimumReceive {
		return Outcome{}, model.ErrSlippageTooHigh
	}
	price, err := quote.ExecutionPrice(res.AmountIn, res.AmountOut)
	if err != nil {
		return Outcome{}, err
	}

	order.Status = model.OrderExecuted
	order.ReceivedAmount = res.AmountOut
	return Outcome{Order: order, Swap: &res, ExecutionPrice: price}, nil
}

// Expire force-expires a stale pending order. Sweepers call it for orders
// nobody tried to execute.
func Expire(order model.LimitOrder, now time.Time) (Outcome, error) {
	if err := requirePending(order.Status); err != nil {
		return Outcome{}, err
	}
	if !order.ExpiredAt(now) {
		return Outcome{}, model.ErrInvalidExpiryTime
	}
	order.Status = model.OrderExpired
	return Outcome{Order: order, Refund: order.SellAmount}, nil
}
