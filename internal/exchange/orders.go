package exchange

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"ammCore/internal/ledger"
	"ammCore/internal/limitorder"
	"ammCore/internal/model"
	"ammCore/internal/quote"
)

const day = 24 * time.Hour

type CreateLimitOrderRequest struct {
	OrderID        string
	Pool           model.Pubkey
	Owner          model.Pubkey
	SellToken      model.Pubkey
	SellAmount     uint64
	TargetPrice    uint64
	MinimumReceive uint64
	ExpiryDays     int64
}

// CreateLimitOrder escrows SellAmount from the owner and records a
// pending order.
func (s *Service) CreateLimitOrder(ctx context.Context, req CreateLimitOrderRequest) (model.LimitOrder, error) {
	if req.ExpiryDays <= 0 || req.ExpiryDays > math.MaxInt64/int64(day) {
		s.observe(model.OpCreateLimitOrder, model.ErrInvalidExpiryTime)
		return model.LimitOrder{}, model.ErrInvalidExpiryTime
	}
	now := s.now()
	current, err := s.Pool(ctx, req.Pool)
	if err != nil {
		s.observe(model.OpCreateLimitOrder, err)
		return model.LimitOrder{}, err
	}
	keys := []string{
		ledger.PoolKey(req.Pool),
		ledger.AccountKey(req.Owner, req.SellToken),
	}

	var order model.LimitOrder
	_, err = s.commit(ctx, model.OpCreateLimitOrder, keys, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		order, err = limitorder.Create(limitorder.CreateRequest{
			ID:             req.OrderID,
			Owner:          req.Owner,
			Pool:           current,
			SellToken:      req.SellToken,
			SellAmount:     req.SellAmount,
			TargetPrice:    req.TargetPrice,
			MinimumReceive: req.MinimumReceive,
			Expiry:         time.Duration(req.ExpiryDays) * day,
		}, now)
		if err != nil {
			return err
		}
		if _, err := tx.Order(ctx, order.ID); err == nil {
			return fmt.Errorf("order %s already exists: %w", order.ID, model.ErrInvalidOrderStatus)
		}
		if err := debit(ctx, tx, req.Owner, order.SellToken, order.SellAmount); err != nil {
			return err
		}
		if err := tx.PutOrder(ctx, order); err != nil {
			return err
		}
		return emit(tx, model.EventLimitOrderCreated, order.Pool, now, model.LimitOrderCreatedData{
			OrderID:        order.ID,
			Owner:          order.Owner,
			Pool:           order.Pool,
			SellToken:      order.SellToken,
			BuyToken:       order.BuyToken,
			SellAmount:     order.SellAmount,
			TargetPrice:    order.TargetPrice,
			MinimumReceive: order.MinimumReceive,
			ExpiresAt:      order.ExpiresAt,
		})
	})
	if err != nil {
		return model.LimitOrder{}, err
	}

	s.observeOrder(order.Status)
	s.logger.Info("limit order created",
		zap.String("order_id", order.ID),
		zap.String("pool", order.Pool.String()),
		zap.String("owner", order.Owner.String()),
		zap.Uint64("sell_amount", order.SellAmount),
		zap.String("target_price", quote.FormatPrice(order.TargetPrice)),
		zap.Int64("expires_at", order.ExpiresAt),
	)
	return order, nil
}

// CancelLimitOrder refunds a pending order's escrow to its owner.
func (s *Service) CancelLimitOrder(ctx context.Context, orderID string, requester model.Pubkey) (limitorder.Outcome, error) {
	now := s.now()
	current, err := s.Order(ctx, orderID)
	if err != nil {
		s.observe(model.OpCancelLimitOrder, err)
		return limitorder.Outcome{}, err
	}
	keys := []string{
		ledger.PoolKey(current.Pool),
		ledger.AccountKey(current.Owner, current.SellToken),
	}

	var out limitorder.Outcome
	_, err = s.commit(ctx, model.OpCancelLimitOrder, keys, func(ctx context.Context, tx ledger.Tx) error {
		order, err := tx.Order(ctx, orderID)
		if err != nil {
			return err
		}
		if out, err = limitorder.Cancel(order, requester); err != nil {
			return err
		}
		if err := credit(ctx, tx, order.Owner, order.SellToken, out.Refund); err != nil {
			return err
		}
		if err := tx.PutOrder(ctx, out.Order); err != nil {
			return err
		}
		return emit(tx, model.EventLimitOrderCancelled, order.Pool, now, model.LimitOrderCancelledData{
			OrderID:        order.ID,
			Owner:          order.Owner,
			RefundedAmount: out.Refund,
			CancelledAt:    now.Unix(),
		})
	})
	if err != nil {
		return limitorder.Outcome{}, err
	}

	s.observeOrder(out.Order.Status)
	s.logger.Info("limit order cancelled", zap.String("order_id", orderID), zap.Uint64("refund", out.Refund))
	return out, nil
}

// TryExecuteLimitOrder fills the order if its price condition holds. An
// order found expired is settled as Expired and reported without error.
func (s *Service) TryExecuteLimitOrder(ctx context.Context, orderID string) (limitorder.Outcome, error) {
	return s.tryExecute(ctx, orderID, s.now())
}

func (s *Service) tryExecute(ctx context.Context, orderID string, now time.Time) (limitorder.Outcome, error) {
	current, err := s.Order(ctx, orderID)
	if err != nil {
		s.observe(model.OpTryExecuteLimitOrder, err)
		return limitorder.Outcome{}, err
	}
	keys := []string{
		ledger.PoolKey(current.Pool),
		ledger.AccountKey(current.Owner, current.SellToken),
		ledger.AccountKey(current.Owner, current.BuyToken),
	}

	var out limitorder.Outcome
	_, err = s.commit(ctx, model.OpTryExecuteLimitOrder, keys, func(ctx context.Context, tx ledger.Tx) error {
		order, err := tx.Order(ctx, orderID)
		if err != nil {
			return err
		}
		pool, err := tx.Pool(ctx, order.Pool)
		if err != nil {
			return err
		}
		if out, err = limitorder.TryExecute(order, pool, now); err != nil {
			return err
		}
		return s.applyOutcome(ctx, tx, out, now)
	})
	if err != nil {
		return limitorder.Outcome{}, err
	}
	s.afterOutcome(ctx, out)
	return out, nil
}

// expire force-expires a stale order on behalf of the sweeper.
func (s *Service) expire(ctx context.Context, orderID string, now time.Time) (limitorder.Outcome, error) {
	current, err := s.Order(ctx, orderID)
	if err != nil {
		return limitorder.Outcome{}, err
	}
	keys := []string{
		ledger.PoolKey(current.Pool),
		ledger.AccountKey(current.Owner, current.SellToken),
	}

	var out limitorder.Outcome
	_, err = s.commit(ctx, "expire_limit_order", keys, func(ctx context.Context, tx ledger.Tx) error {
		order, err := tx.Order(ctx, orderID)
		if err != nil {
			return err
		}
		if out, err = limitorder.Expire(order, now); err != nil {
			return err
		}
		return s.applyOutcome(ctx, tx, out, now)
	})
	if err != nil {
		return limitorder.Outcome{}, err
	}
	s.afterOutcome(ctx, out)
	return out, nil
}

// applyOutcome stages the balance moves and events of an execution or
// expiry. The sell amount was escrowed at creation, so an execution only
// credits the proceeds.
func (s *Service) applyOutcome(ctx context.Context, tx ledger.Tx, out limitorder.Outcome, now time.Time) error {
	order := out.Order
	switch order.Status {
	case model.OrderExecuted:
		if err := tx.PutPool(ctx, out.Swap.Pool); err != nil {
			return err
		}
		if err := credit(ctx, tx, order.Owner, order.BuyToken, order.ReceivedAmount); err != nil {
			return err
		}
		if err := emit(tx, model.EventSwapExecuted, order.Pool, now, swapData(order.Owner, *out.Swap)); err != nil {
			return err
		}
		if err := emit(tx, model.EventLimitOrderExecuted, order.Pool, now, model.LimitOrderExecutedData{
			OrderID:        order.ID,
			Owner:          order.Owner,
			Pool:           order.Pool,
			SellAmount:     order.SellAmount,
			ReceiveAmount:  order.ReceivedAmount,
			ExecutionPrice: out.ExecutionPrice,
			ExecutedAt:     now.Unix(),
		}); err != nil {
			return err
		}
	case model.OrderExpired:
		if err := credit(ctx, tx, order.Owner, order.SellToken, out.Refund); err != nil {
			return err
		}
		if err := emit(tx, model.EventLimitOrderExpired, order.Pool, now, model.LimitOrderExpiredData{
			OrderID:        order.ID,
			Owner:          order.Owner,
			RefundedAmount: out.Refund,
			ExpiredAt:      now.Unix(),
		}); err != nil {
			return err
		}
	case model.OrderPending, model.OrderCancelled:
		return fmt.Errorf("unexpected order outcome %s", order.Status)
	default:
		panic(fmt.Sprintf("unknown order status %d", uint8(order.Status)))
	}
	return tx.PutOrder(ctx, order)
}

func (s *Service) afterOutcome(ctx context.Context, out limitorder.Outcome) {
	s.observeOrder(out.Order.Status)
	if out.Swap != nil {
		s.publishPool(ctx, out.Swap.Pool)
		s.observeSwap(*out.Swap)
	}
	s.logger.Info("limit order settled",
		zap.String("order_id", out.Order.ID),
		zap.Stringer("status", out.Order.Status),
		zap.Uint64("received", out.Order.ReceivedAmount),
		zap.Uint64("refund", out.Refund),
	)
}

func (s *Service) observeOrder(status model.OrderStatus) {
	if s.metrics != nil {
		s.metrics.OrderOutcomes.WithLabelValues(status.String()).Inc()
	}
}
