package alert

import (
	"context"
	"time"

	"github.com/dchamindu826/Rider-App/internal/model"
)

// OrderMutator is the backend's order write surface. Every call must be
// conditional on the order's current status and assignee; the backend
// reports a lost claim race as errs.ErrClaimConflict.
type OrderMutator interface {
	ClaimOrder(ctx context.Context, orderID, riderID string) (model.Order, error)
	StartDelivery(ctx context.Context, orderID, riderID string) (model.Order, error)
	CancelOrder(ctx context.Context, orderID, riderID, reason string) (model.Order, error)
	CompleteOrder(ctx context.Context, orderID, riderID string) (model.Order, error)
}

// Resolver turns a rider's decisions into backend mutations.
type Resolver struct {
	orders  OrderMutator
	riderID string
	timeout time.Duration
}

func NewResolver(orders OrderMutator, riderID string, timeout time.Duration) *Resolver {
	return &Resolver{orders: orders, riderID: riderID, timeout: timeout}
}

func (r *Resolver) Claim(ctx context.Context, orderID string) (model.Order, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.orders.ClaimOrder(ctx, orderID, r.riderID)
}

// Collect marks the food as picked up.
func (r *Resolver) Collect(ctx context.Context, orderID string) (model.Order, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.orders.StartDelivery(ctx, orderID, r.riderID)
}

// Cancel validates the reason before touching the backend.
func (r *Resolver) Cancel(ctx context.Context, orderID string, req model.CancelRequest) (model.Order, error) {
	reason, err := req.ResolveReason()
	if err != nil {
		return model.Order{}, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.orders.CancelOrder(ctx, orderID, r.riderID, reason)
}

// Complete closes the order and pays the rider in one backend transaction.
func (r *Resolver) Complete(ctx context.Context, orderID string) (model.Order, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.orders.CompleteOrder(ctx, orderID, r.riderID)
}

func (r *Resolver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
