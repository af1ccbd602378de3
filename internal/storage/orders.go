package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dchamindu826/Rider-App/internal/errs"
	"github.com/dchamindu826/Rider-App/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const orderColumns = `id, status, food_total, delivery_fee, customer_name,
	pickup_name, pickup_address, pickup_phone, pickup_lat, pickup_lng,
	dropoff_name, dropoff_contact, dropoff_address, dropoff_lat, dropoff_lng,
	assigned_rider, cancellation_reason, cancelled_by, created_at, updated_at`

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	var pLat, pLng, dLat, dLng *float64

	err := row.Scan(&o.ID, &o.Status, &o.FoodTotal, &o.DeliveryFee, &o.CustomerName,
		&o.Pickup.Name, &o.Pickup.Address, &o.Pickup.Phone, &pLat, &pLng,
		&o.Dropoff.ReceiverName, &o.Dropoff.ReceiverContact, &o.Dropoff.Address, &dLat, &dLng,
		&o.AssignedRider, &o.CancellationReason, &o.CancelledBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return model.Order{}, err
	}
	if !o.Status.IsValid() {
		return model.Order{}, fmt.Errorf("order %s has unknown status %q", o.ID, o.Status)
	}

	o.Pickup.Location = point(pLat, pLng)
	o.Dropoff.Location = point(dLat, dLng)
	return o, nil
}

func (s *PostgresStorage) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	list := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return list, nil
}

// NextAvailableOrder returns the oldest available order not in exclude, or
// nil when there is none.
func (s *PostgresStorage) NextAvailableOrder(ctx context.Context, exclude []string) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = 'available' AND NOT (id = ANY($1))
		ORDER BY created_at, id
		LIMIT 1`

	if exclude == nil {
		exclude = []string{}
	}

	o, err := scanOrder(s.db.QueryRow(ctx, query, exclude))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("next available order: %w", err)
	}

	return &o, nil
}

func (s *PostgresStorage) ListAvailableOrders(ctx context.Context) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = 'available'
		ORDER BY created_at, id`

	return s.queryOrders(ctx, query)
}

func (s *PostgresStorage) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(s.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, errs.ErrOrderNotFound
		}
		return model.Order{}, fmt.Errorf("get order: %w", err)
	}

	return o, nil
}

// GetActiveOrder returns the rider's assigned or en-route order, or nil.
func (s *PostgresStorage) GetActiveOrder(ctx context.Context, riderID string) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE assigned_rider = $1 AND status IN ('assigned', 'en_route')
		LIMIT 1`

	o, err := scanOrder(s.db.QueryRow(ctx, query, riderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active order: %w", err)
	}

	return &o, nil
}

// ClaimOrder assigns an available order to the rider. The update only
// matches while the order is still available and the rider holds nothing
// else, so of two concurrent claims exactly one succeeds.
func (s *PostgresStorage) ClaimOrder(ctx context.Context, orderID, riderID string) (model.Order, error) {
	query := `
		UPDATE orders
		SET status = 'assigned', assigned_rider = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'available'
			AND NOT EXISTS (
				SELECT 1 FROM orders
				WHERE assigned_rider = $2 AND status IN ('assigned', 'en_route')
			)
		RETURNING ` + orderColumns

	o, err := scanOrder(s.db.QueryRow(ctx, query, orderID, riderID))
	if err == nil {
		return o, nil
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		// orders_one_active_per_rider
		return model.Order{}, errs.ErrActiveOrderExists
	case !errors.Is(err, pgx.ErrNoRows):
		return model.Order{}, fmt.Errorf("claim order: %w", err)
	}

	return model.Order{}, s.claimFailure(ctx, orderID, riderID)
}

func (s *PostgresStorage) claimFailure(ctx context.Context, orderID, riderID string) error {
	const query = `
		SELECT
			(SELECT status FROM orders WHERE id = $1),
			EXISTS (SELECT 1 FROM orders WHERE assigned_rider = $2 AND status IN ('assigned', 'en_route'))`

	var status *string
	var busy bool
	if err := s.db.QueryRow(ctx, query, orderID, riderID).Scan(&status, &busy); err != nil {
		return fmt.Errorf("diagnose claim: %w", err)
	}

	switch {
	case status == nil:
		return errs.ErrOrderNotFound
	case busy:
		return errs.ErrActiveOrderExists
	default:
		return errs.ErrClaimConflict
	}
}

// StartDelivery moves an assigned order to en_route once the food is
// collected.
func (s *PostgresStorage) StartDelivery(ctx context.Context, orderID, riderID string) (model.Order, error) {
	query := `
		UPDATE orders
		SET status = 'en_route', updated_at = NOW()
		WHERE id = $1 AND assigned_rider = $2 AND status IN (` + statusList(sourcesOf(model.EnRoute)) + `)
		RETURNING ` + orderColumns

	o, err := scanOrder(s.db.QueryRow(ctx, query, orderID, riderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, s.transitionFailure(ctx, orderID, riderID)
		}
		return model.Order{}, fmt.Errorf("start delivery: %w", err)
	}

	return o, nil
}

func (s *PostgresStorage) CancelOrder(ctx context.Context, orderID, riderID, reason string) (model.Order, error) {
	query := `
		UPDATE orders
		SET status = 'cancelled', cancellation_reason = $3, cancelled_by = $2, updated_at = NOW()
		WHERE id = $1 AND assigned_rider = $2 AND status IN (` + statusList(sourcesOf(model.Cancelled)) + `)
		RETURNING ` + orderColumns

	o, err := scanOrder(s.db.QueryRow(ctx, query, orderID, riderID, reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, s.transitionFailure(ctx, orderID, riderID)
		}
		return model.Order{}, fmt.Errorf("cancel order: %w", err)
	}

	return o, nil
}

// CompleteOrder marks the order completed and credits the rider's wallet in
// the same transaction.
func (s *PostgresStorage) CompleteOrder(ctx context.Context, orderID, riderID string) (model.Order, error) {
	const lockQuery = `SELECT status, assigned_rider FROM orders WHERE id = $1 FOR UPDATE`

	completeQuery := `
		UPDATE orders
		SET status = 'completed', updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns

	const creditQuery = `UPDATE riders SET wallet_balance = wallet_balance + $2 WHERE id = $1`

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return model.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var status model.OrderStatus
	var assigned *string
	err = tx.QueryRow(ctx, lockQuery, orderID).Scan(&status, &assigned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, errs.ErrOrderNotFound
		}
		return model.Order{}, fmt.Errorf("lock order: %w", err)
	}
	if assigned == nil || *assigned != riderID {
		return model.Order{}, errs.ErrNotAssignedRider
	}
	if !model.CanTransition(status, model.Completed) {
		return model.Order{}, errs.ErrInvalidTransition
	}

	o, err := scanOrder(tx.QueryRow(ctx, completeQuery, orderID))
	if err != nil {
		return model.Order{}, fmt.Errorf("complete order: %w", err)
	}

	tag, err := tx.Exec(ctx, creditQuery, riderID, o.Earning())
	if err != nil {
		return model.Order{}, fmt.Errorf("credit wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Order{}, errs.ErrRiderNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Order{}, fmt.Errorf("commit: %w", err)
	}

	return o, nil
}

func (s *PostgresStorage) transitionFailure(ctx context.Context, orderID, riderID string) error {
	const query = `SELECT assigned_rider FROM orders WHERE id = $1`

	var assigned *string
	err := s.db.QueryRow(ctx, query, orderID).Scan(&assigned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrOrderNotFound
		}
		return fmt.Errorf("diagnose transition: %w", err)
	}
	if assigned == nil || *assigned != riderID {
		return errs.ErrNotAssignedRider
	}
	return errs.ErrInvalidTransition
}

// sourcesOf lists the statuses an order may leave for to.
func sourcesOf(to model.OrderStatus) []model.OrderStatus {
	var from []model.OrderStatus
	for _, st := range []model.OrderStatus{model.Available, model.Assigned, model.EnRoute, model.Completed, model.Cancelled} {
		if model.CanTransition(st, to) {
			from = append(from, st)
		}
	}
	return from
}
