package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dchamindu826/Rider-App/internal/model"
)

// OrdersChannel is the NOTIFY channel written by the orders trigger.
const OrdersChannel = "orders_available"

const relistenDelay = time.Second

// Listen subscribes to order change notifications on a dedicated pool
// connection. It returns at once; the connection is (re)established in the
// background until stop is called or ctx ends.
func (s *PostgresStorage) Listen(ctx context.Context, handler func(model.OrderEvent)) (func(), error) {
	listenCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		for {
			err := s.listenOnce(listenCtx, handler)
			if listenCtx.Err() != nil {
				return
			}
			s.logger.Warnf("order notifications: %v", err)

			select {
			case <-listenCtx.Done():
				return
			case <-time.After(relistenDelay):
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (s *PostgresStorage) listenOnce(ctx context.Context, handler func(model.OrderEvent)) error {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen conn: %w", err)
	}
	defer func() {
		if !conn.Conn().IsClosed() {
			unlistenCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if _, err := conn.Exec(unlistenCtx, "UNLISTEN "+OrdersChannel); err != nil {
				conn.Conn().Close(unlistenCtx)
			}
		}
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+OrdersChannel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		ev, err := model.ParseOrderEvent([]byte(n.Payload))
		if err != nil {
			s.logger.Debugf("skip notification %q: %v", n.Payload, err)
			continue
		}
		handler(ev)
	}
}
