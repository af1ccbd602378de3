// Package feed delivers order change events to the alert engines: a NATS
// subscription, and a Hub that shares one upstream subscription between
// every rider in the process.
package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/dchamindu826/Rider-App/internal/model"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const DefaultSubject = "orders.available"

type NATSFeed struct {
	conn    *nats.Conn
	subject string
	logger  *zap.SugaredLogger
}

func NewNATSFeed(url, subject string, logger *zap.SugaredLogger) (*NATSFeed, error) {
	conn, err := nats.Connect(url, nats.Name("riderapp"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSFeed{conn: conn, subject: subject, logger: logger}, nil
}

// Listen registers handler on the subject. The subscription ends when stop
// is called or ctx is done, whichever comes first.
func (f *NATSFeed) Listen(ctx context.Context, handler func(model.OrderEvent)) (func(), error) {
	sub, err := f.conn.Subscribe(f.subject, f.dispatch(handler))
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", f.subject, err)
	}

	var once sync.Once
	stop := func() {
		once.Do(func() {
			if err := sub.Unsubscribe(); err != nil {
				f.logger.Debugf("unsubscribe %s: %v", f.subject, err)
			}
		})
	}

	go func() {
		<-ctx.Done()
		stop()
	}()

	return stop, nil
}

func (f *NATSFeed) dispatch(handler func(model.OrderEvent)) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ev, err := model.ParseOrderEvent(msg.Data)
		if err != nil {
			f.logger.Debugf("skip message on %s: %v", msg.Subject, err)
			return
		}
		handler(ev)
	}
}

func (f *NATSFeed) Close() error {
	f.conn.Close()
	return nil
}
