// Package sound plays the looping new-order alert.
package sound

import (
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Player loops an alert until stopped. Stop must be safe to call when
// nothing is playing.
type Player interface {
	Start() error
	Stop() error
}

func New(kind string, out io.Writer, logger *zap.SugaredLogger) Player {
	switch kind {
	case "bell":
		return NewBell(out, time.Second)
	case "log":
		return &LogPlayer{logger: logger}
	default:
		return Nop{}
	}
}

// Bell rings the terminal bell on a fixed period.
type Bell struct {
	out    io.Writer
	period time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewBell(out io.Writer, period time.Duration) *Bell {
	return &Bell{out: out, period: period}
}

// Start replaces any loop already running.
func (b *Bell) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.halt()

	if _, err := b.out.Write([]byte("\a")); err != nil {
		return err
	}

	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	go b.loop(b.stop, b.done)
	return nil
}

func (b *Bell) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.halt()
	return nil
}

func (b *Bell) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stop != nil
}

func (b *Bell) halt() {
	if b.stop == nil {
		return
	}
	close(b.stop)
	<-b.done
	b.stop, b.done = nil, nil
}

func (b *Bell) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := b.out.Write([]byte("\a")); err != nil {
				return
			}
		}
	}
}

type LogPlayer struct {
	logger *zap.SugaredLogger
}

func (p *LogPlayer) Start() error {
	p.logger.Infow("alert sound started")
	return nil
}

func (p *LogPlayer) Stop() error {
	p.logger.Infow("alert sound stopped")
	return nil
}

type Nop struct{}

func (Nop) Start() error { return nil }
func (Nop) Stop() error  { return nil }
