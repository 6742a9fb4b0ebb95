package outbox

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/uglydojo/q63/mail"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	BufferSize  int
	DropIfFull  bool
	SendTimeout time.Duration
}

// Dispatcher asynchronously forwards messages to a mail.Sender so request
// handlers never wait on SMTP.
type Dispatcher struct {
	cfg       Config
	sender    mail.Sender
	logger    *slog.Logger
	onResult  func(error)
	ch        chan mail.Message
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	failed    atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts the delivery goroutine. onResult, when set, is called
// after every send attempt with its error.
func NewDispatcher(cfg Config, sender mail.Sender, logger *slog.Logger, onResult func(error)) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if sender == nil {
		sender = mail.NoopSender{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if onResult == nil {
		onResult = func(error) {}
	}

	d := &Dispatcher{
		cfg:      cfg,
		sender:   sender,
		logger:   logger,
		onResult: onResult,
		ch:       make(chan mail.Message, cfg.BufferSize),
		done:     make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case msg := <-d.ch:
			d.send(msg)
		case <-d.done:
			for {
				select {
				case msg := <-d.ch:
					d.send(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) send(msg mail.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	err := d.sender.Send(ctx, msg)
	if err != nil {
		d.failed.Add(1)
		d.logger.Warn("email delivery failed",
			slog.String("subject", msg.Subject),
			slog.String("error", err.Error()),
		)
	}
	d.onResult(err)
}

// Dispatch queues msg. It reports false when the message was not queued:
// the dispatcher is closed, the buffer is full in drop mode, or ctx ended.
func (d *Dispatcher) Dispatch(ctx context.Context, msg mail.Message) bool {
	if d == nil || d.closed.Load() {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- msg:
			return true
		case <-d.done:
			return false
		default:
			d.dropped.Add(1)
			return false
		}
	}

	select {
	case d.ch <- msg:
		return true
	case <-ctx.Done():
		return false
	case <-d.done:
		return false
	}
}

// Close stops accepting messages and waits for queued ones to be sent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}
