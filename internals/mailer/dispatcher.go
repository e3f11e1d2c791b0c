package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// DispatcherOptions sizes the queue and the retry policy
type DispatcherOptions struct {
	Workers    int
	QueueSize  int
	MaxRetries uint64
	// BaseDelay is the first backoff step; it doubles on every retry
	BaseDelay time.Duration
	// SendTimeout bounds a single provider call
	SendTimeout time.Duration
	// DrainTimeout is how long Close waits for the queue before giving up on it
	DrainTimeout time.Duration
}

// Dispatcher sends mail in the background so request handlers never wait on
// the mail transport. Failures are retried with exponential backoff and,
// once retries are exhausted, logged as dead letters.
type Dispatcher struct {
	mailer Mailer
	logger *slog.Logger
	opts   DispatcherOptions

	queue  chan Message
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(mailer Mailer, logger *slog.Logger, opts DispatcherOptions) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 30 * time.Second
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = 10 * time.Second
	}
	return &Dispatcher{
		mailer: mailer,
		logger: logger,
		opts:   opts,
		queue:  make(chan Message, opts.QueueSize),
	}
}

// Start launches the workers. They stop once Close has drained the queue;
// cancelling ctx aborts in-flight sends and retries.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for msg := range d.queue {
				d.deliver(ctx, msg)
			}
		}()
	}
}

// Enqueue hands msg to the workers without blocking.
// It reports false when the message was dropped (queue full or dispatcher closed).
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("mail dropped, dispatcher closed", "to", msg.To, "subject", msg.Subject)
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Error("mail dropped, queue full", "to", msg.To, "subject", msg.Subject)
		return false
	}
}

// Close stops accepting messages and waits up to DrainTimeout for queued ones
// to be delivered. Whatever is still pending after that is dead-lettered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	cancel := d.cancel
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(d.opts.DrainTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		d.logger.Warn("mail queue not drained in time, abandoning", "pending", len(d.queue), "timeout", d.opts.DrainTimeout)
		if cancel != nil {
			cancel()
		}
		<-done
	}
	if cancel != nil {
		cancel()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	backoff := retry.WithMaxRetries(d.opts.MaxRetries, retry.NewExponential(d.opts.BaseDelay))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		sendCtx, cancel := context.WithTimeout(ctx, d.opts.SendTimeout)
		defer cancel()

		if err := d.mailer.Send(sendCtx, msg); err != nil {
			d.logger.Warn("mail send failed", "to", msg.To, "subject", msg.Subject, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		d.logger.Error("mail dead-lettered", "to", msg.To, "subject", msg.Subject, "attempts", attempt, "error", err)
		return
	}
	d.logger.Info("mail sent", "to", msg.To, "subject", msg.Subject, "attempts", attempt)
}
