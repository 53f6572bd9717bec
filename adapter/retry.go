package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/mklimuk/i2cbridge"
)

var _ i2cbridge.Bus = (*Retrying)(nil)

// Retrying re-executes operations that fail with a transient classification.
// It composes over any Bus, so it can sit directly on a core adapter or on
// top of the register fast path. It is the only layer that discards
// intermediate errors; the terminal attempt's error is surfaced unchanged.
type Retrying struct {
	inner      i2cbridge.Bus
	maxRetries int
	sleep      func(time.Duration)
}

// RetryOption adjusts a Retrying wrapper at construction.
type RetryOption func(*Retrying)

// WithSleep replaces the blocking sleep used between attempts.
func WithSleep(sleep func(time.Duration)) RetryOption {
	return func(r *Retrying) {
		r.sleep = sleep
	}
}

// NewRetrying wraps inner with up to maxRetries re-executions per call
// (maxRetries+1 attempts in total; zero means a single attempt).
func NewRetrying(inner i2cbridge.Bus, maxRetries int, opts ...RetryOption) *Retrying {
	r := &Retrying{
		inner:      inner,
		maxRetries: maxRetries,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// retry runs op until it succeeds, fails terminally, or attempts run out.
// Only arbitration loss and the unclassified bucket are worth re-executing:
// a NACK or bus error repeats identically unless the caller changes the
// request, so those return on first occurrence. Backoff is linear,
// 10ms × (attempt+1), raised to the classifier's suggested delay when the
// failing code asks for more.
func (r *Retrying) retry(op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		switch i2cbridge.KindOf(err) {
		case i2cbridge.KindArbitrationLoss, i2cbridge.KindOther:
			lastErr = err
			if attempt < r.maxRetries {
				r.sleep(backoff(attempt, err))
				continue
			}
		default:
			return err
		}
	}
	return lastErr
}

func backoff(attempt int, err error) time.Duration {
	delay := time.Duration(10*(attempt+1)) * time.Millisecond
	var adapterErr *i2cbridge.Error
	if errors.As(err, &adapterErr) {
		if suggested, ok := adapterErr.RetryDelay(); ok && suggested > delay {
			delay = suggested
		}
	}
	return delay
}

func (r *Retrying) Read(ctx context.Context, addr i2cbridge.Addr, buffer []byte) error {
	return r.retry(func() error {
		return r.inner.Read(ctx, addr, buffer)
	})
}

func (r *Retrying) Write(ctx context.Context, addr i2cbridge.Addr, data []byte) error {
	return r.retry(func() error {
		return r.inner.Write(ctx, addr, data)
	})
}

func (r *Retrying) WriteRead(ctx context.Context, addr i2cbridge.Addr, data []byte, buffer []byte) error {
	return r.retry(func() error {
		return r.inner.WriteRead(ctx, addr, data, buffer)
	})
}

func (r *Retrying) Transaction(ctx context.Context, addr i2cbridge.Addr, ops []i2cbridge.Operation) error {
	return r.retry(func() error {
		return r.inner.Transaction(ctx, addr, ops)
	})
}
