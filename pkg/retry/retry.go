package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Operation is checked until it returns nil or a Permanent error.
type Operation = func() error

// Config drives a Retrier. A BackoffFactor of 1 polls at a fixed interval.
type Config struct {
	MaxRetries    int
	BackoffFactor float64
	InitialDelay  time.Duration
	MaxDelay      time.Duration
}

// NewPollConfig polls at a fixed interval, used for waiting on local state
// such as a file that is still being written.
func NewPollConfig(interval time.Duration, attempts int) *Config {
	return &Config{
		MaxRetries:    attempts,
		BackoffFactor: 1,
		InitialDelay:  interval,
		MaxDelay:      interval,
	}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent stops Do immediately and returns err unwrapped.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type Retrier struct {
	config *Config
}

func NewRetrier(config *Config) *Retrier {
	return &Retrier{config: config}
}

// Do runs op once plus up to MaxRetries more times. After the last attempt
// the final error is returned wrapped with the attempt count.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	delay := r.config.InitialDelay
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == r.config.MaxRetries {
			return fmt.Errorf("gave up after %d attempts: %w", attempt+1, err)
		}

		timer.Reset(delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * r.config.BackoffFactor)
		if r.config.MaxDelay > 0 && delay > r.config.MaxDelay {
			delay = r.config.MaxDelay
		}
	}
}
