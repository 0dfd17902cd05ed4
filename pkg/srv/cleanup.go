package srv

import (
	"context"
	"errors"
)

// cleanupService has nothing to run; its Shutdown releases resources.
type cleanupService struct {
	fns []func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

// Shutdown runs every cleanup in order, even after a failure, and reports
// all errors together.
func (c *cleanupService) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range c.fns {
		if fn == nil {
			continue
		}
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func NewCleanup(fns ...func() error) Service {
	return &cleanupService{fns: fns}
}
