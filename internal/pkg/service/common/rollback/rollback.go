// Package rollback collects compensation callbacks and invokes them when a unit of work is aborted.
//
// The top-level Container invokes callbacks in LIFO order, errors are logged as a warning.
// Use AddLIFO or AddParallel to register a sub-container with its own strategy.
package rollback

import (
	"context"
	"sync"
	"time"

	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

const (
	StrategyLIFO     = strategy("lifo")
	StrategyParallel = strategy("parallel")

	DefaultTimeout = 30 * time.Second
)

type Builder interface {
	Add(cb func(ctx context.Context) error)
	AddLIFO() Builder
	AddParallel() Builder
	Len() int
}

type Container struct {
	logger  log.Logger
	timeout time.Duration
	*container
}

type container struct {
	strategy  strategy
	lock      *sync.Mutex
	callbacks []callback
}

type strategy string

type callback func(ctx context.Context) error

// New creates an empty top-level container.
func New(logger log.Logger) *Container {
	return &Container{
		logger:    logger.WithComponent("rollback"),
		timeout:   DefaultTimeout,
		container: newContainer(StrategyLIFO),
	}
}

func newContainer(strategy strategy) *container {
	return &container{strategy: strategy, lock: &sync.Mutex{}}
}

// InvokeIfErr invokes callbacks only if the error pointer holds an error.
func (v *Container) InvokeIfErr(ctx context.Context, errPtr *error) {
	if errPtr != nil && *errPtr != nil {
		v.Invoke(ctx)
	}
}

// Invoke callbacks, the context cancellation is ignored, the invocation is limited by a timeout.
// An empty container does nothing.
func (v *Container) Invoke(ctx context.Context) {
	if v.Len() == 0 {
		v.logger.Debug(ctx, "nothing to rollback")
		return
	}

	ctx, cancel := context.WithTimeoutCause(context.WithoutCancel(ctx), v.timeout, errors.New("rollback timeout"))
	defer cancel()

	v.logger.Infof(ctx, "rollback of %d operation(s)", v.Len())
	if err := v.invokeOrErr(ctx); err != nil {
		v.logger.Warn(ctx, errors.PrefixError(err, "rollback failed").Error())
	}
}

// Add a callback, callbacks are invoked according to the container strategy.
func (v *container) Add(cb func(ctx context.Context) error) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.callbacks = append(v.callbacks, cb)
}

func (v *container) AddLIFO() Builder {
	sub := newContainer(StrategyLIFO)
	v.Add(sub.invokeOrErr)
	return sub
}

func (v *container) AddParallel() Builder {
	sub := newContainer(StrategyParallel)
	v.Add(sub.invokeOrErr)
	return sub
}

// Len returns number of directly registered callbacks, a sub-container counts as one.
func (v *container) Len() int {
	v.lock.Lock()
	defer v.lock.Unlock()
	return len(v.callbacks)
}

func (v *container) snapshot() []callback {
	v.lock.Lock()
	defer v.lock.Unlock()
	out := make([]callback, len(v.callbacks))
	copy(out, v.callbacks)
	return out
}

func (v *container) invokeOrErr(ctx context.Context) error {
	switch v.strategy {
	case StrategyLIFO:
		return v.invokeLIFO(ctx)
	case StrategyParallel:
		return v.invokeParallel(ctx)
	default:
		panic(errors.Errorf(`unexpected strategy "%s"`, v.strategy))
	}
}

func (v *container) invokeLIFO(ctx context.Context) error {
	errs := errors.NewMultiError()
	callbacks := v.snapshot()
	for i := len(callbacks) - 1; i >= 0; i-- {
		if err := callbacks[i](ctx); err != nil {
			errs.Append(err)
		}
	}
	return errs.ErrorOrNil()
}

func (v *container) invokeParallel(ctx context.Context) error {
	errs := errors.NewMultiError()
	wg := &sync.WaitGroup{}
	for _, cb := range v.snapshot() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := cb(ctx); err != nil {
				errs.Append(err)
			}
		}()
	}
	wg.Wait()
	return errs.ErrorOrNil()
}
