package workerpool

import (
	"context"
	"errors"
	"runtime"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/infrastructure/logger"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/semaphore"
)

const DefaultTimeout = 20 * time.Second

// Pool bounds CPU-heavy analysis calls. Each call holds a slot until its function
// returns, even when the caller has already given up on it.
type Pool struct {
	sem     *semaphore.Weighted
	size    int
	timeout time.Duration
}

// New builds a pool with size slots. A non-positive size uses runtime.NumCPU and a
// non-positive timeout uses DefaultTimeout.
func New(size int, timeout time.Duration) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size, timeout: timeout}
}

func (p *Pool) Size() int {
	return p.size
}

func (p *Pool) Timeout() time.Duration {
	return p.timeout
}

type outcome[T any] struct {
	value T
	err   error
}

// Submit runs fn on a pool slot under the per-call timeout. A call that overruns
// returns *apperrors.CheckTimeout; a nil pool runs fn inline.
func Submit[T any](ctx context.Context, p *Pool, name string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if p == nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return zero, eris.Wrapf(err, "workerpool: %s not started", name)
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, eris.Wrapf(err, "workerpool: waiting for a slot for %s", name)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: eris.Errorf("workerpool: %s panicked: %v", name, r)}
			}
		}()
		value, err := fn(callCtx)
		done <- outcome[T]{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return zero, eris.Wrapf(ctx.Err(), "workerpool: %s cancelled", name)
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			logger.Warning("analysis call timed out", logger.LoggerOptions{
				Key:  "check",
				Data: name,
			}, logger.LoggerOptions{
				Key:  "timeout",
				Data: p.timeout.String(),
			})
		}
		return zero, &apperrors.CheckTimeout{Check: name, After: p.timeout}
	}
}
