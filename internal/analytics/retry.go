package analytics

import (
	"context"
	"fmt"
	"time"
)

// SleepFunc 可被 ctx 打断的等待
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep 默认等待实现
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// withRetry 指数退避重试：base, 2*base, 4*base ...
// onRetry 在每次重试前调用，attempt 从 1 开始
func withRetry(ctx context.Context, attempts int, base time.Duration, sleep SleepFunc, onRetry func(attempt int, err error), fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	delay := base
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if onRetry != nil {
				onRetry(i, lastErr)
			}
			if err := sleep(ctx, delay); err != nil {
				return fmt.Errorf("espera interrompida: %w", err)
			}
			delay *= 2
		}
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return fmt.Errorf("tentativas esgotadas (%d): %w", attempts, lastErr)
}
