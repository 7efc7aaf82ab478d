package chain

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DialOptions control how Dial retries an unreachable endpoint.
type DialOptions struct {
	MaxRetries int
	Backoff    time.Duration
}

// Dial connects to rpcURL and confirms the endpoint answers eth_chainId, retrying with
// doubling backoff.
func Dial(ctx context.Context, rpcURL string, mode Mode, opts DialOptions, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var client *Client
	err := withRetry(ctx, opts.MaxRetries, opts.Backoff, func(ctx context.Context) error {
		c, err := NewClient(ctx, rpcURL, mode)
		if err != nil {
			logger.Warn("dial failed", zap.String("rpc", rpcURL), zap.Error(err))
			return err
		}
		if _, err := c.GetChainID(ctx); err != nil {
			c.Close()
			logger.Warn("chain id probe failed", zap.String("rpc", rpcURL), zap.Error(err))
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", rpcURL, err)
	}
	return client, nil
}

func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
