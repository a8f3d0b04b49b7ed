package pricing

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

type MessageReader interface {
	GetNewMessage(ctx context.Context) ([]byte, error)
}

// Consume reads messages until ctx is cancelled or the reader fails, handling at
// most workers messages at a time. It waits for in-flight handlers before returning.
func Consume(ctx context.Context, reader MessageReader, workers int, logger *zap.Logger, handle func(ctx context.Context, msg []byte) error) error {
	if workers < 1 {
		workers = 1
	}
	wg := &sync.WaitGroup{}
	semaphore := make(chan struct{}, workers)
	defer wg.Wait()

	for {
		msg, err := reader.GetNewMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		semaphore <- struct{}{}
		wg.Add(1)
		go func(msg []byte) {
			defer wg.Done()
			defer func() { <-semaphore }()
			if err := handle(ctx, msg); err != nil {
				logger.Error("message", zap.Error(err), zap.ByteString("value", msg))
			}
		}(msg)
	}
}
