package service

import (
	"context"
	"errors"

	internal_errors "github.com/itchan-dev/agora/shared/errors"
	"github.com/itchan-dev/agora/shared/logger"
)

// retryOnce repeats fn a single time when it failed because storage was
// unavailable. Only reads and idempotent writes go through here.
func retryOnce[T any](ctx context.Context, op string, fn func() (T, error)) (T, error) {
	v, err := fn()
	if err == nil || !errors.Is(err, internal_errors.ErrStorageUnavailable) || ctx.Err() != nil {
		return v, err
	}
	logger.Log.Warn("storage unavailable, retrying once", "op", op, "error", err)
	return fn()
}
